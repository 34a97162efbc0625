package utils

import (
	"errors"
	"log"

	"gorm.io/gorm"

	"familyconnect/models"
)

// InviteService owns family creation, joining, and the invitation state
// machine: pending -> accepted | rejected, terminal on either.
type InviteService struct {
	DB       *gorm.DB
	FanOut   *FanOut
	Resolver *Resolver
	Logger   *log.Logger
}

func NewInviteService(db *gorm.DB, fanout *FanOut, resolver *Resolver, logger *log.Logger) *InviteService {
	return &InviteService{DB: db, FanOut: fanout, Resolver: resolver, Logger: logger}
}

// CreateFamily creates the group and makes the creator its admin. The
// membership write is guarded by the user still being family-less, so two
// racing creates cannot both claim the same user.
func (s *InviteService) CreateFamily(userID uint, name string) (*models.Family, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, TranslateStorage(err, "User not found", "")
	}
	if user.FamilyID != nil {
		return nil, Precondition("You are already part of a family group")
	}

	code, err := GenerateInviteCode()
	if err != nil {
		return nil, err
	}

	family := models.Family{Name: name, InviteCode: code, CreatedBy: userID}
	if err := s.DB.Create(&family).Error; err != nil {
		return nil, TranslateStorage(err, "", "Invite code collision, please retry")
	}

	if err := s.claimMembership(userID, family.ID, "admin"); err != nil {
		return nil, err
	}
	return &family, nil
}

// JoinFamily adds a family-less user to the family matching the invite code.
func (s *InviteService) JoinFamily(userID uint, inviteCode string) (*models.Family, error) {
	var family models.Family
	if err := s.DB.Where("invite_code = ?", inviteCode).First(&family).Error; err != nil {
		return nil, TranslateStorage(err, "Invalid invite code", "")
	}

	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, TranslateStorage(err, "User not found", "")
	}
	if user.FamilyID != nil {
		return nil, Precondition("You are already part of a family group")
	}

	if err := s.claimMembership(userID, family.ID, ""); err != nil {
		return nil, err
	}
	return &family, nil
}

// SendInvite creates a pending request toward the user registered under the
// phone number. The composite unique index on (sender, receiver, family)
// backs the duplicate check, so racing invites cannot slip a second row in.
func (s *InviteService) SendInvite(senderID uint, phoneNumber string) (*models.FamilyRequest, error) {
	sender, err := s.requireSenderFamily(senderID)
	if err != nil {
		return nil, err
	}

	var receiver models.User
	if err := s.DB.Where("phone_number = ?", phoneNumber).First(&receiver).Error; err != nil {
		return nil, TranslateStorage(err, "User not found with this phone number", "")
	}
	if receiver.FamilyID != nil {
		return nil, Precondition("User is already in a family")
	}

	var existing models.FamilyRequest
	err = s.DB.Where("sender_id = ? AND receiver_id = ? AND family_id = ?",
		senderID, receiver.ID, *sender.FamilyID).First(&existing).Error
	if err == nil {
		return nil, Precondition("Invite already sent")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	request := models.FamilyRequest{
		SenderID:   senderID,
		ReceiverID: receiver.ID,
		FamilyID:   *sender.FamilyID,
	}
	if err := s.DB.Create(&request).Error; err != nil {
		return nil, TranslateStorage(err, "", "Invite already sent")
	}

	s.FanOut.InviteSent(sender, &receiver, &request)
	return &request, nil
}

// Respond transitions a pending request to accepted or rejected. Acceptance
// atomically assigns the responder's family, re-checking that they are still
// family-less at response time.
func (s *InviteService) Respond(userID, requestID uint, status string) error {
	if status != models.RequestAccepted && status != models.RequestRejected {
		return BadRequest("Status must be 'accepted' or 'rejected'")
	}

	var request models.FamilyRequest
	err := s.DB.Where("id = ? AND receiver_id = ?", requestID, userID).First(&request).Error
	if err != nil {
		return TranslateStorage(err, "Invite not found", "")
	}
	if request.Status != models.RequestPending {
		return Precondition("This invite has already been responded to")
	}

	var responder models.User
	if err := s.DB.First(&responder, userID).Error; err != nil {
		return TranslateStorage(err, "User not found", "")
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		// Guard against a concurrent respond on the same request.
		res := tx.Model(&models.FamilyRequest{}).
			Where("id = ? AND status = ?", requestID, models.RequestPending).
			Update("status", status)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return Precondition("This invite has already been responded to")
		}

		if status == models.RequestAccepted {
			res = tx.Model(&models.User{}).
				Where("id = ? AND family_id IS NULL", userID).
				Update("family_id", request.FamilyID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return Precondition("You are already part of a family group")
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if status == models.RequestAccepted {
		s.FanOut.InviteAccepted(&responder, request.SenderID)
	}
	return nil
}

func (s *InviteService) requireSenderFamily(senderID uint) (*models.User, error) {
	var sender models.User
	if err := s.DB.First(&sender, senderID).Error; err != nil {
		return nil, TranslateStorage(err, "User not found", "")
	}
	if sender.FamilyID == nil {
		return nil, Precondition("You must create a family before inviting others")
	}
	return &sender, nil
}

// claimMembership assigns the family conditionally on the user still being
// family-less, closing the race between interleaved joins or accepts.
func (s *InviteService) claimMembership(userID, familyID uint, role string) error {
	updates := map[string]interface{}{"family_id": familyID}
	if role != "" {
		updates["role"] = role
	}
	res := s.DB.Model(&models.User{}).
		Where("id = ? AND family_id IS NULL", userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return Precondition("You are already part of a family group")
	}
	return nil
}
