package utils

import (
	"gorm.io/gorm"

	"familyconnect/models"
)

// Resolver maps a user to their family and enumerates family members. Every
// family-scoped write goes through it before touching storage.
type Resolver struct {
	DB *gorm.DB
}

func NewResolver(db *gorm.DB) *Resolver {
	return &Resolver{DB: db}
}

// FamilyOf returns the user's family id, or 0 with ok=false when the user
// has not joined a family yet.
func (r *Resolver) FamilyOf(userID uint) (uint, bool, error) {
	var user models.User
	if err := r.DB.First(&user, userID).Error; err != nil {
		return 0, false, TranslateStorage(err, "User not found", "")
	}
	if user.FamilyID == nil {
		return 0, false, nil
	}
	return *user.FamilyID, true, nil
}

// RequireFamily loads the user and fails with a precondition error when they
// are not in a family. Used as the gate for every family-scoped write.
func (r *Resolver) RequireFamily(userID uint) (*models.User, error) {
	var user models.User
	if err := r.DB.First(&user, userID).Error; err != nil {
		return nil, TranslateStorage(err, "User not found", "")
	}
	if user.FamilyID == nil {
		return nil, Precondition("You must join a family first")
	}
	return &user, nil
}

// Members returns every member of the family, excluding the given user id
// when excluding is non-zero.
func (r *Resolver) Members(familyID uint, excluding uint) ([]models.User, error) {
	var members []models.User
	q := r.DB.Where("family_id = ?", familyID)
	if excluding != 0 {
		q = q.Where("id <> ?", excluding)
	}
	if err := q.Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Authorize reports whether the user belongs to the claimed family. Injected
// into the realtime hub's subscribe path.
func (r *Resolver) Authorize(userID, familyID uint) error {
	actual, ok, err := r.FamilyOf(userID)
	if err != nil {
		return err
	}
	if !ok || actual != familyID {
		return Precondition("You are not a member of this family")
	}
	return nil
}
