package controller

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"

	"familyconnect/middleware"
	"familyconnect/utils"
)

type FamilyController struct {
	Invites  *utils.InviteService
	Resolver *utils.Resolver
	Logger   *log.Logger
}

func NewFamilyController(invites *utils.InviteService, resolver *utils.Resolver, logger *log.Logger) *FamilyController {
	return &FamilyController{Invites: invites, Resolver: resolver, Logger: logger}
}

// CreateFamily makes a new family group with the caller as admin.
func (fc *FamilyController) CreateFamily(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		Name string `json:"name" validate:"required,min=3,max=50"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide family name")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	family, err := fc.Invites.CreateFamily(user.ID, input.Name)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"family": family})
}

// JoinFamily joins the caller to the family matching the invite code.
func (fc *FamilyController) JoinFamily(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		InviteCode string `json:"invite_code" validate:"required,len=6"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide invite code")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	family, err := fc.Invites.JoinFamily(user.ID, input.InviteCode)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"msg":    fmt.Sprintf("Successfully joined %s", family.Name),
		"family": family,
	})
}

// GetFamilyMembers lists everyone in the caller's family.
func (fc *FamilyController) GetFamilyMembers(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.FamilyID == nil {
		return utils.Precondition("You are not in a family group")
	}

	members, err := fc.Resolver.Members(*user.FamilyID, 0)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"members": members, "count": len(members)})
}

// SendInvite invites the user registered under a phone number.
func (fc *FamilyController) SendInvite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		PhoneNumber string `json:"phone_number" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide phone number")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	request, err := fc.Invites.SendInvite(user.ID, input.PhoneNumber)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg":     "Invite sent successfully",
		"request": request,
	})
}

// RespondToInvite accepts or rejects a pending invite.
func (fc *FamilyController) RespondToInvite(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		RequestID uint   `json:"request_id" validate:"required"`
		Status    string `json:"status" validate:"required,oneof=accepted rejected"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide request ID and status")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	if err := fc.Invites.Respond(user.ID, input.RequestID, input.Status); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": fmt.Sprintf("Invite %s", input.Status)})
}
