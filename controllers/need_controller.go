package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"familyconnect/middleware"
	"familyconnect/models"
	"familyconnect/utils"
)

type NeedController struct {
	DB       *gorm.DB
	FanOut   *utils.FanOut
	Resolver *utils.Resolver
	Logger   *log.Logger
}

func NewNeedController(db *gorm.DB, fanout *utils.FanOut, resolver *utils.Resolver, logger *log.Logger) *NeedController {
	return &NeedController{DB: db, FanOut: fanout, Resolver: resolver, Logger: logger}
}

// CreateNeed persists a need post and fans it out to the family.
func (nc *NeedController) CreateNeed(c *fiber.Ctx) error {
	var input struct {
		Content string `json:"content" validate:"required,max=500"`
		Urgency string `json:"urgency" validate:"omitempty,oneof=normal urgent"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide content")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	user, err := nc.Resolver.RequireFamily(c.Locals("userID").(uint))
	if err != nil {
		return err
	}

	urgency := input.Urgency
	if urgency == "" {
		urgency = models.UrgencyNormal
	}

	need := models.NeedPost{
		Content:     input.Content,
		Urgency:     urgency,
		CreatedByID: user.ID,
		FamilyID:    *user.FamilyID,
	}
	if err := nc.DB.Create(&need).Error; err != nil {
		return err
	}
	need.CreatedBy = *user

	nc.FanOut.NeedCreated(user, &need)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"need": need})
}

// GetFamilyNeeds returns the family's needs, newest first.
func (nc *NeedController) GetFamilyNeeds(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.FamilyID == nil {
		return utils.Precondition("You are not in a family group")
	}

	var needs []models.NeedPost
	err := nc.DB.Where("family_id = ?", *user.FamilyID).
		Order("created_at DESC").
		Preload("CreatedBy").
		Find(&needs).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"needs": needs, "count": len(needs)})
}

// UpdateNeedStatus marks a need active or fulfilled and rebroadcasts it.
func (nc *NeedController) UpdateNeedStatus(c *fiber.Ctx) error {
	needID, err := c.ParamsInt("id")
	if err != nil {
		return utils.NotFound("No need found with that id")
	}

	var input struct {
		Status string `json:"status" validate:"required,oneof=active fulfilled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide status")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	var need models.NeedPost
	if err := nc.DB.Preload("CreatedBy").First(&need, needID).Error; err != nil {
		return utils.TranslateStorage(err, "No need found with that id", "")
	}

	need.Status = input.Status
	if err := nc.DB.Model(&need).Update("status", input.Status).Error; err != nil {
		return err
	}

	nc.FanOut.NeedUpdated(&need)

	return c.JSON(fiber.Map{"need": need})
}
