package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"familyconnect/middleware"
	"familyconnect/models"
	"familyconnect/utils"
)

// Default page size for the notification feed.
const notificationLimit = 20

type NotificationController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewNotificationController(db *gorm.DB, logger *log.Logger) *NotificationController {
	return &NotificationController{DB: db, Logger: logger}
}

// UpdateFCMToken stores the device's push registration token.
func (nc *NotificationController) UpdateFCMToken(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var input struct {
		FCMToken string `json:"fcm_token" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide FCM token")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	if err := nc.DB.Model(user).Update("fcm_token", input.FCMToken).Error; err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "FCM token updated successfully"})
}

// GetNotifications returns the caller's recent notifications, newest first.
// Reading never mutates read state.
func (nc *NotificationController) GetNotifications(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	limit := c.QueryInt("limit", notificationLimit)
	if limit <= 0 || limit > 100 {
		limit = notificationLimit
	}

	var notifications []models.Notification
	err := nc.DB.Where("recipient_id = ?", user.ID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Sender").
		Find(&notifications).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"notifications": notifications})
}

// MarkAllRead flips every unread notification of the caller to read.
func (nc *NotificationController) MarkAllRead(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	res := nc.DB.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", user.ID, false).
		Update("is_read", true)
	if res.Error != nil {
		return res.Error
	}

	return c.JSON(fiber.Map{"msg": "Notifications marked as read", "updated": res.RowsAffected})
}
