package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"familyconnect/middleware"
	"familyconnect/models"
	"familyconnect/utils"
)

type ChatController struct {
	DB       *gorm.DB
	FanOut   *utils.FanOut
	Resolver *utils.Resolver
	Uploader *utils.Uploader
	Logger   *log.Logger
}

func NewChatController(db *gorm.DB, fanout *utils.FanOut, resolver *utils.Resolver, uploader *utils.Uploader, logger *log.Logger) *ChatController {
	return &ChatController{DB: db, FanOut: fanout, Resolver: resolver, Uploader: uploader, Logger: logger}
}

// SendMessage persists a chat message (text and/or attachment) and fans it
// out to the family. The response only depends on the message write; every
// downstream step is best effort.
func (cc *ChatController) SendMessage(c *fiber.Ctx) error {
	user, err := cc.Resolver.RequireFamily(c.Locals("userID").(uint))
	if err != nil {
		return err
	}

	content := c.FormValue("content")
	fileType := c.FormValue("file_type")

	var attachmentURL string
	if fileHeader, err := c.FormFile("file"); err == nil && fileHeader != nil {
		attachmentURL, err = cc.Uploader.Upload(c.Context(), fileHeader)
		if err != nil {
			cc.Logger.Printf("attachment upload failed: %v", err)
			return utils.BadRequest("Image upload failed")
		}
	}

	if content == "" && attachmentURL == "" {
		return utils.BadRequest("Message cannot be empty")
	}
	if fileType == "" {
		fileType = "text"
	}

	message := models.Message{
		Content:    content,
		Attachment: attachmentURL,
		FileType:   fileType,
		SenderID:   user.ID,
		FamilyID:   *user.FamilyID,
	}
	if err := cc.DB.Create(&message).Error; err != nil {
		return err
	}
	message.Sender = *user

	cc.FanOut.MessageCreated(user, &message)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"message": message})
}

// GetChatHistory returns the family's messages oldest first.
func (cc *ChatController) GetChatHistory(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.FamilyID == nil {
		return utils.Precondition("You are not in a family group")
	}

	var messages []models.Message
	err := cc.DB.Where("family_id = ?", *user.FamilyID).
		Order("created_at ASC").
		Preload("Sender").
		Find(&messages).Error
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"messages": messages, "count": len(messages)})
}
