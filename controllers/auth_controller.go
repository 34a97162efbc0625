package controller

import (
	"log"
	"time"

	"github.com/badoux/checkmail"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"familyconnect/middleware"
	"familyconnect/models"
	"familyconnect/utils"
)

type AuthController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewAuthController(db *gorm.DB, logger *log.Logger) *AuthController {
	return &AuthController{DB: db, Logger: logger}
}

// Register creates an unverified account and emails a 6-digit OTP.
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var input struct {
		Name        string `json:"name" validate:"required,min=2,max=50"`
		Email       string `json:"email" validate:"required,email"`
		Password    string `json:"password" validate:"required,min=6"`
		PhoneNumber string `json:"phone_number" validate:"required,min=7,max=20"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Invalid request body")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}
	if err := checkmail.ValidateFormat(input.Email); err != nil {
		return utils.BadRequest("email must be a valid email")
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return utils.BadRequest("Email already in use")
	}
	if err := ac.DB.Where("phone_number = ?", input.PhoneNumber).First(&existing).Error; err == nil {
		return utils.BadRequest("Phone number already in use")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	otp, err := utils.GenerateOTP()
	if err != nil {
		return err
	}
	expires := utils.OTPExpiryTime()

	user := models.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		PhoneNumber:  input.PhoneNumber,
		OTP:          otp,
		OTPExpiresAt: &expires,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.TranslateStorage(err, "", "Email or phone number already in use")
	}

	// Email failure is tolerated; the user can request a new code later.
	if err := utils.SendVerificationEmail(user.Email, user.Name, otp); err != nil {
		ac.Logger.Printf("verification email failed for %s: %v", user.Email, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"msg":   "Success! Please check your email for the verification code.",
		"email": user.Email,
	})
}

// VerifyEmail checks the OTP and issues a token so the user can skip a
// separate login.
func (ac *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var input struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required,len=6"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Invalid request body")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return utils.Unauthenticated("Verification failed")
	}

	if user.IsVerified {
		return c.JSON(fiber.Map{"msg": "Email already verified, please login"})
	}
	if user.OTP != input.OTP {
		return utils.Unauthenticated("Invalid verification code")
	}
	if user.OTPExpiresAt == nil || user.OTPExpiresAt.Before(time.Now()) {
		return utils.Unauthenticated("Verification code expired")
	}

	updates := map[string]interface{}{
		"is_verified":    true,
		"otp":            "",
		"otp_expires_at": nil,
	}
	if err := ac.DB.Model(&user).Updates(updates).Error; err != nil {
		return err
	}

	token, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"msg":   "Email verified successfully",
		"user":  userResponse(&user),
		"token": token,
	})
}

// Login authenticates a verified account.
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Invalid request body")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	var user models.User
	if err := ac.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		return utils.Unauthenticated("Invalid credentials")
	}
	if !user.IsVerified {
		return utils.Unauthenticated("Please verify your email first")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return utils.Unauthenticated("Invalid credentials")
	}

	token, err := utils.GenerateJWTToken(&user)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user":  userResponse(&user),
		"token": token,
	})
}

// GetCurrentUser returns the authenticated user's profile.
func (ac *AuthController) GetCurrentUser(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{"user": userResponse(user)})
}

func userResponse(user *models.User) fiber.Map {
	return fiber.Map{
		"id":           user.ID,
		"name":         user.Name,
		"email":        user.Email,
		"phone_number": user.PhoneNumber,
		"role":         user.Role,
		"family_id":    user.FamilyID,
		"avatar":       user.Avatar,
	}
}
