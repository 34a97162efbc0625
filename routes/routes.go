package routes

import (
	"log"
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	controller "familyconnect/controllers"
	"familyconnect/middleware"
	"familyconnect/utils"
)

// Deps carries the shared service instances the route handlers close over.
// The hub and fan-out are constructed once in main and passed by handle.
type Deps struct {
	DB       *gorm.DB
	Hub      *utils.Hub
	FanOut   *utils.FanOut
	Resolver *utils.Resolver
	Invites  *utils.InviteService
	Grocery  *utils.GroceryService
	Uploader *utils.Uploader
}

func SetupRoutes(app *fiber.App, deps Deps) {
	requestLog := logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	})

	authController := controller.NewAuthController(deps.DB, log.New(os.Stdout, "AUTH: ", log.LstdFlags))
	familyController := controller.NewFamilyController(deps.Invites, deps.Resolver, log.New(os.Stdout, "FAMILY: ", log.LstdFlags))
	chatController := controller.NewChatController(deps.DB, deps.FanOut, deps.Resolver, deps.Uploader, log.New(os.Stdout, "CHAT: ", log.LstdFlags))
	needController := controller.NewNeedController(deps.DB, deps.FanOut, deps.Resolver, log.New(os.Stdout, "NEED: ", log.LstdFlags))
	groceryController := controller.NewGroceryController(deps.Grocery, deps.Resolver, log.New(os.Stdout, "GROCERY: ", log.LstdFlags))
	notificationController := controller.NewNotificationController(deps.DB, log.New(os.Stdout, "NOTIFY: ", log.LstdFlags))

	api := app.Group("/api/v1", requestLog)

	// Public auth endpoints (rate limited, no authentication required)
	auth := api.Group("/auth", middleware.AuthRateLimiter())
	auth.Post("/register", authController.Register)
	auth.Post("/verify-email", authController.VerifyEmail)
	auth.Post("/login", authController.Login)
	auth.Get("/me", middleware.Protected(), authController.GetCurrentUser)

	// Family membership and invitations
	family := api.Group("/family", middleware.Protected())
	family.Post("/create", familyController.CreateFamily)
	family.Post("/join", familyController.JoinFamily)
	family.Get("/members", familyController.GetFamilyMembers)
	family.Post("/invite", middleware.AuthRateLimiter(), familyController.SendInvite)
	family.Post("/respond", familyController.RespondToInvite)

	// Family chat
	chat := api.Group("/chat", middleware.Protected())
	chat.Post("/send", chatController.SendMessage)
	chat.Get("/history", chatController.GetChatHistory)

	// Need posts
	needs := api.Group("/needs", middleware.Protected())
	needs.Post("/create", needController.CreateNeed)
	needs.Get("/", needController.GetFamilyNeeds)
	needs.Patch("/:id", needController.UpdateNeedStatus)

	// Grocery lists
	grocery := api.Group("/grocery", middleware.Protected())
	grocery.Post("/create", groceryController.CreateList)
	grocery.Get("/", groceryController.GetFamilyLists)
	grocery.Post("/:id/items", groceryController.AddItem)
	grocery.Patch("/:listId/items/:itemId", groceryController.ToggleItem)
	grocery.Post("/:id/seen", groceryController.MarkListSeen)

	// Notification ledger
	notifications := api.Group("/notifications", middleware.Protected())
	notifications.Post("/token", notificationController.UpdateFCMToken)
	notifications.Get("/", notificationController.GetNotifications)
	notifications.Post("/read", notificationController.MarkAllRead)

	// Realtime channel. The HTTP middleware authenticates before the
	// upgrade; the hub authorizes the room claim after it.
	app.Use("/ws", middleware.Protected(), func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(controller.HandleFamilySocket(deps.Hub, log.New(os.Stdout, "WS: ", log.LstdFlags))))

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})

	log.Println("API routes initialized successfully")
}
