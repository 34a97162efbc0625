package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"familyconnect/middleware"
	"familyconnect/utils"
)

type GroceryController struct {
	Service  *utils.GroceryService
	Resolver *utils.Resolver
	Logger   *log.Logger
}

func NewGroceryController(service *utils.GroceryService, resolver *utils.Resolver, logger *log.Logger) *GroceryController {
	return &GroceryController{Service: service, Resolver: resolver, Logger: logger}
}

// CreateList creates a grocery list for the caller's family.
func (gc *GroceryController) CreateList(c *fiber.Ctx) error {
	var input struct {
		Title string `json:"title"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Invalid request body")
	}

	user, err := gc.Resolver.RequireFamily(c.Locals("userID").(uint))
	if err != nil {
		return err
	}

	list, err := gc.Service.CreateList(user, input.Title)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"list": list})
}

// GetFamilyLists returns the family's lists, newest first.
func (gc *GroceryController) GetFamilyLists(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	if user.FamilyID == nil {
		return utils.Precondition("You are not in a family group")
	}

	lists, err := gc.Service.Lists(*user.FamilyID)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"lists": lists})
}

// AddItem appends an item to a list.
func (gc *GroceryController) AddItem(c *fiber.Ctx) error {
	listID, err := c.ParamsInt("id")
	if err != nil {
		return utils.NotFound("List not found")
	}

	var input struct {
		Name string `json:"name" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest("Please provide item name")
	}
	if err := utils.ValidateStruct(&input); err != nil {
		return err
	}

	list, err := gc.Service.AddItem(uint(listID), input.Name)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"list": list})
}

// ToggleItem flips an item's purchased status.
func (gc *GroceryController) ToggleItem(c *fiber.Ctx) error {
	listID, err := c.ParamsInt("listId")
	if err != nil {
		return utils.NotFound("List not found")
	}
	itemID, err := c.ParamsInt("itemId")
	if err != nil {
		return utils.NotFound("Item not found")
	}

	user := middleware.CurrentUser(c)
	list, err := gc.Service.ToggleItem(user, uint(listID), uint(itemID))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"list": list})
}

// MarkListSeen records that the caller viewed the list.
func (gc *GroceryController) MarkListSeen(c *fiber.Ctx) error {
	listID, err := c.ParamsInt("id")
	if err != nil {
		return utils.NotFound("List not found")
	}

	user := middleware.CurrentUser(c)
	if err := gc.Service.MarkSeen(user, uint(listID)); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"msg": "List marked as seen"})
}
