package handler

import (
	"github.com/gofiber/fiber/v2"

	"core/internal/request"
)

// SubmitExtension is the guest stay-extension endpoint.
func (a *API) SubmitExtension(c *fiber.Ctx) error {
	var in request.ExtensionInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	in.Token = guestToken(c, in.Token)

	res, err := a.Requests.SubmitExtension(c.Context(), in)
	if err != nil {
		return submissionError(c, err)
	}
	return submissionResponse(c, res)
}

// SubmitBagDrop is the guest bag-storage endpoint.
func (a *API) SubmitBagDrop(c *fiber.Ctx) error {
	var in request.BagDropInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	in.Token = guestToken(c, in.Token)

	res, err := a.Requests.SubmitBagDrop(c.Context(), in)
	if err != nil {
		return submissionError(c, err)
	}
	return submissionResponse(c, res)
}

// SubmitMealChange is the guest meal-change endpoint.
func (a *API) SubmitMealChange(c *fiber.Ctx) error {
	var in request.MealChangeInput
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	in.Token = guestToken(c, in.Token)

	res, err := a.Requests.SubmitMealChange(c.Context(), in)
	if err != nil {
		return submissionError(c, err)
	}
	return submissionResponse(c, res)
}
