package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// ProcessMessagingQueue is the delivery trigger endpoint. Every
// queue-level condition (missing, invalid, already handled) comes back
// as a 200 with its outcome; only a store failure is an error response,
// so schedulers and duplicate triggers do not alert spuriously.
func (a *API) ProcessMessagingQueue(c *fiber.Ctx) error {
	var body struct {
		EventID string `json:"eventId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.EventID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "eventId is required"})
	}

	res, err := a.Dispatcher.Dispatch(c.Context(), body.EventID)
	if err != nil {
		logrus.WithError(err).WithField("event_id", body.EventID).Error("Dispatch failed against the store")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "store unavailable"})
	}

	a.Audit.RecordDispatch(res)
	return c.JSON(res)
}
