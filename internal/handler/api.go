// Package handler is the fiber HTTP surface over the queue and request
// cores. Handlers translate transport concerns (parsing, status codes)
// and delegate everything else.
package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"core/internal/audit"
	"core/internal/queue"
	"core/internal/request"
	"core/internal/store"
)

// API carries the wired dependencies for every route.
type API struct {
	Dispatcher *queue.Dispatcher
	Requests   *request.Service
	Store      store.Client
	Audit      *audit.Recorder
}

// guestToken reads the session token from the body value or, when
// absent, the portal's header.
func guestToken(c *fiber.Ctx, bodyToken string) string {
	if bodyToken != "" {
		return bodyToken
	}
	return c.Get("X-Prime-Guest-Token")
}

// submissionError maps request-core errors onto HTTP responses.
func submissionError(c *fiber.Ctx, err error) error {
	var vErr *request.ValidationError
	if errors.As(err, &vErr) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Msg})
	}
	if errors.Is(err, request.ErrSessionInvalid) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "session is missing or expired"})
	}
	if errors.Is(err, request.ErrRateLimited) {
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "too many requests, try again later"})
	}
	var pErr *request.PolicyError
	if errors.As(err, &pErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": pErr.Msg})
	}

	logrus.WithError(err).Error("Request submission failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func submissionResponse(c *fiber.Ctx, res request.Result) error {
	body := fiber.Map{
		"success":      true,
		"requestId":    res.RequestID,
		"deliveryMode": res.DeliveryMode,
		"message":      res.Message,
	}
	if res.Deduplicated {
		body["deduplicated"] = true
	}
	return c.JSON(body)
}
