package handler

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"core/internal/model"
	"core/internal/request"
)

// AssignCheckInCode allocates a check-in code for a booking. A code
// space exhaustion is deliberately a 500: issuing a duplicate code
// would be worse than failing the call.
func (a *API) AssignCheckInCode(c *fiber.Ctx) error {
	var body struct {
		BookingID string `json:"bookingId"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	code, err := a.Requests.AssignCheckInCode(c.Context(), body.BookingID)
	if err != nil {
		var vErr *request.ValidationError
		if errors.As(err, &vErr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": vErr.Msg})
		}
		if errors.Is(err, request.ErrCodeSpaceExhausted) {
			logrus.WithField("booking_id", body.BookingID).Error("Check-in code allocation exhausted retries")
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "could not allocate a check-in code"})
		}
		logrus.WithError(err).Error("Check-in code allocation failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}

	return c.JSON(fiber.Map{"status": true, "bookingId": body.BookingID, "code": code})
}

var statusSegment = regexp.MustCompile(`^[a-z_]+$`)

// ListPrimeRequests reads one status index for the staff dashboard.
func (a *API) ListPrimeRequests(c *fiber.Ctx) error {
	status := c.Query("status", model.RequestStatusPending)
	if !statusSegment.MatchString(status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid status"})
	}

	var indexed map[string]model.PrimeRequest
	found, err := a.Store.Get(c.Context(), "primeRequests/byStatus/"+status, &indexed)
	if err != nil {
		logrus.WithError(err).Error("Failed to list prime requests")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "store unavailable"})
	}

	requests := make([]model.PrimeRequest, 0, len(indexed))
	if found {
		for _, req := range indexed {
			requests = append(requests, req)
		}
	}
	return c.JSON(fiber.Map{"status": true, "data": requests, "total": len(requests)})
}

// RegisterStaffDevice stores a staff device token for push
// notification of new prime requests.
func (a *API) RegisterStaffDevice(c *fiber.Ctx) error {
	var input struct {
		DeviceToken string `json:"device_token"`
		DeviceType  string `json:"device_type"`
		System      string `json:"system"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if input.DeviceToken == "" || strings.ContainsAny(input.DeviceToken, "/.#$[]") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "device_token is missing or malformed"})
	}

	entry := fiber.Map{
		"deviceType": input.DeviceType,
		"system":     input.System,
		"createdAt":  time.Now().UTC().Format(time.RFC3339),
	}
	if err := a.Store.Set(c.Context(), "staffDeviceTokens/"+input.DeviceToken, entry); err != nil {
		logrus.WithError(err).Error("Failed to register staff device token")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "store unavailable"})
	}
	return c.JSON(fiber.Map{"status": true, "message": "device token registered"})
}
