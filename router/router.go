package router

import (
	mainapp "core/app"
	handler "core/internal/handler"
	"core/internal/middleware"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Setup(api *handler.API) {
	app := fiber.New(fiber.Config{})
	app.Use(cors.New())
	app.Use(recover.New())
	setupRouter(app, api)
	port := mainapp.Config("WEB_PORT")
	if len(port) == 0 {
		port = "3636"
	}
	fmt.Println("port=", port)
	app.Listen(":" + port)
}

func setupRouter(fiberApp *fiber.App, api *handler.API) {
	root := fiberApp.Group("/api", logger.New())

	root.Get("/test.json", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "Pong"})
	})

	// Queue trigger (scheduler or manual re-drive)
	root.Post("/process-messaging-queue", api.ProcessMessagingQueue)

	// Guest submissions
	root.Post("/extension-request", api.SubmitExtension)
	root.Post("/bag-drop-request", api.SubmitBagDrop)
	root.Post("/meal-change-request", api.SubmitMealChange)

	// Staff tooling
	staff := root.Group("/staff", middleware.APIKeyAuth())
	staff.Post("/check-in-code", api.AssignCheckInCode)
	staff.Get("/prime-requests", api.ListPrimeRequests)
	staff.Post("/device-token", api.RegisterStaffDevice)
}
