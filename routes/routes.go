package routes

import (
	"github.com/gofiber/fiber/v2"

	"fensterfix-backend/controllers"
	"fensterfix-backend/middlewares"
	"fensterfix-backend/models"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then the per-request transaction (commits/rolls back around the handler)
	protected.Use(middlewares.RequestTx())

	// Workers
	protected.Get("/workers", controllers.GetWorkers)
	protected.Post("/workers", middlewares.RequireRole(models.RoleAdmin), controllers.CreateWorker)

	// Clients
	protected.Post("/client", controllers.CreateClient)
	protected.Get("/clients", controllers.GetClients)
	protected.Get("/client/:id", controllers.GetClient)
	protected.Put("/client/:id", controllers.UpdateClient)

	// Repair orders
	protected.Post("/order", controllers.CreateOrder)
	protected.Get("/orders", controllers.GetOrders)
	protected.Get("/order/:id", controllers.GetOrder)
	protected.Put("/order/:id", controllers.UpdateOrder)
	protected.Put("/order/:id/assign", controllers.AssignOrder)
	protected.Put("/order/:id/status", controllers.UpdateOrderStatus)

	// Service catalog
	protected.Get("/services", controllers.GetServices)
	protected.Post("/services", middlewares.RequireRole(models.RoleAdmin), controllers.CreateServices)
	protected.Put("/services/:id", middlewares.RequireRole(models.RoleAdmin), controllers.UpdateService)

	// Estimates
	protected.Post("/estimates", controllers.CreateEstimate)
	protected.Get("/estimates", controllers.GetEstimates)
	protected.Get("/estimates/:id", controllers.GetEstimate)
	protected.Put("/estimates/:id", controllers.UpdateEstimate)
	protected.Get("/estimates/:id/history", controllers.GetEstimateHistory)
}
