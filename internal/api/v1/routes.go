package v1

import (
	"taskboard/internal/api/v1/handlers"
	"taskboard/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

func RegisterRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	// Auth
	api.Post("/login", handlers.Login)
	api.Post("/register", handlers.Register)
	api.Post("/logout", middleware.UseToken, handlers.Logout)

	// User
	userRoutes := api.Group("/users", middleware.UseToken)
	userRoutes.Get("/", handlers.GetAllUsers)
	userRoutes.Get("/:id", handlers.GetUser)

	// Task. The fixed paths come before /:id so they are not swallowed by
	// the parameter route.
	taskRoutes := api.Group("/tasks", middleware.UseToken)
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/overdue", handlers.ListOverdueTasks)
	taskRoutes.Get("/due-soon", handlers.ListDueSoonTasks)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)
	taskRoutes.Post("/:id/complete", handlers.CompleteTask)

	// Comments
	taskRoutes.Get("/:id/comments", handlers.ListComments)
	taskRoutes.Post("/:id/comments", handlers.AddComment)
}
