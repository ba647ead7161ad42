package routes

import (
	"context"

	"coursetrack/backend/controllers"
	"coursetrack/backend/middleware"
	"coursetrack/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

// NewApp builds the fiber app with middleware and every route wired.
func NewApp(deps *controllers.Deps, ping func(ctx context.Context) error) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "coursetrack",
		DisableStartupMessage: true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept",
	}))
	app.Use(middleware.LoggingMiddleware(deps.Logger))

	SetupRoutes(app, deps, ping)
	return app
}

func SetupRoutes(app *fiber.App, deps *controllers.Deps, ping func(ctx context.Context) error) {
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if ping != nil {
			if err := ping(c.UserContext()); err != nil {
				deps.Logger.Error("health check failed", "error", err)
				return utils.ServiceUnavailable(c, "storage unreachable")
			}
		}
		return utils.Success(c, fiber.StatusOK, fiber.Map{"status": "ok"})
	})

	// Everything below runs against the caller's client storage.
	app.Use(middleware.ClientMiddleware(deps.Cfg, deps.Logger))

	// Page routes
	coursesController := controllers.NewCoursesController(deps)
	authController := controllers.NewAuthController(deps)
	app.Get("/", coursesController.Home)
	app.Get("/course/:id", coursesController.Course)
	app.Post("/course/:id/toggle", coursesController.ToggleCourse)
	app.Post("/course/:id/lessons/:lessonId", coursesController.ToggleLesson)
	app.Post("/course/:id/mark-all", coursesController.MarkAll)
	app.Post("/course/:id/reset", coursesController.Reset)
	app.Post("/auth/signin", authController.SignIn)
	app.Post("/auth/logout", authController.Logout)

	// API routes
	userController := controllers.NewUserController(deps)
	progressController := controllers.NewProgressController(deps)
	api := app.Group("/api")
	api.Get("/catalog", coursesController.GetCatalog)
	api.Get("/view", coursesController.GetView)
	api.Get("/user", userController.GetUser)
	api.Post("/user", userController.SignIn)
	api.Delete("/user", userController.Logout)
	api.Get("/progress", progressController.GetProgress)
	api.Get("/progress/:courseId", progressController.GetCourseProgress)
	api.Post("/progress/:courseId/commands", progressController.PostCommand)
	api.Use(func(c *fiber.Ctx) error {
		return utils.NotFound(c, "No such endpoint")
	})
}
