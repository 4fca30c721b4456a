package main

import (
	"log"
	"strings"

	"attendance-system/app/config"
	"attendance-system/app/database"
	"attendance-system/app/routes/admin"
	"attendance-system/app/routes/attendance"
	"attendance-system/app/routes/auth"
	"attendance-system/app/routes/dashboard"
	"attendance-system/app/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/template/html/v2"
)

// customErrorHandler renders error pages for web requests and JSON for
// API requests. Internal detail stays in the log; clients get a generic
// message.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	if code >= 500 {
		log.Printf("[ERROR] %s %s: %v", c.Method(), c.Path(), err)
	}

	if strings.HasPrefix(c.Path(), "/api") {
		message := err.Error()
		if code >= 500 {
			message = "Internal server error"
		}
		return c.Status(code).JSON(fiber.Map{
			"success": false,
			"error":   message,
			"code":    code,
		})
	}

	switch code {
	case 404:
		return c.Status(404).Render("404", fiber.Map{
			"Title":       "Page Not Found - " + config.AppName,
			"CurrentPage": "",
		})
	case 403:
		return c.Status(403).Render("error", fiber.Map{
			"Title":        "Access Forbidden - " + config.AppName,
			"ErrorCode":    "403",
			"ErrorTitle":   "Access Forbidden",
			"ErrorMessage": "You don't have permission to access this resource.",
		})
	case 401:
		return c.Status(401).Render("error", fiber.Map{
			"Title":        "Unauthorized - " + config.AppName,
			"ErrorCode":    "401",
			"ErrorTitle":   "Unauthorized",
			"ErrorMessage": "Please log in to access this resource.",
		})
	default:
		return c.Status(code).Render("error", fiber.Map{
			"Title":        "Error - " + config.AppName,
			"ErrorCode":    code,
			"ErrorTitle":   "An Error Occurred",
			"ErrorMessage": "We're experiencing technical difficulties. Please try again later.",
			"ShowRetry":    code >= 500,
		})
	}
}

func main() {
	// Initialize database
	config.InitDB()
	defer config.GetDB().Close()

	// Run database migrations
	if err := database.RunMigrations(config.GetDB()); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	// Server-side session store
	config.InitSessionStore()

	// Initialize template engine
	engine := html.New("./app/templates", ".html")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		Views:             engine,
		ViewsLayout:       "layouts/main",
		PassLocalsToViews: true,
		ErrorHandler:      customErrorHandler,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(cors.New())

	// CSRF protection for browser forms. API clients authenticate with a
	// bearer token instead, so /api is excluded.
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "form:csrf_token",
		ContextKey:     "csrf_token",
		CookieName:     "csrf_",
		CookieHTTPOnly: true,
		CookieSameSite: "Strict",
		Expiration:     config.SessionTimeout,
		Session:        config.SessionStore(),
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/api/")
		},
	}))

	// Static files
	app.Static("/static", "./static")

	// Routes
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/auth/login")
	})

	auth.SetupAuthRoutes(app)
	auth.SetupAuthAPIRoutes(app)
	dashboard.SetupDashboardRoutes(app)
	attendance.SetupAttendanceRoutes(app)
	admin.SetupAdminRoutes(app)

	// Background maintenance (stale lockout counters)
	services.StartScheduler()

	// Catch-all route for 404 errors (must be last)
	app.Use("*", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Page not found")
	})

	// Start server
	log.Println("Server starting on " + config.ListenAddr())
	log.Fatal(app.Listen(config.ListenAddr()))
}
