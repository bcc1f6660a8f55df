package handlers

import (
	"strings"
	"time"

	"localbazaar/internal/config"
	applog "localbazaar/internal/log"
	"localbazaar/internal/metrics"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
)

// NewApp builds the HTTP surface: middleware, the /api routes, health and
// metrics.
func NewApp(cfg config.Config, d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "localbazaar",
		BodyLimit:    cfg.BodyLimitBytes,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.AllowedOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization",
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: "X-Request-ID",
	}))
	app.Use(metrics.Middleware())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimitPerMin,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := c.Path()
			return p == "/health" || p == "/metrics"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return failWith(c, fiber.StatusTooManyRequests, "Too many requests, please try again later.", nil)
		},
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return ok(c, fiber.StatusOK, fiber.Map{"status": "OK", "time": time.Now().UTC()}, "LocalBazaar API is running")
	})
	app.Get("/metrics", metrics.Handler())

	Routes(app, cfg, d)

	app.Use(func(c *fiber.Ctx) error {
		return failWith(c, fiber.StatusNotFound, "Route not found", nil)
	})
	return app
}

// Routes mounts the /api surface on app.
func Routes(app *fiber.App, cfg config.Config, d *Deps) {
	identified := RequireIdentity(d.Verifier)
	user := RequireUser(d.Auth)
	admin := RequireAdmin(d.Admin)

	api := app.Group("/api")

	// Auth (throttled harder than the rest of the API)
	authLimiter := limiter.New(limiter.Config{
		Max:        cfg.AuthRateLimitPerMin,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|auth"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.auth.hit", nil)
			return failWith(c, fiber.StatusTooManyRequests, "Too many attempts. Please try again later.", nil)
		},
	})
	auth := api.Group("/auth", authLimiter, identified)
	auth.Post("/register", d.AuthHandler.Register)
	auth.Post("/login", d.AuthHandler.Login)
	auth.Get("/me", RequireUser(d.Auth, AllowSuspended()), d.AuthHandler.Me)
	auth.Put("/profile", user, d.AuthHandler.UpdateProfile)

	// Listings
	products := api.Group("/products")
	products.Get("/", d.ListingHandler.List)
	products.Get("/my/listings", identified, user, d.ListingHandler.Mine)
	products.Get("/user/:userId", d.ListingHandler.ByUser)
	products.Get("/:id", d.ListingHandler.Get)
	products.Post("/", identified, user, d.ListingHandler.Create)
	products.Put("/:id", identified, user, d.ListingHandler.Update)
	products.Delete("/:id", identified, user, d.ListingHandler.Delete)

	// Orders
	orders := api.Group("/orders", identified, user)
	orders.Post("/", d.OrderHandler.Create)
	orders.Get("/buyer", d.OrderHandler.Buyer)
	orders.Get("/seller", d.OrderHandler.Seller)
	orders.Get("/:id", d.OrderHandler.Get)
	orders.Put("/:id/status", d.OrderHandler.SetStatus)

	// Reports
	reports := api.Group("/reports", identified, user)
	reports.Post("/", d.ReportHandler.Create)
	reports.Get("/my", d.ReportHandler.Mine)
	reports.Get("/", admin, d.ReportHandler.List)
	reports.Put("/:id/status", admin, d.ReportHandler.Review)

	// Admin
	adm := api.Group("/admin", identified, user, admin)
	adm.Get("/stats", d.AdminHandler.Stats)
	adm.Get("/users", d.AdminHandler.Users)
	adm.Get("/users/:id", d.AdminHandler.User)
	adm.Put("/users/:id/status", d.AdminHandler.SetUserStatus)
	adm.Get("/products", d.AdminHandler.Listings)
	adm.Delete("/products/:id", d.AdminHandler.DeleteListing)

	// Wishlist & cart
	wishlist := api.Group("/wishlist", identified, user)
	wishlist.Get("/", d.WishlistHandler.List)
	wishlist.Post("/", d.WishlistHandler.Save)
	wishlist.Delete("/:listingId", d.WishlistHandler.Unsave)

	cart := api.Group("/cart", identified, user)
	cart.Get("/", d.CartHandler.View)
	cart.Post("/", d.CartHandler.Add)
	cart.Post("/checkout", d.CartHandler.Checkout)
	cart.Delete("/", d.CartHandler.Clear)
	cart.Delete("/:listingId", d.CartHandler.Remove)

	api.Get("/categories", d.CategoryHandler.List)
}
