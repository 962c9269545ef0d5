package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/reactioncam/rcam-go/internal/handler"
	"github.com/reactioncam/rcam-go/internal/middleware"
	"github.com/reactioncam/rcam-go/internal/repository"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Content *handler.ContentHandler
	Account *handler.AccountHandler
	Wallet  *handler.WalletHandler
	Request *handler.RequestHandler
	Admin   *handler.AdminHandler
	Health  *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, accounts *repository.AccountRepo, corsOrigins, adminToken string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(middleware.NewActorLoader(accounts))

	// Probes and metrics
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	// Content and feeds
	api.Get("/content", h.Content.Feed)
	api.Post("/content", h.Content.Create, middleware.RequireActor)
	api.Get("/content/:contentId", h.Content.Get)
	api.Delete("/content/:contentId", h.Content.Delete, middleware.RequireActor)
	api.Post("/content/:contentId/publish", h.Content.Publish, middleware.RequireActor)
	api.Put("/content/:contentId/tags", h.Content.SetTags, middleware.RequireActor)
	api.Put("/content/:contentId/youtube", h.Content.SetYouTubeID, middleware.RequireActor)
	api.Get("/content/:contentId/related", h.Content.Related)

	// Engagement
	api.Post("/content/:contentId/votes", h.Content.Vote, middleware.RequireActor)
	api.Delete("/content/:contentId/votes", h.Content.Unvote, middleware.RequireActor)
	api.Post("/content/:contentId/views", h.Content.View, middleware.RequireActor)
	api.Get("/content/:contentId/votes", h.Content.Voted, middleware.RequireActor)
	api.Get("/content/:contentId/comments", h.Content.ListComments)
	api.Post("/content/:contentId/comments", h.Content.Comment, middleware.RequireActor)
	api.Delete("/comments/:commentId", h.Content.DeleteComment, middleware.RequireActor)

	// Accounts (read-only; identity lives elsewhere)
	api.Get("/accounts/:username", h.Account.Get)
	api.Get("/accounts/:username/content", h.Content.ByCreator)
	api.Get("/notifications", h.Account.Notifications, middleware.RequireActor)

	// Wallet
	api.Get("/wallet", h.Wallet.Get, middleware.RequireActor)
	api.Get("/wallet/transactions", h.Wallet.History, middleware.RequireActor)
	api.Get("/wallet/transactions/:txId", h.Wallet.GetTransaction, middleware.RequireActor)
	api.Post("/payments", h.Wallet.Pay, middleware.RequireActor)

	// Public requests
	api.Get("/requests", h.Request.List)
	api.Post("/requests", h.Request.Create, middleware.RequireActor)
	// "mine" must register ahead of the :requestId wildcard.
	api.Get("/requests/mine", h.Request.ListMine, middleware.RequireActor)
	api.Get("/requests/:requestId", h.Request.Get)
	api.Post("/requests/:requestId/fund", h.Request.Fund, middleware.RequireActor)
	api.Post("/requests/:requestId/entries", h.Request.Enter, middleware.RequireActor)
	api.Get("/requests/:requestId/entry", h.Request.GetEntry, middleware.RequireActor)
	api.Put("/requests/:requestId/entry", h.Request.SetEntryContent, middleware.RequireActor)

	// Moderation
	admin := app.Group("/admin", middleware.NewAdminGate(adminToken))
	admin.Post("/requests/:requestId/approve", h.Request.Approve)
	admin.Put("/requests/:requestId/state", h.Request.SetState)
	admin.Get("/requests/:requestId/entries", h.Request.ListEntries)
	admin.Post("/requests/:requestId/entries/:accountId/review", h.Request.ReviewEntry)
	admin.Post("/requests/:requestId/entries/:accountId/restore", h.Request.RestoreEntry)
	admin.Post("/reconcile", h.Admin.Reconcile)
	admin.Post("/accounts/:accountId/credit", h.Admin.Credit)
}
