package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/handler"
	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/model"
)

// Handlers bundles everything the router wires up. File and Audit may be
// nil when the object store or broker is not configured; their routes are
// simply not registered.
type Handlers struct {
	Auth          *handler.AuthHandler
	Leads         *handler.LeadHandler
	Contacts      *handler.ContactHandler
	Accounts      *handler.AccountHandler
	Opportunities *handler.OpportunityHandler
	Activities    *handler.ActivityHandler
	Users         *handler.UserHandler
	CustomFields  *handler.CustomFieldHandler
	Transfer      *handler.TransferHandler
	Audit         *handler.AuditHandler
	Files         *handler.FileHandler
}

// RegisterRoutes registers routes that do not require authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the credential endpoints under /api/auth. The
// rate limiter wraps only this group; CRUD traffic is not limited. The
// protected /api/auth/me route lives here too since it belongs to the
// same handler.
func RegisterAuth(e *echo.Echo, h Handlers, accessSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/register", h.Auth.Register)
	g.POST("/login", h.Auth.Login)
	g.POST("/refresh", h.Auth.Refresh)

	me := e.Group("/api/auth")
	me.Use(middleware.Authenticate(accessSecret))
	me.GET("/me", h.Auth.Me)
}

// RegisterAPI registers all protected resource routes under /api. Every
// route requires a valid access token; user management and the audit trail
// additionally require the admin role.
func RegisterAPI(e *echo.Echo, h Handlers, accessSecret string) {
	api := e.Group("/api")
	api.Use(middleware.Authenticate(accessSecret))

	leads := api.Group("/leads")
	leads.POST("", h.Leads.Create)
	leads.GET("", h.Leads.List)
	leads.GET("/:id", h.Leads.Get)
	leads.PUT("/:id", h.Leads.Update)
	leads.DELETE("/:id", h.Leads.Delete)
	leads.POST("/:id/convert", h.Leads.Convert)

	contacts := api.Group("/contacts")
	contacts.POST("", h.Contacts.Create)
	contacts.GET("", h.Contacts.List)
	contacts.GET("/:id", h.Contacts.Get)
	contacts.PUT("/:id", h.Contacts.Update)
	contacts.DELETE("/:id", h.Contacts.Delete)

	accounts := api.Group("/accounts")
	accounts.POST("", h.Accounts.Create)
	accounts.GET("", h.Accounts.List)
	accounts.GET("/:id", h.Accounts.Get)
	accounts.PUT("/:id", h.Accounts.Update)
	accounts.DELETE("/:id", h.Accounts.Delete)

	opps := api.Group("/opportunities")
	opps.POST("", h.Opportunities.Create)
	opps.GET("", h.Opportunities.List)
	opps.GET("/:id", h.Opportunities.Get)
	opps.PUT("/:id", h.Opportunities.Update)
	opps.DELETE("/:id", h.Opportunities.Delete)

	activities := api.Group("/activities")
	activities.POST("", h.Activities.Create)
	activities.GET("", h.Activities.List)
	activities.GET("/:id", h.Activities.Get)
	activities.PUT("/:id", h.Activities.Update)
	activities.DELETE("/:id", h.Activities.Delete)

	fields := api.Group("/custom-fields")
	fields.GET("/entity/:entity", h.CustomFields.ListByEntity)
	fields.GET("/:id", h.CustomFields.Get)

	data := api.Group("/data")
	data.POST("/import", h.Transfer.Import)
	data.GET("/export/:entity", h.Transfer.Export)
	data.DELETE("/bulk-delete", h.Transfer.BulkDelete)
	data.PUT("/bulk-update", h.Transfer.BulkUpdate)

	admin := api.Group("", middleware.RequireRole(model.RoleAdmin))
	admin.POST("/custom-fields", h.CustomFields.Create)
	admin.PUT("/custom-fields/:id", h.CustomFields.Update)
	admin.DELETE("/custom-fields/:id", h.CustomFields.Delete)
	admin.GET("/users", h.Users.List)
	admin.GET("/users/:id", h.Users.Get)
	admin.PUT("/users/:id", h.Users.Update)
	if h.Audit != nil {
		admin.GET("/audit", h.Audit.Recent)
	}

	if h.Files != nil {
		files := api.Group("/files")
		files.POST("", h.Files.Upload)
		files.GET("/url/:fileName", h.Files.URL)
		files.DELETE("/:fileName", h.Files.Delete)
	}
}
