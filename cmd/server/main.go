package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/cache"
	"github.com/abetworks/crm-backend/internal/config"
	"github.com/abetworks/crm-backend/internal/database"
	"github.com/abetworks/crm-backend/internal/handler"
	"github.com/abetworks/crm-backend/internal/middleware"
	"github.com/abetworks/crm-backend/internal/queue"
	"github.com/abetworks/crm-backend/internal/repository"
	"github.com/abetworks/crm-backend/internal/router"
	"github.com/abetworks/crm-backend/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}

	// Audit trail: publisher on the request path, consumer draining into
	// the audit_log table. Both tolerate a down broker.
	publisher := queue.NewPublisher()
	auditRepo := repository.NewAuditRepo(db)
	go queue.StartAuditConsumer(auditRepo)

	users := repository.NewUserRepo(db)
	leads := repository.NewLeadRepo(db)
	contacts := repository.NewContactRepo(db)
	accounts := repository.NewAccountRepo(db)
	opps := repository.NewOpportunityRepo(db)
	activities := repository.NewActivityRepo(db)
	h := router.Handlers{
		Auth:          handler.NewAuthHandler(cfg, users),
		Leads:         handler.NewLeadHandler(leads, publisher),
		Contacts:      handler.NewContactHandler(contacts, publisher),
		Accounts:      handler.NewAccountHandler(accounts, publisher),
		Opportunities: handler.NewOpportunityHandler(opps, publisher),
		Activities:    handler.NewActivityHandler(activities, publisher),
		Users:         handler.NewUserHandler(users, publisher),
		CustomFields:  handler.NewCustomFieldHandler(repository.NewCustomFieldRepo(db), publisher),
		Transfer: &handler.TransferHandler{
			Leads:         leads,
			Contacts:      contacts,
			Accounts:      accounts,
			Opportunities: opps,
			Activities:    activities,
			Users:         users,
			BcryptCost:    cfg.BcryptCost,
			Audit:         publisher,
		},
		Audit: handler.NewAuditHandler(auditRepo),
	}

	// Object storage is optional; without it the file routes stay off.
	if mcfg := config.LoadMinio(); mcfg.Endpoint != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.New(ctx, mcfg)
		cancel()
		if err != nil {
			log.Printf("minio: %v; file routes disabled", err)
		} else {
			h.Files = handler.NewFileHandler(store, cache.New(), publisher)
		}
	}

	// Rate limiting degrades to a pass-through when Redis is unreachable.
	var limiter echo.MiddlewareFunc
	if rdb := config.NewRedisClient(); rdb != nil {
		limiter = middleware.RateLimit(config.LoadRateLimitConfig(), rdb)
	} else {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h, cfg.AccessSecret, limiter)
	router.RegisterAPI(e, h, cfg.AccessSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
