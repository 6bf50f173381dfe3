// Package handler implements the HTTP endpoints of the CRM API.
package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/abetworks/crm-backend/internal/queue"
	"github.com/abetworks/crm-backend/internal/repository"
)

const dbTimeout = 10 * time.Second

// AuditSink receives audit events for mutating calls. Implemented by
// queue.Publisher; nil disables auditing.
type AuditSink interface {
	Publish(ctx context.Context, ev queue.AuditEvent) error
}

// audit emits an event without blocking the request: publishing happens on
// its own goroutine and failures are already logged by the publisher.
func audit(sink AuditSink, actorID, action, entity, entityID string) {
	if sink == nil {
		return
	}
	ev := queue.AuditEvent{
		ActorID:    actorID,
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = sink.Publish(ctx, ev)
	}()
}

// listOpts reads the shared ?page=&limit=&status= query parameters.
func listOpts(c echo.Context) repository.ListOpts {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	return repository.ListOpts{
		Page:   page,
		Limit:  limit,
		Status: c.QueryParam("status"),
	}
}

// pagination is the envelope returned next to every list payload.
func pagination(opts repository.ListOpts, total int) echo.Map {
	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 || limit > 100 {
		limit = 10
	}
	return echo.Map{"page": page, "limit": limit, "total": total}
}
