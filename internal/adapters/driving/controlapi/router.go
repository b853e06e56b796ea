package controlapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/alghazaly/partsync/internal/core/ports/driving"
	"github.com/alghazaly/partsync/internal/logger"
)

// ErrMissingQueueService is returned when the queue service is not provided.
var ErrMissingQueueService = errors.New("controlapi: queue service is required")

// ErrMissingSyncDriver is returned when the sync driver is not provided.
var ErrMissingSyncDriver = errors.New("controlapi: sync driver is required")

// Prober runs an on-demand connectivity check.
type Prober interface {
	Check(ctx context.Context) bool
}

// Ports holds the services the API exposes. Queue and Sync are required;
// routes for the others are only mounted when set.
type Ports struct {
	Queue         driving.QueueService
	Sync          driving.SyncDriver
	Network       driving.NetworkHandler
	Connectivity  Prober
	Notifications driving.NotificationService
	Catalog       driving.CatalogService
	History       driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Queue == nil {
		return ErrMissingQueueService
	}
	if p.Sync == nil {
		return ErrMissingSyncDriver
	}
	return nil
}

// NewRouter builds the control API handler.
func NewRouter(ports *Ports) (http.Handler, error) {
	if err := ports.Validate(); err != nil {
		return nil, err
	}

	log := logger.With("controlapi")
	h := &handler{ports: ports}

	r := chi.NewRouter()
	r.Use(recoverer(log))
	r.Use(requestID)
	r.Use(logRequests(log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/health", h.health)
	r.Get("/status", h.status)

	r.Route("/queue", func(r chi.Router) {
		r.Get("/", h.listQueue)
		r.Post("/", h.enqueue)
		r.Post("/retry", h.retryAll)
		r.Delete("/{id}", h.removeAction)
		r.Post("/{id}/retry", h.retryAction)
	})

	r.Post("/sync", h.syncNow)
	r.Post("/drain", h.drain)

	if ports.Network != nil {
		r.Post("/network", h.setNetwork)
	}

	if ports.Notifications != nil {
		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", h.listNotifications)
			r.Post("/read", h.markAllRead)
			r.Post("/{id}/read", h.markRead)
			r.Delete("/", h.clearNotifications)
		})
	}

	if ports.Catalog != nil {
		r.Route("/cache", func(r chi.Router) {
			r.Get("/", h.listCollections)
			r.Get("/{collection}", h.collectionRecords)
		})
	}

	if ports.History != nil {
		r.Get("/history", h.history)
	}

	return r, nil
}
