package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/alghazaly/partsync/internal/core/domain"
	"github.com/alghazaly/partsync/internal/core/ports/driven"
	"github.com/alghazaly/partsync/internal/core/ports/driving"
)

// Ensure ActorService implements the interface.
var _ driving.ActorService = (*ActorService)(nil)

// ActorService manages the authenticated actor.
type ActorService struct {
	store driven.ActorStore
}

// NewActorService creates an actor service.
func NewActorService(store driven.ActorStore) *ActorService {
	return &ActorService{store: store}
}

// Login stores the actor used for remote calls.
func (s *ActorService) Login(ctx context.Context, actor domain.Actor) error {
	actor.ID = strings.TrimSpace(actor.ID)
	actor.Token = strings.TrimSpace(actor.Token)
	if actor.ID == "" || actor.Token == "" {
		return fmt.Errorf("login: id and token are required: %w", domain.ErrInvalidInput)
	}
	if actor.Role == "" {
		actor.Role = domain.RoleCustomer
	}
	actor.Role = domain.Role(strings.ToLower(string(actor.Role)))
	return s.store.Save(ctx, actor)
}

// Logout forgets the actor.
func (s *ActorService) Logout(ctx context.Context) error {
	return s.store.Clear(ctx)
}

// Current returns the actor, or nil when logged out.
func (s *ActorService) Current(ctx context.Context) (*domain.Actor, error) {
	return s.store.Get(ctx)
}
