package remote

import (
	"net/http"

	"golang.org/x/oauth2"

	"github.com/alghazaly/partsync/internal/core/ports/driven"
)

// actorTransport attaches the current actor's bearer token to each request.
// Requests go out unauthenticated while no actor is logged in.
type actorTransport struct {
	actors driven.ActorStore
	base   http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *actorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.actors == nil {
		return t.base.RoundTrip(req)
	}

	actor, err := t.actors.Get(req.Context())
	if err != nil {
		return nil, err
	}
	if actor == nil || actor.Token == "" {
		return t.base.RoundTrip(req)
	}

	authed := &oauth2.Transport{
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: actor.Token,
			TokenType:   "Bearer",
		}),
		Base: t.base,
	}
	return authed.RoundTrip(req)
}
