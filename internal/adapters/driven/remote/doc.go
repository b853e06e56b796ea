// Package remote implements the storefront REST API ports.
//
// A single Client serves every driven port that talks to the server:
//
//   - CartAPI, OrderAPI, FavoriteAPI and RequestDoer for replayed mutations
//   - CollectionFetcher for full and delta collection fetches
//   - ConnectivityProbe for the network monitor
//
// Requests carry the actor's bearer token through golang.org/x/oauth2 and are
// paced by a token-bucket limiter that backs off after 429 responses.
package remote
