// Package adapter provides the transport layer for talking to the kakeibo
// server.
//
// The primary abstraction is [RemoteAPI], which decouples the service layer
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteAPI]).
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrConflict] for 409, [ErrUnauthorized] for 401).
package adapter

import (
	"context"
	"encoding/json"

	"github.com/kakeibo-app/kakeibo/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_api_mock.go -package=mock

// RemoteAPI defines transport-agnostic communication with the kakeibo server.
// Implementations are responsible for serialisation, authentication header
// management, and mapping transport-level errors to the sentinel values
// defined in this package.
type RemoteAPI interface {
	// SetToken stores the bearer token that will be attached to all
	// subsequent authenticated requests. Called after a successful Login.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if no token has been set yet.
	Token() string

	// Login authenticates with the server. On success it stores the returned
	// bearer token via SetToken and returns the token together with the user
	// id extracted from its claims.
	Login(ctx context.Context, creds models.Credentials) (models.Token, error)

	// Ping performs a cheap reachability check against the server's health
	// endpoint. Used by the connectivity monitor.
	Ping(ctx context.Context) error

	// Create posts a new entity and returns the server's canonical
	// representation, which carries the server-assigned id.
	Create(ctx context.Context, entityType models.EntityType, payload json.RawMessage) (json.RawMessage, error)

	// Update replaces an existing entity and returns the server's canonical
	// representation.
	Update(ctx context.Context, entityType models.EntityType, id string, payload json.RawMessage) (json.RawMessage, error)

	// Delete removes an entity. A 404 from the server is returned as
	// [ErrNotFound]; replay treats it as already-done.
	Delete(ctx context.Context, entityType models.EntityType, id string) error

	// Replay executes one queued operation against the server and returns
	// the response body, if any. The body of a replayed CREATE carries the
	// server-assigned id.
	Replay(ctx context.Context, op models.QueueOperation) (json.RawMessage, error)

	// FetchLedgerEntries downloads the full server-side ledger entry
	// collection for the authenticated user.
	FetchLedgerEntries(ctx context.Context) ([]models.LedgerEntry, error)

	// FetchAccounts downloads the full server-side account collection.
	FetchAccounts(ctx context.Context) ([]models.Account, error)

	// FetchBudgets downloads the full server-side budget collection.
	FetchBudgets(ctx context.Context) ([]models.Budget, error)

	// FetchGoals downloads the full server-side goal collection.
	FetchGoals(ctx context.Context) ([]models.Goal, error)
}
