package session

import (
	"context"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
	appCtx "github.com/baechuer/real-time-ressys/services/listing-service/internal/pkg/context"
)

// AuthClient is the per-visitor auth handle the gate drives.
type AuthClient interface {
	GetUser(ctx context.Context) (*domain.Identity, error)
	SignInWithPassword(ctx context.Context, email, password string) error
	SignOut(ctx context.Context) error
	OnAuthStateChange(fn func(domain.AuthEvent)) func()
	// Actor is who later collaborator calls act as; its token carries the visitor's row-level rights.
	Actor() appCtx.Actor
}

// RoleLookup reads the role row of a user. No row is reported as a not_found domain error.
type RoleLookup interface {
	RoleOf(ctx context.Context, userID string) (string, error)
}
