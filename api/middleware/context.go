package middleware

import (
	"context"

	"github.com/google/uuid"

	"github.com/droptide/droptide-backend/internal/orders"
	"github.com/droptide/droptide-backend/pkg/enums"
	pkgerrors "github.com/droptide/droptide-backend/pkg/errors"
)

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxRole   contextKey = "actor_role"
)

// ActorFromContext rebuilds the authenticated actor seeded by the Auth
// middleware. Handlers behind Auth can rely on it being present.
func ActorFromContext(ctx context.Context) (orders.Actor, error) {
	rawID, _ := ctx.Value(ctxUserID).(string)
	rawRole, _ := ctx.Value(ctxRole).(string)
	if rawID == "" || rawRole == "" {
		return orders.Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing identity")
	}
	id, err := uuid.Parse(rawID)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id claim")
	}
	role, err := enums.ParseRole(rawRole)
	if err != nil {
		return orders.Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid role claim")
	}
	return orders.Actor{ID: id, Role: role}, nil
}
