package auth

import (
	"context"

	domain "github.com/changedesk/api/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "github.com/changedesk/api/internal/platform/auth/actor"

// WithActor stores the resolved actor in the request context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFrom retrieves the resolved actor. The second return is false when no
// auth middleware ran for this request.
func ActorFrom(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	return actor, ok
}
