package models

import "context"

// Actor identifies who is making a request. The zero value is the
// system itself and sees everything.
type Actor struct {
	ID   string
	Role UserRole
}

// IsAdmin reports whether the actor bypasses per-agent filtering.
func (a Actor) IsAdmin() bool {
	return a.ID == "" || a.Role == RoleAdmin
}

type actorKey struct{}

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom returns the actor stored in ctx, or the system actor.
func ActorFrom(ctx context.Context) Actor {
	if actor, ok := ctx.Value(actorKey{}).(Actor); ok {
		return actor
	}
	return Actor{}
}
