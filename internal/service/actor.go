package service

import "context"

// Actor identifies the authenticated user performing a mutation. Inspector and
// stitcher identity fields are stamped from it; services never consult global
// session state.
type Actor struct {
	ID    string
	Name  string
	Email string
}

// DisplayName returns the best human-readable identity available.
func (a Actor) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Email
}

// Known reports whether the actor carries a usable identity.
func (a Actor) Known() bool {
	return a.ID != ""
}

type actorKey struct{}

// WithActor attaches the actor to the context.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFrom extracts the actor from the context, if present.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey{}).(Actor)
	return actor, ok && actor.Known()
}
