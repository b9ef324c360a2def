package context

import "context"

// Actor is the identity a collaborator call is made on behalf of.
// Record and blob adapters use it to keep row-level access rules in force:
// the hosted backend receives AccessToken, the local one checks UserID.
type Actor struct {
	UserID      string
	AccessToken string
}

func (a Actor) Anonymous() bool { return a.UserID == "" && a.AccessToken == "" }

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// GetActor returns the zero Actor when none was attached.
func GetActor(ctx context.Context) Actor {
	if ctx == nil {
		return Actor{}
	}
	if a, ok := ctx.Value(actorKey).(Actor); ok {
		return a
	}
	return Actor{}
}
