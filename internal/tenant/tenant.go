// Package tenant identifies the customer a request acts on behalf of.
package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/alexedwards/scs/v2"
)

// ID identifies a customer. The zero value means no customer is selected.
type ID uint

// None is the absent tenant.
const None ID = 0

// SessionKey is where the selected customer is kept in the session.
const SessionKey = "tenant:customer:id"

// ErrUnauthenticated reports that no customer could be resolved for the caller.
var ErrUnauthenticated = errors.New("tenant: no customer selected")

// Require rejects the absent tenant.
func Require(id ID) error {
	if id == None {
		return ErrUnauthenticated
	}
	return nil
}

// Resolver maps a request context to the customer it is scoped to.
type Resolver interface {
	Resolve(ctx context.Context) (ID, error)
}

// SessionResolver reads the selected customer from an scs session. The
// context passed to Resolve must carry loaded session data.
type SessionResolver struct {
	Sessions *scs.SessionManager
}

func (r SessionResolver) Resolve(ctx context.Context) (ID, error) {
	if r.Sessions == nil {
		return None, ErrUnauthenticated
	}
	id := r.Sessions.GetInt(ctx, SessionKey)
	if id <= 0 {
		return None, ErrUnauthenticated
	}
	return ID(id), nil
}

// ResolveToken loads the session identified by token and resolves it. An
// unknown or expired token resolves to ErrUnauthenticated.
func (r SessionResolver) ResolveToken(ctx context.Context, token string) (ID, error) {
	if r.Sessions == nil || token == "" {
		return None, ErrUnauthenticated
	}
	loaded, err := r.Sessions.Load(ctx, token)
	if err != nil {
		return None, fmt.Errorf("load session: %w", err)
	}
	return r.Resolve(loaded)
}

// Select stores the customer on the session carried by ctx.
func (r SessionResolver) Select(ctx context.Context, id ID) error {
	if r.Sessions == nil {
		return errors.New("tenant: session manager not configured")
	}
	if err := Require(id); err != nil {
		return err
	}
	r.Sessions.Put(ctx, SessionKey, int(id))
	return nil
}

// Clear removes any selected customer from the session carried by ctx.
func (r SessionResolver) Clear(ctx context.Context) {
	if r.Sessions == nil {
		return
	}
	r.Sessions.Remove(ctx, SessionKey)
}

// Static always resolves to the same customer. Command line tools use it
// after the operator names a customer explicitly.
type Static ID

func (s Static) Resolve(context.Context) (ID, error) {
	id := ID(s)
	return id, Require(id)
}
