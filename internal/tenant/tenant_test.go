package tenant

import (
	"context"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequire(t *testing.T) {
	t.Parallel()

	assert.ErrorIs(t, Require(None), ErrUnauthenticated)
	assert.NoError(t, Require(ID(4)))
}

func TestSessionResolverWithoutManager(t *testing.T) {
	t.Parallel()

	id, err := SessionResolver{}.Resolve(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Equal(t, None, id)
}

func TestSessionResolverRoundTrip(t *testing.T) {
	t.Parallel()

	sm := scs.New()
	resolver := SessionResolver{Sessions: sm}

	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	_, err = resolver.Resolve(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated, "fresh session has no customer")

	require.NoError(t, resolver.Select(ctx, ID(7)))
	id, err := resolver.Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, ID(7), id)

	token, _, err := sm.Commit(ctx)
	require.NoError(t, err)

	id, err = resolver.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, ID(7), id)

	resolver.Clear(ctx)
	_, err = resolver.Resolve(ctx)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSessionResolverRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	resolver := SessionResolver{Sessions: scs.New()}

	_, err := resolver.ResolveToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = resolver.ResolveToken(context.Background(), "not-a-real-token")
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSelectRejectsNone(t *testing.T) {
	t.Parallel()

	sm := scs.New()
	ctx, err := sm.Load(context.Background(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, SessionResolver{Sessions: sm}.Select(ctx, None), ErrUnauthenticated)
}

func TestStatic(t *testing.T) {
	t.Parallel()

	id, err := Static(3).Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ID(3), id)

	_, err = Static(0).Resolve(context.Background())
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
