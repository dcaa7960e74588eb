package viewstate

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRevokeResumeToken_IsResumeTokenRevoked(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	SetRevocationClient(client)
	defer SetRevocationClient(nil)

	ctx := context.Background()
	token := "resume-token-1"
	// revoke for 2 seconds
	require.NoError(t, RevokeResumeToken(ctx, token, 2*time.Second))

	ok, err := IsResumeTokenRevoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// advance past TTL
	m.FastForward(3 * time.Second)

	ok2, err := IsResumeTokenRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

// Ensure revocation functions are no-ops when no Redis client configured
func TestRevoke_NoClient_Noop(t *testing.T) {
	// ensure no client set
	SetRevocationClient(nil)
	ctx := context.Background()
	token := "no-client-token"
	require.NoError(t, RevokeResumeToken(ctx, token, 1*time.Second))
	ok, err := IsResumeTokenRevoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok)
}
