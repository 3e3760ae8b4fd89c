package database_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/advait122/ROADmap/internal/database"
)

func TestConnectRedis(t *testing.T) {
	server := miniredis.RunT(t)

	client, err := database.ConnectRedis(context.Background(), "redis://"+server.Addr()+"/0", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Set(context.Background(), "roadmap:matches:1", "[]", 0).Err())
	require.True(t, server.Exists("roadmap:matches:1"))
}

func TestConnectRedisRejectsBadTargets(t *testing.T) {
	_, err := database.ConnectRedis(context.Background(), "  ", "roadmap")
	require.ErrorContains(t, err, "empty")

	_, err = database.ConnectRedis(context.Background(), "http://localhost:6379", "roadmap")
	require.ErrorContains(t, err, "parse redis url")

	server, err := miniredis.Run()
	require.NoError(t, err)
	addr := server.Addr()
	server.Close()
	_, err = database.ConnectRedis(context.Background(), "redis://"+addr, "roadmap")
	require.ErrorContains(t, err, "ping redis")
}
