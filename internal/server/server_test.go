package server

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/platform/config"
	"github.com/billyribeiro-ux/Revolution-trading-pros-sub002/internal/realtime"
)

const testAdminSecret = "0123456789abcdef0123456789abcdef"

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error {
	return p.err
}

type stubRedis struct {
	err error
}

func (s stubRedis) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	cmd.SetErr(s.err)
	return cmd
}

func testConfig() *config.Config {
	return &config.Config{
		AppEnv:                  "test",
		Port:                    "8080",
		AdminJWTSecret:          testAdminSecret,
		MaxWebSocketConnections: 100,
		MaxConnectionsPerIP:     10,
	}
}

func testServer(t *testing.T, cfg *config.Config, registry *realtime.Registry, db postgresHealthChecker, redis redisHealthChecker) *Server {
	t.Helper()

	if cfg == nil {
		cfg = testConfig()
	}
	if registry == nil {
		registry = realtime.NewRegistry()
	}
	if db == nil {
		db = stubPinger{}
	}
	return NewServer(cfg, nil, registry, db, redis, clockwork.NewRealClock())
}

func adminToken(t *testing.T, secret, role string) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
