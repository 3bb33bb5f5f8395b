// Package cache provides Valkey (Redis-compatible) client initialization
// and the compiled-markup cache for published stories.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// ConnectValkey creates the shared Valkey client and verifies the
// connection with a ping. Drafts, viewer-session flags, and the markup
// cache all run over this one client.
func ConnectValkey(host, port, password string) (*redis.Client, error) {
	addr := net.JoinHostPort(host, port)
	client := redis.NewClient(&redis.Options{
		Addr:       addr,
		Password:   password,
		DB:         0,
		ClientName: "storypress",
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("valkey ping: %w", err)
	}

	slog.Info("valkey connected", "addr", addr)
	return client, nil
}
