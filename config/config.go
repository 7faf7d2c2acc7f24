package config

import (
	"crypto/tls"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"kanban/board"
	"kanban/domain"
)

// Config holds process settings read from the environment.
type Config struct {
	ListenAddr     string
	Debug          bool
	RedisConn      string
	DeduperTTL     time.Duration
	NoticesChannel string
	SessionID      string
	BoardPath      string
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		ListenAddr:     ":8080",
		RedisConn:      os.Getenv("REDIS_CONNECTION_STRING"),
		DeduperTTL:     24 * time.Hour,
		NoticesChannel: getEnv("NOTICES_CHANNEL", "board-notices"),
		SessionID:      getEnv("SESSION_ID", "local"),
		BoardPath:      os.Getenv("BOARD_CONFIG"),
	}
	if dbg, err := strconv.ParseBool(os.Getenv("DEBUG")); err == nil {
		cfg.Debug = dbg
	}
	if v, ok := os.LookupEnv("LISTEN_ADDR"); ok && v != "" {
		cfg.ListenAddr = v
	} else if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		cfg.ListenAddr = ":" + v
	}
	if v := os.Getenv("DEDUPER_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return Config{}, fmt.Errorf("invalid DEDUPER_TTL %q", v)
		}
		cfg.DeduperTTL = d
	}
	if strings.TrimSpace(cfg.SessionID) == "" {
		return Config{}, fmt.Errorf("invalid SESSION_ID: must not be blank")
	}
	return cfg, nil
}

// RedisOptions parses RedisConn. Both redis:// URLs and the
// "host:port,password=...,ssl=true" form are accepted. It returns nil when no
// connection string is configured.
func (c Config) RedisOptions() *redis.Options {
	if c.RedisConn == "" {
		return nil
	}
	opts, err := redis.ParseURL(c.RedisConn)
	if err == nil {
		return opts
	}
	parts := strings.Split(c.RedisConn, ",")
	opts = &redis.Options{Addr: parts[0]}
	for _, p := range parts[1:] {
		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch strings.ToLower(kv[0]) {
		case "password":
			opts.Password = kv[1]
		case "ssl":
			if strings.ToLower(kv[1]) == "true" {
				opts.TLSConfig = &tls.Config{}
			}
		}
	}
	return opts
}

// LoadBoard returns the initial board definition. Without a configured path
// the built-in default board is used.
func (c Config) LoadBoard() (domain.Board, error) {
	if c.BoardPath == "" {
		return board.DefaultBoard(), nil
	}
	data, err := os.ReadFile(c.BoardPath)
	if err != nil {
		return domain.Board{}, fmt.Errorf("read board config: %w", err)
	}
	var b domain.Board
	if err := sonic.Unmarshal(data, &b); err != nil {
		return domain.Board{}, fmt.Errorf("parse board config %s: %w", c.BoardPath, err)
	}
	return b, nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
