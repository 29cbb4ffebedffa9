// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for all server settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"strings"
)

// =============================================================================
// HTTP SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr string // listen address, e.g. ":8080"
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{Addr: ":8080"}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()
	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Addr = ":" + strconv.Itoa(p)
	}
	if addr := os.Getenv("LISTEN_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	return cfg
}

// =============================================================================
// ARENA CONFIGURATION
// =============================================================================

// ArenaConfig holds the set of arenas to run and the shared resources they
// read at startup.
type ArenaConfig struct {
	Paths          []string // arena path segments, e.g. ["FFA", "Duel"]
	TankConfigPath string   // tank mockup definitions, consumed by internal/tankconfig
	BanStorePath   string   // persisted ban list, consumed by internal/banstore
}

// DefaultArena returns the default arena configuration: a single FFA arena.
func DefaultArena() ArenaConfig {
	return ArenaConfig{
		Paths:          []string{"FFA"},
		TankConfigPath: "tanks.json",
		BanStorePath:   "bans.json",
	}
}

// ArenaFromEnv returns arena configuration with environment variable
// overrides. ARENA_PATHS is a comma-separated list.
func ArenaFromEnv() ArenaConfig {
	cfg := DefaultArena()
	if raw := os.Getenv("ARENA_PATHS"); raw != "" {
		parts := strings.Split(raw, ",")
		paths := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				paths = append(paths, p)
			}
		}
		if len(paths) > 0 {
			cfg.Paths = paths
		}
	}
	if p := os.Getenv("TANK_CONFIG_PATH"); p != "" {
		cfg.TankConfigPath = p
	}
	if p := os.Getenv("BAN_STORE_PATH"); p != "" {
		cfg.BanStorePath = p
	}
	return cfg
}

// =============================================================================
// CONNECTION LIMITS
// =============================================================================

// ConnectionLimits describes the WebSocket front door's connection caps.
// The defaults mirror internal/protocol's compiled-in constants (2000 total,
// 10 per IP); internal/protocol does not read these values and always
// applies its own constants.
type ConnectionLimits struct {
	MaxTotal int
	MaxPerIP int
}

// DefaultConnectionLimits returns the default connection limits.
func DefaultConnectionLimits() ConnectionLimits {
	return ConnectionLimits{MaxTotal: 2000, MaxPerIP: 10}
}

// ConnectionLimitsFromEnv returns connection limits with environment
// variable overrides.
func ConnectionLimitsFromEnv() ConnectionLimits {
	cfg := DefaultConnectionLimits()
	if v := getEnvInt("MAX_CONNECTIONS_TOTAL", 0); v > 0 {
		cfg.MaxTotal = v
	}
	if v := getEnvInt("MAX_CONNECTIONS_PER_IP", 0); v > 0 {
		cfg.MaxPerIP = v
	}
	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Server      ServerConfig
	Arena       ArenaConfig
	Connections ConnectionLimits
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Server:      ServerFromEnv(),
		Arena:       ArenaFromEnv(),
		Connections: ConnectionLimitsFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}
