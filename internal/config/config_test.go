package config

import (
	"os"
	"testing"
)

func TestDefaultServerAddr(t *testing.T) {
	if got := DefaultServer().Addr; got != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", got)
	}
}

func TestServerFromEnvHonorsPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	if got := ServerFromEnv().Addr; got != ":9090" {
		t.Fatalf("expected :9090, got %q", got)
	}
}

func TestServerFromEnvListenAddrOverridesPort(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LISTEN_ADDR", "0.0.0.0:7000")
	if got := ServerFromEnv().Addr; got != "0.0.0.0:7000" {
		t.Fatalf("expected LISTEN_ADDR to take precedence, got %q", got)
	}
}

func TestArenaFromEnvParsesCommaSeparatedPaths(t *testing.T) {
	t.Setenv("ARENA_PATHS", "FFA, Duel ,TeamDeathmatch")
	cfg := ArenaFromEnv()
	want := []string{"FFA", "Duel", "TeamDeathmatch"}
	if len(cfg.Paths) != len(want) {
		t.Fatalf("expected %v, got %v", want, cfg.Paths)
	}
	for i, p := range want {
		if cfg.Paths[i] != p {
			t.Fatalf("expected %v, got %v", want, cfg.Paths)
		}
	}
}

func TestArenaFromEnvFallsBackToDefaultWhenUnset(t *testing.T) {
	os.Unsetenv("ARENA_PATHS")
	cfg := ArenaFromEnv()
	if len(cfg.Paths) != 1 || cfg.Paths[0] != "FFA" {
		t.Fatalf("expected default [FFA], got %v", cfg.Paths)
	}
}

func TestConnectionLimitsFromEnvOverrides(t *testing.T) {
	t.Setenv("MAX_CONNECTIONS_TOTAL", "500")
	t.Setenv("MAX_CONNECTIONS_PER_IP", "3")
	cfg := ConnectionLimitsFromEnv()
	if cfg.MaxTotal != 500 || cfg.MaxPerIP != 3 {
		t.Fatalf("expected {500 3}, got %+v", cfg)
	}
}

func TestLoadAssemblesAllSections(t *testing.T) {
	cfg := Load()
	if cfg.Server.Addr == "" {
		t.Fatal("expected non-empty server addr")
	}
	if len(cfg.Arena.Paths) == 0 {
		t.Fatal("expected at least one arena path")
	}
	if cfg.Connections.MaxTotal == 0 {
		t.Fatal("expected non-zero connection total")
	}
}
