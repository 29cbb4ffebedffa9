package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"tankarena/internal/apiserver"
	"tankarena/internal/banstore"
	"tankarena/internal/config"
	"tankarena/internal/game"
	"tankarena/internal/protocol"
	"tankarena/internal/tankconfig"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	tankConfigPath string
	banStorePath   string
)

func main() {
	root := &cobra.Command{
		Use:   "tankarenad [port]",
		Short: "Tank arena game server",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	root.Flags().StringVar(&tankConfigPath, "tanks-config", "", "path to tank mockup JSON (overrides TANK_CONFIG_PATH)")
	root.Flags().StringVar(&banStorePath, "ban-store", "", "path to persisted ban list JSON (overrides BAN_STORE_PATH)")

	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	} else {
		log.Println("✅ Loaded environment from .env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  TANK ARENA SERVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid port %q: %w", args[0], err)
		}
		appConfig.Server.Addr = ":" + strconv.Itoa(port)
	}
	if tankConfigPath != "" {
		appConfig.Arena.TankConfigPath = tankConfigPath
	}
	if banStorePath != "" {
		appConfig.Arena.BanStorePath = banStorePath
	}

	tankConfigs, err := tankconfig.Load(appConfig.Arena.TankConfigPath)
	if err != nil {
		return fmt.Errorf("loading tank config %s: %w", appConfig.Arena.TankConfigPath, err)
	}
	if err := tankConfigs.Watch(); err != nil {
		log.Printf("⚠️ Tank config hot-reload disabled: %v", err)
	}
	log.Printf("🛠️  Loaded %d tank mockups from %s", len(tankConfigs.Configs()), appConfig.Arena.TankConfigPath)

	bans, err := banstore.NewFileStore(appConfig.Arena.BanStorePath)
	if err != nil {
		return fmt.Errorf("loading ban store %s: %w", appConfig.Arena.BanStorePath, err)
	}
	log.Printf("🚫 Ban store: %s", appConfig.Arena.BanStorePath)

	idAlloc := game.NewIDAllocator()
	arenas := make(map[string]*game.Arena, len(appConfig.Arena.Paths))
	for _, path := range appConfig.Arena.Paths {
		arenas[path] = game.NewArena(path, idAlloc, tankConfigs)
	}
	log.Printf("🗺️  Arenas: %v", appConfig.Arena.Paths)

	protoHandler := protocol.NewHandler(arenas, bans)
	server := apiserver.NewServer(arenas, protoHandler)

	for path, arena := range arenas {
		arena.Start()
		log.Printf("✅ Arena %q ticking at %d TPS", path, game.TargetTPS)
	}

	serveErrs := make(chan error, 1)
	go func() {
		log.Printf("🌐 API server on http://localhost%s", appConfig.Server.Addr)
		serveErrs <- server.Start(appConfig.Server.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	select {
	case err := <-serveErrs:
		if err != nil {
			log.Printf("❌ Server error: %v", err)
		}
	case <-quit:
	}

	log.Println("🛑 Shutting down...")
	for path, arena := range arenas {
		arena.Stop()
		log.Printf("🛑 Arena %q stopped", path)
	}
	server.Stop()
	_ = tankConfigs.Close()
	log.Println("👋 Shutdown complete")
	return nil
}
