package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/tilequest/worldsim/internal/config"
	"github.com/tilequest/worldsim/internal/game"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// ── Startup display helpers ────────────────────────────────────────

func printBanner(mode string, seed int64) {
	fmt.Println()
	fmt.Println("\033[36;1m  ┌───────────────────────────────────────────┐\033[0m")
	fmt.Println("\033[36;1m  │\033[0m             worldsim  v0.1.0              \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  │\033[0m      tile world · simulation regions      \033[36;1m│\033[0m")
	fmt.Println("\033[36;1m  └───────────────────────────────────────────┘\033[0m")
	fmt.Println()
	fmt.Printf("  \033[1mgenerator:\033[0m %s \033[90m(seed: %d)\033[0m\n\n", mode, seed)
}

func printSection(title string) {
	lineLen := 46 - utf8.RuneCountInString(title) - 1
	if lineLen < 3 {
		lineLen = 3
	}
	fmt.Printf("  \033[33m── %s %s\033[0m\n", title, strings.Repeat("─", lineLen))
}

func printStat(label string, count int) {
	numStr := fmt.Sprintf("%d", count)
	dotsLen := 42 - utf8.RuneCountInString(label) - len(numStr)
	if dotsLen < 3 {
		dotsLen = 3
	}
	fmt.Printf("  %s \033[90m%s\033[0m \033[32m%s\033[0m\n", label, strings.Repeat("·", dotsLen), numStr)
}

func printOK(msg string) {
	fmt.Printf("  \033[32m✓\033[0m %s\n", msg)
}

func printReady(msg string) {
	fmt.Printf("  \033[32m▶\033[0m %s\n", msg)
}

// ── Main loop ──────────────────────────────────────────────────────

func run(args []string) error {
	fs := flag.NewFlagSet("worldsim", flag.ContinueOnError)
	cfgFlag := fs.String("config", "", "config file (default $WORLDSIM_CONFIG or config/worldsim.toml)")
	frames := fs.Int("frames", 0, "stop after this many frames (0 = run until signalled)")
	mode := fs.String("gen", "", "override generation.mode (rooms, lua, yaml)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 1. Load config
	cfgPath := "config/worldsim.toml"
	if p := os.Getenv("WORLDSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	if *cfgFlag != "" {
		cfgPath = *cfgFlag
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *mode != "" {
		cfg.Generation.Mode = *mode
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	// 2. Init logger
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	printBanner(cfg.Generation.Mode, cfg.Generation.Seed)

	// 3. Host memory
	printSection("memory")
	mem := game.NewMemory(cfg.Memory.PermanentBytes(), cfg.Memory.TransientBytes())
	printStat("permanent MB", cfg.Memory.PermanentMB)
	printStat("transient MB", cfg.Memory.TransientMB)

	state, err := game.New(cfg, mem, log)
	if err != nil {
		return fmt.Errorf("game state: %w", err)
	}
	printOK("world, tile map and entity store placed")
	fmt.Println()

	// 4. World generation
	printSection("generation")
	res, err := state.Generate(cfg.Generation)
	if err != nil {
		return err
	}
	printStat("rooms", res.Rooms)
	printStat("doors", res.Doors)
	printStat("tiles", res.Tiles)
	printStat("entities", res.Entities)
	printStat("tile chunks", state.Tiles().MaterializedChunks())
	printStat("world chunks", state.World().Stats().Chunks)
	for _, m := range state.Metrics() {
		printStat(m.Name+" KB used", m.Used>>10)
	}
	fmt.Println()

	// 5. Frame loop
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(cfg.Sim.TickRate)
	defer ticker.Stop()

	printSection("running")
	printReady(fmt.Sprintf("frame loop started (tick: %s)", cfg.Sim.TickRate))
	fmt.Println()

	pilot := newAutopilot(float32(cfg.Sim.TickRate.Seconds()))
	const reportInterval = 300

	for {
		select {
		case <-ticker.C:
			state.Frame(pilot.next(), cfg.Sim.TickRate)
			stats := state.Stats()
			if stats.Frames%reportInterval == 0 {
				cam := state.Camera()
				log.Info("frame",
					zap.Uint64("frame", stats.Frames),
					zap.Int("simulated", stats.Simulated),
					zap.Int("updated", stats.Updated),
					zap.Uint64("chunk_crossings", stats.Crossings),
					zap.Int32s("camera_chunk", []int32{cam.ChunkX, cam.ChunkY, cam.ChunkZ}),
				)
			}
			if *frames > 0 && stats.Frames >= uint64(*frames) {
				logSummary(log, state)
				return nil
			}
		case sig := <-shutdownCh:
			log.Info("shutdown signal", zap.String("signal", sig.String()))
			logSummary(log, state)
			return nil
		}
	}
}

func logSummary(log *zap.Logger, state *game.State) {
	ws := state.World().Stats()
	log.Info("stopped",
		zap.Uint64("frames", state.Stats().Frames),
		zap.Int("chunks", ws.Chunks),
		zap.Int("blocks_allocated", ws.BlocksAllocated),
		zap.Int("blocks_reused", ws.BlocksReused),
		zap.Int("blocks_freed", ws.BlocksFreed),
		zap.Uint64("events", state.Stats().Events),
	)
	for _, pt := range state.PhaseTimings() {
		log.Info("phase",
			zap.Stringer("phase", pt.Phase),
			zap.Duration("total", pt.Total),
			zap.Duration("per_frame", pt.PerTick),
		)
	}
	for _, m := range state.Metrics() {
		log.Info("arena",
			zap.String("name", m.Name),
			zap.Int("used", m.Used),
			zap.Int("capacity", m.Capacity),
			zap.Float64("utilization", m.Utilization),
		)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
