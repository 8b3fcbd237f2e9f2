// Command empiresim runs an autonomous empire game: AI civilizations
// explore, settle, and fight until one wins, with the game observable over
// HTTP and recorded to SQLite.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/talgya/empire/internal/api"
	"github.com/talgya/empire/internal/game"
	"github.com/talgya/empire/internal/recorder"
	"github.com/talgya/empire/internal/world"
)

const snapshotEveryRounds = 10

func main() {
	var (
		seed      = flag.Int64("seed", 0, "world seed (0 = random)")
		civs      = flag.Int("civs", 4, "number of civilizations (2-6)")
		width     = flag.Int("width", 60, "map width")
		height    = flag.Int("height", 40, "map height")
		maxRounds = flag.Int("max-rounds", 300, "round cap before score victory")
		dbPath    = flag.String("db", "data/empire.db", "recording database path (empty = no recording)")
		apiPort   = flag.Int("port", 8080, "HTTP API port (0 = no API)")
		turnDelay = flag.Duration("turn-delay", 0, "pause between AI turns")
		revealAll = flag.Bool("reveal", false, "display override: report the whole map as visible")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if *seed == 0 {
		*seed = rand.Int63()
	}

	settings := game.DefaultSettings()
	settings.MapConfig = world.GenConfig{
		Width: *width, Height: *height, Seed: *seed,
		SeaLevel: 0.30, MountainLvl: 0.75,
	}
	settings.NumCivs = *civs
	settings.MaxRounds = *maxRounds
	settings.RevealAll = *revealAll

	// ── Recorder ──────────────────────────────────────────────────────
	var rec *recorder.Recorder
	sink := game.Sink(nil)
	if *dbPath != "" {
		os.MkdirAll("data", 0755)
		var err error
		rec, err = recorder.Open(*dbPath, *seed, *civs)
		if err != nil {
			slog.Error("failed to open recording database", "error", err)
			os.Exit(1)
		}
		defer rec.Close()
		sink = rec
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng := game.NewEngine(settings, sink)
	if err := eng.Initialize(); err != nil {
		slog.Error("game setup failed", "error", err)
		os.Exit(1)
	}

	counts := world.TerrainCounts(eng.WorldMap())
	landTiles := 0
	for t, c := range counts {
		if t != world.TerrainOcean && t != world.TerrainCoast {
			landTiles += c
		}
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	var mu sync.Mutex
	if *apiPort > 0 {
		adminKey := os.Getenv("EMPIRESIM_ADMIN_KEY")
		if adminKey == "" {
			slog.Warn("EMPIRESIM_ADMIN_KEY not set; host POST endpoints will be disabled")
		}
		apiServer := &api.Server{
			Eng:      eng,
			Rec:      rec,
			Mu:       &mu,
			Port:     *apiPort,
			AdminKey: adminKey,
		}
		apiServer.Start()
	}

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		mu.Lock()
		eng.Shutdown()
		mu.Unlock()
	}()

	fmt.Printf("\n%d civilizations on %s land tiles (seed %d).\n",
		*civs, humanize.Comma(int64(landTiles)), *seed)
	if *apiPort > 0 {
		fmt.Printf("API: http://localhost:%d/api/v1/status\n", *apiPort)
	}
	fmt.Println("Starting game... (Ctrl+C to stop)")

	runGame(eng, rec, &mu, *turnDelay)

	mu.Lock()
	report(eng)
	mu.Unlock()
}

// runGame drives AI turns until victory or shutdown.
func runGame(eng *game.Engine, rec *recorder.Recorder, mu *sync.Mutex, turnDelay time.Duration) {
	lastRound := eng.Round()

	for {
		mu.Lock()
		if eng.GameOver() {
			mu.Unlock()
			return
		}
		civ := eng.ActiveCiv()
		res := eng.ProcessAITurn(civ.ID)
		round := eng.Round()
		mu.Unlock()

		if !res.OK {
			slog.Error("turn processing failed", "civ", civ.Name, "reason", res.Reason.String())
			return
		}

		if round != lastRound {
			lastRound = round
			if rec != nil {
				if err := rec.Flush(); err != nil {
					slog.Error("event flush failed", "error", err)
				}
				if round%snapshotEveryRounds == 0 {
					mu.Lock()
					err := rec.SaveSnapshot(eng)
					mu.Unlock()
					if err != nil {
						slog.Error("snapshot failed", "error", err)
					}
				}
			}
		}

		if turnDelay > 0 {
			time.Sleep(turnDelay)
		}
	}
}

// report prints the final standings.
func report(eng *game.Engine) {
	cities := eng.GetAllCities()

	if win := eng.Winner(); win != nil {
		fmt.Printf("\nGame over after %d rounds (%s): %s\n",
			eng.Round(), win.Kind.String(), win.Detail)
	} else {
		fmt.Printf("\nGame stopped at round %d.\n", eng.Round())
	}

	for _, civ := range eng.GetCivilizations() {
		status := "fallen"
		if civ.IsAlive {
			status = "standing"
		}
		fmt.Printf("  %-12s (%s): score %s, %s gold, %d technologies (%s)\n",
			civ.Name, civ.Leader,
			humanize.Comma(int64(game.Score(civ, cities))),
			humanize.Comma(int64(civ.Gold)),
			len(civ.Technologies), status)
	}
}
