package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rawlph/floodgame/internal/persistence/archive"
	"github.com/rawlph/floodgame/internal/persistence/progress"
	"github.com/rawlph/floodgame/internal/sim/events"
	"github.com/rawlph/floodgame/internal/sim/game"
	"github.com/rawlph/floodgame/internal/sim/stage"
	"github.com/rawlph/floodgame/internal/sim/tuning"
	"github.com/rawlph/floodgame/internal/sim/world"
	"github.com/rawlph/floodgame/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		staticDir  = flag.String("static", "", "directory with the browser shell (empty to disable)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Default()
	}
	if err := tune.Validate(); err != nil {
		logger.Fatalf("tuning: %v", err)
	}

	stagesPath := tune.StagesFile
	if stagesPath == "" {
		stagesPath = filepath.Join(*configDir, "stages.yaml")
	}
	cfgs, err := stage.LoadConfigs(stagesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load stages: %v", err)
		}
		logger.Printf("stages not found (%s); using defaults", stagesPath)
		cfgs = stage.DefaultConfigs()
	}
	if err := cfgs.Validate(); err != nil {
		logger.Fatalf("stages: %v", err)
	}

	eventsPath := tune.EventsFile
	if eventsPath == "" {
		eventsPath = filepath.Join(*configDir, "events.yaml")
	}
	catalog, err := events.LoadCatalog(eventsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load events: %v", err)
		}
		logger.Printf("events not found (%s); using built-in catalog", eventsPath)
		catalog = events.DefaultCatalog()
	}

	_ = os.MkdirAll(*dataDir, 0o755)
	store, err := progress.Open(resolveUnder(*dataDir, tune.ProgressDB))
	if err != nil {
		logger.Fatalf("open progress store: %v", err)
	}
	defer store.Close()

	arch := archive.NewWriter(resolveUnder(*dataDir, tune.ArchiveDir), "runs")
	defer arch.Close()

	bridge := ws.NewServer(logger)
	g := game.New(game.Deps{
		Tuning:  tune,
		Catalog: catalog,
		Stages:  cfgs,
		Factory: world.Factory(tune.WorldSeed, tune.WorldBound, bridge, logger),
		Store:   store,
		Archive: arch,
		Shell:   bridge.Shell(),
		Logger:  logger,
	})
	bridge.Bind(g)
	g.Init(false)

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := g.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("game stopped: %v", err)
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/v1/ws", bridge.Handler())
	if *staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(*staticDir)))
	}

	srv := &http.Server{Addr: *addr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("http: %v", err)
	}
}

// resolveUnder keeps relative config paths inside the data directory.
func resolveUnder(dataDir, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	if strings.HasPrefix(p, "data/") || strings.HasPrefix(p, "data"+string(filepath.Separator)) {
		p = strings.TrimPrefix(strings.TrimPrefix(p, "data/"), "data"+string(filepath.Separator))
	}
	return filepath.Join(dataDir, p)
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}
