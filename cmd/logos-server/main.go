// Package main is the entry point for the Logos audit server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MRamiBalles/LogosOmega/server/internal/actions"
	"github.com/MRamiBalles/LogosOmega/server/internal/audit"
	"github.com/MRamiBalles/LogosOmega/server/internal/autonomous"
	"github.com/MRamiBalles/LogosOmega/server/internal/engine"
	"github.com/MRamiBalles/LogosOmega/server/internal/events"
	"github.com/MRamiBalles/LogosOmega/server/internal/infra/storage"
	"github.com/MRamiBalles/LogosOmega/server/internal/network"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/config"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/logger"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/metrics"
	"github.com/MRamiBalles/LogosOmega/server/internal/platform/optimization"
	"github.com/MRamiBalles/LogosOmega/server/internal/state"
)

// bootstrapState recovers the last persisted state document, falling back to
// the genesis economy when the database is empty.
func bootstrapState(ctx context.Context, repo *storage.SQLiteStateRepository, appLogger *logger.Logger) *state.SystemState {
	appLogger.Info("Checking DB for an existing state document...")
	s, err := repo.ReadState(ctx)
	if err != nil {
		appLogger.Error("Failed to read state document, starting from genesis: " + err.Error())
		return state.NewDefault(time.Now())
	}
	if s == nil {
		appLogger.Info("Database empty. Seeding genesis economy...")
		return state.NewDefault(time.Now())
	}
	appLogger.Info("Reconstructing system state from SQLite...")
	// Derived fields are rebuilt rather than trusted.
	s.RecomputeSupply()
	return s
}

// bootstrapRules resolves the active rule set: the stored configuration wins,
// then an optional YAML file, then the built-in defaults.
func bootstrapRules(ctx context.Context, repo *storage.SQLiteRuleRepository, rulesFile string, appLogger *logger.Logger) []audit.Rule {
	if rulesFile != "" {
		rules, err := audit.LoadRuleFile(rulesFile)
		if err != nil {
			appLogger.Error("Failed to load rules file " + rulesFile + ": " + err.Error())
			os.Exit(1)
		}
		if err := repo.ReplaceRules(ctx, rules); err != nil {
			appLogger.Error("Failed to store rules file content: " + err.Error())
			os.Exit(1)
		}
		appLogger.Info("Loaded rule set from " + rulesFile)
		return rules
	}

	rules, err := repo.ReadRules(ctx)
	if err != nil {
		appLogger.Error("Failed to read stored rule set: " + err.Error())
		os.Exit(1)
	}
	if rules == nil {
		appLogger.Info("No stored rule set. Seeding built-in defaults...")
		rules = audit.DefaultRules()
		if err := repo.ReplaceRules(ctx, rules); err != nil {
			appLogger.Error("Failed to seed default rule set: " + err.Error())
			os.Exit(1)
		}
	}
	return rules
}

func main() {
	log.Println("[LOGOS-SERVER] Initializing Logos Audit Protocol Server...")

	appLogger := logger.NewLogger()

	cfg, err := config.Load()
	if err != nil {
		appLogger.Error("Failed to load configuration: " + err.Error())
		os.Exit(1)
	}

	appLogger.Info("Initializing SQLite database '" + cfg.DBPath + "'...")
	db, err := storage.InitSQLite(cfg.DBPath)
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: " + err.Error())
		os.Exit(1)
	}

	optCfg := optimization.DefaultConfig()
	db.SetMaxOpenConns(optCfg.DBMaxOpenConns)
	db.SetMaxIdleConns(optCfg.DBMaxIdleConns)

	stateRepo := storage.NewSQLiteStateRepository(db, cfg.WatchInterval)
	ruleRepo := storage.NewSQLiteRuleRepository(db, cfg.WatchInterval)
	journalRepo := storage.NewSQLiteJournalRepository(db)

	appLogger.Info("Bootstrapping audit journal...")
	journal := events.NewJournal(journalRepo)
	reconstructor := storage.NewReconstructor(journalRepo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := state.NewStore(bootstrapState(ctx, stateRepo, appLogger))

	appLogger.Info("Bootstrapping rule engine...")
	rules := bootstrapRules(ctx, ruleRepo, cfg.RulesFile, appLogger)
	auditEngine := audit.NewEngine(rules)

	registry := actions.NewRegistry(store, auditEngine, journal, appLogger, cfg.BridgeAccount)
	dispatcher := autonomous.NewDispatcher(store, journal, appLogger)

	appLogger.Info("Bootstrapping audit cycle...")
	scheduler := engine.NewScheduler(store, auditEngine, dispatcher, stateRepo, journal, appLogger)
	ticker := engine.NewTicker(scheduler, appLogger, cfg.TickInterval)
	go ticker.Start(ctx)

	// Remote change subscriptions: another writer updating the document or
	// the rule set is folded in between audit cycles.
	go stateRepo.Subscribe(ctx, func(remote *state.SystemState) {
		store.MergeRemote(remote)
		appLogger.Info("Merged remote state document update")
	})
	go ruleRepo.Subscribe(ctx, func(rules []audit.Rule) {
		auditEngine.SwapRules(rules)
		journal.Append(events.Entry{
			Kind:    events.KindRuleSwap,
			Level:   events.LevelSystem,
			Actor:   "RULE_WATCHER",
			Message: "active rule set replaced from storage",
		})
		appLogger.Info("Swapped rule set from storage update")
	})

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(appLogger, store, registry)
	go hub.Run(ctx)
	hub.StartJournalPoller(ctx, journal)
	hub.StartStatePoller(ctx, cfg.TickInterval)

	// Setup API Routes
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	apiBridge := network.NewAPIBridge(store, registry, auditEngine, ruleRepo, journal, reconstructor, appLogger)
	apiBridge.RegisterRoutes(mux)

	replayHandler := network.NewReplayHandler(journal, reconstructor, appLogger)
	replayHandler.RegisterRoutes(mux)

	mux.HandleFunc("/metrics", metrics.Handler())
	mux.HandleFunc("/metrics/prometheus", metrics.PrometheusHandler())
	mux.HandleFunc("/metrics/recommendations", func(w http.ResponseWriter, r *http.Request) {
		rec := optimization.Analyze(metrics.Get().Snapshot())
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rec)
	})

	server := &http.Server{Addr: cfg.ListenAddr, Handler: mux}
	go func() {
		log.Printf("[LOGOS-SERVER] HTTP API & WS Server listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[LOGOS-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[LOGOS-SERVER] Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("HTTP server shutdown: " + err.Error())
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the dashboard dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection")
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
