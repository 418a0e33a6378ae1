package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"

	"github.com/klausteuber/zcashino-sub002/internal/blockchain"
	"github.com/klausteuber/zcashino-sub002/internal/config"
	"github.com/klausteuber/zcashino-sub002/internal/fairness"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/action"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/insurance"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/play"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/blackjack/start"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/event"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/fairness/clientseed"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/fairness/reveal"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/fairness/rotate"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/mysql"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/user/balance"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/handlers/verification"
	"github.com/klausteuber/zcashino-sub002/internal/http-server/middleware/logger"
	"github.com/klausteuber/zcashino-sub002/internal/ledger"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/handler/slogpretty"
	"github.com/klausteuber/zcashino-sub002/internal/lib/logger/sl"
	"github.com/klausteuber/zcashino-sub002/internal/repository"
	"github.com/klausteuber/zcashino-sub002/internal/verify"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	_ = godotenv.Load()

	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting server...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	db, err := sql.Open("mysql", cfg.StorageDSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = db.Ping(); err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	handler := mysql.New(db)

	pusherClient := &pusher.Client{
		AppID:   cfg.Pusher.AppID,
		Key:     cfg.Pusher.Key,
		Secret:  cfg.Pusher.Secret,
		Cluster: cfg.Pusher.Cluster,
	}

	pusherEvent := event.NewPusherEvent(log, pusherClient)

	sessionRepo := repository.NewSessionRepository(*handler)
	gameRepo := repository.NewGameRepository(*handler)
	commitmentRepo := repository.NewCommitmentRepository(*handler)
	seedRepo := repository.NewFairnessSeedRepository(*handler)

	chain := blockchain.New(cfg.Blockchain)

	pool := fairness.NewPool(log, commitmentRepo, chain, cfg.Fairness)
	pool.Start()
	defer pool.Stop()

	stream := fairness.NewStream(log, seedRepo, chain)

	sessionLedger := ledger.New(sessionRepo, log, pusherEvent)

	orchestrator := play.New(log, gameRepo, sessionLedger, pool, stream, pusherEvent, cfg.Fairness.Mode)

	verifier := verify.New(log, gameRepo, commitmentRepo, seedRepo, chain)

	startGame := start.NewStart(log, sessionRepo, orchestrator)
	applyAction := action.NewAction(log, sessionRepo, orchestrator)
	takeInsurance := insurance.NewInsurance(log, sessionRepo, orchestrator)
	sessionBalance := balance.NewBalance(log, sessionRepo)
	setClientSeed := clientseed.NewClientSeed(log, sessionRepo, stream)
	rotateSeed := rotate.NewRotate(log, sessionRepo, stream)
	revealSeed := reveal.NewReveal(log, stream)
	verifyGame := verification.NewVerification(log, verifier)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Post("/blackjack/start", startGame.New())
	router.Post("/blackjack/{uuid}/action", applyAction.New())
	router.Post("/blackjack/{uuid}/insurance", takeInsurance.New())
	router.Get("/balance/{sessionUUID}", sessionBalance.New())
	router.Put("/fairness/client-seed", setClientSeed.New())
	router.Post("/fairness/rotate", rotateSeed.New())
	router.Get("/fairness/seed/{id}/reveal", revealSeed.New())
	router.Post("/verify", verifyGame.New())

	log.Info("Server started", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if err = srv.ListenAndServe(); err != nil {
		log.Error("Server failed", sl.Err(err))
	}

	log.Error("Server stopped")
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlogLogger()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlogLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
