// cmd/role-bot/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"role-validation-bot/internal/common/audit"
	"role-validation-bot/internal/common/config"
	"role-validation-bot/internal/common/database"
	"role-validation-bot/internal/common/discord"
	"role-validation-bot/internal/common/idempotency"
	"role-validation-bot/internal/common/logger"
	"role-validation-bot/internal/common/observability"

	ev "role-validation-bot/internal/workers/events/welcome"
	dc "role-validation-bot/internal/workers/validation/decision"
	rc "role-validation-bot/internal/workers/validation/role-command"
	sr "role-validation-bot/internal/workers/validation/select-role"
	vs "role-validation-bot/internal/workers/validation/verification-submit"
)

const intents = discordgo.IntentGuilds |
	discordgo.IntentGuildMembers |
	discordgo.IntentGuildMessages |
	discordgo.IntentMessageContent

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting role validation bot...", zap.String("environment", cfg.App.Environment))

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Warn("otel exporter unavailable, workflow metrics disabled", zap.Error(err))
		obs = observability.NewNoop()
	}
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Idempotency store ---
	var store idempotency.Store = idempotency.NewMemoryStore()
	if cfg.Idempotency.Backend == config.IdempotencyBackendRedis {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()

		store = idempotency.NewRedisStore(redis.Client, cfg.App.Name+":")
		zapLog.Info("Redis connected successfully")
	}

	// --- Decision audit ---
	var recorder audit.Recorder = audit.NopRecorder{}
	if cfg.Audit.Enabled {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
		if err != nil {
			zapLog.Fatal("postgres failed after retries", zap.Error(err))
		}
		defer pg.Close()

		pgRecorder := audit.NewPostgresRecorder(pg.DB)
		if err := pgRecorder.EnsureSchema(ctx); err != nil {
			zapLog.Fatal("audit schema creation failed", zap.Error(err))
		}
		recorder = pgRecorder
		zapLog.Info("PostgreSQL connected successfully")
	}

	// --- Gateway session ---
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		zapLog.Fatal("failed to create discord session", zap.Error(err))
	}
	session.Identify.Intents = intents

	platform := discord.NewSession(session)
	router := discord.NewRouter(platform, log, config.GetDuration(cfg.Discord.HandlerTimeout))

	// --- Handlers ---
	roleCommand, err := rc.NewHandler(rc.HandlerOptions{
		AppConfig: cfg,
		Platform:  platform,
		Waiter:    discord.NewReplyWaiter(session),
		Logger:    log,
	})
	if err != nil {
		zapLog.Fatal("failed to create role-command handler", zap.Error(err))
	}
	roleCommand.Register(router)

	selectRole, err := sr.NewHandler(sr.HandlerOptions{AppConfig: cfg, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create select-role handler", zap.Error(err))
	}
	selectRole.Register(router)

	submit, err := vs.NewHandler(vs.HandlerOptions{AppConfig: cfg, Platform: platform, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create verification-submit handler", zap.Error(err))
	}
	submit.Register(router)

	decision, err := dc.NewHandler(dc.HandlerOptions{
		AppConfig:     cfg,
		Platform:      platform,
		Store:         store,
		Recorder:      recorder,
		Observability: obs,
		Logger:        log,
	})
	if err != nil {
		zapLog.Fatal("failed to create decision handler", zap.Error(err))
	}
	decision.Register(router)

	welcome, err := ev.NewHandler(ev.HandlerOptions{AppConfig: cfg, Platform: platform, Logger: log})
	if err != nil {
		zapLog.Fatal("failed to create welcome handler", zap.Error(err))
	}
	welcome.Register(session)

	session.AddHandler(router.OnInteraction)

	var ready atomic.Bool
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		zapLog.Info("Connected to gateway", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
		if config.IsWorkerEnabled(cfg, rc.TaskType) {
			registerCommands(s, r.User.ID, cfg.Discord.GuildID, zapLog)
		}
		ready.Store(true)
	})

	err = retryWithBackoff(session.Open, 5, 2*time.Second, zapLog, "Gateway connection")
	if err != nil {
		zapLog.Fatal("gateway connection failed after retries", zap.Error(err))
	}

	// --- Health & Metrics Server ---
	server := newHealthServer(cfg.Server.Address, &ready)
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, closing gateway session...")
	ready.Store(false)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := session.Close(); err != nil {
		zapLog.Error("Error closing gateway session", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	zapLog.Info("Role validation bot stopped gracefully")
}

// registerCommands creates the slash command in one guild, or globally when
// guildID is empty.
func registerCommands(s *discordgo.Session, appID, guildID string, log *zap.Logger) {
	cmd, err := s.ApplicationCommandCreate(appID, guildID, rc.ApplicationCommand())
	if err != nil {
		log.Error("failed to register slash command", zap.String("command", rc.CommandName), zap.Error(err))
		return
	}
	log.Info("slash command registered",
		zap.String("command", cmd.Name),
		zap.String("guildId", guildID),
	)
}

func newHealthServer(addr string, ready *atomic.Bool) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "healthy")
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			writeStatus(w, http.StatusServiceUnavailable, "starting")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	mux.Handle("/metrics", promhttp.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
	})
}
