// README: serve command; loads config, wires services and runs the HTTP server until SIGINT/SIGTERM.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"petlove/internal/ai"
	"petlove/internal/config"
	httptransport "petlove/internal/http"
	"petlove/internal/infra"
	"petlove/internal/logging"
	"petlove/internal/maps"
	"petlove/internal/modules/access"
	"petlove/internal/modules/booking"
	"petlove/internal/modules/chat"
	"petlove/internal/modules/event"
	"petlove/internal/modules/location"
	"petlove/internal/modules/pricing"
	"petlove/internal/modules/profile"
)

var (
	serveMigrate  bool
	migrationsDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "apply migrations before serving")
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "migrations", "migrations", "directory holding *.sql migrations")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logging.NewLogger(cfg.LogLevel)
	slog.SetDefault(log)
	if cfg.HTTP.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Firebase.ProjectID == "" {
		return errors.New("PETLOVE_FIREBASE_PROJECT_ID is required")
	}
	app, err := infra.NewFirebaseApp(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsFile)
	if err != nil {
		return err
	}
	firebaseAuth, err := infra.NewFirebaseAuth(ctx, app)
	if err != nil {
		return err
	}
	messaging, err := infra.NewMessaging(ctx, app)
	if err != nil {
		return err
	}

	db, err := infra.NewDB(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer db.Close()
	if serveMigrate {
		if err := infra.ApplyMigrations(ctx, db, migrationsDir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		log.Info("migrations applied", "dir", migrationsDir)
	}

	distance, geocoder, err := mapsServices(ctx, cfg, log)
	if err != nil {
		return err
	}

	providers, closeProviders := chatProviders(ctx, cfg, log)
	defer closeProviders()

	profileSvc := profile.NewService(profile.NewStore(db))
	resolver := access.NewResolver(profileSvc, cfg.ResolverOptions(), log)
	go resolver.RunPruner(ctx, cfg.Roles.CacheTTL)
	notifier := booking.NewFCMNotifier(messaging, cfg.Firebase.AdminTopic, log)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Verifier: firebaseAuth,
		Revoker:  firebaseAuth,
		Resolver: resolver,
		Pricing:  pricing.NewService(),
		Booking:  booking.NewService(booking.NewStore(db), distance, notifier, log),
		Profile:  profileSvc,
		Location: location.NewService(location.NewStore(db), geocoder, log),
		Chat:     chat.NewService(chat.NewStore(db), ai.NewFallback(log, providers...), log),
		Events:   event.NewService(event.NewStore(db), log),
		Log:      log,
	})
	server := httptransport.NewServer(cfg.HTTP, router)

	return serve(ctx, server, cfg.HTTP, log)
}

func serve(ctx context.Context, server *http.Server, cfg config.HTTPConfig, log *slog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", "timeout", cfg.ShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}

// mapsServices picks Google Maps when a key is configured and the offline
// fallbacks otherwise. Distances go through the Redis cache when Redis is up.
func mapsServices(ctx context.Context, cfg config.Config, log *slog.Logger) (maps.DistanceProvider, location.Geocoder, error) {
	var distance maps.DistanceProvider = maps.StraightLine{}
	var geocoder location.Geocoder = maps.CoordinatesOnly{}
	if cfg.Maps.APIKey != "" {
		client, err := maps.NewClient(cfg.Maps.APIKey)
		if err != nil {
			return nil, nil, err
		}
		distance = maps.NewRouteService(client, cfg.Maps.Region)
		geocoder = maps.NewGeocodeService(client)
	} else {
		log.Warn("PETLOVE_MAPS_API_KEY not set; using straight-line distances and coordinate labels")
	}

	rdb, err := infra.NewRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn("redis unavailable; distance cache disabled", "error", err)
		return distance, geocoder, nil
	}
	if rdb != nil {
		distance = maps.NewCachedDistance(distance, rdb, cfg.Maps.DistanceTTL, log)
	}
	return distance, geocoder, nil
}

// chatProviders returns Gemini then ChatGPT, skipping any without a key.
func chatProviders(ctx context.Context, cfg config.Config, log *slog.Logger) ([]ai.Provider, func()) {
	var providers []ai.Provider
	closeFn := func() {}
	if gemini, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel); err == nil {
		providers = append(providers, gemini)
		closeFn = gemini.Close
	} else {
		log.Warn("gemini provider disabled", "error", err)
	}
	if openai, err := ai.NewOpenAIProvider(cfg.AI.OpenAIKey, cfg.AI.OpenAIModel, cfg.AI.OpenAIBaseURL); err == nil {
		providers = append(providers, openai)
	} else {
		log.Warn("chatgpt provider disabled", "error", err)
	}
	return providers, closeFn
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		db, err := infra.NewDB(cmd.Context(), cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		return migrate(cmd.Context(), db)
	},
}

func migrate(ctx context.Context, db *pgxpool.Pool) error {
	if err := infra.ApplyMigrations(ctx, db, migrationsDir); err != nil {
		return err
	}
	fmt.Println("migrations applied from", migrationsDir)
	return nil
}
