package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kakeibo-app/kakeibo/internal/adapter"
	"github.com/kakeibo-app/kakeibo/internal/config"
	"github.com/kakeibo-app/kakeibo/internal/logger"
	"github.com/kakeibo-app/kakeibo/internal/netstate"
	"github.com/kakeibo-app/kakeibo/internal/service"
	"github.com/kakeibo-app/kakeibo/internal/statusline"
	"github.com/kakeibo-app/kakeibo/internal/store"
	"github.com/kakeibo-app/kakeibo/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewClientLogger("kakeibo-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx = log.WithContext(ctx)

	remote := adapter.NewHTTPRemoteAPI(adapter.HTTPClientConfig{
		BaseURL: cfg.Adapter.BaseURL,
		Timeout: cfg.Adapter.RequestTimeout,
	})

	storages, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		// Degraded mode: no local persistence, mutations go straight to the
		// network and fail loudly when it is down.
		log.Warn().Err(err).Msg("local storage unavailable, degrading to pass-through")
		storages = store.NewNoopStorages(log)
	}
	defer storages.Close()

	monitor := netstate.NewProbeMonitor(remote, cfg.Sync.ProbeInterval, log)
	defer monitor.Close()

	services := service.NewServices(ctx, storages, remote, monitor, cfg.Sync, log)
	defer services.Cache.Close()

	login(ctx, remote, log)

	unsubscribe := services.Coordinator.Subscribe(func(s models.SyncStatus) {
		fmt.Println(statusline.Render(s))
	})
	defer unsubscribe()

	// SIGUSR1 stands in for the platform's "app foregrounded" signal.
	foreground := make(chan os.Signal, 1)
	signal.Notify(foreground, syscall.SIGUSR1)
	go func() {
		for range foreground {
			services.Coordinator.Foreground(ctx)
		}
	}()

	if err = services.Coordinator.Run(ctx); err != nil && ctx.Err() == nil {
		log.Err(err).Msg("coordinator stopped")
	}

	services.Coordinator.Shutdown()
	log.Info().Msg("client stopped")
}

// login authenticates with credentials from the environment. Without them
// the client still runs: local reads work and mutations queue while offline,
// but replays will be rejected until a token is obtained.
func login(ctx context.Context, remote adapter.RemoteAPI, log *logger.Logger) {
	creds := models.Credentials{
		Login:    os.Getenv("KAKEIBO_LOGIN"),
		Password: os.Getenv("KAKEIBO_PASSWORD"),
	}
	if creds.Login == "" {
		log.Warn().Msg("no credentials in environment, running unauthenticated")
		return
	}

	token, err := remote.Login(ctx, creds)
	if err != nil {
		log.Err(err).Msg("login failed")
		return
	}

	log.Info().Int64("user_id", token.UserID).Msg("logged in")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
