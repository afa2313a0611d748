package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/config"
	http_controllers "github.com/mrlokans/zeeguu/internal/http"
	"github.com/mrlokans/zeeguu/internal/scheduler"
	"github.com/mrlokans/zeeguu/internal/session"
)

// Serve runs the HTTP bridge until SIGINT or SIGTERM.
func Serve(cfg *config.Config, version string) error {
	log.Printf("Starting zeeguu bridge v%s", version)
	gin.SetMode(gin.ReleaseMode)

	events := http_controllers.NewEventRecorder(http_controllers.DefaultEventCapacity)
	app, err := New(cfg, Options{
		Callbacks:  events,
		Background: true,
		UserAgent:  "zeeguu-bridge/" + version,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	app.Manager.Submit(app.Manager.Start)

	var sync *scheduler.WordsSyncScheduler
	if cfg.Sync.Enabled {
		sync = scheduler.NewWordsSyncScheduler(wordsSyncer(app.Manager), cfg.Sync.Schedule)
		if err := sync.Start(context.Background()); err != nil {
			return err
		}
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Manager: app.Manager,
		Events:  events,
		Store:   app.Store,
		Network: app.Network,
		Version: version,
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		if sync != nil {
			sync.Stop()
		}
		return fmt.Errorf("listen: %w", err)
	case <-quit:
	}

	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second
	log.Printf("Shutting down, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// The scheduler calls into the loop, so it stops before the app closes.
	if sync != nil {
		sync.Stop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	log.Println("Server exiting")
	return nil
}

// wordsSyncer refreshes the word list on the loop goroutine.
func wordsSyncer(m *session.Manager) scheduler.Syncer {
	return scheduler.SyncerFunc(func() bool {
		var sent bool
		m.Call(func() { sent = m.FetchWords() })
		return sent
	})
}
