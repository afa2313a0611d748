// Package entrypoint wires configuration, storage, transport and the session
// manager together for the CLI and the HTTP bridge.
package entrypoint

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/zeeguu/internal/account"
	"github.com/mrlokans/zeeguu/internal/config"
	"github.com/mrlokans/zeeguu/internal/credstore"
	"github.com/mrlokans/zeeguu/internal/netcheck"
	"github.com/mrlokans/zeeguu/internal/session"
	"github.com/mrlokans/zeeguu/internal/tasks"
	"github.com/mrlokans/zeeguu/internal/transport"
	"github.com/mrlokans/zeeguu/internal/wordcache"
)

// Options selects how an App is assembled.
type Options struct {
	Callbacks session.Callbacks

	// Background enables the worker pool (or the backlite queue when
	// configured) for score response processing. One-shot commands leave it
	// off and reshape responses on the loop goroutine.
	Background bool

	// UserAgent is sent with every API request.
	UserAgent string
}

// App owns every long lived component. The Manager runs on the App's loop
// goroutine until Close.
type App struct {
	Config  *config.Config
	Store   *credstore.Store
	Account *account.Account
	Manager *session.Manager
	Network netcheck.Monitor

	loop   *session.Loop
	queue  *transport.Queue
	pool   *session.WorkerPool
	tasks  *tasks.Client
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// ConfigureLogging applies the configured level and format to logrus.
func ConfigureLogging(cfg config.Log) {
	if cfg.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	level, err := log.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)
}

// New assembles the application and starts its loop goroutine. The account
// is restored from storage but nothing is sent to the server yet.
func New(cfg *config.Config, opts Options) (*App, error) {
	if err := os.MkdirAll(cfg.Storage.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	store, err := credstore.New(credstore.Config{
		DatabasePath:  cfg.Storage.DatabasePath,
		EncryptionKey: cfg.Storage.EncryptionKey,
		Passphrase:    cfg.Storage.Passphrase,
		KeyFilePath:   cfg.Storage.KeyFilePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}

	acct := account.New(store, wordcache.New(cfg.Storage.CacheDir))
	acct.Load()

	network, err := newNetwork(cfg)
	if err != nil {
		store.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	a := &App{
		Config:  cfg,
		Store:   store,
		Account: acct,
		Network: network,
		loop:    session.NewLoop(),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	client := transport.NewClient(transport.Options{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		MaxRetries:        cfg.API.MaxRetries,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
		UserAgent:         opts.UserAgent,
	})
	a.queue = transport.NewQueue(ctx, client, a.loop)

	offloader, err := a.newOffloader(cfg, opts.Background)
	if err != nil {
		a.abort()
		return nil, err
	}

	a.Manager, err = session.New(session.Options{
		Account:   acct,
		Requester: a.queue,
		Network:   network,
		Callbacks: opts.Callbacks,
		Executor:  a.loop,
		Offloader: offloader,
	})
	if err != nil {
		a.abort()
		return nil, err
	}

	go func() {
		defer close(a.done)
		_ = a.loop.Run(ctx)
	}()

	log.WithFields(log.Fields{
		"api":       cfg.API.BaseURL,
		"data_dir":  cfg.Storage.DataDir,
		"logged_in": acct.IsLoggedIn(),
	}).Debug("Application assembled")
	return a, nil
}

func newNetwork(cfg *config.Config) (netcheck.Monitor, error) {
	if cfg.Network.Offline {
		log.Info("Offline mode: the network is treated as unavailable")
		return netcheck.Static(false), nil
	}
	probe, err := netcheck.NewProbe(cfg.API.BaseURL, cfg.Network.ProbeTimeout, cfg.Network.ProbeTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}
	return probe, nil
}

func (a *App) newOffloader(cfg *config.Config, background bool) (session.Offloader, error) {
	if !background {
		return session.InlineOffloader{}, nil
	}

	if cfg.Tasks.Enabled {
		client, err := tasks.NewClient(cfg.Storage.DatabasePath, tasks.Config{
			Workers:         cfg.Tasks.Workers,
			ReleaseAfter:    cfg.Tasks.ReleaseAfter,
			CleanupInterval: cfg.Tasks.CleanupInterval,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create task queue: %w", err)
		}
		offloader := tasks.NewOffloader(client)
		client.Start(a.ctx)
		a.tasks = client
		return offloader, nil
	}

	a.pool = session.NewWorkerPool(cfg.Tasks.Workers, 0)
	a.pool.Start(a.ctx)
	return a.pool, nil
}

// Run executes op on the loop goroutine and waits until every request it
// caused, directly or from a callback, has been answered and handled.
func (a *App) Run(op func(m *session.Manager)) {
	if !a.Manager.Call(func() { op(a.Manager) }) {
		return
	}
	a.Drain()
}

// Drain waits for in-flight requests and the callbacks they posted.
func (a *App) Drain() {
	for {
		a.queue.Wait()
		// Posted callbacks run in order, so a no-op call is a barrier.
		if !a.Manager.Call(func() {}) || a.queue.Pending() == 0 {
			return
		}
	}
}

// Close stops the background workers and the loop, then closes storage.
func (a *App) Close() {
	a.stopWorkers()
	a.cancel()
	<-a.done
	a.closeStore()
}

// abort releases what New acquired before the loop was started.
func (a *App) abort() {
	a.stopWorkers()
	a.cancel()
	a.closeStore()
}

func (a *App) stopWorkers() {
	if a.pool != nil {
		a.pool.Close()
	}
	if a.tasks != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.tasks.Stop(ctx)
		cancel()
		if err := a.tasks.Close(); err != nil {
			log.Printf("Failed to close task database: %v", err)
		}
	}
}

func (a *App) closeStore() {
	if err := a.Store.Close(); err != nil {
		log.Printf("Failed to close credential store: %v", err)
	}
}
