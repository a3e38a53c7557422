package daemon

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/username/workday-calendar/internal/calendar"
)

const shutdownTimeout = 10 * time.Second

// Refresher reloads a year bypassing any cache
type Refresher interface {
	Refresh(ctx context.Context, year int) calendar.YearDataSet
}

// Options configures the daemon
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RefreshInterval time.Duration // zero or negative disables background refresh
	Location        *time.Location
}

// Daemon serves the HTTP API and keeps the current and next year's data fresh
type Daemon struct {
	server          *http.Server
	refresher       Refresher
	refreshInterval time.Duration
	location        *time.Location
	now             func() time.Time
	logger          *zap.Logger
	ctx             context.Context
	cancel          context.CancelFunc

	mu          sync.Mutex
	warmRunning bool
	lastWarm    time.Time
	boundAddr   string
}

// NewDaemon creates a new daemon instance
func NewDaemon(handler http.Handler, refresher Refresher, opts Options, logger *zap.Logger) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())

	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}

	return &Daemon{
		server: &http.Server{
			Addr:         opts.Addr,
			Handler:      handler,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		},
		refresher:       refresher,
		refreshInterval: opts.RefreshInterval,
		location:        loc,
		now:             time.Now,
		logger:          logger,
		ctx:             ctx,
		cancel:          cancel,
	}
}

// Start serves until Stop is called or SIGINT/SIGTERM arrives, then shuts the
// server down gracefully.
func (d *Daemon) Start() error {
	ln, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", d.server.Addr, err)
	}

	d.mu.Lock()
	d.boundAddr = ln.Addr().String()
	d.mu.Unlock()

	d.logger.Info("Daemon started",
		zap.String("addr", d.boundAddr),
		zap.Duration("refresh_interval", d.refreshInterval))

	serveErr := make(chan error, 1)
	go func() {
		if err := d.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go d.Warm()

	// a nil channel never fires, which disables refresh
	var tick <-chan time.Time
	if d.refreshInterval > 0 {
		ticker := time.NewTicker(d.refreshInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-d.ctx.Done():
			d.logger.Info("Daemon stopping")
			return d.shutdown()

		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down",
				zap.String("signal", sig.String()))
			d.Stop()
			return d.shutdown()

		case err, ok := <-serveErr:
			if ok {
				d.Stop()
				return fmt.Errorf("http server failed: %w", err)
			}
			serveErr = nil

		case <-tick:
			go d.Warm()
		}
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Addr returns the address the server is listening on, empty before Start
func (d *Daemon) Addr() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.boundAddr
}

// LastWarm returns when the last warm-up run finished
func (d *Daemon) LastWarm() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastWarm
}

// Warm reloads the current and next year from upstream so cached entries are
// replaced before they expire and queries near the year boundary never wait.
// Overlapping runs are skipped.
func (d *Daemon) Warm() {
	d.mu.Lock()
	if d.warmRunning {
		d.mu.Unlock()
		d.logger.Debug("Cache warm-up already running, skipping")
		return
	}
	d.warmRunning = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.warmRunning = false
		d.lastWarm = d.now()
		d.mu.Unlock()
	}()

	year := d.now().In(d.location).Year()
	for _, y := range []int{year, year + 1} {
		records := d.refresher.Refresh(d.ctx, y)
		d.logger.Info("Calendar year warmed",
			zap.Int("year", y),
			zap.Int("records", len(records)))
	}
}

func (d *Daemon) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := d.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	d.logger.Info("Daemon stopped")
	return nil
}
