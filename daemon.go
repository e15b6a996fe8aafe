package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"

	"shootingrange/rangesim/internal/arena"
	"shootingrange/rangesim/internal/auth"
	"shootingrange/rangesim/internal/combat"
	"shootingrange/rangesim/internal/config"
	"shootingrange/rangesim/internal/events"
	httpapi "shootingrange/rangesim/internal/http"
	"shootingrange/rangesim/internal/host/headless"
	"shootingrange/rangesim/internal/input"
	"shootingrange/rangesim/internal/logging"
	"shootingrange/rangesim/internal/replay"
	"shootingrange/rangesim/internal/scheduler"
	"shootingrange/rangesim/internal/simulation"
	"shootingrange/rangesim/internal/telemetry"
)

const (
	shutdownTimeout = 5 * time.Second
	cleanerInterval = time.Hour
)

// daemon owns every long-running piece of the range process.
type daemon struct {
	cfg *config.Config
	log *logging.Logger

	catalog  *combat.Catalog
	stream   *events.Stream
	arena    *arena.Arena
	monitor  *simulation.TickMonitor
	loop     *simulation.Loop
	writer   *replay.Writer
	recorder *replay.Recorder
	cleaner  *replay.Cleaner

	handlers   *httpapi.HandlerSet
	httpServer *http.Server
	grpcServer *grpc.Server
	health     *health.Server

	httpLn net.Listener
	grpcLn net.Listener
}

func newDaemon(cfg *config.Config, logger *logging.Logger) (*daemon, error) {
	d := &daemon{cfg: cfg, log: logger.With(logging.String("component", "daemon"))}

	catalog, err := combat.Default()
	if err != nil {
		return nil, err
	}
	d.catalog = catalog
	d.stream = events.NewStream(events.Config{Retain: cfg.EventRetention})

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d.log.Info("range seeded", logging.Int64("seed", seed), logging.String("catalog", catalog.Checksum()))

	//1.- Replay recording is optional and must exist before the arena so frames can flow.
	opts := []arena.Option{arena.WithLogger(logger), arena.WithEvents(d.stream), arena.WithCatalog(catalog)}
	if cfg.ReplayDir != "" {
		writer, err := replay.NewWriter(cfg.ReplayDir, replay.Metadata{
			Seed:            seed,
			TickRate:        cfg.TickRate,
			FrameInterval:   cfg.ReplayFrameInterval,
			CatalogChecksum: catalog.Checksum(),
		}, nil)
		if err != nil {
			return nil, fmt.Errorf("open replay writer: %w", err)
		}
		d.writer = writer
		d.recorder = replay.NewRecorder(writer, d.stream, replay.RecorderOptions{Logger: logger})
		d.cleaner = replay.NewCleaner(cfg.ReplayDir, replay.RetentionPolicy{MaxSessions: cfg.ReplayMaxSessions, MaxAge: cfg.ReplayMaxAge}, logger)
		d.cleaner.Protect(writer.Session())
		opts = append(opts, arena.WithFrameRecorder(d.recorder, cfg.ReplayFrameInterval))
	}

	//2.- The arena, scene and scheduler are owned by the loop goroutine from here on.
	scene, _ := headless.NewRange(headless.WithLogger(logger))
	queue := scheduler.NewQueue(time.Now())
	a, err := arena.New(cfg, scene, queue, rand.New(rand.NewSource(seed)), opts...)
	if err != nil {
		d.close()
		return nil, fmt.Errorf("build arena: %w", err)
	}
	d.arena = a
	d.monitor = simulation.NewTickMonitor(cfg.TickInterval())
	d.loop = simulation.NewLoop(simulation.Options{
		TickRate:   cfg.TickRate,
		MaxCatchUp: cfg.MaxCatchUp,
		Monitor:    d.monitor,
		Logger:     logger,
	}, func(_ uint64, step time.Duration) { a.Step(step) })

	//3.- Player-facing HTTP surface.
	handlerOpts := httpapi.Options{
		Logger:         logger,
		Range:          a,
		Events:         d.stream,
		Ticks:          d.monitor.Snapshot,
		LoopStats:      func() (uint64, uint64) { return d.loop.Ticks(), d.loop.Skipped() },
		Gate:           input.NewGate(input.Config{MaxAge: cfg.IntentMaxAge, AimInterval: cfg.AimInterval}, logger),
		Validator:      input.NewValidator(constraintsFor(catalog), logger),
		AllowedOrigins: cfg.AllowedOrigins,
		TickRate:       cfg.TickRate,
		AdminToken:     cfg.AdminToken,
		RateLimiter:    httpapi.NewSlidingWindowLimiter(cfg.ReplayFlushWindow, cfg.ReplayFlushBurst, nil),
	}
	if d.recorder != nil {
		handlerOpts.Replay = d.recorder
		handlerOpts.ReplayStats = d.recorder.Stats
		handlerOpts.StorageStats = d.cleaner.Stats
	}
	if cfg.WSSecret != "" {
		verifier, err := auth.NewVerifier(cfg.WSSecret, config.DefaultTokenLeeway)
		if err != nil {
			d.close()
			return nil, err
		}
		handlerOpts.Verifier = verifier
	}
	d.handlers = httpapi.NewHandlerSet(handlerOpts)
	mux := http.NewServeMux()
	d.handlers.Register(mux)
	registerControlDocEndpoints(mux, catalog)
	d.httpServer = &http.Server{Handler: logging.RequestMiddleware(d.log)(mux), ReadHeaderTimeout: 5 * time.Second}

	//4.- Operator gRPC feed.
	d.grpcServer = grpc.NewServer(telemetry.ServerOptions(cfg.AdminToken, logger)...)
	service := telemetry.NewService(d.stream, func() any {
		if snap := a.Snapshot(); snap != nil {
			return snap
		}
		return nil
	}, telemetry.WithLogger(logger))
	d.health = telemetry.Register(d.grpcServer, service)
	return d, nil
}

// constraintsFor narrows the intent validator to the catalog's weapons and slots.
func constraintsFor(catalog *combat.Catalog) input.Constraints {
	constraints := input.DefaultConstraints
	constraints.Weapons = catalog.Names()
	constraints.Slots = nil
	for _, entry := range catalog.File().Weapons {
		if entry.Slot != 0 {
			constraints.Slots = append(constraints.Slots, entry.Slot)
		}
	}
	sort.Ints(constraints.Slots)
	return constraints
}

// listen binds both listeners so startup fails fast on a taken port.
func (d *daemon) listen() error {
	httpLn, err := net.Listen("tcp", d.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen http %s: %w", d.cfg.Address, err)
	}
	grpcLn, err := net.Listen("tcp", d.cfg.GRPCAddress)
	if err != nil {
		httpLn.Close()
		return fmt.Errorf("listen grpc %s: %w", d.cfg.GRPCAddress, err)
	}
	d.httpLn, d.grpcLn = httpLn, grpcLn
	return nil
}

// serve runs until ctx is cancelled or a component fails, then shuts
// everything down. A clean shutdown returns nil.
func (d *daemon) serve(ctx context.Context) error {
	if d.httpLn == nil || d.grpcLn == nil {
		return errors.New("daemon is not listening")
	}
	defer d.close()

	httpURL, wsURL := listenerURLs(d.httpLn.Addr().String(), false)
	d.log.Info("range listening",
		logging.String("http", httpURL),
		logging.String("websocket", wsURL),
		logging.String("grpc", d.grpcLn.Addr().String()),
		logging.Int("tick_rate", d.cfg.TickRate),
		logging.Bool("replay", d.recorder != nil),
		logging.Bool("player_auth", d.cfg.WSSecret != ""))

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		if err := d.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("simulation loop: %w", err)
		}
		return nil
	})
	if d.recorder != nil {
		group.Go(func() error { return d.recorder.Run(ctx) })
		group.Go(func() error {
			d.cleaner.Run(ctx, cleanerInterval)
			return nil
		})
	}
	group.Go(func() error {
		if err := d.httpServer.Serve(d.httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		if err := d.grpcServer.Serve(d.grpcLn); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		d.shutdown()
		return nil
	})

	err := group.Wait()
	if err != nil {
		d.log.Error("range stopped with error", logging.Error(err))
	} else {
		d.log.Info("range stopped", logging.Uint64("ticks", d.loop.Ticks()), logging.Uint64("skipped", d.loop.Skipped()))
	}
	return err
}

func (d *daemon) shutdown() {
	d.health.Shutdown()
	d.handlers.CloseSockets()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := d.httpServer.Shutdown(shutdownCtx); err != nil {
		d.log.Warn("http shutdown incomplete", logging.Error(err))
	}

	//1.- GracefulStop waits for streams to finish; fall back to Stop at the deadline.
	stopped := make(chan struct{})
	go func() {
		d.grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		d.grpcServer.Stop()
	}
}

// close releases the arena and the replay files once nothing else can touch them.
func (d *daemon) close() {
	if d.arena != nil {
		d.arena.Close()
	}
	if err := d.writer.Close(); err != nil {
		d.log.Warn("replay close failed", logging.Error(err))
	}
}
