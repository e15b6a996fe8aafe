// Package simulation drives the range at a fixed timestep.
package simulation

import (
	"context"
	"sync/atomic"
	"time"

	"shootingrange/rangesim/internal/logging"
)

const (
	defaultHz         = 60
	defaultMaxCatchUp = 5
)

// StepFunc advances the simulation by one fixed step. tick counts from 1.
type StepFunc func(tick uint64, step time.Duration)

// Options configures a loop.
type Options struct {
	// TickRate is the target frequency in steps per second.
	TickRate int
	// MaxCatchUp bounds how many steps one wake-up may run; the rest of a
	// stall is dropped instead of replayed in a burst.
	MaxCatchUp int
	Monitor    *TickMonitor
	Logger     *logging.Logger
}

// Loop drives a fixed timestep simulation with an accumulator.
type Loop struct {
	step       time.Duration
	maxCatchUp int
	stepFunc   StepFunc
	monitor    *TickMonitor
	log        *logging.Logger

	newTicker func(time.Duration) (<-chan time.Time, func())
	now       func() time.Time

	ticks   atomic.Uint64
	skipped atomic.Uint64
	running atomic.Bool
}

// NewLoop configures a loop that calls step at the configured rate.
func NewLoop(opts Options, step StepFunc) *Loop {
	hz := opts.TickRate
	if hz <= 0 {
		hz = defaultHz
	}
	catchUp := opts.MaxCatchUp
	if catchUp <= 0 {
		catchUp = defaultMaxCatchUp
	}
	if step == nil {
		step = func(uint64, time.Duration) {}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.L()
	}
	return &Loop{
		step:       time.Second / time.Duration(hz),
		maxCatchUp: catchUp,
		stepFunc:   step,
		monitor:    opts.Monitor,
		log:        logger.With(logging.String("component", "simulation_loop")),
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			ticker := time.NewTicker(d)
			return ticker.C, ticker.Stop
		},
		now: time.Now,
	}
}

// Run ticks until ctx is cancelled. It blocks and returns ctx.Err().
func (l *Loop) Run(ctx context.Context) error {
	ticks, stop := l.newTicker(l.step)
	defer stop()
	l.running.Store(true)
	defer l.running.Store(false)
	l.log.Info("simulation loop started", logging.Duration("step", l.step), logging.Int("max_catch_up", l.maxCatchUp))

	last := l.now()
	var accumulator time.Duration
	for {
		select {
		case <-ctx.Done():
			l.log.Info("simulation loop stopped", logging.Uint64("ticks", l.ticks.Load()), logging.Uint64("skipped", l.skipped.Load()))
			return ctx.Err()
		case now := <-ticks:
			//1.- Accumulate elapsed time and run fixed steps while catching up.
			accumulator += now.Sub(last)
			last = now
			ran := 0
			for accumulator >= l.step && ran < l.maxCatchUp {
				l.runStep()
				accumulator -= l.step
				ran++
			}
			//2.- A stall longer than the catch-up budget is forgotten.
			if accumulator >= l.step {
				dropped := uint64(accumulator / l.step)
				l.skipped.Add(dropped)
				accumulator -= time.Duration(dropped) * l.step
				l.log.Warn("simulation fell behind", logging.Uint64("dropped_steps", dropped))
			}
		}
	}
}

func (l *Loop) runStep() {
	tick := l.ticks.Add(1)
	start := l.now()
	l.stepFunc(tick, l.step)
	l.monitor.Observe(l.now().Sub(start))
}

// StepDuration exposes the configured timestep.
func (l *Loop) StepDuration() time.Duration {
	if l == nil {
		return 0
	}
	return l.step
}

// Ticks returns how many steps have run.
func (l *Loop) Ticks() uint64 { return l.ticks.Load() }

// Skipped returns how many steps were dropped after stalls.
func (l *Loop) Skipped() uint64 { return l.skipped.Load() }

// Running reports whether Run is active.
func (l *Loop) Running() bool { return l.running.Load() }
