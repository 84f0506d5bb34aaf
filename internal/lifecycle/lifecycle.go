// Package lifecycle runs the finite jobs of a command, such as a batch of
// simulated battles, and stops them cleanly on SIGINT or SIGTERM.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// ErrInterrupted is returned by Run when a signal or the parent context
// ended the jobs before they finished.
var ErrInterrupted = errors.New("interrupted")

// Service is a job that runs to completion unless stopped.
type Service interface {
	// Start runs the job and blocks until it finishes or is stopped.
	Start() error
	// Stop asks a running job to return early. It must be safe to call
	// after Start has returned.
	Stop()
}

// FuncService adapts a start/stop function pair into the Service interface.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

// Start calls the underlying start function.
func (f *FuncService) Start() error { return f.StartFn() }

// Stop calls the underlying stop function.
func (f *FuncService) Stop() { f.StopFn() }

// ContextService runs fn with a context that Stop cancels.
func ContextService(ctx context.Context, fn func(context.Context) error) *FuncService {
	ctx, cancel := context.WithCancel(ctx)
	return &FuncService{
		StartFn: func() error {
			defer cancel()
			return fn(ctx)
		},
		StopFn: cancel,
	}
}

// Lifecycle manages the startup and shutdown of multiple services.
// Services are started together and stopped in reverse order.
type Lifecycle struct {
	logger   *zap.Logger
	services []namedService
	mu       sync.Mutex
}

type namedService struct {
	name    string
	service Service
}

type outcome struct {
	name string
	err  error
}

// NewLifecycle creates a new Lifecycle manager.
//
// Precondition: logger must be non-nil.
func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a named service.
//
// Precondition: name must be non-empty; svc must be non-nil.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.services = append(l.services, namedService{name: name, service: svc})
}

// Run starts all services and blocks until every one has finished, one
// fails, or a termination signal arrives. On failure or signal the
// remaining services are stopped in reverse order and awaited.
//
// Postcondition: no service is running when Run returns. The error is the
// first service failure, ErrInterrupted, or nil when all services finished.
func (l *Lifecycle) Run(ctx context.Context) error {
	start := time.Now()
	l.mu.Lock()
	services := append([]namedService(nil), l.services...)
	l.mu.Unlock()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	doneCh := make(chan outcome, len(services))
	for _, ns := range services {
		go func() {
			l.logger.Info("starting service", zap.String("service", ns.name))
			svcStart := time.Now()
			err := ns.service.Start()
			if err != nil {
				l.logger.Error("service failed",
					zap.String("service", ns.name),
					zap.Error(err),
					zap.Duration("uptime", time.Since(svcStart)),
				)
			} else {
				l.logger.Info("service finished",
					zap.String("service", ns.name),
					zap.Duration("elapsed", time.Since(svcStart)),
				)
			}
			doneCh <- outcome{name: ns.name, err: err}
		}()
	}

	var result error
	finished := 0
wait:
	for finished < len(services) {
		select {
		case o := <-doneCh:
			finished++
			if o.err != nil {
				result = fmt.Errorf("service %s: %w", o.name, o.err)
				break wait
			}
		case <-ctx.Done():
			l.logger.Info("interrupted, shutting down", zap.Error(context.Cause(ctx)))
			result = ErrInterrupted
			break wait
		}
	}

	if finished < len(services) {
		l.shutdown(services)
		for ; finished < len(services); finished++ {
			<-doneCh
		}
	}

	l.logger.Info("lifecycle complete",
		zap.Int("services", len(services)),
		zap.Duration("total_uptime", time.Since(start)),
	)
	return result
}

func (l *Lifecycle) shutdown(services []namedService) {
	shutdownStart := time.Now()
	for i := len(services) - 1; i >= 0; i-- {
		ns := services[i]
		l.logger.Info("stopping service", zap.String("service", ns.name))
		ns.service.Stop()
	}
	l.logger.Info("all services stopped",
		zap.Duration("shutdown_elapsed", time.Since(shutdownStart)),
	)
}

// Interrupted reports whether err came from an interrupted Run.
func Interrupted(err error) bool {
	return errors.Is(err, ErrInterrupted)
}

