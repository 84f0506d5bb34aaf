package lifecycle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	m.stopped.Store(true)
}

func runAsync(lc *Lifecycle, ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() { done <- lc.Run(ctx) }()
	return done
}

func await(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not return in time")
		return nil
	}
}

func TestLifecycle_ReturnsWhenAllServicesFinish(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	var runs atomic.Int32
	for _, name := range []string{"a", "b", "c"} {
		lc.Add(name, &mockService{startFn: func() error {
			runs.Add(1)
			return nil
		}})
	}
	assert.NoError(t, await(t, runAsync(lc, context.Background())))
	assert.Equal(t, int32(3), runs.Load())
}

func TestLifecycle_CancelStopsServices(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	svc1 := &mockService{}
	svc2 := &mockService{}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(lc, ctx)

	deadline := time.After(2 * time.Second)
	for !svc1.started.Load() || !svc2.started.Load() {
		select {
		case <-deadline:
			t.Fatal("services did not start in time")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	cancel()

	err := await(t, done)
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.True(t, Interrupted(err))
	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
}

func TestLifecycle_FailureStopsTheRest(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))
	boom := errors.New("boom")
	blocker := &mockService{}
	lc.Add("blocker", blocker)
	lc.Add("failing", &mockService{startFn: func() error { return boom }})

	err := await(t, runAsync(lc, context.Background()))
	assert.ErrorIs(t, err, boom)
	assert.True(t, blocker.stopped.Load())
}

func TestContextService_StopCancels(t *testing.T) {
	svc := ContextService(context.Background(), func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	done := make(chan error, 1)
	go func() { done <- svc.Start() }()
	svc.Stop()
	assert.ErrorIs(t, await(t, done), context.Canceled)
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	assert.NoError(t, svc.Start())
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}
