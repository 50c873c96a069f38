package scheduler

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pharmez/medimate/internal/notify"
	"github.com/pharmez/medimate/internal/reminder"
)

type fakeDetector struct {
	due []reminder.Reminder
	err error
}

func (f *fakeDetector) FindDue(time.Time) ([]reminder.Reminder, error) {
	return f.due, f.err
}

type fakeDispatcher struct {
	mu         sync.Mutex
	dispatched []string
	failFor    map[string]error
}

func (f *fakeDispatcher) Dispatch(_ context.Context, r *reminder.Reminder, _ string) notify.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dispatched = append(f.dispatched, r.ID)
	if err, ok := f.failFor[r.ID]; ok {
		return notify.Result{Status: notify.StatusFailed, Err: err}
	}
	return notify.Result{Status: notify.StatusSent}
}

func (f *fakeDispatcher) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.dispatched...)
}

func newTestLoop(detector Detector, dispatcher Dispatcher) *Loop {
	return New(Config{
		DispatchTimeout: time.Second,
		MaxConcurrent:   2,
	}, detector, dispatcher, zap.NewNop())
}

func dueList(ids ...string) []reminder.Reminder {
	due := make([]reminder.Reminder, 0, len(ids))
	for _, id := range ids {
		due = append(due, reminder.Reminder{
			ID:                id,
			MedicineName:      "Lisinopril",
			Times:             []string{"08:00"},
			EmailNotification: true,
			NotificationEmail: "patient@example.com",
		})
	}
	return due
}

func TestLoop_StartStop(t *testing.T) {
	loop := newTestLoop(&fakeDetector{}, &fakeDispatcher{})

	assert.False(t, loop.IsRunning())
	require.NoError(t, loop.Start())
	assert.True(t, loop.IsRunning())

	// Starting twice is an error
	assert.Error(t, loop.Start())

	loop.Stop()
	assert.False(t, loop.IsRunning())

	// Stop is idempotent
	loop.Stop()
	assert.False(t, loop.IsRunning())
}

func TestLoop_CycleDispatchesAllDue(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	loop := newTestLoop(&fakeDetector{due: dueList("a", "b", "c")}, dispatcher)

	loop.runCycle()

	assert.ElementsMatch(t, []string{"a", "b", "c"}, dispatcher.ids())
}

func TestLoop_FailureDoesNotBlockOthers(t *testing.T) {
	dispatcher := &fakeDispatcher{
		failFor: map[string]error{"b": fmt.Errorf("smtp: connection refused")},
	}
	loop := newTestLoop(&fakeDetector{due: dueList("a", "b", "c")}, dispatcher)

	loop.runCycle()

	// The failed dispatch is logged and abandoned; the rest still go out
	assert.ElementsMatch(t, []string{"a", "b", "c"}, dispatcher.ids())
}

func TestLoop_DetectorErrorEndsCycle(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	loop := newTestLoop(&fakeDetector{err: fmt.Errorf("db locked")}, dispatcher)

	loop.runCycle()

	assert.Empty(t, dispatcher.ids())
}

func TestLoop_EmptyCycleIsNoop(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	loop := newTestLoop(&fakeDetector{}, dispatcher)

	loop.runCycle()

	assert.Empty(t, dispatcher.ids())
}

type panicDispatcher struct{}

func (panicDispatcher) Dispatch(context.Context, *reminder.Reminder, string) notify.Result {
	panic("boom")
}

func TestLoop_DispatchPanicIsContained(t *testing.T) {
	loop := newTestLoop(&fakeDetector{due: dueList("a", "b")}, panicDispatcher{})

	assert.NotPanics(t, func() { loop.runCycle() })
}
