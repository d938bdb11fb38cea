package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blockingTrigger holds every rescan until release is closed.
type blockingTrigger struct {
	started chan struct{}
	release chan struct{}
	err     error
}

func newBlockingTrigger() *blockingTrigger {
	return &blockingTrigger{started: make(chan struct{}, 8), release: make(chan struct{})}
}

func (b *blockingTrigger) Rescan(ctx context.Context) error {
	b.started <- struct{}{}
	select {
	case <-b.release:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func TestRescannerRejectsConcurrentRequest(t *testing.T) {
	trigger := newBlockingTrigger()
	r := NewRescanner(trigger, time.Minute)
	assert.Equal(t, RescanIdle, r.Status())

	done, err := r.TryStart(context.Background())
	require.NoError(t, err)
	<-trigger.started
	assert.Equal(t, RescanInProgress, r.Status())

	_, err = r.TryStart(context.Background())
	assert.ErrorIs(t, err, ErrRescanBusy)
	assert.Equal(t, RescanInProgress, r.Status())

	close(trigger.release)
	<-done
	assert.Equal(t, RescanIdle, r.Status())
	assert.Empty(t, r.LastError())
	assert.Len(t, trigger.started, 0, "the rejected request must not run")

	// idle again, a new request is admitted
	done, err = r.TryStart(context.Background())
	require.NoError(t, err)
	<-done
}

func TestRescannerSurvivesRequestCancel(t *testing.T) {
	trigger := newBlockingTrigger()
	r := NewRescanner(trigger, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done, err := r.TryStart(ctx)
	require.NoError(t, err)
	<-trigger.started
	cancel()

	select {
	case <-done:
		t.Fatal("rescan ended with the request context")
	case <-time.After(50 * time.Millisecond):
	}
	close(trigger.release)
	<-done
}

func TestRescannerRecordsFailure(t *testing.T) {
	trigger := newBlockingTrigger()
	trigger.err = errors.New("restart failed")
	close(trigger.release)
	r := NewRescanner(trigger, time.Minute)

	done, err := r.TryStart(context.Background())
	require.NoError(t, err)
	<-done

	assert.Equal(t, "restart failed", r.LastError())
	assert.Equal(t, RescanIdle, r.Status())
}

func TestRescannerTimeout(t *testing.T) {
	trigger := newBlockingTrigger()
	r := NewRescanner(trigger, 20*time.Millisecond)

	done, err := r.TryStart(context.Background())
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("rescan did not time out")
	}
	assert.Contains(t, r.LastError(), context.DeadlineExceeded.Error())
}

func TestCommandTrigger(t *testing.T) {
	runner := newFakeRunner().on("sudo systemctl restart wifi-probe", "")
	trigger := NewCommandTrigger(runner, []string{"sudo", "systemctl", "restart", "wifi-probe"}, time.Second)

	require.NoError(t, trigger.Rescan(context.Background()))
	assert.Equal(t, []string{"sudo systemctl restart wifi-probe"}, runner.Calls())

	failing := NewCommandTrigger(newFakeRunner(), []string{"false"}, time.Second)
	assert.ErrorIs(t, failing.Rescan(context.Background()), errFakeExit)

	assert.Error(t, NewCommandTrigger(runner, nil, time.Second).Rescan(context.Background()))
}
