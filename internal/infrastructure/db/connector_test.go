package db

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/damon-houk/finance-tracker/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHandle struct {
	id int
}

func testLogger() logger.Logger {
	return logger.NewJSONLogger(&bytes.Buffer{}, logger.ErrorLevel)
}

func TestConnectorDialsOnceUnderConcurrentFirstCalls(t *testing.T) {
	var dials int32
	release := make(chan struct{})

	conn := NewConnector("fake", func(ctx context.Context) (*fakeHandle, error) {
		n := atomic.AddInt32(&dials, 1)
		<-release
		return &fakeHandle{id: int(n)}, nil
	}, nil, time.Second, testLogger())

	const callers = 20
	handles := make([]*fakeHandle, callers)
	errs := make([]error, callers)

	var started, done sync.WaitGroup
	started.Add(callers)
	done.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer done.Done()
			started.Done()
			handles[i], errs[i] = conn.Get(context.Background())
		}(i)
	}

	started.Wait()
	time.Sleep(20 * time.Millisecond)
	close(release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, handles[0], handles[i])
	}

	// Later calls reuse the cached handle
	h, err := conn.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, handles[0], h)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestConnectorDoesNotCacheFailures(t *testing.T) {
	var dials int32
	conn := NewConnector("fake", func(ctx context.Context) (*fakeHandle, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return &fakeHandle{id: 2}, nil
	}, nil, time.Second, testLogger())

	_, err := conn.Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to fake")

	h, err := conn.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, h.id)
}

func TestConnectorClose(t *testing.T) {
	var closed int32
	conn := NewConnector("fake", func(ctx context.Context) (*fakeHandle, error) {
		return &fakeHandle{id: 1}, nil
	}, func(ctx context.Context, h *fakeHandle) error {
		atomic.AddInt32(&closed, 1)
		return nil
	}, time.Second, testLogger())

	require.NoError(t, conn.Ping(context.Background()))
	require.NoError(t, conn.Close(context.Background()))
	require.NoError(t, conn.Close(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&closed))

	_, err := conn.Get(context.Background())
	assert.ErrorIs(t, err, ErrConnectorClosed)
}

func TestConnectorCloseBeforeDial(t *testing.T) {
	conn := NewConnector("fake", func(ctx context.Context) (*fakeHandle, error) {
		t.Fatal("dial should not be called")
		return nil, nil
	}, nil, time.Second, testLogger())

	require.NoError(t, conn.Close(context.Background()))
	_, err := conn.Get(context.Background())
	assert.ErrorIs(t, err, ErrConnectorClosed)
}

func TestConnectorCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	conn := NewConnector("fake", func(ctx context.Context) (*fakeHandle, error) {
		<-release
		return &fakeHandle{id: 7}, nil
	}, nil, time.Second, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := conn.Get(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// The dial started by the cancelled caller still completes for others
	close(release)
	h, err := conn.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, h.id)
}
