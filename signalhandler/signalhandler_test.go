package signalhandler

import (
	"context"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOptimalProcs(t *testing.T) {
	procs := GetOptimalProcs()
	assert.GreaterOrEqual(t, procs, 1)
	assert.LessOrEqual(t, procs, runtime.NumCPU())
}

func TestSetupHandlerCancelsOnSignal(t *testing.T) {
	ctx, stop := SetupHandler(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("context was not cancelled after SIGTERM")
	}
}

func TestSetupHandlerStop(t *testing.T) {
	ctx, stop := SetupHandler(context.Background())
	stop()

	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
