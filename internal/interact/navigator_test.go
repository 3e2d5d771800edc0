// File: internal/interact/navigator_test.go
package interact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func navigateCalls(calls []string) int {
	n := 0
	for _, c := range calls {
		if len(c) >= 8 && c[:8] == "navigate" {
			n++
		}
	}
	return n
}

func TestNavigatorVisit(t *testing.T) {
	const url = "https://chat.example.com/g/abc"

	t.Run("SucceedsFirstAttemptWithoutRetry", func(t *testing.T) {
		probe := newFakeProbe()
		nav := NewNavigator(probe, newFakeClock(), zap.NewNop(), 90*time.Second, 2*time.Second)

		require.NoError(t, nav.Visit(context.Background(), url))
		assert.Equal(t, 1, navigateCalls(probe.callsMade()))
	})

	t.Run("RetriesExactlyOnceOnDeadPage", func(t *testing.T) {
		probe := newFakeProbe()
		// First liveness probe fails, second attempt is clean.
		probe.titleErrs = []error{errors.New("target crashed"), nil}
		nav := NewNavigator(probe, newFakeClock(), zap.NewNop(), 90*time.Second, 2*time.Second)

		require.NoError(t, nav.Visit(context.Background(), url))
		assert.Equal(t, 2, navigateCalls(probe.callsMade()))
	})

	t.Run("SecondFailureIsTerminal", func(t *testing.T) {
		probe := newFakeProbe()
		probe.navErrs = []error{errors.New("net::ERR_NAME_NOT_RESOLVED"), errors.New("net::ERR_NAME_NOT_RESOLVED")}
		nav := NewNavigator(probe, newFakeClock(), zap.NewNop(), 90*time.Second, 2*time.Second)

		err := nav.Visit(context.Background(), url)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNavigationFailed)
		assert.Contains(t, err.Error(), url)
		// Exactly one retry, never a loop.
		assert.Equal(t, 2, navigateCalls(probe.callsMade()))
	})

	t.Run("CancelledContextShortCircuitsRetry", func(t *testing.T) {
		probe := newFakeProbe()
		probe.navErrs = []error{errors.New("aborted")}
		nav := NewNavigator(probe, newFakeClock(), zap.NewNop(), 90*time.Second, 2*time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := nav.Visit(ctx, url)
		require.ErrorIs(t, err, ErrNavigationFailed)
		assert.Equal(t, 1, navigateCalls(probe.callsMade()))
	})
}
