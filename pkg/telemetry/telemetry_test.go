package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	tel, err := New(context.Background(), false, "cgs")
	require.NoError(t, err)

	assert.False(t, tel.Enabled())
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestShutdown_JoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	tel := &Telemetry{shutdown: []func(context.Context) error{
		func(context.Context) error { calls++; return boom },
		func(context.Context) error { calls++; return nil },
	}}

	err := tel.Shutdown(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, calls, "every provider is shut down even after a failure")
}

func TestServiceName(t *testing.T) {
	t.Setenv("OTEL_SERVICE_NAME", "")
	assert.Equal(t, "cgs", serviceName("cgs"))

	t.Setenv("OTEL_SERVICE_NAME", "custom")
	assert.Equal(t, "custom", serviceName("cgs"))
}
