package serverapp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fluorescence-graphql/internal/config"
	"fluorescence-graphql/internal/logging"
)

func newTestLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Level: "error", Format: "text"})
}

func TestNew_RequiresConfigAndLogger(t *testing.T) {
	_, err := New(nil, newTestLogger())
	assert.Error(t, err)

	_, err = New(&config.Config{}, nil)
	assert.Error(t, err)

	app, err := New(&config.Config{}, newTestLogger())
	require.NoError(t, err)
	assert.NotNil(t, app)
}

func TestStart_RequiresInit(t *testing.T) {
	app, err := New(&config.Config{}, newTestLogger())
	require.NoError(t, err)

	_, err = app.Start()
	assert.Error(t, err)
}

func TestWaitForStop_NilChannels(t *testing.T) {
	app, err := New(&config.Config{}, newTestLogger())
	require.NoError(t, err)

	_, err = app.WaitForStop(nil, nil)
	assert.Error(t, err)
}
