package monolith

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/trader-sentinel/internal/config"
	"github.com/fd1az/trader-sentinel/internal/di"
	"github.com/fd1az/trader-sentinel/internal/logger"
)

type recordingModule struct {
	name     string
	log      *[]string
	startErr error
}

func (m recordingModule) RegisterServices(c di.Container) error {
	*m.log = append(*m.log, "register:"+m.name)
	c.Register(m.name, m.name)
	return nil
}

func (m recordingModule) Startup(_ context.Context, mono Monolith) error {
	*m.log = append(*m.log, "start:"+m.name)
	if m.startErr != nil {
		return m.startErr
	}
	mono.OnClose(func() error {
		*m.log = append(*m.log, "close:"+m.name)
		return nil
	})
	return nil
}

type brokenModule struct{}

func (brokenModule) RegisterServices(di.Container) error { return errors.New("bad wiring") }
func (brokenModule) Startup(context.Context, Monolith) error { return nil }

func testLogger() logger.LoggerInterface {
	return logger.New(io.Discard, logger.LevelError, "test", nil)
}

func TestApp_Lifecycle(t *testing.T) {
	var log []string
	a, err := New(&config.Config{}, testLogger(),
		recordingModule{name: "account", log: &log},
		recordingModule{name: "market", log: &log})
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	require.NoError(t, a.Close())

	assert.Equal(t, []string{
		"register:account", "register:market",
		"start:account", "start:market",
		"close:market", "close:account",
	}, log)
	assert.Equal(t, "market", a.Services().Get("market"))
	assert.NotNil(t, a.Services().Get("config"))
	assert.NotNil(t, a.AssetRegistry())
}

func TestApp_StartOnce(t *testing.T) {
	var log []string
	a, err := New(&config.Config{}, testLogger(), recordingModule{name: "feed", log: &log})
	require.NoError(t, err)

	require.NoError(t, a.Start(context.Background()))
	assert.Error(t, a.Start(context.Background()))
	assert.Equal(t, []string{"register:feed", "start:feed"}, log)
}

func TestApp_StartStopsAtFirstFailure(t *testing.T) {
	var log []string
	a, err := New(&config.Config{}, testLogger(),
		recordingModule{name: "account", log: &log, startErr: errors.New("store locked")},
		recordingModule{name: "market", log: &log})
	require.NoError(t, err)

	err = a.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store locked")
	assert.NotContains(t, log, "start:market")
}

func TestNew_RegisterError(t *testing.T) {
	_, err := New(&config.Config{}, testLogger(), brokenModule{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad wiring")
}

func TestApp_CloseJoinsErrors(t *testing.T) {
	a, err := New(&config.Config{}, testLogger())
	require.NoError(t, err)

	a.OnClose(func() error { return errors.New("first") })
	a.OnClose(func() error { return errors.New("second") })

	err = a.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
	assert.NoError(t, a.Close())
}
