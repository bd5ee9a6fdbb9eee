package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/tabsession/internal/logging"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, logging.ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, logging.ParseLevel("WARNING"))
	assert.Equal(t, zerolog.Disabled, logging.ParseLevel("off"))
	assert.Equal(t, zerolog.InfoLevel, logging.ParseLevel("nonsense"))
}

func TestContextFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: zerolog.DebugLevel, Format: "json", Output: &buf})

	ctx := logging.WithContext(context.Background(), logger)
	ctx = logging.WithComponent(ctx, "tabstore")
	ctx = logging.WithSlot(ctx, 2)
	ctx = logging.WithTabID(ctx, 42)

	logging.FromContext(ctx).Info().Msg("hello")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "tabstore", line["component"])
	assert.EqualValues(t, 2, line["slot"])
	assert.Equal(t, "42", line["tab_id"])
	assert.Equal(t, "hello", line["message"])
}

func TestFromContextWithoutLoggerIsDisabled(t *testing.T) {
	log := logging.FromContext(context.Background())
	require.NotNil(t, log)
	assert.Equal(t, zerolog.Disabled, log.GetLevel())
}

func TestFileOutputReceivesJSON(t *testing.T) {
	var console, file bytes.Buffer
	logger := logging.New(logging.Config{Level: zerolog.InfoLevel, Format: "console", Output: &console, File: &file})

	logger.Info().Int("slot", 1).Msg("saved")

	assert.Contains(t, console.String(), "saved")
	var line map[string]any
	require.NoError(t, json.Unmarshal(file.Bytes(), &line))
	assert.EqualValues(t, 1, line["slot"])
}

func TestSetLevelCapsExistingLoggers(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	var buf bytes.Buffer
	logger := logging.New(logging.Config{Level: zerolog.DebugLevel, Format: "json", Output: &buf})

	logging.SetLevel("warn")
	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logging.SetLevel("debug")
	logger.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}
