package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/go-logr/logr/funcr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Rorical/RoriAtlas/internal/config"
	"github.com/Rorical/RoriAtlas/internal/eventbus"
	"github.com/Rorical/RoriAtlas/internal/schema"
)

var gwalior = &schema.CityDetails{
	StateName:      "Madhya Pradesh",
	StateCapital:   "Bhopal",
	CountryName:    "India",
	CountryCapital: "New Delhi",
}

func TestWriteRecordJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, gwalior, "json"))

	var got map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, map[string]string{
		"state_name":      "Madhya Pradesh",
		"state_capital":   "Bhopal",
		"country_name":    "India",
		"country_capital": "New Delhi",
	}, got)
}

func TestWriteRecordYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, gwalior, "yaml"))

	var got schema.CityDetails
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *gwalior, got)
}

func TestWriteRecordTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeRecord(&buf, gwalior, "table"))
	assert.Contains(t, buf.String(), "Bhopal")
}

func TestCheckFormat(t *testing.T) {
	for _, f := range []string{"table", "json", "yaml"} {
		assert.NoError(t, checkFormat(f))
	}
	assert.Error(t, checkFormat("xml"))
}

func TestGraphCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"graph", "--format", "mermaid"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		graphFormatFlag = "ascii"
	})

	require.NoError(t, rootCmd.Execute())
	assert.Contains(t, buf.String(), "flowchart TD")
	assert.Contains(t, buf.String(), "call_model -. tool_call .-> call_tool")
}

func TestBuildLoopRequiresCredentials(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvOpenAIKey, "")
	t.Setenv(config.EnvTavilyAPIKey, "")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	_, err = buildLoop(cfg, newLogger(false), nil, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), config.EnvTavilyAPIKey)
}

func TestBuildLoop(t *testing.T) {
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvOpenAIKey, "sk-test")
	t.Setenv(config.EnvTavilyAPIKey, "tvly-test")

	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	loop, err := buildLoop(cfg, newLogger(false), nil, 2)
	require.NoError(t, err)
	assert.NotNil(t, loop)
}

func TestRemoveProfile(t *testing.T) {
	cfg := &config.Config{
		Profiles: map[string]config.Profile{
			"a": {}, "b": {},
		},
		ActiveProfile: "a",
	}

	removeProfile(cfg, "a")
	assert.Equal(t, "b", cfg.ActiveProfile)
	assert.Equal(t, []string{"b"}, cfg.ProfileNames())

	removeProfile(cfg, "b")
	assert.Equal(t, "default", cfg.ActiveProfile)
	assert.Equal(t, config.DefaultProfile(), cfg.Profiles["default"])
}

func TestEventBusLogsDroppedEvents(t *testing.T) {
	var logged []string
	logger := funcr.New(func(prefix, args string) {
		logged = append(logged, args)
	}, funcr.Options{Verbosity: 1})

	bus := newEventBus(logger)
	defer bus.Close()
	for i := 0; i < 64; i++ {
		require.NoError(t, bus.Publish(eventbus.TransitionEvent{RunID: "r"}))
	}
	assert.Empty(t, logged)

	assert.ErrorIs(t, bus.Publish(eventbus.TransitionEvent{RunID: "r"}), eventbus.ErrBusFull)
	require.Len(t, logged, 1)
	assert.Contains(t, logged[0], "run event dropped")
	assert.Contains(t, logged[0], eventbus.ErrBusFull.Error())
}
