package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/devicepilot/internal/dispatcher"
	"github.com/mj1618/devicepilot/internal/intent"
	"github.com/mj1618/devicepilot/internal/status"
)

func TestRun_OfflineOpensApp(t *testing.T) {
	dev := homeScreen()
	c := newCLI(t, dev)

	var res dispatcher.Result
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("run", "--offline", "open", "youtube")), &res))
	assert.True(t, res.Executed)
	assert.Equal(t, intent.OpenApp, res.Kind)
	assert.Equal(t, dispatcher.SourceFallback, res.Source)

	launches := dev.EventsOf("launch")
	require.Len(t, launches, 1)
	assert.Equal(t, "com.google.android.youtube", launches[0].Package)
}

func TestRun_ClassifierUnreachableFallsBack(t *testing.T) {
	dev := homeScreen()
	c := newCLI(t, dev)
	t.Setenv("GEMINI_API_KEY", "test-key")

	var res dispatcher.Result
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("run", "open", "youtube")), &res))
	assert.True(t, res.Executed)
	assert.Equal(t, dispatcher.SourceFallback, res.Source)
}

func TestRun_NotExecutedIsError(t *testing.T) {
	c := newCLI(t, homeScreen())

	out, err := c.run("run", "--offline", "hello", "there")
	require.Error(t, err)
	assert.Contains(t, out, "executed: false")
}

func TestRun_NoDevice(t *testing.T) {
	c := newCLI(t, nil)
	_, err := c.run("run", "--offline", "open", "youtube")
	assert.Error(t, err)
}

func TestStreamStatus(t *testing.T) {
	tracker := status.NewTracker(nil)
	var buf bytes.Buffer
	stop := streamStatus(&buf, tracker)

	tracker.Update("WhatsApp", "Opening chat")
	// stop closes the subscription; the buffered event is still drained.
	stop()

	assert.Contains(t, buf.String(), "[WhatsApp] Opening chat")
}

func TestClassify_Offline(t *testing.T) {
	c := newCLI(t, nil)

	var res ClassifyResult
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("classify", "--offline", "turn", "off", "wifi")), &res))
	assert.Equal(t, "fallback", res.Source)
	assert.True(t, res.Command)
	assert.Equal(t, intent.ToggleWifi, res.Intent.Kind)
}

func TestClassify_NotACommand(t *testing.T) {
	c := newCLI(t, nil)

	var res ClassifyResult
	require.NoError(t, yaml.Unmarshal([]byte(c.mustRun("classify", "--offline", "how", "are", "you")), &res))
	assert.False(t, res.Command)
	assert.Equal(t, intent.Unknown, res.Intent.Kind)
}
