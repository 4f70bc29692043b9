package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graphion/internal/config"
	"graphion/internal/deps"
	"graphion/internal/encoding"
	"graphion/internal/pipeline"
)

func TestFromResultWireShape(t *testing.T) {
	res := pipeline.Result{
		SessionID: "9b2f",
		VideoPath: "/videos/video_9b2f.mp4",
		Artifact:  encoding.Artifact{SizeBytes: 2048},
		Frames:    150,
		Duration:  1500 * time.Millisecond,
	}
	raw, err := json.Marshal(FromResult(res))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "/videos/video_9b2f.mp4", decoded["videoUrl"])
	assert.Equal(t, "9b2f", decoded["sessionId"])
	assert.EqualValues(t, 150, decoded["frames"])
	assert.EqualValues(t, 1500, decoded["elapsedMs"])
}

func TestFromDependencies(t *testing.T) {
	out := FromDependencies([]deps.Status{
		{Name: "FFmpeg", Command: "/usr/bin/ffmpeg", Available: true},
		{Name: "Chromium", Optional: true, Detail: "missing"},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "FFmpeg", out[0].Name)
	assert.True(t, out[0].Available)
	assert.True(t, out[1].Optional)
	assert.Equal(t, "missing", out[1].Detail)
}

func TestFromConfig(t *testing.T) {
	cfg := config.Default()
	status := FromConfig(&cfg)
	assert.Equal(t, 150, status.Render.Frames)
	assert.Equal(t, "gemini-2.5-flash", status.Model)
	assert.NotNil(t, status.Dependencies)

	raw, err := json.Marshal(FromConfig(nil))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"dependencies":[]`)
}

func TestFormatTime(t *testing.T) {
	assert.Empty(t, FormatTime(time.Time{}))
	ts := time.Date(2026, 3, 4, 5, 6, 7, 8_000_000, time.UTC)
	assert.Equal(t, "2026-03-04T05:06:07.008Z", FormatTime(ts))
}
