//go:build !gst

package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ar-viewer/internal/ar"
)

func TestGStreamerUnavailableWithoutTag(t *testing.T) {
	g := NewGStreamer(GStreamerConfig{Width: 640, Height: 480})
	err := g.Start()
	assert.True(t, ar.IsKind(err, ar.CameraUnavailable))
	assert.Equal(t, err, g.Err())
	assert.False(t, Available)
	g.Stop()
}
