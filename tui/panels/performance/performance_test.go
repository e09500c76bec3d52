package performance

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSparklineScalesToRange(t *testing.T) {
	out := sparkline([]float32{0, 50, 100}, 3)
	assert.Contains(t, out, "▁")
	assert.Contains(t, out, "█")
}

func TestSparklineFlatSeries(t *testing.T) {
	out := sparkline([]float32{60, 60, 60}, 3)
	// A flat series renders at the floor rather than jumping around.
	assert.Contains(t, out, "▁▁▁")
}

func TestSparklineTruncatesToWidth(t *testing.T) {
	series := make([]float32, 120)
	for i := range series {
		series[i] = float32(i)
	}
	out := sparkline(series, 10)
	// Only the last 10 samples survive; they are the highest in the series
	// but scaled against their own window.
	assert.NotEmpty(t, out)
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.0 KiB", formatBytes(1024))
	assert.Equal(t, "256.0 MiB", formatBytes(256<<20))
	assert.Equal(t, "2.0 GiB", formatBytes(2<<30))
}
