package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNvidiaSMIOutput(t *testing.T) {
	metrics, err := parseNvidiaSMIOutput("62, 45")
	require.NoError(t, err)
	assert.InDelta(t, 62.0, metrics.TemperatureCelsius, 0.001)
	assert.InDelta(t, 45.0, metrics.UsagePercent, 0.001)
}

func TestParseNvidiaSMIOutputMultiGPU(t *testing.T) {
	// Only the first device is sampled.
	metrics, err := parseNvidiaSMIOutput("55, 10\n71, 98")
	require.NoError(t, err)
	assert.InDelta(t, 55.0, metrics.TemperatureCelsius, 0.001)
	assert.InDelta(t, 10.0, metrics.UsagePercent, 0.001)
}

func TestParseNvidiaSMIOutputClampsUsage(t *testing.T) {
	metrics, err := parseNvidiaSMIOutput("40, 117")
	require.NoError(t, err)
	assert.InDelta(t, 100.0, metrics.UsagePercent, 0.001)
}

func TestParseNvidiaSMIOutputMalformed(t *testing.T) {
	for _, out := range []string{"", "62", "a, b", "62; 45", "62, 45, 7"} {
		_, err := parseNvidiaSMIOutput(out)
		assert.Error(t, err, "output %q", out)
	}
}
