package ms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSample(t *testing.T) {
	sample := &Sample{
		FileName: "a.mzML",
		DetectedPeaks: []Peak{
			{MZ: 100, Intensity: 400, SNR: 10},  // below intensity floor
			{MZ: 101, Intensity: 600, SNR: 2.5}, // below SNR floor
			{MZ: 102, Intensity: 600, SNR: 3.0}, // passes both
			{MZ: 103, Intensity: 500, SNR: 8.0}, // exactly at intensity floor
		},
	}

	n := FilterSample(sample, 500)
	assert.Equal(t, 2, n)
	require.Len(t, sample.FilteredPeaks, 2)
	assert.Equal(t, 102.0, sample.FilteredPeaks[0].MZ)
	assert.Equal(t, 103.0, sample.FilteredPeaks[1].MZ)
	assert.Equal(t, StatusFiltered, sample.ProcessingStatus)

	// Detected peaks are left untouched.
	assert.Len(t, sample.DetectedPeaks, 4)
}

func TestFilterSampleEmpty(t *testing.T) {
	sample := &Sample{FileName: "a.mzML"}
	assert.Equal(t, 0, FilterSample(sample, 500))
	assert.Empty(t, sample.FilteredPeaks)
	assert.Equal(t, StatusFiltered, sample.ProcessingStatus)
}
