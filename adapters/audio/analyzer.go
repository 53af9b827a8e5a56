package audio

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/goatbotdev/goatbot/domain/repositories"
)

// Energy metric names accepted by NewAnalyzer.
const (
	MetricRMS  = "rms"
	MetricMean = "mean"
)

// RMSAnalyzer computes the root mean square amplitude of a little
// endian 16-bit PCM frame.
type RMSAnalyzer struct{}

var _ repositories.SpectrumAnalyzer = (*RMSAnalyzer)(nil)

func (RMSAnalyzer) Energy(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		v := float64(sample)
		sum += v * v
	}
	return math.Sqrt(sum / float64(n))
}

// MeanAnalyzer computes the mean absolute amplitude of a little endian
// 16-bit PCM frame. Cheaper than RMS, less sensitive to short spikes.
type MeanAnalyzer struct{}

var _ repositories.SpectrumAnalyzer = (*MeanAnalyzer)(nil)

func (MeanAnalyzer) Energy(frame []byte) float64 {
	n := len(frame) / 2
	if n == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		sample := int16(binary.LittleEndian.Uint16(frame[i*2:]))
		sum += math.Abs(float64(sample))
	}
	return sum / float64(n)
}

// NewAnalyzer returns the analyzer for the configured metric name.
func NewAnalyzer(metric string) (repositories.SpectrumAnalyzer, error) {
	switch metric {
	case MetricRMS:
		return RMSAnalyzer{}, nil
	case MetricMean:
		return MeanAnalyzer{}, nil
	default:
		return nil, fmt.Errorf("unknown energy metric %q", metric)
	}
}
