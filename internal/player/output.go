package player

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// ErrDeviceUnavailable wraps audio device open failures. Callers may retry
// later; the device stays closed until an Ensure succeeds.
var ErrDeviceUnavailable = errors.New("audio device unavailable")

// Output owns the audio device. The speaker is opened once per process on
// first use ("unlocked") at the first track's sample rate; later tracks at
// other rates are resampled. Opening can fail on machines without a usable
// audio device, in which case every Ensure call retries.
type Output struct {
	rate  beep.SampleRate
	ready bool
}

// NewOutput creates an output whose device is opened lazily.
func NewOutput() *Output {
	return &Output{}
}

// Ensure opens the audio device if it is not open yet.
func (o *Output) Ensure(rate beep.SampleRate) error {
	if o.ready {
		return nil
	}
	if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
		return fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}
	o.rate = rate
	o.ready = true
	return nil
}

// Ready returns true once the device is open.
func (o *Output) Ready() bool {
	return o.ready
}

// Adapt resamples a streamer to the device rate if needed.
func (o *Output) Adapt(format beep.Format, s beep.Streamer) beep.Streamer {
	if format.SampleRate == o.rate {
		return s
	}
	return beep.Resample(4, format.SampleRate, o.rate, s)
}

// levelToVolume converts a 0.0-1.0 level to beep's log scale (base 2).
// 1.0 maps to 0 (unchanged), 0.5 to -1 (half), 0 to effectively silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
