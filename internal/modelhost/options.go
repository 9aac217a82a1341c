package modelhost

import (
	"fmt"
	"math"
)

const (
	DefaultNumReturnSequences = 1
	DefaultNumBeams           = 5
	DefaultTemperature        = 1.0
)

// Options are the per-call beam search settings.
type Options struct {
	NumReturnSequences int
	NumBeams           int
	Temperature        float64
}

func DefaultOptions() Options {
	return Options{
		NumReturnSequences: DefaultNumReturnSequences,
		NumBeams:           DefaultNumBeams,
		Temperature:        DefaultTemperature,
	}
}

// Validate checks the options beam search can honour. Beam search cannot
// return more distinct sequences than beams it explores.
func (o Options) Validate() error {
	if o.NumBeams < 1 {
		return newInvalidOptions(fmt.Sprintf("num_beams must be a positive integer, got %d", o.NumBeams))
	}
	if o.NumReturnSequences < 1 {
		return newInvalidOptions(fmt.Sprintf("num_return_sequences must be a positive integer, got %d", o.NumReturnSequences))
	}
	if o.NumReturnSequences > o.NumBeams {
		return newInvalidOptions(fmt.Sprintf("num_return_sequences (%d) must not exceed num_beams (%d)", o.NumReturnSequences, o.NumBeams))
	}
	if math.IsNaN(o.Temperature) || math.IsInf(o.Temperature, 0) || o.Temperature <= 0 {
		return newInvalidOptions(fmt.Sprintf("temperature must be a positive number, got %v", o.Temperature))
	}
	return nil
}
