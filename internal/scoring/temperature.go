package scoring

import (
	"errors"
	"fmt"
)

// Temperature buckets a lead's score for routing and SLA selection.
type Temperature string

const (
	Hot  Temperature = "hot"
	Warm Temperature = "warm"
	Cold Temperature = "cold"
)

// Temperatures returns the valid buckets, hottest first.
func Temperatures() []Temperature {
	return []Temperature{Hot, Warm, Cold}
}

// Valid reports whether t is one of the three defined buckets.
func (t Temperature) Valid() bool {
	switch t {
	case Hot, Warm, Cold:
		return true
	}
	return false
}

// ErrScoreOutOfRange signals a score outside [0,100] reaching Classify.
// That is an upstream bug, not bad lead data, so it is rejected rather
// than defaulted.
var ErrScoreOutOfRange = errors.New("score outside [0,100]")

// Thresholds holds the score cutoffs separating the three buckets.
// A score of at least Hot is hot, at least Warm is warm, below is cold.
type Thresholds struct {
	Hot  int `yaml:"hot" json:"hot"`
	Warm int `yaml:"warm" json:"warm"`
}

// DefaultThresholds returns the documented 80/60 cutoffs.
func DefaultThresholds() Thresholds {
	return Thresholds{Hot: 80, Warm: 60}
}

// Validate checks 0 < Warm < Hot <= 100.
func (t Thresholds) Validate() error {
	if t.Warm <= 0 || t.Hot <= t.Warm || t.Hot > 100 {
		return fmt.Errorf("thresholds must satisfy 0 < warm < hot <= 100, got warm=%d hot=%d", t.Warm, t.Hot)
	}
	return nil
}

// Classify buckets a score into a Temperature.
func (t Thresholds) Classify(score int) (Temperature, error) {
	if score < 0 || score > 100 {
		return "", fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	}
	switch {
	case score >= t.Hot:
		return Hot, nil
	case score >= t.Warm:
		return Warm, nil
	default:
		return Cold, nil
	}
}
