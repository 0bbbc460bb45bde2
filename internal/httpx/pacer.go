package httpx

import (
	"math/rand"
	"time"
)

// Pacer introduces a politeness delay before every outbound request.
type Pacer interface {
	Pace()
}

// PacerFunc adapts a plain function to the Pacer interface.
type PacerFunc func()

// Pace calls the wrapped function.
func (f PacerFunc) Pace() { f() }

// RandomPacer sleeps a whole number of seconds drawn uniformly from
// [1, maxSeconds) to avoid a recognizable request cadence.
type RandomPacer struct {
	maxSeconds int
	sleep      func(time.Duration)
	intn       func(n int) int
}

// NewRandomPacer builds a pacer with the given upper bound. A bound of 1
// or less is a configuration error caught by config validation, not here.
func NewRandomPacer(maxSeconds int) *RandomPacer {
	return &RandomPacer{
		maxSeconds: maxSeconds,
		sleep:      time.Sleep,
		intn:       rand.Intn,
	}
}

// Pace blocks for the drawn delay.
func (p *RandomPacer) Pace() {
	window := p.maxSeconds - 1
	if window <= 0 {
		window = 1
	}
	p.sleep(time.Duration(1+p.intn(window)) * time.Second)
}
