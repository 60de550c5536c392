package tokens

import (
	"math"
	"sync"
)

// DefaultBias is added to the correction factor when reporting counts so
// that estimates lean slightly high.
const DefaultBias = 0.05

// smoothingWindow is the token count at which one observation moves the
// factor by 10%.
const smoothingWindow = 256.0

// Correction is a running multiplicative correction between a raw token
// estimate and the count a provider actually bills. Each ModelCounter owns
// its own corrections; nothing here is shared between instances.
type Correction struct {
	mu     sync.Mutex
	factor float64
	bias   float64
}

// NewCorrection creates a correction starting at initial. A non-positive
// initial factor starts at 1.
func NewCorrection(initial, bias float64) *Correction {
	if initial <= 0 {
		initial = 1
	}
	return &Correction{factor: initial, bias: bias}
}

// Factor returns the current correction factor, without bias.
func (c *Correction) Factor() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.factor
}

// Apply scales a raw estimate by the factor plus bias, rounding up.
func (c *Correction) Apply(raw int) int {
	if raw <= 0 {
		return 0
	}
	c.mu.Lock()
	scale := c.factor + c.bias
	c.mu.Unlock()

	// Tolerate float noise so 100*1.05 stays 105.
	return int(math.Ceil(float64(raw)*scale - 1e-9))
}

// Observe folds one authoritative measurement into the factor:
//
//	alpha = 0.9^(observed/256)
//	f     = alpha*f + (1-alpha)*(observed/raw)
//
// Large observations move the factor more than small, noisy ones.
// Non-positive inputs are ignored. Returns the updated factor.
func (c *Correction) Observe(raw, observed int) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	if raw <= 0 || observed <= 0 {
		return c.factor
	}
	measured := float64(observed) / float64(raw)
	alpha := math.Pow(0.9, float64(observed)/smoothingWindow)
	c.factor = alpha*c.factor + (1-alpha)*measured
	return c.factor
}
