package buyback

import (
	"fmt"
	"math"
	"sync/atomic"

	"contractbot/internal/ports"
)

// Percent holds the live buyback percentage. Readers take one snapshot per
// use; writes from the command surface are visible to the next snapshot.
type Percent struct {
	bits atomic.Uint64
}

func New(seed float64) *Percent {
	p := &Percent{}
	p.bits.Store(math.Float64bits(seed))
	return p
}

func (p *Percent) Get() float64 {
	return math.Float64frombits(p.bits.Load())
}

// Set replaces the percentage. Negative and non-finite values are rejected.
func (p *Percent) Set(v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%w: buyback percent %v", ports.ErrInvalidInput, v)
	}
	p.bits.Store(math.Float64bits(v))
	return nil
}
