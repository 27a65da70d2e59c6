package buyback

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contractbot/internal/ports"
)

func TestPercent(t *testing.T) {
	p := New(80)
	assert.Equal(t, 80.0, p.Get())

	require.NoError(t, p.Set(95.5))
	assert.Equal(t, 95.5, p.Get())

	assert.ErrorIs(t, p.Set(-1), ports.ErrInvalidInput)
	assert.ErrorIs(t, p.Set(math.NaN()), ports.ErrInvalidInput)
	assert.Equal(t, 95.5, p.Get())
}

func TestPercentConcurrent(t *testing.T) {
	p := New(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(v float64) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = p.Set(v)
				_ = p.Get()
			}
		}(float64(i * 10))
	}
	wg.Wait()
	assert.Contains(t, []float64{0, 10, 20, 30, 40, 50, 60, 70}, p.Get())
}
