package preview

import (
	"html/template"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestScaler_WidthSequence(t *testing.T) {
	s := NewScaler(time.Millisecond, nil)
	defer s.Close()

	for _, w := range []float64{400, 800, 1200} {
		st := s.Resize(w)
		assert.True(t, st.Visible)
		assert.InDelta(t, w/816, st.Scale, 1e-9)
		assert.InDelta(t, 8.5/11, st.Width/st.Height, 1e-9)
		assert.InDelta(t, 1056*st.Scale, st.Height, 1e-9)
	}
}

func TestScaler_InvisibleUntilFirstMeasurement(t *testing.T) {
	s := NewScaler(time.Millisecond, nil)
	defer s.Close()

	assert.False(t, s.State().Visible)
	for _, w := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		assert.False(t, s.Resize(w).Visible)
	}

	s.Resize(408)
	st := s.Resize(0)
	assert.True(t, st.Visible)
	assert.InDelta(t, 0.5, st.Scale, 1e-9)
}

func TestScaler_ObserveCoalescesBursts(t *testing.T) {
	var mu sync.Mutex
	var seen []State
	s := NewScaler(20*time.Millisecond, func(st State) {
		mu.Lock()
		seen = append(seen, st)
		mu.Unlock()
	})
	defer s.Close()

	for _, w := range []float64{300, 350, 400, 450, 816} {
		s.Observe(w)
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 1
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	assert.InDelta(t, 1.0, seen[0].Scale, 1e-9)
	mu.Unlock()
}

func TestScaler_ConcurrentResizeReportsFinalState(t *testing.T) {
	for round := 0; round < 20; round++ {
		var mu sync.Mutex
		var last State
		s := NewScaler(time.Millisecond, func(st State) {
			mu.Lock()
			last = st
			mu.Unlock()
		})

		var wg sync.WaitGroup
		for i := 1; i <= 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				s.Resize(float64(100 * i))
			}()
		}
		wg.Wait()
		s.Close()

		mu.Lock()
		assert.Equal(t, s.State(), last, "round %d", round)
		mu.Unlock()
	}
}

func TestScaler_Flush(t *testing.T) {
	s := NewScaler(time.Hour, nil)
	defer s.Close()

	s.Observe(1632)
	assert.False(t, s.State().Visible)
	s.Flush()
	assert.InDelta(t, 2.0, s.State().Scale, 1e-9)
}

func TestWrap(t *testing.T) {
	st, ok := Compute(408)
	require.True(t, ok)

	out, err := Wrap(st, template.HTML(`<div id="resume-page"></div>`))
	require.NoError(t, err)
	assert.Contains(t, out, `data-scale="0.5"`)
	assert.Contains(t, out, "aspect-ratio:8.5/11")
	assert.Contains(t, out, "transform:scale(0.5)")
	assert.Contains(t, out, "transform-origin:top left")
	assert.Contains(t, out, "width:816px;height:1056px")
	assert.Contains(t, out, "opacity:1")
	assert.Contains(t, out, `<div id="resume-page"></div>`)

	hidden, err := Wrap(State{}, "")
	require.NoError(t, err)
	assert.Contains(t, hidden, "opacity:0")
}
