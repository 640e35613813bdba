// Package preview fits the fixed-size logical page into a container of any
// width.
package preview

import (
	"bytes"
	"fmt"
	"html/template"
	"math"
	"sync"
	"time"

	"resume-render/internal/render"
	"resume-render/pkg/debounce"
)

// AspectRatio is the page width divided by its height (US letter).
const AspectRatio = 8.5 / 11

// State is the layout of the preview frame for one container width.
type State struct {
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Scale   float64 `json:"scale"`
	Visible bool    `json:"visible"`
}

// Compute returns the frame layout for a container of the given width. The
// zero State (invisible) is returned for widths that are not a valid
// measurement.
func Compute(width float64) (State, bool) {
	if math.IsNaN(width) || math.IsInf(width, 0) || width <= 0 {
		return State{}, false
	}
	return State{
		Width:   width,
		Height:  width / AspectRatio,
		Scale:   width / render.PageWidth,
		Visible: true,
	}, true
}

// Scaler tracks the container width of one preview and reports layout
// changes. Until the first valid measurement its state is invisible.
type Scaler struct {
	onChange func(State)
	deb      *debounce.Debouncer

	mu      sync.Mutex
	state   State
	pending float64

	// notifyMu orders onChange calls; delivered is the last state reported.
	notifyMu  sync.Mutex
	delivered State
}

// NewScaler creates a Scaler. Observe coalesces resize bursts shorter than
// delay; onChange may be nil and must not call back into the Scaler.
func NewScaler(delay time.Duration, onChange func(State)) *Scaler {
	s := &Scaler{onChange: onChange}
	s.deb = debounce.New(delay, s.apply)
	return s
}

// State returns the current layout.
func (s *Scaler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Resize applies width immediately. Invalid widths keep the previous state.
func (s *Scaler) Resize(width float64) State {
	next, ok := Compute(width)
	s.mu.Lock()
	if !ok || next == s.state {
		st := s.state
		s.mu.Unlock()
		return st
	}
	s.state = next
	s.mu.Unlock()

	s.deliver()
	return next
}

// deliver reports the current state. Calls are serialized and skip states
// already reported, so the last onChange always carries the newest layout.
func (s *Scaler) deliver() {
	if s.onChange == nil {
		return
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	st := s.state
	s.mu.Unlock()
	if st == s.delivered {
		return
	}
	s.delivered = st
	s.onChange(st)
}

// Observe records a resize event. The latest width of a burst is applied
// once the burst has quieted.
func (s *Scaler) Observe(width float64) {
	s.mu.Lock()
	s.pending = width
	s.mu.Unlock()
	s.deb.Trigger()
}

// Flush applies a pending observed width now.
func (s *Scaler) Flush() {
	s.deb.Flush()
}

// Close drops any pending observation.
func (s *Scaler) Close() {
	s.deb.Stop()
}

func (s *Scaler) apply() {
	s.mu.Lock()
	w := s.pending
	s.mu.Unlock()
	s.Resize(w)
}

var frame = template.Must(template.New("frame").Parse(
	`<div class="preview-frame" data-scale="{{.Scale}}" style="{{.Outer}}">` +
		`<div class="preview-page" style="{{.Inner}}">{{.Page}}</div></div>`))

// Wrap places a rendered page inside the scaled preview frame for st. The page
// itself keeps its logical size; only the transform shrinks it.
func Wrap(st State, page template.HTML) (string, error) {
	opacity := 0
	if st.Visible {
		opacity = 1
	}
	var buf bytes.Buffer
	err := frame.Execute(&buf, struct {
		Scale string
		Outer template.CSS
		Inner template.CSS
		Page  template.HTML
	}{
		Scale: formatFloat(st.Scale),
		Outer: template.CSS(fmt.Sprintf(
			"position:relative;width:100%%;aspect-ratio:8.5/11;overflow:hidden;opacity:%d", opacity)),
		Inner: template.CSS(fmt.Sprintf(
			"width:%dpx;height:%dpx;transform:scale(%s);transform-origin:top left",
			render.PageWidth, render.PageHeight, formatFloat(st.Scale))),
		Page: page,
	})
	if err != nil {
		return "", fmt.Errorf("wrap preview: %w", err)
	}
	return buf.String(), nil
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.6g", f)
}
