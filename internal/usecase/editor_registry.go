package usecase

import (
	"context"
	"sync"
	"time"

	"resume-render/internal/domain"
)

type editorKey struct {
	deviceID   string
	templateID domain.TemplateID
}

type editorEntry struct {
	editor   *Editor
	lastUsed time.Time
}

// EditorRegistry keeps one live Editor per device and template so that
// successive requests share the same in-memory draft.
type EditorRegistry struct {
	deps EditorDeps
	now  func() time.Time

	mu      sync.Mutex
	editors map[editorKey]*editorEntry
}

func NewEditorRegistry(deps EditorDeps) *EditorRegistry {
	return &EditorRegistry{
		deps:    deps,
		now:     time.Now,
		editors: make(map[editorKey]*editorEntry),
	}
}

// Get returns the live editor for the pair, opening it on first use.
func (r *EditorRegistry) Get(ctx context.Context, deviceID string, templateID domain.TemplateID) (*Editor, error) {
	key := editorKey{deviceID: deviceID, templateID: templateID}

	r.mu.Lock()
	defer r.mu.Unlock()
	if ent, ok := r.editors[key]; ok {
		ent.lastUsed = r.now()
		return ent.editor, nil
	}
	ed, err := OpenEditor(ctx, r.deps, deviceID, templateID)
	if err != nil {
		return nil, err
	}
	r.editors[key] = &editorEntry{editor: ed, lastUsed: r.now()}
	return ed, nil
}

// Len returns the number of live editors.
func (r *EditorRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.editors)
}

// Sweep closes editors unused for longer than idle and returns how many were
// closed.
func (r *EditorRegistry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	var stale []*Editor

	r.mu.Lock()
	for key, ent := range r.editors {
		if ent.lastUsed.Before(cutoff) {
			stale = append(stale, ent.editor)
			delete(r.editors, key)
		}
	}
	r.mu.Unlock()

	for _, ed := range stale {
		ed.Close()
	}
	return len(stale)
}

// Run sweeps idle editors every interval until ctx is done, then closes all
// remaining editors.
func (r *EditorRegistry) Run(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			if n := r.Sweep(idle); n > 0 {
				r.deps.Log.Debug("closed idle editors", "count", n)
			}
		}
	}
}

// Close flushes and closes every editor.
func (r *EditorRegistry) Close() {
	r.mu.Lock()
	editors := r.editors
	r.editors = make(map[editorKey]*editorEntry)
	r.mu.Unlock()

	for _, ent := range editors {
		ent.editor.Close()
	}
}
