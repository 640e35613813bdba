package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"resume-render/internal/domain"
	"resume-render/internal/logger"
	"resume-render/internal/model"
	"resume-render/pkg/ai"
	"resume-render/pkg/debounce"
)

const persistTimeout = 5 * time.Second

// EditorDeps are the collaborators shared by every editor.
type EditorDeps struct {
	Store      DeviceStore
	Summarizer ai.Summarizer
	Log        *logger.Logger
	// Debounce is the quiet period before a draft is written.
	Debounce time.Duration
}

// Editor holds the in-memory draft of one template on one device. Mutations
// apply synchronously; writing the draft to the device store is debounced.
type Editor struct {
	deviceID   string
	templateID domain.TemplateID
	store      DeviceStore
	summarizer ai.Summarizer
	log        *logger.Logger
	persist    *debounce.Debouncer

	// persistMu orders draft writes so a later write never carries older data.
	persistMu sync.Mutex

	mu         sync.Mutex
	data       model.ResumeData
	dirty      bool
	summaryGen uint64
	closed     bool
}

// OpenEditor loads the saved draft for templateID, or the defaults when there
// is none. A draft that cannot be decoded is deleted so it is not read again.
func OpenEditor(ctx context.Context, deps EditorDeps, deviceID string, templateID domain.TemplateID) (*Editor, error) {
	e := &Editor{
		deviceID:   deviceID,
		templateID: templateID,
		store:      deps.Store,
		summarizer: deps.Summarizer,
		log:        deps.Log.With("device", deviceID, "template", templateID),
		data:       model.Default(),
	}
	e.persist = debounce.New(deps.Debounce, e.save)

	raw, ok, err := deps.Store.Get(ctx, deviceID, DraftKey(templateID))
	if err != nil {
		return nil, err
	}
	if ok {
		data, perr := model.ParseJSON([]byte(raw))
		if perr != nil {
			e.log.Warn("discarding corrupt draft", "error", perr)
			if err := deps.Store.Delete(ctx, deviceID, DraftKey(templateID)); err != nil {
				e.log.Warn("failed to delete corrupt draft", "error", err)
			}
		} else {
			e.data = data
		}
	}
	return e, nil
}

// TemplateID returns the template this draft belongs to.
func (e *Editor) TemplateID() domain.TemplateID { return e.templateID }

// Data returns a copy of the current draft.
func (e *Editor) Data() model.ResumeData {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.data.Clone()
}

// Dirty reports whether the draft was changed since it was opened.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// SetField assigns one field; see model.ResumeData.SetField for paths.
func (e *Editor) SetField(path string, value interface{}) error {
	return e.mutate(func(d *model.ResumeData) error { return d.SetField(path, value) })
}

// AppendListItem adds an entry to list and returns its id.
func (e *Editor) AppendListItem(list string, item interface{}) (string, error) {
	var id string
	err := e.mutate(func(d *model.ResumeData) error {
		var err error
		id, err = d.AppendListItem(list, item)
		return err
	})
	return id, err
}

// RemoveListItem deletes the entry id from list.
func (e *Editor) RemoveListItem(list, id string) error {
	return e.mutate(func(d *model.ResumeData) error { return d.RemoveListItem(list, id) })
}

// Reset replaces the draft with the defaults.
func (e *Editor) Reset() error {
	return e.mutate(func(d *model.ResumeData) error {
		*d = model.Default()
		return nil
	})
}

func (e *Editor) mutate(fn func(d *model.ResumeData) error) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEditorClosed
	}
	if err := fn(&e.data); err != nil {
		e.mu.Unlock()
		return err
	}
	e.dirty = true
	e.mu.Unlock()

	e.persist.Trigger()
	return nil
}

// GenerateSummary asks the AI provider for a summary built from the job title
// and skills, and on success replaces only the summary field. Only the most
// recently issued request may apply its result.
func (e *Editor) GenerateSummary(ctx context.Context) (string, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", ErrEditorClosed
	}
	req := ai.SummaryRequest{
		JobTitle:   strings.TrimSpace(e.data.Personal.Title),
		Experience: strings.Join(e.data.Skills, ", "),
	}
	if req.JobTitle == "" {
		e.mu.Unlock()
		return "", ErrMissingJobTitle
	}
	e.summaryGen++
	gen := e.summaryGen
	e.mu.Unlock()

	if e.summarizer == nil {
		return "", &SummaryError{Err: ErrSummaryUnavailable}
	}
	resp, err := e.summarizer.GenerateSummary(ctx, req)
	if err != nil {
		e.log.Warn("ai summary failed", "error", err)
		return "", &SummaryError{Err: err}
	}

	e.mu.Lock()
	if gen != e.summaryGen || e.closed {
		e.mu.Unlock()
		return "", ErrStaleSummary
	}
	e.data.Summary = resp.Summary
	e.dirty = true
	e.mu.Unlock()

	e.persist.Trigger()
	return resp.Summary, nil
}

// Flush writes a pending draft now.
func (e *Editor) Flush() {
	e.persist.Flush()
}

// Close flushes the draft and stops further writes.
func (e *Editor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.persist.Flush()
	e.persist.Stop()
}

func (e *Editor) save() {
	e.persistMu.Lock()
	defer e.persistMu.Unlock()

	e.mu.Lock()
	b, err := model.MarshalJSON(e.data)
	e.mu.Unlock()
	if err != nil {
		e.log.Error("failed to encode draft", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()
	if err := e.store.Set(ctx, e.deviceID, DraftKey(e.templateID), string(b)); err != nil {
		e.log.Warn("failed to save draft", "error", err)
	}
}
