package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingJobTitle is returned before any request is made when the job
	// title is blank.
	ErrMissingJobTitle = errors.New("job title is required")
	// ErrEmptySummary is returned when the provider answered without text.
	ErrEmptySummary = errors.New("ai returned an empty summary")
)

// SummaryRequest is the input of a summary generation.
type SummaryRequest struct {
	JobTitle   string `json:"jobTitle"`
	Experience string `json:"experience"`
}

// SummaryResponse is the output of a summary generation.
type SummaryResponse struct {
	Summary string `json:"summary"`
}

// Summarizer writes a short professional summary for a resume. Implementations
// make exactly one provider call and never retry.
type Summarizer interface {
	GenerateSummary(ctx context.Context, req SummaryRequest) (SummaryResponse, error)
}

func (r SummaryRequest) validate() error {
	if strings.TrimSpace(r.JobTitle) == "" {
		return ErrMissingJobTitle
	}
	return nil
}

func summaryPrompt(r SummaryRequest) string {
	return fmt.Sprintf(`You are a professional resume writer and career coach.
Based on the following user-provided information, write a compelling and concise professional summary for a resume.
The summary should be tailored to the job title and highlight the key experience and skills. It should be 2 to 4 sentences long.

Job Title: %s
Experience / Skills: %s

Respond with ONLY a single JSON object of the form {"summary": "..."} and NOTHING ELSE.`, r.JobTitle, r.Experience)
}

// decodeSummary reads {"summary": ...} from model output, tolerating prose or
// code fences around the object.
func decodeSummary(output string) (SummaryResponse, error) {
	var out SummaryResponse
	if err := json.Unmarshal([]byte(output), &out); err != nil {
		sub, ok := extractObject(output)
		if !ok {
			return SummaryResponse{}, fmt.Errorf("ai returned non-json content: %w", err)
		}
		if err2 := json.Unmarshal([]byte(sub), &out); err2 != nil {
			return SummaryResponse{}, fmt.Errorf("ai returned non-json content: %w", err2)
		}
	}
	out.Summary = strings.TrimSpace(out.Summary)
	if out.Summary == "" {
		return SummaryResponse{}, ErrEmptySummary
	}
	return out, nil
}

// extractObject returns the span from the first '{' to the last '}'.
func extractObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
