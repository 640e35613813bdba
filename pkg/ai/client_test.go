package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatServer(t *testing.T, status int, output string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/chat", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		body, _ := io.ReadAll(r.Body)
		var req chatRequest
		require.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "auto", req.Agent)
		assert.Contains(t, req.Input, "Job Title: Engineer")
		assert.Contains(t, req.Input, "Experience / Skills: Go, SQL")

		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(chatResponse{Agent: "mock", Output: output})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GenerateSummary(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		output  string
		want    string
		wantErr error
	}{
		{name: "plain json", status: http.StatusOK, output: `{"summary":"Seasoned engineer."}`, want: "Seasoned engineer."},
		{name: "fenced json", status: http.StatusOK, output: "```json\n{\"summary\": \" Builds things. \"}\n```", want: "Builds things."},
		{name: "empty summary", status: http.StatusOK, output: `{"summary":"  "}`, wantErr: ErrEmptySummary},
		{name: "prose", status: http.StatusOK, output: "I cannot help with that"},
		{name: "server error", status: http.StatusBadGateway, output: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := chatServer(t, tt.status, tt.output, &calls)
			c := NewClient(srv.URL + "/")

			got, err := c.GenerateSummary(context.Background(), SummaryRequest{JobTitle: "Engineer", Experience: "Go, SQL"})
			assert.Equal(t, int32(1), calls.Load())
			if tt.want == "" {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Summary)
		})
	}
}

func TestClient_MissingJobTitleSendsNothing(t *testing.T) {
	var calls atomic.Int32
	srv := chatServer(t, http.StatusOK, `{"summary":"x"}`, &calls)
	c := NewClient(srv.URL)

	_, err := c.GenerateSummary(context.Background(), SummaryRequest{JobTitle: "  ", Experience: "Go"})
	assert.ErrorIs(t, err, ErrMissingJobTitle)
	assert.Equal(t, int32(0), calls.Load())
}

func TestExtractObject(t *testing.T) {
	s, ok := extractObject(`noise {"a":{"b":1}} trailing`)
	require.True(t, ok)
	assert.Equal(t, `{"a":{"b":1}}`, s)

	_, ok = extractObject("} backwards {")
	assert.False(t, ok)
	_, ok = extractObject("")
	assert.False(t, ok)
	assert.True(t, strings.HasPrefix(summaryPrompt(SummaryRequest{JobTitle: "x"}), "You are a professional resume writer"))
}
