package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client calls the internal ai-service chat endpoint.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 60 * time.Second},
	}
}

type chatRequest struct {
	Agent string `json:"agent"`
	Input string `json:"input"`
}

type chatResponse struct {
	Agent  string `json:"agent"`
	Output string `json:"output"`
}

// GenerateSummary sends one chat request and decodes the summary from its
// output.
func (c *Client) GenerateSummary(ctx context.Context, r SummaryRequest) (SummaryResponse, error) {
	if err := r.validate(); err != nil {
		return SummaryResponse{}, err
	}

	b, err := json.Marshal(chatRequest{Agent: "auto", Input: summaryPrompt(r)})
	if err != nil {
		return SummaryResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/chat", bytes.NewReader(b))
	if err != nil {
		return SummaryResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return SummaryResponse{}, fmt.Errorf("ai-service request: %w", err)
	}
	defer resp.Body.Close()

	rb, err := io.ReadAll(resp.Body)
	if err != nil {
		return SummaryResponse{}, err
	}
	if resp.StatusCode != http.StatusOK {
		return SummaryResponse{}, fmt.Errorf("ai-service returned non-200 status: %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.Unmarshal(rb, &chat); err != nil {
		return SummaryResponse{}, fmt.Errorf("decode ai-service response: %w", err)
	}
	return decodeSummary(chat.Output)
}
