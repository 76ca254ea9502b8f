package quality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RemoteScorer is a scorer implementation that sends the full hypothesis and
// reference lists to an external metric service and returns its score.
// Uses HTTP requests with context and timeout.
type RemoteScorer struct {
	url    string       // base URL of the external metric service
	client *http.Client // HTTP client configured with timeout and context cancellation support
}

// Score sends the corpus to the external service and returns the received
// score mapping. Uses context for request cancellation and timeout.
// Request format: JSON with "hypotheses" and "references" fields.
// The server is expected to return a JSON object with numeric values
// interpreted as metric scores.
//
// In case of network error, invalid status (not 200), or incorrect JSON - returns an error.
func (rs *RemoteScorer) Score(ctx context.Context, hypotheses, references []string) (Score, error) {
	requestData := map[string]any{
		"hypotheses": hypotheses,
		"references": references,
	}

	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return nil, err
	}

	req, _ := http.NewRequestWithContext(ctx, "POST", rs.url+"/score", bytes.NewReader(requestBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := rs.client.Do(req)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metric service error code=%d status=%s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	result := make(Score)
	err = json.Unmarshal(body, &result)
	if err != nil {
		return nil, err
	}

	return result, nil
}

// NewRemoteScorer creates a new instance of RemoteScorer.
// Parameters:
// - url: address of the external metric service (e.g., "http://comet:8080")
// - timeout: timeout for the HTTP request
//
// Returns a pointer to the initialized scorer.
// Internally uses *http.Client with the specified timeout to manage request duration.
func NewRemoteScorer(url string, timeout time.Duration) *RemoteScorer {
	client := http.Client{
		Timeout: timeout,
	}

	return &RemoteScorer{
		url:    url,
		client: &client,
	}
}
