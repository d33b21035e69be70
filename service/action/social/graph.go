package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultGraphURL is the Graph API endpoint used when none is configured.
const DefaultGraphURL = "https://graph.facebook.com/v18.0"

// ErrPublish is returned when a platform refuses a post.
var ErrPublish = errors.New("social publish failed")

type graphError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
}

type graphResponse struct {
	ID    string      `json:"id"`
	Error *graphError `json:"error,omitempty"`
}

// graph is a minimal Graph API form client.
type graph struct {
	baseURL string
	client  *http.Client
}

func newGraph(baseURL string, client *http.Client) *graph {
	if baseURL == "" {
		baseURL = DefaultGraphURL
	}
	if client == nil {
		client = &http.Client{Timeout: time.Minute}
	}
	return &graph{baseURL: strings.TrimRight(baseURL, "/"), client: client}
}

func (g *graph) post(ctx context.Context, path string, form url.Values) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/"+strings.TrimLeft(path, "/"), strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	response, err := g.client.Do(request)
	if err != nil {
		return "", fmt.Errorf("failed to reach graph api: %w", err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read graph api response: %w", err)
	}
	reply := &graphResponse{}
	_ = json.Unmarshal(data, reply)
	if reply.Error != nil {
		return "", fmt.Errorf("%w: %s (code %d)", ErrPublish, reply.Error.Message, reply.Error.Code)
	}
	if response.StatusCode >= 300 {
		return "", fmt.Errorf("%w: status %d", ErrPublish, response.StatusCode)
	}
	if reply.ID == "" {
		return "", fmt.Errorf("%w: missing id in response", ErrPublish)
	}
	return reply.ID, nil
}
