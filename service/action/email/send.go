package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// ErrRejected is returned when the relay reports an unsuccessful delivery.
var ErrRejected = errors.New("email relay rejected message")

// SendInput represents an outgoing message
type SendInput struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// SendOutput carries the relay message id
type SendOutput struct {
	MessageID string `json:"messageId,omitempty"`
}

type sendResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId"`
	Error     string `json:"error"`
}

// Send posts the message to the relay's send endpoint.
func (s *Service) Send(ctx context.Context, input *SendInput, output *SendOutput) error {
	if input.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrRejected)
	}
	payload, err := json.Marshal(input)
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/send-email", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		request.Header.Set(apiKeyHeader, s.apiKey)
	}
	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("failed to reach email relay: %w", err)
	}
	defer response.Body.Close()
	data, err := io.ReadAll(io.LimitReader(response.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("failed to read email relay response: %w", err)
	}
	reply := &sendResponse{}
	if len(data) > 0 {
		if err = json.Unmarshal(data, reply); err != nil && response.StatusCode < 300 {
			return fmt.Errorf("invalid email relay response: %w", err)
		}
	}
	if response.StatusCode >= 300 || !reply.Success {
		message := reply.Error
		if message == "" {
			message = http.StatusText(response.StatusCode)
		}
		return fmt.Errorf("%w: %s (status %d)", ErrRejected, message, response.StatusCode)
	}
	output.MessageID = reply.MessageID
	return nil
}

// Health checks that the relay is up.
func (s *Service) Health(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("email relay unreachable: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)
	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("email relay unhealthy: status %d", response.StatusCode)
	}
	return nil
}

// ExternalID returns the relay message id
func (o *SendOutput) ExternalID() string {
	return o.MessageID
}
