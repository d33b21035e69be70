package email

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/viant/vaultflow/model/types"
)

const (
	// Name is the registered service name
	Name = "email"
	// MethodSend sends a plain-text email through the relay
	MethodSend = "send"

	apiKeyHeader = "x-api-key"
)

// Service delivers approved email drafts through an HTTP relay.
type Service struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// Option customises the email service
type Option func(s *Service)

// WithHTTPClient overrides the http client
func WithHTTPClient(client *http.Client) Option {
	return func(s *Service) {
		s.client = client
	}
}

// WithAPIKey sets the relay api key
func WithAPIKey(key string) Option {
	return func(s *Service) {
		s.apiKey = key
	}
}

// New creates an email relay service for baseURL
func New(baseURL string, opts ...Option) *Service {
	ret := &Service{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: time.Minute},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Name returns the service name
func (s *Service) Name() string {
	return Name
}

// Methods returns the service methods
func (s *Service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        MethodSend,
			Description: "Sends a plain-text email through the relay.",
			Input:       reflect.TypeOf(&SendInput{}),
			Output:      reflect.TypeOf(&SendOutput{}),
		},
	}
}

// Method returns the specified method
func (s *Service) Method(name string) (types.Executable, error) {
	switch strings.ToLower(name) {
	case MethodSend:
		return s.send, nil
	default:
		return nil, types.NewMethodNotFoundError(name)
	}
}

func (s *Service) send(ctx context.Context, in, out interface{}) error {
	input, ok := in.(*SendInput)
	if !ok {
		return types.NewInvalidInputError(in)
	}
	output, ok := out.(*SendOutput)
	if !ok {
		return types.NewInvalidOutputError(out)
	}
	return s.Send(ctx, input, output)
}
