package social

import (
	"context"
	"net/http"
	"reflect"
	"strings"

	"github.com/viant/vaultflow/model/types"
)

const (
	// Prefix prefixes every platform service name
	Prefix = "social/"
	// MethodPublish publishes a post
	MethodPublish = "publish"
)

// ServiceName returns registered service name for a platform
func ServiceName(platform string) string {
	return Prefix + strings.ToLower(strings.TrimSpace(platform))
}

// Input represents a post
type Input struct {
	Message  string `json:"message"`
	ImageURL string `json:"imageURL,omitempty"`
}

// Output carries the platform post id
type Output struct {
	PostID string `json:"postId,omitempty"`
}

type publisher interface {
	Publish(ctx context.Context, input *Input, output *Output) error
}

// service adapts a platform publisher to the action registry
type service struct {
	platform string
	publisher
}

func (s *service) Name() string {
	return ServiceName(s.platform)
}

func (s *service) Methods() types.Signatures {
	return []types.Signature{
		{
			Name:        MethodPublish,
			Description: "Publishes a post to " + s.platform + ".",
			Input:       reflect.TypeOf(&Input{}),
			Output:      reflect.TypeOf(&Output{}),
		},
	}
}

func (s *service) Method(name string) (types.Executable, error) {
	if !strings.EqualFold(name, MethodPublish) {
		return nil, types.NewMethodNotFoundError(name)
	}
	return func(ctx context.Context, in, out interface{}) error {
		input, ok := in.(*Input)
		if !ok {
			return types.NewInvalidInputError(in)
		}
		output, ok := out.(*Output)
		if !ok {
			return types.NewInvalidOutputError(out)
		}
		return s.Publish(ctx, input, output)
	}, nil
}

// Option customises platform clients
type Option func(g *graph)

// WithHTTPClient overrides the http client
func WithHTTPClient(client *http.Client) Option {
	return func(g *graph) {
		g.client = client
	}
}

// ExternalID returns the platform post id
func (o *Output) ExternalID() string {
	return o.PostID
}
