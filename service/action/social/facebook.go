package social

import (
	"context"
	"fmt"
	"net/url"

	"github.com/viant/vaultflow/model/types"
)

// Facebook publishes page feed posts
type Facebook struct {
	graph *graph
	token string
}

// Publish posts message to the page feed owning the token.
func (f *Facebook) Publish(ctx context.Context, input *Input, output *Output) error {
	if f.token == "" {
		return fmt.Errorf("%w: facebook page token not configured", ErrPublish)
	}
	form := url.Values{}
	form.Set("message", input.Message)
	form.Set("access_token", f.token)
	if input.ImageURL != "" {
		form.Set("link", input.ImageURL)
	}
	id, err := f.graph.post(ctx, "me/feed", form)
	if err != nil {
		return fmt.Errorf("facebook: %w", err)
	}
	output.PostID = id
	return nil
}

// NewFacebook creates facebook action service
func NewFacebook(graphURL, pageToken string, opts ...Option) types.Service {
	g := newGraph(graphURL, nil)
	for _, opt := range opts {
		opt(g)
	}
	return &service{platform: "facebook", publisher: &Facebook{graph: g, token: pageToken}}
}
