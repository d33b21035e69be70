package social

import (
	"context"
	"fmt"
	"net/url"

	"github.com/viant/vaultflow/model/types"
)

// Instagram publishes image posts on a business account; a post is a media
// container followed by a publish call.
type Instagram struct {
	graph           *graph
	account         string
	token           string
	defaultImageURL string
}

// Publish creates a media container and publishes it.
func (i *Instagram) Publish(ctx context.Context, input *Input, output *Output) error {
	if i.account == "" || i.token == "" {
		return fmt.Errorf("%w: instagram account not configured", ErrPublish)
	}
	imageURL := input.ImageURL
	if imageURL == "" {
		imageURL = i.defaultImageURL
	}
	if imageURL == "" {
		return fmt.Errorf("%w: instagram requires an image", ErrPublish)
	}
	form := url.Values{}
	form.Set("image_url", imageURL)
	form.Set("caption", input.Message)
	form.Set("access_token", i.token)
	creationID, err := i.graph.post(ctx, i.account+"/media", form)
	if err != nil {
		return fmt.Errorf("instagram media: %w", err)
	}
	form = url.Values{}
	form.Set("creation_id", creationID)
	form.Set("access_token", i.token)
	id, err := i.graph.post(ctx, i.account+"/media_publish", form)
	if err != nil {
		return fmt.Errorf("instagram publish: %w", err)
	}
	output.PostID = id
	return nil
}

// NewInstagram creates instagram action service
func NewInstagram(graphURL, account, token, defaultImageURL string, opts ...Option) types.Service {
	g := newGraph(graphURL, nil)
	for _, opt := range opts {
		opt(g)
	}
	return &service{platform: "instagram", publisher: &Instagram{graph: g, account: account, token: token, defaultImageURL: defaultImageURL}}
}
