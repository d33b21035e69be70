package dispatcher

import (
	"errors"
	"fmt"

	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/action/email"
	"github.com/viant/vaultflow/service/action/social"
)

// Call is a single executor invocation derived from an item.
type Call struct {
	// Target labels the call in per-platform outcomes; empty for single-target kinds.
	Target  string
	Service string
	Method  string
	Input   interface{}
	Output  interface{}
}

// Route builds executor calls for an item of one kind.
type Route func(item *model.Item) ([]*Call, error)

// EmailRoute sends the draft as plain text to its recipient.
func EmailRoute(item *model.Item) ([]*Call, error) {
	draft := item.Email
	if draft == nil {
		return nil, errors.New("item is not an email draft")
	}
	if draft.To == "" {
		return nil, errors.New("email draft has no recipient")
	}
	return []*Call{{
		Service: email.Name,
		Method:  email.MethodSend,
		Input:   &email.SendInput{To: draft.To, Subject: draft.Subject, Text: PlainText(item.Body)},
		Output:  &email.SendOutput{},
	}}, nil
}

// SocialRoute publishes the post once per requested platform.
func SocialRoute(item *model.Item) ([]*Call, error) {
	post := item.Social
	if post == nil {
		return nil, errors.New("item is not a social post")
	}
	if len(post.Platforms) == 0 {
		return nil, errors.New("social post names no platform")
	}
	message := PlainText(item.Body)
	ret := make([]*Call, 0, len(post.Platforms))
	for _, platform := range post.Platforms {
		ret = append(ret, &Call{
			Target:  platform,
			Service: social.ServiceName(platform),
			Method:  social.MethodPublish,
			Input:   &social.Input{Message: message, ImageURL: post.ImageURL},
			Output:  &social.Output{},
		})
	}
	return ret, nil
}

// DefaultRoutes returns routes for every kind with a known side effect.
func DefaultRoutes() map[model.Kind]Route {
	return map[model.Kind]Route{
		model.KindEmail:  EmailRoute,
		model.KindSocial: SocialRoute,
	}
}

func noRoute(kind model.Kind) error {
	return fmt.Errorf("no side effect configured for kind %q", kind)
}
