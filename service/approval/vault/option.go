package vault

import (
	"github.com/rs/zerolog"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/approval"
	"github.com/viant/vaultflow/service/messaging"
)

type Option func(*service)

// WithDispatcher sets the side-effect dispatcher used on approval.
func WithDispatcher(dispatcher Dispatcher) Option {
	return func(s *service) { s.dispatcher = dispatcher }
}

// WithSideEffectKinds replaces the kinds whose approval requires a delivered
// side effect before the record moves to done.
func WithSideEffectKinds(kinds ...model.Kind) Option {
	return func(s *service) {
		s.sideEffects = map[model.Kind]bool{}
		for _, kind := range kinds {
			s.sideEffects[kind] = true
		}
	}
}

// WithEventQueue replaces the event queue.
func WithEventQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *service) { s.logger = logger }
}
