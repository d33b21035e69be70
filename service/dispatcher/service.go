package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/vaultflow/extension"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/tracing"
)

// DefaultTimeout bounds a single side-effect attempt.
const DefaultTimeout = 30 * time.Second

// Service performs the external side effect for an approved item. It makes
// exactly one attempt per call and never returns an error: every failure is
// reported through the Outcome.
type Service struct {
	actions *extension.Actions
	routes  map[model.Kind]Route
	timeout time.Duration
	logger  zerolog.Logger
}

// Option customises the dispatcher
type Option func(s *Service)

// WithRoute registers or replaces the route for kind.
func WithRoute(kind model.Kind, route Route) Option {
	return func(s *Service) {
		if route == nil {
			delete(s.routes, kind)
			return
		}
		s.routes[kind] = route
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a dispatcher resolving executors from actions.
func New(actions *extension.Actions, opts ...Option) *Service {
	ret := &Service{
		actions: actions,
		routes:  DefaultRoutes(),
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Handles reports whether kind has a side effect route.
func (s *Service) Handles(kind model.Kind) bool {
	_, ok := s.routes[kind]
	return ok
}

// Execute performs the side effect for item within the configured timeout.
func (s *Service) Execute(ctx context.Context, item *model.Item) (outcome *Outcome) {
	ctx, span := tracing.StartSpan(ctx, "dispatcher.execute", tracing.KindClient)
	span.WithAttributes(map[string]string{"item.id": item.ID, "item.kind": string(item.Kind)})
	defer func() {
		if r := recover(); r != nil {
			outcome = failed(fmt.Sprintf("dispatch panic: %v", r))
		}
		var err error
		if !outcome.Delivered {
			err = fmt.Errorf("%s", outcome.Reason)
		}
		tracing.EndSpan(span, err)
	}()

	route, ok := s.routes[item.Kind]
	if !ok {
		return failed(noRoute(item.Kind).Error())
	}
	calls, err := route(item)
	if err != nil {
		return failed(err.Error())
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	results := make([]*PlatformOutcome, 0, len(calls))
	for _, call := range calls {
		result := &PlatformOutcome{Platform: call.Target}
		if err := s.invoke(ctx, call); err != nil {
			result.Reason = err.Error()
			s.logger.Warn().Str("id", item.ID).Str("service", call.Service).Err(err).Msg("side effect failed")
		} else {
			result.Delivered = true
			if identified, ok := call.Output.(interface{ ExternalID() string }); ok {
				result.ExternalID = identified.ExternalID()
			}
		}
		results = append(results, result)
	}
	if len(results) == 1 && results[0].Platform == "" {
		single := results[0]
		return &Outcome{Delivered: single.Delivered, ExternalID: single.ExternalID, Reason: single.Reason}
	}
	return merge(results)
}

// invoke runs one executor call; the call is abandoned when ctx expires.
func (s *Service) invoke(ctx context.Context, call *Call) error {
	executable, err := s.actions.Method(call.Service, call.Method)
	if err != nil {
		return err
	}
	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("%s.%s panic: %v", call.Service, call.Method, r)
			}
		}()
		done <- executable(ctx, call.Input, call.Output)
	}()
	select {
	case err = <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("%s.%s: %w", call.Service, call.Method, ctx.Err())
	}
}
