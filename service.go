package vaultflow

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/vaultflow/extension"
	"github.com/viant/vaultflow/internal/clock"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/model/types"
	"github.com/viant/vaultflow/service/action/email"
	"github.com/viant/vaultflow/service/action/nop"
	"github.com/viant/vaultflow/service/action/social"
	"github.com/viant/vaultflow/service/approval"
	avault "github.com/viant/vaultflow/service/approval/vault"
	"github.com/viant/vaultflow/service/audit"
	"github.com/viant/vaultflow/service/dispatcher"
	qmem "github.com/viant/vaultflow/service/messaging/memory"
	"github.com/viant/vaultflow/service/record"
	"github.com/viant/vaultflow/service/registry"
	"github.com/viant/vaultflow/service/secret"
	fsstage "github.com/viant/vaultflow/service/stage/fs"
)

// Service is the query/command façade over a vault.
type Service struct {
	config            *Config
	fs                afs.Service
	httpClient        *http.Client
	logger            zerolog.Logger
	store             *fsstage.Store
	registry          *registry.Service
	actions           *extension.Actions
	extensionServices []types.Service
	dispatcherOptions []dispatcher.Option
	dispatcher        *dispatcher.Service
	approval          approval.Service
	email             *email.Service
	secrets           *secret.Service
	audit             *audit.Store
	cancel            context.CancelFunc
	wg                sync.WaitGroup
}

// New builds the service from config. Secrets referenced by config are
// resolved eagerly.
func New(ctx context.Context, config *Config, options ...Option) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	ret := &Service{config: config, logger: zerolog.Nop(), secrets: secret.New()}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(ctx); err != nil {
		ret.Close()
		return nil, err
	}
	return ret, nil
}

func (s *Service) init(ctx context.Context) error {
	cfg := s.config
	if s.fs == nil {
		s.fs = afs.New()
	}
	var err error
	if s.store, err = fsstage.New(s.fs, cfg.Vault.RootURL,
		fsstage.WithKinds(model.ParseKinds(cfg.Vault.Kinds)...),
		fsstage.WithLogger(s.logger)); err != nil {
		return err
	}
	s.registry = registry.New(s.store, registry.WithLogger(s.logger))

	if err = s.initActions(ctx); err != nil {
		return err
	}
	s.dispatcher = dispatcher.New(s.actions, append([]dispatcher.Option{
		dispatcher.WithTimeout(cfg.Dispatch.Timeout()),
		dispatcher.WithLogger(s.logger),
	}, s.dispatcherOptions...)...)

	events := qmem.NewQueue[approval.Event](qmem.DefaultConfig())
	s.approval = avault.New(s.registry,
		avault.WithDispatcher(s.dispatcher),
		avault.WithSideEffectKinds(cfg.Dispatch.Kinds()...),
		avault.WithEventQueue(events),
		avault.WithLogger(s.logger))

	runCtx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	if cfg.Audit.Path == "" {
		s.goRun(func() { s.drain(runCtx) })
		return nil
	}
	if s.audit, err = audit.New(cfg.Audit.Path); err != nil {
		return err
	}
	recorder := audit.NewRecorder(s.audit, events, s.logger)
	s.goRun(func() {
		if err := recorder.Run(runCtx); err != nil {
			s.logger.Error().Err(err).Msg("audit recorder stopped")
		}
	})
	return nil
}

func (s *Service) initActions(ctx context.Context) error {
	cfg := s.config
	apiKey, err := s.secrets.Resolve(ctx, cfg.Email.APIKey, cfg.Email.APIKeySecret)
	if err != nil {
		return fmt.Errorf("email api key: %w", err)
	}
	pageToken, err := s.secrets.Resolve(ctx, cfg.Social.PageToken, cfg.Social.PageTokenSecret)
	if err != nil {
		return fmt.Errorf("facebook page token: %w", err)
	}
	igToken, err := s.secrets.Resolve(ctx, cfg.Social.InstagramToken, cfg.Social.InstagramTokenSecret)
	if err != nil {
		return fmt.Errorf("instagram token: %w", err)
	}

	emailOptions := []email.Option{email.WithAPIKey(apiKey)}
	var socialOptions []social.Option
	if s.httpClient != nil {
		emailOptions = append(emailOptions, email.WithHTTPClient(s.httpClient))
		socialOptions = append(socialOptions, social.WithHTTPClient(s.httpClient))
	}
	s.email = email.New(cfg.Email.BaseURL, emailOptions...)
	s.actions = extension.NewActions(
		nop.New(),
		s.email,
		social.NewFacebook(cfg.Social.GraphURL, pageToken, socialOptions...),
		social.NewInstagram(cfg.Social.GraphURL, cfg.Social.InstagramAccount, igToken, cfg.Social.DefaultImageURL, socialOptions...),
	)
	for _, service := range s.extensionServices {
		s.actions.Register(service)
	}
	return nil
}

func (s *Service) goRun(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

// drain acknowledges events when no audit log consumes them.
func (s *Service) drain(ctx context.Context) {
	for {
		msg, err := s.approval.Queue().Consume(ctx)
		if err != nil {
			return
		}
		event := msg.T()
		if event.Decision != nil {
			s.logger.Debug().Str("topic", event.Topic).Str("id", event.Decision.ID).Msg("decision event")
		}
		_ = msg.Ack()
	}
}

// Config returns the active configuration
func (s *Service) Config() *Config {
	return s.config
}

// Actions returns the executor registry
func (s *Service) Actions() *extension.Actions {
	return s.actions
}

// Init creates every stage directory of the vault.
func (s *Service) Init(ctx context.Context) error {
	return s.store.Init(ctx)
}

// ListPending returns the items awaiting a decision, sorted by id.
func (s *Service) ListPending(ctx context.Context, kinds ...model.Kind) ([]*PendingView, error) {
	var filters []approval.PendingFilter
	if len(kinds) > 0 {
		filters = append(filters, approval.WithKind(kinds...))
	}
	items, err := s.approval.ListPending(ctx, filters...)
	if err != nil {
		return nil, err
	}
	ret := make([]*PendingView, 0, len(items))
	for _, item := range items {
		ret = append(ret, NewPendingView(item))
	}
	return ret, nil
}

// Submit applies an approve or reject decision. It never returns nil.
func (s *Service) Submit(ctx context.Context, id string, action string) *Result {
	anAction, err := approval.ParseAction(action)
	if err != nil {
		return failure(id, err)
	}
	decision, err := s.approval.Decide(ctx, id, anAction)
	if err != nil {
		result := failure(id, err)
		if decision != nil && decision.ExternalID != "" {
			result.ExternalID = decision.ExternalID
		}
		return result
	}
	return success(decision)
}

// Promote moves a needs action record into the approval queue.
func (s *Service) Promote(ctx context.Context, id string) *Result {
	decision, err := s.approval.Promote(ctx, id)
	if err != nil {
		return failure(id, err)
	}
	return success(decision)
}

// Complete marks a needs action record handled.
func (s *Service) Complete(ctx context.Context, id string) *Result {
	decision, err := s.approval.Complete(ctx, id)
	if err != nil {
		return failure(id, err)
	}
	return success(decision)
}

// NeedsAction lists triage items, optionally of one kind.
func (s *Service) NeedsAction(ctx context.Context, kind model.Kind) ([]*model.Item, error) {
	if kind == "" {
		return s.registry.Snapshot(ctx, model.StageNeedsAction)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: kind %q", model.ErrInvalidID, kind)
	}
	return s.registry.List(ctx, s.store.Directory(model.StageNeedsAction, kind))
}

// Items lists items of the given stages, every stage when none is given.
func (s *Service) Items(ctx context.Context, stages ...model.Stage) ([]*model.Item, error) {
	return s.registry.Snapshot(ctx, stages...)
}

// Summary returns per stage and per directory counts.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	counts, err := s.registry.Counts(ctx)
	if err != nil {
		return nil, err
	}
	ret := &Summary{Totals: map[model.Stage]int{}, Counts: counts}
	for _, aStage := range model.Stages {
		ret.Totals[aStage] = 0
	}
	for _, count := range counts {
		ret.Totals[count.Stage] += count.Count
	}
	return ret, nil
}

// PendingCount returns the number of records awaiting a decision.
func (s *Service) PendingCount(ctx context.Context) (int, error) {
	return s.registry.PendingCount(ctx)
}

// Draft writes a new record into the pending approval stage.
func (s *Service) Draft(ctx context.Context, request *DraftRequest) (*model.Item, error) {
	kind := model.Kind(strings.ToLower(strings.TrimSpace(string(request.Kind))))
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: draft kind %q", model.ErrInvalidID, request.Kind)
	}
	name := request.Name
	if name == "" {
		name = fmt.Sprintf("%s_draft_%s", strings.ToUpper(string(kind)), clock.Now().Format("20060102_150405"))
	}
	metadata := request.Metadata
	if metadata == nil {
		metadata = model.NewMetadata()
	}
	if !metadata.Has("created") {
		metadata.Set("created", clock.Now().Format("2006-01-02 15:04:05"))
	}
	data := record.Encode(&record.Record{Metadata: metadata, Body: request.Body})
	dir := s.store.Directory(model.StagePendingApproval, kind)
	fileName := model.FileName(name)
	if err := dir.Write(ctx, fileName, data); err != nil {
		return nil, err
	}
	return s.registry.Lookup(ctx, model.StagePendingApproval, model.FormatID(kind, name))
}

// History returns audit entries of an item, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]*audit.Entry, error) {
	if s.audit == nil {
		return nil, errors.New("audit log is disabled")
	}
	return s.audit.List(ctx, audit.Query{ItemID: id, Limit: limit})
}

// Health checks the vault root, the email relay and the audit log.
func (s *Service) Health(ctx context.Context) *Health {
	ret := &Health{Healthy: true, Vault: "ok", EmailRelay: "ok"}
	if err := s.store.Check(ctx); err != nil {
		ret.Healthy = false
		ret.Vault = err.Error()
	}
	if err := s.email.Health(ctx); err != nil {
		ret.Healthy = false
		ret.EmailRelay = err.Error()
	}
	if s.audit != nil {
		ret.Audit = "ok"
		if err := s.audit.Ping(ctx); err != nil {
			ret.Healthy = false
			ret.Audit = err.Error()
		}
	}
	return ret
}

// Close stops background consumers and releases the audit log.
func (s *Service) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if s.audit != nil {
		return s.audit.Close()
	}
	return nil
}
