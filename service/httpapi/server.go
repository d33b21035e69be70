package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/viant/vaultflow"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/tracing"
)

// Facade is the subset of vaultflow.Service the HTTP API serves.
type Facade interface {
	ListPending(ctx context.Context, kinds ...model.Kind) ([]*vaultflow.PendingView, error)
	Submit(ctx context.Context, id string, action string) *vaultflow.Result
	Promote(ctx context.Context, id string) *vaultflow.Result
	Complete(ctx context.Context, id string) *vaultflow.Result
	NeedsAction(ctx context.Context, kind model.Kind) ([]*model.Item, error)
	Summary(ctx context.Context) (*vaultflow.Summary, error)
	Health(ctx context.Context) *vaultflow.Health
}

const (
	// DefaultWriteTimeout bounds writing one response.
	DefaultWriteTimeout = 60 * time.Second
	// writeMargin is added to the dispatch timeout, since an approve response
	// is written only after delivery and the record move.
	writeMargin = 30 * time.Second
)

// Server exposes the approval workflow over HTTP.
type Server struct {
	facade       Facade
	addr         string
	writeTimeout time.Duration
	logger       zerolog.Logger
	server       *http.Server
}

// Option customises the server
type Option func(s *Server)

// WithLogger sets the request logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithDispatchTimeout sizes the response write deadline to outlast a side
// effect bounded by timeout.
func WithDispatchTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if limit := timeout + writeMargin; limit > s.writeTimeout {
			s.writeTimeout = limit
		}
	}
}

// NewServer creates a server listening on addr.
func NewServer(facade Facade, addr string, options ...Option) *Server {
	ret := &Server{facade: facade, addr: addr, writeTimeout: DefaultWriteTimeout, logger: zerolog.Nop()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /approvals", s.listApprovals)
	mux.HandleFunc("POST /approvals", s.submit)
	mux.HandleFunc("GET /needs-action", s.listNeedsAction)
	mux.HandleFunc("GET /needs-action/{kind}", s.listNeedsAction)
	mux.HandleFunc("POST /needs-action/{kind}/{name}/promote", s.promote)
	mux.HandleFunc("POST /needs-action/{kind}/{name}/complete", s.complete)
	mux.HandleFunc("GET /summary", s.summary)
	mux.HandleFunc("GET /health", s.health)
	return s.traced(mux)
}

// Start serves until Shutdown is called; it returns nil on graceful close.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: s.writeTimeout,
	}
	s.logger.Info().Str("addr", s.addr).Msg("starting http api")
	err := s.server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// WriteTimeout returns the response write deadline used by Start.
func (s *Server) WriteTimeout() time.Duration {
	return s.writeTimeout
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) traced(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracing.StartSpan(r.Context(), r.Method+" "+r.URL.Path, tracing.KindServer)
		span.WithAttributes(map[string]string{"http.method": r.Method, "http.target": r.URL.Path})
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		started := time.Now()
		next.ServeHTTP(recorder, r.WithContext(ctx))
		span.SetStatusFromHTTPCode(recorder.status)
		span.End()
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("elapsed", time.Since(started)).
			Msg("request")
	})
}

type submitRequest struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func (s *Server) listApprovals(w http.ResponseWriter, r *http.Request) {
	var kinds []model.Kind
	if value := r.URL.Query().Get("kind"); value != "" {
		kinds = model.ParseKinds(strings.Split(value, ","))
	}
	views, err := s.facade.ListPending(r.Context(), kinds...)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if views == nil {
		views = []*vaultflow.PendingView{}
	}
	writeJSON(w, http.StatusOK, &listResponse[*vaultflow.PendingView]{Items: views, Count: len(views)})
}

func (s *Server) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, &vaultflow.Result{Message: "invalid json: " + err.Error(), Reason: vaultflow.ReasonInvalidAction})
		return
	}
	s.writeResult(w, s.facade.Submit(r.Context(), req.ID, req.Action))
}

func (s *Server) listNeedsAction(w http.ResponseWriter, r *http.Request) {
	kind := model.Kind(strings.ToLower(r.PathValue("kind")))
	items, err := s.facade.NeedsAction(r.Context(), kind)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if items == nil {
		items = []*model.Item{}
	}
	writeJSON(w, http.StatusOK, &listResponse[*model.Item]{Items: items, Count: len(items)})
}

func (s *Server) promote(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.facade.Promote(r.Context(), pathID(r)))
}

func (s *Server) complete(w http.ResponseWriter, r *http.Request) {
	s.writeResult(w, s.facade.Complete(r.Context(), pathID(r)))
}

func (s *Server) summary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.facade.Summary(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	health := s.facade.Health(r.Context())
	status := http.StatusOK
	if !health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, health)
}

func pathID(r *http.Request) string {
	kind := strings.ToLower(r.PathValue("kind"))
	return model.FormatID(model.Kind(kind), r.PathValue("name"))
}

func (s *Server) writeResult(w http.ResponseWriter, result *vaultflow.Result) {
	status := http.StatusOK
	if !result.Success {
		status = StatusOf(result.Reason)
		s.logger.Warn().Str("reason", result.Reason).Msg(result.Message)
	}
	writeJSON(w, status, result)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	reason := vaultflow.ReasonOf(err)
	s.logger.Error().Err(err).Str("reason", reason).Msg("request failed")
	writeJSON(w, StatusOf(reason), &vaultflow.Result{Message: err.Error(), Reason: reason})
}

// StatusOf maps a failure reason to an HTTP status code.
func StatusOf(reason string) int {
	switch reason {
	case "":
		return http.StatusOK
	case vaultflow.ReasonInvalidAction, vaultflow.ReasonInvalidID:
		return http.StatusBadRequest
	case vaultflow.ReasonNotFound:
		return http.StatusNotFound
	case vaultflow.ReasonCollision:
		return http.StatusConflict
	case vaultflow.ReasonSideEffectFailure:
		return http.StatusBadGateway
	case vaultflow.ReasonDirectoryUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
