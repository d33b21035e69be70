// Package fs implements vault stage directories on top of viant/afs so the
// same vault can live on a local disk (file://), in memory (mem://) or on any
// other storage afs supports.
package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/stage"
)

// Store is a vault rooted at a base URL. It implements stage.Layout.
type Store struct {
	fs      afs.Service
	rootURL string
	kinds   []model.Kind
	logger  zerolog.Logger
	mu      sync.Mutex // serialises relocations issued by this process
}

// Option customises a Store.
type Option func(*Store)

// WithKinds overrides the kinds scanned under kind stages.
func WithKinds(kinds ...model.Kind) Option {
	return func(s *Store) {
		if len(kinds) > 0 {
			s.kinds = kinds
		}
	}
}

// WithLogger sets the logger used for per-record warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// New creates a vault store. Relative local paths are normalised to file URLs.
func New(fs afs.Service, rootURL string, options ...Option) (*Store, error) {
	if strings.TrimSpace(rootURL) == "" {
		return nil, fmt.Errorf("vault root URL cannot be empty")
	}
	if fs == nil {
		fs = afs.New()
	}
	ret := &Store{
		fs:      fs,
		rootURL: url.Normalize(rootURL, file.Scheme),
		kinds:   model.DefaultKinds,
		logger:  zerolog.Nop(),
	}
	for _, option := range options {
		option(ret)
	}
	return ret, nil
}

// RootURL returns the normalised vault root.
func (s *Store) RootURL() string {
	return s.rootURL
}

// Kinds returns the scanned kinds.
func (s *Store) Kinds() []model.Kind {
	return append([]model.Kind(nil), s.kinds...)
}

// Directory returns the directory holding records of stage and kind.
func (s *Store) Directory(aStage model.Stage, kind model.Kind) stage.Directory {
	location := stage.Location{Stage: aStage, URL: url.Join(s.rootURL, aStage.Dir())}
	if aStage.HasKindDirs() {
		location.Kind = kind
		location.URL = url.Join(location.URL, kind.Dir())
	}
	return &Directory{store: s, location: location}
}

// Directories returns every directory of a stage.
func (s *Store) Directories(aStage model.Stage) []stage.Directory {
	if !aStage.HasKindDirs() {
		return []stage.Directory{s.Directory(aStage, "")}
	}
	ret := make([]stage.Directory, 0, len(s.kinds))
	for _, kind := range s.kinds {
		ret = append(ret, s.Directory(aStage, kind))
	}
	return ret
}

// Init creates every stage directory. It is only needed for startup sanity
// checks; directories are otherwise created lazily on first move.
func (s *Store) Init(ctx context.Context) error {
	for _, aStage := range model.Stages {
		for _, dir := range s.Directories(aStage) {
			if err := s.ensureDir(ctx, dir.Location().URL); err != nil {
				return err
			}
		}
	}
	return nil
}

// Check verifies that the vault root exists.
func (s *Store) Check(ctx context.Context) error {
	ok, err := s.fs.Exists(ctx, s.rootURL)
	if err != nil {
		return fmt.Errorf("failed to check vault root %s: %w", s.rootURL, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", stage.ErrDirectoryUnavailable, s.rootURL)
	}
	return nil
}

// contains reports whether URL resolves strictly below the vault root.
func (s *Store) contains(URL string) bool {
	rel, ok := strings.CutPrefix(URL, strings.TrimSuffix(s.rootURL, "/")+"/")
	if !ok || rel == "" {
		return false
	}
	for _, segment := range strings.Split(rel, "/") {
		if segment == "" || segment == "." || segment == ".." || strings.Contains(segment, `\`) {
			return false
		}
	}
	return true
}

// relocate renames a record without ever replacing an existing target. Local
// records are hard linked into place and then unlinked from the source: the
// link fails on an existing target and only one process can unlink the source,
// so a process losing either step rolls back and reports the matching error.
// Other schemes fall back to the afs move guarded by the caller's checks.
func (s *Store) relocate(ctx context.Context, sourceURL, destURL string) error {
	if url.Scheme(sourceURL, file.Scheme) != file.Scheme || url.Scheme(destURL, file.Scheme) != file.Scheme {
		return s.fs.Move(ctx, sourceURL, destURL)
	}
	source, dest := url.Path(sourceURL), url.Path(destURL)
	if err := os.Link(source, dest); err != nil {
		switch {
		case errors.Is(err, os.ErrExist):
			return fmt.Errorf("%w: %s", stage.ErrCollisionAtTarget, destURL)
		case errors.Is(err, os.ErrNotExist):
			if _, statErr := os.Stat(source); errors.Is(statErr, os.ErrNotExist) {
				return fmt.Errorf("%w: %s", stage.ErrNotFound, sourceURL)
			}
			return fmt.Errorf("failed to link %s to %s: %w", sourceURL, destURL, err)
		}
		s.logger.Debug().Err(err).Str("url", sourceURL).Msg("hard link unsupported, moving")
		return s.fs.Move(ctx, sourceURL, destURL)
	}
	if err := os.Remove(source); err != nil {
		_ = os.Remove(dest)
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", stage.ErrNotFound, sourceURL)
		}
		return fmt.Errorf("failed to unlink %s: %w", sourceURL, err)
	}
	return nil
}

func (s *Store) ensureDir(ctx context.Context, URL string) error {
	exists, err := s.fs.Exists(ctx, URL)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := s.fs.Create(ctx, URL, file.DefaultDirOsMode, true); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", URL, err)
	}
	return nil
}

var _ stage.Layout = (*Store)(nil)
