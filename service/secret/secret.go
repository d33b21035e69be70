// Package secret resolves API keys and tokens stored as encrypted scy
// resources, so that config files can reference a secret instead of
// embedding it.
package secret

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/scy"
	_ "github.com/viant/scy/kms/blowfish"
)

// DefaultKey is used when a reference names no encryption key.
const DefaultKey = "blowfish://default"

// Ref locates an encrypted secret.
type Ref struct {
	URL string `yaml:"url,omitempty" json:"url,omitempty"`
	Key string `yaml:"key,omitempty" json:"key,omitempty"`
}

// IsEmpty reports whether the reference points nowhere.
func (r *Ref) IsEmpty() bool {
	return r == nil || r.URL == ""
}

func (r *Ref) key() string {
	if r.Key == "" {
		return DefaultKey
	}
	return r.Key
}

// Service reveals and stores raw secrets
type Service struct {
	scyService *scy.Service
}

// New creates a secret service
func New() *Service {
	return &Service{scyService: scy.New()}
}

// Reveal decrypts the secret held at ref.
func (s *Service) Reveal(ctx context.Context, ref *Ref) (string, error) {
	if ref.IsEmpty() {
		return "", errors.New("secret reference is empty")
	}
	resource := scy.NewResource(nil, ref.URL, ref.key())
	secret, err := s.scyService.Load(ctx, resource)
	if err != nil {
		return "", fmt.Errorf("failed to load secret from %s: %w", ref.URL, err)
	}
	return strings.TrimSpace(secret.String()), nil
}

// Secure encrypts value and stores it at ref.
func (s *Service) Secure(ctx context.Context, ref *Ref, value string) error {
	if ref.IsEmpty() {
		return errors.New("secret reference is empty")
	}
	resource := scy.NewResource(nil, ref.URL, ref.key())
	if err := s.scyService.Store(ctx, scy.NewSecret(value, resource)); err != nil {
		return fmt.Errorf("failed to store secret at %s: %w", ref.URL, err)
	}
	return nil
}

// Resolve returns value when set, otherwise the secret revealed from ref.
// Both empty resolves to an empty string.
func (s *Service) Resolve(ctx context.Context, value string, ref *Ref) (string, error) {
	if value != "" || ref.IsEmpty() {
		return value, nil
	}
	return s.Reveal(ctx, ref)
}
