package vaultflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/vaultflow/model"
	"github.com/viant/vaultflow/service/action/social"
	"github.com/viant/vaultflow/service/secret"
	"gopkg.in/yaml.v3"
)

// Config is the serialisable service configuration. The zero value of any
// section falls back to DefaultConfig when loaded through LoadConfig.
type Config struct {
	Vault    VaultConfig    `json:"vault" yaml:"vault"`
	Email    EmailConfig    `json:"email" yaml:"email"`
	Social   SocialConfig   `json:"social" yaml:"social"`
	Dispatch DispatchConfig `json:"dispatch" yaml:"dispatch"`
	Audit    AuditConfig    `json:"audit" yaml:"audit"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Log      LogConfig      `json:"log" yaml:"log"`
	Tracing  TracingConfig  `json:"tracing" yaml:"tracing"`
}

type VaultConfig struct {
	// RootURL is an afs URL or local path of the vault root.
	RootURL string   `json:"rootURL" yaml:"rootURL"`
	Kinds   []string `json:"kinds,omitempty" yaml:"kinds,omitempty"`
}

type EmailConfig struct {
	BaseURL      string      `json:"baseURL" yaml:"baseURL"`
	APIKey       string      `json:"apiKey,omitempty" yaml:"apiKey,omitempty"`
	APIKeySecret *secret.Ref `json:"apiKeySecret,omitempty" yaml:"apiKeySecret,omitempty"`
}

type SocialConfig struct {
	GraphURL             string      `json:"graphURL" yaml:"graphURL"`
	PageToken            string      `json:"pageToken,omitempty" yaml:"pageToken,omitempty"`
	PageTokenSecret      *secret.Ref `json:"pageTokenSecret,omitempty" yaml:"pageTokenSecret,omitempty"`
	InstagramAccount     string      `json:"instagramAccount,omitempty" yaml:"instagramAccount,omitempty"`
	InstagramToken       string      `json:"instagramToken,omitempty" yaml:"instagramToken,omitempty"`
	InstagramTokenSecret *secret.Ref `json:"instagramTokenSecret,omitempty" yaml:"instagramTokenSecret,omitempty"`
	DefaultImageURL      string      `json:"defaultImageURL,omitempty" yaml:"defaultImageURL,omitempty"`
}

type DispatchConfig struct {
	TimeoutMs       int      `json:"timeoutMs" yaml:"timeoutMs"`
	SideEffectKinds []string `json:"sideEffectKinds" yaml:"sideEffectKinds"`
	// PublishOnApprove makes social approval publish before moving to done.
	PublishOnApprove bool `json:"publishOnApprove" yaml:"publishOnApprove"`
}

// Timeout returns the dispatch timeout as a duration.
func (d *DispatchConfig) Timeout() time.Duration {
	return time.Duration(d.TimeoutMs) * time.Millisecond
}

// Kinds returns the side effect kinds including social when publishing on approve.
func (d *DispatchConfig) Kinds() []model.Kind {
	kinds := model.ParseKinds(d.SideEffectKinds)
	if d.PublishOnApprove {
		for _, kind := range kinds {
			if kind == model.KindSocial {
				return kinds
			}
		}
		kinds = append(kinds, model.KindSocial)
	}
	return kinds
}

type AuditConfig struct {
	// Path of the SQLite database; empty disables the audit log.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

type HTTPConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file,omitempty" yaml:"file,omitempty"`
}

type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Vault: VaultConfig{
			RootURL: "AI_Employee_Vault",
			Kinds:   kindNames(model.DefaultKinds),
		},
		Email: EmailConfig{
			BaseURL: "http://localhost:3005",
		},
		Social: SocialConfig{
			GraphURL: social.DefaultGraphURL,
		},
		Dispatch: DispatchConfig{
			TimeoutMs:       30000,
			SideEffectKinds: []string{string(model.KindEmail)},
		},
		HTTP: HTTPConfig{Addr: ":8080"},
		Log:  LogConfig{Level: "info"},
	}
}

// Validate returns aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config was nil")
	}
	var errs []error
	if strings.TrimSpace(c.Vault.RootURL) == "" {
		errs = append(errs, errors.New("vault.rootURL was empty"))
	}
	if c.Dispatch.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("dispatch.timeoutMs must be > 0, was %d", c.Dispatch.TimeoutMs))
	}
	for _, kind := range c.Vault.Kinds {
		name := strings.ToLower(strings.TrimSpace(kind))
		if name != "" && !model.Kind(name).IsValid() {
			errs = append(errs, fmt.Errorf("vault.kinds: invalid kind %q", kind))
		}
	}
	return errors.Join(errs...)
}

// Environment overrides applied by ApplyEnv.
const (
	EnvVaultRoot      = "VAULTFLOW_VAULT_ROOT"
	EnvEmailURL       = "VAULTFLOW_EMAIL_URL"
	EnvEmailAPIKey    = "VAULTFLOW_EMAIL_API_KEY"
	EnvPageToken      = "VAULTFLOW_FB_PAGE_TOKEN"
	EnvInstagramToken = "VAULTFLOW_IG_TOKEN"
	EnvInstagramID    = "VAULTFLOW_IG_ACCOUNT"
)

// ApplyEnv overrides settings from the environment through lookup, which
// is os.LookupEnv when nil.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for name, target := range map[string]*string{
		EnvVaultRoot:      &c.Vault.RootURL,
		EnvEmailURL:       &c.Email.BaseURL,
		EnvEmailAPIKey:    &c.Email.APIKey,
		EnvPageToken:      &c.Social.PageToken,
		EnvInstagramToken: &c.Social.InstagramToken,
		EnvInstagramID:    &c.Social.InstagramAccount,
	} {
		if value, ok := lookup(name); ok && value != "" {
			*target = value
		}
	}
}

// LoadConfig reads a YAML config from any afs URL over the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	URL = url.Normalize(URL, file.Scheme)
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	return ret, ret.Validate()
}

func kindNames(kinds []model.Kind) []string {
	ret := make([]string, 0, len(kinds))
	for _, kind := range kinds {
		ret = append(ret, string(kind))
	}
	return ret
}
