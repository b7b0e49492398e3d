package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfigDefaults verifies the constructor seeds every knob.
func TestNewConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, expected %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.BatchPause != DefaultBatchPause {
		t.Errorf("BatchPause = %v, expected %v", cfg.BatchPause, DefaultBatchPause)
	}
	if cfg.FetchTimeout != DefaultFetchTimeout {
		t.Errorf("FetchTimeout = %v, expected %v", cfg.FetchTimeout, DefaultFetchTimeout)
	}
	if cfg.FetchAttempts != DefaultFetchAttempts {
		t.Errorf("FetchAttempts = %d, expected %d", cfg.FetchAttempts, DefaultFetchAttempts)
	}
	if cfg.SecondLevelAttempts != DefaultSecondLevelAttempts {
		t.Errorf("SecondLevelAttempts = %d, expected %d", cfg.SecondLevelAttempts, DefaultSecondLevelAttempts)
	}
	if cfg.CacheCapacity != DefaultCacheCapacity {
		t.Errorf("CacheCapacity = %d, expected %d", cfg.CacheCapacity, DefaultCacheCapacity)
	}
	if cfg.CacheTTL != DefaultCacheTTL {
		t.Errorf("CacheTTL = %v, expected %v", cfg.CacheTTL, DefaultCacheTTL)
	}
	if cfg.SweepInterval != DefaultSweepInterval {
		t.Errorf("SweepInterval = %v, expected %v", cfg.SweepInterval, DefaultSweepInterval)
	}
	if !cfg.SecondLevel {
		t.Error("SecondLevel should default to enabled")
	}
	if cfg.SecondLevelLimit != DefaultSecondLevelLimit {
		t.Errorf("SecondLevelLimit = %d, expected %d", cfg.SecondLevelLimit, DefaultSecondLevelLimit)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, expected %q", cfg.UserAgent, DefaultUserAgent)
	}
}

// TestConfigValidate exercises every validation rule.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		cfg := NewConfig()
		cfg.Seeds = []string{"https://example.org/treatment"}
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:   "valid config passes",
			mutate: func(_ *Config) {},
		},
		{
			name:    "no seeds",
			mutate:  func(c *Config) { c.Seeds = nil },
			wantErr: ErrNoSeeds,
		},
		{
			name:    "zero batch size",
			mutate:  func(c *Config) { c.BatchSize = 0 },
			wantErr: ErrInvalidBatchSize,
		},
		{
			name:    "negative batch pause",
			mutate:  func(c *Config) { c.BatchPause = -time.Millisecond },
			wantErr: ErrInvalidBatchPause,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.FetchTimeout = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "zero first-pass attempts",
			mutate:  func(c *Config) { c.FetchAttempts = 0 },
			wantErr: ErrInvalidAttempts,
		},
		{
			name:    "zero second-level attempts",
			mutate:  func(c *Config) { c.SecondLevelAttempts = 0 },
			wantErr: ErrInvalidAttempts,
		},
		{
			name:    "zero cache capacity",
			mutate:  func(c *Config) { c.CacheCapacity = 0 },
			wantErr: ErrInvalidCacheCapacity,
		},
		{
			name:    "zero cache TTL",
			mutate:  func(c *Config) { c.CacheTTL = 0 },
			wantErr: ErrInvalidCacheTTL,
		},
		{
			name:    "second level enabled with zero limit",
			mutate:  func(c *Config) { c.SecondLevelLimit = 0 },
			wantErr: ErrInvalidSecondLevelLimit,
		},
		{
			name: "second level disabled ignores limit",
			mutate: func(c *Config) {
				c.SecondLevel = false
				c.SecondLevelLimit = 0
			},
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadConfigFile verifies YAML parsing of site rules and scoring
// overrides.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	content := `
defaults:
  ignorePatterns:
    - "/blog/*"
sites:
  example.org:
    headers:
      X-Referral-Source: aftercare
    ignorePatterns:
      - "/news/*"
    secondLevelLimit: 5
scoring:
  high:
    - treatment
    - recovery
  highWeight: 15
`
	path := filepath.Join(t.TempDir(), ".doccrawl")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cf, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	rules := cf.GetSiteRules("example.org")
	if rules.Headers["X-Referral-Source"] != "aftercare" {
		t.Errorf("unexpected headers: %v", rules.Headers)
	}
	if len(rules.IgnorePatterns) != 1 || rules.IgnorePatterns[0] != "/news/*" {
		t.Errorf("site ignore patterns should override defaults, got %v", rules.IgnorePatterns)
	}
	if rules.SecondLevelLimit != 5 {
		t.Errorf("SecondLevelLimit = %d, expected 5", rules.SecondLevelLimit)
	}

	// Unknown host gets the defaults.
	other := cf.GetSiteRules("other.org")
	if len(other.IgnorePatterns) != 1 || other.IgnorePatterns[0] != "/blog/*" {
		t.Errorf("unknown host should get defaults, got %v", other.IgnorePatterns)
	}

	// Scoring overrides merge over built-in weights.
	w := cf.ScoringWeights()
	if len(w.High) != 2 || w.High[1] != "recovery" {
		t.Errorf("high tier should be replaced, got %v", w.High)
	}
	if w.HighWeight != 15 {
		t.Errorf("HighWeight = %d, expected 15", w.HighWeight)
	}
	if len(w.Medium) == 0 {
		t.Error("unset medium tier should keep the defaults")
	}
	if w.NegativeWeight >= 0 {
		t.Error("unset negative weight should keep the default")
	}
}

// TestLoadConfigFileNotFound verifies the sentinel for missing files.
func TestLoadConfigFileNotFound(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if !errors.Is(err, ErrConfigNotFound) {
		t.Errorf("expected ErrConfigNotFound, got %v", err)
	}
}

// TestLoadConfigFileMalformed verifies YAML errors propagate.
func TestLoadConfigFileMalformed(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), ".doccrawl")
	if err := os.WriteFile(path, []byte("sites: [not a map"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfigFile(path); err == nil {
		t.Error("expected a parse error")
	}
}

// TestFindConfigFile verifies explicit-path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("sites: {}\n"), 0600); err != nil {
		t.Fatal(err)
	}

	if got := FindConfigFile(path); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
	if got := FindConfigFile(filepath.Join(t.TempDir(), "nope.yaml")); got != "" {
		t.Errorf("expected empty result for missing explicit path, got %q", got)
	}
}

// TestXDGDirs verifies the app name lands in every XDG path.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{
		"data":   XDGDataDir(),
		"config": XDGConfigDir(),
		"cache":  XDGCacheDir(),
	} {
		if !strings.Contains(dir, AppName) {
			t.Errorf("%s dir %q should contain %q", name, dir, AppName)
		}
	}
}
