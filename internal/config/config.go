package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

const DefaultOwner = "uw-it-edm"

type Config struct {
	// MAINTAINER NOTE: fields here are populated, in increasing precedence,
	// by New() defaults, the YAML file (LoadFile), the environment (LoadEnv)
	// and CLI flags (internal/cli). Keep the yaml and env tags in sync with
	// the flag names in internal/flags.
	Target     Target     `yaml:"target"`
	Protection Protection `yaml:"protection"`
	Output     Output     `yaml:"output"`
	Runtime    Runtime    `yaml:"runtime"`
}

type Target struct {
	// Owner is the organization (or user) that owns the repository (see --owner).
	Owner string `yaml:"owner" env:"OWNER"`

	// Token is an explicit GitHub token (see --token). Usually left empty in
	// files so GITHUB_TOKEN or gh auth is used instead.
	Token string `yaml:"token" env:"TOKEN"`

	// APIURL points at a GitHub Enterprise Server API root (see --api-url).
	// Empty means api.github.com.
	APIURL string `yaml:"api_url" env:"API_URL"`
}

type Protection struct {
	// Branches to protect, in order (see --branch).
	Branches []string `yaml:"branches" env:"BRANCHES" envSeparator:","`

	// RequireStatusChecks submits CI status contexts with the rule (see --no-status-checks).
	RequireStatusChecks bool `yaml:"require_status_checks" env:"REQUIRE_STATUS_CHECKS"`

	// CIName prefixes the default "<CI> - Branch" / "<CI> - Pull Request" contexts (see --ci-name).
	CIName string `yaml:"ci_name" env:"CI_NAME"`

	// Contexts replaces the default CI contexts entirely (see --context).
	Contexts []string `yaml:"contexts" env:"CONTEXTS" envSeparator:","`

	// RequiredApprovingReviews is the approving review count (see --required-reviews).
	RequiredApprovingReviews int `yaml:"required_approving_reviews" env:"REQUIRED_APPROVING_REVIEWS"`
}

type Output struct {
	// Format is the console format (see --format).
	// Allowed values: text, json, ndjson.
	Format string `yaml:"format" env:"FORMAT"`

	// Out writes structured outcomes to this path (see --out).
	Out string `yaml:"out" env:"OUT"`

	// OutFormat selects json or ndjson for --out; inferred from the extension when empty.
	OutFormat string `yaml:"out_format" env:"OUT_FORMAT"`

	// NoColor disables colored console output (see --no-color).
	NoColor bool `yaml:"no_color" env:"NO_COLOR"`
}

type Runtime struct {
	// Concurrency bounds concurrent team grants (see --concurrency). Must be >= 1.
	Concurrency int `yaml:"concurrency" env:"CONCURRENCY"`

	// Timeout bounds the whole invocation (see --timeout). Must be > 0.
	Timeout time.Duration `yaml:"timeout" env:"TIMEOUT"`

	// Verbose logs every GitHub API call and full payloads (see --verbose).
	Verbose bool `yaml:"verbose" env:"VERBOSE"`

	// AllowMissingRepo logs a failed repository lookup and carries on instead
	// of stopping (see --allow-missing-repo).
	AllowMissingRepo bool `yaml:"allow_missing_repo" env:"ALLOW_MISSING_REPO"`
}

func New() *Config {
	return &Config{
		Target: Target{
			Owner: DefaultOwner,
		},
		Protection: Protection{
			Branches:                 []string{"develop", "master"},
			RequireStatusChecks:      true,
			CIName:                   "Travis CI",
			RequiredApprovingReviews: 1,
		},
		Output: Output{
			Format: "text",
		},
		Runtime: Runtime{
			Concurrency: 4,
			Timeout:     2 * time.Minute,
		},
	}
}

func (c *Config) Validate() error {
	c.Target.Owner = strings.TrimSpace(c.Target.Owner)
	if c.Target.Owner == "" {
		return errors.New("--owner must not be empty")
	}
	if strings.Contains(c.Target.Owner, "/") {
		return fmt.Errorf("invalid --owner value %q", c.Target.Owner)
	}
	c.Target.Token = strings.TrimSpace(c.Target.Token)
	c.Target.APIURL = strings.TrimSpace(c.Target.APIURL)

	// Protection
	c.Protection.Branches = splitCommaList(c.Protection.Branches)
	if len(c.Protection.Branches) == 0 {
		return errors.New("at least one --branch is required")
	}
	if dup := firstDuplicate(c.Protection.Branches); dup != "" {
		return fmt.Errorf("duplicate --branch %q", dup)
	}
	c.Protection.Contexts = splitCommaList(c.Protection.Contexts)
	c.Protection.CIName = strings.TrimSpace(c.Protection.CIName)
	if c.Protection.CIName == "" && len(c.Protection.Contexts) == 0 {
		c.Protection.CIName = "Travis CI"
	}
	if c.Protection.RequiredApprovingReviews < 1 || c.Protection.RequiredApprovingReviews > 6 {
		return errors.New("--required-reviews must be between 1 and 6")
	}

	// Output
	c.Output.Format = normalizeEnumValue(c.Output.Format)
	if c.Output.Format == "" {
		c.Output.Format = "text"
	}
	if c.Output.Format != "text" && c.Output.Format != "json" && c.Output.Format != "ndjson" {
		return fmt.Errorf("unsupported --format: %s (must be one of: text, json, ndjson)", c.Output.Format)
	}
	if c.Output.Out != "" {
		c.Output.OutFormat = normalizeEnumValue(c.Output.OutFormat)
		if c.Output.OutFormat == "" {
			switch ext := strings.ToLower(filepath.Ext(c.Output.Out)); ext {
			case ".json":
				c.Output.OutFormat = "json"
			case ".ndjson", ".jsonl":
				c.Output.OutFormat = "ndjson"
			case "":
				return errors.New("cannot infer output format from file extension (missing extension); use --out-format")
			default:
				return fmt.Errorf("cannot infer output format from file extension %q; use --out-format", ext)
			}
		}
		if c.Output.OutFormat != "json" && c.Output.OutFormat != "ndjson" {
			return fmt.Errorf("unsupported output format: %s", c.Output.OutFormat)
		}
	}

	// Runtime
	if c.Runtime.Concurrency <= 0 {
		return errors.New("--concurrency must be >= 1")
	}
	if c.Runtime.Timeout <= 0 {
		return errors.New("--timeout must be > 0")
	}
	return nil
}

func normalizeEnumValue(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func firstDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}

func splitCommaList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			p := strings.TrimSpace(part)
			if p == "" {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}
