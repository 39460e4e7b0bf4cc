package flags

// Package flags defines canonical CLI flag names shared by the commands and
// the config layer. Keeping these as constants helps avoid drift between
// Cobra flag wiring and the yaml/env keys documented in internal/config.
// IMPORTANT: These are flag *names* without leading dashes.
// Example usage:
//
//	cmd.Flags().StringVar(&cfg.Target.Owner, flags.FlagOwner, "", "...")
//	arg := "--" + flags.FlagOwner
const (
	// Target
	FlagOwner  = "owner"
	FlagToken  = "token"
	FlagAPIURL = "api-url"
	FlagConfig = "config"

	// Protection
	FlagBranch          = "branch"
	FlagNoStatusChecks  = "no-status-checks"
	FlagCIName          = "ci-name"
	FlagContext         = "context"
	FlagRequiredReviews = "required-reviews"

	// Admin enforcement toggle
	FlagEnableProtection  = "enableProtection"
	FlagDisableProtection = "disableProtection"

	// Team grants
	FlagTeam       = "team"
	FlagPermission = "permission"

	// Output
	FlagFormat    = "format"
	FlagOut       = "out"
	FlagOutFormat = "out-format"
	FlagNoColor   = "no-color"

	// Runtime
	FlagConcurrency      = "concurrency"
	FlagTimeout          = "timeout"
	FlagVerbose          = "verbose"
	FlagAllowMissingRepo = "allow-missing-repo"
)
