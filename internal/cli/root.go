package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"edmrepos/internal/config"
	"edmrepos/internal/flags"
	gh "edmrepos/internal/github"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// flagValues holds raw flag input. Only flags the user actually set are
// copied onto the loaded config, so file and environment values survive.
type flagValues struct {
	configPath string

	owner  string
	token  string
	apiURL string

	branches        []string
	noStatusChecks  bool
	ciName          string
	contexts        []string
	requiredReviews int

	format    string
	out       string
	outFormat string
	noColor   bool

	concurrency      int
	timeout          time.Duration
	verbose          bool
	allowMissingRepo bool
}

type app struct {
	flags        flagValues
	resolveToken func(ctx context.Context, provided string) (gh.Token, error)
}

var rootCmd = newRootCmd(&app{resolveToken: gh.ResolveToken})

func newRootCmd(a *app) *cobra.Command {
	defaults := config.New()

	cmd := &cobra.Command{
		Use:   "edm-repos",
		Short: "Apply branch protection and team access policy to GitHub repositories",
		Long: `edm-repos applies the EDM repository policy to a single GitHub repository:
classic branch protection on develop and master, the admin-enforcement toggle,
and team permission grants.

Examples:
	# Protect develop and master with the default CI status checks
	edm-repos add-branch-protection my-repo

	# Temporarily let admins bypass protection
	edm-repos enforce-admin-protection my-repo --disableProtection

	# Give two teams push access
	edm-repos add-teams-to-repo my-repo --team "Team A" --team "Team B" --permission push

	# Print build info
	edm-repos version

Configuration:
	Values are read in increasing precedence from built-in defaults, the YAML
	file (` + config.DefaultFile + ` or --config), .env files, ` + config.EnvPrefix + `*
	environment variables and flags.

Output:
	Human-readable text goes to stdout, logs go to stderr. Use --format json or
	--format ndjson for machine output; ndjson emits run.started, item.result
	and run.finished events.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, flags.FlagConfig, "", "YAML config file (default: "+config.DefaultFile+" if present)")
	pf.StringVar(&a.flags.owner, flags.FlagOwner, defaults.Target.Owner, "Owner of repositories given without an OWNER/ prefix")
	pf.StringVar(&a.flags.token, flags.FlagToken, "", "GitHub token (default: GITHUB_TOKEN, then gh auth token)")
	pf.StringVar(&a.flags.apiURL, flags.FlagAPIURL, "", "GitHub Enterprise Server API URL (default: api.github.com)")
	pf.StringVar(&a.flags.format, flags.FlagFormat, defaults.Output.Format, "Console output format: text|json|ndjson")
	pf.StringVar(&a.flags.out, flags.FlagOut, "", "Write structured output to this path")
	pf.StringVar(&a.flags.outFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from file extension)")
	pf.BoolVar(&a.flags.noColor, flags.FlagNoColor, false, "Disable colored output")
	pf.DurationVar(&a.flags.timeout, flags.FlagTimeout, defaults.Runtime.Timeout, "Overall deadline for the command")
	pf.BoolVar(&a.flags.verbose, flags.FlagVerbose, false, "Enable verbose logging (prints every GitHub API call and full payloads)")

	cmd.AddCommand(
		newAddBranchProtectionCmd(a),
		newEnforceAdminProtectionCmd(a),
		newAddTeamsToRepoCmd(a),
		newRepoCmd(a),
		newProtectionCmd(a),
		newVersionCmd(),
	)
	return cmd
}

// addAllowMissingRepoFlag registers the flag on commands that resolve the
// repository before mutating it.
func addAllowMissingRepoFlag(cmd *cobra.Command, a *app) {
	cmd.Flags().BoolVar(&a.flags.allowMissingRepo, flags.FlagAllowMissingRepo, false, "Continue with the given name when the repository lookup fails")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
