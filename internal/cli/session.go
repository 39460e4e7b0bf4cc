package cli

import (
	"context"
	"errors"
	"fmt"

	"edmrepos/internal/admin"
	"edmrepos/internal/config"
	"edmrepos/internal/flags"
	gh "edmrepos/internal/github"
	"edmrepos/internal/output"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// loadConfig layers defaults, the YAML file, .env files, EDM_REPOS_*
// variables and explicitly set flags, then validates the result.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.New()

	if a.flags.configPath != "" {
		if err := cfg.LoadFile(a.flags.configPath, false); err != nil {
			return nil, err
		}
	} else if err := cfg.LoadFile(config.DefaultFile, true); err != nil {
		return nil, err
	}
	if _, err := config.LoadEnvFiles(config.DefaultEnvFiles); err != nil {
		return nil, fmt.Errorf("load env files: %w", err)
	}
	if err := cfg.LoadEnv(); err != nil {
		return nil, err
	}

	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	changed := func(name string) bool {
		return cmd.Flags().Changed(name)
	}
	v := a.flags

	if changed(flags.FlagOwner) {
		cfg.Target.Owner = v.owner
	}
	if changed(flags.FlagToken) {
		cfg.Target.Token = v.token
	}
	if changed(flags.FlagAPIURL) {
		cfg.Target.APIURL = v.apiURL
	}

	if changed(flags.FlagBranch) {
		cfg.Protection.Branches = v.branches
	}
	if changed(flags.FlagNoStatusChecks) {
		cfg.Protection.RequireStatusChecks = !v.noStatusChecks
	}
	if changed(flags.FlagCIName) {
		cfg.Protection.CIName = v.ciName
	}
	if changed(flags.FlagContext) {
		cfg.Protection.Contexts = v.contexts
	}
	if changed(flags.FlagRequiredReviews) {
		cfg.Protection.RequiredApprovingReviews = v.requiredReviews
	}

	if changed(flags.FlagFormat) {
		cfg.Output.Format = v.format
	}
	if changed(flags.FlagOut) {
		cfg.Output.Out = v.out
	}
	if changed(flags.FlagOutFormat) {
		cfg.Output.OutFormat = v.outFormat
	}
	if changed(flags.FlagNoColor) {
		cfg.Output.NoColor = v.noColor
	}

	if changed(flags.FlagConcurrency) {
		cfg.Runtime.Concurrency = v.concurrency
	}
	if changed(flags.FlagTimeout) {
		cfg.Runtime.Timeout = v.timeout
	}
	if changed(flags.FlagVerbose) {
		cfg.Runtime.Verbose = v.verbose
	}
	if changed(flags.FlagAllowMissingRepo) {
		cfg.Runtime.AllowMissingRepo = v.allowMissingRepo
	}
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(cmd.ErrOrStderr())
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: cfg.Output.NoColor,
	})
	log.SetLevel(logrus.InfoLevel)
	if cfg.Runtime.Verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

// session is everything one command invocation needs: config, logger,
// the admin service for the target repository, and the output run.
type session struct {
	cfg *config.Config
	log *logrus.Logger
	ref admin.RepositoryRef
	svc *admin.Service
	out *output.Manager
	run *output.Run
}

type sessionOptions struct {
	command      string
	repo         string
	requireToken bool
}

// begin starts a session. The returned context carries the overall
// deadline; cancel must be called once the command is done.
func (a *app) begin(cmd *cobra.Command, opts sessionOptions) (*session, context.Context, context.CancelFunc, error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log := newLogger(cmd, cfg)

	ref, err := admin.ParseRepositoryRef(cfg.Target.Owner, opts.repo)
	if err != nil {
		return nil, nil, nil, err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithTimeout(parent, cfg.Runtime.Timeout)

	fail := func(err error) (*session, context.Context, context.CancelFunc, error) {
		cancel()
		return nil, nil, nil, err
	}

	token, err := a.resolveToken(ctx, cfg.Target.Token)
	if err != nil {
		return fail(fmt.Errorf("failed to resolve GitHub auth token: %w", err))
	}
	if token.Empty() {
		if opts.requireToken {
			return fail(errors.New("GitHub auth token is required (pass --token, set GITHUB_TOKEN or run 'gh auth login')"))
		}
		log.Warn("no GitHub token found; only public repositories are visible")
	} else {
		log.Debugf("using GitHub token from %s", token.Source)
	}

	client, err := gh.NewClient(ctx, token.Value, gh.WithBaseURL(cfg.Target.APIURL), gh.WithLogger(log))
	if err != nil {
		return fail(fmt.Errorf("failed to create GitHub client: %w", err))
	}
	svc, err := admin.NewService(client, admin.WithLogger(log), admin.WithConcurrency(cfg.Runtime.Concurrency))
	if err != nil {
		return fail(err)
	}

	out, err := output.Open(cmd.OutOrStdout(), cfg.Output)
	if err != nil {
		return fail(err)
	}
	run, err := out.StartRun(opts.command, ref.String())
	if err != nil {
		_ = out.Close()
		return fail(err)
	}

	return &session{cfg: cfg, log: log, ref: ref, svc: svc, out: out, run: run}, ctx, cancel, nil
}

// resolveRepository looks the target up before any mutation. A failed lookup
// ends the command unless --allow-missing-repo is set, in which case the
// requested name is used as given.
func (s *session) resolveRepository(ctx context.Context) (admin.RepositoryRef, error) {
	info, err := s.svc.ResolveRepository(ctx, s.ref)
	if err != nil {
		if s.cfg.Runtime.AllowMissingRepo {
			s.log.WithError(err).Warnf("continuing with %s", s.ref)
			return s.ref, nil
		}
		o := admin.Outcome{Action: admin.ActionResolveRepository, Repo: s.ref.String(), Target: s.ref.String(), Err: err}
		var lerr *admin.LookupError
		if errors.As(err, &lerr) {
			o.StatusCode = lerr.StatusCode
			o.Body = lerr.Body
		}
		if rerr := s.run.Record(o); rerr != nil {
			return s.ref, errors.Join(err, rerr)
		}
		return s.ref, err
	}

	if err := s.run.Record(admin.Outcome{
		Action:     admin.ActionResolveRepository,
		Repo:       s.ref.String(),
		Target:     info.FullName,
		StatusCode: info.StatusCode,
		Detail:     info.Visibility(),
	}); err != nil {
		return s.ref, err
	}

	ref, perr := admin.ParseRepositoryRef(s.ref.Owner, info.FullName)
	if perr != nil {
		return s.ref, nil
	}
	return ref, nil
}

// finish emits run.finished, closes the sinks, and turns failed outcomes
// into the command's error.
func (s *session) finish(runErr error) error {
	exitCode := 0
	if runErr != nil || s.run.Failed() > 0 {
		exitCode = 1
	}
	finishErr := s.run.Finish(exitCode)
	closeErr := s.out.Close()

	if runErr != nil {
		return runErr
	}
	if n := s.run.Failed(); n > 0 {
		return fmt.Errorf("%d of %d operations on %s failed", n, s.run.Total(), s.ref)
	}
	return errors.Join(finishErr, closeErr)
}
