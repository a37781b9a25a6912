// Package cli implements the cgs command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mandelsoft/vfs/pkg/osfs"
	"github.com/mandelsoft/vfs/pkg/vfs"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tilsley/cgs/apps/cgs/internal/clone"
	"github.com/tilsley/cgs/apps/cgs/internal/config"
	"github.com/tilsley/cgs/apps/cgs/internal/gitrepo"
	"github.com/tilsley/cgs/apps/cgs/internal/platform/github"
	"github.com/tilsley/cgs/pkg/logging"
	"github.com/tilsley/cgs/pkg/telemetry"
)

const (
	programName = "Clone Github Sub-directory (cgs)"
	// Version is the released program version.
	Version   = "1.0.0"
	copyright = "Copyright (c) 2023 cgs authors, licensed under MIT License."

	noArgsMessage = "No options or arguments provided"
	serviceName   = "cgs"
)

const versionTemplate = programName + "\nVersion {{.Version}}\n" + copyright + "\n"

const usageTemplate = `Usage:
 cgs [options] <link>

Arguments:
 link              Github sub-directory URL

Options:
{{.LocalFlags.FlagUsages}}`

// Env carries the process resources a command runs against.
type Env struct {
	FS     vfs.FileSystem
	Out    io.Writer
	Err    io.Writer
	Getenv func(string) string
	// Repo replaces the GitHub adapter. Nil builds one from the resolved config.
	Repo gitrepo.Client
}

// OSEnv is the Env of a real process.
func OSEnv() Env {
	return Env{FS: osfs.New(), Out: os.Stdout, Err: os.Stderr, Getenv: os.Getenv}
}

// Options holds the values of the command-line flags.
type Options struct {
	URL            string
	CurrentDirOnly bool
	ConfigPath     string
	APIURL         string
	UserAgent      string
	MaxDepth       int
	HTTPTimeout    time.Duration

	flags *pflag.FlagSet
	cfg   config.Config
}

// AddFlags registers the cgs flags on fs.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.flags = fs
	fs.StringVarP(&o.URL, "url", "u", "", "Github sub-directory URL")
	fs.BoolVarP(&o.CurrentDirOnly, "curdir", "c", false, "Current sub-directory only")
	fs.StringVar(&o.ConfigPath, "config", "", "path to a YAML config file (env "+config.EnvConfig+")")
	fs.StringVar(&o.APIURL, "api-url", "", "contents API base URL (env "+config.EnvAPIURL+")")
	fs.StringVar(&o.UserAgent, "user-agent", "", "User-Agent sent to the API (env "+config.EnvUserAgent+")")
	fs.IntVar(&o.MaxDepth, "max-depth", clone.DefaultMaxDepth, "maximum sub-directory depth, 0 for unlimited (env "+config.EnvMaxDepth+")")
	fs.DurationVar(&o.HTTPTimeout, "http-timeout", 0, "per-request timeout, 0 for none (env "+config.EnvHTTPTimeout+")")
}

// Complete resolves the URL and the layered configuration. Flags that were
// set explicitly win over the config file and the environment.
func (o *Options) Complete(args []string, env Env) error {
	if o.URL == "" && len(args) > 0 {
		o.URL = args[0]
	}

	path := o.ConfigPath
	if path == "" {
		path = env.Getenv(config.EnvConfig)
	}
	cfg, err := config.Load(env.FS, path, env.Getenv)
	if err != nil {
		return err
	}

	if o.changed("curdir") {
		cfg.CurrentDirOnly = o.CurrentDirOnly
	}
	if o.changed("api-url") {
		cfg.APIURL = o.APIURL
	}
	if o.changed("user-agent") {
		cfg.UserAgent = o.UserAgent
	}
	if o.changed("max-depth") {
		cfg.MaxDepth = o.MaxDepth
	}
	if o.changed("http-timeout") {
		cfg.HTTPTimeout = o.HTTPTimeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}

func (o *Options) changed(name string) bool {
	return o.flags != nil && o.flags.Changed(name)
}

// Config returns the configuration resolved by Complete.
func (o *Options) Config() config.Config {
	return o.cfg
}

// Run clones o.URL into the working directory of env.FS.
func (o *Options) Run(ctx context.Context, log *slog.Logger, env Env) (*clone.Result, error) {
	repo := env.Repo
	if repo == nil {
		repo = github.NewClient(github.NewGoGitHub(github.Options{
			UserAgent: o.cfg.UserAgent,
			Timeout:   o.cfg.HTTPTimeout,
		}))
	}

	mat := clone.NewMaterializer(env.FS, repo, env.Out)
	svc := clone.NewService(clone.NewLister(repo, mat, log), mat, log)

	return svc.Run(ctx, clone.Request{
		URL:     o.URL,
		APIBase: o.cfg.APIURL,
		Options: clone.Options{Mode: o.cfg.Mode(), MaxDepth: o.cfg.MaxDepth},
	})
}

// errExit carries a non-zero exit status out of cobra.
type errExit struct {
	code int
}

func (e *errExit) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// NewCommand builds the root command.
func NewCommand(ctx context.Context, env Env) *cobra.Command {
	if env.Getenv == nil {
		env.Getenv = os.Getenv
	}
	opts := &Options{}
	cmd := &cobra.Command{
		Use:           "cgs [options] <link>",
		Short:         "Clone a single sub-directory of a GitHub repository",
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.URL == "" && len(args) == 0 {
				fmt.Fprintln(env.Out, noArgsMessage) //nolint:errcheck
				return nil
			}
			if err := opts.Complete(args, env); err != nil {
				fmt.Fprintln(env.Err, err.Error()) //nolint:errcheck
				return &errExit{code: 1}
			}

			// Recoverable failures go to stdout next to the written file names.
			log := logging.New(env.Out, logging.FormatText)

			tel, err := telemetry.New(ctx, opts.cfg.OTelEnabled, serviceName)
			if err != nil {
				fmt.Fprintln(env.Err, err.Error()) //nolint:errcheck
				return &errExit{code: 1}
			}
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), telemetry.ShutdownTimeout)
				defer cancel()
				if err := tel.Shutdown(shutdownCtx); err != nil {
					log.Error("telemetry shutdown failed", "error", err)
				}
			}()

			if _, err := opts.Run(ctx, log, env); err != nil {
				fmt.Fprintln(env.Err, err.Error()) //nolint:errcheck
				return &errExit{code: 1}
			}
			return nil
		},
	}

	cmd.SetOut(env.Out)
	cmd.SetErr(env.Err)
	cmd.SetVersionTemplate(versionTemplate)
	cmd.SetUsageTemplate(usageTemplate)
	cmd.SetHelpTemplate(`{{.UsageString}}`)

	opts.AddFlags(cmd.Flags())
	cmd.Flags().BoolP("help", "h", false, "Show this help message")
	cmd.Flags().BoolP("version", "v", false, "Show the program version")
	return cmd
}

// Execute runs the command with args and returns the process exit status.
func Execute(ctx context.Context, args []string, env Env) int {
	cmd := NewCommand(ctx, env)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		var exit *errExit
		if errors.As(err, &exit) {
			return exit.code
		}
		fmt.Fprintln(env.Err, err.Error()) //nolint:errcheck
		return 1
	}
	return 0
}
