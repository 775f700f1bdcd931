package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/gitstatus-go/internal/buildinfo"
	"github.com/thiagokokada/gitstatus-go/internal/config"
	"github.com/thiagokokada/gitstatus-go/internal/git"
	"github.com/thiagokokada/gitstatus-go/internal/gstat"
	"github.com/thiagokokada/gitstatus-go/internal/render"
	"github.com/thiagokokada/gitstatus-go/internal/watch"
)

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	root := newRootCommand(os.Stdin, os.Stdout, os.Stderr)
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(ctx)
}

type options struct {
	configPath string
	dir        string
	backend    string
	format     string
	color      string
	shell      string
	watch      bool
	verbose    bool
}

func newRootCommand(stdin *os.File, stdout, stderr io.Writer) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:   "gitstatus",
		Short: "Print a one-line summary of the repository status for shell prompts",
		Long: `gitstatus condenses "git status --porcelain --branch" into one line:

  branch ahead behind staged conflicts changed untracked stashes local upstream merge rebase

Status output piped on stdin is used when available; otherwise git is run
in the current (or -C) directory.`,
		Version:       buildinfo.String(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			setupLogging(stderr, opts.verbose)
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return run(cmd.Context(), stdin, stdout, opts, cfg)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to the YAML config file (default $XDG_CONFIG_HOME/gitstatus/config.yaml)")
	flags.StringVarP(&opts.dir, "directory", "C", ".", "run as if started in this directory")
	flags.StringVar(&opts.backend, "backend", "", "status source: cli (git executable) or native (go-git)")
	flags.StringVar(&opts.format, "format", "", "output format: raw or prompt")
	flags.StringVar(&opts.color, "color", "", "prompt colors: auto, always or never")
	flags.StringVar(&opts.shell, "shell", "", "mark prompt color escapes as zero width for: none, zsh or bash")
	flags.BoolVar(&opts.watch, "watch", false, "print a new line whenever the repository changes")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging on stderr")
	return cmd
}

func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// loadConfig merges the config file with flags set on the command line.
func loadConfig(cmd *cobra.Command, opts options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend = opts.backend
	}
	if flags.Changed("format") {
		cfg.Format = opts.format
	}
	if flags.Changed("color") {
		cfg.Color = opts.color
	}
	if flags.Changed("shell") {
		cfg.Shell = opts.shell
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func run(ctx context.Context, stdin *os.File, stdout io.Writer, opts options, cfg config.Config) error {
	format, err := render.ParseFormat(cfg.Format)
	if err != nil {
		return err
	}
	colors, err := render.ParseColorMode(cfg.Color)
	if err != nil {
		return err
	}
	shell, err := render.ParseShell(cfg.Shell)
	if err != nil {
		return err
	}
	src, err := git.NewSource(cfg.Backend, opts.dir)
	if err != nil {
		return err
	}
	r := &reporter{
		dir:      opts.dir,
		source:   src,
		renderer: render.New(stdout, format, cfg.Symbols, colors, shell),
		opts:     gstat.Options{HashPrefix: cfg.HashPrefix, HashLength: cfg.HashLength},
	}

	if opts.watch {
		return r.watch(ctx, stdout, cfg)
	}

	lines, piped, err := git.ReadPiped(stdin)
	if err != nil {
		return err
	}
	if !piped {
		lines, err = src.StatusLines(ctx)
	}
	var line string
	if err == nil {
		line, err = r.report(lines)
	}
	if errors.Is(err, git.ErrNotRepository) {
		slog.Debug("not inside a repository, printing nothing")
		return nil
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, line)
	return err
}

type reporter struct {
	dir      string
	source   git.Source
	renderer *render.Renderer
	opts     gstat.Options
}

// report renders the status line for porcelain output lines.
func (r *reporter) report(lines []string) (string, error) {
	if git.IsNotRepositoryOutput(lines) {
		return "", git.ErrNotRepository
	}
	paths, err := gstat.FindRepo(r.dir)
	if err != nil {
		return "", err
	}
	slog.Debug("repository paths", slog.String("root", paths.Root), slog.String("tree", paths.Tree))
	st, err := gstat.Assemble(lines, paths, r.opts)
	if err != nil {
		return "", err
	}
	return r.renderer.Render(st), nil
}

func (r *reporter) watch(ctx context.Context, stdout io.Writer, cfg config.Config) error {
	paths, err := gstat.FindRepo(r.dir)
	if err != nil {
		return err
	}
	var (
		mu   sync.Mutex
		last string
	)
	emit := func() {
		mu.Lock()
		defer mu.Unlock()
		lines, err := r.source.StatusLines(ctx)
		var line string
		if err == nil {
			line, err = r.report(lines)
		}
		if err != nil {
			slog.Error("refresh status", slog.Any("error", err))
			return
		}
		if line == last {
			return
		}
		last = line
		if _, err := fmt.Fprintln(stdout, line); err != nil {
			slog.Error("write status", slog.Any("error", err))
		}
	}
	emit()
	return watch.Run(ctx, paths, cfg.WatchDebounce, emit)
}
