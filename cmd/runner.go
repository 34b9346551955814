package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/mysubs/internal/auth"
	"github.com/desertthunder/mysubs/internal/credentials"
	"github.com/desertthunder/mysubs/internal/services"
	"github.com/desertthunder/mysubs/internal/shared"
	"github.com/desertthunder/mysubs/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The credential store, token manager and YouTube client are built on first use by [Runner.session]
// so commands like setup work before a client id is configured.
type Runner struct {
	config      *shared.Config
	configPath  string
	httpClient  *http.Client
	logger      *log.Logger
	output      io.Writer
	store       credentials.Store
	manager     *auth.Manager
	youtube     services.SubscriptionsClient
	openBrowser func(url string) error
	closers     []io.Closer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	HTTPClient  *http.Client
	Logger      *log.Logger
	Output      io.Writer
	Store       credentials.Store
	OpenBrowser func(url string) error
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = shared.OpenBrowser
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		httpClient:  opts.HTTPClient,
		logger:      opts.Logger,
		output:      opts.Output,
		store:       opts.Store,
		openBrowser: opts.OpenBrowser,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, subscriptionsCommand, channelCommand, accountCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by components built afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// before loads the config file named by --config when it exists, then applies environment overrides
// and the log level.
func (r *Runner) before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			cfg, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = cfg
		}
	}

	if err := r.config.ApplyEnv(); err != nil {
		return ctx, err
	}

	level := r.config.Log.Level
	if l := cmd.String("log-level"); l != "" {
		level = l
	}
	if level != "" {
		if err := shared.SetLogLevel(r.logger, level); err != nil {
			r.logger.Warn("ignoring unknown log level", "level", level)
		}
	}
	return ctx, nil
}

// session builds the credential store, token manager and YouTube client once.
func (r *Runner) session(ctx context.Context) error {
	if r.youtube != nil {
		return nil
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	if r.httpClient == nil {
		r.httpClient = &http.Client{Timeout: r.config.RequestTimeout()}
	}

	if r.store == nil {
		store, closer, err := openStore(ctx, r.config, r.logger)
		if err != nil {
			return err
		}
		r.store = store
		if closer != nil {
			r.closers = append(r.closers, closer)
		}
	}

	r.manager = auth.NewManager(
		auth.ConfigFrom(r.config.Google),
		r.store,
		auth.WithHTTPClient(r.httpClient),
		auth.WithLogger(shared.WithLogger(r.logger, "component", "auth")),
	)
	r.youtube = services.NewYouTubeService(
		r.manager,
		services.WithBaseURL(r.config.YouTube.BaseURL),
		services.WithHTTPClient(r.httpClient),
		services.WithPageSize(r.config.YouTube.PageSize),
		services.WithLogger(shared.WithLogger(r.logger, "component", "youtube")),
	)
	return nil
}

func (r *Runner) crawler() *tasks.Crawler {
	return tasks.NewCrawler(r.youtube, tasks.CrawlOpts{
		NumWorkers: r.config.YouTube.Workers,
		RateLimit:  r.config.YouTube.RateLimit,
	}, r.logger)
}

// Close releases resources opened by [Runner.session].
func (r *Runner) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	r.closers = nil
	return first
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
