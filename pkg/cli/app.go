package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"crawl-mgmt-go/pkg/actions"
	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/config"
	"crawl-mgmt-go/pkg/dispatch"
	"crawl-mgmt-go/pkg/endpoints"
	"crawl-mgmt-go/pkg/store"

	"go.uber.org/zap"
)

// App holds everything a command needs: config, output streams and the
// lazily built action service with its store.
type App struct {
	cfg        *config.Config
	configPath string
	out        io.Writer
	errOut     io.Writer
	logger     *zap.Logger
	quiet      bool
	now        func() time.Time

	store   *store.Store
	service *actions.Service
}

// Option configures an App.
type Option func(*App)

// WithOutput redirects command output.
func WithOutput(out, errOut io.Writer) Option {
	return func(a *App) {
		a.out = out
		a.errOut = errOut
	}
}

// WithLogger sets the application logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithConfigPath sets where config set writes.
func WithConfigPath(path string) Option {
	return func(a *App) { a.configPath = path }
}

func NewApp(cfg *config.Config, opts ...Option) *App {
	a := &App{
		cfg:    cfg,
		out:    os.Stdout,
		errOut: os.Stderr,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetQuiet makes commands print only ids.
func (a *App) SetQuiet(quiet bool) {
	a.quiet = quiet
}

// getService returns the action service, creating it if necessary
func (a *App) getService() (*actions.Service, error) {
	if a.service != nil {
		return a.service, nil
	}

	if a.cfg.Endpoints.Root == "" {
		return nil, fmt.Errorf("endpoint root not configured (set endpoints.root)")
	}

	timeout := time.Duration(a.cfg.CLI.RequestTimeout) * time.Second
	httpClient := client.NewClient(timeout, a.logger)

	a.store = store.New()
	dispatcher := dispatch.New(httpClient, a.store, dispatch.WithLogger(a.logger))
	a.service = actions.NewService(endpoints.NewResolver(endpoints.FromConfig(a.cfg)), dispatcher, a.logger)
	return a.service, nil
}

// Store returns the store backing the service.
func (a *App) Store() (*store.Store, error) {
	if _, err := a.getService(); err != nil {
		return nil, err
	}
	return a.store, nil
}

// resultErr turns a failed or suppressed action into an error.
func resultErr(res actions.Result) error {
	if res.Err != nil {
		return res.Err
	}
	if !res.Dispatched {
		return errors.New("request already in flight")
	}
	return nil
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// info prints progress lines that quiet mode suppresses.
func (a *App) info(format string, args ...any) {
	if !a.quiet {
		fmt.Fprintf(a.out, format, args...)
	}
}
