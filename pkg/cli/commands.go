package cli

import (
	"fmt"

	"crawl-mgmt-go/pkg/cli/client"
	"crawl-mgmt-go/pkg/cli/format"
	"crawl-mgmt-go/pkg/crawlspec"
	"crawl-mgmt-go/pkg/models"
	"crawl-mgmt-go/pkg/utils"

	"github.com/spf13/cobra"
)

// Factory builds the App once flags are parsed.
type Factory func(configPath string) (*App, error)

// NewRootCmd creates the crawlctl command tree.
func NewRootCmd(newApp Factory) *cobra.Command {
	var (
		cfgFile  string
		quiet    bool
		endpoint string
		app      *App
	)

	cmd := &cobra.Command{
		Use:           "crawlctl",
		Short:         "Manage crawls on a crawl manager backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize: %w", err)
			}
			a.SetQuiet(quiet)
			if endpoint != "" {
				a.cfg.Endpoints.Root = endpoint
				a.cfg.Endpoints.Crawl = ""
			}
			app = a
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/crawl-mgmt/config.toml)")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "print only ids")
	cmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "crawl manager root URL (overrides config)")

	get := func() *App { return app }

	cmd.AddCommand(
		newListCmd(get),
		newCreateCmd(get),
		newInfoCmd(get),
		newStartCmd(get),
		newStopCmd(get),
		newRemoveCmd(get),
		newRemoveAllCmd(get),
		newDoneCmd(get),
		newWatchCmd(get),
		newAddURLsCmd(get),
		newConfigCmd(get),
		newTUICmd(get),
	)
	return cmd
}

// Execute runs the command tree and returns the process exit code.
func Execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		fmt.Fprint(cmd.ErrOrStderr(), format.FormatErrorMessage(client.UserMessage(err)))
		return 1
	}
	return 0
}

func newListCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all crawls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().ListCrawls(cmd.Context())
		},
	}
}

func newCreateCmd(app func() *App) *cobra.Command {
	var (
		start        bool
		noStart      bool
		watch        bool
		browser      string
		headless     bool
		behaviorTime int
		coll         string
		mode         string
		name         string
		crawlType    string
		browsers     int
		tabs         int
		depth        int
		seeds        []string
	)

	cmd := &cobra.Command{
		Use:   "create [crawl-spec.yaml]",
		Short: "Create (and optionally start) crawls from a YAML spec or flags",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := app()
			flags := cmd.Flags()

			d := a.cfg.Defaults
			o := crawlspec.Overrides{
				Browser:  browser,
				Coll:     coll,
				Mode:     mode,
				Defaults: crawlspec.Defaults{NumBrowsers: d.NumBrowsers, NumTabs: d.NumTabs},
			}
			if flags.Changed("headless") {
				o.Headless = models.Ptr(headless)
			}
			if flags.Changed("behavior-time") {
				o.BehaviorTime = models.Ptr(behaviorTime)
			}
			o.Start = models.Ptr(start && !noStart)

			var reqs []models.CreateCrawlRequest
			if len(args) == 1 {
				loaded, err := crawlspec.Load(args[0], o)
				if err != nil {
					return err
				}
				reqs = loaded
			} else {
				urls := make([]string, 0, len(seeds))
				for _, s := range seeds {
					u, err := utils.ValidateURL(s)
					if err != nil {
						return err
					}
					urls = append(urls, u)
				}
				if !flags.Changed("browsers") {
					browsers = d.NumBrowsers
				}
				if !flags.Changed("tabs") {
					tabs = d.NumTabs
				}
				req := models.CreateCrawlRequest{
					Name:        name,
					CrawlType:   models.CrawlType(crawlType),
					NumBrowsers: browsers,
					NumTabs:     tabs,
					SeedURLs:    urls,
				}
				if flags.Changed("depth") {
					req.CrawlDepth = models.Ptr(depth)
				}
				reqs = []models.CreateCrawlRequest{o.Apply(req)}
			}

			return a.CreateCrawls(cmd.Context(), reqs, CreateOptions{Watch: watch})
		},
	}

	f := cmd.Flags()
	f.BoolVar(&start, "start", true, "start the crawl immediately after creation")
	f.BoolVar(&noStart, "no-start", false, "don't start the crawl after creation")
	f.BoolVar(&watch, "watch", false, "print browser attach URLs (only if starting)")
	f.StringVar(&browser, "browser", "", "browser image to crawl with (overrides spec)")
	f.BoolVar(&headless, "headless", false, "run browsers headless (overrides spec)")
	f.IntVar(&behaviorTime, "behavior-time", 0, "max seconds per in-page behavior (overrides spec)")
	f.StringVar(&coll, "coll", "", "collection name (overrides spec)")
	f.StringVar(&mode, "mode", "", "capture mode (overrides spec)")
	f.StringVar(&name, "name", "", "crawl name")
	f.StringVar(&crawlType, "type", "", "crawl type: single-page, same-domain, all-links or custom")
	f.IntVar(&browsers, "browsers", 0, "number of browsers (default from config)")
	f.IntVar(&tabs, "tabs", 0, "tabs per browser (default from config)")
	f.IntVar(&depth, "depth", -1, "crawl depth (custom crawls only)")
	f.StringSliceVar(&seeds, "url", nil, "seed URL (repeatable)")

	return cmd
}

func newInfoCmd(app func() *App) *cobra.Command {
	var urls bool
	cmd := &cobra.Command{
		Use:   "info <crawl-id>...",
		Short: "Show info on existing crawls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Info(cmd.Context(), args, urls)
		},
	}
	cmd.Flags().BoolVar(&urls, "urls", false, "include queue, pending and seen URLs")
	return cmd
}

func newStartCmd(app func() *App) *cobra.Command {
	var (
		browser      string
		headless     bool
		behaviorTime int
	)
	cmd := &cobra.Command{
		Use:   "start <crawl-id>...",
		Short: "Start existing crawls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.StartCrawlRequest{
				Browser:         browser,
				BehaviorMaxTime: behaviorTime,
				Headless:        headless,
			}
			return app().StartCrawls(cmd.Context(), args, req)
		},
	}
	cmd.Flags().StringVar(&browser, "browser", "", "browser image (default from config)")
	cmd.Flags().BoolVar(&headless, "headless", false, "run browsers headless")
	cmd.Flags().IntVar(&behaviorTime, "behavior-time", 0, "max seconds per in-page behavior (default from config)")
	return cmd
}

func newStopCmd(app func() *App) *cobra.Command {
	var remove bool
	cmd := &cobra.Command{
		Use:   "stop <crawl-id>...",
		Short: "Stop running crawls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().StopCrawls(cmd.Context(), args, remove)
		},
	}
	cmd.Flags().BoolVar(&remove, "remove", false, "remove each crawl after stopping it")
	return cmd
}

func newRemoveCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <crawl-id>...",
		Short: "Remove crawls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().RemoveCrawls(cmd.Context(), args)
		},
	}
}

func newRemoveAllCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "remove-all",
		Short: "Remove every crawl",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().RemoveAll(cmd.Context())
		},
	}
}

func newDoneCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "done <crawl-id>",
		Short: "Report whether a crawl has finished",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().IsDone(cmd.Context(), args[0])
		},
	}
}

func newWatchCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <crawl-id>...",
		Short: "Print attach URLs for the browsers of running crawls",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().Watch(cmd.Context(), args)
		},
	}
}

func newAddURLsCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-urls <crawl-id> <url>...",
		Short: "Queue more URLs on a crawl",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app().AddURLs(cmd.Context(), args[0], args[1:])
		},
	}
}

func newConfigCmd(app func() *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show current configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return app().ShowConfig()
			},
		},
		&cobra.Command{
			Use:   "set <section.key=value>",
			Short: "Set a config value",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				a := app()
				if err := a.SetConfig(args[0]); err != nil {
					return err
				}
				a.info("Configuration updated successfully\n")
				return nil
			},
		},
	)
	return cmd
}

func newTUICmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive crawl manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app().RunTUI(cmd.Context())
		},
	}
}
