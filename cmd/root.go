package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/MakeNowJust/heredoc/v2"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gabrielfornes/memex/internal/app"
	"github.com/gabrielfornes/memex/internal/catalog"
	"github.com/gabrielfornes/memex/internal/config"
	"github.com/gabrielfornes/memex/internal/logging"
	"github.com/gabrielfornes/memex/internal/router"
	"github.com/gabrielfornes/memex/internal/tui"
)

// rootOptions carries the persistent flags and, after PersistentPreRunE,
// the resolved config to every subcommand.
type rootOptions struct {
	cfgFile string
	view    string

	v   *viper.Viper
	cfg config.Config
}

// New builds the memex command tree.
func New() *cobra.Command {
	o := &rootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "memex",
		Short: "Browse a memex catalog of cached pages from the terminal.",
		Long: heredoc.Doc(`
			memex talks to a catalog service holding cached notes and pages.

			Without a subcommand it opens the interactive gallery. The entries and
			tags subcommands print the same listings as tables.
		`),
		Example: heredoc.Doc(`
			memex --server http://localhost:8080
			memex --view settings
		`),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return o.load()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return o.runTUI(cmd.Context())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&o.cfgFile, "config", "", "config file (default is $HOME/.memex.yaml)")
	flags.String("server", "", "catalog service address")
	flags.String("loglevel", "", "log level: debug, info, warn, error")
	flags.String("logfile", "", "log file used while the TUI runs (default is $HOME/.memex/memex.log)")
	_ = o.v.BindPFlag("server", flags.Lookup("server"))
	_ = o.v.BindPFlag("log.level", flags.Lookup("loglevel"))
	_ = o.v.BindPFlag("log.file", flags.Lookup("logfile"))

	cmd.Flags().StringVar(&o.view, "view", "gallery", "view to open: gallery, detail, create, space, queue or settings")

	cmd.AddCommand(newEntriesCmd(o), newTagsCmd(o), newVersionCmd())
	return cmd
}

// Execute runs the command tree and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := New().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func (o *rootOptions) load() error {
	if err := config.Init(o.v, o.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(o.v)
	if err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return err
	}
	o.cfg = cfg
	logging.Log.WithFields(logrus.Fields{
		"config": o.v.ConfigFileUsed(),
		"server": cfg.Server,
		"policy": cfg.Policy,
	}).Debug("config loaded")
	return nil
}

func (o *rootOptions) client() (*catalog.Client, error) {
	return catalog.New(catalog.Options{
		BaseURL:  o.cfg.Server,
		Timeout:  o.cfg.Timeout,
		RetryMax: o.cfg.RetryMax,
		Log:      logrus.NewEntry(logging.Log),
	})
}

func (o *rootOptions) runTUI(ctx context.Context) error {
	path := o.cfg.LogFile
	if path == "" {
		var err error
		if path, err = config.DefaultLogFile(); err != nil {
			return err
		}
	}
	closer, err := logging.ToFile(path)
	if err != nil {
		return err
	}
	defer closer.Close()

	client, err := o.client()
	if err != nil {
		return err
	}

	view, ok := router.Parse(o.view)
	if !ok {
		logging.Log.WithField("view", o.view).Warn("unknown view, opening the gallery")
	}
	state := app.Reduce(app.New(o.cfg.AppOptions()), app.ViewSelected{View: view}).State

	model := tui.NewModel(ctx, client, state, tui.Options{
		Server: client.BaseURL(),
		Log:    logrus.NewEntry(logging.Log),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running memex: %w", err)
	}
	return nil
}
