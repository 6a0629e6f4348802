package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"warroom-cli/internal/format"
	"warroom-cli/internal/logging"
	"warroom-cli/internal/model"
	"warroom-cli/internal/store"
	"warroom-cli/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Worksheet  string
	PrettyJSON bool
	Format     string
	Verbose    bool
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "warroom",
		Short:        "Incident intake worksheet (is/is-not analysis) CLI + TUI",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive dashboard for the current worksheet
  warroom

  # Open a new worksheet and make it current
  warroom init checkout-latency

  # Scriptable commands
  warroom set pre.oneLine "Checkout p99 latency above 3s"
  warroom causes add "CDN cache split-brain" --confidence high
  warroom show causes --pretty

  # Hand the incident to the next shift
  warroom handover set summary "Contained; fix rolling out"
  warroom report
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if app.Verbose {
			level = slog.LevelDebug
		}
		logging.Init(level, "text", cmd.ErrOrStderr())
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("WARROOM_DIR", ""), "Path to data root (advanced: overrides ~/.warroom; use for fixtures/tests)")
	cmd.PersistentFlags().StringVar(&app.Worksheet, "worksheet", envOr("WARROOM_WORKSHEET", ""), "Worksheet name (default: the current worksheet from config)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("WARROOM_FORMAT", "json"), "Output format (json|yaml)")
	cmd.PersistentFlags().BoolVar(&app.Verbose, "verbose", false, "Debug logging on stderr")

	cmd.AddCommand(newInitCmd(app))
	cmd.AddCommand(newLsCmd(app))
	cmd.AddCommand(newUseCmd(app))
	cmd.AddCommand(newShowCmd(app))
	cmd.AddCommand(newSetCmd(app))
	cmd.AddCommand(newCommCmd(app))
	cmd.AddCommand(newContainCmd(app))
	cmd.AddCommand(newTableCmd(app))
	cmd.AddCommand(newCausesCmd(app))
	cmd.AddCommand(newStepsCmd(app))
	cmd.AddCommand(newActionsCmd(app))
	cmd.AddCommand(newHandoverCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newImportCmd(app))
	cmd.AddCommand(newTemplatesCmd(app))
	cmd.AddCommand(newHistoryCmd(app))
	cmd.AddCommand(newThemeCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newRenderCmd(app))
	cmd.AddCommand(newWatchCmd(app))
	cmd.AddCommand(newDoctorCmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func runTUI(app *App) error {
	st, s, err := loadState(app)
	if err != nil {
		return err
	}
	return tui.Run(s, st)
}

// resolveWorksheet picks the worksheet name: --worksheet first, then the
// config's currentWorksheet.
func resolveWorksheet(app *App) (string, error) {
	if app.Worksheet != "" {
		return app.Worksheet, nil
	}
	cfg, err := store.LoadConfig()
	if err != nil {
		return "", err
	}
	if cfg.CurrentWorksheet != "" {
		app.Worksheet = cfg.CurrentWorksheet
		return cfg.CurrentWorksheet, nil
	}
	return "", errors.New("no current worksheet; run `warroom init` or `warroom use <name>` (or pass --worksheet)")
}

func currentStore(app *App) (store.Store, error) {
	root, err := store.RootDir(app.Dir)
	if err != nil {
		return store.Store{}, err
	}
	name, err := resolveWorksheet(app)
	if err != nil {
		return store.Store{}, err
	}
	return store.ForWorksheet(root, name)
}

func loadState(app *App) (*model.State, store.Store, error) {
	s, err := currentStore(app)
	if err != nil {
		return nil, store.Store{}, err
	}
	st, err := s.Load()
	if err != nil {
		return nil, s, err
	}
	return st, s, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
