package cli

import (
	"encoding/json"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"warroom-cli/internal/logging"
	"warroom-cli/internal/render"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const watchDebounce = 200 * time.Millisecond

func newWatchCmd(app *App) *cobra.Command {
	var (
		ansi  bool
		width int
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream worksheet changes as they are saved",
		Long: `Watch follows the current worksheet and emits one JSON line per save,
which makes it easy to script against ("rebuild the status page whenever
the worksheet changes"). With --ansi it instead redraws the incident
report in place, like a read-only dashboard.

Stops on Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := currentStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if !s.Exists() {
				return writeErr(cmd, errNotFound("worksheet", s.Name()))
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return writeErr(cmd, err)
			}
			defer watcher.Close()
			// Watch the directory, not the file: saves land by rename,
			// which replaces the inode a file watch would be pinned to.
			if err := watcher.Add(s.Dir); err != nil {
				return writeErr(cmd, err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New("watch")
			emit := func() {
				st, err := s.Load()
				if err != nil {
					// A read can race the save; the debounced retry
					// after the next event will see the full file.
					log.Warn("reload failed", "err", err)
					return
				}
				if ansi {
					fmt.Fprint(cmd.OutOrStdout(), "\x1b[2J\x1b[H")
					fmt.Fprintln(cmd.OutOrStdout(), render.ANSI(render.Markdown(st), width, st.Appearance.Theme))
					return
				}
				line, err := json.Marshal(map[string]any{
					"worksheet": s.Name(),
					"savedAt":   st.Meta.SavedAt,
					"oneLine":   st.Pre.OneLine,
					"causes":    len(st.Causes),
					"steps":     len(st.Steps.Items),
				})
				if err != nil {
					return
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(line))
			}

			emit()

			var timer *time.Timer
			fire := make(chan struct{}, 1)
			for {
				select {
				case <-ctx.Done():
					return nil
				case ev, ok := <-watcher.Events:
					if !ok {
						return nil
					}
					if filepath.Base(ev.Name) != filepath.Base(s.SnapshotPath()) {
						continue
					}
					if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Rename) {
						continue
					}
					// One save produces a burst of events (temp file,
					// rename, backup); coalesce them.
					if timer != nil {
						timer.Stop()
					}
					timer = time.AfterFunc(watchDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				case <-fire:
					emit()
				case err, ok := <-watcher.Errors:
					if !ok {
						return nil
					}
					log.Warn("watch error", "err", err)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&ansi, "ansi", false, "Redraw the rendered report on each save")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for --ansi (0 = 80)")
	return cmd
}
