package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hoppxi/backlighter/internal/subscribe"
	"github.com/hoppxi/backlighter/internal/watchers"
	"github.com/hoppxi/backlighter/pkg/brightness"
	"github.com/spf13/cobra"
)

func newWatchCmd(a *app) *cobra.Command {
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the brightness percent every time it changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := classFromFlags(cmd)
			if err != nil {
				return err
			}

			dev, err := a.ctrl.Select(class)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			sources := []<-chan struct{}{
				subscribe.UeventEvents(ctx, class.Subsystem(), dev.Name, a.log),
			}
			if events, err := subscribe.FileEvents(ctx, dev.File(brightness.ControlCurrent), a.log); err == nil {
				sources = append(sources, events)
			} else {
				a.log.Debug().Err(err).Msg("watch: no inotify on level file, polling only")
			}

			a.log.Info().Str("device", dev.Path).Dur("interval", a.settings.WatchInterval).Msg("watching")

			w := &watchers.BrightnessWatcher{
				Accessor: &a.ctrl.Accessor,
				Device:   dev,
				Interval: a.settings.WatchInterval,
				Sources:  sources,
				Report: func(pct int) {
					fmt.Fprintf(cmd.OutOrStdout(), "%3d\n", pct)
				},
				Log: a.log,
			}
			return w.Run(ctx)
		},
	}

	watchCmd.Flags().BoolP("backlight", "b", false, "screen backlight (default)")
	watchCmd.Flags().BoolP("keylight", "k", false, "keyboard backlight")
	watchCmd.Flags().Duration("interval", 0, "polling interval (default from config, 1s)")
	return watchCmd
}
