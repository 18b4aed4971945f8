package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hoppxi/backlighter/internal/logger"
	"github.com/hoppxi/backlighter/internal/manager"
	"github.com/hoppxi/backlighter/pkg/brightness"
	"github.com/hoppxi/backlighter/pkg/operation"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var Version = "0.2.0"

// showLevel is the value -b and -k take when given without a percentage.
const showLevel = "show"

// usageError marks command line mistakes that are not about the percentage.
type usageError struct{ msg string }

func (e *usageError) Error() string { return e.msg }

// app holds what every command needs once flags and config are resolved.
type app struct {
	progName string
	fs       afero.Fs
	settings manager.Settings
	log      zerolog.Logger
	ctrl     *brightness.Controller

	// request parsed from the root command line
	class     brightness.Class
	requested *int
}

// flagKeys maps flags onto config keys.
var flagKeys = map[string]string{
	"log-level":    "log_level",
	"write-method": "write_method",
	"interval":     "watch_interval",
}

func (a *app) init(cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("config")
	cfg := manager.NewConfig(path)

	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := cfg.Viper().BindPFlag(key, f); err != nil {
				return err
			}
		}
	}

	settings, err := cfg.Load()
	if err != nil {
		return err
	}
	a.settings = settings
	a.log = logger.New(cmd.ErrOrStderr(), settings.LogLevel)
	if used := cfg.Used(); used != "" {
		a.log.Debug().Str("file", used).Msg("loaded config")
	}

	var w brightness.LevelWriter
	if settings.WriteMethod == manager.WriteLogind {
		w = operation.Logind
	}
	a.ctrl = brightness.NewController(a.fs, w, a.log)
	a.ctrl.Roots[brightness.Display] = settings.BacklightRoot
	a.ctrl.Roots[brightness.Keyboard] = settings.KeylightRoot
	return nil
}

func helpText(prog string) string {
	return fmt.Sprintf(`%[1]s -- set the screen or keyboard brightness level for this laptop

Writes to /sys/class -- needs root privileges, or --write-method logind
for the user of the active session.

	%[1]s -b      show backlight percent
	%[1]s -b 43   set backlight percent

	%[1]s -k      show keylight percent
	%[1]s -k 43   set keylight percent

	-b (screen backlight) is assumed if neither -k nor -b is given.`, prog)
}

// NewRootCmd builds the command tree. prog is the name used in help and
// error messages.
func NewRootCmd(prog string) *cobra.Command {
	a := &app{progName: prog, fs: afero.NewOsFs()}

	rootCmd := &cobra.Command{
		Use:           prog + " [-b|-k] [PERCENT]",
		Version:       Version,
		Short:         "Show or set the screen or keyboard brightness level",
		Long:          helpText(prog),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "setup" || cmd.Name() == "help" {
				return nil
			}
			// a bad percentage is reported before the config is read
			if !cmd.HasParent() {
				class, requested, err := parseRequest(cmd, args)
				if err != nil {
					return err
				}
				a.class, a.requested = class, requested
			}
			return a.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.ctrl.Run(a.class, a.requested)
			if err != nil {
				return err
			}

			if out.Set {
				a.log.Info().Str("device", out.Device.Path).Int("percent", out.Percent).Msg("brightness set")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%3d\n", out.Percent)
			return nil
		},
	}

	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{msg: err.Error()}
	})

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default "+manager.DefaultConfigPath()+")")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.String("write-method", "", "how levels are written: sysfs or logind")

	f := rootCmd.Flags()
	f.StringP("backlight", "b", "", "screen backlight, optionally followed by a percentage to set")
	f.StringP("keylight", "k", "", "keyboard backlight, optionally followed by a percentage to set")
	f.Lookup("backlight").NoOptDefVal = showLevel
	f.Lookup("keylight").NoOptDefVal = showLevel

	rootCmd.AddCommand(newInfoCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newSetupCmd(a))

	return rootCmd
}

// parseRequest resolves the device class and the optional percentage. A
// trailing argument wins over a value given to -b or -k.
func parseRequest(cmd *cobra.Command, args []string) (brightness.Class, *int, error) {
	class, err := classFromFlags(cmd)
	if err != nil {
		return 0, nil, err
	}

	value := showLevel
	for _, name := range []string{"backlight", "keylight"} {
		if cmd.Flags().Changed(name) {
			value, _ = cmd.Flags().GetString(name)
		}
	}
	if len(args) == 1 {
		value = args[0]
	}
	if value == showLevel {
		return class, nil, nil
	}

	pct, err := brightness.ParsePercent(value)
	if err != nil {
		return 0, nil, err
	}
	return class, &pct, nil
}

func classFromFlags(cmd *cobra.Command) (brightness.Class, error) {
	b := cmd.Flags().Changed("backlight")
	k := cmd.Flags().Changed("keylight")
	switch {
	case b && k:
		return 0, &usageError{msg: "-b and -k cannot be used together"}
	case k:
		return brightness.Keyboard, nil
	default:
		return brightness.Display, nil
	}
}

// ExitCode maps an error from the command tree to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var u *usageError
	if errors.As(err, &u) {
		return 2
	}
	switch brightness.KindOf(err) {
	case brightness.KindInvalidInput:
		return 2
	case brightness.KindEnvironment:
		return 3
	case brightness.KindNotFound:
		return 4
	case brightness.KindIO:
		return 5
	default:
		return 1
	}
}

func Execute() {
	prog := filepath.Base(os.Args[0])
	rootCmd := NewRootCmd(prog)

	if err := rootCmd.Execute(); err != nil {
		code := ExitCode(err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", prog, err)
		if code == 2 {
			fmt.Fprintln(os.Stderr)
			fmt.Fprint(os.Stderr, rootCmd.UsageString())
		}
		os.Exit(code)
	}
}
