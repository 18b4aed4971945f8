package cmd

import (
	"fmt"

	"github.com/hoppxi/backlighter/pkg/brightnessinfo"
	"github.com/spf13/cobra"
)

func newInfoCmd(a *app) *cobra.Command {
	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the selected device, its levels and type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := classFromFlags(cmd)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")

			info, err := brightnessinfo.GetDeviceInfo(a.ctrl, class)
			if err != nil {
				return err
			}
			data, err := brightnessinfo.Marshal(info, format)
			if err != nil {
				return &usageError{msg: err.Error()}
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}

	infoCmd.Flags().BoolP("backlight", "b", false, "screen backlight (default)")
	infoCmd.Flags().BoolP("keylight", "k", false, "keyboard backlight")
	infoCmd.Flags().StringP("format", "f", "json", "output format: json or yaml")
	return infoCmd
}
