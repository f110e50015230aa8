package check

import (
	"fmt"

	"github.com/spf13/cobra"

	"stt-bridge/cmd/sttbridge/cmd/common"
	"stt-bridge/internal/app"
)

// NewCmd creates the check command
func NewCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the configured model and print what was loaded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}

			b, cleanup, err := app.InitializeBridge(cfg, app.Streams{Stdout: cmd.OutOrStdout(), Stderr: cmd.ErrOrStderr()})
			if err != nil {
				return err
			}
			defer cleanup()

			info := b.Model().Info()
			fmt.Fprintf(cmd.OutOrStdout(), "engine=%s type=%s model=%s %s\n", info.Provider, info.Type, info.ModelPath, info.Config)
			return nil
		},
	}
}
