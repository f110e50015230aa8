package transcribe

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stt-bridge/cmd/sttbridge/cmd/common"
)

// NewCmd creates the transcribe command
func NewCmd(opts *common.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "transcribe <file>...",
		Short: "Transcribe the given files with the same output as the stdin bridge",
		Long: `Transcribe the given files in order and exit.

Output and diagnostics are identical to the stdin bridge, which makes this
command handy for checking an engine setup against a few sample files.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			in := strings.NewReader(strings.Join(args, "\n") + "\n")
			return common.RunBridge(ctx, cfg, in, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}
