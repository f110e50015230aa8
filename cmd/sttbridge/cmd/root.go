package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"stt-bridge/cmd/sttbridge/cmd/check"
	"stt-bridge/cmd/sttbridge/cmd/common"
	"stt-bridge/cmd/sttbridge/cmd/transcribe"
	"stt-bridge/cmd/sttbridge/cmd/version"
)

// NewRootCmd builds the command tree. The root command runs the bridge on
// stdin.
func NewRootCmd() *cobra.Command {
	opts := &common.Options{}

	rootCmd := &cobra.Command{
		Use:   "sttbridge",
		Short: "Transcribe audio files named on stdin, one segment per stdout line",
		Long: `sttbridge loads a speech recognition model once and then reads audio file
paths from stdin, one per line.

- Every recognized segment is written to stdout as one line, flushed immediately
- Failures are written to stderr as "ERROR: <message>" and the next path is read
- Paths that do not exist are skipped silently
- The process exits with 0 when stdin closes and with 1 if the model cannot be loaded`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return common.RunBridge(ctx, cfg, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	opts.AddFlags(rootCmd)
	rootCmd.AddCommand(transcribe.NewCmd(opts))
	rootCmd.AddCommand(check.NewCmd(opts))
	rootCmd.AddCommand(version.Cmd)

	return rootCmd
}

// Execute runs the command line and returns the process exit code.
// This is called by main.main().
func Execute() int {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	rootCmd := NewRootCmd()
	rootCmd.SetArgs(args)
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "ERROR: %s\n", strings.ReplaceAll(err.Error(), "\n", " "))
		return 1
	}
	return 0
}
