package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	launcher "github.com/modsmith/launcher"
	"github.com/modsmith/launcher/internal/ctxlog"
	"github.com/modsmith/launcher/progress"
	"github.com/modsmith/launcher/tracing"
)

// newRunCmd creates the run command executing one full orchestrated run.
func newRunCmd() *cobra.Command {
	var nickname string
	var installRoot string
	var traceFile string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Install or update the configured target and launch the game",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogger()
			if traceFile != "" {
				if err := tracing.Init("launcher", version, traceFile); err != nil {
					logger.Warn("tracing disabled", "error", err)
				}
			}

			config := launcher.DefaultConfig()
			if installRoot != "" {
				config.InstallRoot = installRoot
			}

			updates := make(chan progress.Update, 64)
			service := launcher.New(
				launcher.WithConfig(config),
				launcher.WithSink(func(update progress.Update) { updates <- update }),
			)
			runtime := service.Runtime()

			ctx, cancel := context.WithCancel(ctxlog.WithLogger(cmd.Context(), logger))
			defer cancel()

			if nickname == "" {
				nickname = runtime.Settings().Load(ctx).Nickname
			}

			// The run executes on a single background worker; updates reach
			// the presentation layer in emission order through the channel.
			result := make(chan error, 1)
			go func() {
				defer close(updates)
				result <- runtime.Run(ctx, nickname)
			}()

			if isatty.IsTerminal(os.Stdout.Fd()) {
				viewErr := runView(updates, cancel)
				// the worker may still be emitting after the view exits;
				// keep the channel drained so it can reach its next
				// cancellation checkpoint
				drainUpdates(updates)
				if viewErr != nil {
					return viewErr
				}
			} else {
				printUpdates(updates)
			}
			return <-result
		},
	}

	cmd.Flags().StringVarP(&nickname, "nickname", "n", "", "player display name (default: last saved)")
	cmd.Flags().StringVar(&installRoot, "root", "", "installation root directory")
	cmd.Flags().StringVar(&traceFile, "trace", "", "write stage trace spans to this file")
	return cmd
}

// drainUpdates discards remaining updates until the worker closes the channel.
func drainUpdates(updates <-chan progress.Update) {
	for range updates {
	}
}

// printUpdates renders updates as plain lines for non-interactive output.
func printUpdates(updates <-chan progress.Update) {
	for update := range updates {
		prefix := ""
		if update.Err {
			prefix = "ERROR: "
		}
		if update.Percent != nil {
			fmt.Printf("[%5.1f%%] %s%s\n", *update.Percent, prefix, update.Message)
			continue
		}
		fmt.Printf("        %s%s\n", prefix, update.Message)
	}
}
