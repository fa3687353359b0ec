// Command deckctl inspects and exercises the Twitch moderation plugin from a terminal.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"twitchDeck/internal/infrastructure/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "deckctl",
		Short:        "Operator tools for the Twitch moderation Stream Deck plugin",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			logging.Init(level, "text", cmd.ErrOrStderr())
		},
	}
	root.PersistentFlags().Bool("json", false, "print JSON instead of text")
	root.PersistentFlags().String("log-level", "warn", "debug, info, warn or error")

	root.AddCommand(
		newValidateCommand(),
		newScopesCommand(),
		newInspectCommand(),
		newHistoryCommand(),
	)
	return root
}

// printer writes either JSON or plain lines depending on --json.
type printer struct {
	w        io.Writer
	jsonMode bool
}

func newPrinter(cmd *cobra.Command) *printer {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &printer{w: cmd.OutOrStdout(), jsonMode: jsonMode}
}

func (p *printer) JSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(data))
	return err
}

func (p *printer) Linef(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}
