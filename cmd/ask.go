package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/superlawyer/hrchat/internal/app"
	"github.com/superlawyer/hrchat/internal/chat"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question and print the answer",
	Long: `Ask runs one question/answer cycle without the interactive
interface: the answer streams to stdout followed by its sources.
Useful for scripting and for piping answers into other tools.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}

	input := chat.Input{
		Question:  strings.Join(args, " "),
		SessionID: a.Sessions.Active(),
	}

	var output chat.Output
	for value, err := range a.Flow.Stream(ctx, input) {
		if err != nil {
			return fmt.Errorf("answering question: %w", err)
		}
		if value.Done {
			output = value.Output
			break
		}
		fmt.Print(value.Stream.Text)
	}
	fmt.Println()

	if output.Status == chat.StatusCancelled.String() {
		fmt.Fprintln(os.Stderr, "(interrupted)")
		return nil
	}

	if len(output.Sources) > 0 {
		fmt.Println()
		fmt.Println("Sources: " + strings.Join(output.Sources, ", "))
	}
	return nil
}
