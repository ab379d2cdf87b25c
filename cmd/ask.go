package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a single question",
	Long: `Ask answers one question against the ingested documentation and prints
the answer with its sources. For follow-up questions use the chat command,
which keeps conversation context.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("question is empty")
	}

	answer, err := a.Retriever.Answer(ctx, question, nil)
	if err != nil {
		return fmt.Errorf("answer question: %w", err)
	}

	fmt.Println(answer.Text)
	printSources(answer.Sources)
	return nil
}

func printSources(sources []string) {
	if len(sources) == 0 {
		return
	}
	fmt.Println("\nSources:")
	for _, src := range sources {
		fmt.Printf("  %s\n", src)
	}
}
