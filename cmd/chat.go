package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversation",
	Long: `Chat starts an interactive conversation. Follow-up questions are
understood in the context of earlier turns: "how do I configure it?" after
a question about attestation asks about configuring attestation.

Type "exit" or press Ctrl-D to leave.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.Sessions.Create()
	fmt.Println("docchat - ask about your documentation (type \"exit\" to quit)")

	reader := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Println()
				return nil
			}
			return fmt.Errorf("read input: %w", err)
		}

		question := strings.TrimSpace(line)
		switch question {
		case "":
			continue
		case "exit", "quit":
			return nil
		}

		answer, err := s.Send(ctx, question)
		if err != nil {
			// The turn failed but the conversation is intact; the same
			// question can simply be asked again.
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}

		fmt.Printf("\n%s\n", answer.Text)
		printSources(answer.Sources)
	}
}
