package main

import (
	"context"
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sengtan/utm-campus-chatbot/internal/model"
)

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <message>",
		Short: "Classify one message and print the assistant reply as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()
			a.assistant.RefreshContext(ctx)

			message := strings.Join(args, " ")
			intent := a.assistant.ClassifyIntent(ctx, message)
			reply := a.assistant.GenerateResponse(ctx, message, intent, nil)

			return writeJSON(cmd.OutOrStdout(), model.ChatResponse{
				Response:   reply,
				Intent:     intent.Intent,
				Entities:   intent.Entities,
				Confidence: intent.Confidence,
			})
		},
	}
}

func newClassifyIssueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify-issue <description>",
		Short: "Classify one issue description and print the result as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			a, err := bootstrap()
			if err != nil {
				return err
			}
			defer a.close()

			return writeJSON(cmd.OutOrStdout(), a.assistant.ClassifyIssue(ctx, strings.Join(args, " ")))
		},
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
