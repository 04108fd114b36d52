package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

var (
	chatSessionFlag string
	chatUserFlag    string
)

func init() {
	chatCmd.Flags().StringVar(&chatSessionFlag, "session", "", "session ID to continue (a new one is minted when omitted)")
	chatCmd.Flags().StringVar(&chatUserFlag, "user", "local", "acting user ID")
	rootCmd.AddCommand(chatCmd)
}

var chatCmd = &cobra.Command{
	Use:   "chat <message...>",
	Short: "Send one message and print the assistant's reply",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	sessionID := types.NewSessionID()
	if chatSessionFlag != "" {
		sessionID, err = types.ParseSessionID(chatSessionFlag)
		if err != nil {
			return fmt.Errorf("invalid session id: %w", err)
		}
	}

	ctx := context.Background()
	view := a.pipeline.Open(ctx, sessionID, types.UserID(chatUserFlag))
	defer view.Close()

	if snap := view.Snapshot(); snap.LoadError != "" {
		return fmt.Errorf("%s", snap.LoadError)
	}

	if err := view.Send(ctx, strings.Join(args, " "), nil); err != nil {
		return err
	}
	if !view.WaitIdle(2 * time.Minute) {
		return fmt.Errorf("timed out waiting for a reply")
	}

	snap := view.Snapshot()
	if snap.Error != "" {
		return fmt.Errorf("%s", snap.Error)
	}

	fmt.Printf("session: %s\n", sessionID)
	printTranscript(snap.Messages)
	return nil
}
