package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/dnaweav/tradesman-ai-assist/internal/transcript"
	"github.com/dnaweav/tradesman-ai-assist/internal/types"
)

func init() {
	sessionCmd.AddCommand(sessionListCmd)
	sessionCmd.AddCommand(sessionShowCmd)
	rootCmd.AddCommand(sessionCmd)
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect chat sessions",
}

var sessionListCmd = &cobra.Command{
	Use:   "list [user-id]",
	Short: "List sessions, most recently updated first",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSessionList,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show <session-id>",
	Short: "Print a session's transcript grouped by day",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionShow,
}

func runSessionList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	user := types.UserID("local")
	if len(args) > 0 {
		user = types.UserID(args[0])
	}

	sessions, err := a.store.ListSessions(context.Background(), user)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tVOICE\tUPDATED")
	for _, s := range sessions {
		voice := "off"
		if s.VoiceEnabled {
			voice = "on"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			s.ID, s.Title, s.ChatType, voice, s.UpdatedAt.Format(time.RFC3339))
	}
	return w.Flush()
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	a, err := buildApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := types.ParseSessionID(args[0])
	if err != nil {
		return fmt.Errorf("invalid session id: %w", err)
	}

	ctx := context.Background()
	sess, err := a.store.GetSession(ctx, id)
	if err != nil {
		return err
	}
	msgs, err := a.store.ListMessages(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", sess.Title, sess.ID)
	printTranscript(msgs)
	return nil
}

func printTranscript(msgs []*types.Message) {
	for _, g := range transcript.Group(msgs, time.Now()) {
		fmt.Printf("\n--- %s ---\n", g.Label)
		for _, m := range g.Messages {
			fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format("15:04"), m.Sender, m.Content)
		}
	}
}
