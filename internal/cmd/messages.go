package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/clawteam/internal/errors"
	"github.com/Iron-Ham/clawteam/internal/mailbox"
)

var sendMessageCmd = &cobra.Command{
	Use:   "send-message",
	Short: "Append a message to a team's log",
	Long: `Append an unread message to a team's log. Use --to all to address
every agent.`,
	RunE: run(runSendMessage),
}

var listMessagesCmd = &cobra.Command{
	Use:   "list-messages",
	Short: "List a team's messages",
	RunE:  run(runListMessages),
}

var markReadCmd = &cobra.Command{
	Use:   "mark-read",
	Short: "Mark messages as read",
	RunE:  run(runMarkRead),
}

var watchMessagesCmd = &cobra.Command{
	Use:   "watch-messages",
	Short: "Print new messages as they arrive",
	Long: `Poll a team's log and print each new message as one JSON line until
interrupted.

Example:
  clawteam watch-messages --name alpha --to developer`,
	RunE: runWatchMessages,
}

var (
	msgFrom   string
	msgTo     string
	msgBody   string
	msgUnread bool
	msgLimit  int
	msgIDs    []string
)

func init() {
	sendMessageCmd.Flags().StringVar(&teamName, "name", "", "team name")
	sendMessageCmd.Flags().StringVar(&msgFrom, "from", "", "sender agent id")
	sendMessageCmd.Flags().StringVar(&msgTo, "to", "", "recipient agent id, or all")
	sendMessageCmd.Flags().StringVar(&msgBody, "body", "", "message text")
	_ = sendMessageCmd.MarkFlagRequired("name")
	_ = sendMessageCmd.MarkFlagRequired("from")
	_ = sendMessageCmd.MarkFlagRequired("to")

	listMessagesCmd.Flags().StringVar(&teamName, "name", "", "team name")
	listMessagesCmd.Flags().StringVar(&msgTo, "to", "", "only messages for this agent (and broadcasts)")
	listMessagesCmd.Flags().BoolVar(&msgUnread, "unread", false, "only unread messages")
	listMessagesCmd.Flags().IntVar(&msgLimit, "limit", 0, "keep only the last N messages (0 for all)")
	_ = listMessagesCmd.MarkFlagRequired("name")

	markReadCmd.Flags().StringVar(&teamName, "name", "", "team name")
	markReadCmd.Flags().StringArrayVar(&msgIDs, "id", nil, "message id (repeatable)")
	_ = markReadCmd.MarkFlagRequired("name")
	_ = markReadCmd.MarkFlagRequired("id")

	watchMessagesCmd.Flags().StringVar(&teamName, "name", "", "team name")
	watchMessagesCmd.Flags().StringVar(&msgTo, "to", "", "only messages for this agent (and broadcasts)")
	watchMessagesCmd.Flags().BoolVar(&msgUnread, "unread", false, "only unread messages")
	_ = watchMessagesCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(sendMessageCmd, listMessagesCmd, markReadCmd, watchMessagesCmd)
}

func runSendMessage(ctx context.Context, a *app) (any, error) {
	return a.coord.SendMessage(ctx, teamName, mailbox.SendRequest{From: msgFrom, To: msgTo, Body: msgBody})
}

func runListMessages(ctx context.Context, a *app) (any, error) {
	return a.coord.ListMessages(ctx, teamName, mailbox.Filter{To: msgTo, UnreadOnly: msgUnread, Limit: msgLimit})
}

func runMarkRead(ctx context.Context, a *app) (any, error) {
	return a.coord.MarkRead(ctx, teamName, msgIDs...)
}

func runWatchMessages(cmd *cobra.Command, args []string) error {
	format := outputFormat()
	a, err := newApp(cmd)
	if err != nil {
		return finish(cmd, format, nil, err)
	}
	defer func() { _ = a.close() }()

	out := cmd.OutOrStdout()
	var printErr error
	err = a.coord.WatchMessages(cmd.Context(), teamName, mailbox.Filter{To: msgTo, UnreadOnly: msgUnread}, func(m mailbox.Message) {
		if perr := printLine(out, m); perr != nil && printErr == nil {
			printErr = perr
		}
	})
	if errors.Is(err, context.Canceled) {
		return printErr
	}
	return finish(cmd, format, nil, err)
}
