package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/frostholm/marginalia/internal/core/domain"
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage anchored comments",
	Long:  `Add, list, reply to, resolve or delete comments anchored in a document.`,
}

var commentAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Anchor a new comment over a selection",
	RunE:  runCommentAdd,
}

var commentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List comments with their live ranges",
	RunE:  runCommentList,
}

var commentReplyCmd = &cobra.Command{
	Use:   "reply [comment-id]",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentReply,
}

var commentResolveCmd = &cobra.Command{
	Use:   "resolve [comment-id]",
	Short: "Toggle a comment's resolved flag",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentResolve,
}

var commentDeleteCmd = &cobra.Command{
	Use:   "delete [comment-id]",
	Short: "Delete a comment and its markers",
	Args:  cobra.ExactArgs(1),
	RunE:  runCommentDelete,
}

// Flags for comment commands.
var (
	commentMessage string
	commentAuthor  string
	commentFrom    int
	commentTo      int
)

func init() {
	commentAddCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "Comment text (required)")
	commentAddCmd.Flags().StringVarP(&commentAuthor, "author", "a", "", "Comment author (defaults to config)")
	commentAddCmd.Flags().IntVar(&commentFrom, "from", 0, "Selection start position")
	commentAddCmd.Flags().IntVar(&commentTo, "to", 0, "Selection end position")
	_ = commentAddCmd.MarkFlagRequired("message")

	commentReplyCmd.Flags().StringVarP(&commentMessage, "message", "m", "", "Reply text (required)")
	commentReplyCmd.Flags().StringVarP(&commentAuthor, "author", "a", "", "Reply author (defaults to config)")
	_ = commentReplyCmd.MarkFlagRequired("message")

	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentListCmd)
	commentCmd.AddCommand(commentReplyCmd)
	commentCmd.AddCommand(commentResolveCmd)
	commentCmd.AddCommand(commentDeleteCmd)
	rootCmd.AddCommand(commentCmd)
}

// author returns the effective author: flag, then config.
func author() string {
	if commentAuthor != "" {
		return commentAuthor
	}
	return configStore.Config().Author
}

func runCommentAdd(cmd *cobra.Command, _ []string) error {
	strategy, err := domain.ParseAnchorType(strategyName())
	if err != nil {
		return err
	}

	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := session.Select(commentFrom, commentTo); err != nil {
		return err
	}
	c, err := session.AddComment(cmd.Context(), author(), commentMessage, strategy)
	if errors.Is(err, domain.ErrEmptySelection) {
		return fmt.Errorf("select a non-empty range first (--from/--to)")
	}
	if err != nil {
		return err
	}

	// Offset and embedded-span anchors put a marker in the document.
	if strategy != domain.AnchorNodePath {
		if err := saveDocument(session); err != nil {
			return fmt.Errorf("saving document: %w", err)
		}
	}

	cmd.Printf("Added %s comment %s over [%d, %d)\n", strategy, c.ID, commentFrom, commentTo)
	return nil
}

func runCommentList(cmd *cobra.Command, _ []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		width = w
	}

	total := 0
	for _, strategy := range domain.AnchorTypes() {
		comments := session.Comments(strategy)
		if len(comments) == 0 {
			continue
		}
		cmd.Printf("%s:\n", strategy)
		for _, c := range comments {
			total++
			status := "attached"
			location := ""
			if span, err := session.ResolveAnchor(c.ID); err == nil {
				location = fmt.Sprintf(" [%d, %d)", span.From, span.To)
			} else {
				status = "unattached"
			}
			if c.Orphaned() {
				status = "orphaned"
			}
			if c.Resolved {
				status += ", resolved"
			}
			cmd.Printf("  %s (%s)%s\n", c.ID, status, location)
			cmd.Printf("    %s: %s\n", c.Author, truncate(c.Text, width-6))
			cmd.Printf("    > %s\n", truncate(c.Anchor.Fragment(), width-8))
			for _, r := range c.Replies {
				cmd.Printf("    %s replied: %s\n", r.Author, truncate(r.Text, width-16))
			}
		}
	}
	if total == 0 {
		cmd.Println("No comments.")
	}
	return nil
}

func runCommentReply(cmd *cobra.Command, args []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := session.Reply(cmd.Context(), args[0], author(), commentMessage); err != nil {
		return err
	}
	cmd.Printf("Replied to %s\n", args[0])
	return nil
}

func runCommentResolve(cmd *cobra.Command, args []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := session.ToggleResolved(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Toggled resolved on %s\n", args[0])
	return nil
}

func runCommentDelete(cmd *cobra.Command, args []string) error {
	session, closeKV, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer closeKV()

	if err := session.DeleteComment(cmd.Context(), args[0]); err != nil {
		return err
	}
	if err := saveDocument(session); err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	cmd.Printf("Deleted %s\n", args[0])
	return nil
}

// truncate shortens s to at most n runes, ellipsized.
func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
