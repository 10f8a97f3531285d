package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func (a *App) syncFeed(ctx context.Context) error {
	if _, err := a.requireSession(); err != nil {
		return err
	}
	return a.waitSynced(ctx, a.feed.Changes(), a.feed.Synced, a.feed.Err)
}

func (a *App) feedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "feed",
		Short: "Show the posts with their replies, newest first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.syncFeed(cmd.Context()); err != nil {
				return err
			}

			threads := a.feed.Posts()
			if len(threads) == 0 {
				a.printf("No posts yet.\n")
				return nil
			}
			for _, th := range threads {
				a.printThread(th)
			}
			return nil
		},
	}
}

// readContent takes the text from args, or asks for it when there is none.
func (a *App) readContent(args []string) (string, error) {
	if text := joinArgs(args); text != "" {
		return text, nil
	}
	return GetMultiline(a.reader, "Enter text", a.out)
}

func (a *App) postCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "post [text...]",
		Short: "Post a status update",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.requireSession(); err != nil {
				return err
			}
			content, err := a.readContent(args)
			if err != nil {
				return err
			}

			p, err := a.feed.AddPost(cmd.Context(), content)
			if err != nil {
				return err
			}
			a.printf("Posted %s\n", p.ID)
			return nil
		},
	}
}

func (a *App) replyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reply <post-id> [text...]",
		Short: "Reply to a post",
		Args:  minArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.syncFeed(cmd.Context()); err != nil {
				return err
			}
			content, err := a.readContent(args[1:])
			if err != nil {
				return err
			}

			r, err := a.feed.AddReply(cmd.Context(), args[0], content)
			if err != nil {
				return err
			}
			a.printf("Replied %s\n", r.ID)
			return nil
		},
	}
}

func (a *App) likeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "like <post-id>",
		Short: "Like a post or reply",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.syncFeed(cmd.Context()); err != nil {
				return err
			}

			p, err := a.feed.LikePost(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			a.printf("Liked, %d likes\n", p.Likes)
			return nil
		},
	}
}

func (a *App) deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-post <post-id>",
		Short: "Delete a post and its replies",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.feed.DeletePost(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.printf("Deleted %s\n", args[0])
			return nil
		},
	}
}
