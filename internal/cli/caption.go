package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// captionCommand creates the caption command. It sends text to the
// rewrite collaborator and prints the polished caption. Image state is
// never touched; a failed rewrite leaves nothing behind.
func (c *CLI) captionCommand() *cobra.Command {
	var (
		refresh bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "caption <text>",
		Short: "Rewrite caption text through the caption service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCaption(cmd.Context(), args[0], refresh, noCache)
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cached rewrite for this text")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass all caches")

	return cmd
}

func (c *CLI) runCaption(ctx context.Context, text string, refresh, noCache bool) error {
	client, err := c.captionClient(ctx, noCache)
	if err != nil {
		return err
	}
	defer client.Close()

	spin := newSpinnerWithContext(ctx, "Rewriting caption...")
	spin.Start()

	rewritten, err := client.Rewrite(ctx, text, refresh)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return context.Canceled
		}
		// Upstream messages pass through untouched.
		spin.StopWithError(err.Error())
		return err
	}
	spin.Stop()

	fmt.Println(rewritten)
	return nil
}
