package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/postframe/postframe/pkg/integrations/imagegen"
)

// backgroundOpts holds the command-line flags for the background command.
type backgroundOpts struct {
	output  string // output file path, empty for bg-<uuid>.png
	width   int    // image width, 0 for the canvas default
	height  int    // image height, 0 for the canvas default
	seed    int64  // generation seed passed to the service
	refresh bool   // bypass the cached result for this prompt
	noCache bool   // bypass all caches
}

// backgroundCommand creates the background command. It asks the
// generation collaborator for a backdrop image matching a prompt. A
// missing credential is reported before any network traffic.
func (c *CLI) backgroundCommand() *cobra.Command {
	var opts backgroundOpts

	cmd := &cobra.Command{
		Use:   "background <prompt>",
		Short: "Generate a background image from a text prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runBackground(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default bg-<id>.png)")
	cmd.Flags().IntVar(&opts.width, "width", 0, fmt.Sprintf("image width (default %d)", imagegen.DefaultWidth))
	cmd.Flags().IntVar(&opts.height, "height", 0, fmt.Sprintf("image height (default %d)", imagegen.DefaultHeight))
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "generation seed")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "bypass the cached result for this prompt")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass all caches")

	return cmd
}

func (c *CLI) runBackground(ctx context.Context, prompt string, opts *backgroundOpts) error {
	client, err := c.artClient(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer client.Close()

	spin := newSpinnerWithContext(ctx, "Generating background...")
	spin.Start()

	img, err := client.Generate(ctx, imagegen.Request{
		Prompt: prompt,
		Width:  opts.width,
		Height: opts.height,
		Seed:   opts.seed,
	}, opts.refresh)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return context.Canceled
		}
		spin.StopWithError(err.Error())
		return err
	}
	spin.Stop()

	outPath := opts.output
	if outPath == "" {
		outPath = fmt.Sprintf("bg-%s.png", uuid.NewString()[:8])
	}
	if err := writePNG(ctx, outPath, img); err != nil {
		return err
	}

	printSuccess("Generated background")
	printFile(outPath)
	printNextStep("Compose with it", fmt.Sprintf("%s compose %s -t \"your caption\"", appName, outPath))
	return nil
}
