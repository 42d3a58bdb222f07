package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/postframe/postframe/pkg/observability"
	"github.com/postframe/postframe/pkg/pipeline"
)

// composeOpts holds the command-line flags for the compose command.
type composeOpts struct {
	text        string  // caption text
	textFile    string  // read caption text from a file instead
	rewrite     bool    // polish the caption through the rewrite service first
	preset      string  // adaptive, gold, strike or banner
	seed        uint64  // style seed, 0 for a random one
	logo        string  // logo path or URL
	logoWidth   int     // logo target width in px
	logoOpacity float64 // logo opacity, 0 for the default
	logoBlur    float64 // gaussian blur sigma for the logo
	output      string  // output file path
	font        string  // font family, pinned through adaptive styling
	weight      int     // font weight: 400, 500 or 700
	size        float64 // starting font size in px
	noCache     bool    // bypass all caches
	refresh     bool    // refetch remote inputs even when cached
	remember    bool    // persist the styling choices as defaults
}

// composeCommand creates the compose command, the main entry point of
// the tool. The positional argument is the background image; without
// one the caption is set on the fallback gradient.
func (c *CLI) composeCommand() *cobra.Command {
	var opts composeOpts

	cmd := &cobra.Command{
		Use:   "compose [image]",
		Short: "Compose a 960x1200 social image from a photo and caption",
		Long: `Compose renders caption text over a background photo on a fixed
960x1200 canvas. The photo can be a local file or an HTTP(S) URL; with no
photo the caption is set on a built-in gradient. The adaptive preset reads
the photo's tone and picks a matching text treatment; gold, strike and
banner apply fixed recipes.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			background := ""
			if len(args) == 1 {
				background = args[0]
			}
			return c.runCompose(cmd, background, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "caption text")
	cmd.Flags().StringVar(&opts.textFile, "text-file", "", "read caption text from a file")
	cmd.Flags().BoolVar(&opts.rewrite, "rewrite", false, "polish the caption through the caption service first")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "style preset: adaptive (default), gold, strike, banner")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "style seed for reproducible adaptive styling")
	cmd.Flags().StringVar(&opts.logo, "logo", "", "logo image (path or URL), drawn top-right")
	cmd.Flags().IntVar(&opts.logoWidth, "logo-width", 0, "logo width in px")
	cmd.Flags().Float64Var(&opts.logoOpacity, "logo-opacity", 0, "logo opacity in (0, 1]")
	cmd.Flags().Float64Var(&opts.logoBlur, "logo-blur", 0, "gaussian blur sigma for the logo")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default derived from the image name)")
	cmd.Flags().StringVar(&opts.font, "font", "", "font family, kept through adaptive styling")
	cmd.Flags().IntVar(&opts.weight, "weight", 0, "font weight: 400, 500 or 700")
	cmd.Flags().Float64Var(&opts.size, "size", 0, "starting font size in px")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "bypass all caches")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "refetch remote inputs even when cached")
	cmd.Flags().BoolVar(&opts.remember, "remember", false, "save preset, font and logo choices as defaults")

	return cmd
}

func (c *CLI) runCompose(cmd *cobra.Command, background string, opts *composeOpts) error {
	ctx := cmd.Context()

	text, err := resolveText(opts)
	if err != nil {
		return err
	}
	if text == "" && background == "" {
		return fmt.Errorf("nothing to compose: pass an image, --text, or both")
	}

	c.applyPrefs(cmd, opts)

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	message := "Composing..."
	if opts.rewrite && text != "" {
		message = "Rewriting caption..."
	}
	spin := newSpinnerWithContext(ctx, message)
	spin.Start()

	if opts.rewrite && text != "" {
		client, err := c.captionClient(ctx, opts.noCache)
		if err != nil {
			spin.Stop()
			return err
		}
		defer client.Close()

		rewritten, err := client.Rewrite(ctx, text, opts.refresh)
		if err != nil {
			if spin.Cancelled() {
				spin.Stop()
				return context.Canceled
			}
			// Upstream messages pass through untouched, and no image is
			// written for a failed rewrite.
			spin.StopWithError(err.Error())
			return err
		}
		text = rewritten
		spin.SetMessage("Composing...")
	}

	popts := pipeline.Options{
		Text:         text,
		Background:   background,
		Logo:         opts.logo,
		Preset:       opts.preset,
		FontFamily:   opts.font,
		FamilyPinned: opts.font != "",
		FontWeight:   opts.weight,
		FontSize:     opts.size,
		Seed:         opts.seed,
		LogoWidth:    opts.logoWidth,
		LogoOpacity:  opts.logoOpacity,
		LogoBlur:     opts.logoBlur,
		Refresh:      opts.refresh,
	}

	result, err := runner.Execute(ctx, popts)
	if err != nil {
		if spin.Cancelled() {
			spin.Stop()
			return context.Canceled
		}
		spin.StopWithError(fmt.Sprintf("Compose failed: %v", err))
		return err
	}
	spin.Stop()

	outPath := c.outputPath(opts.output, result.Filename)
	if err := writePNG(ctx, outPath, result.PNG); err != nil {
		return err
	}

	printSuccess("Composed %s", filepath.Base(outPath))
	printFile(outPath)
	printComposeStats(result.Preset.String(), len(result.Layout.Lines), result.Layout.FontSize,
		result.CacheInfo.SourceHit || result.CacheInfo.ToneHit)
	if opts.rewrite && text != "" {
		printDetail("Caption: %s", text)
	}
	if result.Layout.Overflow {
		printWarning("Text is wider than the canvas even at the minimum font size")
	}
	if text != "" && !result.TextDrawn {
		printWarning("Caption was not drawn")
	}

	if opts.remember {
		if err := c.rememberCompose(opts); err != nil {
			printWarning("Could not save preferences: %v", err)
		} else {
			printDetail("Preferences saved")
		}
	}
	return nil
}

// resolveText returns the caption text from --text or --text-file.
func resolveText(opts *composeOpts) (string, error) {
	if opts.text != "" && opts.textFile != "" {
		return "", fmt.Errorf("--text and --text-file are mutually exclusive")
	}
	if opts.textFile != "" {
		data, err := os.ReadFile(opts.textFile)
		if err != nil {
			return "", fmt.Errorf("read text file: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return opts.text, nil
}

// applyPrefs fills in saved defaults for flags the user did not set.
func (c *CLI) applyPrefs(cmd *cobra.Command, opts *composeOpts) {
	store, err := c.prefsStore()
	if err != nil {
		return
	}
	saved, err := store.Load()
	if err != nil {
		c.Logger.Debug("preferences unreadable, ignoring", "err", err)
		return
	}

	flags := cmd.Flags()
	if !flags.Changed("preset") && saved.Preset != "" {
		opts.preset = saved.Preset
	}
	if !flags.Changed("font") && saved.FamilyPinned && saved.FontFamily != "" {
		opts.font = saved.FontFamily
	}
	if !flags.Changed("weight") && saved.FontWeight != 0 {
		opts.weight = saved.FontWeight
	}
	if !flags.Changed("logo") && saved.LogoRef != "" {
		opts.logo = saved.LogoRef
	}
	if !flags.Changed("logo-width") && saved.LogoWidth != 0 {
		opts.logoWidth = saved.LogoWidth
	}
	if !flags.Changed("logo-opacity") && saved.LogoOpacity != 0 {
		opts.logoOpacity = saved.LogoOpacity
	}
	if !flags.Changed("logo-blur") && saved.LogoBlur != 0 {
		opts.logoBlur = saved.LogoBlur
	}
}

// rememberCompose persists the effective styling choices.
func (c *CLI) rememberCompose(opts *composeOpts) error {
	store, err := c.prefsStore()
	if err != nil {
		return err
	}
	saved, err := store.Load()
	if err != nil {
		return err
	}
	saved.Preset = opts.preset
	saved.FontFamily = opts.font
	saved.FamilyPinned = opts.font != ""
	saved.FontWeight = opts.weight
	saved.LogoRef = opts.logo
	saved.LogoWidth = opts.logoWidth
	saved.LogoOpacity = opts.logoOpacity
	saved.LogoBlur = opts.logoBlur
	return store.Save(saved)
}

// outputPath decides where the PNG lands: an explicit --output wins,
// then the preferred output directory, then the working directory.
func (c *CLI) outputPath(explicit, filename string) string {
	if explicit != "" {
		return explicit
	}
	if store, err := c.prefsStore(); err == nil {
		if saved, err := store.Load(); err == nil && saved.OutputDir != "" {
			return filepath.Join(saved.OutputDir, filename)
		}
	}
	return filename
}

// writePNG writes the encoded canvas to disk, reporting through the
// export hooks.
func writePNG(ctx context.Context, path string, data []byte) error {
	observability.Compose().OnExportStart(ctx, path)
	start := time.Now()
	err := os.WriteFile(path, data, 0o644)
	observability.Compose().OnExportComplete(ctx, path, len(data), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	loggerFromContext(ctx).Debugf("Wrote %s: %d bytes", path, len(data))
	return nil
}
