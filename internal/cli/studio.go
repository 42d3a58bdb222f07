package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/postframe/postframe/pkg/compose"
	"github.com/postframe/postframe/pkg/pipeline"
)

// studioCommand creates the studio command, an interactive editor for
// composing an image: type the caption, cycle presets, re-roll the
// adaptive style, swap the background, save when happy.
func (c *CLI) studioCommand() *cobra.Command {
	var (
		logo    string
		preset  string
		output  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "studio [image]",
		Short: "Compose interactively in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			background := ""
			if len(args) == 1 {
				background = args[0]
			}
			return c.runStudio(cmd.Context(), background, logo, preset, output, noCache)
		},
	}

	cmd.Flags().StringVar(&logo, "logo", "", "logo image (path or URL)")
	cmd.Flags().StringVar(&preset, "preset", "", "starting preset")
	cmd.Flags().StringVarP(&output, "output", "o", "", "save target (default derived from the image name)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "bypass all caches")

	return cmd
}

func (c *CLI) runStudio(ctx context.Context, background, logo, preset, output string, noCache bool) error {
	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	presetIdx := 0
	for i, name := range studioPresets {
		if name == preset {
			presetIdx = i
		}
	}

	m := studioModel{
		ctx:        ctx,
		runner:     runner,
		session:    compose.NewSession(),
		background: background,
		logo:       logo,
		presetIdx:  presetIdx,
		output:     output,
		seed:       1,
		status:     "type a caption, then press enter to render",
	}

	p := tea.NewProgram(m, tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return err
	}

	if fm, ok := final.(studioModel); ok && fm.savedPath != "" {
		printSuccess("Saved %s", fm.savedPath)
	}
	return nil
}

// studioPresets is the preset cycling order for the tab key.
var studioPresets = []string{"adaptive", "gold", "strike", "banner"}

// Studio styles on top of the shared palette.
var (
	studioTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	studioBoxStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim).Padding(0, 1)
	studioCursorStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	studioErrStyle    = lipgloss.NewStyle().Foreground(colorRed)
	studioBusyStyle   = lipgloss.NewStyle().Foreground(colorYellow)
	studioHelpStyle   = lipgloss.NewStyle().Foreground(colorDim)
)

// inputTarget selects which field typed characters edit.
type inputTarget int

const (
	editCaption inputTarget = iota
	editBackground
)

// studioModel is the bubbletea model for the interactive editor.
type studioModel struct {
	ctx     context.Context
	runner  *pipeline.Runner
	session *compose.Session

	text       string
	background string
	pendingBG  string // background path being typed in editBackground mode
	logo       string
	presetIdx  int
	seed       uint64
	output     string
	target     inputTarget

	// renderGen tags render requests so only the newest completion is
	// shown; earlier passes finish but their results are dropped.
	renderGen uint64
	busy      bool

	toneLabel string
	lastPNG   []byte
	lastName  string
	status    string
	statusErr bool
	savedPath string
}

// Messages carried back from async work.
type renderDoneMsg struct {
	gen    uint64
	result *pipeline.Result
	err    error
}

type toneDoneMsg struct {
	gen     uint64
	tone    compose.ImageTone
	derived compose.DerivedStyle
	err     error
}

type savedMsg struct {
	path string
	err  error
}

func (m studioModel) Init() tea.Cmd {
	if m.background != "" {
		return m.analyzeCmd()
	}
	return nil
}

func (m studioModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case renderDoneMsg:
		// A newer request supersedes this pass; drop it silently.
		if msg.gen != m.renderGen {
			return m, nil
		}
		m.busy = false
		if msg.err != nil {
			m.status = fmt.Sprintf("render failed: %v", msg.err)
			m.statusErr = true
			return m, nil
		}
		m.lastPNG = msg.result.PNG
		m.lastName = msg.result.Filename
		m.statusErr = false
		m.status = fmt.Sprintf("rendered %s, %d lines at %.0fpx (ctrl+s to save)",
			msg.result.Preset, len(msg.result.Layout.Lines), msg.result.Layout.FontSize)
		if msg.result.Layout.Overflow {
			m.status += " - text overflows"
		}
		return m, nil

	case toneDoneMsg:
		if msg.err != nil {
			return m, nil
		}
		// Stale generations leave the session untouched.
		if m.session.CommitTone(msg.gen, msg.tone, msg.derived) {
			m.toneLabel = toneLabel(msg.tone)
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("save failed: %v", msg.err)
			m.statusErr = true
			return m, nil
		}
		m.savedPath = msg.path
		m.statusErr = false
		m.status = "saved " + msg.path
		return m, nil
	}
	return m, nil
}

func (m studioModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		if m.target == editBackground {
			m.target = editCaption
			m.pendingBG = ""
			return m, nil
		}
		return m, tea.Quit

	case "enter":
		if m.target == editBackground {
			m.background = strings.TrimSpace(m.pendingBG)
			m.pendingBG = ""
			m.target = editCaption
			m.toneLabel = ""
			next, render := m.startRender()
			cmds := []tea.Cmd{render}
			if next.background != "" {
				cmds = append(cmds, next.analyzeCmd())
			}
			return next, tea.Batch(cmds...)
		}
		next, render := m.startRender()
		return next, render

	case "tab":
		m.presetIdx = (m.presetIdx + 1) % len(studioPresets)
		next, render := m.startRender()
		return next, render

	case "ctrl+r":
		m.seed++
		next, render := m.startRender()
		return next, render

	case "ctrl+b":
		m.target = editBackground
		m.pendingBG = m.background
		return m, nil

	case "ctrl+s":
		if m.lastPNG == nil {
			m.status = "nothing rendered yet"
			m.statusErr = true
			return m, nil
		}
		return m, m.saveCmd()

	case "backspace":
		if m.target == editBackground {
			if len(m.pendingBG) > 0 {
				m.pendingBG = trimLastRune(m.pendingBG)
			}
		} else if len(m.text) > 0 {
			m.text = trimLastRune(m.text)
		}
		return m, nil

	default:
		if msg.Type == tea.KeyRunes || msg.Type == tea.KeySpace {
			s := string(msg.Runes)
			if msg.Type == tea.KeySpace {
				s = " "
			}
			if m.target == editBackground {
				m.pendingBG += s
			} else {
				m.text += s
			}
		}
		return m, nil
	}
}

// startRender marks a new render pass and returns the command that
// runs it. Each trigger is an independent pass; renderGen makes the
// newest one win.
func (m studioModel) startRender() (studioModel, tea.Cmd) {
	m.renderGen++
	m.busy = true
	gen := m.renderGen

	opts := pipeline.Options{
		Text:       m.text,
		Background: m.background,
		Logo:       m.logo,
		Preset:     studioPresets[m.presetIdx],
		Seed:       m.seed,
		Logger:     m.runner.Logger,
	}
	ctx, runner := m.ctx, m.runner

	return m, func() tea.Msg {
		result, err := runner.Execute(ctx, opts)
		return renderDoneMsg{gen: gen, result: result, err: err}
	}
}

// analyzeCmd starts tone analysis for the current background. The
// session generation taken here travels with the result so a commit
// after another background swap is discarded.
func (m studioModel) analyzeCmd() tea.Cmd {
	gen := m.session.NextGeneration()
	ref := m.background
	seed := m.seed
	ctx, runner := m.ctx, m.runner

	return func() tea.Msg {
		src, err := runner.Loader.Load(ctx, ref)
		if err != nil {
			return toneDoneMsg{gen: gen, err: err}
		}
		tone, err := runner.Analyze(ctx, src.Image, src.Hash, false)
		if err != nil {
			return toneDoneMsg{gen: gen, err: err}
		}
		derived := compose.NewPicker(seed).Derive(tone)
		return toneDoneMsg{gen: gen, tone: tone, derived: derived}
	}
}

// saveCmd writes the most recent render to the save target.
func (m studioModel) saveCmd() tea.Cmd {
	path := m.output
	if path == "" {
		path = m.lastName
	}
	data := m.lastPNG
	ctx := m.ctx

	return func() tea.Msg {
		err := writePNG(ctx, path, data)
		return savedMsg{path: path, err: err}
	}
}

func (m studioModel) View() string {
	var b strings.Builder

	b.WriteString(studioTitleStyle.Render("postframe studio"))
	b.WriteString("\n\n")

	if m.target == editBackground {
		b.WriteString(StyleDim.Render("background: "))
		b.WriteString(m.pendingBG)
		b.WriteString(studioCursorStyle.Render("_"))
		b.WriteString("\n\n")
	}

	caption := m.text
	if m.target == editCaption {
		caption += studioCursorStyle.Render("_")
	}
	b.WriteString(studioBoxStyle.Width(64).Render(caption))
	b.WriteString("\n\n")

	b.WriteString(m.detailsTable())
	b.WriteString("\n")

	switch {
	case m.busy:
		b.WriteString(studioBusyStyle.Render("rendering..."))
	case m.statusErr:
		b.WriteString(studioErrStyle.Render(m.status))
	default:
		b.WriteString(StyleDim.Render(m.status))
	}
	b.WriteString("\n\n")

	b.WriteString(studioHelpStyle.Render(
		"enter render  tab preset  ctrl+r re-roll  ctrl+b background  ctrl+s save  esc quit"))
	return b.String()
}

// detailsTable summarizes the current composition settings.
func (m studioModel) detailsTable() string {
	background := m.background
	if background == "" {
		background = "fallback gradient"
	}
	tone := m.toneLabel
	if tone == "" {
		tone = "-"
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(
			[]string{"preset", studioPresets[m.presetIdx]},
			[]string{"background", background},
			[]string{"tone", tone},
			[]string{"seed", fmt.Sprintf("%d", m.seed)},
		).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
			}
			return lipgloss.NewStyle().Foreground(colorWhite).Padding(0, 1)
		})
	return t.Render()
}

// toneLabel renders an analysis result for the status table.
func toneLabel(tone compose.ImageTone) string {
	kind := "light"
	if tone.Dark {
		kind = "dark"
	}
	return fmt.Sprintf("%s (avg %s, accent %s)", kind, tone.Average.Hex(), tone.Accent.Hex())
}

// trimLastRune removes the final rune from s.
func trimLastRune(s string) string {
	r := []rune(s)
	return string(r[:len(r)-1])
}
