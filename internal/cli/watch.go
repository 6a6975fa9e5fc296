package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/pipeline"
)

// watchDebounce collapses the burst of events an editor emits on save.
const watchDebounce = 150 * time.Millisecond

// watchCommand creates the watch command re-running the layout on every save.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		f     layoutFlags
		plain bool
	)

	cmd := &cobra.Command{
		Use:   "watch [diagram.json|diagram.yaml]",
		Short: "Re-compute the layout whenever a document changes",
		Long: `Re-compute the layout whenever a document changes.

The document is laid out once at start and again after every save. A save
that arrives while a layout is still running cancels it; only the newest
result is written. Use --plain when stdout is not a terminal.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runWatch(cmd.Context(), args[0], f, plain)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats, comma-separated: json, yaml, dot, svg")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "layout direction: DOWN, UP, RIGHT, LEFT")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().IntVar(&f.timeout, "timeout", defaultTimeout, "timeout in seconds per layout")
	cmd.Flags().BoolVar(&plain, "plain", false, "log results instead of showing the live view")

	return cmd
}

func (c *CLI) runWatch(ctx context.Context, input string, f layoutFlags, plain bool) error {
	opts := c.layoutOptions(f.direction, f.formats)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	// Runs still writing to the cache must finish before the runner closes.
	var inflight sync.WaitGroup
	defer inflight.Wait()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var latest pipeline.Latest
	defer latest.Stop()

	var send func(tea.Msg)
	var program *tea.Program
	if plain {
		logger := loggerFromContext(ctx)
		send = func(msg tea.Msg) { logWatchMsg(logger, input, msg) }
	} else {
		program = tea.NewProgram(newWatchModel(input), tea.WithContext(ctx))
		send = program.Send
	}

	trigger := func() {
		runCtx, ticket := latest.Start(ctx)
		id := uuid.NewString()[:8]
		send(runStartedMsg{id: id})
		inflight.Add(1)
		go func() {
			defer inflight.Done()
			start := time.Now()
			out := c.layoutOne(runCtx, runner, input, opts, f)
			if !latest.Finish(ticket) {
				send(runStaleMsg{id: id})
				return
			}
			send(runDoneMsg{id: id, outcome: out, elapsed: time.Since(start)})
		}()
	}

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watchFile(ctx, input, watchDebounce, trigger)
		cancel()
	}()
	// Program.Send blocks until the program runs.
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		trigger()
	}()

	if plain {
		<-ctx.Done()
	} else if _, err := program.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-watchErr
		return err
	}

	cancel()
	if err := <-watchErr; err != nil {
		return err
	}
	return nil
}

// watchFile calls fn after path changes, once per burst of events. The
// parent directory is watched because editors often replace files instead
// of writing them in place.
func watchFile(ctx context.Context, path string, debounce time.Duration, fn func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch %s: %w", path, err)
		case <-timer.C:
			fn()
		}
	}
}

// =============================================================================
// Messages
// =============================================================================

type runStartedMsg struct{ id string }

type runStaleMsg struct{ id string }

type runDoneMsg struct {
	id      string
	outcome layoutOutcome
	elapsed time.Duration
}

// logWatchMsg reports run messages through the logger in --plain mode.
func logWatchMsg(logger *log.Logger, input string, msg tea.Msg) {
	switch msg := msg.(type) {
	case runStartedMsg:
		logger.Debug("layout started", "run", msg.id, "input", input)
	case runStaleMsg:
		logger.Debug("layout superseded", "run", msg.id)
	case runDoneMsg:
		o := msg.outcome
		switch {
		case o.err != nil:
			logger.Error("layout failed", "run", msg.id, "err", errors.UserMessage(o.err))
		case o.result.Layout.Degraded:
			logger.Warn("layout degraded", "run", msg.id, "files", o.files)
		default:
			logger.Info("layout written",
				"run", msg.id,
				"files", o.files,
				"nodes", o.result.Stats.Nodes,
				"cached", o.result.CacheInfo.LayoutHit,
				"duration", msg.elapsed.Round(time.Millisecond))
		}
	}
}

// =============================================================================
// watchModel - Live status view
// =============================================================================

var (
	watchLabelStyle = lipgloss.NewStyle().Foreground(colorGray).Width(10)
	watchBoxStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
)

// watchModel is the bubbletea model showing the state of the latest run.
type watchModel struct {
	input   string
	running string // id of the run in progress, if any
	runs    int
	stale   int
	last    *runDoneMsg
}

func newWatchModel(input string) watchModel {
	return watchModel{input: input}
}

func (m watchModel) Init() tea.Cmd {
	return nil
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	case runStartedMsg:
		m.running = msg.id
		m.runs++
	case runStaleMsg:
		m.stale++
	case runDoneMsg:
		if msg.id == m.running {
			m.running = ""
		}
		m.last = &msg
	}
	return m, nil
}

func (m watchModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("archlayout watch"))
	b.WriteString("  ")
	b.WriteString(StyleDim.Render(m.input))
	b.WriteString("\n\n")

	var lines []string
	row := func(label, value string) {
		lines = append(lines, watchLabelStyle.Render(label)+" "+value)
	}

	state := StyleSuccess.Render("idle")
	if m.running != "" {
		state = StyleHighlight.Render("laying out") + StyleDim.Render(" ("+m.running+")")
	}
	row("state", state)
	row("runs", StyleNumber.Render(fmt.Sprint(m.runs))+StyleDim.Render(fmt.Sprintf(" · %d superseded", m.stale)))

	if m.last != nil {
		o := m.last.outcome
		switch {
		case o.err != nil:
			row("last", styleIconError.Render(iconError)+" "+errors.UserMessage(o.err))
		case o.result.Layout.Degraded:
			row("last", styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render("engine failed, nodes unpositioned"))
		default:
			s := o.result.Stats
			status := iconFresh
			if o.result.CacheInfo.LayoutHit {
				status = iconCached
			}
			row("last", styleIconSuccess.Render(iconSuccess)+" "+StyleValue.Render(fmt.Sprintf(
				"%d nodes · %d edges · %d layer groups · %s · %s",
				s.Nodes, s.Edges, s.Containers, status, m.last.elapsed.Round(time.Millisecond))))
		}
		for _, file := range o.files {
			row("", StyleDim.Render(iconArrow)+" "+StyleValue.Render(file))
		}
	}

	b.WriteString(watchBoxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("q quit"))
	b.WriteString("\n")
	return b.String()
}
