package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/archlayout/pkg/errors"
	"github.com/matzehuels/archlayout/pkg/pipeline"
)

// layoutFlags holds the flags of the layout command.
type layoutFlags struct {
	output    string
	formats   string
	direction string
	dot       bool
	noCache   bool
	refresh   bool
	timeout   int
	jobs      int
}

// layoutOutcome is the result of laying out one document.
type layoutOutcome struct {
	input  string
	files  []string
	result *pipeline.Result
	err    error
}

// layoutCommand creates the layout command for laying out diagram documents.
func (c *CLI) layoutCommand() *cobra.Command {
	var f layoutFlags

	cmd := &cobra.Command{
		Use:   "layout [diagram.json|diagram.yaml]...",
		Short: "Compute layouts for ArchiMate diagram documents",
		Long: `Compute layouts for ArchiMate diagram documents.

Each document is read from JSON or YAML, its elements are grouped by
ArchiMate layer and nested along composition, aggregation and assignment
relationships, and the result is laid out with Graphviz. The output is
written next to the input as <input>.layout.<format> unless -o is given.

Several documents are laid out concurrently. Results are cached, so
unchanged documents are not laid out again.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args, f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single input only)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatJSON, "output formats, comma-separated: json, yaml, dot, svg")
	cmd.Flags().StringVarP(&f.direction, "direction", "d", "", "layout direction: DOWN, UP, RIGHT, LEFT (default: document or config)")
	cmd.Flags().BoolVar(&f.dot, "dot", false, "also write the Graphviz input as DOT")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached layouts and recompute")
	cmd.Flags().IntVar(&f.timeout, "timeout", defaultTimeout, "timeout in seconds per document")
	cmd.Flags().IntVarP(&f.jobs, "jobs", "j", runtime.GOMAXPROCS(0), "documents laid out concurrently")

	return cmd
}

// runLayout lays out every input and writes the outputs.
func (c *CLI) runLayout(ctx context.Context, inputs []string, f layoutFlags) error {
	if f.output != "" && len(inputs) > 1 {
		return errors.New(errors.ErrCodeInvalidInput, "--output needs exactly one input, got %d", len(inputs))
	}
	if f.jobs < 1 {
		f.jobs = 1
	}

	opts := c.layoutOptions(f.direction, f.formats)
	opts.Refresh = f.refresh
	if f.dot && !containsFormat(opts.Formats, pipeline.FormatDOT) {
		opts.Formats = append(opts.Formats, pipeline.FormatDOT)
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out 0/%d document(s)...", len(inputs)))
	spinner.Start()

	var finished atomic.Int32
	outcomes := make([]layoutOutcome, len(inputs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(f.jobs)
	for i, input := range inputs {
		eg.Go(func() error {
			outcomes[i] = c.layoutOne(egCtx, runner, input, opts, f)
			spinner.SetMessage(fmt.Sprintf("Laying out %d/%d document(s)...", finished.Add(1), len(inputs)))
			return nil
		})
	}
	_ = eg.Wait()
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	failed := 0
	for _, o := range outcomes {
		if o.err != nil {
			failed++
			printError("%s: %s", o.input, errors.UserMessage(o.err))
			logger.Debug("layout failed", "input", o.input, "err", o.err)
			continue
		}
		printLayoutOutcome(o)
	}
	prog.done(fmt.Sprintf("Laid out %d of %d document(s)", len(inputs)-failed, len(inputs)))

	if failed > 0 {
		return fmt.Errorf("%d of %d document(s) failed", failed, len(inputs))
	}
	return nil
}

// layoutOne runs the pipeline for one input under its own timeout.
func (c *CLI) layoutOne(ctx context.Context, runner *pipeline.Runner, input string, opts pipeline.Options, f layoutFlags) layoutOutcome {
	out := layoutOutcome{input: input}

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(f.timeout)*time.Second)
		defer cancel()
	}

	doc, err := pipeline.Load(input)
	if err != nil {
		out.err = err
		return out
	}

	result, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		out.err = err
		return out
	}
	out.result = result

	for _, format := range opts.Formats {
		path := outputPath(input, f.output, format, len(opts.Formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			out.err = fmt.Errorf("write %s: %w", path, err)
			return out
		}
		out.files = append(out.files, path)
	}
	return out
}

// outputPath picks the file for one format. An explicit output is used as is
// when it is the only format; otherwise its extension is replaced.
func outputPath(input, output, format string, formats int) string {
	if output != "" {
		if formats == 1 {
			return output
		}
		return strings.TrimSuffix(output, filepath.Ext(output)) + "." + format
	}
	base := strings.TrimSuffix(input, filepath.Ext(input))
	return base + ".layout." + format
}

func containsFormat(formats []string, format string) bool {
	for _, f := range formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

func printLayoutOutcome(o layoutOutcome) {
	if o.result.Layout.Degraded {
		printWarning("%s: engine failed, nodes are unpositioned", o.input)
	} else {
		printSuccess("%s", o.input)
	}
	for _, file := range o.files {
		printFile(file)
	}
	printStats(o.result.Stats, o.result.CacheInfo.LayoutHit)
}
