// Command spanrelocate finds where annotated text snippets really occur in a
// reference document and writes them back out as brat standoff records.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/SpanRelocator/core/annotation"
	"github.com/FocuswithJustin/SpanRelocator/core/brat"
	"github.com/FocuswithJustin/SpanRelocator/core/document"
	"github.com/FocuswithJustin/SpanRelocator/core/errors"
	"github.com/FocuswithJustin/SpanRelocator/core/locate"
	"github.com/FocuswithJustin/SpanRelocator/core/relocate"
	"github.com/FocuswithJustin/SpanRelocator/internal/archive"
	"github.com/FocuswithJustin/SpanRelocator/internal/logging"
	"github.com/FocuswithJustin/SpanRelocator/internal/render"
	"github.com/FocuswithJustin/SpanRelocator/internal/validation"
)

const version = "0.1.0"

// Output streams, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
)

// configPaths are the JSON configuration files consulted for flag defaults.
var configPaths = []string{
	"~/.config/spanrelocate/config.json",
	"./.spanrelocate.json",
}

// cliSpec defines the command-line interface for spanrelocate.
type cliSpec struct {
	// Global flags
	LogLevel  string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" enum:"debug,info,warn,error" env:"SPANRELOCATE_LOG_LEVEL"`
	LogFormat string          `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json" env:"SPANRELOCATE_LOG_FORMAT"`
	Config    kong.ConfigFlag `help:"Load flag defaults from a JSON file"`

	Relocate RelocateCmd `cmd:"" help:"Relocate every annotation and write standoff output"`
	Validate ValidateCmd `cmd:"" help:"Check annotation records without searching"`
	Locate   LocateCmd   `cmd:"" help:"Find the best match for one query"`
	Find     FindCmd     `cmd:"" help:"List every non-overlapping match for one query"`
	Segments SegmentsCmd `cmd:"" help:"Print the document partitioned by located annotations as JSON"`
	Render   RenderCmd   `cmd:"" help:"Write a highlighted HTML view of the located annotations"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// CLI holds the parsed command line.
var CLI cliSpec

// MatchFlags configure the locator.
type MatchFlags struct {
	Cutoff       float64 `help:"Minimum similarity score, 0 to 100" default:"60" env:"SPANRELOCATE_CUTOFF"`
	ContextWidth int     `name:"context-width" help:"Characters of context kept on each side of a match" default:"20"`
}

func (f MatchFlags) options() locate.Options {
	return locate.Options{Cutoff: f.Cutoff, ContextWidth: f.ContextWidth}
}

// DocumentFlags configure document loading.
type DocumentFlags struct {
	XPath string `name:"xpath" help:"XPath selecting the text of XML documents"`
}

func (f DocumentFlags) load(path string) (*document.Document, error) {
	return document.Load(path, document.LoadOptions{XPath: f.XPath})
}

// LayoutFlags configure record parsing.
type LayoutFlags struct {
	Layout string `help:"Record columns; optional ones in brackets with an optional default" default:"id entity_type start end text [annotation_type] [context]"`
}

func (f LayoutFlags) layout() (annotation.Layout, error) {
	return annotation.ParseLayout(f.Layout)
}

// readLines reads annotation records, decompressing .xz and .gz files.
func readLines(path string) ([]string, error) {
	if err := validation.ValidatePath(path); err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	r, err := archive.Open(path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	defer r.Close()
	return annotation.ReadLines(r)
}

// writeOutput writes data to path, compressing by extension.
func writeOutput(path string, data []byte) error {
	if err := validation.ValidatePath(path); err != nil {
		return errors.NewIO("write", path, err)
	}
	if err := archive.WriteFile(path, data); err != nil {
		return errors.NewIO("write", path, err)
	}
	return nil
}

// Pipeline carries the inputs shared by commands that run a full relocation.
type Pipeline struct {
	Document    string `arg:"" help:"Reference document (text or XML, optionally .xz or .gz)" type:"existingfile"`
	Annotations string `arg:"" help:"Tab-separated annotation records" type:"existingfile"`
	Workers     int    `help:"Concurrent searches (0 = one per CPU)" default:"0"`

	MatchFlags    `embed:""`
	DocumentFlags `embed:""`
	LayoutFlags   `embed:""`
}

func (p Pipeline) run() (*relocate.Result, error) {
	layout, err := p.layout()
	if err != nil {
		return nil, err
	}
	doc, err := p.load(p.Document)
	if err != nil {
		return nil, err
	}
	lines, err := readLines(p.Annotations)
	if err != nil {
		return nil, err
	}

	res, err := relocate.Run(context.Background(), relocate.Request{
		Document: doc,
		Lines:    lines,
		Layout:   layout,
		Options:  p.options(),
		Workers:  p.Workers,
	})
	if err != nil {
		return nil, err
	}
	for _, e := range res.Errors {
		fmt.Fprintln(stderr, e)
	}
	return res, nil
}

// RelocateCmd runs the full pipeline and writes standoff records.
type RelocateCmd struct {
	Pipeline `embed:""`

	Out       string `help:"Write standoff output here instead of stdout (.xz and .gz are compressed)" type:"path"`
	HTML      string `name:"html" help:"Also write a highlighted HTML view" type:"path"`
	StrictIDs bool   `name:"strict-ids" help:"Refuse to write output in which an id repeats"`
}

func (c *RelocateCmd) Run() error {
	res, err := c.run()
	if err != nil {
		return err
	}

	if dups := brat.CheckUniqueIDs(res.Set); len(dups) > 0 {
		for _, d := range dups {
			fmt.Fprintln(stderr, d)
		}
		if c.StrictIDs {
			return fmt.Errorf("%d duplicate ids, nothing written", len(dups))
		}
	}

	out := brat.Format(res.Set)
	if out != "" {
		out += "\n"
	}
	if c.Out != "" {
		if err := writeOutput(c.Out, []byte(out)); err != nil {
			return err
		}
	} else {
		fmt.Fprint(stdout, out)
	}

	if c.HTML != "" {
		var buf bytes.Buffer
		if err := render.HTML(&buf, res.Document(), res.Set, render.HTMLOptions{}); err != nil {
			return err
		}
		if err := writeOutput(c.HTML, buf.Bytes()); err != nil {
			return err
		}
	}

	fmt.Fprintf(stderr, "run %s: %d located, %d unmatched, %d rejected, %d failed\n",
		res.RunID, res.Located, res.Unmatched, res.Rejected, res.Failed)
	return nil
}

// ValidateCmd reports malformed annotation records.
type ValidateCmd struct {
	Annotations string `arg:"" help:"Tab-separated annotation records" type:"existingfile"`

	LayoutFlags `embed:""`
}

func (c *ValidateCmd) Run() error {
	layout, err := c.layout()
	if err != nil {
		return err
	}
	lines, err := readLines(c.Annotations)
	if err != nil {
		return err
	}

	set, errs := annotation.Parse(lines, layout)
	for _, err := range errs {
		var se *errors.SchemaError
		if errors.As(err, &se) {
			cause := se.Message
			if se.Field != "" {
				cause = se.Field + ": " + cause
			}
			fmt.Fprintf(stdout, "Line %d: %s\n", se.Line, cause)
			continue
		}
		fmt.Fprintln(stdout, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("%d of %d records invalid", len(errs), len(errs)+set.Len())
	}

	fmt.Fprintf(stdout, "All %d records valid\n", set.Len())
	for _, id := range set.DuplicateIDs() {
		fmt.Fprintf(stdout, "warning: id %s used more than once\n", id)
	}
	return nil
}

// LocateCmd finds the best match for one query.
type LocateCmd struct {
	Document string `arg:"" help:"Reference document" type:"existingfile"`
	Query    string `arg:"" help:"Text to find"`

	MatchFlags    `embed:""`
	DocumentFlags `embed:""`
}

func (c *LocateCmd) Run() error {
	doc, err := c.load(c.Document)
	if err != nil {
		return err
	}
	l, err := locate.New(doc, c.options())
	if err != nil {
		return err
	}
	span, err := l.Locate(c.Query)
	if err != nil {
		return err
	}
	if span == nil {
		fmt.Fprintln(stdout, "no match")
		return nil
	}
	printSpan(stdout, *span)
	return nil
}

// FindCmd lists filtered matches for one query.
type FindCmd struct {
	Document string `arg:"" help:"Reference document" type:"existingfile"`
	Query    string `arg:"" help:"Text to find"`
	Limit    int    `help:"Stop after this many matches (0 = all)" default:"0"`

	MatchFlags    `embed:""`
	DocumentFlags `embed:""`
}

func (c *FindCmd) Run() error {
	doc, err := c.load(c.Document)
	if err != nil {
		return err
	}
	l, err := locate.New(doc, c.options())
	if err != nil {
		return err
	}
	seq, err := l.FindFiltered(c.Query)
	if err != nil {
		return err
	}

	n := 0
	for span := range seq {
		if c.Limit > 0 && n == c.Limit {
			break
		}
		printSpan(stdout, span)
		n++
	}
	if n == 0 {
		fmt.Fprintln(stdout, "no match")
	}
	return nil
}

// printSpan writes start, end, score, source range and context separated by tabs.
func printSpan(w io.Writer, s locate.FoundSpan) {
	fmt.Fprintf(w, "%d\t%d\t%.2f\t%d\t%d\t%s\n", s.DestStart, s.DestEnd, s.Score, s.SrcStart, s.SrcEnd, s.Context)
}

// SegmentsCmd prints the composed segments of a relocation run.
type SegmentsCmd struct {
	Pipeline `embed:""`
}

func (c *SegmentsCmd) Run() error {
	res, err := c.run()
	if err != nil {
		return err
	}
	segs, err := res.Segments()
	if err != nil {
		return err
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(segs)
}

// RenderCmd writes the HTML review page.
type RenderCmd struct {
	Pipeline `embed:""`

	Out     string `required:"" help:"Output HTML path" type:"path"`
	Title   string `help:"Page title"`
	Summary bool   `help:"Also print a summary table to stdout"`
}

func (c *RenderCmd) Run() error {
	res, err := c.run()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := render.HTML(&buf, res.Document(), res.Set, render.HTMLOptions{Title: c.Title}); err != nil {
		return err
	}
	if err := writeOutput(c.Out, buf.Bytes()); err != nil {
		return err
	}
	if c.Summary {
		return render.Summary(stdout, res.Set)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "spanrelocate version %s\n", version)
	return nil
}

func newParser(cli *cliSpec) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("spanrelocate"),
		kong.Description("Relocate annotated text snippets within a reference document"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(kong.JSON, configPaths...),
	)
}

func main() {
	parser, err := newParser(&CLI)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	logging.InitLoggerTo(os.Stderr, logging.ParseLevel(CLI.LogLevel), logging.ParseFormat(CLI.LogFormat))

	err = ctx.Run()
	ctx.FatalIfErrorf(err)
}
