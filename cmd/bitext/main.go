// Command bitext is the CLI tool for the bitext corpus library.
// It converts between corpus formats, reports corpus metadata, and inspects
// TMX files.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"

	"github.com/bitextio/bitext/core/corpus"
	"github.com/bitextio/bitext/core/jtm"
	"github.com/bitextio/bitext/core/parallel"
	"github.com/bitextio/bitext/core/sqlite"
	"github.com/bitextio/bitext/core/tmx"
	"github.com/bitextio/bitext/core/xml"
	"github.com/bitextio/bitext/internal/fileutil"
	"github.com/bitextio/bitext/internal/logging"
)

const version = "0.1.0"

// CLI defines the command-line interface for bitext.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" env:"BITEXT_LOG_LEVEL" default:"warn" enum:"debug,info,warn,error" help:"Log level"`
	LogFormat string `name:"log-format" env:"BITEXT_LOG_FORMAT" default:"text" enum:"text,json" help:"Log format"`

	// Command groups (noun-first organization)
	Corpus  CorpusGroup `cmd:"" help:"Corpus operations (info, convert, head)"`
	Tmx     TmxGroup    `cmd:"" help:"TMX inspection and validation"`
	Hash    HashCmd     `cmd:"" help:"Print the BLAKE3 checksum of a corpus file"`
	Version VersionCmd  `cmd:"" help:"Print version information"`
}

// CorpusGroup holds corpus subcommands.
type CorpusGroup struct {
	Info    InfoCmd    `cmd:"" help:"Show corpus name, language directions, size and properties"`
	Convert ConvertCmd `cmd:"" help:"Convert a corpus between formats"`
	Head    HeadCmd    `cmd:"" help:"Print the first units of a corpus"`
}

// TmxGroup holds TMX subcommands.
type TmxGroup struct {
	Validate TmxValidateCmd `cmd:"" help:"Check a TMX file for XML well-formedness"`
	Inspect  TmxInspectCmd  `cmd:"" help:"Run an XPath query against a TMX file"`
}

// openCorpus builds a Corpus over a single path or a parallel pair.
func openCorpus(path, pairTarget string) (corpus.Corpus, error) {
	if pairTarget != "" {
		return parallel.New(path, pairTarget)
	}
	return corpus.Open(path)
}

// InfoCmd implements "bitext corpus info".
type InfoCmd struct {
	Path   string `arg:"" help:"Corpus file path" type:"path"`
	Target string `name:"target" optional:"" help:"Target-side file for a parallel text pair" type:"path"`
}

// Run executes the info command.
func (c *InfoCmd) Run() error {
	cp, err := openCorpus(c.Path, c.Target)
	if err != nil {
		return err
	}

	fmt.Printf("name: %s\n", cp.Name())

	if jc, ok := cp.(*jtm.Corpus); ok {
		fmt.Printf("datasource: %s\n", jc.DatasourceKey())
		fmt.Printf("id: %s\n", jc.ID())
	}

	languages, err := cp.Languages()
	if err != nil {
		return err
	}
	total, err := cp.Len()
	if err != nil {
		return err
	}
	fmt.Printf("units: %d\n", total)
	for _, d := range languages {
		fmt.Printf("direction: %s\n", d)
	}

	props, err := cp.Properties()
	if err != nil {
		return err
	}
	if props.Size() > 0 {
		for _, key := range props.Keys() {
			for _, value := range props.GetAll(key) {
				fmt.Printf("property: %s=%s\n", key, value)
			}
		}
	}
	return nil
}

// ConvertCmd implements "bitext corpus convert".
type ConvertCmd struct {
	Input     string `arg:"" help:"Input corpus path" type:"path"`
	Output    string `arg:"" help:"Output corpus path" type:"path"`
	InTarget  string `name:"in-target" optional:"" help:"Target-side input file for a parallel pair" type:"path"`
	OutTarget string `name:"out-target" optional:"" help:"Target-side output file for a parallel pair" type:"path"`
	AssignIDs bool   `name:"assign-ids" help:"Assign fresh UUIDs to units without a tuid (JTM output only)"`
}

// openOutputWriter builds a writer for the output path, seeding it with the
// input corpus properties so provenance metadata survives conversion.
func (c *ConvertCmd) openOutputWriter(props *corpus.Properties) (corpus.Writer, error) {
	if c.OutTarget != "" {
		pc, err := parallel.New(c.Output, c.OutTarget)
		if err != nil {
			return nil, err
		}
		return pc.OpenWriter()
	}

	switch {
	case jtm.Detect(c.Output):
		opts := []jtm.WriterOption{jtm.WithProperties(props)}
		if c.AssignIDs {
			opts = append(opts, jtm.WithAssignedIDs())
		}
		w := jtm.NewWriter(c.Output, opts...)
		if err := w.Open(); err != nil {
			return nil, err
		}
		return w, nil
	case tmx.Detect(c.Output):
		w := tmx.NewWriter(c.Output, tmx.WithHeaderProperties(props))
		if err := w.Open(); err != nil {
			return nil, err
		}
		return w, nil
	case sqlite.Detect(c.Output):
		w := sqlite.NewWriter(c.Output, sqlite.WithProperties(props))
		if err := w.Open(); err != nil {
			return nil, err
		}
		return w, nil
	default:
		return nil, fmt.Errorf("cannot infer output format from %q", c.Output)
	}
}

// Run executes the convert command.
func (c *ConvertCmd) Run() error {
	in, err := openCorpus(c.Input, c.InTarget)
	if err != nil {
		return err
	}

	props, err := in.Properties()
	if err != nil {
		return err
	}

	r, err := in.OpenReader()
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := c.openOutputWriter(props)
	if err != nil {
		return err
	}
	defer w.Close()

	n, err := corpus.Copy(w, r)
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	logging.Info("corpus converted", "input", c.Input, "output", c.Output, "units", n)
	fmt.Printf("converted %d units\n", n)
	return nil
}

// HeadCmd implements "bitext corpus head".
type HeadCmd struct {
	Path   string `arg:"" help:"Corpus file path" type:"path"`
	Target string `name:"target" optional:"" help:"Target-side file for a parallel text pair" type:"path"`
	Count  int    `name:"count" short:"n" default:"10" help:"Number of units to print"`
}

// Run executes the head command.
func (c *HeadCmd) Run() error {
	cp, err := openCorpus(c.Path, c.Target)
	if err != nil {
		return err
	}

	r, err := cp.OpenReader()
	if err != nil {
		return err
	}
	defer r.Close()

	for i := 0; i < c.Count; i++ {
		u, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		fmt.Println(u)
	}
	return nil
}

// TmxValidateCmd implements "bitext tmx validate".
type TmxValidateCmd struct {
	Path string `arg:"" help:"TMX file path" type:"path"`
}

// Run executes the validate command.
func (c *TmxValidateCmd) Run() error {
	raw, sanitized, err := xml.ValidateFile(c.Path)
	if err != nil {
		return err
	}

	report := func(label string, result xml.ValidationResult) {
		if result.Valid {
			fmt.Printf("%s: well-formed\n", label)
			return
		}
		for _, e := range result.Errors {
			fmt.Printf("%s: error at byte %d: %s\n", label, e.Offset, e.Message)
		}
	}
	report("raw", raw)
	report("sanitized", sanitized)

	if !sanitized.Valid {
		return fmt.Errorf("%s is not readable as TMX", c.Path)
	}
	return nil
}

// TmxInspectCmd implements "bitext tmx inspect".
type TmxInspectCmd struct {
	Path  string `arg:"" help:"TMX file path" type:"path"`
	XPath string `name:"xpath" default:"//tu" help:"XPath expression to evaluate"`
	Count bool   `name:"count" help:"Print only the number of matches"`
}

// Run executes the inspect command.
func (c *TmxInspectCmd) Run() error {
	doc, err := xml.ParseFile(c.Path)
	if err != nil {
		return err
	}

	nodes, err := doc.XPath(c.XPath)
	if err != nil {
		return err
	}

	if c.Count {
		fmt.Println(len(nodes))
		return nil
	}
	for _, n := range nodes {
		fmt.Println(n.OutputXML())
	}
	return nil
}

// HashCmd implements "bitext hash".
type HashCmd struct {
	Path string `arg:"" help:"File path" type:"path"`
}

// Run executes the hash command.
func (c *HashCmd) Run() error {
	sum, err := fileutil.Checksum(c.Path)
	if err != nil {
		return err
	}
	fmt.Printf("%s  %s\n", sum, c.Path)
	return nil
}

// VersionCmd implements "bitext version".
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("bitext %s (sqlite driver: %s)\n", version, sqlite.DriverType())
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("bitext"),
		kong.Description("Translation-memory corpus tools"),
		kong.UsageOnError(),
	)

	format := logging.FormatText
	if CLI.LogFormat == "json" {
		format = logging.FormatJSON
	}
	logging.InitLogger(logging.ParseLevel(CLI.LogLevel), format)

	if err := ctx.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "bitext: %v\n", err)
		os.Exit(1)
	}
}
