// Command qpragma inspects and transforms PRAGMA circuit files.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"qpragma/calc"
	"qpragma/circuit"
	"qpragma/internal/circuitfile"
	"qpragma/internal/logging"
	"qpragma/internal/tui"
	"qpragma/operations"
)

// Globals are the flags shared by every command.
type Globals struct {
	Debug bool   `name:"debug" short:"d" env:"QPRAGMA_DEBUG" help:"Verbose console logging"`
	File  string `name:"file" short:"f" env:"QPRAGMA_FILE" type:"path" help:"Circuit file used when a command is given none"`
}

// CLI defines the command-line interface using Kong
type CLI struct {
	Globals

	Show       ShowCmd       `cmd:"" help:"List the operations of a circuit by layer"`
	Tags       TagsCmd       `cmd:"" help:"Print the tag list of one or all operation variants"`
	Remap      RemapCmd      `cmd:"" help:"Rename the qubits of a circuit"`
	Substitute SubstituteCmd `cmd:"" help:"Replace symbolic parameters by their values"`
	Noise      NoiseCmd      `cmd:"" help:"Print superoperator and probability of every noise operation"`
	Browse     BrowseCmd     `cmd:"" help:"Open the interactive circuit inspector"`
}

// app carries what commands need besides their flags.
type app struct {
	globals *Globals
	out     io.Writer
	logger  *zap.Logger
	loader  *circuitfile.Loader
}

// load reads path, falling back to the --file flag.
func (a *app) load(path string) (*circuitfile.Result, string, error) {
	if path == "" {
		path = a.globals.File
	}
	if path == "" {
		return nil, "", errors.New("no circuit file given (argument, --file or QPRAGMA_FILE)")
	}
	res, err := a.loader.Load(path)
	return res, path, err
}

// write prints c as a document, or stores it at out when set.
func (a *app) write(c *circuit.Circuit, calculator *calc.Calculator, out string) error {
	data, err := circuitfile.Encode(c, calculator)
	if err != nil {
		return err
	}
	if out == "" {
		_, err = a.out.Write(data)
		return errors.Wrap(err, "write circuit")
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return errors.Wrap(err, "write circuit")
	}
	a.logger.Info("wrote circuit", zap.String("path", out), zap.Int("operations", c.Len()))
	return nil
}

func (a *app) render(t table.Writer) {
	fmt.Fprintln(a.out, t.Render())
}

// ShowCmd lists a circuit.
type ShowCmd struct {
	Path string `arg:"" optional:"" type:"path" help:"Circuit file"`
}

func (c *ShowCmd) Run(a *app) error {
	res, path, err := a.load(c.Path)
	if err != nil {
		return err
	}

	layerOf := circuit.NewDAG(res.Circuit).LayerOf()
	t := table.NewWriter()
	t.SetTitle(path)
	t.AppendHeader(table.Row{"#", "Layer", "Operation", "Qubits", "Parametrized", "Tags"})
	for i, op := range res.Circuit.Operations() {
		t.AppendRow(table.Row{i, layerOf[i], op.Hqslang(), op.InvolvedQubits(), op.IsParametrized(), strings.Join(op.Tags()[1:], ", ")})
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d operation(s)", res.Circuit.Len()), res.Circuit.InvolvedQubits(), res.Circuit.IsParametrized()})
	a.render(t)
	return nil
}

// TagsCmd prints tag lists.
type TagsCmd struct {
	Name string `arg:"" optional:"" help:"Operation variant, e.g. PragmaDamping"`
}

func (c *TagsCmd) Run(a *app) error {
	names := operations.Variants()
	if c.Name != "" {
		if operations.TagsFor(c.Name) == nil {
			return errors.Errorf("unknown operation %q", c.Name)
		}
		names = []string{c.Name}
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"Operation", "Tags"})
	for _, name := range names {
		t.AppendRow(table.Row{name, strings.Join(operations.TagsFor(name), ", ")})
	}
	a.render(t)
	return nil
}

// RemapCmd renames qubits.
type RemapCmd struct {
	Path    string `arg:"" optional:"" type:"path" help:"Circuit file"`
	Mapping string `name:"map" short:"m" required:"" help:"Qubit mapping, e.g. 0:3,2:4"`
	Out     string `name:"out" short:"o" type:"path" help:"Write the result here instead of stdout"`
}

func (c *RemapCmd) Run(a *app) error {
	mapping, err := circuitfile.ParseMapping(c.Mapping)
	if err != nil {
		return err
	}
	res, path, err := a.load(c.Path)
	if err != nil {
		return err
	}
	remapped, err := res.Circuit.RemapQubits(mapping)
	if err != nil {
		return errors.Wrapf(err, "remap %s", path)
	}
	return a.write(remapped.(*circuit.Circuit), res.Calculator, c.Out)
}

// SubstituteCmd resolves symbolic parameters.
type SubstituteCmd struct {
	Path string   `arg:"" optional:"" type:"path" help:"Circuit file"`
	Set  []string `name:"set" short:"s" help:"Extra variable assignments, e.g. t=pi/2 (applied after the file's variables)"`
	Out  string   `name:"out" short:"o" type:"path" help:"Write the result here instead of stdout"`
}

func (c *SubstituteCmd) Run(a *app) error {
	res, path, err := a.load(c.Path)
	if err != nil {
		return err
	}
	if err := assign(res.Calculator, c.Set); err != nil {
		return err
	}
	sub, err := res.Circuit.SubstituteParameters(res.Calculator)
	if err != nil {
		return errors.Wrapf(err, "substitute %s", path)
	}
	return a.write(sub.(*circuit.Circuit), res.Calculator, c.Out)
}

// assign applies name=expression pairs in order.
func assign(calculator *calc.Calculator, sets []string) error {
	for _, s := range sets {
		v, err := circuitfile.ParseAssignment(s)
		if err != nil {
			return err
		}
		if _, err := calculator.Assign(v.Name, v.Expr); err != nil {
			return errors.Wrapf(err, "variable %s", v.Name)
		}
	}
	return nil
}

// NoiseCmd describes the noise channels of a circuit.
type NoiseCmd struct {
	Path  string   `arg:"" optional:"" type:"path" help:"Circuit file"`
	Power string   `name:"power" short:"p" help:"Raise every channel to this power (scales the gate time)"`
	Set   []string `name:"set" short:"s" help:"Extra variable assignments, e.g. t=pi/2"`
}

func (c *NoiseCmd) Run(a *app) error {
	res, _, err := a.load(c.Path)
	if err != nil {
		return err
	}
	if err := assign(res.Calculator, c.Set); err != nil {
		return err
	}

	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Operation", "Qubit", "Gate time", "Probability"})
	var superops []string
	for i, op := range res.Circuit.Operations() {
		noise, ok := op.(operations.PragmaNoiseOperation)
		if !ok {
			continue
		}
		if c.Power != "" {
			noise = noise.PowerCF(calc.Parse(c.Power))
		}
		resolved, err := noise.SubstituteParameters(res.Calculator)
		if err != nil {
			return errors.Wrapf(err, "operation %d", i)
		}
		noise = resolved.(operations.PragmaNoiseOperation)
		superop, err := noise.Superoperator()
		if err != nil {
			return errors.Wrapf(err, "operation %d", i)
		}
		t.AppendRow(table.Row{i, noise.Hqslang(), noise.Qubit(), calc.Format(noise.GateTime()), calc.Format(noise.Probability())})
		superops = append(superops, fmt.Sprintf("#%d %s\n%.6v\n", i, noise.Hqslang(), mat.Formatted(superop, mat.Squeeze())))
	}
	a.render(t)
	for _, s := range superops {
		fmt.Fprintln(a.out, s)
	}
	return nil
}

// BrowseCmd runs the interactive inspector.
type BrowseCmd struct {
	Path string `arg:"" optional:"" type:"path" help:"Circuit file, created on save when missing"`
}

func (c *BrowseCmd) Run(a *app) error {
	res, path, err := a.load(c.Path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		res = &circuitfile.Result{Circuit: circuit.New(), Calculator: calc.NewCalculator()}
	case err != nil:
		return err
	}
	// The inspector owns the terminal, so it does not log.
	model := tui.New(res.Circuit, res.Calculator, path, logging.Nop())
	_, err = tea.NewProgram(model, tea.WithAltScreen()).Run()
	return errors.Wrap(err, "run inspector")
}

// execute parses args and runs the selected command, printing to out.
func execute(args []string, out io.Writer) error {
	var cli CLI
	parser, err := kong.New(&cli,
		kong.Name("qpragma"),
		kong.Description("Inspect and transform PRAGMA circuit files"),
		kong.UsageOnError(),
		kong.Writers(out, os.Stderr),
	)
	if err != nil {
		return err
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cli.Debug)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	return ctx.Run(&app{
		globals: &cli.Globals,
		out:     out,
		logger:  logger,
		loader:  circuitfile.NewLoader(logger),
	})
}

func main() {
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "qpragma: %v\n", err)
		os.Exit(1)
	}
}
