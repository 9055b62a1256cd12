// Diagnostic tool for inspecting place and model files
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
	"github.com/robert-malhotra/go-rbxfile/rbxl"
	"github.com/robert-malhotra/go-rbxfile/rbxlx"
)

type config struct {
	*cli.Command
	Props   bool   `cli:"name=props aliases=p desc='show properties under each instance'"`
	List    bool   `cli:"name=list aliases=l desc='print one line per property with its full path'"`
	YAML    bool   `cli:"name=yaml desc='dump the tree as YAML'"`
	Get     string `cli:"name=get desc='print one property, e.g. Workspace.House.Door.Size'"`
	Diff    string `cli:"name=diff desc='compare against another file'"`
	NoColor bool   `cli:"name=no-color desc='disable colored output'"`
}

func main() {
	cli.MainContext(context.Background(), mainCommand())
}

func mainCommand() *cli.Command {
	cfg := &config{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	return cli.NewCommandAt(&cfg.Command, "rbxdump").
		WithSynopsis("rbxdump [opts] <file.rbxl|file.rbxlx>").
		WithDescription("rbxdump prints the instance tree of a binary or XML place or model file.").
		WithOpts(opts...).
		WithRun(cfg.main)
}

func (cfg *config) main(cc *cli.Context, args []string) error {
	args, err := cfg.Parse(cc, args)
	if err != nil {
		return err
	}
	if len(args) != 1 {
		return fmt.Errorf("%w: usage: rbxdump [opts] <file>", cli.ErrUsage)
	}
	if !useColor(cc.Out, cfg.NoColor) {
		color.NoColor = true
	}
	return run(cc.Out, args[0], cfg)
}

// useColor reports whether w is a terminal and color was not disabled.
func useColor(w io.Writer, disabled bool) bool {
	if disabled {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func run(w io.Writer, filename string, cfg *config) error {
	roots, format, err := load(filename)
	if err != nil {
		return err
	}

	switch {
	case cfg.Get != "":
		return printProperty(w, roots, cfg.Get)
	case cfg.Diff != "":
		other, _, err := load(cfg.Diff)
		if err != nil {
			return err
		}
		return printDiff(w, roots, other)
	case cfg.YAML:
		return printYAML(w, roots)
	case cfg.List:
		return printList(w, roots)
	}

	fmt.Fprintf(w, "=== %s (%s) ===\n\n", filename, format)
	printTree(w, roots, cfg.Props)
	return nil
}

// load reads a file in either format, telling them apart by signature.
func load(filename string) ([]*rbxfile.Instance, string, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, "", err
	}
	if rbxl.IsBinary(data) {
		roots, err := rbxl.DecodeBytes(data)
		if err != nil {
			return nil, "", fmt.Errorf("decoding %s: %w", filename, err)
		}
		return roots, "binary", nil
	}
	roots, err := rbxlx.DecodeBytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", filename, err)
	}
	return roots, "xml", nil
}

var errNoProperty = errors.New("no such property")

// printProperty resolves path against each root in turn.
func printProperty(w io.Writer, roots []*rbxfile.Instance, path string) error {
	instPath, name := rbxfile.SplitPropertyPath(path)
	var lastErr error = fmt.Errorf("%w: %s", errNoProperty, path)
	for _, root := range roots {
		inst, err := root.FindPath(instPath)
		if err != nil {
			lastErr = err
			continue
		}
		p := inst.Property(name)
		if p == nil {
			continue
		}
		fmt.Fprintln(w, p.String())
		return nil
	}
	return lastErr
}
