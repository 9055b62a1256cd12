package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/robert-malhotra/go-rbxfile/rbxfile"
)

var (
	classColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	nameColor  = color.New(color.FgGreen).SprintFunc()
	typeColor  = color.New(color.FgYellow).SprintFunc()
	addColor   = color.New(color.FgGreen).SprintFunc()
	delColor   = color.New(color.FgRed).SprintFunc()
)

func printTree(w io.Writer, roots []*rbxfile.Instance, props bool) {
	for _, root := range roots {
		printInstance(w, root, "", props)
	}
}

func printInstance(w io.Writer, inst *rbxfile.Instance, indent string, props bool) {
	fmt.Fprintf(w, "%s%s %s\n", indent, classColor(inst.ClassName()), nameColor(strconv.Quote(inst.Name())))
	if props {
		for _, p := range inst.Properties() {
			fmt.Fprintf(w, "%s  %s %s = %s\n", indent, typeColor("["+p.WireTypeName()+"]"), p.Name(), valueString(p))
		}
		if tags := inst.Tags(); len(tags) > 0 {
			fmt.Fprintf(w, "%s  tags: %s\n", indent, strings.Join(tags, ", "))
		}
	}
	for _, child := range inst.Children() {
		printInstance(w, child, indent+"  ", props)
	}
}

// printList prints one line per property, keyed by its full path.
func printList(w io.Writer, roots []*rbxfile.Instance) error {
	for _, root := range roots {
		err := rbxfile.WalkProperties(root, func(info rbxfile.PropertyInfo) error {
			fmt.Fprintf(w, "%s %s = %s\n", info.Path, typeColor("["+info.Type.String()+"]"), valueString(info.Property))
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func valueString(p *rbxfile.Property) string {
	switch v := p.Value().(type) {
	case nil:
		return "<unset>"
	case rbxfile.Ref:
		if v.Target == nil {
			return "nil"
		}
		return v.Target.FullName()
	case rbxfile.BinaryString:
		return fmt.Sprintf("<%d bytes>", len(v))
	case rbxfile.SharedString:
		return fmt.Sprintf("<shared %s, %d bytes>", v.Key(), len(v.Bytes()))
	default:
		return fmt.Sprint(v)
	}
}

// yamlNode keeps instance fields in a fixed order.
func yamlNode(inst *rbxfile.Instance) yaml.MapSlice {
	node := yaml.MapSlice{
		{Key: "class", Value: inst.ClassName()},
		{Key: "name", Value: inst.Name()},
	}
	if props := inst.Properties(); len(props) > 0 {
		values := make(yaml.MapSlice, 0, len(props))
		for _, p := range props {
			values = append(values, yaml.MapItem{Key: p.Name(), Value: valueString(p)})
		}
		node = append(node, yaml.MapItem{Key: "properties", Value: values})
	}
	if children := inst.Children(); len(children) > 0 {
		nodes := make([]yaml.MapSlice, len(children))
		for i, c := range children {
			nodes[i] = yamlNode(c)
		}
		node = append(node, yaml.MapItem{Key: "children", Value: nodes})
	}
	return node
}

func printYAML(w io.Writer, roots []*rbxfile.Instance) error {
	nodes := make([]yaml.MapSlice, len(roots))
	for i, r := range roots {
		nodes[i] = yamlNode(r)
	}
	out, err := yaml.Marshal(nodes)
	if err != nil {
		return fmt.Errorf("encoding YAML: %w", err)
	}
	_, err = w.Write(out)
	return err
}

// printDiff prints a line diff of the property listings of two files.
func printDiff(w io.Writer, a, b []*rbxfile.Instance) error {
	var left, right strings.Builder
	noColor := color.NoColor
	color.NoColor = true
	errA := printList(&left, a)
	errB := printList(&right, b)
	color.NoColor = noColor
	if errA != nil {
		return errA
	}
	if errB != nil {
		return errB
	}

	dmp := diffmatchpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(left.String(), right.String())
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)

	changed := false
	for _, d := range diffs {
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			switch d.Type {
			case diffmatchpatch.DiffInsert:
				changed = true
				fmt.Fprint(w, addColor("+ "+line))
			case diffmatchpatch.DiffDelete:
				changed = true
				fmt.Fprint(w, delColor("- "+line))
			}
		}
	}
	if !changed {
		fmt.Fprintln(w, "no differences")
	}
	return nil
}
