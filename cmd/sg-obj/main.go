package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/gosuda/stargate/command"
	sgruntime "github.com/gosuda/stargate/runtime"
)

func main() {
	in := flag.String("in", "-", "structured output to inspect, - for stdin")
	view := flag.String("view", "tree", "what to print: tree|entries|files|dirs|paths")
	flag.Parse()

	if err := run(*in, *view, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "sg-obj: %v\n", err)
		os.Exit(1)
	}
}

func run(in, view string, w io.Writer) error {
	var raw []byte
	var err error
	if in == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(in)
	}
	if err != nil {
		return err
	}
	tree, err := command.Decode(raw)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	switch view {
	case "tree":
		return printTree(w, tree)
	case "entries":
		return printTree(w, command.Entries(tree))
	case "files":
		return printTree(w, command.Files(tree))
	case "dirs":
		return printTree(w, command.Dirs(tree))
	case "paths":
		for _, p := range command.Paths(tree) {
			fmt.Fprintln(w, p)
		}
		return nil
	default:
		return fmt.Errorf("unknown view %q", view)
	}
}

func printTree(w io.Writer, tree any) error {
	out, err := sgruntime.ToJSON(sgruntime.ObjectVal(sgruntime.NewObject(tree)), "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", out)
	return err
}
