package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/peterh/liner"

	"github.com/jakubDoka/prometh/internal/elaborate"
	"github.com/jakubDoka/prometh/internal/interp"
	"github.com/jakubDoka/prometh/internal/moduletree"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

const historyFile = ".prometh_history"

// runREPL is a snippet-at-a-time checker: input lines are collected until
// a blank line, and each submitted snippet is wrapped as the body of a
// throwaway `main` function, written to a scratch `.pmt` file, and run
// through the normal build pipeline. It is not an incremental evaluator
// — each snippet starts from a fresh realm — which keeps it honest about
// what the batch compiler actually does, at the cost of not remembering
// variables between snippets.
func runREPL(args []string) {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	retType := fs.String("ret", "i64", "declared return type for the wrapped expression")
	_ = fs.Parse(args)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if home, err := os.UserHomeDir(); err == nil {
		if f, err := os.Open(filepath.Join(home, historyFile)); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Println(color.CyanString("prometh repl — one line per main() body, blank line to submit"))
	fmt.Println("e.g. `return 1 + 2` then press enter twice")

	var buf []string
	for {
		prompt := "prometh> "
		if len(buf) > 0 {
			prompt = "     ... "
		}

		text, err := line.Prompt(prompt)
		if err != nil { // EOF or Ctrl-D
			break
		}
		if strings.TrimSpace(text) == "" {
			if len(buf) == 0 {
				continue
			}
			evalSnippet(strings.Join(buf, "\n"), *retType)
			buf = nil
			continue
		}
		line.AppendHistory(text)
		buf = append(buf, text)
	}

	if home, err := os.UserHomeDir(); err == nil {
		if f, err := os.Create(filepath.Join(home, historyFile)); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}
}

func evalSnippet(body string, retType string) {
	var src strings.Builder
	fmt.Fprintf(&src, "fun main() -> %s:\n", retType)
	for _, l := range strings.Split(body, "\n") {
		fmt.Fprintf(&src, "  %s\n", l)
	}

	dir, err := os.MkdirTemp("", "prometh-repl")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "snippet.pmt")
	if err := os.WriteFile(path, []byte(src.String()), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}

	builder := moduletree.NewBuilder()
	tree, buildErr := builder.Build(path)
	if buildErr != nil || len(builder.Errors()) > 0 {
		for _, e := range builder.Errors() {
			fmt.Println(color.RedString(e.Message))
		}
		return
	}

	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	if errs := e.Errors(); len(errs) > 0 {
		for _, er := range errs {
			fmt.Println(color.RedString(er.Message))
		}
		return
	}

	fn, ok := findMain(realm, tree)
	if !ok {
		fmt.Println(color.RedString("internal error: wrapped snippet lost its main()"))
		return
	}

	runner := interp.New(interp.Settings{})
	result, err := runner.Run(realm, fn, nil)
	if err != nil {
		fmt.Println(color.RedString(err.Error()))
		return
	}
	fmt.Println(color.GreenString("=> %+v", result))
}
