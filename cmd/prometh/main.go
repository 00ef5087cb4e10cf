// Command prometh is the compiler driver: it resolves a module tree,
// elaborates it to IR, and either runs the result through the reference
// interpreter or dumps the IR, depending on the subcommand.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/jakubDoka/prometh/internal/config"
	"github.com/jakubDoka/prometh/internal/elaborate"
	cerrors "github.com/jakubDoka/prometh/internal/errors"
	"github.com/jakubDoka/prometh/internal/idhash"
	"github.com/jakubDoka/prometh/internal/interp"
	"github.com/jakubDoka/prometh/internal/metrics"
	"github.com/jakubDoka/prometh/internal/moduletree"
	"github.com/jakubDoka/prometh/internal/symtable"
	"github.com/jakubDoka/prometh/internal/typerealm"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printHelp()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "run":
		runCommand(os.Args[2:])
	case "build":
		buildCommand(os.Args[2:])
	case "repl":
		runREPL(os.Args[2:])
	case "version", "-v", "--version":
		printVersion()
	case "help", "-h", "--help":
		printHelp()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("prometh %s\n", version)
}

func printHelp() {
	fmt.Println(`prometh — a PROMETH compiler driver

Usage:
  prometh run [flags] <file.pmt>     elaborate and execute main()
  prometh build [flags] <file.pmt>   elaborate and dump the IR
  prometh repl                       interactive expression checker
  prometh version
  prometh help

Flags:
  -o <name>               output name (build: IR dump file; run: unused)
  -obj                    stop after IR generation, skip interpretation
  -opt                    constant-fold the elaborated IR before running
  -triplet <triple>       target triple passthrough (recorded only, no native backend)
  -comp-flags "k=v k ..." backend flags passthrough
  -config <path>          project file (default: prometh.yaml in the working directory)
  -metrics-addr <addr>    expose Prometheus counters at this address
  -no-color               disable colored diagnostics`)
}

type sharedFlags struct {
	output      string
	obj         bool
	opt         bool
	triplet     string
	compFlags   string
	configPath  string
	metricsAddr string
	noColor     bool
}

func parseShared(fs *flag.FlagSet, args []string) (*sharedFlags, []string) {
	f := &sharedFlags{}
	fs.StringVar(&f.output, "o", "", "output name")
	fs.BoolVar(&f.obj, "obj", false, "stop after IR generation")
	fs.BoolVar(&f.opt, "opt", false, "constant-fold the elaborated IR")
	fs.StringVar(&f.triplet, "triplet", "", "target triple passthrough")
	fs.StringVar(&f.compFlags, "comp-flags", "", "backend flags passthrough")
	fs.StringVar(&f.configPath, "config", "prometh.yaml", "project file path")
	fs.StringVar(&f.metricsAddr, "metrics-addr", "", "expose Prometheus counters at this address")
	fs.BoolVar(&f.noColor, "no-color", false, "disable colored diagnostics")
	_ = fs.Parse(args)
	return f, fs.Args()
}

func compile(root string, f *sharedFlags) (*typerealm.Realm, *moduletree.ModuleTree, []*cerrors.Error) {
	proj, err := config.Load(f.configPath)
	if err != nil {
		return nil, nil, []*cerrors.Error{cerrors.New(cerrors.LdrIOError, "load config: %v", err)}
	}
	if f.triplet == "" {
		f.triplet = proj.Triplet
	}
	if f.compFlags == "" {
		f.compFlags = proj.CompFlags
	}
	if !f.opt {
		f.opt = proj.Opt
	}
	if f.metricsAddr == "" {
		f.metricsAddr = proj.MetricsAddr
	}

	var reg *metrics.Registry
	if f.metricsAddr != "" {
		reg = metrics.NewRegistry()
		go func() { _ = reg.Serve(context.Background(), f.metricsAddr) }()
	}

	builder := moduletree.NewBuilder()
	builder.SearchPaths = proj.SearchPaths
	builder.DefaultAttrs = proj.DefaultAttributes
	tree, buildErr := builder.Build(root)
	errs := append([]*cerrors.Error{}, builder.Errors()...)
	if buildErr != nil {
		return nil, nil, errs
	}
	if reg != nil {
		reg.ModulesLoaded.Add(float64(tree.Modules.Len()))
		reg.CacheHits.Add(float64(builder.CacheHits))
	}

	bar := progressbar.Default(int64(tree.Modules.Len()), "elaborating")
	realm := typerealm.NewRealm()
	realm.Seed()
	e := elaborate.New(realm, tree)
	e.Elaborate()
	_ = bar.Add(tree.Modules.Len())
	errs = append(errs, e.Errors()...)

	if reg != nil {
		reg.FunctionsElaborated.Add(float64(realm.Bodies.Len()))
		reg.ElaborationErrors.Add(float64(len(e.Errors())))
	}

	return realm, tree, errs
}

func reportAndExit(errs []*cerrors.Error, noColor bool) {
	if noColor {
		color.NoColor = true
	}
	for _, e := range errs {
		cerrors.Report(os.Stderr, e)
	}
	os.Exit(1)
}

// findMain resolves the root module's `main` function using the same
// idhash.New(name).Combine(moduleID) scheme internal/elaborate keys
// every function by.
func findMain(realm *typerealm.Realm, tree *moduletree.ModuleTree) (symtable.Direct, bool) {
	rootID := tree.Modules.DirectToID(tree.Root)
	return realm.Functions.IDToDirect(idhash.New("main").Combine(rootID))
}

func runCommand(args []string) {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	f, rest := parseShared(fs, args)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "run: expected exactly one source file")
		os.Exit(2)
	}

	realm, tree, errs := compile(rest[0], f)
	if len(errs) > 0 {
		reportAndExit(errs, f.noColor)
	}
	if f.obj {
		fmt.Println(color.GreenString("IR generated, stopping before interpretation (-obj)"))
		return
	}

	fn, ok := findMain(realm, tree)
	if !ok {
		fmt.Fprintln(os.Stderr, "no main() function found in the root module")
		os.Exit(1)
	}

	settings := interp.Settings{Flags: interp.ParseCompFlags(f.compFlags), Triplet: f.triplet, Opt: f.opt}
	if settings.Opt {
		for i := 0; i < realm.Bodies.Len(); i++ {
			interp.Optimize(realm, *realm.Bodies.Index(symtable.Direct(i)))
		}
	}
	if settings.Triplet != "" {
		fmt.Println(color.YellowString("notice: -triplet has no effect without a native backend"))
	}

	runner := interp.New(settings)
	result, err := runner.Run(realm, fn, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		os.Exit(1)
	}
	os.Exit(int(result.Int))
}

func buildCommand(args []string) {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	f, rest := parseShared(fs, args)
	if len(rest) != 1 {
		fmt.Fprintln(os.Stderr, "build: expected exactly one source file")
		os.Exit(2)
	}

	realm, tree, errs := compile(rest[0], f)
	if len(errs) > 0 {
		reportAndExit(errs, f.noColor)
	}

	out := os.Stdout
	if f.output != "" {
		file, err := os.Create(f.output)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer file.Close()
		out = file
	}
	dumpIR(out, realm, tree)
}
