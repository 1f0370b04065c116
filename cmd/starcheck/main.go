package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/davecgh/go-spew/spew"

	"startyping/checker-go/pkg/config"
	"startyping/checker-go/pkg/driver"
	"startyping/checker-go/pkg/typechecker"
)

const cliToolVersion = "starcheck 0.0.0-dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 1
	}

	switch args[0] {
	case "--help", "-h":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "check":
		return runCheck(args[1:], os.Stdout)
	case "interface":
		return runInterface(args[1:], os.Stdout)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n", args[0])
		printUsage()
		return 1
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  starcheck check [-config file] [-json] [-approx] <root> [module]")
	fmt.Fprintln(os.Stderr, "  starcheck interface [-config file] [-dump] <root> <module>")
	fmt.Fprintln(os.Stderr, "  starcheck version")
}

type invocation struct {
	cfg     *config.Config
	program *driver.Program
	result  typechecker.CheckResult
}

// prepare parses shared flags, loads the configuration and the program and
// runs the program checker.
func prepare(fs *flag.FlagSet, args []string) (*invocation, int) {
	configPath := fs.String("config", "", "configuration file (default <root>/"+config.DefaultFile+")")
	if err := fs.Parse(args); err != nil {
		return nil, 2
	}
	rest := fs.Args()
	if len(rest) == 0 || len(rest) > 2 {
		printUsage()
		return nil, 2
	}
	root := rest[0]
	path := *configPath
	if path == "" {
		path = filepath.Join(root, config.DefaultFile)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		return nil, 1
	}
	o, err := cfg.Oracle()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load docs: %v\n", err)
		return nil, 1
	}

	loader, err := driver.NewLoader(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return nil, 1
	}
	var program *driver.Program
	if len(rest) == 2 {
		program, err = loader.Load(rest[1])
	} else {
		program, err = loader.LoadAll()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return nil, 1
	}
	for _, id := range program.Unresolved {
		fmt.Fprintf(os.Stderr, "warning: module %s not found under %s\n", id, loader.Root())
	}

	opts := typechecker.ProgramOptions{
		Options: typechecker.Options{Oracle: o, Mode: cfg.Mode},
		Jobs:    cfg.Jobs,
	}
	if cfg.CacheDir != "" {
		opts.Cache = typechecker.NewDirCache(cfg.CacheDir)
		opts.OracleKey, err = cfg.OracleKey()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to fingerprint docs: %v\n", err)
			return nil, 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	result, err := typechecker.NewProgramChecker(opts).Check(ctx, program)
	if err != nil {
		fmt.Fprintf(os.Stderr, "typecheck failed: %v\n", err)
		return nil, 1
	}
	return &invocation{cfg: cfg, program: program, result: result}, 0
}

func runCheck(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	asJSON := fs.Bool("json", false, "print diagnostics as JSON")
	showApprox := fs.Bool("approx", false, "also print approximations")
	inv, code := prepare(fs, args)
	if inv == nil {
		return code
	}

	if *asJSON {
		diags := inv.result.Diagnostics
		if diags == nil {
			diags = []typechecker.ModuleDiagnostic{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(diags); err != nil {
			fmt.Fprintf(os.Stderr, "failed to encode diagnostics: %v\n", err)
			return 1
		}
	} else {
		for _, diag := range inv.result.Diagnostics {
			fmt.Fprintln(out, typechecker.DescribeModuleDiagnostic(diag))
		}
		if *showApprox {
			for _, mod := range inv.result.Modules {
				for _, approx := range mod.Result.Approximations {
					fmt.Fprintf(out, "approximation: %s:%d:%d %s\n", mod.Module.Path, approx.Span.Start.Line, approx.Span.Start.Column, approx)
				}
			}
		}
		fmt.Fprintf(out, "checked %d module(s), %d error(s)\n", len(inv.result.Modules), len(inv.result.Diagnostics))
	}

	if inv.cfg.Fatal && len(inv.result.Diagnostics) > 0 {
		return 1
	}
	return 0
}

func runInterface(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("interface", flag.ContinueOnError)
	dump := fs.Bool("dump", false, "dump the module's globals and expression types")
	inv, code := prepare(fs, args)
	if inv == nil {
		return code
	}
	entry := inv.program.Entry
	if entry == nil {
		fmt.Fprintln(os.Stderr, "interface requires a module argument")
		return 2
	}

	iface := inv.result.Interfaces[entry.ID]
	data, err := json.MarshalIndent(iface, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to encode interface: %v\n", err)
		return 1
	}
	fmt.Fprintln(out, string(data))

	if *dump {
		for _, mod := range inv.result.Modules {
			if mod.Module.ID != entry.ID {
				continue
			}
			if mod.Cached {
				fmt.Fprintln(os.Stderr, "note: result served from cache; no expression types to dump")
				break
			}
			cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, SortKeys: true}
			for _, name := range mod.Result.Globals.Names() {
				ty, _ := mod.Result.Globals.Lookup(name)
				fmt.Fprintf(out, "global %s: %s\n", name, ty)
			}
			for _, node := range mod.Result.Types.Nodes() {
				info, _ := mod.Result.Types.Get(node)
				span := node.Span()
				fmt.Fprintf(out, "%d:%d %T => %s", span.Start.Line, span.Start.Column, node, info.Type)
				if info.Approximate {
					fmt.Fprint(out, " (approximate)")
				}
				fmt.Fprintln(out)
			}
			cfg.Fdump(out, mod.Result.Approximations)
		}
	}
	return 0
}
