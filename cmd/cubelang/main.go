package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/funvibe/cubelang/internal/analyzer"
	"github.com/funvibe/cubelang/internal/backend"
	"github.com/funvibe/cubelang/internal/config"
	"github.com/funvibe/cubelang/internal/cube"
	"github.com/funvibe/cubelang/internal/diagnostics"
	"github.com/funvibe/cubelang/internal/lexer"
	"github.com/funvibe/cubelang/internal/operators"
	"github.com/funvibe/cubelang/internal/parser"
	"github.com/funvibe/cubelang/internal/pipeline"
	"github.com/funvibe/cubelang/internal/prettyprinter"
	"github.com/funvibe/cubelang/internal/stdlib"
)

type options struct {
	configPath string
	listing    bool
	dumpAST    bool
	format     bool
	grammar    bool
	size       int
	verbose    bool
	version    bool
}

func parseFlags(args []string) (*options, []string, error) {
	fs := flag.NewFlagSet("cubelang", flag.ContinueOnError)
	opts := &options{}
	fs.StringVar(&opts.configPath, "c", "", "configuration `file` (default: cubelang.yaml found next to the source)")
	fs.BoolVar(&opts.listing, "S", false, "print the compiled program instead of running it")
	fs.BoolVar(&opts.dumpAST, "ast", false, "print the syntax tree and stop")
	fs.BoolVar(&opts.format, "fmt", false, "print the program in canonical layout and stop")
	fs.BoolVar(&opts.grammar, "grammar", false, "print the expression grammar generated from the operator table and exit")
	fs.IntVar(&opts.size, "d", 0, "cube `size`, overrides the configuration")
	fs.BoolVar(&opts.verbose, "v", false, "log pipeline stages to stderr")
	fs.BoolVar(&opts.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: cubelang [flags] [file%s]\n\nReads the program from stdin when no file is given.\n\nFlags:\n", config.SourceFileExt)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func loadConfig(opts *options, filePath string) (*config.Config, error) {
	var cfg *config.Config
	path := opts.configPath
	if path == "" {
		dir := "."
		if filePath != "" {
			dir = filepath.Dir(filePath)
		}
		found, err := config.FindConfig(dir)
		if err != nil {
			return nil, err
		}
		path = found
	}
	if path == "" {
		cfg = config.Default()
	} else {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if opts.size != 0 {
		if opts.size < 2 {
			return nil, fmt.Errorf("cube size must be at least 2, got %d", opts.size)
		}
		cfg.Cube.Size = opts.size
	}
	if opts.verbose {
		cfg.Log.Verbose = true
	}
	return cfg, nil
}

func readSource(args []string) (string, string, error) {
	if len(args) == 0 {
		stat, err := os.Stdin.Stat()
		if err == nil && stat.Mode()&os.ModeCharDevice != 0 {
			return "", "", fmt.Errorf("no input: pass a file or pipe the program to stdin")
		}
		input, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(input), "", nil
	}
	if len(args) > 1 {
		return "", "", fmt.Errorf("expected one source file, got %d", len(args))
	}
	input, err := os.ReadFile(args[0])
	if err != nil {
		return "", "", fmt.Errorf("reading input: %w", err)
	}
	return string(input), args[0], nil
}

// wrapMoves breaks the recorded notation into lines no longer than width.
func wrapMoves(moves []string, width int) []string {
	var lines []string
	var cur strings.Builder
	for _, m := range moves {
		if cur.Len() > 0 && cur.Len()+1+len(m) > width {
			lines = append(lines, cur.String())
			cur.Reset()
		}
		if cur.Len() > 0 {
			cur.WriteByte(' ')
		}
		cur.WriteString(m)
	}
	if cur.Len() > 0 {
		lines = append(lines, cur.String())
	}
	return lines
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, rest, err := parseFlags(args)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "cubelang %s\n", config.Version)
		return 0
	}
	if opts.grammar {
		fmt.Fprint(stdout, operators.Grammar(operators.Symbols(), "unary"))
		return 0
	}

	source, filePath, err := readSource(rest)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}
	cfg, err := loadConfig(opts, filePath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		return 2
	}

	logger := log.New(io.Discard, "", 0)
	if cfg.Log.Verbose {
		logger = log.New(stderr, "cubelang: ", log.Ltime|log.Lmicroseconds)
	}

	name := "<stdin>"
	if filePath != "" {
		name = filePath
	}
	stderrFile, _ := stderr.(*os.File)
	printer := diagnostics.NewPrinter(stderr, source,
		diagnostics.WithFile(name),
		diagnostics.WithColor(diagnostics.ColorEnabled(cfg.Display.Color, stderrFile)),
		diagnostics.WithMaxWidth(cfg.Display.MaxWidth),
	)

	recorder := cube.NewRecorder(cfg.Cube.Size)
	lib := stdlib.New()
	lib.Include(cube.NewRuntime(recorder, stdout).Library())

	ctx := &pipeline.PipelineContext{
		SourceCode: source,
		FilePath:   filePath,
		Library:    lib,
		Logger:     logger,
	}

	if opts.dumpAST || opts.format {
		ctx = pipeline.New(&lexer.LexerProcessor{}, &parser.ParserProcessor{}).Run(ctx)
		if ctx.Failed() {
			for _, err := range ctx.Errors {
				printer.PrintError(err)
			}
			return 1
		}
		if opts.format {
			p := prettyprinter.NewCodePrinterWithWidth(cfg.Display.MaxWidth)
			p.PrintProgram(ctx.AstRoot)
			fmt.Fprint(stdout, p.String())
			return 0
		}
		fmt.Fprintln(stdout, ctx.AstRoot.String())
		return 0
	}

	var b backend.Backend = backend.NewVM(cfg.Timeout(), printer)
	if opts.listing {
		b = backend.NewListing(stdout)
	}
	logger.Printf("backend %s, cube size %d", b.Name(), cfg.Cube.Size)

	ctx = pipeline.New(
		&lexer.LexerProcessor{},
		&parser.ParserProcessor{},
		&analyzer.AnalyzerProcessor{},
		&analyzer.LoweringProcessor{},
		backend.NewExecutionProcessor(context.Background(), b),
	).Run(ctx)

	for _, err := range ctx.Errors {
		// The fault itself has already been reported with its traceback.
		if errors.Is(err, backend.ErrFaultReported) {
			continue
		}
		printer.PrintError(err)
	}

	if !opts.listing {
		if moves := recorder.Actions(); len(moves) > 0 {
			fmt.Fprintf(stdout, "moves (%d):\n", len(moves))
			for _, line := range wrapMoves(moves, cfg.Display.MaxWidth) {
				fmt.Fprintln(stdout, line)
			}
		}
	}
	if ctx.Failed() {
		return 1
	}
	return 0
}

func main() {
	defer func() {
		if r := recover(); r != nil {
			if os.Getenv("DEBUG") == "1" {
				panic(r)
			}
			fmt.Fprintf(os.Stderr, "Internal error: %v\n", r)
			fmt.Fprintln(os.Stderr, "This is a bug. Please report it.")
			os.Exit(1)
		}
	}()
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
