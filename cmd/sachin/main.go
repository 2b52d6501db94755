package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/chittur/parallel-programming-language/internal/cluster"
	"github.com/chittur/parallel-programming-language/internal/icode"
	"github.com/chittur/parallel-programming-language/internal/parser"
	"github.com/chittur/parallel-programming-language/internal/scanner"
	"github.com/chittur/parallel-programming-language/internal/vm"
)

var debug bool

func atExit(err error) {
	if err == nil {
		return
	}
	if debug {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
	} else {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	os.Exit(1)
}

const usage = `usage: sachin <command> [arguments]

commands:
  compile <source>          compile <source>, writing <source>.sachin
  run <intermediate-code>   run previously compiled code
  execute <source>          compile and run <source> in one step
`

func main() {
	if len(os.Args) < 2 || isHelpArg(os.Args[1]) {
		fmt.Fprint(os.Stderr, usage)
		if len(os.Args) < 2 {
			os.Exit(1)
		}
		return
	}

	fs := flag.NewFlagSet(os.Args[1], flag.ExitOnError)
	fs.BoolVar(&debug, "debug", false, "print full error stack traces")
	dataSize := fs.Int("datasize", 1<<16, "data store size in cells per node")
	seed := fs.Int64("seed", 1, "pseudo-random seed for the root node")
	out := fs.String("o", "", "output path (compile only; default <source>.sachin)")
	fs.Parse(os.Args[2:])

	var err error
	switch os.Args[1] {
	case "compile":
		err = runCompile(fs.Args(), *out)
	case "run":
		err = runExecute(fs.Args(), nil, *dataSize, *seed)
	case "execute":
		err = runCompileAndExecute(fs.Args(), *dataSize, *seed)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
	atExit(err)
}

func isHelpArg(s string) bool {
	switch s {
	case "help", "?", "-?", "/?", "-h", "--help":
		return true
	}
	return false
}

func runCompile(args []string, out string) error {
	if len(args) != 1 {
		return errors.New("compile requires exactly one source file")
	}
	code, err := compileFile(args[0])
	if err != nil {
		return err
	}
	if out == "" {
		out = args[0] + ".sachin"
	}
	f, err := os.Create(out)
	if err != nil {
		return errors.Wrap(err, "sachin: creating output file")
	}
	defer f.Close()
	return icode.Write(f, code)
}

func runExecute(args []string, precompiled []int32, dataSize int, seed int64) error {
	var code []int32
	if precompiled != nil {
		code = precompiled
	} else {
		if len(args) != 1 {
			return errors.New("run requires exactly one intermediate-code file")
		}
		f, err := os.Open(args[0])
		if err != nil {
			return errors.Wrap(err, "sachin: opening intermediate code")
		}
		defer f.Close()
		code, err = icode.Read(f)
		if err != nil {
			return err
		}
	}
	return cluster.Run(code, cluster.Options{
		DataSize: dataSize,
		Input:    vm.NewTextReader(bufio.NewReader(os.Stdin)),
		Output:   vm.NewTextWriter(os.Stdout),
		Seed:     seed,
	})
}

func runCompileAndExecute(args []string, dataSize int, seed int64) error {
	if len(args) != 1 {
		return errors.New("execute requires exactly one source file")
	}
	code, err := compileFile(args[0])
	if err != nil {
		return err
	}
	return runExecute(nil, code, dataSize, seed)
}

func compileFile(path string) ([]int32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "sachin: opening source")
	}
	defer f.Close()
	src := scanner.NewReaderSource(bufio.NewReader(f))
	result := parser.Compile(src)
	if !result.Success {
		result.Report.Format(os.Stderr)
		return nil, errors.New(strings.TrimSpace("compilation failed for " + path))
	}
	return result.Code, nil
}
