// Command valsh is an interactive shell over the value engine: declare
// variables, assign through lvalues, allocate and dispose pointees, and
// inspect values and the heap.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterh/liner"
	"golang.org/x/term"

	pscal "github.com/emkey1/pscal-sub005/src"
	"github.com/emkey1/pscal-sub005/src/pkg/decl"
)

const (
	colorYellow = "\x1b[93m"
	colorReset  = "\x1b[0m"
	historyFile = ".valsh_history"
	prompt      = "valsh> "
)

func stderrSupportsColor() bool {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return false
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	return os.Getenv("TERM") != "dumb"
}

// errorPrintf prints an error message to stderr, using color if supported
func errorPrintf(format string, args ...interface{}) {
	message := fmt.Sprintf(format, args...)
	if stderrSupportsColor() {
		fmt.Fprintf(os.Stderr, "%s%s%s\n", colorYellow, message, colorReset)
	} else {
		fmt.Fprintln(os.Stderr, message)
	}
}

func showUsage() {
	fmt.Fprintf(os.Stderr, `Usage: valsh [options] [script]

Runs commands from script, from piped stdin, or interactively.

Options:
`)
	flag.PrintDefaults()
	fmt.Fprint(os.Stderr, "\n"+helpText)
}

func main() {
	declFlag := flag.String("decl", "", "YAML declaration file to load first")
	configFlag := flag.String("config", "", "TOML configuration file")
	debugFlag := flag.Bool("debug", false, "Enable debug output")
	flag.BoolVar(debugFlag, "d", false, "Enable debug output (short)")
	flag.Usage = showUsage
	flag.Parse()

	config := pscal.DefaultConfig()
	var unknownKeys []string
	if *configFlag != "" {
		loaded, unknown, err := pscal.LoadConfig(*configFlag)
		if err != nil {
			errorPrintf("%v", err)
			os.Exit(2)
		}
		config, unknownKeys = loaded, unknown
	}
	if *debugFlag {
		config.Debug = true
	}

	rt := pscal.New(config)
	for _, key := range unknownKeys {
		rt.Logger().WarnCat(pscal.CatConfig, "Unknown configuration key %q in %s", key, *configFlag)
	}

	if *declFlag != "" {
		if _, err := decl.Load(*declFlag, rt, rt.Scopes); err != nil {
			errorPrintf("%v", err)
			os.Exit(1)
		}
	}

	sh := newShell(rt, os.Stdout)

	if args := flag.Args(); len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			errorPrintf("%v", err)
			os.Exit(2)
		}
		code := runScript(sh, f, args[0])
		f.Close()
		os.Exit(code)
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		os.Exit(runScript(sh, os.Stdin, "<stdin>"))
	}
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		sh.width = width
	}
	os.Exit(runInteractive(sh))
}

// runScript executes every line and stops at the first error
func runScript(sh *shell, r io.Reader, name string) int {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		err := sh.execute(scanner.Text())
		if errors.Is(err, errQuit) {
			return 0
		}
		if err != nil {
			errorPrintf("%s:%d: %v", name, lineNo, err)
			return 1
		}
	}
	if err := scanner.Err(); err != nil {
		errorPrintf("%s: %v", name, err)
		return 1
	}
	return 0
}

func runInteractive(sh *shell) int {
	fmt.Println("valsh: value engine shell. Type help for commands.")

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	for {
		line, err := ln.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if err != nil {
			fmt.Println()
			return 0
		}
		if line != "" {
			ln.AppendHistory(line)
		}
		err = sh.execute(line)
		if errors.Is(err, errQuit) {
			return 0
		}
		if err != nil {
			errorPrintf("%v", err)
		}
	}
}
