/*
Sheetlex highlights Sheet music notation.

It reads Sheet text from the given files, or from stdin if none are given, and
writes it to stdout highlighted in the chosen format. Lines are tokenized one
at a time, with each line starting in the state the line before it ended in.

Usage:

	sheetlex [flags] [FILE...]
	sheetlex [flags] -i

The flags are:

	-v, --version
		Give the current version of sheetlex and its grammar and then exit.

	-f, --format FORMAT
		Write output in the given format. FORMAT is one of "ansi" (terminal
		colors, the default), "html", "tokens" (a table of every token), or
		"json" (one JSON object per line).

	-c, --config FILE
		Read the style theme from the [theme] table of the given TOML file. If
		not given, defaults to the value of environment variable
		SHEETLEX_CONFIG, and if that is not given, the built-in theme is used.

	-s, --state STATE
		Start the first line in the given state instead of the start state.

	-i, --interactive
		Start an interactive session that highlights each line as it is typed.
		In the session, lines beginning with ":" are commands; type ":help" to
		list them.

	-d, --direct
		Force reading directly from the console as opposed to using GNU readline
		based routines for reading input in an interactive session, even if
		launched in a tty with stdin and stdout.

	--color
		Always use color escapes for ansi output, even when stdout is not a
		terminal.

	--grammar
		Print every state and rule of the grammar and then exit.

	--verbose
		Log debug messages to stderr.
*/
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dekarrin/sheetlex"
	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/dekarrin/sheetlex/internal/theme"
	"github.com/dekarrin/sheetlex/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
)

const (
	// ExitSuccess indicates a successful program execution.
	ExitSuccess = iota

	// ExitInitError indicates an unsuccessful program execution due to bad
	// usage or an issue initializing the engine.
	ExitInitError

	// ExitRuntimeError indicates an unsuccessful program execution due to a
	// problem while highlighting.
	ExitRuntimeError
)

const (
	EnvConfig = "SHEETLEX_CONFIG"

	grammarTableWidth = 120
)

var (
	returnCode      int = ExitSuccess
	flagVersion         = pflag.BoolP("version", "v", false, "Give the current version of sheetlex and then exit.")
	flagFormat          = pflag.StringP("format", "f", render.FormatANSI.String(), "Write output in the given format: ansi, html, tokens, or json.")
	flagConfig          = pflag.StringP("config", "c", "", "Read the style theme from the given TOML config file.")
	flagState           = pflag.StringP("state", "s", "", "Start the first line in the given state.")
	flagInteractive     = pflag.BoolP("interactive", "i", false, "Highlight each line as it is typed.")
	flagDirect          = pflag.BoolP("direct", "d", false, "Force reading directly from stdin instead of going through GNU readline where possible.")
	flagColor           = pflag.Bool("color", false, "Always use color escapes for ansi output.")
	flagGrammar         = pflag.Bool("grammar", false, "Print the grammar and then exit.")
	flagVerbose         = pflag.Bool("verbose", false, "Log debug messages to stderr.")
)

func main() {
	defer func() {
		if panicErr := recover(); panicErr != nil {
			// we are panicking, make sure we dont lose the panic just because
			// we checked
			panic(panicErr)
		} else {
			os.Exit(returnCode)
		}
	}()

	pflag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}).
		With().Timestamp().Logger().
		Level(zerolog.WarnLevel)
	if *flagVerbose {
		log = log.Level(zerolog.DebugLevel)
	}

	if *flagVersion {
		fmt.Printf("%s (grammar revision %s)\n", version.Current, version.Grammar)
		return
	}

	if *flagGrammar {
		fmt.Print(render.GrammarTable(grammar.Sheet(), grammarTableWidth))
		return
	}

	files := pflag.Args()
	if *flagInteractive && len(files) > 0 {
		fmt.Fprintf(os.Stderr, "Files cannot be given with --interactive\nDo -h for help.\n")
		returnCode = ExitInitError
		return
	}

	format, err := render.ParseFormat(*flagFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\nDo -h for help.\n", err.Error())
		returnCode = ExitInitError
		return
	}

	th := theme.Default()
	configFile := os.Getenv(EnvConfig)
	if pflag.Lookup("config").Changed {
		configFile = *flagConfig
	}
	if configFile != "" {
		th, err = theme.Load(configFile)
		if err != nil {
			log.Error().Err(err).Str("file", configFile).Msg("Could not load config")
			returnCode = ExitInitError
			return
		}
		log.Debug().Str("file", configFile).Str("theme", th.Name).Msg("Loaded theme")
	}

	eng, err := sheetlex.New(os.Stdin, os.Stdout, sheetlex.Options{
		Format:      format,
		Theme:       th,
		StartState:  *flagState,
		ForceColor:  *flagColor,
		ForceDirect: *flagDirect || !*flagInteractive,
		Logger:      &log,
	})
	if err != nil {
		log.Error().Err(err).Msg("Could not start engine")
		returnCode = ExitInitError
		return
	}
	defer eng.Close()

	switch {
	case *flagInteractive:
		err = eng.RunUntilQuit()
	case len(files) == 0:
		err = eng.Highlight(os.Stdin)
	default:
		for _, f := range files {
			log.Debug().Str("file", f).Msg("Highlighting file")
			if err = eng.HighlightFile(f); err != nil {
				break
			}
		}
	}
	if err != nil {
		log.Error().Err(err).Msg("Highlighting failed")
		returnCode = ExitRuntimeError
		return
	}
}
