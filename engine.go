// Package sheetlex contains a CLI-driven engine for highlighting Sheet music
// notation, either whole files at once or line by line from an interactive
// shell that shows the tokenizer state as it goes.
package sheetlex

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/dekarrin/sheetlex/internal/grammar"
	"github.com/dekarrin/sheetlex/internal/input"
	"github.com/dekarrin/sheetlex/internal/lex"
	"github.com/dekarrin/sheetlex/internal/render"
	"github.com/dekarrin/sheetlex/internal/shellerr"
	"github.com/dekarrin/sheetlex/internal/theme"
	"github.com/dekarrin/sheetlex/internal/util"
	"github.com/rs/zerolog"
)

const consoleOutputWidth = 80

// Options configure an Engine. The zero value highlights with ANSI escapes
// and the default theme, starting in the grammar's start state.
type Options struct {
	Format     render.Format
	Theme      theme.Theme
	StartState string

	// ForceColor makes ANSI output use color escapes even when the output is
	// not a terminal.
	ForceColor bool

	// ForceDirect reads directly from the input stream even when it is a TTY.
	ForceDirect bool

	Logger *zerolog.Logger
}

// Engine contains the things needed to highlight Sheet text read from an
// input stream, or from files, to an output stream.
type Engine struct {
	lexer       *lex.Engine
	r           render.Renderer
	in          input.LineReader
	out         *bufio.Writer
	log         zerolog.Logger
	start       string
	state       string
	lineNum     int
	forceDirect bool
	running     bool
}

// New creates a new engine ready to operate on the given input and output
// streams. It will immediately open a buffered writer on the output stream.
//
// If nil is given for the input stream, stdin is used. If nil is given for the
// output stream, stdout is used. Readline is used for input only when reading
// from stdin and writing to stdout, and ForceDirect is not set.
func New(inputStream io.Reader, outputStream io.Writer, opts Options) (*Engine, error) {
	if inputStream == nil {
		inputStream = os.Stdin
	}
	if outputStream == nil {
		outputStream = os.Stdout
	}
	if opts.Format == "" {
		opts.Format = render.FormatANSI
	}

	log := zerolog.Nop()
	if opts.Logger != nil {
		log = *opts.Logger
	}

	lexer := lex.New(nil).WithLogger(log)

	start := opts.StartState
	if start == "" {
		start = lexer.Grammar().Start()
	}
	if !lexer.Grammar().Has(start) {
		return nil, fmt.Errorf("no state named %q; must be one of: %s", start, strings.Join(lexer.Grammar().States(), ", "))
	}

	r, err := render.New(opts.Format, render.Options{
		Theme: opts.Theme,
		Color: opts.ForceColor,
		Width: consoleOutputWidth,
	})
	if err != nil {
		return nil, err
	}

	eng := &Engine{
		lexer:       lexer,
		r:           r,
		out:         bufio.NewWriter(outputStream),
		log:         log,
		start:       start,
		state:       start,
		forceDirect: opts.ForceDirect,
	}

	useReadline := !opts.ForceDirect && inputStream == os.Stdin && outputStream == os.Stdout

	if useReadline {
		eng.in, err = input.NewInteractiveReader(eng.prompt())
		if err != nil {
			return nil, fmt.Errorf("initializing interactive-mode input reader: %w", err)
		}
	} else {
		eng.in = input.NewDirectReader(inputStream)
	}
	eng.in.AllowBlank(true)

	return eng, nil
}

// Close closes all resources associated with the Engine, including any
// readline-related resources created for interactive mode.
func (eng *Engine) Close() error {
	if eng.running {
		return fmt.Errorf("cannot close a running engine")
	}

	err := eng.in.Close()
	if err != nil {
		return fmt.Errorf("close line reader: %w", err)
	}

	return nil
}

// State returns the state the next line will be tokenized in.
func (eng *Engine) State() string {
	return eng.state
}

// HighlightFile highlights the contents of the file at path to the output
// stream.
func (eng *Engine) HighlightFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	return eng.Highlight(f)
}

// Highlight reads all of r and writes it highlighted to the output stream,
// wrapped in the renderer's header and footer. Each call starts over from the
// engine's starting state.
func (eng *Engine) Highlight(r io.Reader) error {
	lines := input.NewDirectReader(r)
	lines.AllowBlank(true)

	eng.state = eng.start
	eng.lineNum = 0

	if err := eng.write(eng.r.Header()); err != nil {
		return err
	}

	for {
		line, err := lines.ReadLine()
		if err == io.EOF {
			break
		} else if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		if err := eng.highlightLine(line); err != nil {
			return err
		}
	}

	eng.log.Debug().Int("lines", eng.lineNum).Str("end_state", eng.state).Msg("highlighted document")
	return eng.write(eng.r.Footer())
}

func (eng *Engine) highlightLine(line string) error {
	eng.lineNum++
	toks, next := eng.lexer.TokenizeLineAt(eng.state, line, eng.lineNum)
	eng.state = next

	rendered, err := eng.r.Line(eng.lineNum, line, toks, next)
	if err != nil {
		return fmt.Errorf("line %d: %w", eng.lineNum, err)
	}
	return eng.write(rendered + "\n")
}

// RunUntilQuit begins reading lines from the input stream and printing them
// highlighted, one at a time, until the ":quit" command is received or input
// ends. The tokenizer state carries from each line to the next and is shown in
// the prompt.
func (eng *Engine) RunUntilQuit() error {
	introMsg := "Sheet highlighting shell\n"
	if eng.forceDirect {
		introMsg += "(direct input mode)\n"
	}
	introMsg += "========================\n"
	introMsg += "Type :help for commands.\n"
	introMsg += "\n"

	if err := eng.write(introMsg); err != nil {
		return err
	}

	eng.running = true
	// so we dont have to remember to do this on every returned error condition
	defer func() {
		eng.running = false
	}()

	for eng.running {
		eng.in.SetPrompt(eng.prompt())
		line, err := eng.in.ReadLine()
		if err == io.EOF || errors.Is(err, readline.ErrInterrupt) {
			break
		} else if err != nil {
			return fmt.Errorf("get input line: %w", err)
		}

		if strings.HasPrefix(line, ":") {
			if err := eng.runCommand(strings.Fields(line[1:])); err != nil {
				if !shellerr.IsCommand(err) {
					return err
				}
				eng.log.Debug().Err(err).Msg("command rejected")
				if err := eng.wrapped(shellerr.UserMessage(err)); err != nil {
					return err
				}
			}
			continue
		}

		if err := eng.highlightLine(line); err != nil {
			return err
		}
	}

	return eng.write("Goodbye\n")
}

func (eng *Engine) runCommand(args []string) error {
	if len(args) == 0 {
		return eng.write("Type :help for commands.\n")
	}

	switch strings.ToLower(args[0]) {
	case "q", "quit", "exit":
		eng.running = false
		return nil
	case "reset":
		eng.state = eng.start
		eng.lineNum = 0
		return eng.write("State reset to " + eng.start + "\n")
	case "state":
		if len(args) < 2 {
			return eng.write(eng.state + "\n")
		}
		if !eng.lexer.Grammar().Has(args[1]) {
			return shellerr.Commandf("No state named %q. States are: %s.", args[1], util.MakeTextList(eng.lexer.Grammar().States(), false))
		}
		eng.state = args[1]
		return nil
	case "grammar":
		return eng.write(render.GrammarTable(eng.lexer.Grammar(), consoleOutputWidth*2) + "\n")
	case "help":
		help := [][]string{
			{"Command", "Effect"},
			{":state [NAME]", "Show the current state, or continue from state NAME"},
			{":reset", "Go back to the starting state and line 1"},
			{":grammar", "Show every rule of every state"},
			{":quit", "Leave the shell"},
		}
		out := rosed.Edit("").
			InsertTableOpts(0, help, consoleOutputWidth, rosed.Options{TableHeaders: true}).
			String()
		return eng.write(out + "\n")
	default:
		return shellerr.Commandf("Unknown command %q. Type :help for commands.", args[0])
	}
}

func (eng *Engine) prompt() string {
	if eng.state == grammar.StartState {
		return "> "
	}
	return "[" + eng.state + "]> "
}

func (eng *Engine) wrapped(msg string) error {
	return eng.write(rosed.Edit(msg).Wrap(consoleOutputWidth).String() + "\n")
}

func (eng *Engine) write(s string) error {
	if _, err := eng.out.WriteString(s); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}
	if err := eng.out.Flush(); err != nil {
		return fmt.Errorf("could not flush output: %w", err)
	}
	return nil
}
