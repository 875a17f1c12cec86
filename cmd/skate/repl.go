package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/peterh/liner"

	"github.com/rphilander/skate/config"
	skate "github.com/rphilander/skate/core"
)

// lineReader is the part of *liner.State the loop needs.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type repl struct {
	sess   *skate.Session
	in     lineReader
	out    io.Writer
	prompt string
}

var astDumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

const replHelp = `Enter an expression to evaluate it, e.g. (+ 1 2) or (def 'x' 42).
Commands:
  :help         show this help
  :quit, :q     leave the REPL (as does (exit))
  :env          list every binding without evaluating (env)
  :traces [n]   show the last n evaluations (default 10)
  :ast <expr>   show the parsed expression tree
`

func runRepl(cfg config.Config, args []string) int {
	if len(args) > 0 {
		fmt.Fprintf(os.Stderr, "skate repl does not take arguments (received %s)\n", strings.Join(args, " "))
		return 1
	}
	sess, release, err := newSession(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer release()

	ctx := context.Background()
	for _, path := range cfg.Load {
		if err := loadFile(ctx, sess, path, os.Stdout); err != nil {
			if errors.Is(err, skate.ErrExit) {
				return 0
			}
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetCompleter(func(l string) []string {
		names, err := sess.Names(ctx)
		if err != nil {
			return nil
		}
		return completions(names, l)
	})
	if cfg.HistoryFile != "" {
		if f, err := os.Open(cfg.HistoryFile); err == nil {
			line.ReadHistory(f)
			f.Close()
		}
	}

	fmt.Fprintf(os.Stdout, "%s (:help for commands, :quit to leave)\n", cliToolVersion)
	r := &repl{sess: sess, in: line, out: os.Stdout, prompt: cfg.Prompt}
	loopErr := r.loop(ctx)

	if cfg.HistoryFile != "" {
		if f, err := os.Create(cfg.HistoryFile); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}
	if loopErr != nil {
		fmt.Fprintln(os.Stderr, loopErr)
		return 1
	}
	return 0
}

// loop reads and evaluates lines until end of input, :quit, or (exit).
// Evaluation errors are printed and never end the loop.
func (r *repl) loop(ctx context.Context) error {
	for {
		line, err := r.in.Prompt(r.prompt)
		if errors.Is(err, liner.ErrPromptAborted) {
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.in.AppendHistory(line)

		if strings.HasPrefix(line, ":") {
			if r.command(line) {
				return nil
			}
			continue
		}
		if r.evalLine(ctx, line) {
			return nil
		}
	}
}

// evalLine evaluates one line and prints its output and result. It reports
// whether the line asked to exit.
func (r *repl) evalLine(ctx context.Context, line string) bool {
	res, err := r.sess.Eval(ctx, line)
	io.WriteString(r.out, res.Output)
	switch {
	case errors.Is(err, skate.ErrExit):
		return true
	case err != nil:
		fmt.Fprintf(r.out, "error: %v\n", err)
	default:
		fmt.Fprintln(r.out, res.Value.Render())
	}
	return false
}

// command runs a ':' command and reports whether the REPL should quit.
func (r *repl) command(line string) bool {
	name, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch name {
	case ":quit", ":q":
		return true
	case ":help":
		io.WriteString(r.out, replHelp)
	case ":env":
		dump, err := r.sess.Dump(context.Background())
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		io.WriteString(r.out, dump)
	case ":traces":
		n := 10
		if rest != "" {
			v, err := strconv.Atoi(rest)
			if err != nil || v < 0 {
				fmt.Fprintf(r.out, "error: :traces expects a count, got %q\n", rest)
				return false
			}
			n = v
		}
		for _, t := range r.sess.Traces(n) {
			if t.Failed() {
				fmt.Fprintf(r.out, "%s  %s  error: %s\n", t.Timestamp, t.Input, t.Error)
			} else {
				fmt.Fprintf(r.out, "%s  %s  %s\n", t.Timestamp, t.Input, t.Result.Render())
			}
		}
	case ":ast":
		x, err := skate.Read(rest)
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
			return false
		}
		astDumper.Fdump(r.out, x)
	default:
		fmt.Fprintf(r.out, "error: unknown command %s (try :help)\n", name)
	}
	return false
}

// completions completes the token under the cursor against bound names.
func completions(names []string, line string) []string {
	start := strings.LastIndexAny(line, " \t()") + 1
	prefix := line[start:]
	if prefix == "" {
		return nil
	}
	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, line[:start]+name)
		}
	}
	return out
}

func loadFile(ctx context.Context, sess *skate.Session, path string, out io.Writer) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	res, err := sess.Load(ctx, string(data))
	io.WriteString(out, res.Output)
	if err != nil {
		if errors.Is(err, skate.ErrExit) {
			return err
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
