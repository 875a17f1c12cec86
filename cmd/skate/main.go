package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rphilander/skate/config"
	skate "github.com/rphilander/skate/core"
	"github.com/rphilander/skate/journal"
)

const cliToolVersion = "skate " + skate.Version

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfgPath, args, err := parseConfigFlag(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg = config.FromEnv(cfg)

	if len(args) == 0 {
		return runRepl(cfg, nil)
	}

	switch args[0] {
	case "--help", "-h", "help":
		printUsage()
		return 0
	case "--version", "-V", "version":
		fmt.Fprintln(os.Stdout, cliToolVersion)
		return 0
	case "repl":
		return runRepl(cfg, args[1:])
	case "run":
		return runFiles(cfg, args[1:])
	case "eval":
		return runEval(cfg, args[1:])
	case "serve":
		return runServe(cfg, args[1:])
	default:
		if strings.HasPrefix(args[0], "-") {
			fmt.Fprintf(os.Stderr, "unknown flag: %s\n", args[0])
			printUsage()
			return 1
		}
		return runFiles(cfg, args)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  skate [--config=path] [repl]")
	fmt.Fprintln(os.Stderr, "  skate [--config=path] run <file>...")
	fmt.Fprintln(os.Stderr, "  skate [--config=path] <file>...")
	fmt.Fprintln(os.Stderr, "  skate [--config=path] eval <expr>")
	fmt.Fprintln(os.Stderr, "  skate [--config=path] serve [--socket=path] [--http=addr]")
	fmt.Fprintln(os.Stderr, "  skate --version")
}

// parseConfigFlag strips a leading --config flag from args.
func parseConfigFlag(args []string) (string, []string, error) {
	path := config.DefaultPath()
	if len(args) == 0 {
		return path, args, nil
	}
	switch {
	case args[0] == "--config":
		if len(args) < 2 {
			return "", nil, errors.New("--config requires a path")
		}
		return args[1], args[2:], nil
	case strings.HasPrefix(args[0], "--config="):
		return strings.TrimPrefix(args[0], "--config="), args[1:], nil
	}
	return path, args, nil
}

// newSession builds a session from cfg, wiring the journal when one is
// configured. The returned func releases both.
func newSession(cfg config.Config) (*skate.Session, func(), error) {
	opts := skate.Options{
		Strict:    cfg.Strict,
		MaxTraces: cfg.MaxTraces,
	}
	var j *journal.Journal
	if cfg.Journal != "" {
		var err error
		j, err = journal.Open(cfg.Journal)
		if err != nil {
			return nil, nil, err
		}
		opts.Recorder = j
	}
	sess := skate.NewSession(opts)
	return sess, func() {
		sess.Close()
		if j != nil {
			j.Close()
		}
	}, nil
}

func runFiles(cfg config.Config, paths []string) int {
	if len(paths) == 0 {
		fmt.Fprintln(os.Stderr, "skate run requires at least one file")
		return 1
	}
	sess, release, err := newSession(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer release()

	for _, path := range paths {
		if err := loadFile(context.Background(), sess, path, os.Stdout); err != nil {
			if errors.Is(err, skate.ErrExit) {
				return 0
			}
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	return 0
}

func runEval(cfg config.Config, args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "skate eval requires an expression")
		return 1
	}
	sess, release, err := newSession(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer release()

	res, err := sess.Eval(context.Background(), strings.Join(args, " "))
	fmt.Fprint(os.Stdout, res.Output)
	if errors.Is(err, skate.ErrExit) {
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Fprintln(os.Stdout, res.Value.Render())
	return 0
}

func runServe(cfg config.Config, args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	sockPath := fs.String("socket", cfg.Socket, "unix socket path")
	httpAddr := fs.String("http", cfg.HTTPAddr, "HTTP listen address (empty disables HTTP)")
	if err := fs.Parse(args); err != nil {
		return 1
	}

	sess, release, err := newSession(cfg)
	if err != nil {
		log.Printf("failed to start session: %v", err)
		return 1
	}
	defer release()

	srv, err := skate.NewServer(sess, *sockPath)
	if err != nil {
		log.Printf("failed to start server: %v", err)
		return 1
	}

	var httpSrv *http.Server
	if *httpAddr != "" {
		httpSrv = &http.Server{Addr: *httpAddr, Handler: srv.HTTPHandler()}
		go func() {
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("http server: %v", err)
			}
		}()
	}

	// Handle shutdown signals
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		log.Println("shutting down...")
		if httpSrv != nil {
			httpSrv.Shutdown(context.Background())
		}
		srv.Close()
	}()

	log.Printf("skate session %s listening (socket: %s, http: %s)", sess.ID, *sockPath, displayAddr(*httpAddr))
	srv.Serve()
	return 0
}

func displayAddr(addr string) string {
	if addr == "" {
		return "off"
	}
	return addr
}
