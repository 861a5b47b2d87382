package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"balanceup/internal/config"
	"balanceup/internal/ledger"
	applog "balanceup/internal/log"
	"balanceup/internal/prompt"
	"balanceup/internal/storage"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// app is what every command runs against.
type app struct {
	ctx    context.Context
	cfg    *config.Config
	db     *storage.DB
	svc    *ledger.Service
	log    *applog.Logger
	in     *prompt.Reader
	out    io.Writer
	errOut io.Writer
	styles *styles
	now    func() time.Time
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("balanceup", flag.ContinueOnError)
	fs.SetOutput(stderr)

	dbPath := fs.String("db", "", "Path to database file (default $DB_PATH or "+config.DefaultDBPath+")")
	logLevel := fs.String("log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL or warn)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		printUsage(stdout)
		return fmt.Errorf("missing command")
	}
	cmd, ok := lookup(fs.Arg(0))
	if !ok {
		printUsage(stdout)
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}

	config.LoadEnvFile()
	cfg := config.Load()
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Format:    cfg.LogFormat,
		Component: applog.ComponentCLI,
		Output:    stderr,
	})

	db, err := storage.NewDB(cfg.DBPath, storage.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	a := &app{
		ctx:    context.Background(),
		cfg:    cfg,
		db:     db,
		svc:    ledger.New(db, ledger.WithLogger(logger)),
		log:    logger,
		in:     prompt.New(stdin),
		out:    stdout,
		errOut: stderr,
		styles: newStyles(stdout),
		now:    time.Now,
	}
	a.log.DebugContext(a.ctx, "Running command", applog.FieldOperation, cmd.name, applog.FieldPath, cfg.DBPath)
	return cmd.run(a, fs.Args()[1:])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: balanceup [-db <db_path>] [-log-level <level>] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-12s %s\n", c.name, c.summary)
	}
}
