package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"centerview/internal/config"
	"centerview/internal/db"
	"centerview/internal/fixture"
	"centerview/internal/ingest"
	"centerview/internal/server"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = ""
)

const shutdownTimeout = 10 * time.Second

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "serve":
			runServe(os.Args[2:])
			return
		case "seed":
			runSeed(os.Args[2:])
			return
		case "import":
			runImport(os.Args[2:])
			return
		case "version", "--version", "-v":
			fmt.Printf("centerview %s (commit %s, built %s)\n",
				version, commit, buildDate)
			return
		case "help", "--help", "-h":
			printUsage()
			return
		}
	}

	runServe(os.Args[1:])
}

func printUsage() {
	fmt.Printf(`centerview %s - facility check-in metrics server

Stores healing-machine check-ins in SQLite and serves trend,
leaderboard, machine, and comparison metrics over a local JSON API.

Usage:
  centerview [flags]            Start the server (default command)
  centerview serve [flags]      Start the server (explicit)
  centerview seed [flags]       Load a roster and generate history
  centerview import <file>      Import JSONL check-in events
  centerview version            Show version information
  centerview help               Show this help

Server flags:
  -host string        Host to bind to (default "127.0.0.1")
  -port int           Port to listen on (default 8265)
  -data-dir string    Data directory (database, config)

Seed flags:
  -fixture string     Roster YAML file (required)
  -days int           Days of history to generate (default 30)
  -seed int           Random seed (default: current time)

Environment variables:
  CENTERVIEW_HOST       Host to bind to
  CENTERVIEW_PORT       Port to listen on
  CENTERVIEW_DATA_DIR   Data directory (database, config)

Data is stored in ~/.centerview/ by default.
`, version)
}

func runServe(args []string) {
	cfg := mustLoadConfig(args)
	database := mustOpenDB(cfg)
	defer database.Close()

	port := server.FindAvailablePort(cfg.Host, cfg.Port)
	if port != cfg.Port {
		fmt.Printf("Port %d in use, using %d\n", cfg.Port, port)
	}
	cfg.Port = port

	srv := server.New(cfg, database,
		server.WithVersion(server.VersionInfo{
			Version:   version,
			Commit:    commit,
			BuildDate: buildDate,
		}),
	)

	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	go func() {
		err := config.Watch(ctx, cfg, srv.UpdateConfig)
		if err != nil {
			log.Printf("warning: config watcher unavailable: %v", err)
		}
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	fmt.Printf("centerview %s listening at http://%s:%d\n",
		version, cfg.Host, cfg.Port)

	select {
	case err := <-errCh:
		log.Fatalf("server error: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(), shutdownTimeout,
	)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

func runSeed(args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	fixturePath := fs.String("fixture", "", "roster YAML file")
	days := fs.Int("days", 30, "days of history to generate")
	seed := fs.Int64("seed", time.Now().UnixNano(), "random seed")
	config.RegisterFlags(fs, mustDefaultConfig())
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	if *fixturePath == "" {
		log.Fatal("seed: -fixture is required")
	}

	cfg := mustLoadConfigFrom(fs)
	database := mustOpenDB(cfg)
	defer database.Close()

	roster, err := fixture.Load(*fixturePath)
	if err != nil {
		log.Fatalf("loading fixture: %v", err)
	}
	if err := roster.Apply(database); err != nil {
		log.Fatalf("applying roster: %v", err)
	}

	rng := rand.New(rand.NewSource(*seed))
	n, err := fixture.SeedHistory(
		database, roster, *days, time.Now().UTC(), rng,
	)
	if err != nil {
		log.Fatalf("seeding history: %v", err)
	}
	fmt.Printf(
		"Seeded %d subjects, %d machines, %d check-ins over %d days\n",
		len(roster.Subjects), len(roster.Machines), n, *days,
	)
}

func runImport(args []string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	config.RegisterFlags(fs, mustDefaultConfig())
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	if fs.NArg() != 1 {
		log.Fatal("import: expected exactly one JSONL file")
	}

	cfg := mustLoadConfigFrom(fs)
	database := mustOpenDB(cfg)
	defer database.Close()

	res, err := ingest.ImportFile(database, fs.Arg(0))
	if err != nil {
		log.Fatalf("importing %s: %v", fs.Arg(0), err)
	}
	fmt.Printf("Imported %s\n", res)
}

func mustOpenDB(cfg config.Config) *db.DB {
	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	return database
}

func mustDefaultConfig() config.Config {
	cfg, err := config.Default()
	if err != nil {
		log.Fatalf("loading defaults: %v", err)
	}
	return cfg
}

func mustLoadConfig(args []string) config.Config {
	fs := flag.NewFlagSet("centerview", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(),
			"Usage: centerview [serve] [flags]\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.RegisterFlags(fs, mustDefaultConfig())
	if err := fs.Parse(args); err != nil {
		log.Fatalf("parsing flags: %v", err)
	}
	return mustLoadConfigFrom(fs)
}

func mustLoadConfigFrom(fs *flag.FlagSet) config.Config {
	cfg, err := config.Load(fs)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}
	return cfg
}
