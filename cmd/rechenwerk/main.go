package main

import (
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/codefionn/rechenwerk/internal/cache"
	"github.com/codefionn/rechenwerk/internal/cli"
	"github.com/codefionn/rechenwerk/internal/config"
	"github.com/codefionn/rechenwerk/internal/engine"
	"github.com/codefionn/rechenwerk/internal/history"
	"github.com/codefionn/rechenwerk/internal/keypad"
	"github.com/codefionn/rechenwerk/internal/logger"
	"github.com/codefionn/rechenwerk/internal/pidfile"
	"github.com/codefionn/rechenwerk/internal/server"
	"github.com/codefionn/rechenwerk/internal/tui"
)

type options struct {
	expression string
	serve      bool
	port       int
	width      int
	strict     bool
	noHistory  bool
	logLevel   string
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() (err error) {
	opts, parseErr := parseCLIArgs(os.Args[1:])
	if parseErr != nil {
		if errors.Is(parseErr, flag.ErrHelp) {
			return nil
		}
		return parseErr
	}

	var loggerInitialized bool
	defer func() {
		if !loggerInitialized {
			return
		}
		if err != nil {
			logger.Error("Fatal error: %v", err)
		}
		if closeErr := logger.Global().Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close logger: %v\n", closeErr)
		}
	}()

	cfg, err := config.Load(config.GetConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Allow environment variables to override config file values for logging.
	if envLevel := strings.TrimSpace(os.Getenv("RECHENWERK_LOG_LEVEL")); envLevel != "" {
		cfg.LogLevel = envLevel
	}
	if envPath := strings.TrimSpace(os.Getenv("RECHENWERK_LOG_PATH")); envPath != "" {
		cfg.LogPath = envPath
	}

	applyFlags(cfg, opts)

	logLevel := logger.ParseLevel(cfg.LogLevel)
	if opts.serve {
		// Server mode owns no UI; its logs go to stderr.
		logger.InitConsole(logLevel)
	} else {
		if initErr := logger.Init(logLevel, cfg.LogPath); initErr != nil {
			return fmt.Errorf("failed to initialize logger: %w", initErr)
		}
	}
	loggerInitialized = true

	logger.Info("rechenwerk starting")
	logger.Debug("Configuration loaded: width=%d, strict=%v, log_level=%s",
		cfg.MaxDisplayWidth, cfg.StrictTokens, cfg.LogLevel)

	eng := engine.New(cfg.EngineConfig())

	var store *history.Store
	if !cfg.DisableHistory {
		store, err = history.Open(cfg.HistoryPath)
		if err != nil {
			// The calculator stays usable without persistence.
			logger.Warn("Failed to open history: %v", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	memo := cache.New(time.Duration(cfg.CacheTTL)*time.Second, cfg.MaxCacheEntries)

	switch {
	case opts.serve:
		return runServer(cfg, eng, memo, store)
	case opts.expression != "":
		return runOnce(eng, memo, store, opts.expression)
	case term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd())):
		return runTUI(cfg, eng, memo, store)
	default:
		return runPipe(eng, memo, store)
	}
}

func parseCLIArgs(args []string) (*options, error) {
	fs := flag.NewFlagSet("rechenwerk", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	opts := &options{}
	var showHelp bool

	fs.BoolVar(&opts.serve, "serve", false, "Run the HTTP/WebSocket API server")
	fs.IntVar(&opts.port, "port", 0, "Port for the API server (overrides config)")
	fs.IntVar(&opts.width, "width", 0, "Maximum width of formatted results (overrides config)")
	fs.BoolVar(&opts.strict, "strict", false, "Reject unrecognized characters instead of skipping them")
	fs.BoolVar(&opts.noHistory, "no-history", false, "Do not record evaluations in the history database")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error or none (overrides config)")
	fs.BoolVar(&showHelp, "help", false, "Show CLI usage information")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: %s [options] [\"expression\"]\n\n", os.Args[0])
		fmt.Fprintln(fs.Output(), "Without arguments an interactive calculator starts; with an expression")
		fmt.Fprintln(fs.Output(), "it prints the result and exits. Piped input is evaluated line by line.")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Options:")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, flag.ErrHelp
		}
		return nil, err
	}

	if showHelp {
		fs.Usage()
		return nil, flag.ErrHelp
	}

	opts.expression = strings.TrimSpace(strings.Join(fs.Args(), " "))

	if opts.serve && opts.expression != "" {
		return nil, fmt.Errorf("server mode does not accept expression arguments")
	}

	return opts, nil
}

// applyFlags lets command-line flags override loaded configuration values.
func applyFlags(cfg *config.Config, opts *options) {
	if opts.port > 0 {
		cfg.Port = opts.port
	}
	if opts.width > 0 {
		cfg.MaxDisplayWidth = opts.width
	}
	if opts.strict {
		cfg.StrictTokens = true
	}
	if opts.noHistory {
		cfg.DisableHistory = true
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
}

func runOnce(eng *engine.Engine, memo *cache.Cache, store *history.Store, expression string) error {
	return cli.New(eng, memo, store).Run(expression)
}

func runPipe(eng *engine.Engine, memo *cache.Cache, store *history.Store) error {
	return cli.New(eng, memo, store).RunPipe(os.Stdin)
}

func runTUI(cfg *config.Config, eng *engine.Engine, memo *cache.Cache, store *history.Store) error {
	logger.Info("Running in TUI mode")

	pad := keypad.New(eng, memo, cfg.InputDigitLimit)
	model := tui.New(pad, store, cfg.HistoryLimit)

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

func runServer(cfg *config.Config, eng *engine.Engine, memo *cache.Cache, store *history.Store) error {
	pf := pidfile.New(cfg.PidPath)
	if pf.IsRunning() {
		return fmt.Errorf("another instance is already serving (pidfile %s)", cfg.PidPath)
	}
	if err := pf.Write(); err != nil {
		logger.Warn("Failed to write pidfile: %v", err)
	} else {
		defer func() {
			if removeErr := pf.Remove(); removeErr != nil {
				logger.Warn("Failed to remove pidfile: %v", removeErr)
			}
		}()
	}

	srv := server.NewServer(eng, memo, store, cfg.Port)

	// Pick up log level changes without a restart.
	watcher, err := config.Watch(config.GetConfigPath(), func(next *config.Config) {
		logger.Global().SetLevel(logger.ParseLevel(next.LogLevel))
	})
	if err != nil {
		logger.Warn("Config watch unavailable: %v", err)
	} else {
		defer watcher.Close()
	}

	errCh := make(chan error, 1)
	go func() {
		if serveErr := srv.Start(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errCh <- serveErr
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case serveErr := <-errCh:
		return serveErr
	case sig := <-sigCh:
		logger.Info("Received signal %v, shutting down", sig)
		return srv.Stop()
	}
}
