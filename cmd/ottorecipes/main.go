// Command ottorecipes is a terminal recipe assistant: describe what is in
// the fridge, get a recipe back, keep the ones you like.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hammamikhairi/ottorecipes/internal/config"
	"github.com/hammamikhairi/ottorecipes/internal/conversation"
	"github.com/hammamikhairi/ottorecipes/internal/display"
	"github.com/hammamikhairi/ottorecipes/internal/domain"
	"github.com/hammamikhairi/ottorecipes/internal/gpt"
	"github.com/hammamikhairi/ottorecipes/internal/httpapi"
	"github.com/hammamikhairi/ottorecipes/internal/logger"
	"github.com/hammamikhairi/ottorecipes/internal/recipe"
	"github.com/hammamikhairi/ottorecipes/internal/session"
	"github.com/hammamikhairi/ottorecipes/internal/storage"
)

const defaultLogFile = ".ottorecipes/ottorecipes.log"

func main() {
	cfg := config.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", "", "file to write logs to (\"stderr\" for console; default "+defaultLogFile+" in the terminal UI)")
	serve := flag.Bool("http", false, "serve the JSON API on HTTP_ADDR instead of the terminal UI")
	dbURL := flag.String("db", cfg.DatabaseURL, "PostgreSQL URL for saved recipes (default: in-memory)")
	noAI := flag.Bool("no-ai", false, "use the built-in recipe catalog even if GPT keys are set")
	seed := flag.Bool("seed", false, "save the built-in recipes when the store is empty")
	flag.Parse()

	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// The terminal UI owns stdout/stderr, so logs go to a file there.
	path := *logFile
	if path == "" && !*serve && display.IsTerminal() {
		path = defaultLogFile
	}

	var logOut io.Writer = os.Stderr
	if path != "" && path != "stderr" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Third-party libraries logging through the standard package end up
	// in the same place.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	var logOpts []logger.Option
	if cfg.Development() {
		logOpts = append(logOpts, logger.WithConsole())
	}
	log := logger.New(logLevel, logOut, logOpts...)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, closeStore, err := openStore(ctx, *dbURL, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	catalog := recipe.NewCatalog(log)
	if *seed {
		if err := seedStore(ctx, store, catalog, log); err != nil {
			log.Error("seeding store: %v", err)
		}
	}

	var generator domain.RecipeGenerator = catalog
	if cfg.AIEnabled() && !*noAI {
		clientOpts := []gpt.ClientOption{gpt.WithHTTPTimeout(cfg.GPTTimeout), gpt.WithJSONMode()}
		if cfg.GPTModel != "" {
			clientOpts = append(clientOpts, gpt.WithModel(cfg.GPTModel))
		}
		generator = gpt.NewGenerator(gpt.NewClient(cfg.GPTEndpoint, cfg.GPTKey, log, clientOpts...), log)
		log.Info("AI generator enabled")
	} else if !*noAI {
		log.Info("AI generator disabled: set GPT_CHAT_KEY and GPT_CHAT_ENDPOINT env vars to enable")
	}

	ctrl := session.New(generator, store, log, session.WithGenerationTimeout(cfg.GenerationWait))
	defer ctrl.Close()

	parser := conversation.NewCommandParser(log)

	switch {
	case *serve:
		if err := serveHTTP(ctrl, cfg, log); err != nil {
			log.Error("http: %v", err)
			os.Exit(1)
		}

	case display.IsTerminal():
		ui := display.NewUI(ctrl, display.WithRecentLimit(cfg.RecentLimit))
		defer ctrl.Subscribe(ui.Listener())()

		app := &cliApp{
			ctrl:     ctrl,
			parser:   parser,
			notifier: ui,
			screen:   ui,
			log:      log,
			async:    true,
		}

		fmt.Println(display.RenderBanner())
		fmt.Println(display.BannerStyle.Render("  Type /help for commands, /quit to exit."))
		fmt.Println()

		go func() {
			ui.WaitReady()
			app.run(ctx)
			ui.Quit()
		}()

		// Bubble Tea owns the terminal until quit.
		if err := ui.Run(); err != nil {
			log.Error("display: %v", err)
		}
		cancel()

	default:
		line := display.NewLineUI(ctrl, os.Stdin, os.Stdout, display.WithRecentLimit(cfg.RecentLimit))
		defer ctrl.Subscribe(line.Listener())()

		app := &cliApp{
			ctrl:     ctrl,
			parser:   parser,
			notifier: conversation.NewCLINotifier(log, line.Printf, conversation.WithoutColor()),
			screen:   line,
			log:      log,
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			app.run(ctx)
			line.Quit()
		}()

		if err := line.Run(); err != nil {
			log.Error("reading input: %v", err)
		}
		<-done
	}
}

// openStore picks PostgreSQL when a URL is given, memory otherwise.
func openStore(ctx context.Context, url string, log *logger.Logger) (domain.RecipeStore, func(), error) {
	if url == "" {
		log.Info("using in-memory recipe store")
		return storage.NewMemoryStore(log), func() {}, nil
	}

	pool, err := storage.NewPool(ctx, url)
	if err != nil {
		return nil, nil, err
	}
	pg := storage.NewPostgresStore(pool, log)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	log.Info("using postgres recipe store")
	return pg, pool.Close, nil
}

// seedStore saves the catalog recipes into an empty store.
func seedStore(ctx context.Context, store domain.RecipeStore, catalog *recipe.Catalog, log *logger.Logger) error {
	existing, err := store.ListAll(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug("store has %d recipes, not seeding", len(existing))
		return nil
	}
	for _, r := range catalog.Recipes() {
		if _, err := store.Save(ctx, r); err != nil {
			return fmt.Errorf("seed %q: %w", r.Title, err)
		}
	}
	log.Info("seeded %d recipes", len(catalog.Recipes()))
	return nil
}

// serveHTTP runs the JSON API until SIGINT or SIGTERM.
func serveHTTP(ctrl *session.Controller, cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.NewRouter(ctrl, log, httpapi.WithRecentLimit(cfg.RecentLimit)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
