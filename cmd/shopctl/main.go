package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/fjod/deisishop/internal/cart"
	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/config"
	"github.com/fjod/deisishop/internal/fetch"
	"github.com/fjod/deisishop/internal/storage"
	"github.com/fjod/deisishop/internal/view"
	"github.com/fjod/deisishop/internal/viewmodel"
	"github.com/fjod/deisishop/pkg/logger"
)

// session is the single local shopper the CLI acts for.
const session = "default"

type env struct {
	cfg    *config.Config
	out    io.Writer
	log    *slog.Logger
	loader *fetch.Loader

	client *catalog.Client
	db     *sql.DB
	store  *cart.Store
}

func (e *env) catalogClient() *catalog.Client {
	if e.client == nil {
		e.client = catalog.NewClient(e.cfg.CatalogBaseURL,
			catalog.WithRateLimit(e.cfg.CatalogRateLimit),
			catalog.WithLogger(e.log),
		)
	}
	return e.client
}

// cartStore opens the local sqlite cart the first time it is needed.
func (e *env) cartStore(ctx context.Context) (*cart.Store, error) {
	if e.store != nil {
		return e.store, nil
	}
	db, err := storage.OpenSQLite(e.cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db, storage.DialectSQLite); err != nil {
		db.Close()
		return nil, err
	}
	e.db = db
	store, err := cart.NewStore(ctx, storage.NewSQLKV(db), storage.CartKey(session), e.log)
	if err != nil {
		return nil, err
	}
	e.store = store
	return e.store, nil
}

func (e *env) renderer() *view.Renderer {
	return view.NewRenderer(e.cfg.ImageBaseURL)
}

func (e *env) projector() *viewmodel.Projector {
	return viewmodel.NewProjector(e.cfg.CollationLocale)
}

func (e *env) close() {
	if e.db != nil {
		if err := e.db.Close(); err != nil {
			e.log.Error("failed to close cart database", "error", err)
		}
	}
}

type command interface {
	run(ctx context.Context, args []string) error
}

type commandNew func(*env) (command, error)

var commands = map[string]commandNew{
	"add":        newAddCmd,
	"buy":        newBuyCmd,
	"cart":       newCartCmd,
	"categories": newCategoriesCmd,
	"category":   newCategoryCmd,
	"clear":      newClearCmd,
	"product":    newProductCmd,
	"products":   newProductsCmd,
	"remove":     newRemoveCmd,
}

func main() {
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

func runMain(argv []string, stdout, stderr io.Writer) int {
	cfg := config.Load()

	fs := flag.NewFlagSet("shopctl", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&cfg.CatalogBaseURL, "catalog", cfg.CatalogBaseURL, "base `url` of the shop API")
	fs.StringVar(&cfg.ImageBaseURL, "images", cfg.ImageBaseURL, "base `url` for relative product images")
	fs.StringVar(&cfg.SQLitePath, "db", cfg.SQLitePath, "sqlite `path` holding the local cart")
	fs.StringVar(&cfg.LogLevel, "log_level", "warn", "log `level`")
	if err := fs.Parse(argv); err != nil {
		return 2
	}
	cfg.CatalogBaseURL = strings.TrimRight(cfg.CatalogBaseURL, "/")

	e := &env{
		cfg:    cfg,
		out:    stdout,
		log:    logger.NewWithWriter(stderr, "shopctl", cfg.LogLevel),
		loader: fetch.NewLoader(fetch.WithLoadTimeout(cfg.RequestTimeout)),
	}
	defer e.close()

	name := fs.Arg(0)
	if cfn, ok := commands[name]; ok {
		c, err := cfn(e)
		if err != nil {
			fmt.Fprintf(stderr, "FAILED: %s\n", err)
			return 2
		}
		if err := c.run(context.Background(), fs.Args()[1:]); err != nil {
			fmt.Fprintf(stderr, "FAILED: %s\n", err)
			return 2
		}
		return 0
	}

	if name != "" {
		fmt.Fprintf(stderr, "Unknown command '%s'\n", name)
	}

	fmt.Fprintf(stderr, "Available commands:\n")
	cmdList := make([]string, 0, len(commands))
	for name := range commands {
		cmdList = append(cmdList, name)
	}
	sort.Strings(cmdList)
	for _, name := range cmdList {
		fmt.Fprintf(stderr, "\t%s\n", name)
	}
	return 1
}
