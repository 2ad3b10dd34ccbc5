package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"itemfinder/internal/auth"
	"itemfinder/internal/config"
	"itemfinder/internal/quote"
	"itemfinder/internal/server"
	"itemfinder/internal/session"
	"itemfinder/internal/storage"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})

	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	authSvc := auth.NewService(db, cfg)

	cmd := os.Args[1]
	switch cmd {
	case "serve":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		url := fs.String("url", "", "data-source url for this session (overrides stored config, not persisted)")
		_ = fs.Parse(os.Args[2:])
		sess := session.New(db, cfg, *url, log.Logger)
		if _, ok := sess.SourceURL(); ok {
			if _, err := sess.Reload(context.Background()); err != nil {
				log.Warn().Err(err).Msg("initial inventory load failed; continuing without inventory")
			}
		}
		srv := server.New(sess, authSvc, log.Logger)
		must(srv.Run(context.Background(), cfg.HTTPAddr))
	case "inventory:fetch":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		url := fs.String("url", "", "data-source url (overrides stored config)")
		_ = fs.Parse(os.Args[2:])
		sess := session.New(db, cfg, *url, log.Logger)
		count, err := sess.Reload(context.Background())
		must(err)
		fmt.Printf("inventory loaded: %d items\n", count)
	case "inventory:log":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		limit := fs.Int("limit", 10, "number of entries")
		_ = fs.Parse(os.Args[2:])
		rows, err := db.ListFetchLog(*limit)
		must(err)
		for _, row := range rows {
			fmt.Printf("%s  %-5s items=%-6d tookMs=%-8.0f %s\n", row.CreatedAt, row.Outcome, row.ItemCount, row.TookMs, row.SourceURL)
		}
	case "run":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		url := fs.String("url", "", "data-source url")
		q := fs.String("q", "", "search term; empty quotes everything fetched")
		discount := fs.String("discount", "", "discount percent")
		out := fs.String("out", "", "output xlsx path (default: timestamped file in OUTPUT_DIR)")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*url) == "" {
			must(fmt.Errorf("--url is required"))
		}

		sess := session.New(db, cfg, *url, log.Logger)
		count, err := sess.Reload(context.Background())
		must(err)

		items := sess.Inventory()
		if strings.TrimSpace(*q) != "" {
			items = sess.Search(*q)
		}
		for _, item := range items {
			sess.AddItem(item.ItemNo)
		}
		sess.SetDiscountPercent(*discount)

		path := strings.TrimSpace(*out)
		if path == "" {
			path = quote.QuotationFilename(cfg.OutputDir, time.Now())
		}
		must(quote.WriteQuotationXLSX(sess.CartLines(), sess.Totals(), cfg.WatermarkText, path))
		fmt.Printf("run done fetched=%d quoted=%d output=%s\n", count, len(items), path)
	case "config:set-url":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		url := fs.String("url", "", "spreadsheet share link")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*url) == "" {
			must(fmt.Errorf("--url is required"))
		}
		if !authSvc.Valid() {
			must(fmt.Errorf("administrator login required (auth:login)"))
		}
		sess := session.New(db, cfg, "", log.Logger)
		must(sess.SetSourceURL(*url))
		fmt.Println("source url saved")
	case "config:show":
		appCfg, err := db.GetConfig()
		must(err)
		url := "(not set)"
		if appCfg.SourceURL != nil {
			url = *appCfg.SourceURL
		}
		fmt.Printf("source url:   %s\n", url)
		if !appCfg.LastUpdated.IsZero() {
			fmt.Printf("last updated: %s\n", appCfg.LastUpdated.Format(time.RFC3339))
		}
		fmt.Printf("auth valid:   %v\n", authSvc.Valid())
	case "auth:login":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		id := fs.String("id", "", "administrator id")
		pass := fs.String("pass", "", "administrator password")
		_ = fs.Parse(os.Args[2:])
		must(authSvc.Login(*id, *pass))
		fmt.Println("login ok")
	case "auth:logout":
		must(authSvc.Logout())
		fmt.Println("logged out")
	default:
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("usage: itemfinder <command>")
	fmt.Println("commands:")
	fmt.Println("  serve [--url=...]")
	fmt.Println("  run --url=... [--q=...] [--discount=10] [--out=...xlsx]")
	fmt.Println("  inventory:fetch [--url=...]")
	fmt.Println("  inventory:log [--limit=10]")
	fmt.Println("  config:set-url --url=...")
	fmt.Println("  config:show")
	fmt.Println("  auth:login --id=... --pass=...")
	fmt.Println("  auth:logout")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
