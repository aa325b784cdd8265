package main

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/vertextoedge/pkgfetch/internal/adapter/filesystem"
	"github.com/vertextoedge/pkgfetch/internal/adapter/httpclient"
	"github.com/vertextoedge/pkgfetch/internal/adapter/sqlite"
	"github.com/vertextoedge/pkgfetch/internal/adapter/stampfile"
	"github.com/vertextoedge/pkgfetch/internal/config"
	"github.com/vertextoedge/pkgfetch/internal/domain"
	"github.com/vertextoedge/pkgfetch/internal/logger"
	"github.com/vertextoedge/pkgfetch/internal/service/fetcher"
	"go.uber.org/zap"
)

const version = "0.1.0"

func main() {
	// Parse command line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	noCache := flag.Bool("no-cache", false, "Discard any cached copy and fetch in full")
	history := flag.Int("history", 0, "Print the last N fetch-history entries and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(logger.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	zapLogger := logger.GetZapLogger()
	zapLogger.Info("starting pkgfetch",
		zap.String("version", version),
		zap.String("config", *configPath),
	)

	// Initialize filesystem manager
	fsManager, err := filesystem.NewManagerWithBufferSize(cfg.Cache.RootDir, cfg.Cache.GetBufferSize())
	if err != nil {
		zapLogger.Fatal("failed to create filesystem manager", zap.Error(err))
	}

	// Open fetch-history database
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath = filepath.Join(cfg.Cache.RootDir, "fetch.db")
	}

	store, err := sqlite.Open(dbPath)
	if err != nil {
		zapLogger.Fatal("failed to open database", zap.Error(err), zap.String("path", dbPath))
	}
	defer store.Close()

	// Construct the transport once with immutable options
	transport, err := httpclient.New(&httpclient.Config{
		SSLEngine:         cfg.Transport.SSLEngine,
		ClientCert:        cfg.Transport.ClientCert,
		ClientKey:         cfg.Transport.ClientKey,
		ClientKeyPassword: cfg.Transport.ClientKeyPassword,
		CAFile:            cfg.Transport.CAFile,
		CAPath:            cfg.Transport.CAPath,
		SkipVerifyPeer:    cfg.Transport.SkipVerifyPeer,
		ProxyURL:          cfg.Transport.ProxyURL,
		ProxyUsername:     cfg.Transport.ProxyUsername,
		ProxyPassword:     cfg.Transport.ProxyPassword,
		AuthUsername:      cfg.Transport.AuthUsername,
		AuthPassword:      cfg.Transport.AuthPassword,
		ConnectTimeout:    cfg.Transport.GetConnectTimeout(),
		TransferTimeout:   cfg.Transport.GetTransferTimeout(),
		FollowRedirects:   cfg.Transport.FollowRedirects,
	}, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to construct transport", zap.Error(err))
	}

	stamps := stampfile.New(zapLogger)
	fetchService := fetcher.New(&fetcher.Config{
		ProgressInterval: cfg.Cache.GetProgressLogInterval(),
	}, transport, stamps, fsManager, store, zapLogger)

	if *history > 0 {
		if err := printHistory(fetchService, *history); err != nil {
			zapLogger.Fatal("failed to read fetch history", zap.Error(err))
		}
		return
	}

	urls := flag.Args()
	if len(urls) == 0 {
		fmt.Fprintln(os.Stderr, "Usage: pkgfetch [flags] <url> [<url>...]")
		os.Exit(2)
	}

	// One validate+fetch sequence per cache path at a time; URLs are
	// processed sequentially over the single transport.
	failed := 0
	for _, src := range urls {
		cachePath, err := cachePathFor(fsManager, src)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid url %s: %v\n", src, err)
			failed++
			continue
		}

		res, err := fetchService.Fetch(src, cachePath, !*noCache)
		if err != nil {
			if terr, ok := domain.AsTransport(err); ok {
				fmt.Fprint(os.Stderr, terr.Message())
			} else {
				fmt.Fprintf(os.Stderr, "Failed to fetch %s: %v\n", src, err)
			}
			failed++
			continue
		}

		switch res.Status {
		case domain.StatusCached:
			fmt.Printf("%s: cached copy is current (%s)\n", src, res.CachePath)
		default:
			fmt.Printf("%s: fetched %d bytes into %s\n", src, res.BytesWritten, res.CachePath)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}

// cachePathFor derives the local cache file path for a source URL.
func cachePathFor(fs *filesystem.Manager, src string) (string, error) {
	u, err := url.Parse(src)
	if err != nil {
		return "", err
	}

	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "index"
	}
	return fs.CachePath(name), nil
}

func printHistory(svc *fetcher.Service, limit int) error {
	records, err := svc.History(limit)
	if err != nil {
		return err
	}

	for _, rec := range records {
		line := fmt.Sprintf("%s  %-7s  %s -> %s  %d bytes",
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
			rec.Status, rec.URL, rec.CachePath, rec.BytesWritten)
		if rec.ResumedFrom > 0 {
			line += fmt.Sprintf(" (resumed from %d)", rec.ResumedFrom)
		}
		if rec.LastError != "" {
			line += "  error: " + rec.LastError
		}
		fmt.Println(line)
	}
	return nil
}
