package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"textlens-cli/internal/client"
	"textlens-cli/internal/config"
	"textlens-cli/internal/db"
	"textlens-cli/internal/repository"
	"textlens-cli/internal/services"
	"textlens-cli/internal/utils"
)

const usage = `textlens - command-line client for a text-analysis backend

Usage:
  textlens health
  textlens upload <file|s3://bucket/key>
  textlens analyze [-type TYPE] <text...>
  textlens analyze [-type TYPE] -file <document>
  textlens analyze-file [-type TYPE] <file|s3://bucket/key>
  textlens chat [-context TEXT | -continue] <message...>
  textlens history [-n N]
  textlens help

Analysis types: general (default), summary, sentiment, keywords, qa.
Other values are forwarded to the backend as given.

Environment:
  TEXTLENS_API_URL      backend base URL (default http://localhost:8000)
  TEXTLENS_API_TIMEOUT  request timeout (default 60s)
  TEXTLENS_HISTORY_DB   history database path (default ~/.textlens/history.db)
  TEXTLENS_LOG_LEVEL    debug|info|warn|error (default info)
  S3_ENDPOINT           MinIO/S3 endpoint for s3:// sources and archiving
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(os.Stderr, usage)
		return 0
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger := utils.NewLogger(cfg.LogLevel)

	// Open the local history database. Commands still run without it.
	var repo repository.Repository
	database, err := db.Open(cfg.HistoryDB)
	if err != nil {
		logger.Warn("History disabled, cannot open database", "error", err, "path", cfg.HistoryDB)
	} else {
		defer database.Close()
		if err := db.Migrate(database); err != nil {
			logger.Warn("History disabled, migration failed", "error", err)
		} else {
			repo = repository.NewRepository(database)
		}
	}

	api := client.New(cfg.APIBaseURL, cfg.APITimeout)
	svc := services.NewService(api, repo, cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := dispatch(ctx, svc, args[0], args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		var appErr *utils.AppError
		if errors.As(err, &appErr) {
			return appErr.ExitCode
		}
		return 1
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	fmt.Println(string(out))

	return 0
}

func dispatch(ctx context.Context, svc services.AnalysisService, command string, args []string) (any, error) {
	switch command {
	case "health":
		return svc.Health(ctx)

	case "upload":
		fs := flag.NewFlagSet("upload", flag.ExitOnError)
		fs.Parse(args)
		if fs.NArg() != 1 {
			return nil, utils.NewUsageError("Usage: textlens upload <file|s3://bucket/key>")
		}
		return svc.Upload(ctx, fs.Arg(0))

	case "analyze":
		fs := flag.NewFlagSet("analyze", flag.ExitOnError)
		typ := fs.String("type", "", "analysis type (general, summary, sentiment, keywords, qa)")
		file := fs.String("file", "", "analyze the text of a local document instead of literal text")
		fs.Parse(args)
		if *file != "" {
			if fs.NArg() != 0 {
				return nil, utils.NewUsageError("Give either -file or literal text, not both")
			}
			return svc.AnalyzeLocalDocument(ctx, *file, client.AnalysisType(*typ))
		}
		return svc.AnalyzeText(ctx, strings.Join(fs.Args(), " "), client.AnalysisType(*typ))

	case "analyze-file":
		fs := flag.NewFlagSet("analyze-file", flag.ExitOnError)
		typ := fs.String("type", "", "analysis type (general, summary, sentiment, keywords, qa)")
		fs.Parse(args)
		if fs.NArg() != 1 {
			return nil, utils.NewUsageError("Usage: textlens analyze-file [-type TYPE] <file|s3://bucket/key>")
		}
		return svc.AnalyzeFile(ctx, fs.Arg(0), client.AnalysisType(*typ))

	case "chat":
		fs := flag.NewFlagSet("chat", flag.ExitOnError)
		chatContext := fs.String("context", "", "conversation context to send with the message")
		continueLast := fs.Bool("continue", false, "use the previous chat response as context")
		fs.Parse(args)
		if fs.NArg() == 0 {
			return nil, utils.NewUsageError("Usage: textlens chat [-context TEXT | -continue] <message...>")
		}
		return svc.Chat(ctx, strings.Join(fs.Args(), " "), *chatContext, *continueLast)

	case "history":
		fs := flag.NewFlagSet("history", flag.ExitOnError)
		n := fs.Int("n", 20, "number of records to show")
		fs.Parse(args)
		return svc.History(ctx, *n)

	default:
		return nil, utils.NewUsageError(fmt.Sprintf("Unknown command %q, run 'textlens help'", command))
	}
}
