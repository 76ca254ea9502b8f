package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"simulscore/internal/checks"
	"simulscore/internal/configuration"
	"simulscore/internal/corpus"
	"simulscore/internal/instlog"
	"simulscore/internal/quality"
	"simulscore/internal/runs"
	"simulscore/internal/score"
	"simulscore/internal/server"
)

// prepareLogger configures the global slog logger.
// Takes a string log level ("debug", "info", "warn", "error") and installs
// JSON-formatted output on os.Stderr, keeping os.Stdout free for reports.
// Unrecognized levels fall back to Info.
func prepareLogger(level string) {
	var logLevel slog.Level

	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn", "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// scoreLog replays a persisted execution log, prints the report as indented
// JSON and applies optional gates. Exits nonzero on failure or failed gates.
func scoreLog(logPath, checksPath string) {
	var gates []checks.Gate
	if checksPath != "" {
		var err error
		gates, err = checks.LoadFromFile(checksPath)
		if err != nil {
			slog.Error("Unable to load checks", "error", err)
			os.Exit(1)
		}
	}

	scorer, err := score.FromLog(logPath, score.TargetTypeText)
	if err != nil {
		slog.Error("Unable to load instance log", "error", err)
		os.Exit(1)
	}

	report, err := scorer.Score(context.Background())
	if err != nil {
		slog.Error("Scoring failed", "error", err)
		os.Exit(1)
	}

	body, err := json.MarshalIndent(report, "", "    ")
	if err != nil {
		slog.Error("Unable to marshal report", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(body))

	if len(gates) > 0 {
		failed, err := checks.Run(gates, report.Flatten())
		if err != nil {
			slog.Error("Checks failed to evaluate", "error", err)
			os.Exit(1)
		}
		if len(failed) > 0 {
			slog.Error("Checks failed", "gates", strings.Join(failed, ", "))
			os.Exit(1)
		}
		slog.Info("All checks passed", "gates", len(gates))
	}
}

// serve runs the evaluation API until interrupted. On init errors the
// application exits with code 1.
func serve(config *configuration.AppConfig) {
	var corp corpus.Corpus
	var err error
	if config.Evaluator.SourceType == configuration.SourceTypeSpeech {
		corp, err = corpus.LoadSpeech(config.Corpus.Source, config.Corpus.Reference)
	} else {
		corp, err = corpus.LoadText(config.Corpus.Source, config.Corpus.Reference)
	}
	if err != nil {
		slog.Error("Unable to load corpus", "error", err)
		os.Exit(1)
	}

	var qualityScorer quality.Scorer
	if config.Evaluator.Quality.Type == configuration.QualityTypeRemote {
		qualityScorer = quality.NewRemoteScorer(config.Evaluator.Quality.URL, config.Evaluator.Quality.Timeout)
	}

	scorer, err := score.New(corp, score.Config{
		StartIndex:  config.Evaluator.StartIndex,
		EndIndex:    config.Evaluator.EndIndex,
		LatencyUnit: config.Evaluator.LatencyUnit,
		Tokenizer:   config.Evaluator.Tokenizer,
		NoSpace:     config.Evaluator.NoSpace,
		SourceType:  config.Evaluator.SourceType,
		Quality:     qualityScorer,
	})
	if err != nil {
		slog.Error("Unable to initialize scorer", "error", err)
		os.Exit(1)
	}

	appCtx, appCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer appCancel()

	reportsRepo := runs.NewRepository(config.Reports.Length, config.Reports.Ttl)
	go reportsRepo.Serve()

	var instLog *instlog.Writer
	if config.InstanceLog.File != "" {
		instLog = instlog.NewWriter(config.InstanceLog.File, config.InstanceLog.Size, config.InstanceLog.Backups)
	}

	srv := server.NewServer(config.Server.Address, scorer, reportsRepo, instLog)
	go srv.ListenAndServe()
	slog.Info("Server listening "+config.Server.Address, "sentences", scorer.Len())
	<-appCtx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second*10)
	defer shutdownCancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		slog.Error("Server shutdown", "error", err)
	}
	slog.Info("Server stopped")

	reportsRepo.Stop()
	if instLog != nil {
		instLog.Close()
	}
}

func main() {
	configPath := flag.String("config", "", "configuration file (required with -serve)")
	logPath := flag.String("score-log", "", "score a persisted instance log and print the report")
	checksPath := flag.String("checks", "", "YAML gate file applied to the report (with -score-log)")
	doServe := flag.Bool("serve", false, "run the evaluation API server")
	flag.Parse()

	prepareLogger("info")

	if *logPath != "" {
		scoreLog(*logPath, *checksPath)
		return
	}

	if !*doServe {
		flag.Usage()
		os.Exit(2)
	}

	if *configPath == "" {
		slog.Error("A configuration file is required with -serve")
		os.Exit(1)
	}
	config, err := configuration.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Unable to load configuration", "error", err)
		os.Exit(1)
	}
	prepareLogger(config.Logger.Level)

	serve(config)
}
