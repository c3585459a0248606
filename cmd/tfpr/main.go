package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/bkyoung/tfpr/internal/adapter/ci"
	"github.com/bkyoung/tfpr/internal/adapter/cli"
	"github.com/bkyoung/tfpr/internal/adapter/deploy"
	"github.com/bkyoung/tfpr/internal/adapter/git"
	githubadapter "github.com/bkyoung/tfpr/internal/adapter/github"
	"github.com/bkyoung/tfpr/internal/adapter/httpclient"
	"github.com/bkyoung/tfpr/internal/adapter/observability"
	storeAdapter "github.com/bkyoung/tfpr/internal/adapter/store"
	"github.com/bkyoung/tfpr/internal/adapter/store/sqlite"
	"github.com/bkyoung/tfpr/internal/adapter/terraform"
	"github.com/bkyoung/tfpr/internal/config"
	"github.com/bkyoung/tfpr/internal/domain"
	"github.com/bkyoung/tfpr/internal/usecase/pipeline"
	"github.com/bkyoung/tfpr/internal/usecase/report"
	"github.com/bkyoung/tfpr/internal/version"
)

func main() {
	if err := run(); err != nil {
		// Scrub tokens from error messages before logging
		log.Println(httpclient.RedactSecrets(err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Local runs may keep GITHUB_TOKEN and friends in a .env file
	_ = godotenv.Load()

	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "tfpr",
		EnvPrefix:   "TFPR",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	meta := resolveMeta(cfg)

	logger := buildLogger(cfg.Observability)

	var pipelineLogger pipeline.Logger
	if logger != nil {
		pipelineLogger = observability.NewPipelineLogger(logger)
	}

	reporter := report.NewReporter(buildGitHubClient(cfg, logger))

	runner := terraform.NewRunner(cfg.Terraform.Dir)
	runner.SetBinary(cfg.Terraform.Binary)
	runner.SetVarFiles(cfg.Terraform.VarFiles)

	// Initialize store if enabled
	var runStore pipeline.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = storeAdapter.NewBridge(sqliteStore)
				defer runStore.Close()
			}
		}
	}

	orchestrator := pipeline.NewOrchestrator(pipeline.OrchestratorDeps{
		Terraform: terraform.NewBridge(runner),
		Reporter:  reporter,
		Builder:   deploy.NewBuilder(cfg.Deploy.ContextDir),
		Deployer:  deploy.NewSSHDeployer(cfg.Deploy.SSHTarget),
		Store:     runStore,
		Logger:    pipelineLogger,
	})

	// Deploy only when a target host is configured
	defaultImageRef := ""
	if cfg.Deploy.SSHTarget != "" {
		defaultImageRef = cfg.Deploy.ImageRef(meta.CommitSHA)
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Runner:              orchestrator,
		Reporter:            reporter,
		Meta:                meta,
		DefaultMaxChunkSize: cfg.Report.MaxChunkSize,
		DefaultStrict:       cfg.Report.Strict,
		DefaultImageRef:     defaultImageRef,
		Version:             version.Value(),
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

// resolveMeta builds the run metadata once: CI environment first, config
// fills the gaps, and the local git repository is the fallback for commit
// and branch when running outside CI.
func resolveMeta(cfg config.Config) domain.RunContext {
	meta := ci.FromEnv(os.Getenv)

	if meta.Owner == "" {
		meta.Owner = cfg.GitHub.Owner
	}
	if meta.Repo == "" {
		meta.Repo = cfg.GitHub.Repo
	}
	meta.WorkingDir = cfg.Terraform.Dir

	if meta.CommitSHA == "" || meta.Branch == "" {
		engine := git.NewEngine(cfg.Terraform.Dir)
		if meta.CommitSHA == "" {
			if sha, err := engine.HeadCommit(); err == nil {
				meta.CommitSHA = sha
			}
		}
		if meta.Branch == "" {
			if branch, err := engine.CurrentBranch(); err == nil {
				meta.Branch = branch
			}
		}
	}

	if meta.Actor == "" {
		meta.Actor = os.Getenv("USER")
	}

	return meta
}

func buildGitHubClient(cfg config.Config, logger httpclient.Logger) *githubadapter.Client {
	token := cfg.GitHub.Token
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}

	client := githubadapter.NewClient(token)
	if cfg.GitHub.BaseURL != "" {
		client.SetBaseURL(cfg.GitHub.BaseURL)
	}
	if timeout, err := time.ParseDuration(cfg.HTTP.Timeout); err == nil {
		client.SetTimeout(timeout)
	}
	if cfg.HTTP.MaxRetries > 0 {
		client.SetMaxRetries(cfg.HTTP.MaxRetries)
	}
	if backoff, err := time.ParseDuration(cfg.HTTP.InitialBackoff); err == nil {
		client.SetInitialBackoff(backoff)
	}
	if logger != nil {
		client.SetLogger(logger)
	}

	return client
}

// buildLogger creates the shared structured logger based on configuration.
func buildLogger(cfg config.ObservabilityConfig) httpclient.Logger {
	if !cfg.Logging.Enabled {
		return nil
	}

	logLevel := httpclient.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = httpclient.LogLevelDebug
	case "error":
		logLevel = httpclient.LogLevelError
	}

	logFormat := httpclient.LogFormatHuman
	switch cfg.Logging.Format {
	case "json":
		logFormat = httpclient.LogFormatJSON
	case "human":
		logFormat = httpclient.LogFormatHuman
	default:
		// "auto": human on a terminal, JSON under CI
		if !pipeline.IsOutputTerminal() {
			logFormat = httpclient.LogFormatJSON
		}
	}

	return httpclient.NewDefaultLogger(logLevel, logFormat)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tfpr"))
	}
	return paths
}
