package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/hazyhaar/lifeweave/internal/api"
	"github.com/hazyhaar/lifeweave/internal/auth"
	"github.com/hazyhaar/lifeweave/internal/config"
	"github.com/hazyhaar/lifeweave/internal/db"
	"github.com/hazyhaar/lifeweave/internal/interview"
	"github.com/hazyhaar/lifeweave/internal/llm"
	"github.com/hazyhaar/lifeweave/internal/mcp"
	"github.com/hazyhaar/lifeweave/pkg/audit"
	"github.com/hazyhaar/lifeweave/pkg/trace"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "mcp":
		cmdMCP(os.Args[2:])
	case "version":
		fmt.Printf("lifeweave %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`lifeweave — adaptive biography interviewer

Usage:
  lifeweave serve [--config config.toml] [--addr :8080]
  lifeweave mcp [--config config.toml]
  lifeweave version
  lifeweave help

Commands:
  serve     Start the HTTP server
  mcp       Serve the interview tools over MCP stdio
  version   Print version
  help      Show this help`)
}

func cmdServe(args []string) {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.toml")
	addr := fs.String("addr", "", "listen address (overrides config)")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	c, err := buildCore(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer c.Close()

	biographer := llm.NewBiographer(c.client, cfg.LLM.BiographyModel, llmTimeout(cfg))

	a := auth.New(cfg.Auth.JWTSecret, cfg.Auth.TokenExpiryMin)
	apiHandler := api.New(c.db, a, c.engine, biographer)

	mux := http.NewServeMux()
	apiHandler.RegisterRoutes(mux)

	slog.Info("lifeweave listening", "version", version, "addr", cfg.Server.Addr)
	slog.Info("database open", "path", cfg.Database.Path)
	slog.Info("llm providers", "configured", len(c.client.Providers()))

	if err := http.ListenAndServe(cfg.Server.Addr, api.SecurityHeaders(mux)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func cmdMCP(args []string) {
	fs := flag.NewFlagSet("mcp", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config.toml")
	fs.Parse(args)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	c, err := buildCore(cfg)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer c.Close()

	srv := mcp.NewServer(c.engine, c.auditLog)
	slog.Info("lifeweave mcp on stdio", "version", version)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Fatalf("mcp server error: %v", err)
	}
}

// core holds the long-lived pieces shared by the HTTP and MCP commands.
type core struct {
	db       *db.DB
	engine   *interview.Engine
	client   *llm.Client
	auditLog *audit.SQLiteLogger
	traces   *trace.Store
}

func (c *core) Close() {
	c.traces.Close()
	c.auditLog.Close()
	c.db.Close()
}

// buildCore opens the database and assembles the interview engine with its
// audit logger and provider call tracer.
func buildCore(cfg *config.Config) (*core, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	auditLog := audit.NewSQLiteLogger(database.DB)
	if err := auditLog.Init(); err != nil {
		return nil, fmt.Errorf("audit schema: %w", err)
	}

	traces := trace.NewStore(database.DB)
	if err := traces.Init(); err != nil {
		return nil, fmt.Errorf("trace schema: %w", err)
	}

	client := buildLLMClient(cfg)
	client.SetTracer(traces)
	logger := slog.Default()

	eval, err := interview.NewEvaluator(
		llm.NewSemanticScorer(client, cfg.LLM.ScoringModel, llmTimeout(cfg)),
		cfg.Interview.ScoreCacheSize,
		logger,
	)
	if err != nil {
		return nil, err
	}

	engine := interview.NewEngine(interview.EngineConfig{
		Store:     database,
		Evaluator: eval,
		Selector: interview.NewSelector(
			llm.NewQuestionGenerator(client, cfg.LLM.FollowupModel, llmTimeout(cfg)),
			logger,
		),
		Gate: interview.Gate{
			MinAnswers:    cfg.Sufficiency.MinAnswers,
			MinTotalChars: cfg.Sufficiency.MinTotalChars,
		},
		SynthesisGate: interview.Gate{
			MinAnswers:    cfg.Sufficiency.SynthesisMinAnswers,
			MinTotalChars: cfg.Sufficiency.SynthesisMinTotalChars,
		},
		MaxPerTheme: cfg.Interview.MaxQuestionsPerTheme,
		MaxPerStory: cfg.Interview.MaxQuestionsPerStory,
		Logger:      logger,
	})
	return &core{db: database, engine: engine, client: client, auditLog: auditLog, traces: traces}, nil
}

func buildLLMClient(cfg *config.Config) *llm.Client {
	var providers []llm.Provider
	if cfg.LLM.OpenAIAPIKey != "" {
		providers = append(providers, llm.NewOpenAIProvider(llm.OpenAIConfig{
			BaseURL: cfg.LLM.OpenAIBaseURL,
			APIKey:  cfg.LLM.OpenAIAPIKey,
			Timeout: llmTimeout(cfg),
		}))
	}
	if cfg.LLM.AnthropicAPIKey != "" {
		providers = append(providers, llm.NewAnthropicProvider(llm.AnthropicConfig{
			APIKey:  cfg.LLM.AnthropicAPIKey,
			BaseURL: cfg.LLM.AnthropicBaseURL,
			Timeout: llmTimeout(cfg),
		}))
	}
	return llm.NewClient(providers)
}

func llmTimeout(cfg *config.Config) time.Duration {
	return time.Duration(cfg.LLM.TimeoutSec) * time.Second
}
