package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hvacops-nlq/server/internal/core"
	"github.com/hvacops-nlq/server/internal/executor"
	"github.com/hvacops-nlq/server/internal/nlq/catalog"
	"github.com/hvacops-nlq/server/internal/nlq/composer"
	"github.com/hvacops-nlq/server/internal/nlq/conversation"
	"github.com/hvacops-nlq/server/internal/nlq/extractor"
	"github.com/hvacops-nlq/server/internal/nlq/fallback"
	"github.com/hvacops-nlq/server/internal/nlq/intent"
	"github.com/hvacops-nlq/server/internal/nlq/model"
	"github.com/hvacops-nlq/server/internal/nlq/pipeline"
	"github.com/hvacops-nlq/server/internal/nlq/validator"
	"github.com/hvacops-nlq/server/internal/repo"
	logx "github.com/hvacops-nlq/server/pkg/logger"
	pkgredis "github.com/hvacops-nlq/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the resolution demo,
// sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"APP_ENV" default:"development"`

	// SessionStore selects where turn history lives: "memory" or "redis".
	SessionStore string `envconfig:"NLQ_SESSION_STORE" default:"memory"`

	// LLM provider, only needed when the fallback translator is enabled.
	APIKey  string `envconfig:"GEMINI_API_KEY"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	Pipeline  model.PipelineConfig
	Warehouse executor.Config
}

func main() {
	fmt.Println("Testing NLQ resolution pipeline...")
	ctx := context.Background()

	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}

	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	store, closeStore, err := newTurnStore(envCfg)
	if err != nil {
		log.Fatalf("Failed to initialise turn store: %v", err)
	}
	defer closeStore()

	manager, err := conversation.NewManager(envCfg.Pipeline.Conversation, store)
	if err != nil {
		log.Fatalf("Failed to initialise conversation manager: %v", err)
	}

	cat, err := catalog.New()
	if err != nil {
		log.Fatalf("Failed to load template catalog: %v", err)
	}

	var translator fallback.Translator
	if envCfg.Pipeline.Fallback.Enabled {
		if envCfg.APIKey == "" {
			log.Fatalf("NLQ_FALLBACK_ENABLED is set but GEMINI_API_KEY is empty")
		}
		gt, err := fallback.NewGeminiTranslator(ctx, fallback.GeminiConfig{
			APIKey:  envCfg.APIKey,
			BaseURL: envCfg.BaseURL,
			Model:   envCfg.Pipeline.Fallback,
		})
		if err != nil {
			log.Fatalf("Failed to initialise fallback translator: %v", err)
		}
		translator = gt
	}

	p, err := pipeline.New(ctx, &pipeline.Deps{
		Config:     envCfg.Pipeline,
		Extractor:  extractor.New(envCfg.Pipeline.Extractor),
		Classifier: intent.New(envCfg.Pipeline.Classifier),
		Catalog:    cat,
		Composer:   composer.New(envCfg.Pipeline.Composer, envCfg.Pipeline.Extractor.CurrentYear),
		Validator:  validator.New(),
		Manager:    manager,
		Translator: translator,
		Metrics:    pipeline.NewMetrics(prometheus.DefaultRegisterer),
	})
	if err != nil {
		log.Fatalf("Failed to build resolution pipeline: %v", err)
	}

	var exec executor.Executor
	if envCfg.Warehouse.DSN != "" {
		pg, err := executor.Open(ctx, envCfg.Warehouse)
		if err != nil {
			log.Fatalf("Failed to connect to warehouse: %v", err)
		}
		defer pg.Close()
		exec = pg
		fmt.Println("Connected to warehouse successfully")
	} else {
		fmt.Println("WAREHOUSE_DSN not set; printing SQL without executing")
	}

	testQueries := []struct {
		description string
		query       string
	}{
		{
			description: "Greeting",
			query:       "สวัสดีครับ",
		},
		{
			description: "Revenue for a customer and year",
			query:       "รายได้ของ CLARION ปี 2567 เท่าไหร่",
		},
		{
			description: "Follow-up referencing the previous year",
			query:       "แล้วปีที่แล้วล่ะ",
		},
		{
			description: "Top customers this year",
			query:       "ลูกค้า 5 อันดับแรกที่ซื้อเยอะสุดปีนี้",
		},
		{
			description: "Spare part stock lookup",
			query:       "อะไหล่ EKAC460 เหลือกี่ชิ้น",
		},
	}

	sessionID := "demo-session-001"

	for i, test := range testQueries {
		fmt.Printf("\nTest %d: %s\n", i+1, test.description)
		fmt.Printf("Query: %q\n", test.query)

		resolved, err := p.Resolve(ctx, model.QueryInput{
			SessionID: sessionID,
			Query:     test.query,
		})
		if err != nil {
			log.Fatalf("Failed to resolve question %d: %v", i+1, err)
		}

		fmt.Printf("Intent: %s (confidence %.2f)\n", resolved.Intent, resolved.Confidence)
		if resolved.IsFollowUp {
			fmt.Printf("Resolved as: %q\n", resolved.ResolvedQuestion)
		}
		if resolved.TemplateUsed != "" {
			fmt.Printf("Template: %s\n", resolved.TemplateUsed)
		}
		if len(resolved.Warnings) > 0 {
			fmt.Printf("Warnings: %v\n", resolved.Warnings)
		}

		resultCount := -1
		if resolved.SQL == "" {
			fmt.Println("No SQL produced for this turn")
		} else {
			fmt.Printf("SQL:\n%s\n", resolved.SQL)
			if exec != nil {
				rows, err := exec.Execute(ctx, resolved.SQL)
				if err != nil {
					log.Printf("Warehouse execution failed for question %d: %v", i+1, err)
				} else {
					resultCount = len(rows)
					fmt.Printf("Rows returned: %d\n", resultCount)
				}
			}
		}

		if err := p.Record(ctx, sessionID, test.query, resolved, resultCount); err != nil {
			log.Fatalf("Failed to record turn %d: %v", i+1, err)
		}

		fmt.Println("──────────────────────────────────────────────")
		time.Sleep(200 * time.Millisecond)
	}

	fmt.Println("All pipeline tests completed successfully!")
}

// newTurnStore builds the configured turn store. The returned close function
// is a no-op for the in-memory store.
func newTurnStore(cfg AppConfig) (model.TurnStore, func(), error) {
	if cfg.SessionStore != "redis" {
		return conversation.NewMemoryStore(), func() {}, nil
	}

	var redisCfg struct {
		Redis pkgredis.Config
	}
	if err := envconfig.Process("", &redisCfg); err != nil {
		return nil, nil, fmt.Errorf("process redis config: %w", err)
	}

	rdb, err := redisCfg.Redis.New()
	if err != nil {
		return nil, nil, fmt.Errorf("initialise redis client: %w", err)
	}
	fmt.Println("Connected to Redis successfully")

	ttl, err := time.ParseDuration(cfg.Pipeline.Conversation.TTL)
	if err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("invalid conversation TTL %q: %w", cfg.Pipeline.Conversation.TTL, err)
	}

	return repo.NewRedisTurnStore(rdb, ttl), func() { rdb.Close() }, nil
}
