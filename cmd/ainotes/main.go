package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/vthunder/ainotes/internal/apply"
	"github.com/vthunder/ainotes/internal/hf"
	"github.com/vthunder/ainotes/internal/interpret"
	"github.com/vthunder/ainotes/internal/ner"
	"github.com/vthunder/ainotes/internal/notify"
	"github.com/vthunder/ainotes/internal/server"
	"github.com/vthunder/ainotes/internal/task"
)

type config struct {
	Addr      string `envconfig:"ADDR" default:":8080"`
	StatePath string `envconfig:"STATE_PATH" default:"state"`
	RulesFile string `envconfig:"RULES_FILE"`

	HFToken          string `envconfig:"HF_API_TOKEN"`
	ZeroShotModel    string `envconfig:"HF_CLASSIFIER_MODEL_ZEROSHOT"`
	NERModel         string `envconfig:"HF_NER_MODEL"`
	Text2TextModel   string `envconfig:"HF_TASK_MODEL_TEXT2TEXT"`
	DisableAssistant bool   `envconfig:"DISABLE_ASSISTANT"`
}

func main() {
	log.Println("ainotes - natural-language task manager")

	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, using environment variables")
	} else {
		log.Println("[config] Loaded .env file")
	}

	var cfg config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Failed to read config: %v", err)
	}

	store, err := task.Open(cfg.StatePath)
	if err != nil {
		log.Fatalf("Failed to open task store: %v", err)
	}
	defer store.Close()

	rules := interpret.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := interpret.LoadRules(cfg.RulesFile)
		if err != nil {
			log.Printf("Warning: failed to load rules file: %v", err)
		} else {
			rules = loaded
		}
	}

	hfClient := hf.NewClient(cfg.HFToken,
		hf.WithModels(cfg.ZeroShotModel, cfg.NERModel, cfg.Text2TextModel))

	// Hosted NER first, in-process prose as fallback.
	recognizer := &ner.Chain{
		Primary:  hfClient,
		Fallback: ner.NewProseExtractor(),
	}

	var assistant interpret.Assistant
	if !cfg.DisableAssistant {
		assistant = hfClient
	}

	builder := interpret.NewBuilder(
		interpret.NewIntentClassifier(hfClient, rules),
		interpret.NewTargetResolver(store),
		interpret.NewExtractor(rules, recognizer),
		assistant,
	)

	scheduler := notify.NewScheduler(notify.LogSink{})
	defer scheduler.Stop()
	if err := scheduler.RescheduleAll(store); err != nil {
		log.Printf("Warning: failed to reschedule notifications: %v", err)
	}

	applier := apply.New(store, scheduler)

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: server.New(builder, applier, store).Router(),
	}

	go func() {
		log.Printf("[main] Listening on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("[main] Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
