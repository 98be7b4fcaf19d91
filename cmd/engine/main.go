package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"outreach-engine/internal/classify"
	"outreach-engine/internal/config"
	"outreach-engine/internal/draft"
	"outreach-engine/internal/events"
	"outreach-engine/internal/httpapi"
	"outreach-engine/internal/ledger"
	"outreach-engine/internal/mail"
	"outreach-engine/internal/pipeline"
	"outreach-engine/internal/scheduler"
	"outreach-engine/internal/secrets"
	"outreach-engine/internal/source"
	"outreach-engine/internal/source/imapsource"
	"outreach-engine/internal/source/pagesource"
)

func main() {
	dataDir := os.Getenv("OUTREACH_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir: two instances sharing a ledger would race
	// the dedup guarantees.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", dataDir, err)
	}
	if !locked {
		log.Fatalf("another engine already holds %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	cfg, err := config.Load(userCfgPath)
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, wmsg := range res.Warnings {
		log.Printf("[config] warning: %s", wmsg)
	}
	if !res.OK() {
		for _, emsg := range res.Errors {
			log.Printf("[config] error: %s", emsg)
		}
		log.Fatalf("config invalid (%s)", userCfgPath)
	}

	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	led := ledger.Open(filepath.Join(dataDir, "outreach.db"))
	defer led.Close()

	classifier := classify.New(classify.Policy{
		AssumeContractWhenUnstated: cfg.Policy.AssumeContractWhenUnstated,
		ProcessUnknownGeography:    cfg.Policy.ProcessUnknownGeography,
	}, cfg.Filters.ExtraNonUSTerms, cfg.Filters.ExtraExclusionTerms)

	drafterKey, err := secrets.Get(secrets.AccountDrafter, "")
	if err != nil {
		log.Printf("[secrets] %v (drafting will fail until the key is set)", err)
	}
	drafter := draft.NewOpenAIDrafter(
		cfg.Drafter.BaseURL,
		drafterKey,
		cfg.Drafter.Model,
		cfg.Drafter.Temperature,
		cfg.Drafter.MaxTokens,
		time.Duration(cfg.Drafter.TimeoutSeconds)*time.Second,
	)

	var smtpPass string
	if cfg.Policy.AutoSend {
		smtpPass, err = secrets.Get(secrets.AccountSMTP, cfg.SMTP.Username+"@"+cfg.SMTP.Host)
		if err != nil {
			log.Printf("[secrets] %v (sends will fail until the password is set)", err)
		}
	}
	mailer := &mail.SMTPMailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: smtpPass,
		From:     cfg.SMTP.From,
	}

	var sources []source.Source
	if cfg.Sources.IMAP.Enabled {
		imapPass, err := secrets.Get(secrets.AccountIMAP, cfg.Sources.IMAP.Username+"@"+cfg.Sources.IMAP.Host)
		if err != nil {
			log.Printf("[secrets] %v (imap source disabled)", err)
		} else {
			sources = append(sources, imapsource.New(imapsource.Config{
				Addr:       fmt.Sprintf("%s:%d", cfg.Sources.IMAP.Host, cfg.Sources.IMAP.Port),
				Username:   cfg.Sources.IMAP.Username,
				Password:   imapPass,
				Mailbox:    cfg.Sources.IMAP.Mailbox,
				SubjectAny: cfg.Sources.IMAP.SubjectAny,
			}))
		}
	}
	if cfg.Sources.Pages.Enabled {
		sources = append(sources, pagesource.New(pagesource.Config{Dir: cfg.Sources.Pages.Dir}))
	}

	hub := events.NewHub()

	runner := &pipeline.Runner{
		Pipe:    pipeline.New(led, classifier),
		Drafter: drafter,
		Mailer:  mailer,
		Sources: sources,
		Hub:     hub,
		Limiter: pipeline.NewDomainLimiter(cfg.Limits.SendsPerMinute, cfg.Limits.SendBurst),
		Identity: draft.Identity{
			Name:  cfg.Identity.Name,
			Phone: cfg.Identity.Phone,
			Email: cfg.Identity.Email,
		},
		Resume:       loadResume(dataDir),
		AutoSend:     cfg.Policy.AutoSend,
		DraftTimeout: time.Duration(cfg.Drafter.TimeoutSeconds) * time.Second,
		SendTimeout:  time.Duration(cfg.SMTP.TimeoutSeconds) * time.Second,
		Workers:      cfg.Limits.Workers,
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go scheduler.Every(ctx, time.Duration(cfg.Polling.CycleSeconds)*time.Second, "outreach", func(ctx context.Context) error {
		_, err := runner.RunCycle(ctx)
		if errors.Is(err, pipeline.ErrCycleRunning) {
			// A manually triggered cycle is in flight; not a failure.
			return nil
		}
		return err
	})

	mux := httpapi.NewMux(httpapi.Deps{
		Ledger: led,
		Runner: runner,
		Hub:    hub,
		CfgVal: &cfgVal,
	})

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (data=%s)", addr, dataDir)

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Printf("[http] serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
}

func loadResume(dataDir string) string {
	for _, name := range []string{"resume.txt", "resume.md"} {
		b, err := os.ReadFile(filepath.Join(dataDir, name))
		if err == nil && len(b) > 0 {
			log.Printf("[draft] loaded resume from %s", name)
			return string(b)
		}
	}
	return ""
}
