package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sakanka/internal/assistant"
	"sakanka/internal/capture"
	"sakanka/pkg/apiclient"
	"sakanka/pkg/domain"
)

func main() {
	_ = godotenv.Load()

	serverURL := flag.String("server", envOr("SAKANKA_SERVER", "http://localhost:8087"), "Sakanka API base URL")
	phone := flag.String("phone", os.Getenv("SAKANKA_PHONE"), "account phone number")
	password := flag.String("password", os.Getenv("SAKANKA_PASSWORD"), "account password")
	language := flag.String("language", envOr("SAKANKA_LANGUAGE", "twi"), "conversation language (twi, ga, hausa, english)")
	audioDir := flag.String("audio-dir", envOr("SAKANKA_AUDIO_DIR", "replies"), "directory for assistant audio replies")
	sampleRate := flag.Int("sample-rate", 16000, "microphone sample rate")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := apiclient.NewClient(*serverURL)
	if *phone != "" && *password != "" {
		user, err := client.Login(ctx, *phone, *password)
		if err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
		logger.Info("logged in", "phone", user.PhoneNumber, "role", user.Role)
	} else {
		logger.Warn("no credentials given, listings cannot be published")
	}

	if err := os.MkdirAll(*audioDir, 0o755); err != nil {
		logger.Error("creating audio dir", "error", err)
		os.Exit(1)
	}

	recorder := capture.NewMicRecorder(*sampleRate, logger)
	defer recorder.Close()

	drafts := &draftBox{}
	session := assistant.NewSession(assistant.Config{
		Recorder:    recorder,
		Transcriber: client,
		Responder:   client,
		Synthesizer: client,
		Player:      &filePlayer{dir: *audioDir, logger: logger},
		Extractor:   client,
		Intent:      assistant.NewKeywordIntentDetector(),
		OnDraft:     drafts.put,
		Language:    domain.ParseLanguage(*language),
		Logger:      logger,
	})
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		logger.Warn("greeting unavailable", "error", err)
	}

	fmt.Println("Press Enter to talk, Enter again to stop. Type q to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if session.State() == assistant.StateIdle {
			fmt.Print("> ")
		} else {
			fmt.Print("[listening] > ")
		}
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" || line == "quit" {
			return
		}

		if session.State() == assistant.StateIdle {
			if err := session.StartListening(ctx); err != nil {
				logger.Error("cannot start capture", "error", err)
			}
			continue
		}

		reply, err := session.StopListening(ctx)
		if err != nil {
			logger.Error("turn failed", "error", err)
			continue
		}
		fmt.Printf("assistant: %s\n", reply)

		if draft, ok := drafts.take(); ok {
			confirmDraft(ctx, scanner, client, draft, *phone)
		}
	}
}

// confirmDraft walks the user through reviewing the extracted fields
// before publishing. The draft survives a failed publish so the seller
// can retry or keep editing.
func confirmDraft(ctx context.Context, scanner *bufio.Scanner, client *apiclient.Client, draft domain.ProductDraft, phone string) {
	for {
		fmt.Println("\nDetected a product to list:")
		fmt.Printf("  1. Title:    %s\n", draft.Title)
		fmt.Printf("  2. Details:  %s\n", draft.Description)
		fmt.Printf("  3. Price:    GHS %.2f\n", draft.Price)
		fmt.Printf("  4. Quantity: %d\n", draft.Quantity)
		fmt.Printf("  5. Location: %s\n", draft.Location)
		fmt.Print("Enter to publish, 1-5 to edit a field, s to skip: ")

		if !scanner.Scan() {
			return
		}
		choice := strings.TrimSpace(scanner.Text())
		switch choice {
		case "":
			product, err := client.CreateProduct(ctx, draft, phone)
			if err != nil {
				fmt.Printf("publish failed: %v (draft kept)\n", err)
				continue
			}
			fmt.Printf("listing %s is live: %s at GHS %.2f\n", product.ID, product.Title, product.Price)
			return
		case "s", "skip":
			fmt.Println("draft discarded")
			return
		case "1", "2", "3", "4", "5":
			editField(scanner, &draft, choice)
		default:
			fmt.Println("unrecognized choice")
		}
	}
}

func editField(scanner *bufio.Scanner, draft *domain.ProductDraft, field string) {
	fmt.Print("new value: ")
	if !scanner.Scan() {
		return
	}
	value := strings.TrimSpace(scanner.Text())
	switch field {
	case "1":
		if value != "" {
			draft.Title = value
		}
	case "2":
		draft.Description = value
	case "3":
		price, err := strconv.ParseFloat(value, 64)
		if err != nil || math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
			fmt.Println("price must be a non-negative number")
			return
		}
		draft.Price = price
	case "4":
		qty, err := strconv.Atoi(value)
		if err != nil || qty < 1 {
			fmt.Println("quantity must be a positive integer")
			return
		}
		draft.Quantity = qty
	case "5":
		if value != "" {
			draft.Location = value
		}
	}
}

// draftBox holds the most recent extracted draft until the main loop
// picks it up after the turn completes.
type draftBox struct {
	mu    sync.Mutex
	draft domain.ProductDraft
	full  bool
}

func (b *draftBox) put(d domain.ProductDraft) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.draft = d
	b.full = true
}

func (b *draftBox) take() (domain.ProductDraft, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.full {
		return domain.ProductDraft{}, false
	}
	b.full = false
	return b.draft, true
}

// filePlayer writes assistant audio to disk; playback is left to the
// host system.
type filePlayer struct {
	dir    string
	logger *slog.Logger
}

func (p *filePlayer) Play(_ context.Context, audio []byte) error {
	name := filepath.Join(p.dir, fmt.Sprintf("reply-%d.mp3", time.Now().UnixMilli()))
	if err := os.WriteFile(name, audio, 0o644); err != nil {
		return fmt.Errorf("writing reply audio: %w", err)
	}
	p.logger.Info("reply audio saved", "path", name)
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
