// File: cmd/diagnostic/llm_diagnostic.go
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/iyunix/go-gemchat/internal/config"
	"github.com/iyunix/go-gemchat/internal/domain"
	"github.com/iyunix/go-gemchat/internal/services/ai"
)

// Lists the models reachable with GEMINI_API_KEY and sends one test prompt.
func main() {
	cfg := config.Load()
	if cfg.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY not set. Check your .env file.")
	}

	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.GeminiAPIKey
	aiConfig.BaseURL = cfg.LLMBaseURL
	aiConfig.Model = cfg.ChatModel
	aiConfig.Timeout = 30 * time.Second

	provider, err := ai.NewOpenAIProvider(aiConfig)
	if err != nil {
		log.Fatalf("Invalid AI configuration: %v", err)
	}

	ctx := context.Background()
	models, err := provider.ListModels(ctx)
	if err != nil {
		log.Fatalf("Listing models failed: %v", err)
	}
	for _, name := range models {
		fmt.Println(name)
	}

	reply, err := provider.GetChatCompletion(ctx, cfg.ChatModel, []domain.Message{
		{Role: domain.RoleUser, Content: "Hello, Gemini!"},
	})
	if err != nil {
		log.Fatalf("Content generation failed: %v", err)
	}
	fmt.Printf("\nResponse from %s:\n%s\n", cfg.ChatModel, reply)
}
