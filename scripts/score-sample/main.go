// score-sample sends a transcript through the default SPIN rubric against a
// live model endpoint and prints the parsed scores. Use it to smoke-test
// prompt or model changes without standing up the full engine.
//
// Usage:
//
//	go run ./scripts/score-sample -endpoint https://api.openai.com/v1 -model gpt-4o-mini
//	go run ./scripts/score-sample -transcript call.txt -model gpt-4o
//
// The API key comes from OPENAI_API_KEY.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/spincoach-ai/engine/pkg/llm"
	"github.com/spincoach-ai/engine/pkg/models"
	"github.com/spincoach-ai/engine/pkg/prompts"
	"github.com/spincoach-ai/engine/pkg/services"
)

const sampleTranscript = `Rep: Thanks for making time today. How is your team currently handling inbound leads?
Prospect: Mostly spreadsheets. Two people copy entries over from the web form every morning.
Rep: How often does something slip through that process?
Prospect: More than I'd like. Last month we found a demo request from three weeks back that nobody touched.
Rep: What does a missed demo request like that cost you, roughly?
Prospect: Our average deal is around 20k, so... it adds up.
Rep: If those requests landed in a queue with an owner and an SLA, what would that change for your quarter?
Prospect: Honestly, that alone might cover the cost of a tool like this.`

func main() {
	endpoint := flag.String("endpoint", "https://api.openai.com/v1", "OpenAI-compatible endpoint")
	model := flag.String("model", "gpt-4o-mini", "model name")
	transcriptPath := flag.String("transcript", "", "path to a transcript file (default: built-in sample)")
	timeout := flag.Duration("timeout", 60*time.Second, "request timeout")
	flag.Parse()

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "OPENAI_API_KEY is required")
		os.Exit(1)
	}

	transcript := sampleTranscript
	if *transcriptPath != "" {
		data, err := os.ReadFile(*transcriptPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read transcript: %v\n", err)
			os.Exit(1)
		}
		transcript = string(data)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{APIKey: apiKey, BaseURL: *endpoint}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create client: %v\n", err)
		os.Exit(1)
	}

	template := &models.PromptTemplate{
		Name:         prompts.DefaultTemplateName,
		Version:      prompts.DefaultVersion,
		SystemPrompt: prompts.DefaultSystemPrompt,
		UserTemplate: prompts.DefaultUserTemplate,
	}
	system, user, err := prompts.Render(template, transcript)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render prompt: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	raw, err := client.Complete(ctx, llm.CompletionRequest{
		System:      system,
		User:        user,
		Model:       *model,
		Temperature: 0,
		WantJSON:    true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "completion failed: %v\n", err)
		os.Exit(1)
	}
	elapsed := time.Since(start)

	payload, err := llm.ParseResponse[map[string]json.RawMessage](raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "parse failed: %v\nraw output:\n%s\n", err, raw)
		os.Exit(1)
	}

	scores, coaching, err := services.ValidateAssessment(payload)
	if err != nil {
		fmt.Fprintf(os.Stderr, "validation failed: %v\nraw output:\n%s\n", err, raw)
		os.Exit(1)
	}

	fmt.Printf("model: %s (%.1fs)\n\n", *model, elapsed.Seconds())
	for _, dim := range models.Dimensions {
		fmt.Printf("  %-12s %d\n", dim, scores[dim])
	}
	fmt.Printf("\nsummary: %s\n", coaching.Summary)
	for _, win := range coaching.Wins {
		fmt.Printf("  + %s\n", win)
	}
	for _, gap := range coaching.Gaps {
		fmt.Printf("  - %s\n", gap)
	}
	for _, action := range coaching.NextActions {
		fmt.Printf("  > %s\n", action)
	}
}
