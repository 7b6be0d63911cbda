// ABOUTME: AI-powered fixture generator for local plugin development.
// ABOUTME: Uses OpenAI to generate realistic spreadsheet rows, with static fallback.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"
)

// Generator creates sample spreadsheet data using OpenAI or falls back to
// static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// NewGenerator creates a generator, loading API key from .env if available.
func NewGenerator() *Generator {
	g := &Generator{}

	// Try to load .env from current dir or parent dirs
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Also check home directory
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}

	g.model = os.Getenv("OPENAI_MODEL")
	if g.model == "" {
		g.model = "gpt-5-mini"
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey != "" {
		g.client = openai.NewClient(apiKey)
		g.useAI = true
		log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	} else {
		log.Println("No OPENAI_API_KEY found, using static fallback data")
	}

	return g
}

// GenerateRows creates numRows of realistic spreadsheet rows, each with
// numCols string cells.
func (g *Generator) GenerateRows(ctx context.Context, numRows, numCols int) ([][]string, error) {
	if !g.useAI {
		return staticRows(numRows, numCols), nil
	}

	log.Printf("Generating %d rows via AI...", numRows)
	rows, err := g.generateRows(ctx, numRows, numCols)
	if err != nil {
		log.Printf("AI generation failed (%v), falling back to static data", err)
		return staticRows(numRows, numCols), nil
	}
	log.Printf("Generated %d rows", len(rows))
	return rows, nil
}

func (g *Generator) generateRows(ctx context.Context, numRows, numCols int) ([][]string, error) {
	prompt := fmt.Sprintf(`Generate %d rows of realistic tabular data for a fictional customer list. Each row has exactly %d cells: name, email, city, and a numeric age as a string (in that order, truncated or padded to %d cells).

Return as a JSON array of arrays of strings, nothing else. Use diverse but realistic values.`, numRows, numCols, numCols)

	rows, err := callOpenAI[[][]string](ctx, g.client, g.model, prompt)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("no rows in response")
	}
	return rows, nil
}

func callOpenAI[T any](ctx context.Context, client *openai.Client, model, prompt string) (T, error) {
	var result T

	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return result, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return result, fmt.Errorf("no response from OpenAI")
	}

	content := resp.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return result, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	return result, nil
}
