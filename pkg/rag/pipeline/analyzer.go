package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-research-assistant-be/pkg/llm"
)

// QuestionAnalysis is the planning pass over the incoming question. It only
// informs the trace; retrieval activation stays keyword- and gate-driven.
type QuestionAnalysis struct {
	Complexity int      `json:"complexity"`
	Type       string   `json:"type"`
	Sources    []string `json:"sources"`
}

func defaultAnalysis() QuestionAnalysis {
	return QuestionAnalysis{
		Complexity: 3,
		Type:       "general",
		Sources:    []string{"documents", "web"},
	}
}

// Analyzer classifies the question before retrieval starts. Best effort: a
// failed or unparseable model call falls back to a default analysis and
// never aborts the run.
type Analyzer struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewAnalyzer(llmProvider llm.LLMProvider, logger *log.Logger) *Analyzer {
	return &Analyzer{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

func (a *Analyzer) Analyze(ctx context.Context, question string) QuestionAnalysis {
	var prompt strings.Builder
	prompt.WriteString("Analyze this question and determine:\n")
	prompt.WriteString("1. Question complexity (1-5 scale)\n")
	prompt.WriteString("2. What type of information is needed (factual, analytical, procedural)\n")
	prompt.WriteString("3. Likely sources needed (documents, web, institutional resources, code)\n\n")
	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\n\n")
	prompt.WriteString(`Respond in JSON format: {"complexity": 1-5, "type": "...", "sources": ["..."]}`)

	response, err := a.llmProvider.Generate(ctx, prompt.String(), llm.WithTemperature(0.0))
	if err != nil {
		a.logger.Printf("[WARN] Question analysis failed, using default: %v", err)
		return defaultAnalysis()
	}

	analysis, err := parseAnalysis(response)
	if err != nil {
		a.logger.Printf("[WARN] Question analysis parse failed, using default: %v", err)
		return defaultAnalysis()
	}

	return analysis
}

func parseAnalysis(response string) (QuestionAnalysis, error) {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return QuestionAnalysis{}, fmt.Errorf("no JSON found in response")
	}

	var analysis QuestionAnalysis
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &analysis); err != nil {
		return QuestionAnalysis{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	if analysis.Complexity < 1 || analysis.Complexity > 5 {
		analysis.Complexity = 3
	}
	if analysis.Type == "" {
		analysis.Type = "general"
	}

	return analysis, nil
}
