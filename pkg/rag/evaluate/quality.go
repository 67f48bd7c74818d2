package evaluate

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"ai-research-assistant-be/pkg/llm"
	"ai-research-assistant-be/pkg/rag/state"
)

// QualityConfig holds the accept-vs-iterate gate.
type QualityConfig struct {
	ConfidenceThreshold float64
}

func DefaultQualityConfig() QualityConfig {
	return QualityConfig{ConfidenceThreshold: 0.8}
}

// QualityScores are the three [0,1] dimensions the evaluator produces.
type QualityScores struct {
	Completeness float64 `json:"completeness"`
	Accuracy     float64 `json:"accuracy"`
	Clarity      float64 `json:"clarity"`
}

// Confidence is the mean of the three dimensions.
func (q QualityScores) Confidence() float64 {
	return (q.Completeness + q.Accuracy + q.Clarity) / 3
}

// QualityEvaluator scores a candidate answer with a second model call and
// falls back to a deterministic heuristic when the model is unavailable or
// returns unusable output. It never errors.
type QualityEvaluator struct {
	llmProvider llm.LLMProvider
	cfg         QualityConfig
	logger      *log.Logger
}

func NewQualityEvaluator(llmProvider llm.LLMProvider, cfg QualityConfig, logger *log.Logger) *QualityEvaluator {
	if cfg.ConfidenceThreshold <= 0 {
		cfg = DefaultQualityConfig()
	}
	return &QualityEvaluator{
		llmProvider: llmProvider,
		cfg:         cfg,
		logger:      logger,
	}
}

// Score evaluates the answer text against the question and the evidence it
// was generated from.
func (e *QualityEvaluator) Score(
	ctx context.Context,
	question string,
	answerText string,
	citedCount int,
	retrieved []state.RankedResult,
) QualityScores {

	prompt := e.buildPrompt(question, answerText)

	response, err := e.llmProvider.Generate(ctx, prompt, llm.WithTemperature(0.0))
	if err != nil {
		e.logger.Printf("[WARN] Quality evaluation call failed, using heuristic: %v", err)
		return heuristicScores(answerText, citedCount, retrieved)
	}

	scores, err := parseScores(response)
	if err != nil {
		e.logger.Printf("[WARN] Quality evaluation parse failed, using heuristic: %v", err)
		return heuristicScores(answerText, citedCount, retrieved)
	}

	return scores
}

// Accept reports the gate decision: accept iff confidence reaches the
// threshold or the iteration bound is hit. The bound guarantees termination
// regardless of the raw scores.
func (e *QualityEvaluator) Accept(confidence float64, iteration, maxIterations int) bool {
	return confidence >= e.cfg.ConfidenceThreshold || iteration >= maxIterations
}

func (e *QualityEvaluator) buildPrompt(question, answerText string) string {
	var prompt strings.Builder

	prompt.WriteString("Evaluate this answer for completeness and quality:\n\n")
	prompt.WriteString("Question: ")
	prompt.WriteString(question)
	prompt.WriteString("\nAnswer: ")
	prompt.WriteString(answerText)
	prompt.WriteString("\n\nRate on a scale of 0-1:\n")
	prompt.WriteString("- Completeness: Does it fully answer the question?\n")
	prompt.WriteString("- Accuracy: Is the information accurate?\n")
	prompt.WriteString("- Clarity: Is it clear and well-structured?\n\n")
	prompt.WriteString(`Respond in JSON with: {"completeness": 0.0-1.0, "accuracy": 0.0-1.0, "clarity": 0.0-1.0}`)

	return prompt.String()
}

func parseScores(response string) (QualityScores, error) {
	jsonContent := extractJSON(response)
	if jsonContent == "" {
		return QualityScores{}, fmt.Errorf("no JSON found in response")
	}

	var scores QualityScores
	if err := json.Unmarshal([]byte(jsonContent), &scores); err != nil {
		return QualityScores{}, fmt.Errorf("JSON unmarshal failed: %w", err)
	}

	scores.Completeness = clamp01(scores.Completeness)
	scores.Accuracy = clamp01(scores.Accuracy)
	scores.Clarity = clamp01(scores.Clarity)

	return scores, nil
}

// heuristicScores is the resource-constrained path: answer length drives
// completeness, citation ratio drives accuracy, snippet-term overlap drives
// clarity. All outputs stay within [0,1].
func heuristicScores(answerText string, citedCount int, retrieved []state.RankedResult) QualityScores {
	const targetLength = 400

	completeness := float64(len(answerText)) / targetLength
	if completeness > 1 {
		completeness = 1
	}

	accuracy := 0.0
	if len(retrieved) > 0 {
		accuracy = float64(citedCount) / float64(len(retrieved))
		if accuracy > 1 {
			accuracy = 1
		}
	}

	clarity := overlapRatio(answerText, retrieved)

	return QualityScores{
		Completeness: clamp01(completeness),
		Accuracy:     clamp01(accuracy),
		Clarity:      clamp01(clarity),
	}
}

// overlapRatio measures how many retrieved snippets share at least one
// significant term with the answer.
func overlapRatio(answerText string, retrieved []state.RankedResult) float64 {
	if len(retrieved) == 0 {
		return 0
	}

	answerLower := strings.ToLower(answerText)
	overlapping := 0
	for _, r := range retrieved {
		for _, word := range strings.Fields(strings.ToLower(r.Snippet)) {
			if len(word) < 5 {
				continue
			}
			if strings.Contains(answerLower, word) {
				overlapping++
				break
			}
		}
	}

	return float64(overlapping) / float64(len(retrieved))
}

func extractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return ""
	}

	return response[startIdx : endIdx+1]
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
