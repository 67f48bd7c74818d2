package generate

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-research-assistant-be/internal/constant"
	"ai-research-assistant-be/pkg/llm"
	"ai-research-assistant-be/pkg/rag/state"
)

var sectionHeaders = map[state.SourceKind]string{
	state.SourceLocalDocument:  "=== UPLOADED DOCUMENTS ===",
	state.SourceKnowledgeBase:  "=== INSTITUTIONAL RESOURCES ===",
	state.SourceCodeRepository: "=== REPOSITORIES & CODE ===",
	state.SourceWeb:            "=== WEB SEARCH RESULTS ===",
}

// Generator produces one candidate answer per pass from the compiled
// retrieval context.
type Generator struct {
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewGenerator(llmProvider llm.LLMProvider, logger *log.Logger) *Generator {
	return &Generator{
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Generate runs one generation pass over everything currently retrieved.
// The returned candidate carries the answer text and the resolvable
// citations; quality scores are filled in by the evaluator afterwards.
//
// A model failure is not an error: the candidate degrades to a fixed apology
// with zero confidence and no citations, and ok reports false so the caller
// can force-accept it.
func (g *Generator) Generate(
	ctx context.Context,
	question string,
	resultsBySource map[state.SourceKind][]state.RankedResult,
	history []llm.Message,
) (candidate state.CandidateAnswer, ok bool) {

	compiled := CompileContext(resultsBySource)
	prompt := g.buildPrompt(question, compiled)

	fullHistory := append(history, llm.Message{Role: "user", Content: prompt})

	text, err := g.llmProvider.Chat(ctx, fullHistory)
	if err != nil {
		g.logger.Printf("[ERROR] Answer generation failed: %v", err)
		return state.CandidateAnswer{
			Text: constant.ApologyAnswer,
		}, false
	}

	candidate = state.CandidateAnswer{
		Text:         text,
		SourcesCited: ScanCitations(text, resultsBySource),
	}

	g.logger.Printf("[GENERATION] Answer generated, %d citations resolved", len(candidate.SourcesCited))

	return candidate, true
}

// CompileContext concatenates every retrieved snippet in the fixed order
// local -> knowledge base -> code repository -> web, each entry prefixed
// with its locator so citations can be mapped back deterministically.
func CompileContext(resultsBySource map[state.SourceKind][]state.RankedResult) string {
	var b strings.Builder

	for _, kind := range state.KindOrder {
		results := resultsBySource[kind]
		if len(results) == 0 {
			continue
		}

		b.WriteString(sectionHeaders[kind])
		b.WriteString("\n")
		for i, r := range results {
			b.WriteString(fmt.Sprintf("\n[Source %d: %s | %s]\n", i+1, r.Title, r.Locator))
			b.WriteString(r.Snippet)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return b.String()
}

// ScanCitations returns every retrieved result whose locator appears in the
// answer text. This is a post-hoc scan, not a model self-report, so every
// citation is guaranteed to resolve to a result present at generation time.
func ScanCitations(answerText string, resultsBySource map[state.SourceKind][]state.RankedResult) []state.RankedResult {
	var cited []state.RankedResult
	seen := make(map[string]bool)

	for _, kind := range state.KindOrder {
		for _, r := range resultsBySource[kind] {
			if r.Locator == "" || seen[r.Locator] {
				continue
			}
			if strings.Contains(answerText, r.Locator) {
				cited = append(cited, r)
				seen[r.Locator] = true
			}
		}
	}

	return cited
}

func (g *Generator) buildPrompt(question, compiledContext string) string {
	var prompt strings.Builder

	prompt.WriteString("You are a helpful research assistant. Answer the question based on the provided context. Be specific and cite sources.\n\n")

	prompt.WriteString("<context>\n")
	if compiledContext == "" {
		prompt.WriteString("(no sources were retrieved)\n")
	} else {
		prompt.WriteString(compiledContext)
	}
	prompt.WriteString("</context>\n\n")

	prompt.WriteString("<task_instructions>\n")
	prompt.WriteString("1. Answer ONLY from the material in <context>. If it is insufficient, say so plainly.\n")
	prompt.WriteString("2. When you use a source, cite it by repeating its locator (the part after the | in the source header) in parentheses.\n")
	prompt.WriteString("3. Be comprehensive but lead with the direct answer.\n")
	prompt.WriteString("</task_instructions>\n\n")

	prompt.WriteString("<user_question>\n")
	prompt.WriteString(question)
	prompt.WriteString("\n</user_question>\n\n")

	prompt.WriteString("Answer:")

	return prompt.String()
}
