package source

import (
	"context"
	"strings"
	"time"

	"ai-research-assistant-be/pkg/rag/state"

	"github.com/google/uuid"
)

// DefaultTopK caps how many results a single source contributes per pass.
const DefaultTopK = 5

// DefaultTimeout bounds one retrieval call. A slow source never stalls the
// rest of the wave.
const DefaultTimeout = 10 * time.Second

// RetrievalSource is the single capability the pipeline needs from a
// knowledge source. Retrieve must return within the source's timeout; any
// internal failure surfaces as an error that the orchestrator treats as
// non-fatal.
type RetrievalSource interface {
	Kind() state.SourceKind

	// Enabled reports whether this source participates for the given
	// question. Gating is keyword-based and never errors.
	Enabled(question string) bool

	Retrieve(ctx context.Context, question string, userScope uuid.UUID) ([]state.RankedResult, error)
}

// matchesAny reports whether the question contains any of the trigger
// keywords, case-insensitive.
func matchesAny(question string, keywords []string) bool {
	lower := strings.ToLower(question)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// retrieveBounded runs one index call under the source timeout and caps the
// result count to topK.
func retrieveBounded(
	ctx context.Context,
	timeout time.Duration,
	topK int,
	query func(ctx context.Context) ([]state.RankedResult, error),
) ([]state.RankedResult, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	results, err := query(ctx)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
