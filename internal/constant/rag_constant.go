package constant

const (
	// ApologyAnswer is returned when the generation model call fails.
	// The run still terminates through synthesis with confidence 0.
	ApologyAnswer = "I'm sorry, I was unable to generate an answer to your question right now. Please try again in a moment."

	// WebQueryVariantSuffix is appended to the question when the quality
	// gate sends the run back for another retrieval pass.
	WebQueryVariantSuffix = " more details"
)

// KnowledgeBaseKeywords gate the institutional knowledge-base source.
// Matching is lowercase substring against the question.
var KnowledgeBaseKeywords = []string{
	"uva",
	"virginia",
	"onedrive",
	"vpn",
	"netbadge",
	"campus",
	"university",
	"institution",
}

// CodeRepositoryKeywords gate the code-repository source.
var CodeRepositoryKeywords = []string{
	"repository",
	"repo",
	"github",
	"git",
	"pull request",
	"pr",
	"issue",
	"commit",
	"branch",
	"code",
	"function",
	"class",
	"implementation",
}

// CodeListingKeywords mark questions that ask for the user's own
// repositories rather than code content.
var CodeListingKeywords = []string{
	"list",
	"show",
	"my repo",
	"my project",
	"what repo",
	"which repo",
	"my github",
}
