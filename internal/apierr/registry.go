package apierr

// template is a registered description of a known envelope code.
type template struct {
	Category   Category
	Message    string
	Suggestion string
}

// registry maps envelope business codes the blog API is known to return.
// Codes outside this table are classified by HTTP status.
var registry = map[int]template{
	401: {
		Category:   CategoryAuth,
		Message:    "token invalid or expired",
		Suggestion: "Run login again to obtain a fresh token.",
	},
	403: {
		Category:   CategoryAuth,
		Message:    "operation not permitted for this user",
		Suggestion: "Only the owning user may modify this entity.",
	},
	404: {
		Category:   CategoryNotFound,
		Message:    "entity not found",
		Suggestion: "The id may be stale; refetch the parent list.",
	},
	422: {
		Category:   CategoryRemote,
		Message:    "validation failed",
		Suggestion: "Check required fields (title, column) before submitting.",
	},
	503: {
		Category:   CategoryRemote,
		Message:    "service temporarily unavailable",
		Suggestion: "Retry after a short delay.",
	},
}
