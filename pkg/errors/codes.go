package errors

// ErrorCode classifies a failed pipeline or approval operation for callers
// that need to decide between re-prompting the user and giving up.
type ErrorCode string

const (
	CodeNotFound         ErrorCode = "not_found"
	CodeForbidden        ErrorCode = "forbidden"
	CodeIncompleteFields ErrorCode = "incomplete_fields"
	CodeValidation       ErrorCode = "validation_error"
	CodeAlreadyResolved  ErrorCode = "already_resolved"
	CodeInternal         ErrorCode = "internal"
)

// ErrorCodeInfo contains metadata about an error code.
type ErrorCodeInfo struct {
	Code            ErrorCode
	Recoverable     bool
	Description     string
	SuggestedAction string
}

// ErrorCodeRegistry maps error codes to their metadata.
var ErrorCodeRegistry = map[ErrorCode]ErrorCodeInfo{
	CodeNotFound: {
		Code:            CodeNotFound,
		Recoverable:     false,
		Description:     "Referenced card, funnel, or request does not exist",
		SuggestedAction: "Re-sync the board: venda board",
	},
	CodeForbidden: {
		Code:            CodeForbidden,
		Recoverable:     false,
		Description:     "Actor does not own the card",
		SuggestedAction: "Only the responsible seller can move this card",
	},
	CodeIncompleteFields: {
		Code:            CodeIncompleteFields,
		Recoverable:     true,
		Description:     "Target stage requires fields the card does not have",
		SuggestedAction: "Fill the listed fields and retry the move",
	},
	CodeValidation: {
		Code:            CodeValidation,
		Recoverable:     true,
		Description:     "Malformed input (e.g. empty justification, discount below threshold)",
		SuggestedAction: "Correct the input and resubmit",
	},
	CodeAlreadyResolved: {
		Code:            CodeAlreadyResolved,
		Recoverable:     false,
		Description:     "Approval request was already approved or rejected",
		SuggestedAction: "Create a new request if another discount is needed",
	},
	CodeInternal: {
		Code:            CodeInternal,
		Recoverable:     false,
		Description:     "Unclassified internal error",
		SuggestedAction: "Check logs for details",
	},
}

// Classify maps an error chain to its ErrorCode.
func Classify(err error) ErrorCode {
	switch {
	case err == nil:
		return ""
	case IsNotFound(err):
		return CodeNotFound
	case IsForbidden(err):
		return CodeForbidden
	case IsAlreadyResolved(err):
		return CodeAlreadyResolved
	default:
		if _, ok := IsIncompleteFields(err); ok {
			return CodeIncompleteFields
		}
		if IsValidation(err) {
			return CodeValidation
		}
		return CodeInternal
	}
}

// IsRecoverable returns true if the given error code represents a failure the
// caller can fix by editing input and retrying.
func IsRecoverable(code ErrorCode) bool {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.Recoverable
	}
	return false
}

// GetSuggestedAction returns the suggested action for the given error code.
func GetSuggestedAction(code ErrorCode) string {
	if info, ok := ErrorCodeRegistry[code]; ok {
		return info.SuggestedAction
	}
	return "Check logs for details"
}
