package reviewdto

const (
	CodeBadRequest  = "bad_request"
	CodeInvalidFEN  = "invalid_fen"
	CodeEngine      = "engine_error"
	CodeUnavailable = "unavailable"
	CodeAuth        = "unauthorized"
)

// DomainError is the error body the evaluation service answers non-2xx requests with.
type DomainError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable,omitempty"`
}

func (e DomainError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "evaluation service error"
}
