package cli

// ErrorCode defines error types for CLI operations
type ErrorCode string

const (
	InvalidArguments ErrorCode = "InvalidArguments"
	DocumentRead     ErrorCode = "DocumentRead"
	NoPreviewImage   ErrorCode = "NoPreviewImage"
	BrowserFailed    ErrorCode = "BrowserFailed"
	InvalidParser    ErrorCode = "InvalidParser"
)

func (c ErrorCode) ErrorCode() string {
	return string(c)
}
