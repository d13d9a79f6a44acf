package contentpipe

import (
	"fmt"
	"strings"

	"github.com/postcraft/contentpipe/internal/pipeline"
	"github.com/postcraft/contentpipe/internal/value"
)

// OpError is the fail-hard error returned when random() or attr() runs
// against a value that violates its type precondition. It aborts the whole
// ProcessContents call; match it with errors.As.
type OpError = pipeline.OpError

// ContentError reports invalid post content.
type ContentError struct {
	Reason string
	Length int
	Max    int
}

func (e *ContentError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s (length %d, max %d)", e.Reason, e.Length, e.Max)
	}
	return e.Reason
}

// ValidatePostContent checks a fully substituted content string before it is
// handed to a platform poster: it must be non-blank, and when maxLength is
// positive it must fit. The length check counts runes, matching platform
// character limits.
func ValidatePostContent(content string, maxLength int) error {
	if strings.TrimSpace(content) == "" {
		return &ContentError{Reason: "post content cannot be empty"}
	}
	if n := len([]rune(content)); maxLength > 0 && n > maxLength {
		return &ContentError{Reason: "post content exceeds maximum length", Length: n, Max: maxLength}
	}
	return nil
}

// IsEmptyOrNA reports whether a field value is blank or one of the n/a
// spellings (N/A, n.a., not applicable, ...) that feeds use for absent data.
func IsEmptyOrNA(s string) bool {
	return value.IsEmptyOrNA(s)
}
