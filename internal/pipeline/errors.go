package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTopicRequired rejects draft creation without a usable topic.
	ErrTopicRequired = errors.New("topic is required")
	// ErrResearchRequired guards the stages that need research data attached.
	ErrResearchRequired = errors.New("research must run before this stage")
	// ErrSectionTitleRequired rejects section writes without a title.
	ErrSectionTitleRequired = errors.New("section title is required")
	// ErrInvalidStatusFilter rejects list requests with an unknown status.
	ErrInvalidStatusFilter = errors.New("unknown status filter")
)

// StageError wraps a failure of one pipeline stage with enough context to
// tell the caller which draft and which stage broke.
type StageError struct {
	Stage   string
	DraftID string
	Err     error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed for draft %s: %v", e.Stage, e.DraftID, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// ValidationError reports that an assembled document is not publishable.
// The problems are data for the caller, listed in full rather than failing
// on the first one.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "draft failed validation: " + strings.Join(e.Problems, "; ")
}
