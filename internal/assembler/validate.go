package assembler

import "fmt"

// minContentLength is the smallest content body accepted for publication,
// in characters.
const minContentLength = 300

// Validate checks a document against the publication rules and returns the
// problems found. An empty slice means the document is publishable.
// Validation findings are data, not errors: callers decide whether a
// non-empty result blocks publishing.
func Validate(doc Document) []string {
	var problems []string

	if doc.Metadata.Title == "" {
		problems = append(problems, "title is required")
	}
	if doc.Metadata.Slug == "" {
		problems = append(problems, "slug is required")
	}
	if len(doc.Sections) == 0 {
		problems = append(problems, "at least one written section is required")
	}
	if len(doc.Content) < minContentLength {
		problems = append(problems, fmt.Sprintf(
			"content length %d is below the minimum of %d characters",
			len(doc.Content), minContentLength))
	}
	if doc.Metadata.PublishDate.IsZero() {
		problems = append(problems, "publish date is required")
	}

	return problems
}
