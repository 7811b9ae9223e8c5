package assembler

import (
	"regexp"

	"github.com/jonesrussell/blogsmith/internal/domain"
)

// markdownLinkPattern matches inline markdown links with http(s) targets.
var markdownLinkPattern = regexp.MustCompile(`\[([^\]]*)\]\((https?://[^)\s]+)\)`)

// extractOutboundLinks collects links from the selected research sources and
// from markdown links embedded in the section bodies, deduplicated by URL
// with the first occurrence winning. Research sources come first so their
// curated labels take precedence over in-text link labels.
func extractOutboundLinks(filtered *domain.ResearchData, sections []domain.Section) []domain.OutboundLink {
	seen := make(map[string]struct{})
	var links []domain.OutboundLink

	add := func(text, url string) {
		if url == "" {
			return
		}
		if _, dup := seen[url]; dup {
			return
		}
		seen[url] = struct{}{}
		if text == "" {
			text = domain.HostLabel(url)
		}
		links = append(links, domain.OutboundLink{Text: text, URL: url})
	}

	if filtered != nil {
		for _, src := range filtered.Sources {
			label := src.Source
			if label == "" {
				label = src.Title
			}
			add(label, src.URL)
		}
	}

	for _, sec := range sections {
		for _, match := range markdownLinkPattern.FindAllStringSubmatch(sec.Content, -1) {
			add(match[1], match[2])
		}
	}

	return links
}
