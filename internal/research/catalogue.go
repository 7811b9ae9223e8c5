package research

import (
	"strings"

	"github.com/jonesrussell/blogsmith/internal/domain"
)

// fallbackCatalogue is the in-process tier of last resort: generic clinical
// reference sources returned when both external research tiers come back
// empty. Being in-process, it cannot fail, which is what guarantees research
// always yields at least one source.
var fallbackCatalogue = []domain.Source{
	{
		Title:          "Sports injury overview",
		Content:        "General guidance on diagnosis, grading and recovery timelines for common sports injuries including sprains, strains and overuse conditions.",
		Source:         "nhs.uk",
		URL:            "https://www.nhs.uk/conditions/sports-injuries/",
		RelevanceScore: 0.3,
	},
	{
		Title:          "Exercise and rehabilitation principles",
		Content:        "Progressive loading, pain monitoring and return-to-activity criteria used in physiotherapy rehabilitation programmes.",
		Source:         "csp.org.uk",
		URL:            "https://www.csp.org.uk/conditions",
		RelevanceScore: 0.3,
	},
	{
		Title:          "Pain management and recovery",
		Content:        "Evidence summaries on managing acute and chronic musculoskeletal pain, including ice, compression, movement and graded exposure.",
		Source:         "nice.org.uk",
		URL:            "https://www.nice.org.uk/guidance/conditions-and-diseases/musculoskeletal-conditions",
		RelevanceScore: 0.3,
	},
	{
		Title:          "Strength and conditioning basics",
		Content:        "Foundational strength, mobility and balance work relevant to injury prevention and return to sport.",
		Source:         "physio-pedia.com",
		URL:            "https://www.physio-pedia.com/Strength_Training",
		RelevanceScore: 0.3,
	},
}

// catalogueFallback filters the fixed catalogue by keyword overlap with the
// topic. When nothing overlaps the whole catalogue is returned, so the
// result is never empty.
func catalogueFallback(keywords []string) []domain.Source {
	if len(keywords) == 0 {
		return append([]domain.Source(nil), fallbackCatalogue...)
	}

	matched := make([]domain.Source, 0, len(fallbackCatalogue))
	for _, src := range fallbackCatalogue {
		haystack := strings.ToLower(src.Title + " " + src.Content)
		for _, kw := range keywords {
			if strings.Contains(haystack, kw) {
				matched = append(matched, src)
				break
			}
		}
	}

	if len(matched) == 0 {
		return append([]domain.Source(nil), fallbackCatalogue...)
	}
	return matched
}
