package report

import (
	"strings"

	"github.com/kapu/influencer-insight-go/internal/domain"
)

// DefaultSourceTitle labels grounding sources that came without a title.
const DefaultSourceTitle = "Reference"

// DedupeSources keeps the first source per URI in order of first appearance.
// Sources without a URI are dropped.
func DedupeSources(sources []domain.GroundingSource) []domain.GroundingSource {
	out := make([]domain.GroundingSource, 0, len(sources))
	seen := make(map[string]struct{}, len(sources))

	for _, source := range sources {
		uri := strings.TrimSpace(source.URI)
		if uri == "" {
			continue
		}
		if _, dup := seen[uri]; dup {
			continue
		}
		seen[uri] = struct{}{}

		title := strings.TrimSpace(source.Title)
		if title == "" {
			title = DefaultSourceTitle
		}
		out = append(out, domain.GroundingSource{Title: title, URI: uri})
	}
	return out
}
