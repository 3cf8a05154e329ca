package agent

import (
	"sort"
	"strings"

	"github.com/ternarybob/triage/internal/models"
)

// parseCitations extracts the source ids the model actually cited, ordered
// by first mention. Only ids of supplied passages count; ids the model
// invented are never reported. When the reply carries no recognizable
// citation the agent falls back to listing every supplied passage and flags
// the fallback so consumers can treat the attribution as low confidence.
func parseCitations(replyText string, supplied []models.Passage) (cited []string, fallback bool) {
	type mention struct {
		id  string
		pos int
	}

	var mentions []mention
	for _, p := range supplied {
		// Bracketed form first, bare id as a concession to sloppy replies.
		pos := strings.Index(replyText, "["+p.SourceID+"]")
		if pos < 0 {
			pos = strings.Index(replyText, p.SourceID)
		}
		if pos >= 0 {
			mentions = append(mentions, mention{id: p.SourceID, pos: pos})
		}
	}

	if len(mentions) == 0 {
		all := make([]string, 0, len(supplied))
		for _, p := range supplied {
			all = append(all, p.SourceID)
		}
		return all, true
	}

	sort.SliceStable(mentions, func(i, j int) bool { return mentions[i].pos < mentions[j].pos })
	cited = make([]string, 0, len(mentions))
	for _, m := range mentions {
		cited = append(cited, m.id)
	}
	return cited, false
}
