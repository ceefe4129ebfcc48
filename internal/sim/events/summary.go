package events

import "strings"

// Summary aggregates the rolling choice history by philosophical
// category. DominantTrait is "balanced" on a tie or an empty history.
type Summary struct {
	Counts        map[string]int `json:"counts"`
	DominantTrait string         `json:"dominant_trait"`
	EventCount    int            `json:"event_count"`
}

// keywordHints back-stop classification for catalog entries authored
// without a category tag. Tags are the primary signal.
var keywordHints = map[string][]string{
	CategoryCompassion:  {"help", "shield", "share", "care", "spare", "nudge"},
	CategoryCuriosity:   {"study", "learn", "watch", "explore", "closer"},
	CategoryCooperation: {"together", "alongside", "join", "organize", "pack"},
	CategoryEfficiency:  {"consume", "harvest", "stockpile", "quickly", "drive"},
}

func classifyChoiceText(text string) string {
	lower := strings.ToLower(text)
	for _, cat := range []string{CategoryCompassion, CategoryCuriosity, CategoryCooperation, CategoryEfficiency} {
		for _, kw := range keywordHints[cat] {
			if strings.Contains(lower, kw) {
				return cat
			}
		}
	}
	return ""
}

// ChoicesSummary classifies every historical choice and reports the
// per-category counts and the highest-count category.
func (e *Engine) ChoicesSummary() Summary {
	counts := map[string]int{
		CategoryCompassion:  0,
		CategoryCuriosity:   0,
		CategoryCooperation: 0,
		CategoryEfficiency:  0,
	}
	for _, rec := range e.history {
		cat := rec.Category
		if cat == "" {
			cat = classifyChoiceText(rec.ChoiceText)
		}
		if cat != "" {
			counts[cat]++
		}
	}

	dominant := "balanced"
	best := 0
	tied := false
	for _, cat := range []string{CategoryCompassion, CategoryCuriosity, CategoryCooperation, CategoryEfficiency} {
		c := counts[cat]
		if c > best {
			best = c
			dominant = cat
			tied = false
		} else if c == best && c > 0 {
			tied = true
		}
	}
	if tied || best == 0 {
		dominant = "balanced"
	}

	return Summary{
		Counts:        counts,
		DominantTrait: dominant,
		EventCount:    len(e.history),
	}
}
