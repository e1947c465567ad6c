package metrics

// SuggestionPools are the fixed lists a recommendation draws its suggestion
// from.
type SuggestionPools struct {
	Language []string `yaml:"language"`
	Study    []string `yaml:"study"`
	Income   []string `yaml:"income"`
	Balanced []string `yaml:"balanced"`
}

// DefaultSuggestionPools returns the built-in pools.
func DefaultSuggestionPools() SuggestionPools {
	return SuggestionPools{
		Language: []string{
			"Complete a Duolingo lesson",
			"Listen to a podcast episode and shadow every sentence",
			"Practice speaking with a tutor on italki",
			"Review 30 flashcards in your spaced-repetition deck",
		},
		Study: []string{
			"Work through a tutorial or course module",
			"Practice coding challenges on LeetCode or HackerRank",
			"Build a small project to apply what you've learned",
		},
		Income: []string{
			"Browse Upwork for new opportunities",
			"Update your portfolio or profile",
			"Reach out to past clients for referrals",
		},
		Balanced: []string{
			"Great job staying on track!",
			"Consider working on your portfolio",
			"Take time to review and consolidate learning",
		},
	}
}

func (p SuggestionPools) merge(o SuggestionPools) SuggestionPools {
	if len(o.Language) > 0 {
		p.Language = o.Language
	}
	if len(o.Study) > 0 {
		p.Study = o.Study
	}
	if len(o.Income) > 0 {
		p.Income = o.Income
	}
	if len(o.Balanced) > 0 {
		p.Balanced = o.Balanced
	}
	return p
}
