package metrics

import "fmt"

// ══════════════════════════════════════════════════════════════════════════════
// DAILY FOCUS
// ══════════════════════════════════════════════════════════════════════════════

// Priority ranks how pressing a recommendation is.
type Priority string

const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Area names what the recommendation is about.
type Area string

const (
	AreaLanguage Area = "language"
	AreaStudy    Area = "study"
	AreaIncome   Area = "income"
	AreaBalanced Area = "balanced"
)

const (
	// behindThreshold is the percent under which a lagging track is flagged.
	behindThreshold = 70
	// incomeLagThreshold is the income percent under which income gets focus
	// once both learning tracks are healthy.
	incomeLagThreshold = 50
	// excellentThreshold marks both learning tracks as excellent.
	excellentThreshold = 80

	streakDailyMinutes = 60
	streakMinTopUp     = 15
)

// Labels are the display names of the two learning tracks.
type Labels struct {
	Language string `json:"language"`
	Study    string `json:"study"`
}

// DefaultLabels returns the stock track names.
func DefaultLabels() Labels {
	return Labels{Language: "Vietnamese", Study: "Python"}
}

// FocusInput is everything the recommender looks at.
type FocusInput struct {
	StudyPercent    int
	LanguagePercent int
	IncomePercent   int
	Streak          StreakStatus
	// LanguageMinutesToday is language practice already logged today.
	LanguageMinutesToday float64
}

// Recommendation is a single prioritized focus suggestion.
type Recommendation struct {
	Area       Area     `json:"area"`
	Priority   Priority `json:"priority"`
	Reason     string   `json:"reason"`
	Suggestion string   `json:"suggestion"`
	Icon       string   `json:"icon"`
}

// Recommender chooses the focus for today.
type Recommender struct {
	labels  Labels
	chooser Chooser
	pools   SuggestionPools
}

// NewRecommender creates a recommender. A nil chooser picks at random.
func NewRecommender(labels Labels, chooser Chooser) *Recommender {
	if chooser == nil {
		chooser = RandomChooser{}
	}
	if labels.Language == "" || labels.Study == "" {
		labels = DefaultLabels()
	}
	return &Recommender{labels: labels, chooser: chooser, pools: DefaultSuggestionPools()}
}

// WithPools replaces the suggestion pools. Empty pools keep the defaults.
func (r *Recommender) WithPools(p SuggestionPools) *Recommender {
	r.pools = r.pools.merge(p)
	return r
}

// Labels returns the track names in use.
func (r *Recommender) Labels() Labels {
	return r.labels
}

// Recommend applies the rules in order; the first one that matches wins.
func (r *Recommender) Recommend(in FocusInput) Recommendation {
	study, lang, income := in.StudyPercent, in.LanguagePercent, in.IncomePercent

	// 1. protect the streak
	if in.Streak.AtRisk && !in.Streak.PracticedToday {
		needed := max(streakMinTopUp, streakDailyMinutes-int(in.LanguageMinutesToday))
		return Recommendation{
			Area:       AreaLanguage,
			Priority:   PriorityUrgent,
			Reason:     fmt.Sprintf("Your %d-day streak is at risk!", in.Streak.Streak),
			Suggestion: fmt.Sprintf("Just %d more minutes of %s to keep it alive", needed, r.labels.Language),
			Icon:       "🔥",
		}
	}

	// 2. language behind study
	if lang < study && lang < behindThreshold {
		return r.language(PriorityHigh,
			fmt.Sprintf("You're at %d%% of your %s target (vs %d%% %s)", lang, r.labels.Language, study, r.labels.Study))
	}

	// 3. study behind language
	if study < lang && study < behindThreshold {
		return r.study(PriorityHigh,
			fmt.Sprintf("You're at %d%% of your %s target (vs %d%% %s)", study, r.labels.Study, lang, r.labels.Language))
	}

	// 4. learning is fine, income is not
	if study >= behindThreshold && lang >= behindThreshold && income < incomeLagThreshold {
		return Recommendation{
			Area:       AreaIncome,
			Priority:   PriorityMedium,
			Reason:     fmt.Sprintf("Learning is on track! Income is at %d%% of target", income),
			Suggestion: pick(r.chooser, r.pools.Income),
			Icon:       "💼",
		}
	}

	// 5. everything excellent
	if study >= excellentThreshold && lang >= excellentThreshold {
		return Recommendation{
			Area:       AreaBalanced,
			Priority:   PriorityLow,
			Reason:     "You're crushing it this week!",
			Suggestion: pick(r.chooser, r.pools.Balanced),
			Icon:       "🎯",
		}
	}

	// 6. work on the lower track, ties go to study
	if study <= lang {
		return r.study(PriorityMedium, fmt.Sprintf("%s is at %d%% - room for improvement", r.labels.Study, study))
	}
	return r.language(PriorityMedium, fmt.Sprintf("%s is at %d%% - room for improvement", r.labels.Language, lang))
}

func (r *Recommender) language(p Priority, reason string) Recommendation {
	return Recommendation{
		Area:       AreaLanguage,
		Priority:   p,
		Reason:     reason,
		Suggestion: pick(r.chooser, r.pools.Language),
		Icon:       "🗣️",
	}
}

func (r *Recommender) study(p Priority, reason string) Recommendation {
	return Recommendation{
		Area:       AreaStudy,
		Priority:   p,
		Reason:     reason,
		Suggestion: pick(r.chooser, r.pools.Study),
		Icon:       "💻",
	}
}
