package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/relohub/progress-tracker/internal/application/command"
	"github.com/relohub/progress-tracker/internal/application/query"
	"github.com/relohub/progress-tracker/internal/domain/metrics"
	"github.com/relohub/progress-tracker/internal/domain/tracking"
)

const barWidth = 20

// Renderer writes views to w.
type Renderer struct {
	w  io.Writer
	st styles
}

// NewRenderer creates a renderer for w. Colors are dropped when w is not a
// terminal.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// ══════════════════════════════════════════════════════════════════════════════
// STATS
// ══════════════════════════════════════════════════════════════════════════════

// Stats renders the stats snapshot.
func (r *Renderer) Stats(s *query.StatsDTO) {
	st := r.st

	header := st.title.Render("Progress") + st.muted.Render(fmt.Sprintf("  %s · %d days to %s · grade ", s.Date, s.DaysRemaining, s.TargetDate)) +
		st.hot.Render(s.Grade)

	tracks := []string{
		r.row(s.Labels.Study, s.Study.WeekPercent,
			fmt.Sprintf("%s / %s h this week", num(s.Study.Hours.Week), num(s.Study.WeeklyTarget))),
		r.row(s.Labels.Language, s.Language.WeekPercent,
			fmt.Sprintf("%s / %s h this week", num(s.Language.Hours.Week), num(s.Language.WeeklyTarget))),
		r.row("Income", s.Income.MonthPercent,
			fmt.Sprintf("%s / %s %s this month", s.Income.Month.StringFixed(2), s.Income.MonthlyTarget.StringFixed(2), s.Income.Currency)),
	}

	totals := []string{
		st.muted.Render(fmt.Sprintf("%s all time: %s h · %s all time: %s h",
			s.Labels.Study, num(s.Study.Hours.AllTime), s.Labels.Language, num(s.Language.Hours.AllTime))),
		st.muted.Render(fmt.Sprintf("Streak: %d days (longest %d)%s",
			s.Language.Streak.Streak, s.Language.LongestStreak, atRisk(s.Language.Streak))),
		st.muted.Render(fmt.Sprintf("Earned: %s %s over %d payments · avg %s/h",
			s.Income.Total.StringFixed(2), s.Income.Currency, s.Income.Events, s.Income.AverageHourlyRate.StringFixed(2))),
		st.muted.Render(fmt.Sprintf("Runway: %d months (savings %s, burn %s/month)",
			s.Finance.RunwayMonths, s.Finance.Savings.StringFixed(2), s.Finance.MonthlyBurn.StringFixed(2))),
		st.muted.Render(fmt.Sprintf("Skills %d/%d (%d%%) · Milestones %d/%d (%d%%)",
			s.Skills.Completed, s.Skills.Total, s.Skills.Percent,
			s.Milestones.Completed, s.Milestones.Total, s.Milestones.Percent)),
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		header, "",
		strings.Join(tracks, "\n"), "",
		strings.Join(totals, "\n"))
	fmt.Fprintln(r.w, st.pane.Render(body))
}

// ══════════════════════════════════════════════════════════════════════════════
// TODAY
// ══════════════════════════════════════════════════════════════════════════════

// Today renders the daily view.
func (r *Renderer) Today(t *query.TodayDTO) {
	st := r.st

	lines := []string{
		st.title.Render(t.Weekday+" "+t.Date) + st.muted.Render(fmt.Sprintf("  week %s → %s · %d days left", t.WeekStart, t.WeekEnd, t.DaysRemaining)),
	}
	if t.Motivation != "" {
		lines = append(lines, st.hot.Render(t.Motivation))
	}
	lines = append(lines, "",
		r.track(t.Study),
		r.track(t.Language),
		r.row("Income", t.Income.Percent,
			fmt.Sprintf("%s / %s this month, %s to go", t.Income.Month.StringFixed(2), t.Income.Target.StringFixed(2), t.Income.Gap.StringFixed(2))),
		"",
		st.muted.Render(fmt.Sprintf("Streak: %d days%s", t.Streak.Streak, atRisk(t.Streak))),
	)

	if len(t.UpcomingMilestones) > 0 {
		lines = append(lines, "", st.title.Render("Upcoming"))
		for _, m := range t.UpcomingMilestones {
			lines = append(lines, fmt.Sprintf("  %s  %s", st.muted.Render(m.TargetDate), m.Title))
		}
	}

	fmt.Fprintln(r.w, st.pane.Render(strings.Join(lines, "\n")))
}

func (r *Renderer) track(t query.TrackTodayDTO) string {
	unit := "h"
	if t.Unit == "minutes" {
		unit = "min"
	}
	return r.row(t.Label, t.WeekPercent, fmt.Sprintf("today %s/%s %s · week %s/%s %s",
		num(t.Today), num(t.DailyTarget), unit, num(t.Week), num(t.WeeklyTarget), unit))
}

// ══════════════════════════════════════════════════════════════════════════════
// RECOMMENDATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Recommendations renders the focus, pacing and weekly report card.
func (r *Renderer) Recommendations(d *query.RecommendationsDTO) {
	st := r.st
	f := d.Focus

	lines := []string{
		st.title.Render("Focus") + " " + r.priority(f.Priority),
		f.Icon + " " + f.Reason,
		st.muted.Render("→ " + f.Suggestion),
		"",
		st.title.Render(d.Labels.Language + " pacing"),
		fmt.Sprintf("%s / %s h · %s h/week needed over %s weeks (target %s h/week)",
			num(d.Pacing.Total), num(d.Pacing.Target), num(d.Pacing.RequiredWeeklyRate),
			num(d.Pacing.WeeksRemaining), num(d.Pacing.CurrentWeeklyRate)),
		onTrack(st, d.Pacing.OnTrack),
		"",
		st.title.Render("Week "+d.Weekly.WeekStart+" → "+d.Weekly.WeekEnd) + "  " + st.hot.Render(d.Weekly.Grade) +
			st.muted.Render(fmt.Sprintf(" (avg %s%%)", num(d.Weekly.Average))),
		r.row(d.Labels.Study, d.Weekly.StudyPercent, fmt.Sprintf("%s / %s h", num(d.Weekly.StudyHours), num(d.Weekly.StudyTarget))),
		r.row(d.Labels.Language, d.Weekly.LanguagePercent, fmt.Sprintf("%s / %s h", num(d.Weekly.LanguageHours), num(d.Weekly.LanguageTarget))),
		r.row("Income", d.Weekly.IncomePercent, fmt.Sprintf("%s / %s", d.Weekly.IncomeMonth.StringFixed(2), d.Weekly.IncomeTarget.StringFixed(2))),
	}

	if a := d.Adjustment; a != nil {
		lines = append(lines, "", st.warn.Render(a.Message),
			st.muted.Render(fmt.Sprintf("Try %d h %s and %d h %s per week.",
				a.StudyWeeklyTarget, d.Labels.Study, a.LanguageWeeklyTarget, d.Labels.Language)))
	}

	fmt.Fprintln(r.w, st.pane.Render(strings.Join(lines, "\n")))
}

func (r *Renderer) priority(p metrics.Priority) string {
	switch p {
	case metrics.PriorityUrgent:
		return r.st.bad.Render("[urgent]")
	case metrics.PriorityHigh:
		return r.st.warn.Render("[high]")
	case metrics.PriorityMedium:
		return r.st.muted.Render("[medium]")
	default:
		return r.st.good.Render("[" + string(p) + "]")
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// WRITE RESULTS
// ══════════════════════════════════════════════════════════════════════════════

// Session confirms a logged session.
func (r *Renderer) Session(s tracking.PracticeSession) {
	fmt.Fprintf(r.w, "%s logged %s %s of %s on %s (#%d)\n",
		r.st.good.Render("✓"), num(s.Amount), s.Kind.Unit(), s.Kind, s.Date, s.ID)
}

// Income confirms a recorded payment.
func (r *Renderer) Income(res *command.RecordIncomeResult) {
	e := res.Event
	line := fmt.Sprintf("%s recorded %s %s", r.st.good.Render("✓"), e.Amount.StringFixed(2), tracking.BaseCurrency)
	if res.OriginalCurrency != tracking.BaseCurrency {
		line += r.st.muted.Render(fmt.Sprintf(" (%s %s)", res.OriginalAmount.StringFixed(2), res.OriginalCurrency))
	}
	fmt.Fprintf(r.w, "%s for %q on %s (#%d)\n", line, e.Title, e.Date, e.ID)
}

// Seeded reports a skill seed.
func (r *Renderer) Seeded(res *command.SeedSkillsResult) {
	fmt.Fprintf(r.w, "%s seeded %d new skills (%d in checklist)\n", r.st.good.Render("✓"), res.Added, res.Total)
}

// Skills renders the checklist by phase.
func (r *Renderer) Skills(d *query.SkillListDTO) {
	st := r.st
	for _, ph := range d.Phases {
		fmt.Fprintln(r.w, st.title.Render(fmt.Sprintf("Phase %d", ph.Phase))+
			st.muted.Render(fmt.Sprintf("  %d/%d", ph.Progress.Completed, ph.Progress.Total)))
		for _, s := range ph.Skills {
			mark := st.muted.Render("○")
			if s.Completed {
				mark = st.good.Render("●")
			}
			fmt.Fprintf(r.w, "  %s %s %s\n", mark, s.Name, st.muted.Render(s.SkillID))
		}
	}
	fmt.Fprintln(r.w, st.muted.Render(fmt.Sprintf("%d/%d complete (%d%%)", d.Progress.Completed, d.Progress.Total, d.Progress.Percent)))
}

// ══════════════════════════════════════════════════════════════════════════════
// HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// row renders "label [bar] pct% detail".
func (r *Renderer) row(label string, percent int, detail string) string {
	st := r.st
	return st.label.Render(label) + " " + r.bar(percent) + " " +
		st.percentStyle(percent).Render(fmt.Sprintf("%3d%%", percent)) + "  " + st.muted.Render(detail)
}

func (r *Renderer) bar(percent int) string {
	filled := min(max(percent, 0), 100) * barWidth / 100
	return r.st.barFull.Render(strings.Repeat("█", filled)) +
		r.st.barRest.Render(strings.Repeat("░", barWidth-filled))
}

func atRisk(s metrics.StreakStatus) string {
	if s.AtRisk {
		return " · at risk, practice today"
	}
	return ""
}

func onTrack(st styles, ok bool) string {
	if ok {
		return st.good.Render("on track")
	}
	return st.bad.Render("behind pace")
}

// num formats a quantity with at most one decimal.
func num(v float64) string {
	return strconv.FormatFloat(metrics.Round1(v), 'f', -1, 64)
}
