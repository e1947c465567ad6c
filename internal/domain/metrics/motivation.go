package metrics

var motivations = []string{
	"Every day is a step closer to the move. Keep pushing!",
	"Progress, not perfection. You're doing great!",
	"Small consistent steps lead to big changes.",
	"Your future self will thank you for today's effort.",
	"The best time to start was yesterday. The next best time is now.",
	"Believe in yourself. You've got this!",
	"One day at a time. One step at a time.",
	"Your dedication will pay off. Stay focused!",
	"Dream big, work hard, stay focused.",
	"Every expert was once a beginner. Keep learning!",
}

// Motivation returns one encouraging line.
func Motivation(c Chooser) string {
	return pick(c, motivations)
}
