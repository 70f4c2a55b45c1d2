package student

// Classification thresholds; fixed constants of the domain.
const (
	LowAttendanceThreshold    = 75.0
	AtRiskGradeThreshold      = 50.0
	AtRiskAttendanceThreshold = 60.0
)

// The classifiers below are pure: they never mutate their input and are safe
// to re-run on every roster feed event. A record with a missing attendance or
// grade value is excluded from any set whose predicate needs that value.

// LowAttendance returns all students with attendance below 75%.
func LowAttendance(students []Student) []Student {
	return filter(students, isLowAttendance)
}

// AtRisk returns all students with a grade below 50% or attendance below 60%.
func AtRisk(students []Student) []Student {
	return filter(students, isAtRisk)
}

// NeedsAttention returns all students flagged for well-being follow-up:
// attendance below 75% or grade below 50%.
func NeedsAttention(students []Student) []Student {
	return filter(students, func(s Student) bool {
		return isLowAttendance(s) || (s.Grade.Valid && s.Grade.Float64 < AtRiskGradeThreshold)
	})
}

// Unsigned returns all students whose report has not been signed.
func Unsigned(students []Student) []Student {
	return filter(students, func(s Student) bool { return !s.IsSigned() })
}

func isLowAttendance(s Student) bool {
	return s.Attendance.Valid && s.Attendance.Float64 < LowAttendanceThreshold
}

func isAtRisk(s Student) bool {
	return (s.Grade.Valid && s.Grade.Float64 < AtRiskGradeThreshold) ||
		(s.Attendance.Valid && s.Attendance.Float64 < AtRiskAttendanceThreshold)
}

func filter(students []Student, pred func(Student) bool) []Student {
	out := make([]Student, 0, len(students))
	for _, s := range students {
		if pred(s) {
			out = append(out, s)
		}
	}
	return out
}

// Summary holds the dashboard counts derived from one roster snapshot.
type Summary struct {
	Total           int `json:"total"`
	LowAttendance   int `json:"low_attendance"`
	AtRisk          int `json:"at_risk"`
	UnsignedReports int `json:"unsigned_reports"`
}

// Summarize derives the dashboard counts from the given roster.
func Summarize(students []Student) Summary {
	return Summary{
		Total:           len(students),
		LowAttendance:   len(LowAttendance(students)),
		AtRisk:          len(AtRisk(students)),
		UnsignedReports: len(Unsigned(students)),
	}
}
