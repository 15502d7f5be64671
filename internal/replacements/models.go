package replacements

// Replacement is one row of a group's replacement table.
type Replacement struct {
	// Pair is the lesson number as printed (two lessons make one pair).
	Pair            string `json:"pair"`
	OriginalSubject string `json:"original_subject"`
	Teacher         string `json:"teacher"`
	NewSubject      string `json:"new_subject"`
	Classroom       string `json:"classroom"`
}

// Schedule is everything parsed from one rendering of the content container.
type Schedule struct {
	// Date is the ISO date (YYYY-MM-DD) found in RawDate, if any.
	Date    string `json:"date,omitempty"`
	RawDate string `json:"raw_date,omitempty"`

	// Groups maps a group number to its replacements; groups without any
	// replacement are omitted.
	Groups map[string][]Replacement `json:"groups"`
}

// Teacher values that mark a lesson as cancelled or moved rather than
// naming a person.
const (
	TeacherCancelled = "Отмена пары"
	TeacherMoved     = "Перенос пары"
)

// Empty reports whether the schedule has no replacements at all.
func (s *Schedule) Empty() bool {
	return s == nil || len(s.Groups) == 0
}
