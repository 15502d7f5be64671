package replacements

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// PairNumber converts a lesson number into its pair number: lessons 1-2 are
// pair 1, 3-4 pair 2 and so on. Non-numeric lessons map to 0.
func PairNumber(lesson string) int {
	n, ok := lessonNumber(lesson)
	if !ok {
		return 0
	}
	if n <= 0 {
		return n
	}
	return (n + 1) / 2
}

func lessonNumber(lesson string) (int, bool) {
	if !isDigits(lesson) {
		return 0, false
	}
	n, err := strconv.Atoi(lesson)
	if err != nil {
		return 0, false
	}
	return n, true
}

// PairEntry is a replacement placed at its pair, with the group it belongs to
// when the listing spans several groups.
type PairEntry struct {
	Pair        int
	Group       string
	Replacement Replacement
}

// GroupByPairs sorts replacements by lesson and collapses the two lessons of
// a pair (an odd lesson followed by the next one) into one entry holding the
// first lesson. Non-numeric lessons are dropped.
func GroupByPairs(rs []Replacement) []PairEntry {
	return groupByPairs(rs, nil)
}

func groupByPairs(rs []Replacement, groups []string) []PairEntry {
	idx := make([]int, len(rs))
	for i := range idx {
		idx[i] = i
	}
	order := func(i int) float64 {
		if n, ok := lessonNumber(rs[i].Pair); ok {
			return float64(n)
		}
		return math.Inf(1)
	}
	sort.SliceStable(idx, func(a, b int) bool { return order(idx[a]) < order(idx[b]) })

	groupOf := func(i int) string {
		if groups == nil {
			return ""
		}
		return groups[i]
	}

	var out []PairEntry
	for k := 0; k < len(idx); k++ {
		cur := idx[k]
		n, ok := lessonNumber(rs[cur].Pair)
		if !ok {
			continue
		}
		out = append(out, PairEntry{Pair: PairNumber(rs[cur].Pair), Group: groupOf(cur), Replacement: rs[cur]})

		if k+1 < len(idx) && n%2 == 1 {
			next := idx[k+1]
			if m, ok := lessonNumber(rs[next].Pair); ok && m == n+1 && groupOf(next) == groupOf(cur) {
				k++
			}
		}
	}
	return out
}

// FormatReplacement renders a single replacement as chat text.
func FormatReplacement(r Replacement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🕐 Пара: %d\n", PairNumber(r.Pair))

	switch r.Teacher {
	case TeacherCancelled:
		b.WriteString("❌ Статус: Пара отменена\n")
	case TeacherMoved:
		b.WriteString("🔄 Статус: Пара перенесена\n")
	default:
		if r.NewSubject != "" {
			fmt.Fprintf(&b, "📗 Предмет: %s\n", r.NewSubject)
		}
		if r.Teacher != "" {
			fmt.Fprintf(&b, "👨‍🏫 Преподаватель: %s\n", r.Teacher)
		}
	}

	if r.Classroom != "" {
		if strings.ToUpper(r.Classroom) == "ДО" {
			b.WriteString("🏠 Форма обучения: Дистанционно\n")
		} else {
			fmt.Fprintf(&b, "🏛 Аудитория: %s\n", r.Classroom)
		}
	}

	return b.String()
}

// Groups returns the group numbers in numeric order.
func Groups(s *Schedule) []string {
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Groups))
	for g := range s.Groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool {
		a, errA := strconv.Atoi(out[i])
		b, errB := strconv.Atoi(out[j])
		if errA != nil || errB != nil {
			return out[i] < out[j]
		}
		return a < b
	})
	return out
}

// Teachers returns the distinct teacher names, excluding the cancelled and
// moved markers, sorted.
func Teachers(s *Schedule) []string {
	if s == nil {
		return nil
	}
	seen := map[string]struct{}{}
	for _, rs := range s.Groups {
		for _, r := range rs {
			if r.Teacher == "" || r.Teacher == TeacherCancelled || r.Teacher == TeacherMoved {
				continue
			}
			seen[r.Teacher] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// ForTeacher returns every replacement taught by teacher, by pair.
func ForTeacher(s *Schedule, teacher string) []PairEntry {
	if s == nil {
		return nil
	}
	var (
		rs     []Replacement
		groups []string
	)
	for _, g := range Groups(s) {
		for _, r := range s.Groups[g] {
			if r.Teacher == teacher {
				rs = append(rs, r)
				groups = append(groups, g)
			}
		}
	}
	return groupByPairs(rs, groups)
}

func dateHeader(s *Schedule) string {
	if s == nil || s.RawDate == "" {
		return ""
	}
	return "📆 " + s.RawDate + "\n\n"
}

// GroupText is the chat message listing a group's replacements.
func GroupText(s *Schedule, group string) string {
	var rs []Replacement
	if s != nil {
		rs = s.Groups[group]
	}
	if len(rs) == 0 {
		return fmt.Sprintf("Для группы %s замен нет", group)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📅 Замены для группы %s\n", group)
	b.WriteString(dateHeader(s))
	for _, e := range GroupByPairs(rs) {
		b.WriteString(FormatReplacement(e.Replacement))
		b.WriteString("\n")
	}
	return b.String()
}

// TeacherText is the chat message listing a teacher's replacements.
func TeacherText(s *Schedule, teacher string) string {
	entries := ForTeacher(s, teacher)
	if len(entries) == 0 {
		return fmt.Sprintf("Для преподавателя %s замен нет", teacher)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👨‍🏫 Замены для преподавателя %s\n", teacher)
	b.WriteString(dateHeader(s))
	for _, e := range entries {
		fmt.Fprintf(&b, "👥 Группа: %s\n", e.Group)
		b.WriteString(FormatReplacement(e.Replacement))
		b.WriteString("\n")
	}
	return b.String()
}

// Summary is a short overview of a schedule, used for update announcements.
func Summary(s *Schedule) string {
	if s.Empty() {
		return "Данные о заменах отсутствуют"
	}
	var b strings.Builder
	b.WriteString("📢 Замены обновлены\n")
	b.WriteString(dateHeader(s))
	total := 0
	for _, rs := range s.Groups {
		total += len(rs)
	}
	fmt.Fprintf(&b, "Групп: %d, замен: %d\n", len(s.Groups), total)
	fmt.Fprintf(&b, "Группы: %s\n", strings.Join(Groups(s), ", "))
	return b.String()
}
