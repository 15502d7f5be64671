package replacements

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/raysh454/repview/internal/markup"
)

var (
	dateRe = regexp.MustCompile(`\d{2}\.\d{2}\.\d{2}`)

	// words that identify the heading line carrying the date
	dateLineWords = []string{"замены", "понедельник", "вторник", "среда", "четверг", "пятница", "суббота"}
)

const (
	headerCell   = "№ пары"
	directorWord = "директор"
	signatory    = "венедиктова"

	// only the first lines of the container are searched for the date
	dateLineWindow = 3
)

// Parse reads the replacement tables out of the content container markup.
func Parse(content string) (*Schedule, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	s := &Schedule{Groups: map[string][]Replacement{}}
	s.RawDate, s.Date = findDate(markup.Lines(content))

	var current string
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := cellTexts(row)
			if len(cells) == 0 || skipRow(cells) {
				return
			}

			switch {
			case len(cells) == 1:
				if isDigits(cells[0]) {
					current = cells[0]
					s.Groups[current] = []Replacement{}
				}
			case len(cells) >= 4 && current != "":
				if _, ok := s.Groups[current]; !ok {
					return
				}
				r := Replacement{
					Pair:            cells[0],
					OriginalSubject: cells[1],
					Teacher:         cells[2],
					NewSubject:      cells[3],
				}
				if len(cells) > 4 {
					r.Classroom = cells[4]
				}
				if meaningful(r) {
					s.Groups[current] = append(s.Groups[current], r)
				}
			}
		})
	})

	for g, rs := range s.Groups {
		if len(rs) == 0 {
			delete(s.Groups, g)
		}
	}

	return s, nil
}

func cellTexts(row *goquery.Selection) []string {
	tds := row.Find("td")
	out := make([]string, 0, tds.Length())
	tds.Each(func(_ int, td *goquery.Selection) {
		out = append(out, strings.TrimSpace(td.Text()))
	})
	return out
}

func skipRow(cells []string) bool {
	if cells[0] == headerCell || strings.Contains(strings.ToLower(cells[0]), directorWord) {
		return true
	}
	for _, c := range cells {
		if strings.Contains(strings.ToLower(c), signatory) {
			return true
		}
	}
	return false
}

// meaningful reports whether any field carries data other than the signature.
func meaningful(r Replacement) bool {
	for _, v := range []string{r.Pair, r.OriginalSubject, r.Teacher, r.NewSubject, r.Classroom} {
		if v != "" && !strings.Contains(strings.ToLower(v), signatory) {
			return true
		}
	}
	return false
}

func findDate(lines []string) (raw, iso string) {
	if len(lines) > dateLineWindow {
		lines = lines[:dateLineWindow]
	}
	for _, line := range lines {
		lower := strings.ToLower(line)
		for _, w := range dateLineWords {
			if !strings.Contains(lower, w) {
				continue
			}
			raw = strings.TrimSpace(line)
			if m := dateRe.FindString(line); m != "" {
				if d, err := time.Parse("02.01.06", m); err == nil {
					iso = d.Format(time.DateOnly)
				}
			}
			return raw, iso
		}
	}
	return "", ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
