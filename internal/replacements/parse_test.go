package replacements_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/replacements"
)

const sampleContent = `<h2>Замены на понедельник 14.10.24</h2>
<table>
  <tr><td>№ пары</td><td>По расписанию</td><td>Преподаватель</td><td>По замене</td><td>Аудитория</td></tr>
  <tr><td colspan="5">101</td></tr>
  <tr><td>1</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>305</td></tr>
  <tr><td>2</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>305</td></tr>
  <tr><td colspan="5">102</td></tr>
  <tr><td>3</td><td>История</td><td>Отмена пары</td><td></td><td></td></tr>
  <tr><td colspan="5">103</td></tr>
  <tr><td colspan="5">Директор колледжа</td></tr>
  <tr><td></td><td></td><td></td><td></td><td>Венедиктова</td></tr>
</table>`

func TestParse_SampleContent(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(sampleContent)
	require.NoError(t, err)

	require.Equal(t, "Замены на понедельник 14.10.24", s.RawDate)
	require.Equal(t, "2024-10-14", s.Date)

	require.Len(t, s.Groups, 2, "group 103 has no replacements and must be dropped")
	require.Equal(t, []replacements.Replacement{
		{Pair: "1", OriginalSubject: "Математика", Teacher: "Иванова И.И.", NewSubject: "Физика", Classroom: "305"},
		{Pair: "2", OriginalSubject: "Математика", Teacher: "Иванова И.И.", NewSubject: "Физика", Classroom: "305"},
	}, s.Groups["101"])
	require.Equal(t, []replacements.Replacement{
		{Pair: "3", OriginalSubject: "История", Teacher: replacements.TeacherCancelled},
	}, s.Groups["102"])
}

func TestParse_FourCellRowHasNoClassroom(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(`<table><tr><td>7</td></tr><tr><td>5</td><td>A</td><td>B</td><td>C</td></tr></table>`)
	require.NoError(t, err)
	require.Equal(t, []replacements.Replacement{{Pair: "5", OriginalSubject: "A", Teacher: "B", NewSubject: "C"}}, s.Groups["7"])
}

func TestParse_RowsBeforeAnyGroupAreIgnored(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(`<table><tr><td>1</td><td>A</td><td>B</td><td>C</td></tr><tr><td>группа</td></tr></table>`)
	require.NoError(t, err)
	require.True(t, s.Empty())
}

func TestParse_RepeatedGroupHeaderResetsGroup(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(`<table>
<tr><td>5</td></tr><tr><td>1</td><td>A</td><td>B</td><td>C</td></tr>
<tr><td>5</td></tr><tr><td>3</td><td>D</td><td>E</td><td>F</td></tr>
</table>`)
	require.NoError(t, err)
	require.Len(t, s.Groups["5"], 1)
	require.Equal(t, "3", s.Groups["5"][0].Pair)
}

func TestParse_NoDateLine(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(`<p>first</p><p>second</p><p>third</p><p>Замены 01.02.25</p>`)
	require.NoError(t, err)
	require.Empty(t, s.RawDate, "date lines beyond the first three are not searched")
	require.Empty(t, s.Date)
}

func TestParse_DateLineWithoutDate(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse(`<h3>Замены на вторник</h3>`)
	require.NoError(t, err)
	require.Equal(t, "Замены на вторник", s.RawDate)
	require.Empty(t, s.Date)
}

func TestParse_ErrorLineYieldsEmptySchedule(t *testing.T) {
	t.Parallel()
	s, err := replacements.Parse("error: 404 - not found")
	require.NoError(t, err)
	require.True(t, s.Empty())
}
