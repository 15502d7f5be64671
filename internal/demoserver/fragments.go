package demoserver

// Fragment is one version of the markup the fetch-rep resource returns.
type Fragment struct {
	Description string
	HTML        string
}

// Fragments returns the demo fragment versions keyed by version number.
func Fragments() map[int]Fragment {
	return map[int]Fragment{
		1: {
			Description: "Monday, two groups",
			HTML: `<h2>Замены на понедельник 14.10.24</h2>
<table>
  <tr><td>№ пары</td><td>По расписанию</td><td>Преподаватель</td><td>По замене</td><td>Аудитория</td></tr>
  <tr><td colspan="5">101</td></tr>
  <tr><td>1</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>305</td></tr>
  <tr><td>2</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>305</td></tr>
  <tr><td colspan="5">102</td></tr>
  <tr><td>3</td><td>История</td><td>Отмена пары</td><td></td><td></td></tr>
  <tr><td colspan="5">Директор колледжа</td></tr>
</table>`,
		},
		2: {
			Description: "Monday, updated: classroom moved, group 204 added",
			HTML: `<h2>Замены на понедельник 14.10.24</h2>
<table>
  <tr><td>№ пары</td><td>По расписанию</td><td>Преподаватель</td><td>По замене</td><td>Аудитория</td></tr>
  <tr><td colspan="5">101</td></tr>
  <tr><td>1</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>212</td></tr>
  <tr><td>2</td><td>Математика</td><td>Иванова И.И.</td><td>Физика</td><td>212</td></tr>
  <tr><td colspan="5">102</td></tr>
  <tr><td>3</td><td>История</td><td>Отмена пары</td><td></td><td></td></tr>
  <tr><td colspan="5">204</td></tr>
  <tr><td>5</td><td>Информатика</td><td>Петров П.П.</td><td>Базы данных</td><td>ДО</td></tr>
  <tr><td colspan="5">Директор колледжа</td></tr>
</table>`,
		},
		3: {
			Description: "Tuesday, no replacements",
			HTML:        `<h2>Замены на вторник 15.10.24</h2><p>Замен нет</p>`,
		},
	}
}
