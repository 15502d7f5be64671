package announcer_test

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/raysh454/repview/internal/announcer"
	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/testutil"
)

func sampleSchedule() *replacements.Schedule {
	return &replacements.Schedule{
		RawDate: "Замены на понедельник 14.10.24",
		Groups: map[string][]replacements.Replacement{
			"101": {{Pair: "1", Teacher: "Иванова И.И.", NewSubject: "Физика", Classroom: "305"}},
			"102": {{Pair: "3", Teacher: replacements.TeacherCancelled}},
		},
	}
}

func TestSplit(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"short"}, announcer.Split("short", 10))
	require.Equal(t, []string{"aaaa\n", "bbbb\n", "cc"}, announcer.Split("aaaa\nbbbb\ncc", 6))
	require.Equal(t, []string{"abcd", "ef"}, announcer.Split("abcdef", 4))
	require.Equal(t, []string{"ab\n", "cdef", "gh"}, announcer.Split("ab\ncdefgh", 4))

	long := strings.Repeat("Замена пары\n", 400)
	parts := announcer.Split(long, announcer.MessageLimit)
	require.Greater(t, len(parts), 1)
	require.Equal(t, long, strings.Join(parts, ""))
	for _, p := range parts {
		require.LessOrEqual(t, utf8.RuneCountInString(p), announcer.MessageLimit)
	}
}

func TestMessage(t *testing.T) {
	t.Parallel()

	msg := announcer.Message(sampleSchedule(), nil)
	require.Equal(t, replacements.Summary(sampleSchedule()), msg)

	msg = announcer.Message(sampleSchedule(), []store.Chunk{
		{Type: "removed", Content: "Математика"},
		{Type: "added", Content: "Физика\nХимия\n"},
	})
	require.Contains(t, msg, "\nИзменения:\n- Математика\n+ Физика\n+ Химия\n")
}

func TestAnnounce(t *testing.T) {
	t.Parallel()
	sender := &testutil.DummySender{}
	a := announcer.NewAnnouncer(sender, "chan", &testutil.DummyLogger{})

	err := a.Announce(context.Background(), &store.Snapshot{ID: "x", Schedule: sampleSchedule()}, nil)
	require.NoError(t, err)
	require.Equal(t, []string{replacements.Summary(sampleSchedule())}, sender.Messages())

	require.Error(t, a.Announce(context.Background(), nil, nil))
}

func TestAnnounce_SplitsLongMessages(t *testing.T) {
	t.Parallel()
	sender := &testutil.DummySender{}
	a := announcer.NewAnnouncer(sender, "chan", &testutil.DummyLogger{})

	chunks := []store.Chunk{{Type: "added", Content: strings.Repeat("новая строка замены\n", 200)}}
	require.NoError(t, a.Announce(context.Background(), &store.Snapshot{Schedule: sampleSchedule()}, chunks))
	require.Greater(t, len(sender.Messages()), 1)
}

func TestAnnounce_SendError(t *testing.T) {
	t.Parallel()
	sender := &testutil.DummySender{Err: testutil.NewError("rate limited")}
	a := announcer.NewAnnouncer(sender, "chan", &testutil.DummyLogger{})

	err := a.Announce(context.Background(), &store.Snapshot{Schedule: sampleSchedule()}, nil)
	require.ErrorContains(t, err, "rate limited")
}

func TestAnnounce_CancelledContext(t *testing.T) {
	t.Parallel()
	sender := &testutil.DummySender{}
	a := announcer.NewAnnouncer(sender, "chan", &testutil.DummyLogger{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, a.Announce(ctx, &store.Snapshot{Schedule: sampleSchedule()}, nil), context.Canceled)
	require.Empty(t, sender.Messages())
}
