package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/raysh454/repview/internal/markup"
)

// Chunk is one changed run of text between two snapshots.
type Chunk struct {
	Type    string `json:"type"` // "added" or "removed"
	Content string `json:"content"`
}

type Diff struct {
	BaseID string  `json:"base_id,omitempty"`
	HeadID string  `json:"head_id"`
	Chunks []Chunk `json:"chunks"`
}

// TextDiff diffs the visible text of two container bodies line by line.
// Equal runs and whitespace-only changes are left out.
func TextDiff(base, head string) []Chunk {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(strings.Join(markup.Lines(base), "\n"), strings.Join(markup.Lines(head), "\n"))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	chunks := make([]Chunk, 0)
	for _, d := range diffs {
		var kind string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			kind = "added"
		case diffmatchpatch.DiffDelete:
			kind = "removed"
		default:
			continue
		}
		if strings.TrimSpace(d.Text) == "" {
			continue
		}
		chunks = append(chunks, Chunk{Type: kind, Content: d.Text})
	}
	return chunks
}

// Diff compares snapshot headID against baseID. An empty baseID diffs
// against the snapshot stored just before head, or against nothing when head
// is the first one.
func (s *SQLiteStore) Diff(ctx context.Context, baseID, headID string) (*Diff, error) {
	head, err := s.Get(ctx, headID)
	if err != nil {
		return nil, err
	}

	var baseBody string
	if baseID == "" {
		prev, err := s.previous(ctx, head)
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if prev != nil {
			baseID, baseBody = prev.ID, prev.Body
		}
	} else {
		base, err := s.Get(ctx, baseID)
		if err != nil {
			return nil, fmt.Errorf("base snapshot: %w", err)
		}
		baseBody = base.Body
	}

	return &Diff{BaseID: baseID, HeadID: head.ID, Chunks: TextDiff(baseBody, head.Body)}, nil
}

func (s *SQLiteStore) previous(ctx context.Context, head *Snapshot) (*Snapshot, error) {
	row := s.db.QueryRowContext(ctx, selectSnapshot+`
		WHERE rowid < (SELECT rowid FROM snapshots WHERE id = ?)
		ORDER BY rowid DESC LIMIT 1`, head.ID)
	snap, err := scanSnapshot(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query previous snapshot: %w", err)
	}
	return snap, nil
}
