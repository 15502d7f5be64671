package server

import (
	"time"

	"github.com/raysh454/repview/internal/replacements"
)

// GroupsResponse lists the groups that have replacements.
type GroupsResponse struct {
	Date    string   `json:"date,omitempty" example:"2024-10-14"`
	RawDate string   `json:"raw_date,omitempty" example:"Замены на понедельник 14.10.24"`
	Groups  []string `json:"groups" example:"101,102"`
}

// TeachersResponse lists the teachers that have replacements.
type TeachersResponse struct {
	Date     string   `json:"date,omitempty" example:"2024-10-14"`
	RawDate  string   `json:"raw_date,omitempty"`
	Teachers []string `json:"teachers"`
}

// PairResponse is a replacement placed at its pair.
type PairResponse struct {
	Pair        int                      `json:"pair" example:"1"`
	Group       string                   `json:"group,omitempty" example:"101"`
	Replacement replacements.Replacement `json:"replacement"`
}

// GroupResponse holds one group's replacements and the chat-ready text.
type GroupResponse struct {
	Group string         `json:"group" example:"101"`
	Pairs []PairResponse `json:"pairs"`
	Text  string         `json:"text"`
}

// TeacherResponse holds one teacher's replacements and the chat-ready text.
type TeacherResponse struct {
	Teacher string         `json:"teacher" example:"Иванова И.И."`
	Pairs   []PairResponse `json:"pairs"`
	Text    string         `json:"text"`
}

// SnapshotSummary describes a stored snapshot without its body.
type SnapshotSummary struct {
	ID        string    `json:"id" example:"6f1c2d9e-2c4b-4b0e-9a55-1d2f7c3b9e10"`
	FetchedAt time.Time `json:"fetched_at"`
	Checksum  string    `json:"checksum"`
	Date      string    `json:"date,omitempty"`
	Groups    int       `json:"groups" example:"12"`
}

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"not found"`
}

func pairsResponse(entries []replacements.PairEntry) []PairResponse {
	out := make([]PairResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, PairResponse{Pair: e.Pair, Group: e.Group, Replacement: e.Replacement})
	}
	return out
}
