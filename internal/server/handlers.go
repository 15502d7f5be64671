package server

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/raysh454/repview/internal/logging"
	"github.com/raysh454/repview/internal/replacements"
	"github.com/raysh454/repview/internal/store"
	"github.com/raysh454/repview/internal/watcher"
)

// latestSchedule writes the error response itself and returns nil when no
// schedule can be served.
func (s *Server) latestSchedule(w http.ResponseWriter, r *http.Request) *store.Snapshot {
	snap, err := s.snapshots.Latest(r.Context())
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "no schedule fetched yet")
		return nil
	}
	if err != nil {
		s.logger.Warn("loading latest snapshot", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil
	}
	return snap
}

func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// handleSchedule godoc
// @Summary Latest schedule
// @Tags schedule
// @Produce json
// @Success 200 {object} replacements.Schedule
// @Failure 404 {object} ErrorResponse
// @Router /api/schedule [get]
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	snap := s.latestSchedule(w, r)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Schedule)
}

// handleListGroups godoc
// @Summary Groups with replacements
// @Tags schedule
// @Produce json
// @Success 200 {object} GroupsResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/groups [get]
func (s *Server) handleListGroups(w http.ResponseWriter, r *http.Request) {
	snap := s.latestSchedule(w, r)
	if snap == nil {
		return
	}
	groups := replacements.Groups(snap.Schedule)
	if groups == nil {
		groups = []string{}
	}
	writeJSON(w, http.StatusOK, GroupsResponse{Date: snap.Schedule.Date, RawDate: snap.Schedule.RawDate, Groups: groups})
}

// handleGetGroup godoc
// @Summary Replacements for a group
// @Tags schedule
// @Produce json
// @Param group path string true "Group number"
// @Success 200 {object} GroupResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/groups/{group} [get]
func (s *Server) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	snap := s.latestSchedule(w, r)
	if snap == nil {
		return
	}
	group := pathParam(r, "group")
	writeJSON(w, http.StatusOK, GroupResponse{
		Group: group,
		Pairs: pairsResponse(replacements.GroupByPairs(snap.Schedule.Groups[group])),
		Text:  replacements.GroupText(snap.Schedule, group),
	})
}

// handleListTeachers godoc
// @Summary Teachers with replacements
// @Tags schedule
// @Produce json
// @Success 200 {object} TeachersResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/teachers [get]
func (s *Server) handleListTeachers(w http.ResponseWriter, r *http.Request) {
	snap := s.latestSchedule(w, r)
	if snap == nil {
		return
	}
	teachers := replacements.Teachers(snap.Schedule)
	if teachers == nil {
		teachers = []string{}
	}
	writeJSON(w, http.StatusOK, TeachersResponse{Date: snap.Schedule.Date, RawDate: snap.Schedule.RawDate, Teachers: teachers})
}

// handleGetTeacher godoc
// @Summary Replacements for a teacher
// @Tags schedule
// @Produce json
// @Param teacher path string true "Teacher name"
// @Success 200 {object} TeacherResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/teachers/{teacher} [get]
func (s *Server) handleGetTeacher(w http.ResponseWriter, r *http.Request) {
	snap := s.latestSchedule(w, r)
	if snap == nil {
		return
	}
	teacher := pathParam(r, "teacher")
	writeJSON(w, http.StatusOK, TeacherResponse{
		Teacher: teacher,
		Pairs:   pairsResponse(replacements.ForTeacher(snap.Schedule, teacher)),
		Text:    replacements.TeacherText(snap.Schedule, teacher),
	})
}

// handleListSnapshots godoc
// @Summary Stored snapshots, newest first
// @Tags snapshots
// @Produce json
// @Param limit query int false "Maximum number of snapshots" default(50)
// @Success 200 {array} SnapshotSummary
// @Router /api/snapshots [get]
func (s *Server) handleListSnapshots(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if ls := r.URL.Query().Get("limit"); ls != "" {
		if v, err := strconv.Atoi(ls); err == nil && v > 0 {
			limit = v
		}
	}

	snaps, err := s.snapshots.List(r.Context(), limit)
	if err != nil {
		s.logger.Warn("listing snapshots", logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]SnapshotSummary, 0, len(snaps))
	for _, snap := range snaps {
		sum := SnapshotSummary{ID: snap.ID, FetchedAt: snap.FetchedAt, Checksum: snap.Checksum}
		if snap.Schedule != nil {
			sum.Date = snap.Schedule.Date
			sum.Groups = len(snap.Schedule.Groups)
		}
		out = append(out, sum)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetSnapshot godoc
// @Summary A stored snapshot
// @Tags snapshots
// @Produce json
// @Param id path string true "Snapshot ID"
// @Success 200 {object} store.Snapshot
// @Failure 404 {object} ErrorResponse
// @Router /api/snapshots/{id} [get]
func (s *Server) handleGetSnapshot(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := s.snapshots.Get(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		s.logger.Warn("getting snapshot", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleSnapshotDiff godoc
// @Summary Text diff of a snapshot
// @Description Compares the snapshot with base, or with the one stored before it when base is omitted.
// @Tags snapshots
// @Produce json
// @Param id path string true "Snapshot ID"
// @Param base query string false "Base snapshot ID"
// @Success 200 {object} store.Diff
// @Failure 404 {object} ErrorResponse
// @Router /api/snapshots/{id}/diff [get]
func (s *Server) handleSnapshotDiff(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	diff, err := s.snapshots.Diff(r.Context(), r.URL.Query().Get("base"), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		s.logger.Warn("diffing snapshot", logging.Field{Key: "id", Value: id}, logging.Field{Key: "error", Value: err.Error()})
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, diff)
}

// handleListChecks godoc
// @Summary Recent update checks
// @Tags checks
// @Produce json
// @Success 200 {array} watcher.Result
// @Router /api/checks [get]
func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil {
		writeJSON(w, http.StatusOK, []*watcher.Result{})
		return
	}
	writeJSON(w, http.StatusOK, s.checker.History())
}

// handleRefresh godoc
// @Summary Check for updates now
// @Description Fetches the content, re-renders the page and stores a snapshot when the schedule changed.
// @Tags checks
// @Produce json
// @Success 200 {object} watcher.Result
// @Failure 429 {object} ErrorResponse
// @Failure 502 {object} watcher.Result
// @Failure 503 {object} ErrorResponse
// @Router /api/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.checker == nil || s.limiter == nil {
		writeError(w, http.StatusServiceUnavailable, "manual refresh is disabled")
		return
	}
	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, "refresh rate limit exceeded")
		return
	}

	res, err := s.checker.Check(r.Context())
	if err != nil {
		s.logger.Warn("manual refresh failed", logging.Field{Key: "error", Value: err.Error()})
		status := http.StatusInternalServerError
		if errors.Is(err, watcher.ErrFetchFailed) {
			status = http.StatusBadGateway
		}
		if res == nil {
			writeError(w, status, err.Error())
			return
		}
		writeJSON(w, status, res)
		return
	}
	s.logger.Info("manual refresh", logging.Field{Key: "status", Value: string(res.Status)})
	writeJSON(w, http.StatusOK, res)
}
