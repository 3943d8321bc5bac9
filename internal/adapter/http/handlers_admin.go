package adapthttp

import (
	"errors"
	"net/http"

	"weightbot/internal/app"
)

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r)
	if sess == nil {
		writeError(w, http.StatusUnauthorized, errUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subject":    sess.Subject,
		"expires_at": sess.ExpiresAt,
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.reports.GlobalSummary(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary":   sum,
		"span_days": sum.Span(),
	})
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	limit := intQuery(r, "limit", app.DefaultUserList)
	items, err := s.reports.UserList(r.Context(), limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
	})
}

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	detail, err := s.reports.UserDetail(r.Context(), id)
	if errors.Is(err, app.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUserDaily(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := s.reports.UserDetail(r.Context(), id); err != nil {
		if errors.Is(err, app.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		s.internalError(w, r, err)
		return
	}

	days := intQuery(r, "days", 90)
	points, err := s.charts.Daily(r.Context(), id, days)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user_id": id,
		"days":    len(points),
		"items":   points,
	})
}
