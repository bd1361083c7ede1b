package http

import (
	"fmt"
	"net/http"

	"cashflow/internal/core"
)

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := core.ValidateYearMonth(p.Year, p.Month); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	var stats core.MonthlyStats
	if s.svc.StatsCache != nil {
		stats, err = s.svc.StatsCache.MonthlyStats(r.Context(), userID, p.Year, p.Month)
	} else {
		stats, err = s.svc.Stats.MonthlyStats(r.Context(), userID, p.Year, p.Month)
	}
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(stats).Write(w)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	query := r.URL.Query()
	months, err := queryInt(query, "months", s.opts.TrendMonthsDefault)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if months > s.opts.TrendMonthsMax {
		ValidationError(map[string]string{
			"months": fmt.Sprintf("must be at most %d", s.opts.TrendMonthsMax),
		}).Write(w)
		return
	}
	categoryID, err := queryOptionalID(query, "categoryId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	points, err := s.svc.Stats.MonthlyTrends(r.Context(), userID, months, categoryID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(points).Write(w)
}
