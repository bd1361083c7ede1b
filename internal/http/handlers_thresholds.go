package http

import (
	"net/http"
)

func (s *Server) handleCreateThreshold(w http.ResponseWriter, r *http.Request) {
	var req ThresholdRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	in, fields := req.validate(true)
	if len(fields) > 0 {
		ValidationError(fields).Write(w)
		return
	}

	view, err := s.svc.Thresholds.SetThreshold(r.Context(), in)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Threshold set successfully").
		Data(newThresholdDTO(view)).
		Write(w)
}

func (s *Server) handleGetThreshold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	view, err := s.svc.Thresholds.GetThreshold(r.Context(), id)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(newThresholdDTO(view)).Write(w)
}

func (s *Server) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var req ThresholdRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	in, fields := req.validate(false)
	if len(fields) > 0 {
		ValidationError(fields).Write(w)
		return
	}

	view, err := s.svc.Thresholds.UpdateThreshold(r.Context(), id, in)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Message("Threshold updated successfully").
		Data(newThresholdDTO(view)).
		Write(w)
}

func (s *Server) handleDeleteThreshold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if err := s.svc.Thresholds.DeleteThreshold(r.Context(), id); err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Message("Threshold deleted successfully").Write(w)
}

func (s *Server) handleToggleThreshold(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	view, err := s.svc.Thresholds.ToggleThreshold(r.Context(), id)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Message("Threshold status toggled").
		Data(newThresholdDTO(view)).
		Write(w)
}

func (s *Server) handleListThresholds(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	views, err := s.svc.Thresholds.ListThresholds(r.Context(), userID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(newThresholdDTOs(views)).Write(w)
}

func (s *Server) handleActiveThresholds(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	views, err := s.svc.Thresholds.ActiveThresholds(r.Context(), userID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(newThresholdDTOs(views)).Write(w)
}

func (s *Server) handleOverallThreshold(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	view, err := s.svc.Thresholds.OverallThreshold(r.Context(), userID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(newThresholdDTO(view)).Write(w)
}

// handleCurrentAlerts reports alerts without touching breach flags.
func (s *Server) handleCurrentAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	alerts, err := s.svc.Alerts.CurrentAlerts(r.Context(), userID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Data(alerts).Write(w)
}

// handleCheckAlerts runs a full evaluation, updating breach flags.
func (s *Server) handleCheckAlerts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	alerts, err := s.svc.Alerts.EvaluateAlerts(r.Context(), userID)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().Message("Threshold check completed").Data(alerts).Write(w)
}
