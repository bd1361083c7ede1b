package http

import (
	"net/http"
	"strings"
)

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	name := sanitizeInput(req.Username)
	if name == "" {
		ValidationError(map[string]string{"username": "is required"}).Write(w)
		return
	}

	u, err := s.svc.Accounts.CreateUser(r.Context(), name)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("User created").
		Data(UserDTO{ID: u.ID, Username: u.Username, CreatedAt: u.CreatedAt}).
		Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	fields := make(map[string]string)
	if req.UserID <= 0 {
		fields["userId"] = "is required"
	}
	name := sanitizeInput(req.Name)
	if strings.TrimSpace(name) == "" {
		fields["name"] = "is required"
	}
	if len(fields) > 0 {
		ValidationError(fields).Write(w)
		return
	}

	c, err := s.svc.Accounts.CreateCategory(r.Context(), req.UserID, name)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Category created").
		Data(CategoryDTO{ID: c.ID, UserID: c.UserID, Name: c.Name}).
		Write(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	e, fields := req.toExpense(s.today())
	if len(fields) > 0 {
		ValidationError(fields).Write(w)
		return
	}

	saved, err := s.svc.Expenses.RecordExpense(r.Context(), e)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Expense recorded").
		Data(newExpenseDTO(saved)).
		Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	var req ExpenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		decodeError(err).Write(w)
		return
	}
	e, fields := req.toExpense(s.today())
	if len(fields) > 0 {
		ValidationError(fields).Write(w)
		return
	}
	e.ID = id

	saved, err := s.svc.Expenses.UpdateExpense(r.Context(), e)
	if err != nil {
		ServiceError(r, err).Write(w)
		return
	}
	NewResponse().
		Message("Expense updated").
		Data(newExpenseDTO(saved)).
		Write(w)
}
