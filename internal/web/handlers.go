package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/saaskit/saaskit/internal/account"
	"github.com/saaskit/saaskit/internal/email"
	"github.com/saaskit/saaskit/internal/errorz"
)

type userResponse struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u account.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     string(u.Email),
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var params account.CreateParams
	if !s.decode(w, r, &params) {
		return
	}

	user, err := s.accounts.Create(r.Context(), params)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusCreated, toUserResponse(user))
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var params account.RegisterParams
	if !s.decode(w, r, &params) {
		return
	}

	session, err := s.accounts.Register(r.Context(), params)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, session)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizedUserID(w, r)
	if !ok {
		return
	}

	user, err := s.accounts.GetByID(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, toUserResponse(user))
}

func (s *Server) updateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := s.authorizedUserID(w, r)
	if !ok {
		return
	}

	var params account.UpdateParams
	if !s.decode(w, r, &params) {
		return
	}

	user, err := s.accounts.GetByID(r.Context(), id)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	user, err = s.accounts.Update(r.Context(), user, params)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, toUserResponse(user))
}

// authorizedUserID parses the id route parameter and checks it against
// the logged-in user. Users can only access their own account, anything
// else is reported as not found rather than forbidden so the API does
// not confirm which ids exist.
func (s *Server) authorizedUserID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		s.respondErr(w, errorz.Op(errorz.KindNotFound))
		return 0, false
	}

	authUserID, ok := userIDFromContext(r.Context())
	if !ok || authUserID != id {
		s.respondErr(w, errorz.Op(errorz.KindNotFound))
		return 0, false
	}

	return id, true
}

type loginParams struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var params loginParams
	if !s.decode(w, r, &params) {
		return
	}

	// Malformed input can never match an account, it fails exactly like
	// wrong credentials do.
	addr, err := email.ParseAddress(params.Email)
	if err != nil {
		s.respondErr(w, errorz.Op(errorz.KindInvalidEmailOrPassword))
		return
	}

	pwd, err := account.ParsePassword(params.Password)
	if err != nil {
		s.respondErr(w, errorz.Op(errorz.KindInvalidEmailOrPassword))
		return
	}

	session, err := s.sessions.Login(r.Context(), addr, pwd)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, session)
}

type forgotPasswordParams struct {
	Email string `json:"email"`
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var params forgotPasswordParams
	if !s.decode(w, r, &params) {
		return
	}

	// Always respond with 202, whether an account exists must not be
	// observable. The actual work happens in a background worker.
	addr, err := email.ParseAddress(params.Email)
	if err == nil {
		s.accounts.RequestPasswordReset(r.Context(), addr)
	}

	s.respond(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var params account.ResetPasswordParams
	if !s.decode(w, r, &params) {
		return
	}

	err := s.accounts.ResetPassword(r.Context(), params)
	if err != nil {
		s.respondErr(w, err)
		return
	}

	s.respond(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
