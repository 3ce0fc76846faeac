package web

import (
	"encoding/json"
	"net/http"

	"github.com/saaskit/saaskit/internal/errorz"
)

type errorBody struct {
	Code    errorz.Kind `json:"code"`
	Message string      `json:"message"`
	Detail  string      `json:"detail,omitempty"`
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

func (s *Server) respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// respondErr writes the error envelope for a domain error. Errors that
// are not operation errors are unexpected, they are logged and reported
// as an opaque internal error.
func (s *Server) respondErr(w http.ResponseWriter, err error) {
	op := errorz.AsOperation(err)

	if op.Kind == errorz.KindUnknown {
		s.logger.Error("unexpected error", "error", err)
	}

	body := errorBody{
		Code:    op.Kind,
		Message: http.StatusText(op.Status),
	}

	// Never expose details of unexpected errors.
	if op.Kind != errorz.KindUnknown {
		body.Detail = op.Detail
	}

	s.respond(w, op.Status, errorEnvelope{Error: body})
}

// decode reads the JSON request body into v. A failure responds with an
// INVALID_PARAMETERS error and reports false.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		s.respondErr(w, errorz.OpDetail(errorz.KindInvalidParameters, "Request body is not valid JSON"))
		return false
	}

	return true
}
