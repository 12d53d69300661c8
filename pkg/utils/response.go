package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/AnshRaj112/datapath-backend/internal/apperr"
)

const (
	HeaderContentType = "Content-Type"
	ContentTypeJSON   = "application/json"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Detail string      `json:"detail"`
	Code   apperr.Kind `json:"code"`
}

// MessageResponse is the body of endpoints that only acknowledge.
type MessageResponse struct {
	Message string `json:"message"`
}

// RespondWithJSON writes payload with status.
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("failed to marshal JSON response: %v", err)
		w.Header().Set(HeaderContentType, ContentTypeJSON)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"Internal Server Error","code":"internal"}`))
		return
	}

	w.Header().Set(HeaderContentType, ContentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(response)
}

// RespondWithError writes err using its apperr category. Internal errors
// never expose their detail or cause.
func RespondWithError(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	body := ErrorResponse{Detail: "Internal Server Error", Code: apperr.KindInternal}
	if kind != apperr.KindInternal {
		body = ErrorResponse{Detail: detailOf(err), Code: kind}
	}
	RespondWithJSON(w, apperr.HTTPStatus(kind), body)
}

func detailOf(err error) string {
	var e *apperr.Error
	if errors.As(err, &e) {
		return e.Detail
	}
	return err.Error()
}
