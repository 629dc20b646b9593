// Package httpjson writes the standard API response envelope:
// {success, data?, message?, meta?}.
package httpjson

import (
	"encoding/json"
	"net/http"

	"github.com/fieldworks/turfhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// Envelope is the wire shape of every JSON response.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
	Meta    any    `json:"meta,omitempty"`
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// OK sends 200 with data.
func OK(w http.ResponseWriter, data any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data})
}

// OKMeta sends 200 with data and pagination/statistics metadata.
func OKMeta(w http.ResponseWriter, data, meta any) {
	write(w, http.StatusOK, Envelope{Success: true, Data: data, Meta: meta})
}

// Created sends 201 with data.
func Created(w http.ResponseWriter, data any) {
	write(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

// Error translates a service error into the failure envelope using the
// apperr taxonomy, logging server-side causes at error level.
func Error(w http.ResponseWriter, log *zap.Logger, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", zap.Error(err))
	}
	write(w, status, Envelope{Success: false, Message: apperr.MessageOf(err)})
}

// Fail sends an explicit failure with the given status and message.
func Fail(w http.ResponseWriter, status int, message string) {
	write(w, status, Envelope{Success: false, Message: message})
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.Validation("invalid JSON body: %v", err)
	}
	return nil
}
