// File: internal/handlers/respond.go
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/iyunix/go-chatstore/internal/dtos"
)

// MaxBodyBytes caps every request body.
const MaxBodyBytes int64 = 1 << 20

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, status int, code, detail string, fields ...dtos.FieldError) {
	writeJSON(w, status, dtos.ErrorResponse{Code: code, Detail: detail, Errors: fields})
}

// NewValidator returns a validator that reports json field names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// fieldErrors flattens validator output into the wire format.
func fieldErrors(err error) []dtos.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]dtos.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, dtos.FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return out
}

// decodeJSON reads a single JSON object from the capped body into dst.
// The returned status is the one to reply with when err is non-nil.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) (int, []dtos.FieldError, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &maxErr):
			return http.StatusRequestEntityTooLarge, nil,
				fmt.Errorf("request body must not exceed %d bytes", maxErr.Limit)
		case errors.As(err, &typeErr):
			return http.StatusUnprocessableEntity,
				[]dtos.FieldError{{Field: typeErr.Field, Rule: "type", Param: typeErr.Type.String()}},
				fmt.Errorf("field %q must be a %s", typeErr.Field, typeErr.Type)
		case errors.Is(err, io.EOF):
			return http.StatusUnprocessableEntity, nil, errors.New("request body is required")
		default:
			return http.StatusUnprocessableEntity, nil, errors.New("request body must be a JSON object")
		}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return http.StatusUnprocessableEntity, nil, errors.New("request body must contain a single JSON object")
	}
	return 0, nil, nil
}

// NotFound is the router's fallback for unknown paths.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, dtos.CodeNotFound, "resource not found")
}

// MethodNotAllowed is the router's fallback for known paths with a wrong verb.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, dtos.CodeMethodNotAllowed,
		fmt.Sprintf("method %s not allowed", r.Method))
}
