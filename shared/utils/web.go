package utils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/itchan-dev/forum/shared/errors"
	"github.com/itchan-dev/forum/shared/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type errorResponse struct {
	Detail string `json:"detail"`
}

// WriteErrorAndStatusCode writes err as {"detail": ...}. Errors without a status
// code are logged and hidden behind a generic 500 message.
func WriteErrorAndStatusCode(w http.ResponseWriter, err error) {
	status := errors.StatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Log.Error("internal error", "error", err)
		message = "Internal server error"
	}
	WriteJSON(w, status, errorResponse{Detail: message})
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func DecodeValidate(r io.ReadCloser, body any) error {
	if err := Decode(r, body); err != nil {
		return err
	}
	if err := validate.Struct(body); err != nil {
		logger.Log.Debug("request validation failed", "error", err)
		return errors.BadRequest("Required fields missing")
	}
	return nil
}

func Decode(r io.ReadCloser, body any) error {
	if err := json.NewDecoder(r).Decode(body); err != nil {
		logger.Log.Debug("request decoding failed", "error", err)
		return errors.BadRequest("Body is invalid json")
	}
	return nil
}
