package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/tasktrack/tasktrack/internal/shared"
)

// MessageBody is the uniform error and acknowledgement shape.
type MessageBody struct {
	Message string `json:"message"`
}

// ValidationBody lists every failing request field.
type ValidationBody struct {
	Message string              `json:"message"`
	Errors  []shared.FieldError `json:"errors"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// Message sends {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, MessageBody{Message: msg})
}

var malformedBody = shared.FieldError{Field: "body", Message: "Malformed JSON body"}

// DecodeValid decodes the request body into target, runs normalize, then
// validates target. A field whose JSON type does not match is reported in the
// same ValidationFailed error as the validator's failures. A body that is not
// JSON at all fails before validation. An empty body leaves target untouched.
func DecodeValid(r *http.Request, target any, messages map[string]string, normalize func()) error {
	fields, err := decodeBody(r, target, messages)
	if err != nil {
		return err
	}
	if normalize != nil {
		normalize()
	}
	if err := shared.ValidateStruct(target, messages); err != nil {
		verr, ok := shared.AsError(err)
		if !ok || verr.Kind != shared.KindValidation {
			return err
		}
		fields = mergeFields(fields, verr.Fields)
	}
	if len(fields) > 0 {
		return shared.ValidationFailed(fields)
	}
	return nil
}

// decodeBody returns the type mismatches of an otherwise readable body. The
// decoder keeps filling the remaining fields past the first mismatch.
func decodeBody(r *http.Request, target any, messages map[string]string) ([]shared.FieldError, error) {
	if r.Body == nil {
		return nil, nil
	}
	err := json.NewDecoder(r.Body).Decode(target)
	if err == nil || errors.Is(err, io.EOF) {
		return nil, nil
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		msg, ok := messages[typeErr.Field]
		if !ok {
			msg = "Invalid value"
		}
		return []shared.FieldError{{Field: typeErr.Field, Message: msg}}, nil
	}
	return nil, shared.ValidationFailed([]shared.FieldError{malformedBody})
}

// mergeFields appends extra to base, skipping fields base already reports.
func mergeFields(base, extra []shared.FieldError) []shared.FieldError {
	seen := make(map[string]struct{}, len(base))
	for _, fe := range base {
		seen[fe.Field] = struct{}{}
	}
	for _, fe := range extra {
		if _, dup := seen[fe.Field]; dup {
			continue
		}
		base = append(base, fe)
	}
	return base
}
