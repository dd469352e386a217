package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"rescueconnect/pkg/e"
)

const maxBodyBytes = 1 << 20

var timeType = reflect.TypeOf(time.Time{})

// DecodeJSON reads exactly one JSON object into target. Unknown fields and
// anything after the object are rejected with e.ErrInvalidInput. A value of
// the wrong type is reported as an *e.ValidationError naming the field.
func DecodeJSON(w http.ResponseWriter, r *http.Request, target any) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("body larger than %d bytes: %w", maxErr.Limit, e.ErrInvalidInput)
		}
		return fmt.Errorf("read body: %v: %w", err, e.ErrInvalidInput)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	if err := dec.Decode(target); err != nil {
		if verr := fieldErrors(body, target, err); verr != nil {
			return verr
		}
		return fmt.Errorf("invalid JSON: %v: %w", err, e.ErrInvalidInput)
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid JSON: trailing data: %w", e.ErrInvalidInput)
	}
	return nil
}

// fieldErrors turns type mismatches into per-field errors. Timestamp
// failures carry no field name, so the time fields of target are rechecked.
func fieldErrors(body []byte, target any, err error) error {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return e.NewValidationError(e.FieldError{Field: typeErr.Field, Message: "must be " + kindName(typeErr.Type)})
	}

	var raw map[string]json.RawMessage
	if json.Unmarshal(body, &raw) != nil {
		return nil
	}
	out := e.NewValidationError()
	for _, name := range timeFields(target) {
		v, ok := raw[name]
		if !ok {
			continue
		}
		var t time.Time
		if json.Unmarshal(v, &t) != nil {
			out.Add(name, "must be an RFC 3339 timestamp")
		}
	}
	return out.OrNil()
}

func timeFields(target any) []string {
	t := reflect.TypeOf(target)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil
	}

	var names []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Type != timeType {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}
		names = append(names, name)
	}
	return names
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "of a different type"
	}
	switch t.Kind() {
	case reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}
