package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/tbourn/go-order-errors/internal/apperr"
	"github.com/tbourn/go-order-errors/internal/errcodes"
)

// bindError maps a JSON binding failure onto the error taxonomy.
func bindError(err error) error {
	var (
		tooLarge  *http.MaxBytesError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &tooLarge):
		return apperr.NewBadRequest("request body too large",
			apperr.WithCode(errcodes.InvalidInput),
			apperr.WithContext(map[string]any{"limit_bytes": tooLarge.Limit}))
	case errors.Is(err, io.EOF):
		return apperr.NewBadRequest("request body is empty", apperr.WithCode(errcodes.MissingRequiredField))
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.NewBadRequest("invalid JSON body",
			apperr.WithCode(errcodes.InvalidFormat),
			apperr.WithCause(err))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return apperr.NewValidation("invalid field type",
			map[string]string{field: "must be " + kindName(typeErr.Type)},
			apperr.WithCode(errcodes.InvalidFormat))
	}
	return apperr.NewBadRequest("invalid request body",
		apperr.WithCode(errcodes.InvalidInput),
		apperr.WithCause(err))
}

func kindName(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	case reflect.Struct, reflect.Map:
		return "an object"
	}
	return "a valid value"
}

// parseID reads a positive integer path parameter.
func parseID(name, raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NewValidation("invalid "+name,
			map[string]string{name: "must be a positive integer"},
			apperr.WithCode(errcodes.InvalidFormat),
			apperr.WithContext(map[string]any{"value": raw}))
	}
	return id, nil
}
