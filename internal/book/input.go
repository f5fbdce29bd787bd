package book

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Optional records whether a JSON key was present and whether its value
// decoded into T. Explicit null is present but not valid.
type Optional[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// Some returns a present, valid Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true, Valid: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	o.Value = v
	o.Valid = true
	return nil
}

// Input is the request body of a create or update.
type Input struct {
	Title         Optional[string] `json:"title"`
	Author        Optional[string] `json:"author"`
	PublishedDate Optional[string] `json:"publishedDate"`
	Genre         Optional[string] `json:"genre"`
}

// DecodeInput reads a JSON object from r. An empty body decodes to an empty
// Input. Unknown keys and non-object bodies are reported as *ValidationError;
// a *http.MaxBytesError from the reader is returned unchanged.
func DecodeInput(r io.Reader) (Input, error) {
	var in Input
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	err := dec.Decode(&in)
	if err == nil {
		err = expectEOF(dec)
	}
	switch {
	case err == nil, errors.Is(err, io.EOF):
		return in, nil
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		key := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		return Input{}, &ValidationError{Field: key, Message: fmt.Sprintf("%q is not allowed", key)}
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Input{}, &ValidationError{Field: "value", Message: `"value" must be of type object`}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, errTrailingData) {
		return Input{}, &ValidationError{Field: "body", Message: "request body must be valid JSON"}
	}
	return Input{}, err
}

var errTrailingData = errors.New("trailing data after JSON body")

// expectEOF reports an error unless dec has nothing but whitespace left.
func expectEOF(dec *json.Decoder) error {
	var extra json.RawMessage
	err := dec.Decode(&extra)
	switch {
	case errors.Is(err, io.EOF):
		return nil
	case err == nil:
		return errTrailingData
	default:
		return err
	}
}
