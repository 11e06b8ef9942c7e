package protocol

import (
	"encoding/json"
	"fmt"
	"io"
)

// ErrorDocument is the failure response. The output stream carries
// exactly one JSON document either way, so callers parsing stdout
// never see a raw crash or a partial payload.
type ErrorDocument struct {
	Error     string `json:"error"`
	Traceback string `json:"traceback"`
}

// WriteResult serializes a success document as a single JSON line.
func WriteResult(w io.Writer, result any) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// WriteError emits the error document. Marshaling two plain strings
// cannot fail, so this is best-effort by construction.
func WriteError(w io.Writer, cause error, traceback string) error {
	doc := ErrorDocument{
		Error:     cause.Error(),
		Traceback: traceback,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode error document: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
