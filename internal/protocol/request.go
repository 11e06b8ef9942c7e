package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// DefaultConfidence is substituted when the damage-variant threshold
// field is missing or truncated. Matching the wire producer, this is
// silent, not an error.
const DefaultConfidence = 0.2

var ErrMalformedRequest = errors.New("malformed request")

// Request is one decoded inference request.
type Request struct {
	ModelID    string
	Confidence float32
	ImageData  []byte
}

// DecodeRequest parses the binary framing used by both variants:
// a 4-byte big-endian model id length, the model id, an optional
// 4-byte big-endian float32 confidence threshold (damage variant
// only), and the remaining bytes as raw image file content.
func DecodeRequest(r io.Reader, withThreshold bool) (*Request, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, fmt.Errorf("%w: invalid input format", ErrMalformedRequest)
	}
	idLen := binary.BigEndian.Uint32(lenBuf[:])

	modelID := "default"
	if idLen > 0 {
		idBuf := make([]byte, idLen)
		if _, err := io.ReadFull(r, idBuf); err != nil {
			return nil, fmt.Errorf("%w: truncated model id", ErrMalformedRequest)
		}
		modelID = string(idBuf)
	}

	confidence := float32(DefaultConfidence)
	if withThreshold {
		var confBuf [4]byte
		if n, err := io.ReadFull(r, confBuf[:]); err == nil && n == 4 {
			confidence = math.Float32frombits(binary.BigEndian.Uint32(confBuf[:]))
		}
		// Fewer than 4 bytes: keep the default. Whatever was consumed
		// could only have been a truncated trailer, and the image read
		// below will catch an empty payload.
	}

	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read image data: %w", err)
	}
	if len(imageData) == 0 {
		return nil, fmt.Errorf("%w: no image data provided", ErrMalformedRequest)
	}

	return &Request{
		ModelID:    modelID,
		Confidence: confidence,
		ImageData:  imageData,
	}, nil
}

// EncodeRequest writes the binary framing for a request. Used by the
// tests and by callers driving the service over a pipe.
func EncodeRequest(w io.Writer, req *Request, withThreshold bool) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(req.ModelID)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	if _, err := io.WriteString(w, req.ModelID); err != nil {
		return err
	}
	if withThreshold {
		var confBuf [4]byte
		binary.BigEndian.PutUint32(confBuf[:], math.Float32bits(req.Confidence))
		if _, err := w.Write(confBuf[:]); err != nil {
			return err
		}
	}
	_, err := w.Write(req.ImageData)
	return err
}
