// Command relabel redraws bounding boxes on an annotated image with
// caller-supplied labels: one JSON document on stdin, one on stdout.
// -mode selects the damage or room input shape.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"

	"github.com/tiptop-app/inference-service/internal/annotate"
	"github.com/tiptop-app/inference-service/internal/protocol"
)

type damageInput struct {
	Image      string                            `json:"image"`
	Detections []annotate.RelabelDamageDetection `json:"detections"`
	Labels     map[string]string                 `json:"labels"`
}

type roomInput struct {
	Image      string                          `json:"image"`
	Detections []annotate.RelabelRoomDetection `json:"detections"`
	Labels     map[string]string               `json:"labels"`
}

type output struct {
	AnnotatedImage string `json:"annotated_image"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	mode := flag.String("mode", "damage", "input shape and drawing style: damage or room")
	flag.Parse()

	if err := run(*mode, os.Stdin, os.Stdout); err != nil {
		log.Printf("error: %v", err)
		_ = protocol.WriteError(os.Stdout, err, string(debug.Stack()))
	}
}

func run(mode string, in io.Reader, out io.Writer) error {
	data, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	var annotated string
	switch mode {
	case "damage":
		var input damageInput
		if err := json.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
		annotated, err = annotate.RelabelDamage(input.Image, input.Detections, input.Labels)
	case "room":
		var input roomInput
		if err := json.Unmarshal(data, &input); err != nil {
			return fmt.Errorf("parse input: %w", err)
		}
		annotated, err = annotate.RelabelRoom(input.Image, input.Detections, input.Labels)
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	if err != nil {
		return err
	}

	return protocol.WriteResult(out, output{AnnotatedImage: annotated})
}
