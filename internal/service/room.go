package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"runtime/debug"

	"github.com/disintegration/imaging"

	"github.com/tiptop-app/inference-service/internal/annotate"
	"github.com/tiptop-app/inference-service/internal/models"
	"github.com/tiptop-app/inference-service/internal/protocol"
	"github.com/tiptop-app/inference-service/internal/room"
)

// RoomService is the room-detection pipeline. Inference failures do
// not produce error documents: the result degrades to the canonical
// placeholder detections with a reason, and only a malformed request
// reaches the error path.
type RoomService struct {
	resolver Resolver
}

func NewRoomService(resolver Resolver) *RoomService {
	return &RoomService{resolver: resolver}
}

// Run processes exactly one request and always writes a single JSON
// document to out.
func (s *RoomService) Run(ctx context.Context, in io.Reader, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Printf("error: %v", err)
			_ = protocol.WriteError(out, err, string(debug.Stack()))
		}
	}()

	req, err := protocol.DecodeRequest(in, false)
	if err != nil {
		log.Printf("error: %v", err)
		_ = protocol.WriteError(out, err, string(debug.Stack()))
		return
	}

	log.Printf("received %d bytes of image data for model: %s", len(req.ImageData), req.ModelID)

	result := s.process(ctx, req)
	if result.Degraded {
		log.Printf("falling back to mock results: %s", result.DegradedReason)
	}
	if err := protocol.WriteResult(out, result); err != nil {
		log.Printf("write result: %v", err)
	}
}

func (s *RoomService) process(ctx context.Context, req *protocol.Request) *models.RoomResult {
	img, err := imaging.Decode(bytes.NewReader(req.ImageData))
	if err != nil {
		return degradedResult(0, 0, fmt.Sprintf("decode image: %v", err))
	}
	imgWidth := img.Bounds().Dx()
	imgHeight := img.Bounds().Dy()
	log.Printf("processing image: %dx%d pixels with model %s", imgWidth, imgHeight, req.ModelID)

	det, err := s.resolver.Resolve(req.ModelID)
	if err != nil {
		return degradedResult(imgWidth, imgHeight, fmt.Sprintf("resolve model: %v", err))
	}

	raw, err := det.Detect(ctx, img, room.ConfThreshold, room.IouThreshold)
	if err != nil {
		return degradedResult(imgWidth, imgHeight, fmt.Sprintf("inference failed: %v", err))
	}

	detections := room.BuildDetections(raw, imgWidth, imgHeight)
	log.Printf("detection complete: %d rooms found", len(detections))

	result := &models.RoomResult{
		Detections:  detections,
		ImageWidth:  imgWidth,
		ImageHeight: imgHeight,
	}

	annotated, err := annotate.RoomOverlay(img, detections)
	if err != nil {
		log.Printf("failed to generate annotated image: %v", err)
	} else {
		result.AnnotatedImage = &annotated
	}
	return result
}

func degradedResult(imgWidth, imgHeight int, reason string) *models.RoomResult {
	return &models.RoomResult{
		Detections:     room.MockDetections(),
		ImageWidth:     imgWidth,
		ImageHeight:    imgHeight,
		Degraded:       true,
		DegradedReason: reason,
	}
}
