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
	"github.com/tiptop-app/inference-service/internal/damage"
	"github.com/tiptop-app/inference-service/internal/detector"
	"github.com/tiptop-app/inference-service/internal/models"
	"github.com/tiptop-app/inference-service/internal/protocol"
)

// DamageService is the damage-detection pipeline: framed request in,
// one JSON document out, cost estimate included.
type DamageService struct {
	resolver Resolver
	vision   *damage.VisionEstimator
}

// NewDamageService builds the pipeline. vision may be nil, which
// leaves the heuristic as the only cost strategy.
func NewDamageService(resolver Resolver, vision *damage.VisionEstimator) *DamageService {
	return &DamageService{resolver: resolver, vision: vision}
}

// Run processes exactly one request. Whatever happens, out receives a
// single JSON document: the result on success, the error document
// otherwise. Panics are converted too; the process never crashes with
// a bare stack on stdout.
func (s *DamageService) Run(ctx context.Context, in io.Reader, out io.Writer) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic: %v", r)
			log.Printf("error: %v", err)
			_ = protocol.WriteError(out, err, string(debug.Stack()))
		}
	}()

	req, err := protocol.DecodeRequest(in, true)
	if err != nil {
		log.Printf("error: %v", err)
		_ = protocol.WriteError(out, err, string(debug.Stack()))
		return
	}

	log.Printf("received %d bytes of image data for model: %s, confidence: %g",
		len(req.ImageData), req.ModelID, req.Confidence)

	result, err := s.process(ctx, req)
	if err != nil {
		log.Printf("error: %v", err)
		_ = protocol.WriteError(out, err, string(debug.Stack()))
		return
	}
	if err := protocol.WriteResult(out, result); err != nil {
		log.Printf("write result: %v", err)
	}
}

func (s *DamageService) process(ctx context.Context, req *protocol.Request) (*models.DamageResult, error) {
	img, err := imaging.Decode(bytes.NewReader(req.ImageData))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	imgWidth := img.Bounds().Dx()
	imgHeight := img.Bounds().Dy()
	log.Printf("image dimensions: %dx%d", imgWidth, imgHeight)

	det, err := s.resolver.Resolve(req.ModelID)
	if err != nil {
		return nil, err
	}

	raw, err := det.Detect(ctx, img, req.Confidence, damage.IouThreshold)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", detector.ErrInferenceFailed, err)
	}

	detections := damage.BuildDetections(raw, imgWidth, imgHeight)
	log.Printf("found %d detections", len(detections))

	result := &models.DamageResult{
		Detections:  detections,
		ImageWidth:  imgWidth,
		ImageHeight: imgHeight,
	}

	// Overlay failures degrade to a null image, nothing else.
	annotated, err := annotate.DamageOverlay(img, detections)
	if err != nil {
		log.Printf("failed to generate annotated image: %v", err)
	} else {
		result.AnnotatedImage = &annotated
	}

	result.CostEstimate = s.estimateCost(ctx, result)
	return result, nil
}

// estimateCost prefers the vision strategy when it is configured and
// an annotated image exists, falling back to the heuristic on any
// failure. The two are never mixed for one request.
func (s *DamageService) estimateCost(ctx context.Context, result *models.DamageResult) *models.CostEstimate {
	if s.vision.Available() && result.AnnotatedImage != nil {
		log.Printf("calling vision model for cost estimation (%d damage areas detected)", len(result.Detections))
		estimate, err := s.vision.Estimate(ctx, *result.AnnotatedImage, result.Detections,
			result.ImageWidth, result.ImageHeight)
		if err == nil {
			return estimate
		}
		log.Printf("vision cost estimation failed: %v, using fallback", err)
	}
	return damage.EstimateCost(result.Detections)
}
