// Package service wires the request decoder, model registry, detector
// and post-processors into the two single-shot inference pipelines.
package service

import (
	"context"
	"image"

	"github.com/tiptop-app/inference-service/internal/detector"
)

// Detector runs one model over one image. *detector.Handle satisfies
// it; tests substitute fakes.
type Detector interface {
	Detect(ctx context.Context, img image.Image, confThreshold, iouThreshold float32) ([]detector.RawDetection, error)
}

// Resolver maps a model identifier to a ready detector.
type Resolver interface {
	Resolve(modelID string) (Detector, error)
}

type registryResolver struct {
	registry *detector.Registry
}

// NewRegistryResolver adapts a handle registry to the Resolver
// interface.
func NewRegistryResolver(registry *detector.Registry) Resolver {
	return registryResolver{registry: registry}
}

func (r registryResolver) Resolve(modelID string) (Detector, error) {
	handle, err := r.registry.Resolve(modelID)
	if err != nil {
		return nil, err
	}
	return handle, nil
}
