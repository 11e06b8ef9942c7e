// Command room-infer reads one binary-framed room-detection request on
// stdin and writes one JSON document on stdout. Inference failures
// degrade to placeholder detections instead of erroring.
package main

import (
	"context"
	"log"
	"os"

	"github.com/tiptop-app/inference-service/internal/config"
	"github.com/tiptop-app/inference-service/internal/detector"
	"github.com/tiptop-app/inference-service/internal/service"
)

func main() {
	log.SetFlags(log.LstdFlags)

	cfg := config.Load()
	if cfg.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
	if cfg.BundledModelsPath == "" {
		log.Printf("BUNDLED_MODELS_PATH not set - only default resolution via extra search paths")
	}

	// Init failure shows up as a degraded result when the model loads.
	if err := detector.InitRuntime(cfg.OnnxRuntimeLib); err != nil {
		log.Printf("onnx runtime init: %v", err)
	} else {
		defer detector.DestroyRuntime()
	}

	registry := detector.NewRegistry(detector.RoomVariant, cfg.BundledModelsPath, cfg.ModelSearchPath)
	defer registry.Destroy()

	svc := service.NewRoomService(service.NewRegistryResolver(registry))
	svc.Run(context.Background(), os.Stdin, os.Stdout)
}
