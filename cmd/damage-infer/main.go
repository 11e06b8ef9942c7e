// Command damage-infer reads one binary-framed damage-detection
// request on stdin and writes one JSON document on stdout. All
// diagnostics go to stderr.
package main

import (
	"context"
	"log"
	"os"

	"github.com/tiptop-app/inference-service/internal/config"
	"github.com/tiptop-app/inference-service/internal/damage"
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

	// A dead runtime surfaces later as a model-load failure and takes
	// the error-document path; the output contract holds either way.
	if err := detector.InitRuntime(cfg.OnnxRuntimeLib); err != nil {
		log.Printf("onnx runtime init: %v", err)
	} else {
		defer detector.DestroyRuntime()
	}

	registry := detector.NewRegistry(detector.DamageVariant, cfg.BundledModelsPath, cfg.ModelSearchPath)
	defer registry.Destroy()

	var vision *damage.VisionEstimator
	if cfg.OpenAIKey != "" {
		vision = damage.NewVisionEstimator(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.OpenAIVisionModel)
	} else {
		log.Printf("OPENAI_API_KEY not found - using heuristic cost estimates")
	}

	svc := service.NewDamageService(service.NewRegistryResolver(registry), vision)
	svc.Run(context.Background(), os.Stdin, os.Stdout)
}
