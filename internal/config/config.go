package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config carries everything the inference binaries read from the
// environment. BundledModelsPath is the primary weight source; when
// it is empty only degraded paths remain available.
type Config struct {
	BundledModelsPath string
	ModelSearchPath   string
	OnnxRuntimeLib    string

	OpenAIKey         string
	OpenAIBaseURL     string
	OpenAIVisionModel string

	Debug bool
}

func Load() *Config {
	// A missing .env file is fine; system environment wins either way.
	_ = godotenv.Load()

	return &Config{
		BundledModelsPath: os.Getenv("BUNDLED_MODELS_PATH"),
		ModelSearchPath:   os.Getenv("MODEL_SEARCH_PATH"),
		OnnxRuntimeLib:    os.Getenv("ONNXRUNTIME_SHARED_LIB"),
		OpenAIKey:         os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIVisionModel: getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
		Debug:             os.Getenv("DEBUG") == "true",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
