package detector

import "errors"

const (
	InputWidth  = 640
	InputHeight = 640
	NumAnchors  = 8400

	RetryAttempts = 3
	RetryDelayMs  = 100
)

var (
	ErrNoDefaultModel  = errors.New("no default model found - bundled model missing")
	ErrModelLoadFailed = errors.New("model loading failed")
	ErrInferenceFailed = errors.New("inference failed")
)

// RawDetection is one detector output box before variant-specific
// post-processing. Box is [x1, y1, x2, y2] in original image pixels.
type RawDetection struct {
	Box        [4]float32
	ClassID    int
	Confidence float32
}

// Variant describes one trained model family: how many classes its
// weights predict, which bundled identifiers serve as the default,
// and which on-disk layouts its weights use.
type Variant struct {
	Name            string
	NumClasses      int
	DefaultPriority []string
	// LayoutDirs are probed as <root>/<id>/<dir>/weights/best.onnx.
	// An empty entry means the plain <root>/<id>/weights/best.onnx.
	LayoutDirs []string
	Catalog    map[string]string
}

var DamageVariant = Variant{
	Name:            "damage",
	NumClasses:      4,
	DefaultPriority: []string{"roof_damage_nano_300ep", "roof_damage_small_200ep"},
	LayoutDirs:      []string{""},
	Catalog: map[string]string{
		"roof_damage_nano_300ep":  "Roof Damage Detection - Nano - 300 epochs",
		"roof_damage_small_200ep": "Roof Damage Detection - Small - 200 epochs",
		"default":                 "Default model (roof_damage_nano_300ep)",
	},
}

var RoomVariant = Variant{
	Name:            "room",
	NumClasses:      1,
	DefaultPriority: []string{"room-detect-1class-20ep", "room-detect-2class-20ep"},
	LayoutDirs:      []string{"", "room_detection"},
	Catalog: map[string]string{
		"room-detect-1class-20ep": "Room Detection - 1 Class - 20 epochs",
		"room-detect-2class-20ep": "Room Detection - 2 Class - 20 epochs",
		"default":                 "Default model (room-detect-1class-20ep)",
	},
}
