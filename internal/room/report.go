// Package room maps raw detector output to the room schema: 0-1000
// normalized boxes with sequential identifiers, plus the canonical
// fallback detections for degraded mode.
package room

import (
	"fmt"
	"math"

	"github.com/tiptop-app/inference-service/internal/detector"
	"github.com/tiptop-app/inference-service/internal/models"
)

// Standard thresholds for the room model; the wire format carries no
// threshold field for this variant.
const (
	ConfThreshold = 0.25
	IouThreshold  = 0.45
)

// BuildDetections normalizes corner boxes to the 0-1000 integer range
// and assigns 1-based room_NNN identifiers. The underlying model is
// single-class, so every detection carries the generic name hint.
func BuildDetections(raw []detector.RawDetection, imgWidth, imgHeight int) []models.RoomDetection {
	detections := make([]models.RoomDetection, 0, len(raw))
	for i, r := range raw {
		detections = append(detections, models.RoomDetection{
			ID: fmt.Sprintf("room_%03d", i+1),
			BoundingBox: [4]int{
				normalize(float64(r.Box[0]), imgWidth),
				normalize(float64(r.Box[1]), imgHeight),
				normalize(float64(r.Box[2]), imgWidth),
				normalize(float64(r.Box[3]), imgHeight),
			},
			NameHint:   "room",
			Confidence: float64(r.Confidence),
			PixelBox: [4]float64{
				float64(r.Box[0]), float64(r.Box[1]),
				float64(r.Box[2]), float64(r.Box[3]),
			},
		})
	}
	return detections
}

func normalize(coord float64, dimension int) int {
	if dimension <= 0 {
		return 0
	}
	return int(math.Round(coord / float64(dimension) * 1000))
}

// MockDetections are the fixed placeholders substituted when the
// inference path fails.
func MockDetections() []models.RoomDetection {
	return []models.RoomDetection{
		{
			ID:          "room_001",
			BoundingBox: [4]int{50, 50, 200, 300},
			NameHint:    "room",
		},
		{
			ID:          "room_002",
			BoundingBox: [4]int{250, 50, 700, 500},
			NameHint:    "room",
		},
	}
}
