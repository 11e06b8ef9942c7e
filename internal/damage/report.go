// Package damage maps raw detector output to the public roof-damage
// schema and prices the findings.
package damage

import (
	"fmt"
	"math"

	"github.com/tiptop-app/inference-service/internal/detector"
	"github.com/tiptop-app/inference-service/internal/models"
)

// IouThreshold is the fixed suppression threshold; the request only
// carries the confidence threshold.
const IouThreshold = 0.45

var classNames = map[int]string{
	0: "missing_shingle",
	1: "lifted_shingle",
	2: "torn_shingle",
	3: "hail_bruise",
}

func ClassName(id int) string {
	if name, ok := classNames[id]; ok {
		return name
	}
	return fmt.Sprintf("unknown_%d", id)
}

// Severity is the bounding-box share of the image area, clamped to
// [0, 1]. A zero-area image yields zero.
func Severity(boxWidth, boxHeight float64, imgWidth, imgHeight int) float64 {
	imgArea := float64(imgWidth) * float64(imgHeight)
	if imgArea <= 0 {
		return 0.0
	}
	severity := boxWidth * boxHeight / imgArea
	return math.Min(1.0, math.Max(0.0, severity))
}

// BuildDetections converts corner-coordinate raw detections into the
// [x, y, w, h] damage schema with derived severity.
func BuildDetections(raw []detector.RawDetection, imgWidth, imgHeight int) []models.DamageDetection {
	detections := make([]models.DamageDetection, 0, len(raw))
	for _, r := range raw {
		x := float64(r.Box[0])
		y := float64(r.Box[1])
		w := float64(r.Box[2]) - x
		h := float64(r.Box[3]) - y

		severity := Severity(w, h, imgWidth, imgHeight)
		detections = append(detections, models.DamageDetection{
			Class:           ClassName(r.ClassID),
			BBox:            [4]float64{x, y, w, h},
			Confidence:      float64(r.Confidence),
			Severity:        severity,
			AffectedAreaPct: round2(severity * 100),
		})
	}
	return detections
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
