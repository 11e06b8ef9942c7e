package detector

import (
	"fmt"
	"math"
	"sort"
)

// decodePredictions maps the raw [4+numClasses, 8400] output tensor to
// detections in original image space. Rows 0-3 are normalized
// cx/cy/w/h; the remaining rows are per-class scores.
func decodePredictions(predictions []float32, numClasses, originalWidth, originalHeight int, confThreshold float32) ([]RawDetection, error) {
	expected := (4 + numClasses) * NumAnchors
	if len(predictions) != expected {
		return nil, fmt.Errorf("unexpected predictions length: got %d, want %d", len(predictions), expected)
	}

	detections := make([]RawDetection, 0, 100)
	for i := 0; i < NumAnchors; i++ {
		classID := 0
		confidence := predictions[4*NumAnchors+i]
		for c := 1; c < numClasses; c++ {
			if score := predictions[(4+c)*NumAnchors+i]; score > confidence {
				confidence = score
				classID = c
			}
		}
		if confidence < confThreshold {
			continue
		}

		box := calculateBox(
			predictions[i],
			predictions[NumAnchors+i],
			predictions[2*NumAnchors+i],
			predictions[3*NumAnchors+i],
			float32(originalWidth),
			float32(originalHeight),
		)
		detections = append(detections, RawDetection{
			Box:        box,
			ClassID:    classID,
			Confidence: confidence,
		})
	}

	sortByConfidence(detections)
	return detections, nil
}

// calculateBox converts normalized center coordinates to clamped
// pixel corners in the original image.
func calculateBox(cx, cy, w, h, origWidth, origHeight float32) [4]float32 {
	scaleX := origWidth / InputWidth
	scaleY := origHeight / InputHeight

	centerX := cx * InputWidth
	centerY := cy * InputHeight
	width := w * InputWidth
	height := h * InputHeight

	x1 := (centerX - width/2) * scaleX
	y1 := (centerY - height/2) * scaleY
	x2 := (centerX + width/2) * scaleX
	y2 := (centerY + height/2) * scaleY

	return [4]float32{
		maxF32(0, x1),
		maxF32(0, y1),
		minF32(origWidth, x2),
		minF32(origHeight, y2),
	}
}

func sortByConfidence(detections []RawDetection) {
	sort.Slice(detections, func(i, j int) bool {
		return detections[i].Confidence > detections[j].Confidence
	})
}

// suppressOverlaps is greedy per-class non-maximum suppression over a
// confidence-sorted slice.
func suppressOverlaps(detections []RawDetection, iouThreshold float32) []RawDetection {
	if len(detections) == 0 {
		return nil
	}

	kept := make([]RawDetection, 0, len(detections))
	for _, det := range detections {
		overlap := false
		for _, k := range kept {
			if k.ClassID == det.ClassID && boxIOU(k.Box, det.Box) > float64(iouThreshold) {
				overlap = true
				break
			}
		}
		if !overlap {
			kept = append(kept, det)
		}
	}
	return kept
}

func boxIOU(box1, box2 [4]float32) float64 {
	x1 := math.Max(float64(box1[0]), float64(box2[0]))
	y1 := math.Max(float64(box1[1]), float64(box2[1]))
	x2 := math.Min(float64(box1[2]), float64(box2[2]))
	y2 := math.Min(float64(box1[3]), float64(box2[3]))

	if x2 <= x1 || y2 <= y1 {
		return 0.0
	}

	intersection := (x2 - x1) * (y2 - y1)
	area1 := float64(box1[2]-box1[0]) * float64(box1[3]-box1[1])
	area2 := float64(box2[2]-box2[0]) * float64(box2[3]-box2[1])
	union := area1 + area2 - intersection

	return intersection / union
}

func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
