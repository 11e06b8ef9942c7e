package annotate

import (
	"fmt"
	"image/color"
)

// RelabelDamageDetection is the damage relabel input shape. BBox is
// corner coordinates [x1, y1, x2, y2]; the producing tool draws from
// the same document it re-labels, so the two never mix with the
// inference [x,y,w,h] schema.
type RelabelDamageDetection struct {
	BBox [4]float64 `json:"bbox"`
	Conf float64    `json:"conf"`
}

// RelabelRoomDetection is the room relabel input shape.
type RelabelRoomDetection struct {
	ID          string     `json:"id"`
	BoundingBox [4]float64 `json:"bounding_box"`
	NameHint    string     `json:"name_hint"`
}

var relabelPalette = []color.RGBA{
	{255, 0, 0, 255},
	{0, 255, 0, 255},
	{0, 0, 255, 255},
	{255, 255, 0, 255},
	{255, 0, 255, 255},
	{0, 255, 255, 255},
}

// RelabelDamage redraws damage boxes with caller-supplied damage-type
// labels keyed by detection index. Box color tracks confidence: green
// below 0.5, orange below 0.75, red above.
func RelabelDamage(imageB64 string, detections []RelabelDamageDetection, labels map[string]string) (string, error) {
	img, err := DecodeBase64Image(imageB64)
	if err != nil {
		return "", err
	}
	rgba := toRGBA(img)

	for idx, det := range detections {
		label, ok := labels[fmt.Sprintf("%d", idx)]
		if !ok {
			label = "damage"
		}

		var col color.RGBA
		switch {
		case det.Conf < 0.5:
			col = color.RGBA{0, 255, 0, 255}
		case det.Conf < 0.75:
			col = color.RGBA{255, 165, 0, 255}
		default:
			col = color.RGBA{255, 0, 0, 255}
		}

		x1 := int(det.BBox[0])
		y1 := int(det.BBox[1])
		x2 := int(det.BBox[2])
		y2 := int(det.BBox[3])

		drawRect(rgba, x1, y1, x2, y2, 2, col)
		drawLabel(rgba, x1, y1-18, fmt.Sprintf("%s (%.2f)", label, det.Conf), col)
	}

	return EncodeBase64PNG(rgba)
}

// RelabelRoom redraws room boxes with caller-supplied labels keyed by
// detection id, cycling the palette across detections.
func RelabelRoom(imageB64 string, detections []RelabelRoomDetection, labels map[string]string) (string, error) {
	img, err := DecodeBase64Image(imageB64)
	if err != nil {
		return "", err
	}
	rgba := toRGBA(img)

	for idx, det := range detections {
		label, ok := labels[det.ID]
		if !ok {
			label = det.NameHint
		}
		if label == "" {
			label = "room"
		}

		col := relabelPalette[idx%len(relabelPalette)]

		x1 := int(det.BoundingBox[0])
		y1 := int(det.BoundingBox[1])
		x2 := int(det.BoundingBox[2])
		y2 := int(det.BoundingBox[3])

		drawRect(rgba, x1, y1, x2, y2, 3, col)
		drawLabel(rgba, x1, y1-20, label, col)
	}

	return EncodeBase64PNG(rgba)
}
