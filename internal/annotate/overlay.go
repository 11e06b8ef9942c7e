package annotate

import (
	"fmt"
	"image"
	"image/color"

	"github.com/tiptop-app/inference-service/internal/models"
)

var (
	damageColor = color.RGBA{255, 0, 0, 255}
	roomColor   = color.RGBA{0, 255, 0, 255}
)

// DamageOverlay draws each damage box with a "class confidence" label
// on a copy of the input image.
func DamageOverlay(img image.Image, detections []models.DamageDetection) (string, error) {
	rgba := toRGBA(img)
	for _, det := range detections {
		x1 := int(det.BBox[0])
		y1 := int(det.BBox[1])
		x2 := int(det.BBox[0] + det.BBox[2])
		y2 := int(det.BBox[1] + det.BBox[3])

		drawRect(rgba, x1, y1, x2, y2, 2, damageColor)
		drawLabel(rgba, x1, y1-18, fmt.Sprintf("%s %.2f", det.Class, det.Confidence), damageColor)
	}
	return EncodeBase64PNG(rgba)
}

// RoomOverlay draws each room box with a sequential "Room N" label.
// Boxes come from the pixel-space coordinates, not the normalized
// ones the response carries.
func RoomOverlay(img image.Image, detections []models.RoomDetection) (string, error) {
	rgba := toRGBA(img)
	for i, det := range detections {
		x1 := int(det.PixelBox[0])
		y1 := int(det.PixelBox[1])
		x2 := int(det.PixelBox[2])
		y2 := int(det.PixelBox[3])

		drawRect(rgba, x1, y1, x2, y2, 3, roomColor)
		drawText(rgba, x1, y1-6, fmt.Sprintf("Room %d", i+1), roomColor)
	}
	return EncodeBase64PNG(rgba)
}
