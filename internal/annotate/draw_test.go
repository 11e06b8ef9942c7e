package annotate

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/tiptop-app/inference-service/internal/models"
)

func testImageB64(t *testing.T, width, height int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{128, 128, 128, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func decodeB64PNG(t *testing.T, encoded string) image.Image {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		t.Fatalf("result is not valid base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("result is not valid PNG: %v", err)
	}
	return img
}

func TestDamageOverlay(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 120, 120))
	detections := []models.DamageDetection{
		{Class: "hail_bruise", BBox: [4]float64{20, 30, 40, 40}, Confidence: 0.8},
	}

	encoded, err := DamageOverlay(img, detections)
	if err != nil {
		t.Fatalf("DamageOverlay failed: %v", err)
	}
	out := decodeB64PNG(t, encoded)
	if out.Bounds() != img.Bounds() {
		t.Errorf("overlay changed dimensions: %v", out.Bounds())
	}

	// The box outline should have painted the top-left corner red.
	r, g, b, _ := out.At(20, 30).RGBA()
	if r>>8 != 255 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("expected red outline at (20,30), got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestRoomOverlay(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 100, 100))
	detections := []models.RoomDetection{
		{ID: "room_001", PixelBox: [4]float64{10, 40, 60, 90}},
	}

	encoded, err := RoomOverlay(img, detections)
	if err != nil {
		t.Fatalf("RoomOverlay failed: %v", err)
	}
	out := decodeB64PNG(t, encoded)

	r, g, b, _ := out.At(10, 40).RGBA()
	if r>>8 != 0 || g>>8 != 255 || b>>8 != 0 {
		t.Errorf("expected green outline at (10,40), got %d %d %d", r>>8, g>>8, b>>8)
	}
}

func TestRelabelDamage_RoundTrip(t *testing.T) {
	input := testImageB64(t, 100, 100)
	detections := []RelabelDamageDetection{
		{BBox: [4]float64{10, 30, 50, 70}, Conf: 0.9},
		{BBox: [4]float64{60, 60, 90, 90}, Conf: 0.3},
	}
	labels := map[string]string{"0": "torn_shingle"}

	encoded, err := RelabelDamage(input, detections, labels)
	if err != nil {
		t.Fatalf("RelabelDamage failed: %v", err)
	}
	out := decodeB64PNG(t, encoded)
	if out.Bounds().Dx() != 100 || out.Bounds().Dy() != 100 {
		t.Errorf("unexpected output size %v", out.Bounds())
	}

	// High-confidence box is red, low-confidence green.
	r, g, _, _ := out.At(10, 30).RGBA()
	if r>>8 != 255 || g>>8 != 0 {
		t.Errorf("expected red box at high confidence, got r=%d g=%d", r>>8, g>>8)
	}
	r, g, _, _ = out.At(60, 60).RGBA()
	if r>>8 != 0 || g>>8 != 255 {
		t.Errorf("expected green box at low confidence, got r=%d g=%d", r>>8, g>>8)
	}
}

func TestRelabelRoom_PaletteAndFallbacks(t *testing.T) {
	input := testImageB64(t, 100, 100)
	detections := []RelabelRoomDetection{
		{ID: "room_001", BoundingBox: [4]float64{10, 30, 40, 60}, NameHint: "room"},
		{ID: "room_002", BoundingBox: [4]float64{50, 30, 90, 60}},
	}
	labels := map[string]string{"room_001": "kitchen"}

	encoded, err := RelabelRoom(input, detections, labels)
	if err != nil {
		t.Fatalf("RelabelRoom failed: %v", err)
	}
	out := decodeB64PNG(t, encoded)

	// First palette entry is red, second green.
	r, g, _, _ := out.At(10, 30).RGBA()
	if r>>8 != 255 || g>>8 != 0 {
		t.Errorf("expected red first box, got r=%d g=%d", r>>8, g>>8)
	}
	r, g, _, _ = out.At(50, 30).RGBA()
	if r>>8 != 0 || g>>8 != 255 {
		t.Errorf("expected green second box, got r=%d g=%d", r>>8, g>>8)
	}
}

func TestRelabelDamage_BadImage(t *testing.T) {
	if _, err := RelabelDamage("not base64!!", nil, nil); err == nil {
		t.Error("invalid base64 must fail")
	}
	garbage := base64.StdEncoding.EncodeToString([]byte("not an image"))
	if _, err := RelabelDamage(garbage, nil, nil); err == nil {
		t.Error("undecodable image must fail")
	}
}

func TestEncodeBase64PNG_RoundTrip(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	encoded, err := EncodeBase64PNG(img)
	if err != nil {
		t.Fatal(err)
	}
	decoded, err := DecodeBase64Image(encoded)
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Bounds().Dx() != 8 || decoded.Bounds().Dy() != 8 {
		t.Errorf("unexpected bounds %v", decoded.Bounds())
	}
}
