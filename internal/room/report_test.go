package room

import (
	"testing"

	"github.com/tiptop-app/inference-service/internal/detector"
)

func TestBuildDetections_IdentityScale(t *testing.T) {
	// On a 1000x1000 image the 0-1000 normalization is the identity.
	raw := []detector.RawDetection{
		{Box: [4]float32{100, 100, 200, 200}, Confidence: 0.8},
	}
	detections := BuildDetections(raw, 1000, 1000)
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].BoundingBox != [4]int{100, 100, 200, 200} {
		t.Errorf("expected identity box, got %v", detections[0].BoundingBox)
	}
}

func TestBuildDetections_Rounds(t *testing.T) {
	raw := []detector.RawDetection{
		{Box: [4]float32{1, 1, 639, 479}, Confidence: 0.5},
	}
	det := BuildDetections(raw, 640, 480)[0]
	// 1/640*1000 = 1.5625 -> 2; 639/640*1000 = 998.4375 -> 998;
	// 1/480*1000 = 2.083 -> 2; 479/480*1000 = 997.9 -> 998.
	want := [4]int{2, 2, 998, 998}
	if det.BoundingBox != want {
		t.Errorf("expected %v, got %v", want, det.BoundingBox)
	}
}

func TestBuildDetections_IDsAndHints(t *testing.T) {
	raw := make([]detector.RawDetection, 12)
	detections := BuildDetections(raw, 100, 100)
	if detections[0].ID != "room_001" {
		t.Errorf("expected room_001, got %s", detections[0].ID)
	}
	if detections[11].ID != "room_012" {
		t.Errorf("expected room_012, got %s", detections[11].ID)
	}
	for _, d := range detections {
		if d.NameHint != "room" {
			t.Errorf("expected generic name hint, got %q", d.NameHint)
		}
	}
}

func TestBuildDetections_ZeroDimension(t *testing.T) {
	raw := []detector.RawDetection{{Box: [4]float32{10, 10, 20, 20}}}
	det := BuildDetections(raw, 0, 0)[0]
	if det.BoundingBox != [4]int{0, 0, 0, 0} {
		t.Errorf("zero dimensions should normalize to zero, got %v", det.BoundingBox)
	}
}

func TestMockDetections(t *testing.T) {
	mocks := MockDetections()
	if len(mocks) != 2 {
		t.Fatalf("expected 2 mock detections, got %d", len(mocks))
	}
	if mocks[0].ID != "room_001" || mocks[0].BoundingBox != [4]int{50, 50, 200, 300} {
		t.Errorf("unexpected first mock: %+v", mocks[0])
	}
	if mocks[1].ID != "room_002" || mocks[1].BoundingBox != [4]int{250, 50, 700, 500} {
		t.Errorf("unexpected second mock: %+v", mocks[1])
	}
}
