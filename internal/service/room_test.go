package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/tiptop-app/inference-service/internal/detector"
	"github.com/tiptop-app/inference-service/internal/models"
	"github.com/tiptop-app/inference-service/internal/protocol"
	"github.com/tiptop-app/inference-service/internal/room"
)

func roomRequest(t *testing.T, modelID string, imageData []byte) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	err := protocol.EncodeRequest(&buf, &protocol.Request{
		ModelID:   modelID,
		ImageData: imageData,
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	return &buf
}

func TestRoomService_Success(t *testing.T) {
	det := &fakeDetector{raw: []detector.RawDetection{
		{Box: [4]float32{100, 100, 200, 200}, Confidence: 0.9},
		{Box: [4]float32{300, 300, 700, 500}, Confidence: 0.7},
	}}
	resolver := &fakeResolver{det: det}
	svc := NewRoomService(resolver)

	var out bytes.Buffer
	svc.Run(context.Background(), roomRequest(t, "default", encodePNG(t, 1000, 1000)), &out)

	var result models.RoomResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("output is not a JSON document: %v", err)
	}

	if result.Degraded {
		t.Error("successful inference must not be degraded")
	}
	if det.gotConf != room.ConfThreshold || det.gotIoU != room.IouThreshold {
		t.Errorf("expected standard thresholds, got conf=%v iou=%v", det.gotConf, det.gotIoU)
	}
	if len(result.Detections) != 2 {
		t.Fatalf("expected 2 detections, got %d", len(result.Detections))
	}
	if result.Detections[0].ID != "room_001" || result.Detections[1].ID != "room_002" {
		t.Errorf("unexpected ids: %s, %s", result.Detections[0].ID, result.Detections[1].ID)
	}
	if result.Detections[0].BoundingBox != [4]int{100, 100, 200, 200} {
		t.Errorf("expected identity normalization, got %v", result.Detections[0].BoundingBox)
	}
	if result.AnnotatedImage == nil {
		t.Error("expected an annotated image")
	}
}

func TestRoomService_DetectorFailureDegrades(t *testing.T) {
	det := &fakeDetector{err: errors.New("session exploded")}
	svc := NewRoomService(&fakeResolver{det: det})

	var out bytes.Buffer
	svc.Run(context.Background(), roomRequest(t, "default", encodePNG(t, 640, 480)), &out)

	var result models.RoomResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("degraded mode must still be a success document: %v", err)
	}
	if !result.Degraded {
		t.Fatal("expected a degraded result")
	}
	if result.DegradedReason == "" {
		t.Error("expected a degraded reason")
	}
	if len(result.Detections) != 2 {
		t.Fatalf("expected the two mock detections, got %d", len(result.Detections))
	}
	if result.Detections[0].BoundingBox != [4]int{50, 50, 200, 300} {
		t.Errorf("unexpected mock box: %v", result.Detections[0].BoundingBox)
	}
	if result.AnnotatedImage != nil {
		t.Error("degraded results carry no annotated image")
	}
	if result.ImageWidth != 640 || result.ImageHeight != 480 {
		t.Errorf("degraded result should keep image dimensions, got %dx%d", result.ImageWidth, result.ImageHeight)
	}
}

func TestRoomService_ResolveFailureDegrades(t *testing.T) {
	svc := NewRoomService(&fakeResolver{err: detector.ErrNoDefaultModel})

	var out bytes.Buffer
	svc.Run(context.Background(), roomRequest(t, "default", encodePNG(t, 10, 10)), &out)

	var result models.RoomResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("expected a success document: %v", err)
	}
	if !result.Degraded {
		t.Error("resolution failure must degrade, not error")
	}
}

func TestRoomService_UndecodableImageDegrades(t *testing.T) {
	svc := NewRoomService(&fakeResolver{det: &fakeDetector{}})

	var out bytes.Buffer
	svc.Run(context.Background(), roomRequest(t, "default", []byte("not an image")), &out)

	var result models.RoomResult
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("expected a success document: %v", err)
	}
	if !result.Degraded {
		t.Error("undecodable image must degrade")
	}
	if result.ImageWidth != 0 || result.ImageHeight != 0 {
		t.Errorf("dimensions are unknown for an undecodable image, got %dx%d", result.ImageWidth, result.ImageHeight)
	}
}

func TestRoomService_MalformedRequest(t *testing.T) {
	svc := NewRoomService(&fakeResolver{det: &fakeDetector{}})

	var out bytes.Buffer
	svc.Run(context.Background(), bytes.NewReader(nil), &out)

	var doc protocol.ErrorDocument
	if err := json.Unmarshal(out.Bytes(), &doc); err != nil {
		t.Fatalf("expected an error document: %v", err)
	}
	if doc.Error == "" || doc.Traceback == "" {
		t.Errorf("error document missing fields: %+v", doc)
	}
}
