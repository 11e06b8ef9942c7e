package models

// DamageDetection is one located damage instance in pixel space.
// BBox is [x, y, w, h].
type DamageDetection struct {
	Class           string     `json:"cls"`
	BBox            [4]float64 `json:"bbox"`
	Confidence      float64    `json:"conf"`
	Severity        float64    `json:"severity"`
	AffectedAreaPct float64    `json:"affected_area_pct"`
}

// RoomDetection is one located room. BoundingBox is
// [xmin, ymin, xmax, ymax] normalized to the 0-1000 range.
type RoomDetection struct {
	ID          string     `json:"id"`
	BoundingBox [4]int     `json:"bounding_box"`
	NameHint    string     `json:"name_hint"`
	Confidence  float64    `json:"-"`
	PixelBox    [4]float64 `json:"-"`
}

// CostEstimate holds dollar amounts for a damage repair, either from
// the heuristic model or from the vision-assisted estimator.
type CostEstimate struct {
	LaborUSD       float64 `json:"labor_usd"`
	MaterialsUSD   float64 `json:"materials_usd"`
	DisposalUSD    float64 `json:"disposal_usd"`
	ContingencyUSD float64 `json:"contingency_usd"`
	TotalUSD       float64 `json:"total_usd"`
	Assumptions    string  `json:"assumptions"`
}

// DamageResult is the damage-variant response document.
type DamageResult struct {
	Detections     []DamageDetection `json:"detections"`
	CostEstimate   *CostEstimate     `json:"cost_estimate,omitempty"`
	ImageWidth     int               `json:"image_width"`
	ImageHeight    int               `json:"image_height"`
	AnnotatedImage *string           `json:"annotated_image"`
}

// RoomResult is the room-variant response document. Degraded marks
// fallback detections substituted after an inference failure, so
// callers can tell placeholders from real output.
type RoomResult struct {
	Detections     []RoomDetection `json:"detections"`
	ImageWidth     int             `json:"image_width"`
	ImageHeight    int             `json:"image_height"`
	AnnotatedImage *string         `json:"annotated_image"`
	Degraded       bool            `json:"degraded"`
	DegradedReason string          `json:"degraded_reason,omitempty"`
}
