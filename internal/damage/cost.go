package damage

import "github.com/tiptop-app/inference-service/internal/models"

const (
	SetupMinUSD        = 150.00
	DefaultBaseUSD     = 100.00
	SeverityMultiplier = 400.00
	DisposalUSD        = 25.00
	ContingencyPct     = 0.10
	LaborPct           = 0.60

	heuristicAssumptions = "Heuristic fallback: class base + area severity + setup minimum + 10% contingency."
)

var classBaseCosts = map[string]float64{
	"missing_shingle": 125.00,
	"lifted_shingle":  125.00,
	"torn_shingle":    125.00,
	"hail_bruise":     90.00,
}

// Classes whose repair produces old material to haul away.
var disposalClasses = map[string]bool{
	"missing_shingle": true,
	"torn_shingle":    true,
}

// EstimateCost prices the findings with the fixed heuristic. Labor and
// materials are rounded independently from the same subtotal, so they
// may not sum to it exactly; that split is part of the contract.
func EstimateCost(detections []models.DamageDetection) *models.CostEstimate {
	subtotal := 0.0
	if len(detections) > 0 {
		subtotal = SetupMinUSD
	}

	disposal := 0.0
	for _, d := range detections {
		if disposalClasses[d.Class] {
			disposal = DisposalUSD
			break
		}
	}

	for _, d := range detections {
		base, ok := classBaseCosts[d.Class]
		if !ok {
			base = DefaultBaseUSD
		}
		subtotal += base + SeverityMultiplier*d.Severity
	}

	contingency := ContingencyPct * subtotal
	total := subtotal + disposal + contingency

	return &models.CostEstimate{
		LaborUSD:       round2(subtotal * LaborPct),
		MaterialsUSD:   round2(subtotal * (1 - LaborPct)),
		DisposalUSD:    round2(disposal),
		ContingencyUSD: round2(contingency),
		TotalUSD:       round2(total),
		Assumptions:    heuristicAssumptions,
	}
}
