package domain

import "time"

// Soil types commonly reported by farms
const (
	SoilBlack    = "black"
	SoilRed      = "red"
	SoilAlluvial = "alluvial"
	SoilLaterite = "laterite"
	SoilSandy    = "sandy"
	SoilClay     = "clay"
	SoilLoamy    = "loamy"
)

// Irrigation types
const (
	IrrigationDrip      = "drip"
	IrrigationSprinkler = "sprinkler"
	IrrigationCanal     = "canal"
	IrrigationBorewell  = "borewell"
	IrrigationRainfed   = "rainfed"
)

// Farm represents a farm descriptor supplied by its owner
type Farm struct {
	ID             string    `json:"id"`
	OwnerID        string    `json:"owner_id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	District       string    `json:"district"`
	Village        string    `json:"village,omitempty"`
	LandSizeAcres  float64   `json:"land_size_acres"`
	SoilType       string    `json:"soil_type"`
	IrrigationType string    `json:"irrigation_type"`
	Crops          []string  `json:"crops"`
	CreatedAt      time.Time `json:"created_at"`
}

// LocationCandidates returns the geocoding queries for this farm, in the order
// they must be attempted: village with district, district alone, then the
// caller-supplied fallback district.
func (f Farm) LocationCandidates(fallbackDistrict string) []string {
	var candidates []string
	if f.Village != "" && f.District != "" {
		candidates = append(candidates, f.Village+", "+f.District)
	}
	if f.District != "" {
		candidates = append(candidates, f.District)
	}
	if fallbackDistrict != "" {
		candidates = append(candidates, fallbackDistrict)
	}
	return candidates
}
