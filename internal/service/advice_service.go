package service

import (
	"github.com/farmsight/backend/internal/domain"
)

// Advisory messages shown on the farm dashboard. Tests pin these exactly.
const (
	AdviceHighTemperature = "High temperature alert: irrigate crops in the early morning or late evening to reduce heat stress."
	AdviceHighHumidity    = "High humidity: monitor crops closely for fungal diseases and ensure good air circulation."
	AdviceRainExpected    = "Rain expected: consider postponing fertilizer and pesticide application."
	AdviceStrongWind      = "Strong winds: stake young plants and secure greenhouse covers."
	AdviceAllClear        = "Weather conditions are favorable for normal farming activities."
)

// Thresholds that trigger each advisory
const (
	tempThresholdC    = 35.0
	humidityThreshold = 80
	precipThresholdMM = 5.0
	windThresholdKmh  = 20.0
)

// AdviceService derives farming advice from weather snapshots
type AdviceService struct{}

// NewAdviceService creates a new advice service
func NewAdviceService() *AdviceService {
	return &AdviceService{}
}

// Advise runs each threshold check independently and returns the triggered
// advisories, or the all-clear message when none trigger.
func (s *AdviceService) Advise(snapshot domain.WeatherSnapshot) []domain.Advisory {
	var advisories []domain.Advisory

	if snapshot.Current.TemperatureC > tempThresholdC {
		advisories = append(advisories, domain.Advisory{
			Severity: domain.SeverityWarning,
			Message:  AdviceHighTemperature,
		})
	}

	if snapshot.Current.Humidity > humidityThreshold {
		advisories = append(advisories, domain.Advisory{
			Severity: domain.SeverityWarning,
			Message:  AdviceHighHumidity,
		})
	}

	if len(snapshot.Forecast) > 0 && snapshot.Forecast[0].PrecipMM > precipThresholdMM {
		advisories = append(advisories, domain.Advisory{
			Severity: domain.SeverityInfo,
			Message:  AdviceRainExpected,
		})
	}

	if snapshot.Current.WindSpeedKmh > windThresholdKmh {
		advisories = append(advisories, domain.Advisory{
			Severity: domain.SeverityWarning,
			Message:  AdviceStrongWind,
		})
	}

	if len(advisories) == 0 {
		advisories = append(advisories, domain.Advisory{
			Severity: domain.SeverityInfo,
			Message:  AdviceAllClear,
		})
	}

	return advisories
}
