package service

import (
	"testing"

	"github.com/farmsight/backend/internal/domain"
)

func snapshotWith(temp float64, humidity int, wind, precip float64) domain.WeatherSnapshot {
	return domain.WeatherSnapshot{
		Current: domain.CurrentWeather{
			TemperatureC: temp,
			Humidity:     humidity,
			WindSpeedKmh: wind,
		},
		Forecast: []domain.ForecastDay{{PrecipMM: precip}},
	}
}

func TestAdviseThresholds(t *testing.T) {
	svc := NewAdviceService()

	tests := []struct {
		name     string
		snapshot domain.WeatherSnapshot
		want     []string
	}{
		{"all clear", snapshotWith(28, 65, 12, 0), []string{AdviceAllClear}},
		{"high temperature", snapshotWith(36, 65, 12, 0), []string{AdviceHighTemperature}},
		{"high humidity", snapshotWith(28, 85, 12, 0), []string{AdviceHighHumidity}},
		{"rain expected", snapshotWith(28, 65, 12, 6.5), []string{AdviceRainExpected}},
		{"strong wind", snapshotWith(28, 65, 25, 0), []string{AdviceStrongWind}},
		{"everything at once", snapshotWith(38, 90, 30, 12), []string{
			AdviceHighTemperature,
			AdviceHighHumidity,
			AdviceRainExpected,
			AdviceStrongWind,
		}},
		// Values exactly at a threshold must not trigger.
		{"at the thresholds", snapshotWith(35, 80, 20, 5), []string{AdviceAllClear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.Advise(tt.snapshot)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d advisories, got %d: %+v", len(tt.want), len(got), got)
			}
			for i, advisory := range got {
				if advisory.Message != tt.want[i] {
					t.Errorf("advisory %d: expected %q, got %q", i, tt.want[i], advisory.Message)
				}
			}
		})
	}
}

func TestAdviseRainChecksFirstForecastDayOnly(t *testing.T) {
	svc := NewAdviceService()

	snapshot := snapshotWith(28, 65, 12, 0)
	snapshot.Forecast = append(snapshot.Forecast, domain.ForecastDay{PrecipMM: 20})

	got := svc.Advise(snapshot)
	if len(got) != 1 || got[0].Message != AdviceAllClear {
		t.Fatalf("expected all-clear when only later days carry rain, got %+v", got)
	}
}

func TestAdviseHandlesEmptyForecast(t *testing.T) {
	svc := NewAdviceService()

	snapshot := snapshotWith(28, 65, 12, 0)
	snapshot.Forecast = nil

	got := svc.Advise(snapshot)
	if len(got) != 1 || got[0].Message != AdviceAllClear {
		t.Fatalf("expected all-clear with no forecast, got %+v", got)
	}
}

func TestAdviseSeverities(t *testing.T) {
	svc := NewAdviceService()

	got := svc.Advise(snapshotWith(38, 65, 12, 6))
	if len(got) != 2 {
		t.Fatalf("expected 2 advisories, got %d", len(got))
	}
	if got[0].Severity != domain.SeverityWarning {
		t.Errorf("expected temperature severity %q, got %q", domain.SeverityWarning, got[0].Severity)
	}
	if got[1].Severity != domain.SeverityInfo {
		t.Errorf("expected rain severity %q, got %q", domain.SeverityInfo, got[1].Severity)
	}
}
