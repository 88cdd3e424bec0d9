package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/farmsight/backend/internal/domain"
)

// DemoDataNotice is shown whenever the dashboard substitutes the mock payload.
// Tests pin this exactly.
const DemoDataNotice = "Unable to fetch live weather data. Showing demo data."

// DashboardService composes the farm weather dashboard: location candidates,
// geocoding, weather retrieval, and advisory derivation
type DashboardService struct {
	geocodeSvc *GeocodeService
	weatherSvc *WeatherService
	adviceSvc  *AdviceService
	repo       DataRepository

	fallbackDistrict string
	forecastDays     int

	wgBg sync.WaitGroup // tracks background goroutines for graceful shutdown
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(
	geocodeSvc *GeocodeService,
	weatherSvc *WeatherService,
	adviceSvc *AdviceService,
	repo DataRepository,
	fallbackDistrict string,
	forecastDays int,
) *DashboardService {
	return &DashboardService{
		geocodeSvc:       geocodeSvc,
		weatherSvc:       weatherSvc,
		adviceSvc:        adviceSvc,
		repo:             repo,
		fallbackDistrict: fallbackDistrict,
		forecastDays:     forecastDays,
	}
}

// WaitBackground blocks until all background save goroutines complete.
// Call during graceful shutdown to avoid dropped writes.
func (s *DashboardService) WaitBackground() {
	s.wgBg.Wait()
}

// GetFarmWeather runs the full sequence for one farm: candidate location
// strings in order, geocoding, weather retrieval, then advisories. Any failure
// along the way yields the fixed demo payload plus the demo notice; the result
// always renders.
func (s *DashboardService) GetFarmWeather(ctx context.Context, farm domain.Farm) domain.FarmWeather {
	result := domain.FarmWeather{
		Farm:      farm,
		Timestamp: time.Now(),
	}

	var snapshot domain.WeatherSnapshot

	candidates := farm.LocationCandidates(s.fallbackDistrict)
	resolved, err := s.geocodeSvc.ResolveFirst(ctx, candidates)
	if err != nil {
		log.Printf("dashboard: geocoding failed for farm %s: %v", farm.ID, err)
		snapshot = s.weatherSvc.MockSnapshot(s.forecastDays)
		result.Notice = DemoDataNotice
	} else {
		result.Location = resolved
		snapshot, err = s.weatherSvc.Fetch(ctx, resolved.Coordinates, s.forecastDays)
		if err != nil {
			log.Printf("dashboard: weather fetch failed for farm %s: %v", farm.ID, err)
			snapshot = s.weatherSvc.MockSnapshot(s.forecastDays)
			result.Notice = DemoDataNotice
		}
	}

	result.Weather = snapshot
	result.Advisories = s.adviceSvc.Advise(snapshot)

	// Persist live observations asynchronously (tracked for graceful shutdown).
	// Demo payloads are never written to history.
	if !snapshot.IsMock {
		s.wgBg.Add(1)
		go func() {
			defer s.wgBg.Done()
			bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := s.repo.SaveWeatherRecord(bgCtx, snapshotRecord(farm.ID, snapshot)); err != nil {
				log.Printf("Failed to save weather record: %v", err)
			}
		}()
	}

	return result
}

// RefreshFarm fetches and persists a snapshot synchronously. Used by the
// scheduler; failures propagate so the job can log them per farm.
func (s *DashboardService) RefreshFarm(ctx context.Context, farm domain.Farm) error {
	candidates := farm.LocationCandidates(s.fallbackDistrict)
	resolved, err := s.geocodeSvc.ResolveFirst(ctx, candidates)
	if err != nil {
		return fmt.Errorf("dashboard: failed to resolve farm %s: %w", farm.ID, err)
	}

	snapshot, err := s.weatherSvc.Fetch(ctx, resolved.Coordinates, s.forecastDays)
	if err != nil {
		return fmt.Errorf("dashboard: failed to fetch weather for farm %s: %w", farm.ID, err)
	}

	if err := s.repo.SaveWeatherRecord(ctx, snapshotRecord(farm.ID, snapshot)); err != nil {
		return fmt.Errorf("dashboard: failed to save weather record for farm %s: %w", farm.ID, err)
	}

	return nil
}

// snapshotRecord flattens a snapshot into a persistable history row
func snapshotRecord(farmID string, snapshot domain.WeatherSnapshot) domain.WeatherRecord {
	record := domain.WeatherRecord{
		FarmID:       farmID,
		TemperatureC: snapshot.Current.TemperatureC,
		Humidity:     snapshot.Current.Humidity,
		Description:  snapshot.Current.Description,
		WindSpeedKmh: snapshot.Current.WindSpeedKmh,
		PressureHpa:  snapshot.Current.PressureHpa,
		RecordedAt:   snapshot.FetchedAt,
	}
	if len(snapshot.Forecast) > 0 {
		record.PrecipMM = snapshot.Forecast[0].PrecipMM
	}
	return record
}
