package domain

import "time"

// Coordinates represents a geographic point resolved by geocoding
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CurrentWeather holds present conditions at a location
type CurrentWeather struct {
	TemperatureC float64 `json:"temperature_c"`
	Humidity     int     `json:"humidity"`
	Description  string  `json:"description"`
	WindSpeedKmh float64 `json:"wind_speed_kmh"`
	PressureHpa  float64 `json:"pressure_hpa"`
}

// ForecastDay is one day's predicted weather summary
type ForecastDay struct {
	Date        string  `json:"date"`
	MaxTempC    float64 `json:"max_temp_c"`
	MinTempC    float64 `json:"min_temp_c"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	PrecipMM    float64 `json:"precip_mm"`
}

// WeatherSnapshot bundles current conditions with a short daily forecast
type WeatherSnapshot struct {
	Current   CurrentWeather `json:"current"`
	Forecast  []ForecastDay  `json:"forecast"`
	FetchedAt time.Time      `json:"fetched_at"`
	IsMock    bool           `json:"is_mock"`
}

// Advisory severities
const (
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Advisory is a single piece of weather-derived farming advice
type Advisory struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

// ResolvedLocation records which geocoding query succeeded and where it landed
type ResolvedLocation struct {
	Query       string      `json:"query"`
	Coordinates Coordinates `json:"coordinates"`
}

// FarmWeather is the composed dashboard payload for one farm
type FarmWeather struct {
	Farm       Farm             `json:"farm"`
	Location   ResolvedLocation `json:"location"`
	Weather    WeatherSnapshot  `json:"weather"`
	Advisories []Advisory       `json:"advisories"`
	Notice     string           `json:"notice,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
}

// WeatherRecord is a persisted weather observation for a farm
type WeatherRecord struct {
	FarmID       string    `json:"farm_id"`
	TemperatureC float64   `json:"temperature_c"`
	Humidity     int       `json:"humidity"`
	Description  string    `json:"description"`
	WindSpeedKmh float64   `json:"wind_speed_kmh"`
	PressureHpa  float64   `json:"pressure_hpa"`
	PrecipMM     float64   `json:"precip_mm"`
	RecordedAt   time.Time `json:"recorded_at"`
}
