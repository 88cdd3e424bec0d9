package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid"

	"github.com/farmsight/backend/internal/domain"
)

// Farm codes are short shareable identifiers printed on reports. The alphabet
// drops easily-confused characters (0/O, 1/I).
const (
	farmCodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
	farmCodeLength   = 8
)

// FarmInput carries the owner-supplied farm descriptor fields
type FarmInput struct {
	Name           string
	District       string
	Village        string
	LandSizeAcres  float64
	SoilType       string
	IrrigationType string
	Crops          []string
}

// FarmService manages farm descriptors
type FarmService struct {
	repo DataRepository
}

// NewFarmService creates a new farm service
func NewFarmService(repo DataRepository) *FarmService {
	return &FarmService{repo: repo}
}

// Create registers a new farm for the owner and assigns its shareable code
func (s *FarmService) Create(ctx context.Context, ownerID string, in FarmInput) (domain.Farm, error) {
	code, err := gonanoid.Generate(farmCodeAlphabet, farmCodeLength)
	if err != nil {
		return domain.Farm{}, fmt.Errorf("farm: failed to generate code: %w", err)
	}

	farm := domain.Farm{
		ID:             uuid.NewString(),
		OwnerID:        ownerID,
		Code:           code,
		Name:           in.Name,
		District:       in.District,
		Village:        in.Village,
		LandSizeAcres:  in.LandSizeAcres,
		SoilType:       in.SoilType,
		IrrigationType: in.IrrigationType,
		Crops:          in.Crops,
		CreatedAt:      time.Now(),
	}

	if err := s.repo.CreateFarm(ctx, farm); err != nil {
		return domain.Farm{}, err
	}
	return farm, nil
}

// Get returns a farm after checking the caller owns it
func (s *FarmService) Get(ctx context.Context, userID, farmID string) (domain.Farm, error) {
	farm, err := s.repo.GetFarm(ctx, farmID)
	if err != nil {
		return domain.Farm{}, err
	}
	if farm.OwnerID != userID {
		return domain.Farm{}, domain.ErrForbidden
	}
	return farm, nil
}

// List returns all farms belonging to the user
func (s *FarmService) List(ctx context.Context, userID string) ([]domain.Farm, error) {
	return s.repo.ListFarmsByOwner(ctx, userID)
}
