package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/farmsight/backend/internal/domain"
	"github.com/farmsight/backend/internal/service"
)

// Scheduler periodically persists a weather record for every farm.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	dashboardSvc *service.DashboardService
	repo         domain.DataRepository
	interval     time.Duration
}

// New creates a new Scheduler.
func New(interval time.Duration, dashboardSvc *service.DashboardService, repo domain.DataRepository) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.UTC),
		dashboardSvc: dashboardSvc,
		repo:         repo,
		interval:     interval,
	}
}

// Start schedules the periodic refresh job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 30
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.refreshAll)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// refreshAll fetches and stores a snapshot for every farm. Farms are listed
// fresh on each run so newly registered farms are picked up without a restart.
func (s *Scheduler) refreshAll() {
	log.Println("scheduler: running weather refresh job")

	listCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	farms, err := s.repo.ListFarms(listCtx)
	cancel()
	if err != nil {
		log.Printf("scheduler: failed to list farms: %v", err)
		return
	}
	if len(farms) == 0 {
		log.Println("scheduler: no farms registered; nothing to refresh")
		return
	}

	var wg sync.WaitGroup
	for _, farm := range farms {
		farm := farm
		wg.Add(1)
		go func() {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := s.dashboardSvc.RefreshFarm(ctx, farm); err != nil {
				log.Printf("scheduler: refresh failed for farm %s: %v", farm.ID, err)
			}
		}()
	}
	wg.Wait()
	log.Println("scheduler: completed weather refresh job")
}
