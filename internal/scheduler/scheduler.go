package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/Pinoccchio/InCloud-WEB-sub003/db"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/models"
	"github.com/Pinoccchio/InCloud-WEB-sub003/internal/services"
)

const (
	generationTimeout = 2 * time.Minute
	retentionInterval = 24 * time.Hour
)

// Scheduler runs the alert generation cycle for every active branch on a
// fixed interval, plus a daily retention sweep over resolved notifications.
type Scheduler struct {
	generator *services.AlertGenerator
	store     *services.NotificationStore
	interval  time.Duration
	retention time.Duration

	branches map[string]*BranchJob // branch ID -> job
	mu       sync.RWMutex
	ctx      context.Context
	cancel   context.CancelFunc
}

type BranchJob struct {
	branchID string
	ticker   *time.Ticker
	cancel   context.CancelFunc
}

func NewScheduler(generator *services.AlertGenerator, store *services.NotificationStore, interval, retention time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		generator: generator,
		store:     store,
		interval:  interval,
		retention: retention,
		branches:  make(map[string]*BranchJob),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start loads all active branches and begins scheduling
func (s *Scheduler) Start() error {
	log.Println("Starting alert scheduler...")

	if s.interval <= 0 {
		log.Println("Generation interval disabled, scheduler will only run retention")
		go s.runRetention(s.ctx)
		return nil
	}

	var branchList []models.Branch
	if err := db.DB.Where("is_active = ?", true).Find(&branchList).Error; err != nil {
		return err
	}

	for _, branch := range branchList {
		s.AddBranch(branch.ID)
	}

	go s.runRetention(s.ctx)

	log.Printf("Alert scheduler started with %d branches", len(branchList))
	return nil
}

// Stop gracefully shuts down all branch jobs
func (s *Scheduler) Stop() {
	log.Println("Stopping alert scheduler...")
	s.cancel()

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, job := range s.branches {
		job.ticker.Stop()
		job.cancel()
	}

	s.branches = make(map[string]*BranchJob)
	log.Println("Alert scheduler stopped")
}

// AddBranch starts scheduled generation for a branch, replacing any existing job
func (s *Scheduler) AddBranch(branchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existingJob, exists := s.branches[branchID]; exists {
		existingJob.ticker.Stop()
		existingJob.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	ticker := time.NewTicker(s.interval)

	job := &BranchJob{
		branchID: branchID,
		ticker:   ticker,
		cancel:   jobCancel,
	}

	s.branches[branchID] = job

	// Immediate run, then the regular interval
	go func() {
		s.runGeneration(branchID)
		s.runBranch(jobCtx, job)
	}()

	log.Printf("Scheduled alert generation for branch %s with immediate run", branchID)
}

// RemoveBranch stops scheduled generation for a branch
func (s *Scheduler) RemoveBranch(branchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, exists := s.branches[branchID]; exists {
		job.ticker.Stop()
		job.cancel()
		delete(s.branches, branchID)
		log.Printf("Removed branch %s from alert scheduler", branchID)
	}
}

func (s *Scheduler) runBranch(ctx context.Context, job *BranchJob) {
	defer job.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-job.ticker.C:
			s.runGeneration(job.branchID)
		}
	}
}

func (s *Scheduler) runGeneration(branchID string) {
	ctx, cancel := context.WithTimeout(s.ctx, generationTimeout)
	defer cancel()

	result, err := s.generator.Generate(ctx, branchID)

	if err != nil {
		log.Printf("Scheduled generation failed for branch %s: %v", branchID, err)
		return
	}

	if result.TotalGenerated > 0 {
		log.Printf("Generated %d alerts for branch %s (%d low stock, %d expiration)",
			result.TotalGenerated, branchID, result.LowStockAlerts, result.ExpirationAlerts)
	}
}

func (s *Scheduler) runRetention(ctx context.Context) {
	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.store.PurgeResolved(ctx, s.retention)

			if err != nil {
				log.Printf("Retention sweep failed: %v", err)
				continue
			}

			if purged > 0 {
				log.Printf("Retention sweep purged %d resolved notifications", purged)
			}
		}
	}
}

// GetStatus returns current scheduler status
func (s *Scheduler) GetStatus() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"scheduled_branches": len(s.branches),
		"running":            s.ctx.Err() == nil,
	}
}

// Global scheduler instance
var globalScheduler *Scheduler

// Initialize creates and starts the global scheduler
func Initialize(generator *services.AlertGenerator, store *services.NotificationStore, interval, retention time.Duration) error {
	globalScheduler = NewScheduler(generator, store, interval, retention)
	return globalScheduler.Start()
}

// Shutdown stops the global scheduler
func Shutdown() {
	if globalScheduler != nil {
		globalScheduler.Stop()
	}
}

// AddBranch adds a branch to the global scheduler
func AddBranch(branchID string) {
	if globalScheduler != nil {
		globalScheduler.AddBranch(branchID)
	}
}

// RemoveBranch removes a branch from the global scheduler
func RemoveBranch(branchID string) {
	if globalScheduler != nil {
		globalScheduler.RemoveBranch(branchID)
	}
}
