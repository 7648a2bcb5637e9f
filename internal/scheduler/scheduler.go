package scheduler

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/collabdeck-dev/collabdeck/db"
	"github.com/collabdeck-dev/collabdeck/internal/handlers"
	"github.com/collabdeck-dev/collabdeck/internal/logging"
	"github.com/collabdeck-dev/collabdeck/internal/models"
	"github.com/collabdeck-dev/collabdeck/internal/types"
	"github.com/gin-gonic/gin"
)

const defaultSweepInterval = 5 * time.Minute

// Sweeper periodically flags tasks and milestones whose due date has
// passed without the work being finished.
type Sweeper struct {
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
}

func NewSweeper() *Sweeper {
	interval := defaultSweepInterval

	if raw := os.Getenv("SWEEP_INTERVAL_SECONDS"); raw != "" {
		if seconds, err := strconv.Atoi(raw); err == nil && seconds > 0 {
			interval = time.Duration(seconds) * time.Second
		} else {
			logging.Logger.Warnf("Invalid SWEEP_INTERVAL_SECONDS %q, using default", raw)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Sweeper{
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start runs an immediate sweep and then keeps sweeping on the ticker
// until Stop is called.
func (s *Sweeper) Start() {
	logging.Logger.Infof("Starting overdue sweeper with interval %v", s.interval)

	go func() {
		s.Sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.cancel()
	logging.Logger.Info("Overdue sweeper stopped")
}

// Sweep marks past-due unfinished tasks and milestones as overdue and
// broadcasts each transition to the project's activity feed.
func (s *Sweeper) Sweep() {
	now := time.Now()

	var tasks []models.Task

	err := db.DB.Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status <> ?", types.TaskDone).
		Where("overdue = ?", false).
		Find(&tasks).Error

	if err != nil {
		logging.Logger.Errorf("Overdue task sweep failed: %v", err)
		return
	}

	for _, task := range tasks {
		if err := db.DB.Model(&task).Update("overdue", true).Error; err != nil {
			logging.Logger.Errorf("Failed to flag task %d overdue: %v", task.ID, err)
			continue
		}

		handlers.NotifyProject(task.ProjectID, "task_overdue", gin.H{"task_id": task.ID, "title": task.Title})
	}

	var milestones []models.Milestone

	err = db.DB.Where("due_date IS NOT NULL AND due_date < ?", now).
		Where("status <> ?", types.MilestoneCompleted).
		Where("overdue = ?", false).
		Find(&milestones).Error

	if err != nil {
		logging.Logger.Errorf("Overdue milestone sweep failed: %v", err)
		return
	}

	for _, milestone := range milestones {
		if err := db.DB.Model(&milestone).Update("overdue", true).Error; err != nil {
			logging.Logger.Errorf("Failed to flag milestone %d overdue: %v", milestone.ID, err)
			continue
		}

		handlers.NotifyProject(milestone.ProjectID, "milestone_overdue", gin.H{"milestone_id": milestone.ID, "title": milestone.Title})
	}

	if len(tasks) > 0 || len(milestones) > 0 {
		logging.Logger.Infof("Sweep flagged %d tasks and %d milestones overdue", len(tasks), len(milestones))
	}
}

// Global sweeper instance
var globalSweeper *Sweeper

// Initialize creates and starts the global sweeper
func Initialize() {
	globalSweeper = NewSweeper()
	globalSweeper.Start()
}

// Shutdown stops the global sweeper
func Shutdown() {
	if globalSweeper != nil {
		globalSweeper.Stop()
	}
}
