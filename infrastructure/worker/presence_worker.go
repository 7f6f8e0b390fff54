package worker

import (
	"context"
	"sync"
	"time"

	"github.com/tablostudio/tablo-api/domain/repositories"
	"github.com/tablostudio/tablo-api/infrastructure/redis"
	"github.com/tablostudio/tablo-api/pkg/logger"
)

// PresenceWorker drains guest heartbeat timestamps from Redis and persists
// them as last_activity_at on the session rows. Heartbeats are write-heavy
// and tolerant of small delays, so they go through the cache instead of
// hitting the database on every request.
type PresenceWorker struct {
	redisClient *redis.RedisClient
	sessionRepo repositories.GuestSessionRepository

	// Worker control
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	isRunning bool
	mu        sync.Mutex
	triggerCh chan struct{}

	pollInterval time.Duration
}

// NewPresenceWorker creates a new presence worker
func NewPresenceWorker(redisClient *redis.RedisClient, sessionRepo repositories.GuestSessionRepository) *PresenceWorker {
	return &PresenceWorker{
		redisClient:  redisClient,
		sessionRepo:  sessionRepo,
		triggerCh:    make(chan struct{}, 1),
		pollInterval: 30 * time.Second,
	}
}

// TriggerFlush requests an immediate flush outside the poll interval
func (w *PresenceWorker) TriggerFlush() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
		// Already triggered
	}
}

// Start starts the presence worker
func (w *PresenceWorker) Start() {
	w.mu.Lock()
	if w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = true
	w.ctx, w.cancel = context.WithCancel(context.Background())
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run()

	logger.Scheduler("presence_worker_started", "Presence worker started", nil)
}

// Stop stops the presence worker gracefully, flushing once more on the way out
func (w *PresenceWorker) Stop() {
	w.mu.Lock()
	if !w.isRunning {
		w.mu.Unlock()
		return
	}
	w.isRunning = false
	w.cancel()
	w.mu.Unlock()

	w.wg.Wait()
	logger.Scheduler("presence_worker_stopped", "Presence worker stopped", nil)
}

func (w *PresenceWorker) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.flush(context.Background())
			return
		case <-ticker.C:
			w.flush(w.ctx)
		case <-w.triggerCh:
			w.flush(w.ctx)
		}
	}
}

func (w *PresenceWorker) flush(ctx context.Context) {
	lastSeen, err := w.redisClient.DrainLastSeen(ctx)
	if err != nil {
		logger.SchedulerError("presence_drain_failed", "Failed to drain heartbeats", err, nil)
		return
	}
	if len(lastSeen) == 0 {
		return
	}

	flushed := 0
	for sessionID, at := range lastSeen {
		if err := w.sessionRepo.UpdateLastActivity(ctx, sessionID, at); err != nil {
			logger.SchedulerError("presence_flush_failed", "Failed to persist last activity", err, map[string]interface{}{
				"session_id": sessionID.String(),
			})
			continue
		}
		flushed++
	}

	logger.Scheduler("presence_flushed", "Heartbeats persisted", map[string]interface{}{
		"count": flushed,
	})
}
