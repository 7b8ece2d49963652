package workers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ReviewIndex is the review-side view the sweeper needs.
type ReviewIndex interface {
	CampgroundIDs(ctx context.Context) ([]primitive.ObjectID, error)
	DeleteByCampground(ctx context.Context, campgroundID primitive.ObjectID) (int64, error)
}

// CampgroundIndex reports which campgrounds still exist.
type CampgroundIndex interface {
	ExistingIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]bool, error)
}

// OrphanSweeper is a background worker that deletes reviews whose campground
// no longer exists. Those appear when a campground delete ran without a
// transaction and stopped between its two writes.
type OrphanSweeper struct {
	reviews     ReviewIndex
	campgrounds CampgroundIndex
	log         *zap.Logger
	interval    time.Duration
	passTimeout time.Duration

	stopCh   chan struct{}
	wg       sync.WaitGroup
	startOne sync.Once
	stopOne  sync.Once
}

// NewOrphanSweeper creates the worker. An interval of zero or less disables
// it: Start and Stop become no-ops.
func NewOrphanSweeper(reviews ReviewIndex, campgrounds CampgroundIndex, logger *zap.Logger, interval time.Duration) *OrphanSweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrphanSweeper{
		reviews:     reviews,
		campgrounds: campgrounds,
		log:         logger,
		interval:    interval,
		passTimeout: 30 * time.Second,
		stopCh:      make(chan struct{}),
	}
}

// Enabled reports whether Start will launch the loop.
func (w *OrphanSweeper) Enabled() bool { return w.interval > 0 }

// Start begins the background sweep loop.
func (w *OrphanSweeper) Start() {
	if !w.Enabled() {
		w.log.Info("orphan review sweeper disabled")
		return
	}
	w.startOne.Do(func() {
		w.wg.Add(1)
		go w.run()
		w.log.Info("orphan review sweeper started", zap.Duration("interval", w.interval))
	})
}

// Stop signals the worker to stop and waits for an in-flight pass.
func (w *OrphanSweeper) Stop() {
	w.stopOne.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		if w.Enabled() {
			w.log.Info("orphan review sweeper stopped")
		}
	})
}

func (w *OrphanSweeper) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), w.passTimeout)
			if _, err := w.Sweep(ctx); err != nil {
				w.log.Error("orphan review sweep failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Sweep runs one pass and returns how many reviews it deleted.
func (w *OrphanSweeper) Sweep(ctx context.Context) (int64, error) {
	referenced, err := w.reviews.CampgroundIDs(ctx)
	if err != nil {
		return 0, err
	}
	if len(referenced) == 0 {
		return 0, nil
	}

	existing, err := w.campgrounds.ExistingIDs(ctx, referenced)
	if err != nil {
		return 0, err
	}

	var total int64
	for _, id := range referenced {
		if existing[id] {
			continue
		}
		n, err := w.reviews.DeleteByCampground(ctx, id)
		if err != nil {
			return total, err
		}
		total += n
		w.log.Info("deleted orphan reviews",
			zap.String("campground_id", id.Hex()),
			zap.Int64("count", n))
	}
	return total, nil
}
