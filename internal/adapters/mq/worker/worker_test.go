package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/adapters/mq/queue"
	"github.com/mightbeian/HacMan/internal/adapters/mq/worker"
	"github.com/mightbeian/HacMan/pkg/logger"
)

func init() {
	// Initialize logging for tests
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// recordingRefresher counts refreshes per player.
type recordingRefresher struct {
	mu      sync.Mutex
	seen    map[string]int
	failFor string
}

func newRecordingRefresher() *recordingRefresher {
	return &recordingRefresher{seen: make(map[string]int)}
}

func (r *recordingRefresher) RefreshPlayer(ctx context.Context, playerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen[playerID]++
	if playerID == r.failFor {
		return errors.New("refresh failed")
	}
	return nil
}

func (r *recordingRefresher) count(playerID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seen[playerID]
}

func (r *recordingRefresher) setFailFor(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failFor = playerID
}

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(2 * time.Millisecond)
	}
	return false
}

func TestPool(t *testing.T) {
	Convey("Given a running worker pool", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(16))
		refresher := newRecordingRefresher()

		pool := worker.NewPool(3, q, refresher)
		pool.Start(ctx)
		defer pool.Stop()

		Convey("Then the pool reports its size", func() {
			So(pool.Size(), ShouldEqual, 3)
		})

		Convey("When jobs are enqueued", func() {
			So(q.Enqueue(ctx, queue.Job{PlayerID: "alice"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{PlayerID: "bob"}), ShouldBeTrue)

			Convey("Then each player gets refreshed", func() {
				So(waitFor(func() bool {
					return refresher.count("alice") > 0 && refresher.count("bob") > 0
				}), ShouldBeTrue)
			})
		})

		Convey("When a refresh fails", func() {
			refresher.setFailFor("alice")
			So(q.Enqueue(ctx, queue.Job{PlayerID: "alice"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{PlayerID: "bob"}), ShouldBeTrue)

			Convey("Then the pool keeps processing other jobs", func() {
				So(waitFor(func() bool { return refresher.count("bob") > 0 }), ShouldBeTrue)
			})
		})
	})

	Convey("Given a pool with a non-positive worker count", t, func() {
		q := queue.NewInMemoryQueue()
		pool := worker.NewPool(0, q, newRecordingRefresher())

		Convey("Then it falls back to a CPU-based default", func() {
			So(pool.Size(), ShouldBeGreaterThan, 0)
		})
	})
}

func TestWorker_Shutdown(t *testing.T) {
	Convey("Given a single running worker", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewInMemoryQueue(queue.WithCapacity(4))
		w := worker.NewWorker(q, newRecordingRefresher(), worker.WithName("worker-test"))

		done := make(chan struct{})
		go func() {
			w.Run(ctx)
			close(done)
		}()

		Convey("When shutdown is requested", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			Convey("Then the run loop exits cleanly", func() {
				So(err, ShouldBeNil)
				select {
				case <-done:
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})
}
