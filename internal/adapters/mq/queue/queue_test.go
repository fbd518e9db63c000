package queue_test

import (
	"context"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/adapters/mq/queue"
)

func TestInMemoryQueue(t *testing.T) {
	Convey("Given an in-memory refresh queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		ctx := context.Background()

		Convey("When jobs are enqueued within capacity", func() {
			So(q.Enqueue(ctx, queue.Job{PlayerID: "alice"}), ShouldBeTrue)
			So(q.Enqueue(ctx, queue.Job{PlayerID: "bob"}), ShouldBeTrue)

			Convey("Then the length reflects pending jobs", func() {
				So(q.Len(ctx), ShouldEqual, 2)
			})

			Convey("And a further enqueue is dropped under backpressure", func() {
				So(q.Enqueue(ctx, queue.Job{PlayerID: "carol"}), ShouldBeFalse)
			})
		})

		Convey("When jobs are dequeued", func() {
			So(q.Enqueue(ctx, queue.Job{PlayerID: "alice"}), ShouldBeTrue)

			jobs := q.Dequeue(ctx)

			Convey("Then they arrive in order on the channel", func() {
				select {
				case j := <-jobs:
					So(j.PlayerID, ShouldEqual, "alice")
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})

		Convey("When the queue is closed", func() {
			So(q.Close(), ShouldBeNil)

			Convey("Then it reports closed and rejects new jobs", func() {
				So(q.IsClosed(), ShouldBeTrue)
				So(q.Enqueue(ctx, queue.Job{PlayerID: "alice"}), ShouldBeFalse)
			})

			Convey("And closing twice is harmless", func() {
				So(q.Close(), ShouldBeNil)
			})

			Convey("And the dequeue channel drains and closes", func() {
				jobs := q.Dequeue(ctx)
				select {
				case _, ok := <-jobs:
					So(ok, ShouldBeFalse)
				case <-time.After(time.Second):
					So("timeout", ShouldBeEmpty)
				}
			})
		})
	})
}
