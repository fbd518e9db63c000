package repository_test

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/adapters/repository"
)

func TestTreapStore_Ordering(t *testing.T) {
	Convey("Given a treap store with a few players", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

		So(store.Upsert(ctx, "alice", 500, t0), ShouldBeNil)
		So(store.Upsert(ctx, "bob", 300, t0.Add(time.Minute)), ShouldBeNil)
		So(store.Upsert(ctx, "carol", 800, t0.Add(2*time.Minute)), ShouldBeNil)

		Convey("When reading the first page", func() {
			page, err := store.Page(ctx, 0, 10)

			Convey("Then players order by points descending", func() {
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 3)
				So(page[0].PlayerID, ShouldEqual, "carol")
				So(page[1].PlayerID, ShouldEqual, "alice")
				So(page[2].PlayerID, ShouldEqual, "bob")
			})

			Convey("And ranks are dense ordinals starting at one", func() {
				So(page[0].Rank, ShouldEqual, 1)
				So(page[1].Rank, ShouldEqual, 2)
				So(page[2].Rank, ShouldEqual, 3)
			})
		})

		Convey("When asking for a single player's rank", func() {
			entry, err := store.RankOf(ctx, "alice")

			Convey("Then the rank matches the page position", func() {
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
				So(entry.TotalPoints, ShouldEqual, 500)
			})
		})

		Convey("When asking for an unknown player", func() {
			_, err := store.RankOf(ctx, "nobody")

			Convey("Then the lookup reports not found", func() {
				So(err, ShouldWrap, repository.ErrNotFound)
			})
		})
	})
}

func TestTreapStore_TieBreak(t *testing.T) {
	Convey("Given two players at the same point total", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

		// bob reached 500 after alice
		So(store.Upsert(ctx, "alice", 500, t0), ShouldBeNil)
		So(store.Upsert(ctx, "bob", 500, t0.Add(time.Second)), ShouldBeNil)

		Convey("Then the earlier arrival ranks higher", func() {
			a, err := store.RankOf(ctx, "alice")
			So(err, ShouldBeNil)
			b, err := store.RankOf(ctx, "bob")
			So(err, ShouldBeNil)
			So(a.Rank, ShouldBeLessThan, b.Rank)
		})

		Convey("And identical totals and instants fall back to player id", func() {
			So(store.Upsert(ctx, "zed", 500, t0), ShouldBeNil)
			So(store.Upsert(ctx, "amy", 500, t0), ShouldBeNil)

			amy, err := store.RankOf(ctx, "amy")
			So(err, ShouldBeNil)
			zed, err := store.RankOf(ctx, "zed")
			So(err, ShouldBeNil)
			So(amy.Rank, ShouldBeLessThan, zed.Rank)
		})
	})
}

func TestTreapStore_Upsert(t *testing.T) {
	Convey("Given a player already on the board", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

		So(store.Upsert(ctx, "alice", 100, t0), ShouldBeNil)
		So(store.Upsert(ctx, "bob", 200, t0), ShouldBeNil)

		Convey("When their total increases", func() {
			So(store.Upsert(ctx, "alice", 300, t0.Add(time.Minute)), ShouldBeNil)

			Convey("Then the player moves without duplicating", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				entry, err := store.RankOf(ctx, "alice")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 1)
				So(entry.TotalPoints, ShouldEqual, 300)
			})
		})

		Convey("When the same total is written again", func() {
			So(store.Upsert(ctx, "alice", 100, t0), ShouldBeNil)

			Convey("Then the board is unchanged", func() {
				So(store.Count(ctx), ShouldEqual, 2)
				entry, err := store.RankOf(ctx, "alice")
				So(err, ShouldBeNil)
				So(entry.Rank, ShouldEqual, 2)
			})
		})
	})
}

func TestTreapStore_Paging(t *testing.T) {
	Convey("Given a board of fifty players", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

		for i := 0; i < 50; i++ {
			id := fmt.Sprintf("player-%02d", i)
			So(store.Upsert(ctx, id, 1000-i*10, t0), ShouldBeNil)
		}

		Convey("When paging through the middle", func() {
			page, err := store.Page(ctx, 20, 10)

			Convey("Then offset and limit bound the slice", func() {
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 10)
				So(page[0].Rank, ShouldEqual, 21)
				So(page[0].PlayerID, ShouldEqual, "player-20")
				So(page[9].Rank, ShouldEqual, 30)
			})
		})

		Convey("When the offset is past the end", func() {
			page, err := store.Page(ctx, 100, 10)

			Convey("Then the page is empty, not an error", func() {
				So(err, ShouldBeNil)
				So(page, ShouldBeEmpty)
			})
		})

		Convey("When the page spans the end", func() {
			page, err := store.Page(ctx, 45, 10)

			Convey("Then the page is truncated", func() {
				So(err, ShouldBeNil)
				So(page, ShouldHaveLength, 5)
				So(page[4].Rank, ShouldEqual, 50)
			})
		})

		Convey("When the page arguments are invalid", func() {
			_, err := store.Page(ctx, -1, 10)
			So(err, ShouldWrap, repository.ErrInvalidPage)

			_, err = store.Page(ctx, 0, 0)
			So(err, ShouldWrap, repository.ErrInvalidPage)
		})
	})
}

func TestTreapStore_RandomizedConsistency(t *testing.T) {
	Convey("Given a board built from random upserts", t, func() {
		ctx := context.Background()
		store := repository.NewTreapStore(ctx)
		t0 := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

		const players = 200
		for i := 0; i < players; i++ {
			id := fmt.Sprintf("p-%03d", i)
			So(store.Upsert(ctx, id, rand.IntN(1000), t0.Add(time.Duration(rand.IntN(3600))*time.Second)), ShouldBeNil)
		}
		// Move a subset to fresh totals.
		for i := 0; i < players; i += 3 {
			id := fmt.Sprintf("p-%03d", i)
			So(store.Upsert(ctx, id, rand.IntN(1000), t0.Add(time.Duration(rand.IntN(3600))*time.Second)), ShouldBeNil)
		}

		Convey("Then a full page walk agrees with per-player ranks", func() {
			So(store.Count(ctx), ShouldEqual, players)

			seen := 0
			for offset := 0; offset < players; offset += 37 {
				page, err := store.Page(ctx, offset, 37)
				So(err, ShouldBeNil)
				for i, entry := range page {
					So(entry.Rank, ShouldEqual, offset+i+1)
					direct, err := store.RankOf(ctx, entry.PlayerID)
					So(err, ShouldBeNil)
					So(direct.Rank, ShouldEqual, entry.Rank)
					seen++
				}
			}
			So(seen, ShouldEqual, players)
		})

		Convey("And totals never increase as rank worsens", func() {
			page, err := store.Page(ctx, 0, 200)
			_ = err
			So(page, ShouldHaveLength, players)
			for i := 1; i < len(page); i++ {
				So(page[i].TotalPoints, ShouldBeLessThanOrEqualTo, page[i-1].TotalPoints)
			}
		})
	})
}
