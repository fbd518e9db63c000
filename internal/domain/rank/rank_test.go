package rank_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/domain/rank"
)

func TestTable_TierFor(t *testing.T) {
	Convey("Given the default tier table", t, func() {
		table, err := rank.NewTable(rank.DefaultThresholds())
		So(err, ShouldBeNil)

		Convey("When looking up point totals around the boundaries", func() {
			Convey("Then totals map to the highest tier at or below them", func() {
				So(table.TierFor(0), ShouldEqual, "Newbie")
				So(table.TierFor(99), ShouldEqual, "Newbie")
				So(table.TierFor(100), ShouldEqual, "Apprentice")
				So(table.TierFor(499), ShouldEqual, "Apprentice")
				So(table.TierFor(500), ShouldEqual, "Hacker")
				So(table.TierFor(1500), ShouldEqual, "Expert")
				So(table.TierFor(3000), ShouldEqual, "Elite")
				So(table.TierFor(5000), ShouldEqual, "Legend")
				So(table.TierFor(999999), ShouldEqual, "Legend")
			})

			Convey("And a negative total maps to the lowest tier", func() {
				So(table.TierFor(-5), ShouldEqual, "Newbie")
			})
		})

		Convey("When points only increase", func() {
			Convey("Then the tier never goes backwards", func() {
				order := map[string]int{
					"Newbie": 0, "Apprentice": 1, "Hacker": 2,
					"Expert": 3, "Elite": 4, "Legend": 5,
				}
				prev := -1
				for points := 0; points <= 6000; points += 50 {
					cur := order[table.TierFor(points)]
					So(cur, ShouldBeGreaterThanOrEqualTo, prev)
					prev = cur
				}
			})
		})
	})
}

func TestNewTable_Validation(t *testing.T) {
	Convey("Given threshold rows", t, func() {
		Convey("When the rows are empty", func() {
			_, err := rank.NewTable(nil)
			So(err, ShouldWrap, rank.ErrInvalidTable)
		})

		Convey("When the lowest tier does not start at zero", func() {
			_, err := rank.NewTable([]rank.Threshold{{Tier: "Bronze", MinPoints: 10}})
			So(err, ShouldWrap, rank.ErrInvalidTable)
		})

		Convey("When two rows share a threshold", func() {
			_, err := rank.NewTable([]rank.Threshold{
				{Tier: "Bronze", MinPoints: 0},
				{Tier: "Silver", MinPoints: 100},
				{Tier: "Gold", MinPoints: 100},
			})
			So(err, ShouldWrap, rank.ErrInvalidTable)
		})

		Convey("When two rows share a tier name", func() {
			_, err := rank.NewTable([]rank.Threshold{
				{Tier: "Bronze", MinPoints: 0},
				{Tier: "Bronze", MinPoints: 100},
			})
			So(err, ShouldWrap, rank.ErrInvalidTable)
		})

		Convey("When a tier name is empty", func() {
			_, err := rank.NewTable([]rank.Threshold{{Tier: "", MinPoints: 0}})
			So(err, ShouldWrap, rank.ErrInvalidTable)
		})

		Convey("When rows arrive unsorted", func() {
			table, err := rank.NewTable([]rank.Threshold{
				{Tier: "Gold", MinPoints: 200},
				{Tier: "Bronze", MinPoints: 0},
				{Tier: "Silver", MinPoints: 100},
			})

			Convey("Then the table sorts them ascending", func() {
				So(err, ShouldBeNil)
				rows := table.Thresholds()
				So(rows[0].Tier, ShouldEqual, "Bronze")
				So(rows[1].Tier, ShouldEqual, "Silver")
				So(rows[2].Tier, ShouldEqual, "Gold")
			})
		})
	})
}

func TestNewTableFromMap(t *testing.T) {
	Convey("Given a configuration map of tier thresholds", t, func() {
		table, err := rank.NewTableFromMap(map[string]int{
			"Rookie": 0,
			"Pro":    250,
		})

		Convey("Then the table behaves like one built from rows", func() {
			So(err, ShouldBeNil)
			So(table.TierFor(249), ShouldEqual, "Rookie")
			So(table.TierFor(250), ShouldEqual, "Pro")
		})
	})
}
