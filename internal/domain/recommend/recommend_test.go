package recommend_test

import (
	"context"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/domain/model"
	"github.com/mightbeian/HacMan/internal/domain/recommend"
	"github.com/mightbeian/HacMan/internal/domain/types"
)

// fakeSnapshot is a fixed catalog view for engine tests.
type fakeSnapshot struct {
	version uint64
	metas   []model.ChallengeMeta
}

func (f *fakeSnapshot) Version() uint64            { return f.version }
func (f *fakeSnapshot) All() []model.ChallengeMeta { return f.metas }

func profileWith(stats map[model.Category]types.CategoryStat) types.PlayerProfile {
	return types.PlayerProfile{
		PlayerID:      "alice",
		CategoryStats: stats,
	}
}

func TestEngine_Recommend(t *testing.T) {
	snap := &fakeSnapshot{
		version: 1,
		metas: []model.ChallengeMeta{
			{ID: "web-easy", Title: "Web Easy", Category: model.CategoryWeb, Difficulty: model.DifficultyEasy, BasePoints: 50},
			{ID: "web-medium", Title: "Web Medium", Category: model.CategoryWeb, Difficulty: model.DifficultyMedium, BasePoints: 100},
			{ID: "web-hard", Title: "Web Hard", Category: model.CategoryWeb, Difficulty: model.DifficultyHard, BasePoints: 300},
			{ID: "crypto-easy", Title: "Crypto Easy", Category: model.CategoryCrypto, Difficulty: model.DifficultyEasy, BasePoints: 50},
		},
	}

	Convey("Given an engine with default weights", t, func() {
		engine, err := recommend.NewEngine()
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("When the player has solved nothing", func() {
			profile := profileWith(nil)
			recs := engine.Recommend(ctx, profile, nil, snap, 0, 4)

			Convey("Then every catalog challenge is a candidate", func() {
				So(recs, ShouldHaveLength, 4)
			})

			Convey("And cold-start reasons suggest building fundamentals", func() {
				for _, rec := range recs {
					So(rec.Reason, ShouldStartWith, "Build ")
				}
			})

			Convey("And confidences stay within [0,1]", func() {
				for _, rec := range recs {
					So(rec.Confidence, ShouldBeBetweenOrEqual, 0, 1)
				}
			})
		})

		Convey("When the player already solved some challenges", func() {
			profile := profileWith(map[model.Category]types.CategoryStat{
				model.CategoryWeb: {Solved: 1, Total: 3, Accuracy: 1.0 / 3.0},
			})
			solved := map[string]struct{}{"web-easy": {}}
			recs := engine.Recommend(ctx, profile, solved, snap, 1, 4)

			Convey("Then solved challenges never reappear", func() {
				for _, rec := range recs {
					So(rec.ChallengeID, ShouldNotEqual, "web-easy")
				}
				So(recs, ShouldHaveLength, 3)
			})
		})

		Convey("When the player has solved the whole catalog", func() {
			solved := map[string]struct{}{
				"web-easy": {}, "web-medium": {}, "web-hard": {}, "crypto-easy": {},
			}
			recs := engine.Recommend(ctx, profileWith(nil), solved, snap, 4, 4)

			Convey("Then the list is empty, not an error", func() {
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the same state is scored twice", func() {
			profile := profileWith(map[model.Category]types.CategoryStat{
				model.CategoryWeb: {Solved: 1, Total: 3, Accuracy: 1.0 / 3.0},
			})
			solved := map[string]struct{}{"web-easy": {}}

			first := engine.Recommend(ctx, profile, solved, snap, 1, 4)
			second := engine.Recommend(ctx, profile, solved, snap, 1, 4)

			Convey("Then the output is identical", func() {
				So(second, ShouldResemble, first)
			})
		})

		Convey("When k exceeds the configured maximum", func() {
			recs := engine.Recommend(ctx, profileWith(nil), nil, snap, 0, 99)

			Convey("Then the engine falls back to its default k", func() {
				So(len(recs), ShouldBeLessThanOrEqualTo, engine.DefaultK())
			})
		})

		Convey("When the estimated time is attached", func() {
			recs := engine.Recommend(ctx, profileWith(nil), nil, snap, 0, 4)

			Convey("Then easy challenges get the short band", func() {
				for _, rec := range recs {
					if rec.Difficulty == model.DifficultyEasy {
						So(rec.EstimatedTime, ShouldResemble, types.TimeRange{LowMinutes: 10, HighMinutes: 20})
					}
				}
			})
		})
	})
}

func TestEngine_DifficultyProgression(t *testing.T) {
	snap := &fakeSnapshot{
		version: 1,
		metas: []model.ChallengeMeta{
			{ID: "web-easy", Category: model.CategoryWeb, Difficulty: model.DifficultyEasy, BasePoints: 50},
			{ID: "web-medium", Category: model.CategoryWeb, Difficulty: model.DifficultyMedium, BasePoints: 50},
			{ID: "web-hard", Category: model.CategoryWeb, Difficulty: model.DifficultyHard, BasePoints: 50},
		},
	}

	Convey("Given a player demonstrating medium-level web proficiency", t, func() {
		engine, err := recommend.NewEngine()
		So(err, ShouldBeNil)

		profile := profileWith(map[model.Category]types.CategoryStat{
			model.CategoryWeb: {Solved: 5, Total: 10, Accuracy: 0.5},
		})
		recs := engine.Recommend(context.Background(), profile, nil, snap, 5, 3)

		Convey("Then the hard challenge is the preferred stretch", func() {
			So(recs, ShouldHaveLength, 3)
			So(recs[0].ChallengeID, ShouldEqual, "web-hard")
		})

		Convey("And the easy challenge trails the list", func() {
			So(recs[2].ChallengeID, ShouldEqual, "web-easy")
		})
	})
}

func TestEngine_CacheInvalidation(t *testing.T) {
	Convey("Given a cached recommendation list", t, func() {
		engine, err := recommend.NewEngine()
		So(err, ShouldBeNil)
		ctx := context.Background()

		snapV1 := &fakeSnapshot{version: 1, metas: []model.ChallengeMeta{
			{ID: "a", Category: model.CategoryWeb, Difficulty: model.DifficultyEasy, BasePoints: 50},
		}}
		profile := profileWith(nil)

		before := engine.Recommend(ctx, profile, nil, snapV1, 0, 3)
		So(before, ShouldHaveLength, 1)

		Convey("When the catalog version advances", func() {
			snapV2 := &fakeSnapshot{version: 2, metas: []model.ChallengeMeta{
				{ID: "a", Category: model.CategoryWeb, Difficulty: model.DifficultyEasy, BasePoints: 50},
				{ID: "b", Category: model.CategoryCrypto, Difficulty: model.DifficultyEasy, BasePoints: 50},
			}}

			Convey("Then the next read recomputes against the new snapshot", func() {
				after := engine.Recommend(ctx, profile, nil, snapV2, 0, 3)
				So(after, ShouldHaveLength, 2)
			})
		})

		Convey("When the player's ledger version advances", func() {
			after := engine.Recommend(ctx, profile, map[string]struct{}{"a": {}}, snapV1, 1, 3)

			Convey("Then the stale cached list is not served", func() {
				So(after, ShouldBeEmpty)
			})
		})
	})
}

func TestNewEngine_Validation(t *testing.T) {
	Convey("Given engine configuration options", t, func() {
		Convey("When the weights do not sum to one", func() {
			_, err := recommend.NewEngine(recommend.WithWeights(recommend.Weights{
				ProficiencyGap:        0.9,
				DifficultySuitability: 0.3,
			}))
			So(err, ShouldWrap, recommend.ErrInvalidConfig)
		})

		Convey("When a weight is negative", func() {
			_, err := recommend.NewEngine(recommend.WithWeights(recommend.Weights{
				ProficiencyGap:        1.2,
				DifficultySuitability: -0.2,
			}))
			So(err, ShouldWrap, recommend.ErrInvalidConfig)
		})

		Convey("When the k bounds are inverted", func() {
			_, err := recommend.NewEngine(recommend.WithDefaultK(5), recommend.WithMaxK(2))
			So(err, ShouldWrap, recommend.ErrInvalidConfig)
		})
	})
}
