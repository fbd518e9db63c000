package model_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/mightbeian/HacMan/internal/domain/model"
)

func TestDifficulty_Level(t *testing.T) {
	Convey("Given the difficulty bands", t, func() {
		Convey("Then levels ascend easy, medium, hard", func() {
			So(model.DifficultyEasy.Level(), ShouldEqual, 1)
			So(model.DifficultyMedium.Level(), ShouldEqual, 2)
			So(model.DifficultyHard.Level(), ShouldEqual, 3)
		})

		Convey("And an unknown band maps to zero", func() {
			So(model.Difficulty("insane").Level(), ShouldEqual, 0)
			So(model.Difficulty("").Level(), ShouldEqual, 0)
		})
	})
}
