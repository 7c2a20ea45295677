package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/pokeatlas/syncbridge/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSyncDataJSON(t *testing.T) {
	Convey("Given a SyncData payload", t, func() {
		Convey("When last_sync is unset", func() {
			data, err := json.Marshal(types.SyncData{UserID: "user_1"})

			Convey("Then it serializes as null, not omitted", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"last_sync":null`)
			})
		})

		Convey("When last_sync is set", func() {
			ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			data, err := json.Marshal(types.SyncData{LastSync: &ts})

			Convey("Then it serializes as RFC3339", func() {
				So(err, ShouldBeNil)
				So(string(data), ShouldContainSubstring, `"last_sync":"2026-03-01T12:00:00Z"`)
			})
		})
	})
}

func TestImageCacheStatsZeroValue(t *testing.T) {
	Convey("Given the zero ImageCacheStats", t, func() {
		data, err := json.Marshal(types.ImageCacheStats{})

		Convey("Then every counter serializes as zero", func() {
			So(err, ShouldBeNil)
			So(string(data), ShouldContainSubstring, `"total_images":0`)
			So(string(data), ShouldContainSubstring, `"hit_rate":0`)
		})
	})
}

func TestLocalCacheStatsOmitsEmptyBounds(t *testing.T) {
	Convey("Given an empty LocalCacheStats", t, func() {
		data, err := json.Marshal(types.LocalCacheStats{})

		Convey("Then oldest/newest are omitted", func() {
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, `{"size":0}`)
		})
	})
}
