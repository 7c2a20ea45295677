package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pokeatlas/syncbridge/internal/adapters/repository"
	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// slowReadStore widens the gap between the duplicate check and the
// append so an unserialized double-tap pair would both miss the check.
type slowReadStore struct {
	repository.Store
}

func (s *slowReadStore) All(ctx context.Context) []model.CaptureRecord {
	records := s.Store.All(ctx)
	time.Sleep(50 * time.Millisecond)
	return records
}

func newStartedService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}
	svc := New(opts...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatalf("service start: %v", err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceLifecycle(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := newStartedService(t, WithClientID("client-test"), WithVersion("1.0.0-test"))
		ctx := context.Background()

		Convey("When starting twice", func() {
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then the second start is a no-op", func() {
				So(svc.Stats(ctx).TotalCaptures, ShouldEqual, 0)
			})
		})

		Convey("When asking for health", func() {
			h := svc.Health(ctx)

			Convey("Then identity fields are filled", func() {
				So(h.Status, ShouldEqual, "ok")
				So(h.ClientID, ShouldEqual, "client-test")
				So(h.Version, ShouldEqual, "1.0.0-test")
				So(h.Timestamp.IsZero(), ShouldBeFalse)
			})
		})
	})
}

func TestAddCaptureDedup(t *testing.T) {
	Convey("Given a started service with a controllable clock", t, func() {
		now := time.Now()
		clock := func() time.Time { return now }
		svc := newStartedService(t, WithClock(clock))
		ctx := context.Background()

		Convey("When adding the same capture twice within the window", func() {
			first, dup1, err1 := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)
			now = now.Add(2 * time.Second)
			second, dup2, err2 := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)

			Convey("Then only one record is stored", func() {
				So(err1, ShouldBeNil)
				So(err2, ShouldBeNil)
				So(dup1, ShouldBeFalse)
				So(dup2, ShouldBeTrue)
				So(second.CaptureID, ShouldEqual, first.CaptureID)
				So(svc.Stats(ctx).TotalCaptures, ShouldEqual, 1)
			})
		})

		Convey("When the repeat happens after the window", func() {
			_, dup1, _ := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)
			now = now.Add(6 * time.Second)
			_, dup2, _ := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)

			Convey("Then a second record is stored", func() {
				So(dup1, ShouldBeFalse)
				So(dup2, ShouldBeFalse)
				So(svc.Stats(ctx).TotalCaptures, ShouldEqual, 2)
			})
		})

		Convey("When the action differs inside the window", func() {
			_, dup1, _ := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)
			now = now.Add(time.Second)
			_, dup2, _ := svc.AddCapture(ctx, 25, "pikachu", model.ActionRelease, true)

			Convey("Then both records are stored", func() {
				So(dup1, ShouldBeFalse)
				So(dup2, ShouldBeFalse)
				So(svc.Stats(ctx).TotalCaptures, ShouldEqual, 2)
			})
		})
	})
}

func TestAddCaptureConcurrentDoubleTap(t *testing.T) {
	Convey("Given a started service over a slow-reading store", t, func() {
		store, err := repository.NewBoltStore(context.Background())
		So(err, ShouldBeNil)
		svc := newStartedService(t, WithStore(&slowReadStore{Store: store}))
		ctx := context.Background()

		Convey("When the same capture arrives on two concurrent requests", func() {
			var wg sync.WaitGroup
			results := make([]bool, 2)
			for i := range results {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					_, dup, _ := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)
					results[i] = dup
				}(i)
			}
			wg.Wait()

			Convey("Then exactly one record is stored", func() {
				So(store.Count(ctx), ShouldEqual, 1)
				So(results[0] != results[1], ShouldBeTrue)
			})
		})
	})
}

func TestPendingAndAcknowledge(t *testing.T) {
	Convey("Given a service with buffered captures", t, func() {
		now := time.Now()
		clock := func() time.Time { return now }
		svc := newStartedService(t, WithClock(clock), WithClientURL("http://localhost:3001"))
		ctx := context.Background()

		rec, _, err := svc.AddCapture(ctx, 25, "pikachu", model.ActionCapture, false)
		So(err, ShouldBeNil)
		now = now.Add(10 * time.Second)
		rec2, _, err := svc.AddCapture(ctx, 7, "squirtle", model.ActionCapture, false)
		So(err, ShouldBeNil)

		Convey("When fetching pending captures", func() {
			data := svc.Pending(ctx, nil)

			Convey("Then both records are pending with identity attached", func() {
				So(data.TotalPending, ShouldEqual, 2)
				So(data.UserID, ShouldEqual, model.DefaultUserID)
				So(data.ClientURL, ShouldEqual, "http://localhost:3001")
				So(data.LastSync, ShouldBeNil)
			})
		})

		Convey("When filtering pending with since", func() {
			since := rec.Timestamp
			data := svc.Pending(ctx, &since)

			Convey("Then only strictly newer records remain", func() {
				So(data.TotalPending, ShouldEqual, 1)
				So(data.Captures[0].CaptureID, ShouldEqual, rec2.CaptureID)
			})
		})

		Convey("When acknowledging one record", func() {
			count, err := svc.Acknowledge(ctx, []string{rec.CaptureID})
			So(err, ShouldBeNil)
			So(count, ShouldEqual, 1)

			Convey("Then it disappears from pending but not from history", func() {
				So(svc.Pending(ctx, nil).TotalPending, ShouldEqual, 1)
				all := svc.AllCaptures(ctx)
				So(all.TotalCaptures, ShouldEqual, 2)
				So(all.LastSync, ShouldNotBeNil)
			})

			Convey("Then stats reflect the split", func() {
				stats := svc.Stats(ctx)
				So(stats.TotalCaptures, ShouldEqual, 2)
				So(stats.PendingSync, ShouldEqual, 1)
				So(stats.SyncedCaptures, ShouldEqual, 1)
			})

			Convey("And acknowledging the same id again changes nothing", func() {
				count2, err := svc.Acknowledge(ctx, []string{rec.CaptureID})
				So(err, ShouldBeNil)
				So(count2, ShouldEqual, 0)
				So(svc.Pending(ctx, nil).TotalPending, ShouldEqual, 1)
			})
		})

		Convey("When acknowledging unknown ids", func() {
			count, err := svc.Acknowledge(ctx, []string{"999_0_capture"})

			Convey("Then they are silently ignored", func() {
				So(err, ShouldBeNil)
				So(count, ShouldEqual, 0)
				So(svc.Pending(ctx, nil).TotalPending, ShouldEqual, 2)
			})
		})
	})
}

func TestImageOperationsWithoutBackend(t *testing.T) {
	Convey("Given a service without an image backend", t, func() {
		svc := newStartedService(t)
		ctx := context.Background()

		Convey("When resolving an image", func() {
			url := svc.GetImageURL(ctx, 25, model.ImageSprite)

			Convey("Then a placeholder is served", func() {
				So(url, ShouldStartWith, "data:image/svg+xml;base64,")
			})
		})

		Convey("When asking for image info", func() {
			_, err := svc.GetImageInfo(ctx, 25)

			Convey("Then the missing backend is reported", func() {
				So(err, ShouldEqual, ErrNoImageBackend)
			})
		})

		Convey("When preloading", func() {
			So(svc.PreloadImages(ctx, []int{1}, nil), ShouldEqual, ErrNoImageBackend)
		})

		Convey("When fetching cache stats", func() {
			backend, local := svc.ImageCacheStats(ctx)

			Convey("Then zero values are returned", func() {
				So(backend.TotalImages, ShouldEqual, 0)
				So(local.Size, ShouldEqual, 0)
			})
		})

		Convey("When clearing the cache", func() {
			So(func() { svc.ClearImageCache(ctx) }, ShouldNotPanic)
		})
	})
}
