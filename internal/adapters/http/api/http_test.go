package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pokeatlas/syncbridge/internal/domain/model"
	"github.com/pokeatlas/syncbridge/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Stub implementation of Dependencies for handler tests.
type stubDeps struct {
	records   []model.CaptureRecord
	acked     []string
	preloaded []int
	cleared   bool
	infoErr   error
	reloadErr error
	lastSince *time.Time
}

func (s *stubDeps) AddCapture(_ context.Context, pokemonID int, pokemonName string, action model.Action, removed bool) (model.CaptureRecord, bool, error) {
	for _, r := range s.records {
		if r.PokemonID == pokemonID && !r.Synced {
			return r, true, nil
		}
	}
	rec := model.NewCapture(pokemonID, pokemonName, action, removed, "test", time.Now())
	s.records = append(s.records, rec)
	return rec, false, nil
}

func (s *stubDeps) Pending(_ context.Context, since *time.Time) types.SyncData {
	s.lastSince = since
	var pending []model.CaptureRecord
	for _, r := range s.records {
		if !r.Synced {
			pending = append(pending, r)
		}
	}
	return types.SyncData{
		UserID:       model.DefaultUserID,
		ClientURL:    "http://localhost:3001",
		Captures:     pending,
		TotalPending: len(pending),
	}
}

func (s *stubDeps) AllCaptures(_ context.Context) types.AllCaptures {
	return types.AllCaptures{
		UserID:        model.DefaultUserID,
		ClientURL:     "http://localhost:3001",
		Captures:      s.records,
		TotalCaptures: len(s.records),
	}
}

func (s *stubDeps) Acknowledge(_ context.Context, captureIDs []string) (int, error) {
	s.acked = append(s.acked, captureIDs...)
	count := 0
	for i, r := range s.records {
		for _, id := range captureIDs {
			if r.CaptureID == id && !r.Synced {
				s.records[i].Synced = true
				count++
			}
		}
	}
	return count, nil
}

func (s *stubDeps) Reload(_ context.Context) (types.Stats, error) {
	if s.reloadErr != nil {
		return types.Stats{}, s.reloadErr
	}
	return types.Stats{TotalCaptures: len(s.records)}, nil
}

func (s *stubDeps) Health(_ context.Context) types.Health {
	return types.Health{Status: "ok", ClientID: "client-test", Timestamp: time.Now(), Version: "test"}
}

func (s *stubDeps) Stats(_ context.Context) types.Stats {
	return types.Stats{TotalCaptures: len(s.records), ClientID: "client-test"}
}

func (s *stubDeps) GetImageURL(_ context.Context, pokemonID int, imageType model.ImageType) string {
	return "data:image/svg+xml;base64,stub"
}

func (s *stubDeps) GetImageInfo(_ context.Context, pokemonID int) (types.PokemonImageInfo, error) {
	if s.infoErr != nil {
		return types.PokemonImageInfo{}, s.infoErr
	}
	return types.PokemonImageInfo{PokemonID: pokemonID}, nil
}

func (s *stubDeps) PreloadImages(_ context.Context, pokemonIDs []int, _ []model.ImageType) error {
	s.preloaded = append(s.preloaded, pokemonIDs...)
	return nil
}

func (s *stubDeps) ImageCacheStats(_ context.Context) (types.ImageCacheStats, types.LocalCacheStats) {
	return types.ImageCacheStats{TotalImages: 3}, types.LocalCacheStats{Size: 1}
}

func (s *stubDeps) ClearImageCache(_ context.Context) {
	s.cleared = true
}

func newMux(deps Dependencies) *http.ServeMux {
	mux := http.NewServeMux()
	NewServer(deps).Register(context.Background(), mux)
	return mux
}

func TestServerRoutes(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		Convey("When hitting the health endpoint", func() {
			req := httptest.NewRequest("GET", "/api/client/health", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it reports identity", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var h types.Health
				So(json.Unmarshal(w.Body.Bytes(), &h), ShouldBeNil)
				So(h.Status, ShouldEqual, "ok")
				So(h.ClientID, ShouldEqual, "client-test")
			})
		})

		Convey("When hitting the stats endpoint", func() {
			req := httptest.NewRequest("GET", "/api/client/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When hitting the metrics endpoint", func() {
			req := httptest.NewRequest("GET", "/metrics", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("When hitting an unknown route", func() {
			req := httptest.NewRequest("GET", "/api/client/nope", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When using the wrong method", func() {
			req := httptest.NewRequest("GET", "/api/client/add-capture", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAddCaptureEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/api/client/add-capture", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When posting a valid capture", func() {
			w := post(`{"pokemon_id": 25, "pokemon_name": "pikachu", "action": "capture"}`)

			Convey("Then the capture is buffered", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp captureResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Duplicated, ShouldBeFalse)
				So(resp.Capture.PokemonID, ShouldEqual, 25)
				So(resp.Capture.Action, ShouldEqual, model.ActionCapture)
			})
		})

		Convey("When posting the same capture twice", func() {
			post(`{"pokemon_id": 25, "pokemon_name": "pikachu"}`)
			w := post(`{"pokemon_id": 25, "pokemon_name": "pikachu"}`)

			Convey("Then the second response is flagged duplicated", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp captureResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Duplicated, ShouldBeTrue)
				So(len(deps.records), ShouldEqual, 1)
			})
		})

		Convey("When posting malformed JSON", func() {
			w := post(`{"pokemon_id": `)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When pokemon_id is missing", func() {
			w := post(`{"pokemon_name": "pikachu"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When pokemon_name is blank", func() {
			w := post(`{"pokemon_id": 25, "pokemon_name": "   "}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestSyncDataEndpoint(t *testing.T) {
	Convey("Given a server with one buffered capture", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)
		req := httptest.NewRequest("POST", "/api/client/add-capture",
			strings.NewReader(`{"pokemon_id": 7, "pokemon_name": "squirtle"}`))
		mux.ServeHTTP(httptest.NewRecorder(), req)

		Convey("When pulling sync data", func() {
			req := httptest.NewRequest("GET", "/api/client/sync-data", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the pending record is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var data types.SyncData
				So(json.Unmarshal(w.Body.Bytes(), &data), ShouldBeNil)
				So(data.TotalPending, ShouldEqual, 1)
				So(data.UserID, ShouldEqual, model.DefaultUserID)
				So(deps.lastSince, ShouldBeNil)
			})
		})

		Convey("When pulling with a since filter", func() {
			req := httptest.NewRequest("GET", "/api/client/sync-data?since=2026-01-02T15:04:05Z", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the filter is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSince, ShouldNotBeNil)
				So(deps.lastSince.Year(), ShouldEqual, 2026)
			})
		})

		Convey("When since is not RFC3339", func() {
			req := httptest.NewRequest("GET", "/api/client/sync-data?since=yesterday", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestAcknowledgeEndpoint(t *testing.T) {
	Convey("Given a server with one buffered capture", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)
		req := httptest.NewRequest("POST", "/api/client/add-capture",
			strings.NewReader(`{"pokemon_id": 7, "pokemon_name": "squirtle"}`))
		mux.ServeHTTP(httptest.NewRecorder(), req)
		captureID := deps.records[0].CaptureID

		post := func(body string) *httptest.ResponseRecorder {
			req := httptest.NewRequest("POST", "/api/client/acknowledge", strings.NewReader(body))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			return w
		}

		Convey("When acknowledging the capture", func() {
			w := post(`{"capture_ids": ["` + captureID + `"]}`)

			Convey("Then the count reflects the newly marked record", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp acknowledgeResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Count, ShouldEqual, 1)
			})
		})

		Convey("When capture_ids is missing", func() {
			w := post(`{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When capture_ids is not a list", func() {
			w := post(`{"capture_ids": "25_1_capture"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When capture_ids is an empty list", func() {
			w := post(`{"capture_ids": []}`)

			Convey("Then the request is valid and marks nothing", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp acknowledgeResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Count, ShouldEqual, 0)
			})
		})
	})
}

func TestReloadEndpoint(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		Convey("When posting a reload", func() {
			req := httptest.NewRequest("POST", "/api/client/reload-data", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the refreshed totals come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp reloadResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.TotalCaptures, ShouldEqual, 0)
			})
		})
	})
}

func TestImageEndpoints(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := &stubDeps{}
		mux := newMux(deps)

		Convey("When resolving an image", func() {
			req := httptest.NewRequest("GET", "/api/client/image/25?image_type=sprite", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the resolved reference comes back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp imageResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.PokemonID, ShouldEqual, 25)
				So(resp.ImageType, ShouldEqual, model.ImageSprite)
				So(resp.URL, ShouldNotBeEmpty)
			})
		})

		Convey("When the image type is omitted", func() {
			req := httptest.NewRequest("GET", "/api/client/image/25", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			var resp imageResponse
			So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
			So(resp.ImageType, ShouldEqual, model.DefaultImageType)
		})

		Convey("When the id is not numeric", func() {
			req := httptest.NewRequest("GET", "/api/client/image/pikachu", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching image info", func() {
			req := httptest.NewRequest("GET", "/api/client/image/25/info", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the backend info is proxied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var info types.PokemonImageInfo
				So(json.Unmarshal(w.Body.Bytes(), &info), ShouldBeNil)
				So(info.PokemonID, ShouldEqual, 25)
			})
		})

		Convey("When the info backend fails", func() {
			deps.infoErr = ErrUpstream
			req := httptest.NewRequest("GET", "/api/client/image/25/info", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadGateway)
		})

		Convey("When preloading a batch", func() {
			req := httptest.NewRequest("POST", "/api/client/preload",
				strings.NewReader(`{"pokemon_ids": [1, 4, 7], "image_types": ["sprite"]}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the ids are forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.preloaded, ShouldResemble, []int{1, 4, 7})
			})
		})

		Convey("When preloading without ids", func() {
			req := httptest.NewRequest("POST", "/api/client/preload", strings.NewReader(`{}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When fetching cache stats", func() {
			req := httptest.NewRequest("GET", "/api/client/image-cache/stats", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then backend and local stats are paired", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var resp cacheStatsResponse
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Backend.TotalImages, ShouldEqual, 3)
				So(resp.Local.Size, ShouldEqual, 1)
			})
		})

		Convey("When clearing the cache", func() {
			req := httptest.NewRequest("POST", "/api/client/image-cache/clear", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then the clear is forwarded", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.cleared, ShouldBeTrue)
			})
		})
	})
}
