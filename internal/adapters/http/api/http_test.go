package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/bounceland/internal/adapters/http/api"
	"github.com/okian/bounceland/internal/adapters/repository"
	service "github.com/okian/bounceland/internal/app"
	"github.com/okian/bounceland/internal/domain/attendance"
	"github.com/okian/bounceland/internal/domain/calendar"
	"github.com/okian/bounceland/internal/domain/model"
	"github.com/okian/bounceland/internal/domain/types"
	"github.com/okian/bounceland/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const owner = "owner-1"

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newMux(t *testing.T) (*http.ServeMux, *service.Service) {
	t.Helper()
	store, err := repository.NewFileStore(t.TempDir())
	So(err, ShouldBeNil)

	svc := service.New(store,
		service.WithOwner(owner),
		service.WithHeartbeat(0),
		service.WithLogger(logger.NewNop()),
		service.WithCalendar(calendar.New(
			calendar.WithLocation(time.UTC),
			calendar.WithClock(func() time.Time { return time.Date(2026, time.October, 15, 9, 0, 0, 0, time.UTC) }),
		)),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	Reset(func() { _ = svc.Stop(context.Background()) })

	mux := http.NewServeMux()
	api.NewServer(svc, api.WithMaxUpload(1<<16)).Register(context.Background(), mux)
	return mux, svc
}

func do(mux *http.ServeMux, method, path, user string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if user != "" {
		req.Header.Set(api.CallerHeader, user)
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](w *httptest.ResponseRecorder) T {
	var v T
	So(json.Unmarshal(w.Body.Bytes(), &v), ShouldBeNil)
	return v
}

func TestServer_Interactions(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux(t)

		Convey("When a mode is toggled", func() {
			w := do(mux, http.MethodPost, "/bounceland/modes", "u1", types.ModeRequest{Mode: "Van", Name: "Ann"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[types.InteractionResponse](w).Message, ShouldEqual, "✅ Van added")

			Convey("Then the personal view marks it", func() {
				w := do(mux, http.MethodGet, "/bounceland/view?user_id=u1", "", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				v := decodeBody[attendance.View](w)
				So(v.Modes[0].Label, ShouldEqual, "✅ Van")
			})

			Convey("Then the dataset lists the user", func() {
				w := do(mux, http.MethodGet, "/bounceland/dataset", "", nil)
				So(decodeBody[model.Dataset](w).Users, ShouldContainKey, "u1")
			})
		})

		Convey("When the caller header is missing", func() {
			w := do(mux, http.MethodPost, "/bounceland/modes", "", types.ModeRequest{Mode: "Van"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody[errorBody](w).Code, ShouldEqual, "bad_request")
		})

		Convey("When the body is invalid", func() {
			req := httptest.NewRequest(http.MethodPost, "/bounceland/weeks", strings.NewReader("{"))
			req.Header.Set(api.CallerHeader, "u1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)

			w = do(mux, http.MethodPost, "/bounceland/weeks", "u1", types.WeekRequest{WeekID: "2026-11-02"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(decodeBody[errorBody](w).Message, ShouldContainSubstring, "choice")
		})

		Convey("When a domain validation fails", func() {
			w := do(mux, http.MethodPost, "/bounceland/weeks", "u1", types.WeekRequest{WeekID: "next week", Choice: "Full week"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			w = do(mux, http.MethodPost, "/bounceland/modes", "u1", types.ModeRequest{Mode: "Boat"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a week is chosen and the summary read", func() {
			w := do(mux, http.MethodPost, "/bounceland/weeks", "u1", types.WeekRequest{WeekID: "2026-11-02", Choice: "Full week"})
			So(w.Code, ShouldEqual, http.StatusOK)

			w = do(mux, http.MethodGet, "/bounceland/summary", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			text := decodeBody[types.SummaryResponse](w).Text
			So(text, ShouldStartWith, attendance.SummaryHeader)
			So(text, ShouldContainSubstring, "02.11.-08.11.  1\n")
		})

		Convey("When a button action is posted", func() {
			w := do(mux, http.MethodPost, "/actions", "u1", types.ActionRequest{Action: "INFO|2026-11-02"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[types.InteractionResponse](w).Message, ShouldEqual, service.AnswerInfo)

			w = do(mux, http.MethodPost, "/actions", "u1", types.ActionRequest{Action: "nonsense"})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the wrong method is used", func() {
			So(do(mux, http.MethodGet, "/bounceland/modes", "u1", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/bounceland/summary", "u1", nil).Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestServer_Admin(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux(t)
		So(do(mux, http.MethodPost, "/bounceland/weeks", "u1", types.WeekRequest{WeekID: "2026-11-02", Choice: "Half week", Name: "Ann"}).Code, ShouldEqual, http.StatusOK)

		Convey("When exporting CSV", func() {
			w := do(mux, http.MethodGet, "/bounceland/export", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "bounceland.csv")
			So(w.Body.String(), ShouldContainSubstring, "u1,,Ann,0,0,0,0,0,0,0.5,")
		})

		Convey("When exporting XLSX", func() {
			w := do(mux, http.MethodGet, "/bounceland/export?format=xlsx", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldStartWith, "PK")
		})

		Convey("When exporting an unknown format", func() {
			So(do(mux, http.MethodGet, "/bounceland/export?format=pdf", "", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When a non-owner imports", func() {
			req := httptest.NewRequest(http.MethodPost, "/bounceland/import", strings.NewReader("user_id\nu2\n"))
			req.Header.Set(api.CallerHeader, "u1")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusForbidden)
			So(decodeBody[errorBody](w).Code, ShouldEqual, "forbidden")
		})

		Convey("When the owner imports a raw CSV body", func() {
			req := httptest.NewRequest(http.MethodPost, "/bounceland/import", strings.NewReader("user_id,name,Car\nu1,Ann,1\nu2,Bo,1\n,Nobody,1\n"))
			req.Header.Set(api.CallerHeader, owner)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[types.ImportResponse](w), ShouldResemble, types.ImportResponse{Added: 1, Skipped: 2})
		})

		Convey("When the owner uploads a multipart form", func() {
			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			part, err := mw.CreateFormFile("file", "people.csv")
			So(err, ShouldBeNil)
			_, _ = part.Write([]byte("user,name\nu3,Cy\n"))
			So(mw.Close(), ShouldBeNil)

			req := httptest.NewRequest(http.MethodPost, "/bounceland/import", &buf)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			req.Header.Set(api.CallerHeader, owner)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[types.ImportResponse](w).Added, ShouldEqual, 1)
		})

		Convey("When the upload is too large", func() {
			big := "user_id\n" + strings.Repeat("x", 1<<17) + "\n"
			req := httptest.NewRequest(http.MethodPost, "/bounceland/import", strings.NewReader(big))
			req.Header.Set(api.CallerHeader, owner)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusRequestEntityTooLarge)
		})

		Convey("When the owner resets", func() {
			w := do(mux, http.MethodPost, "/bounceland/reset", owner, nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "bounceland-backup.csv")
			So(w.Body.String(), ShouldContainSubstring, "u1,,Ann")

			Convey("Then the dataset is empty", func() {
				w := do(mux, http.MethodGet, "/bounceland/dataset", "", nil)
				So(decodeBody[model.Dataset](w).Users, ShouldBeEmpty)
			})
		})

		Convey("When someone else resets", func() {
			So(do(mux, http.MethodPost, "/bounceland/reset", "u1", nil).Code, ShouldEqual, http.StatusForbidden)
		})
	})
}

func TestServer_LiveAndMeal(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux, _ := newMux(t)

		Convey("When nothing was posted", func() {
			So(do(mux, http.MethodGet, "/live/bounceland", "", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/live/weather", "", nil).Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodGet, "/live/", "", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the owner posts the Bounceland poll", func() {
			w := do(mux, http.MethodPost, "/bounceland/post", owner, nil)
			So(w.Code, ShouldEqual, http.StatusCreated)
			posted := decodeBody[types.PostResponse](w)

			Convey("Then the live message is served", func() {
				w := do(mux, http.MethodGet, "/live/bounceland", "", nil)
				So(w.Code, ShouldEqual, http.StatusOK)
				u := decodeBody[model.Update](w)
				So(u.MessageID, ShouldEqual, posted.MessageID)
				So(u.Buttons[0][0].Action, ShouldEqual, "MODE|Van")
			})
		})

		Convey("When the meal poll is posted and a day toggled", func() {
			So(do(mux, http.MethodPost, "/meal/post", "u1", nil).Code, ShouldEqual, http.StatusForbidden)
			So(do(mux, http.MethodPost, "/meal/post", owner, nil).Code, ShouldEqual, http.StatusCreated)

			w := do(mux, http.MethodPost, "/meal/toggle", "u1", types.MealRequest{Day: "Friday", Name: "Ann"})
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[types.InteractionResponse](w).Message, ShouldEqual, service.AnswerMealUpdated)

			Convey("Then the summary lists the participant", func() {
				w := do(mux, http.MethodGet, "/meal/summary", "", nil)
				So(decodeBody[types.SummaryResponse](w).Text, ShouldContainSubstring, "*Friday* — 1\n- Ann")
			})

			Convey("And an unknown day is rejected", func() {
				w := do(mux, http.MethodPost, "/meal/toggle", "u1", types.MealRequest{Day: "Funday", Name: "Ann"})
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When stats and metrics are requested", func() {
			w := do(mux, http.MethodGet, "/stats", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(decodeBody[map[string]any](w)["started"], ShouldEqual, true)

			w = do(mux, http.MethodGet, "/healthz", "", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "bounceland_service_")
		})
	})
}
