package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/letitbe-trn/oneroom-app/internal/adapter"
	"github.com/letitbe-trn/oneroom-app/internal/application"
	"github.com/letitbe-trn/oneroom-app/internal/common/response"
	"github.com/letitbe-trn/oneroom-app/internal/domain/booking"
	"github.com/letitbe-trn/oneroom-app/internal/handler"
	"github.com/letitbe-trn/oneroom-app/internal/repository"
	"github.com/letitbe-trn/oneroom-app/internal/state"
)

type stubAssistant struct {
	intent *adapter.Intent
	err    error
}

func (s *stubAssistant) Interpret(context.Context, string, []*booking.Booking, time.Time) (*adapter.Intent, error) {
	return s.intent, s.err
}

func (s *stubAssistant) SummarizeConflicts(context.Context, []booking.Conflict) (string, error) {
	return "overlap", nil
}

type noopNotifier struct{}

func (noopNotifier) Notify(context.Context, application.BookingsChanged) {}

type stubSyncer struct{ calls int }

func (s *stubSyncer) Sync(context.Context, string, []*booking.Booking) error {
	s.calls++
	return nil
}

type testServer struct {
	router    *gin.Engine
	assistant *stubAssistant
	syncer    *stubSyncer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	holder, err := state.NewHolder(context.Background(), repository.NewMemoryStore())
	require.NoError(t, err)

	logger := zap.NewNop()
	assistant := &stubAssistant{}
	syncer := &stubSyncer{}

	bookingSvc := application.NewBookingService(holder, noopNotifier{}, assistant, nil, logger)
	profileSvc := application.NewProfileService(holder, logger)
	syncSvc := application.NewSyncService(holder, syncer, logger)
	assistantSvc := application.NewAssistantService(holder, assistant, bookingSvc, time.UTC, logger)

	r := gin.New()
	v1 := r.Group("/api/v1")
	handler.NewBookingHandler(bookingSvc).RegisterRoutes(v1)
	handler.NewDashboardHandler(bookingSvc).RegisterRoutes(v1)
	handler.NewProfileHandler(profileSvc, syncSvc).RegisterRoutes(v1)
	handler.NewAssistantHandler(assistantSvc).RegisterRoutes(v1)

	return &testServer{router: r, assistant: assistant, syncer: syncer}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Error   *response.ErrorBody `json:"error"`
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func bookingBody(name, from, to string, recurring bool) map[string]any {
	return map[string]any{"name": name, "check_in": from, "departure": to, "is_recurring": recurring}
}

func TestBookingRoutes_CreateListDelete(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("Lan", "2024-03-04T09:00:00Z", "2024-03-04T10:00:00Z", true))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[[]application.BookingDTO](t, w)
	require.Len(t, created.Data, 8)

	w = s.do(t, http.MethodGet, "/api/v1/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]application.BookingDTO](t, w).Data, 8)

	w = s.do(t, http.MethodGet, "/api/v1/bookings/"+created.Data[0].ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/bookings/"+created.Data[0].ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/stats", nil)
	stats := decode[application.BookingStatsDTO](t, w)
	assert.Equal(t, 7, stats.Data.TotalBookings)
	assert.Equal(t, 1, stats.Data.RecurringSeries)
}

func TestBookingRoutes_ErrorMapping(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("A", "2024-03-04T10:00:00Z", "2024-03-04T12:00:00Z", false))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("B", "2024-03-04T11:00:00Z", "2024-03-04T13:00:00Z", false))
	assert.Equal(t, http.StatusConflict, w.Code)
	env := decode[any](t, w)
	require.NotNil(t, env.Error)
	assert.Contains(t, env.Error.Message, "week 1")

	w = s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("C", "2024-03-05T11:00:00Z", "2024-03-05T10:00:00Z", false))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_error", decode[any](t, w).Error.Code)

	w = s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("Late", "9999-12-01T09:00:00Z", "9999-12-01T10:00:00Z", true))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/bookings", nil)
	assert.Len(t, decode[[]application.BookingDTO](t, w).Data, 1)

	w = s.do(t, http.MethodPost, "/api/v1/bookings", map[string]any{"name": "D"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodDelete, "/api/v1/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/bookings/"+uuid.NewString(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBookingRoutes_CalendarAndConflicts(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/bookings", bookingBody("A", "2024-03-04T10:00:00Z", "2024-03-04T12:00:00Z", false))
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/bookings/calendar.ics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, w.Body.String(), "SUMMARY:A")

	w = s.do(t, http.MethodGet, "/api/v1/bookings/conflicts", nil)
	require.Equal(t, http.StatusOK, w.Code)
	report := decode[application.ConflictReportDTO](t, w)
	assert.Empty(t, report.Data.Conflicts)
}

func TestProfileAndSyncRoutes(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/profile", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/profile", map[string]string{"name": "Lan", "phone": "0901"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Lan", decode[application.ProfileDTO](t, w).Data.Name)

	w = s.do(t, http.MethodPost, "/api/v1/sync/now", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/sync", map[string]string{"endpoint": "https://script.example/exec"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/sync", nil)
	assert.True(t, decode[application.SyncSettingsDTO](t, w).Data.Enabled)

	w = s.do(t, http.MethodPost, "/api/v1/sync/now", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, s.syncer.calls)
}

func TestAssistantRoute(t *testing.T) {
	s := newTestServer(t)
	s.assistant.intent = &adapter.Intent{
		Action:    adapter.ActionBook,
		Name:      "Lan",
		CheckIn:   "2024-03-04T09:00:00Z",
		Departure: "2024-03-04T10:00:00Z",
		Message:   "Booked.",
	}

	w := s.do(t, http.MethodPost, "/api/v1/assistant", map[string]string{"prompt": "book Lan monday 9-10"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reply := decode[application.AssistantReplyDTO](t, w)
	assert.Equal(t, "book", reply.Data.Action)
	assert.Len(t, reply.Data.Booked, 1)

	s.assistant.err = assert.AnError
	w = s.do(t, http.MethodPost, "/api/v1/assistant", map[string]string{"prompt": "hello"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "external_error", decode[any](t, w).Error.Code)
}
