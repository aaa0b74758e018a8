package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"health-reminder-backend/config"
	"health-reminder-backend/internal/db"
	"health-reminder-backend/internal/metrics"
	"health-reminder-backend/internal/model"
	"health-reminder-backend/internal/reminder"
	"health-reminder-backend/internal/store"
)

var testLoc = time.FixedZone("UTC+1", 3600)

type silentNotifier struct{}

func (silentNotifier) PermissionGranted() bool { return false }
func (silentNotifier) Notify(title, body, tag string) {}

type testEnv struct {
	router *gin.Engine
	store  store.Store
}

func setup(t *testing.T, opts *webpush.Options) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gormDB, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gormDB))
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	st := store.NewGormStore(gormDB)
	now := time.Date(2024, 5, 10, 9, 0, 0, 0, testLoc)
	svc := reminder.NewService(
		&config.RemindersConfig{Location: testLoc, AppointmentLeadMinutes: 60},
		st, silentNotifier{}, zap.NewNop(),
		reminder.WithClock(func() time.Time { return now }),
	)

	router := NewRouter(Dependencies{
		Server:  &config.ServerConfig{RateLimitPerSec: 1000, RateLimitBurst: 1000, CacheTTLSeconds: 60},
		Service: svc,
		Store:   st,
		WebPush: opts,
		Metrics: metrics.New(),
		Logger:  zap.NewNop(),
	})
	return &testEnv{router: router, store: st}
}

func (e *testEnv) do(t *testing.T, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func TestPutSubscription_InvalidBody(t *testing.T) {
	env := setup(t, nil)

	req, _ := http.NewRequest(http.MethodPut, "/api/subscriptions", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"GEN_002"`)
}

func TestSubscriptionLifecycle(t *testing.T) {
	env := setup(t, nil)
	endpoint := "https://fcm.googleapis.com/fcm/send/abc:def"

	w := env.do(t, http.MethodPut, "/api/subscriptions", gin.H{"endpoint": endpoint, "p256dh": "key", "auth": "secret"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), endpoint)

	// Escaped endpoints are found too.
	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+url.QueryEscape(endpoint), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodGet, "/api/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodDelete, "/api/subscriptions", gin.H{"endpoint": endpoint})
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	w := setup(t, nil).do(t, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "PUSH_001")

	w = setup(t, &webpush.Options{VAPIDPublicKey: "BPub"}).do(t, http.MethodGet, "/api/vapid_public_key", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"BPub"}`, w.Body.String())
}

func TestMedicationsAndIntakes(t *testing.T) {
	env := setup(t, nil)

	w := env.do(t, http.MethodGet, "/api/medications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())

	w = env.do(t, http.MethodPost, "/api/medications", gin.H{
		"name": "Amoxicillin", "intakeTimes": []string{"08:00", "12:00"},
		"startDate": "2024-05-12", "endDate": "2024-05-01",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/medications", gin.H{
		"name": "Amoxicillin", "intakeTimes": []string{"08:00", "12:00"},
		"startDate": "2024-05-08", "endDate": "2024-05-14", "patientFullName": "Awa Ouedraogo",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var created model.MedicationCourse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)

	// The cached empty list was flushed by the create.
	w = env.do(t, http.MethodGet, "/api/medications", nil)
	var courses []model.MedicationCourse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &courses))
	require.Len(t, courses, 1)
	assert.Equal(t, "Awa Ouedraogo", courses[0].PatientFullName)

	w = env.do(t, http.MethodGet, "/api/intakes/today", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var today []reminder.TodayIntake
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	require.Len(t, today, 2)
	assert.Equal(t, "past_today", string(today[0].Status))
	assert.Equal(t, "upcoming_later", string(today[1].Status))

	w = env.do(t, http.MethodPost, "/api/intakes", gin.H{"medicationId": created.ID, "intakeTime": "12:00", "outcome": "taken"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = env.do(t, http.MethodPost, "/api/intakes", gin.H{"medicationId": created.ID, "intakeTime": "08:00", "outcome": "taken"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/intakes", gin.H{"medicationId": created.ID, "intakeTime": "08:00", "outcome": "skipped"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/api/intakes", gin.H{"medicationId": "nope", "intakeTime": "08:00", "outcome": "taken"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Read-after-write: the confirmation shows up immediately.
	w = env.do(t, http.MethodGet, "/api/intakes/today", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &today))
	assert.Equal(t, model.OutcomeTaken, today[0].Outcome)

	// 2024-05-08..10 with two intakes a day, one taken.
	w = env.do(t, http.MethodGet, "/api/adherence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"percentage":17,"takenCount":1,"scheduledCount":6}`, w.Body.String())

	w = env.do(t, http.MethodPut, "/api/medications/"+created.ID, gin.H{
		"name": "Amoxicillin 500", "intakeTimes": []string{"08:00"}, "startDate": "2024-05-08", "endDate": "2024-05-14",
	})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodPut, "/api/medications/missing", gin.H{
		"name": "X", "intakeTimes": []string{"08:00"}, "startDate": "2024-05-08", "endDate": "2024-05-14",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodDelete, "/api/medications/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodGet, "/api/medications", nil)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestAdherenceWithoutData(t *testing.T) {
	w := setup(t, nil).do(t, http.MethodGet, "/api/adherence", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"percentage":null,"takenCount":0,"scheduledCount":0}`, w.Body.String())
}

func TestAppointmentsAndDashboard(t *testing.T) {
	env := setup(t, nil)

	w := env.do(t, http.MethodPost, "/api/appointments", gin.H{"doctorName": "Dr Kabore", "dateTime": "not a date"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/appointments", gin.H{"doctorName": "Dr Kabore", "specialty": "Cardiology", "dateTime": "2024-05-11T10:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	var upcoming model.Appointment
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upcoming))

	w = env.do(t, http.MethodPost, "/api/appointments", gin.H{"doctorName": "Dr Traore", "dateTime": "2024-05-01T10:00:00+01:00"})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.store.SaveAppointments(context.Background(), append(mustAppointments(t, env), model.Appointment{ID: "bad", DoctorName: "Dr X", DateTime: "garbage"})))

	w = env.do(t, http.MethodGet, "/api/appointments", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p struct {
		Upcoming []model.Appointment `json:"upcoming"`
		Past     []model.Appointment `json:"past"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	require.Len(t, p.Upcoming, 1)
	require.Len(t, p.Past, 1)
	assert.Equal(t, "Cardiology", p.Upcoming[0].Specialty)
	assert.Equal(t, "Dr Traore", p.Past[0].DoctorName)

	w = env.do(t, http.MethodGet, "/api/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var d struct {
		Date            string            `json:"date"`
		Pending         int               `json:"pending"`
		NextAppointment model.Appointment `json:"nextAppointment"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, "2024-05-10", d.Date)
	assert.Equal(t, upcoming.ID, d.NextAppointment.ID)

	w = env.do(t, http.MethodPut, "/api/appointments/"+upcoming.ID, gin.H{"doctorName": "Dr Kabore", "dateTime": "2024-05-11T11:00"})
	require.Equal(t, http.StatusOK, w.Code)
	w = env.do(t, http.MethodDelete, "/api/appointments/"+upcoming.ID, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = env.do(t, http.MethodDelete, "/api/appointments/"+upcoming.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func mustAppointments(t *testing.T, env *testEnv) []model.Appointment {
	t.Helper()
	appts, err := env.store.Appointments(context.Background())
	require.NoError(t, err)
	return appts
}

func TestMetricsEndpoint(t *testing.T) {
	w := setup(t, nil).do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "adherence_percent")
}
