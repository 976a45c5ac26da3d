package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/osonapteka/backoffice/internal/database/cursor"
	"github.com/osonapteka/backoffice/internal/database/doctors"
	"github.com/osonapteka/backoffice/internal/database/inventory"
	"github.com/osonapteka/backoffice/internal/database/messages"
	"github.com/osonapteka/backoffice/internal/database/runs"
	"github.com/osonapteka/backoffice/internal/database/sales"
	"github.com/osonapteka/backoffice/internal/database/settings"
	"github.com/osonapteka/backoffice/internal/database/suppliers"
	"github.com/osonapteka/backoffice/internal/entities"
	"github.com/osonapteka/backoffice/internal/notify"
	"github.com/osonapteka/backoffice/internal/osonkassa"
	"github.com/osonapteka/backoffice/internal/settingsstore"
	"github.com/osonapteka/backoffice/internal/syncer"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	engine *syncer.Engine
}

// setupEnv builds the full router against an in-memory database. posURL is
// where the sync engine would reach the POS API; tests that never trigger a
// sync pass a dead address.
func setupEnv(t *testing.T, posURL string) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&entities.InventoryRecord{},
		&entities.SaleRecord{},
		&entities.SaleItem{},
		&entities.SyncCursor{},
		&entities.Doctor{},
		&entities.Supplier{},
		&entities.ActivationEntry{},
		&entities.Message{},
		&entities.MessageRecipient{},
		&entities.SyncRun{},
		&entities.Setting{},
	))

	session := osonkassa.NewSession(posURL, "user", "pass", "tenant-1")
	client := osonkassa.NewClient(posURL, session)
	engine := syncer.NewEngine(session, client,
		inventory.NewRepository(db), sales.NewRepository(db), cursor.NewRepository(db),
		notify.NewDispatcher(16), syncer.Config{
			PageSizeInventory: 100,
			PageSizeSales:     100,
			ParallelPages:     2,
			InsertBatchSize:   100,
			ItemsBatchSize:    2,
			ItemsStaleness:    2 * time.Hour,
		})

	router := NewRouter(RouterConfig{
		Engine:    engine,
		Inventory: inventory.NewRepository(db),
		Sales:     sales.NewRepository(db),
		Cursors:   cursor.NewRepository(db),
		Doctors:   doctors.NewRepository(db),
		Suppliers: suppliers.NewRepository(db),
		Messages:  messages.NewRepository(db),
		Runs:      runs.NewRepository(db),
		Settings:  settingsstore.New(settings.NewRepository(db), 10),
		Version:   "test",
	})
	return &testEnv{router: router, db: db, engine: engine}
}

func (e *testEnv) request(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, APIResponse) {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp APIResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestPing(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, _ := env.request(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestHealth(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, _ := env.request(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestManualRefresh_InvalidDate(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, resp := env.request(t, http.MethodPost, "/api/background/manual-refresh", gin.H{"date": "garbage"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "invalid date")
}

func TestManualRefresh_ConflictWhileRunning(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Hold the login open so the engine stays in the running state.
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()
	defer close(release)

	env := setupEnv(t, server.URL)

	w, resp := env.request(t, http.MethodPost, "/api/background/manual-refresh", gin.H{"date": "2024-03-15"})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	require.Eventually(t, func() bool {
		return env.engine.Status().IsRunning
	}, time.Second, 5*time.Millisecond)

	w, resp = env.request(t, http.MethodPost, "/api/background/manual-refresh", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, resp.Success)
}

func TestStopRefresh(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, resp := env.request(t, http.MethodPost, "/api/background/stop-refresh", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
}

func TestResetCursor(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, _ := env.request(t, http.MethodPost, "/api/background/reset-cursor/remains", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp := env.request(t, http.MethodPost, "/api/background/reset-cursor/bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "unknown resource type")
}

func TestBackgroundStatus(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, resp := env.request(t, http.MethodGet, "/api/background/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, data, "refresh")
	assert.Contains(t, data, "database")
	assert.Contains(t, data, "cursors")
}

func TestHistory(t *testing.T) {
	env := setupEnv(t, "http://unused")
	runsRepo := runs.NewRepository(env.db)
	require.NoError(t, runsRepo.Record(&entities.SyncRun{
		RunType:   entities.SyncRunFull,
		Trigger:   "schedule",
		Status:    entities.SyncRunSuccess,
		CreatedAt: time.Now().Add(-time.Hour),
	}))
	require.NoError(t, runsRepo.Record(&entities.SyncRun{
		RunType: entities.SyncRunSalesOnly,
		Trigger: "manual",
		Status:  entities.SyncRunFailed,
	}))

	w, resp := env.request(t, http.MethodGet, "/api/background/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 2)

	w, resp = env.request(t, http.MethodGet, "/api/background/history?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, _ = resp.Data.([]any)
	assert.Len(t, list, 1)

	w, _ = env.request(t, http.MethodGet, "/api/background/history?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDashboardStats(t *testing.T) {
	env := setupEnv(t, "http://unused")
	require.NoError(t, env.db.Create(&entities.InventoryRecord{
		ExternalID: "b1", Product: "Paracetamol", Manufacturer: "Maker", Quantity: 5,
	}).Error)

	w, resp := env.request(t, http.MethodGet, "/api/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	inv, ok := data["inventory"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(1), inv["total"])
	assert.Equal(t, float64(1), inv["manufacturers"])
}

func TestDoctors_CRUD(t *testing.T) {
	env := setupEnv(t, "http://unused")

	create := gin.H{
		"name":     "Dr. Alisher Karimov",
		"login":    "akarimov",
		"password": "secret-password",
		"code":     "DOC-1",
	}
	w, resp := env.request(t, http.MethodPost, "/api/doctors", create)
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)
	created, _ := resp.Data.(map[string]any)
	assert.NotContains(t, created, "PasswordHash", "password hash must never be serialized")

	// Same login again.
	create["code"] = "DOC-2"
	w, _ = env.request(t, http.MethodPost, "/api/doctors", create)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Password too short.
	w, _ = env.request(t, http.MethodPost, "/api/doctors", gin.H{
		"name": "X", "login": "y", "password": "123", "code": "DOC-3",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.request(t, http.MethodGet, "/api/doctors/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	doctor, _ := resp.Data.(map[string]any)
	assert.Equal(t, "akarimov", doctor["login"])

	w, _ = env.request(t, http.MethodGet, "/api/doctors/99", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, resp = env.request(t, http.MethodPut, "/api/doctors/1", gin.H{"name": "Dr. A. Karimov"})
	require.Equal(t, http.StatusOK, w.Code)
	doctor, _ = resp.Data.(map[string]any)
	assert.Equal(t, "Dr. A. Karimov", doctor["name"])

	w, resp = env.request(t, http.MethodPost, "/api/doctors/1/activate", gin.H{"months": 3})
	require.Equal(t, http.StatusOK, w.Code)
	doctor, _ = resp.Data.(map[string]any)
	assert.NotNil(t, doctor["active_until"])

	w, _ = env.request(t, http.MethodDelete, "/api/doctors/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = env.request(t, http.MethodGet, "/api/doctors/1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDoctorSales(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, _ := env.request(t, http.MethodPost, "/api/doctors", gin.H{
		"name": "Dr. Karimov", "login": "akarimov", "password": "secret-password", "code": "DOC-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.db.Create(&entities.SaleRecord{
		ExternalID: "sale-1", DoctorCode: "DOC-1", SaleAmount: 5000,
	}).Error)
	require.NoError(t, env.db.Create(&entities.SaleRecord{
		ExternalID: "sale-2", SaleAmount: 9000,
	}).Error)

	w, resp := env.request(t, http.MethodGet, "/api/doctors/1/sales", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := resp.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)
}

func TestSuppliers_CreateAndActivate(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, resp := env.request(t, http.MethodPost, "/api/suppliers", gin.H{
		"name": "PharmDistribution LLC", "username": "pharmdist", "password": "secret-password",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, resp.Success)

	w, resp = env.request(t, http.MethodPost, "/api/suppliers/1/activate", gin.H{"months": 6})
	require.Equal(t, http.StatusOK, w.Code)
	supplier, _ := resp.Data.(map[string]any)
	assert.NotNil(t, supplier["active_until"])
}

func TestMessages_Lifecycle(t *testing.T) {
	env := setupEnv(t, "http://unused")

	// No active doctors yet.
	w, resp := env.request(t, http.MethodPost, "/api/messages", gin.H{"content": "hello"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, resp.Message, "no recipients")

	w, _ = env.request(t, http.MethodPost, "/api/doctors", gin.H{
		"name": "Dr. Karimov", "login": "akarimov", "password": "secret-password", "code": "DOC-1",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w, resp = env.request(t, http.MethodPost, "/api/messages", gin.H{"content": "New price list"})
	require.Equal(t, http.StatusCreated, w.Code)
	msg, _ := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), msg["total_recipients"])

	w, resp = env.request(t, http.MethodPost, "/api/messages/1/delivered", gin.H{
		"doctor_id": 1, "chat_id": "chat-100",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, resp.Success)

	w, resp = env.request(t, http.MethodGet, "/api/messages/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	msg, _ = resp.Data.(map[string]any)
	assert.Equal(t, float64(1), msg["delivered_count"])

	w, _ = env.request(t, http.MethodDelete, "/api/messages/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSettings(t *testing.T) {
	env := setupEnv(t, "http://unused")

	w, resp := env.request(t, http.MethodGet, "/api/settings/sync", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data, _ := resp.Data.(map[string]any)
	assert.Equal(t, float64(10), data["low_stock_threshold"])
	assert.Equal(t, true, data["notifications_enabled"])

	w, _ = env.request(t, http.MethodPut, "/api/settings/sync", gin.H{"low_stock_threshold": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.request(t, http.MethodPut, "/api/settings/sync", gin.H{
		"low_stock_threshold":   25,
		"notifications_enabled": false,
	})
	require.Equal(t, http.StatusOK, w.Code)
	data, _ = resp.Data.(map[string]any)
	assert.Equal(t, float64(25), data["low_stock_threshold"])
	assert.Equal(t, false, data["notifications_enabled"])
}
