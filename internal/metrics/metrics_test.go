package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/metrics"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func setupDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&model.DocumentModel{}))
	return db
}

// TestRecorders 测试业务指标输出
func TestRecorders(t *testing.T) {
	metrics.RecordAPIRequest(http.MethodPost, "/api/v1/documents", http.StatusCreated, 0.02)
	metrics.RecordDocumentCreated()
	metrics.RecordDecision("approved")
	metrics.RecordDecisionConflict()
	metrics.RecordActivityDropped()

	body := scrape(t)
	assert.Contains(t, body, `api_requests_total{method="POST",path="/api/v1/documents",status="Created"}`)
	assert.Contains(t, body, "documents_created_total")
	assert.Contains(t, body, `approval_decisions_total{decision="approved"}`)
	assert.Contains(t, body, "approval_conflicts_total")
	assert.Contains(t, body, "activity_dropped_total")
}

// TestCollector_DocumentStatus 测试文档状态分布采集
func TestCollector_DocumentStatus(t *testing.T) {
	db := setupDB(t)
	now := time.Now()
	docs := []*model.DocumentModel{
		{ID: "d1", Title: "A", DocumentTypeID: "lease", CreatedBy: "u", Status: model.DocumentStatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: "d2", Title: "B", DocumentTypeID: "lease", CreatedBy: "u", Status: model.DocumentStatusPending, CreatedAt: now, UpdatedAt: now},
		{ID: "d3", Title: "C", DocumentTypeID: "lease", CreatedBy: "u", Status: model.DocumentStatusApproved, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, db.Create(&docs).Error)

	collector := metrics.NewCollector(db, time.Hour)
	require.NoError(t, collector.CollectDocumentStatus())
	require.NoError(t, metrics.UpdateDatabaseConnections(db))

	body := scrape(t)
	assert.Contains(t, body, `documents_by_status{status="pending"} 2`)
	assert.Contains(t, body, `documents_by_status{status="approved"} 1`)
	assert.Contains(t, body, "database_connections_max 1")

	collector.Start()
	collector.Stop()
}
