package repository_test

import (
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 创建内存数据库并执行迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 内存数据库只存在于单个连接中
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func createDocumentType(t *testing.T, db *gorm.DB, id string, required int, approvers ...string) *model.DocumentTypeModel {
	t.Helper()
	docType := &model.DocumentTypeModel{
		ID:                id,
		Name:              "Type " + id,
		RequiredApprovals: required,
		SLADays:           3,
	}
	require.NoError(t, docType.SetApprovers(approvers))
	require.NoError(t, repository.NewDocumentTypeRepository(db).Save(docType))
	return docType
}

func createDocument(t *testing.T, db *gorm.DB, id, typeID, owner string, createdAt time.Time) *model.DocumentModel {
	t.Helper()
	doc := &model.DocumentModel{
		ID:             id,
		Title:          "Document " + id,
		DocumentTypeID: typeID,
		CreatedBy:      owner,
		Status:         model.DocumentStatusDraft,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, repository.NewDocumentRepository(db).Create(doc))
	return doc
}

// TestDocumentRepository_CreateAndFind 测试创建和查找文档
func TestDocumentRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	createDocumentType(t, db, "lease", 2)
	createDocument(t, db, "doc-1", "lease", "alice", time.Now())

	doc, err := repo.FindByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Document doc-1", doc.Title)
	assert.Equal(t, model.DocumentStatusDraft, doc.Status)

	_, err = repo.FindByID("missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	err = repo.Create(&model.DocumentModel{ID: "bad"})
	assert.Error(t, err)
}

// TestDocumentRepository_FindByFilter 测试过滤、分页和排序
func TestDocumentRepository_FindByFilter(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDocumentRepository(db)
	createDocumentType(t, db, "lease", 1)
	createDocumentType(t, db, "deed", 1)

	base := time.Now().Add(-time.Hour)
	for i, id := range []string{"d1", "d2", "d3", "d4", "d5"} {
		typeID := "lease"
		owner := "alice"
		if i%2 == 1 {
			typeID = "deed"
			owner = "bob"
		}
		createDocument(t, db, id, typeID, owner, base.Add(time.Duration(i)*time.Minute))
	}

	docs, total, err := repo.FindByFilter(&repository.DocumentFilter{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, docs, 2)
	assert.Equal(t, "d5", docs[0].ID, "newest first by default")

	docs, total, err = repo.FindByFilter(&repository.DocumentFilter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, docs, 1)

	deed := "deed"
	docs, total, err = repo.FindByFilter(&repository.DocumentFilter{DocumentTypeID: &deed})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, docs, 2)

	alice := "alice"
	docs, _, err = repo.FindByFilter(&repository.DocumentFilter{CreatedBy: &alice, SortBy: "created_at", Order: "asc"})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "d1", docs[0].ID)

	draft := string(model.DocumentStatusDraft)
	_, total, err = repo.FindByFilter(&repository.DocumentFilter{Status: &draft})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

// TestDocumentRepository_FindByFilter_RejectsUnsafeSort 测试排序字段白名单
func TestDocumentRepository_FindByFilter_RejectsUnsafeSort(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDocumentRepository(db)

	_, _, err := repo.FindByFilter(&repository.DocumentFilter{SortBy: "id; DROP TABLE documents"})
	assert.Error(t, err)

	_, _, err = repo.FindByFilter(&repository.DocumentFilter{Order: "sideways"})
	assert.Error(t, err)
}

// TestDocumentTypeRepository 测试文档类型仓储
func TestDocumentTypeRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewDocumentTypeRepository(db)
	createDocumentType(t, db, "lease", 2, "alice")
	createDocumentType(t, db, "deed", 1)

	found, err := repo.FindByName("Type lease")
	require.NoError(t, err)
	assert.Equal(t, "lease", found.ID)
	assert.Equal(t, []string{"alice"}, found.Approvers())

	all, err := repo.FindAll()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	err = repo.Save(&model.DocumentTypeModel{ID: "x", Name: "Type lease", RequiredApprovals: 1})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	err = repo.Save(&model.DocumentTypeModel{ID: "y", Name: "zero", RequiredApprovals: 0})
	assert.Error(t, err)
}

// TestActivityLogRepository 测试活动日志仓储
func TestActivityLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewActivityLogRepository(db)

	base := time.Now().Add(-time.Minute)
	entries := []*model.ActivityLogModel{
		{ID: "a1", Action: "create", DocumentID: "doc-1", UserID: "alice", CreatedAt: base},
		{ID: "a2", Action: "approve", DocumentID: "doc-1", UserID: "bob", CreatedAt: base.Add(time.Second)},
		{ID: "a3", Action: "create", DocumentID: "doc-2", UserID: "alice", CreatedAt: base.Add(2 * time.Second)},
	}
	for _, e := range entries {
		require.NoError(t, repo.Save(e))
	}

	byDoc, err := repo.FindByDocumentID("doc-1")
	require.NoError(t, err)
	require.Len(t, byDoc, 2)
	assert.Equal(t, "a1", byDoc[0].ID)

	byUser, err := repo.FindByUserID("alice")
	require.NoError(t, err)
	require.Len(t, byUser, 2)
	assert.Equal(t, "a3", byUser[0].ID)

	recent, err := repo.FindRecent(1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "a3", recent[0].ID)

	assert.Error(t, repo.Save(&model.ActivityLogModel{ID: "bad"}))
}

// TestActivityLogRepository_Favorites 测试按动作计数删除以及收藏过滤
func TestActivityLogRepository_Favorites(t *testing.T) {
	db := setupTestDB(t)
	docs := repository.NewDocumentRepository(db)
	logs := repository.NewActivityLogRepository(db)
	createDocumentType(t, db, "lease", 1)
	base := time.Now().Add(-time.Hour)
	createDocument(t, db, "d1", "lease", "alice", base)
	createDocument(t, db, "d2", "lease", "alice", base.Add(time.Minute))

	require.NoError(t, logs.Save(&model.ActivityLogModel{ID: "f1", Action: "favorite", DocumentID: "d2", UserID: "bob"}))
	require.NoError(t, logs.Save(&model.ActivityLogModel{ID: "c1", Action: "create", DocumentID: "d1", UserID: "bob"}))

	count, err := logs.CountByAction("d2", "bob", "favorite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	count, err = logs.CountByAction("d2", "carol", "favorite")
	require.NoError(t, err)
	assert.Zero(t, count)

	bob := "bob"
	found, total, err := docs.FindByFilter(&repository.DocumentFilter{FavoritedBy: &bob})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, found, 1)
	assert.Equal(t, "d2", found[0].ID)

	deleted, err := logs.DeleteByAction("d2", "bob", "favorite")
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	_, total, err = docs.FindByFilter(&repository.DocumentFilter{FavoritedBy: &bob})
	require.NoError(t, err)
	assert.Zero(t, total)

	// 其他动作不受影响
	remaining, err := logs.FindByUserID("bob")
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "c1", remaining[0].ID)
}
