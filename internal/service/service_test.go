package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// asUser 返回携带用户身份的 context
func asUser(userID string) context.Context {
	return auth.WithUserID(context.Background(), userID)
}

// recordingSink 记录活动事件
type recordingSink struct {
	mu     sync.Mutex
	events []*workflow.ActivityEvent
}

func (r *recordingSink) Record(ctx context.Context, evt *workflow.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *recordingSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.events))
	for _, e := range r.events {
		actions = append(actions, e.Action)
	}
	return actions
}

// fakeRelations 记录写入的关系
type fakeRelations struct {
	mu     sync.Mutex
	tuples []string
}

func (f *fakeRelations) SetRelation(ctx context.Context, userID, relation, objectType, objectID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tuples = append(f.tuples, userID+"#"+relation+"@"+objectType+":"+objectID)
	return nil
}

func (f *fakeRelations) DeleteRelation(ctx context.Context, userID, relation, objectType, objectID string) error {
	return nil
}

// testServices 测试用的服务集合
type testServices struct {
	db        *gorm.DB
	sink      *recordingSink
	relations *fakeRelations
	types     service.DocumentTypeService
	documents service.DocumentService
	approvals service.ApprovalService
	stats     service.StatisticsService
}

func setupServices(t *testing.T) *testServices {
	t.Helper()
	db := setupTestDB(t)
	sink := &recordingSink{}
	relations := &fakeRelations{}

	store := repository.NewWorkflowStore(db)
	executor := workflow.NewExecutor(store, workflow.AssignedApprover, sink, nil)

	return &testServices{
		db:        db,
		sink:      sink,
		relations: relations,
		types:     service.NewDocumentTypeService(db),
		documents: service.NewDocumentService(db, sink, relations, nil),
		approvals: service.NewApprovalService(db, executor, workflow.NewAggregator(store)),
		stats:     service.NewStatisticsService(db),
	}
}

// createType 创建文档类型
func (s *testServices) createType(t *testing.T, name string, required, slaDays int, approvers ...string) *service.DocumentTypeView {
	t.Helper()
	view, err := s.types.Create(context.Background(), &service.CreateDocumentTypeRequest{
		Name:              name,
		RequiredApprovals: required,
		SLADays:           slaDays,
		ApproverIDs:       approvers,
	})
	require.NoError(t, err)
	return view
}

// createDocument 以 owner 身份创建文档
func (s *testServices) createDocument(t *testing.T, owner, title, typeID string) *service.DocumentDetail {
	t.Helper()
	doc, err := s.documents.Create(asUser(owner), &service.CreateDocumentRequest{
		Title:          title,
		DocumentTypeID: typeID,
		FilePath:       "documents/" + title + ".pdf",
		FileSize:       1024,
		FileType:       "application/pdf",
	})
	require.NoError(t, err)
	return doc
}
