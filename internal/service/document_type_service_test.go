package service_test

import (
	"context"
	"testing"

	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDocumentTypeService_Create 测试创建文档类型
func TestDocumentTypeService_Create(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	view, err := s.types.Create(ctx, &service.CreateDocumentTypeRequest{
		ID:                "purchase-agreement",
		Name:              "  Purchase Agreement ",
		Description:       "Sale of property",
		RequiredApprovals: 3,
		SLADays:           5,
		ApproverIDs:       []string{"alice", "", "carol"},
	})
	require.NoError(t, err)
	assert.Equal(t, "purchase-agreement", view.ID)
	assert.Equal(t, "Purchase Agreement", view.Name)
	assert.Equal(t, []string{"alice", "", "carol"}, view.ApproverIDs)

	got, err := s.types.Get(ctx, "purchase-agreement")
	require.NoError(t, err)
	assert.Equal(t, 3, got.RequiredApprovals)
	assert.Equal(t, 5, got.SLADays)
	assert.Equal(t, view.ApproverIDs, got.ApproverIDs)

	generated := s.createType(t, "Lease", 1, 0)
	assert.NotEmpty(t, generated.ID)
	assert.Equal(t, []string{}, generated.ApproverIDs)

	list, err := s.types.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

// TestDocumentTypeService_CreateInvalid 测试非法的文档类型配置
func TestDocumentTypeService_CreateInvalid(t *testing.T) {
	s := setupServices(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		req     *service.CreateDocumentTypeRequest
		wantErr error
	}{
		{"zero approvals", &service.CreateDocumentTypeRequest{Name: "A", RequiredApprovals: 0}, workflow.ErrInvalidConfiguration},
		{"negative approvals", &service.CreateDocumentTypeRequest{Name: "A", RequiredApprovals: -1}, workflow.ErrInvalidConfiguration},
		{"too many approvers", &service.CreateDocumentTypeRequest{Name: "A", RequiredApprovals: 1, ApproverIDs: []string{"a", "b"}}, workflow.ErrInvalidConfiguration},
		{"blank name", &service.CreateDocumentTypeRequest{Name: "  ", RequiredApprovals: 1}, service.ErrInvalidInput},
		{"negative sla", &service.CreateDocumentTypeRequest{Name: "A", RequiredApprovals: 1, SLADays: -1}, service.ErrInvalidInput},
		{"bad approver id", &service.CreateDocumentTypeRequest{Name: "A", RequiredApprovals: 1, ApproverIDs: []string{"bad id"}}, service.ErrInvalidInput},
		{"bad type id", &service.CreateDocumentTypeRequest{ID: "a/b", Name: "A", RequiredApprovals: 1}, service.ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.types.Create(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// TestDocumentTypeService_Duplicate 测试重复名称
func TestDocumentTypeService_Duplicate(t *testing.T) {
	s := setupServices(t)
	s.createType(t, "Lease", 1, 0)

	_, err := s.types.Create(context.Background(), &service.CreateDocumentTypeRequest{Name: "Lease", RequiredApprovals: 2})
	assert.ErrorIs(t, err, service.ErrDocumentTypeExists)
}

// TestDocumentTypeService_GetNotFound 测试获取不存在的类型
func TestDocumentTypeService_GetNotFound(t *testing.T) {
	s := setupServices(t)

	_, err := s.types.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, workflow.ErrDocumentTypeNotFound)
}
