package model_test

import (
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestApprovalStep_Predicates 测试步骤状态判断
func TestApprovalStep_Predicates(t *testing.T) {
	now := time.Now()
	pending := &model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: model.StepStatusPending}
	assert.True(t, pending.IsPending())
	assert.False(t, pending.IsTerminal())
	assert.False(t, pending.IsDecidedBy("alice"))
	assert.False(t, pending.IsAssignedTo("alice"))

	pending.ApproverID = strPtr("alice")
	assert.True(t, pending.IsAssignedTo("alice"))
	assert.False(t, pending.IsDecidedBy("alice"))

	approved := &model.ApprovalStepModel{
		ID: "s2", DocumentID: "d1", Sequence: 2,
		Status: model.StepStatusApproved, ApproverID: strPtr("bob"), DecidedAt: &now,
	}
	assert.True(t, approved.IsTerminal())
	assert.True(t, approved.IsDecidedBy("bob"))
	assert.False(t, approved.IsDecidedBy("alice"))
}

// TestApprovalStep_Validate 测试步骤字段校验
func TestApprovalStep_Validate(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		step    model.ApprovalStepModel
		wantErr bool
	}{
		{"pending", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: model.StepStatusPending}, false},
		{"decided", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: model.StepStatusRejected, DecidedAt: &now}, false},
		{"missing id", model.ApprovalStepModel{DocumentID: "d1", Sequence: 1, Status: model.StepStatusPending}, true},
		{"zero sequence", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Status: model.StepStatusPending}, true},
		{"bad status", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: "skipped"}, true},
		{"pending with decided_at", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: model.StepStatusPending, DecidedAt: &now}, true},
		{"approved without decided_at", model.ApprovalStepModel{ID: "s1", DocumentID: "d1", Sequence: 1, Status: model.StepStatusApproved}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestDocument_Validate 测试文档校验与默认状态
func TestDocument_Validate(t *testing.T) {
	doc := &model.DocumentModel{ID: "d1", Title: "Lease", DocumentTypeID: "lease", CreatedBy: "alice"}
	require.NoError(t, doc.Validate())
	assert.Equal(t, model.DocumentStatusDraft, doc.Status)

	assert.Error(t, (&model.DocumentModel{ID: "d1", DocumentTypeID: "lease", CreatedBy: "alice"}).Validate())
	assert.Error(t, (&model.DocumentModel{ID: "d1", Title: "Lease", CreatedBy: "alice"}).Validate())
	assert.Error(t, (&model.DocumentModel{ID: "d1", Title: "Lease", DocumentTypeID: "lease"}).Validate())

	assert.True(t, model.DocumentStatusApproved.IsFinal())
	assert.True(t, model.DocumentStatusRejected.IsFinal())
	assert.False(t, model.DocumentStatusPending.IsFinal())
	assert.False(t, model.DocumentStatusDraft.IsFinal())
}

// TestDocumentType_Approvers 测试预指派审批人
func TestDocumentType_Approvers(t *testing.T) {
	dt := &model.DocumentTypeModel{ID: "lease", Name: "Lease", RequiredApprovals: 2}
	assert.Nil(t, dt.Approvers())

	require.NoError(t, dt.SetApprovers([]string{"alice", "bob"}))
	assert.Equal(t, []string{"alice", "bob"}, dt.Approvers())
	assert.NoError(t, dt.Validate())

	require.NoError(t, dt.SetApprovers([]string{"alice", "bob", "carol"}))
	assert.Error(t, dt.Validate())

	require.NoError(t, dt.SetApprovers(nil))
	assert.Empty(t, dt.ApproverIDs)

	dt.ApproverIDs = "not json"
	assert.Nil(t, dt.Approvers())

	assert.Error(t, (&model.DocumentTypeModel{ID: "x", Name: "X"}).Validate())
	assert.Error(t, (&model.DocumentTypeModel{ID: "x", Name: "X", RequiredApprovals: 1, SLADays: -1}).Validate())
}

// TestActivityLog_Details 测试活动详情序列化
func TestActivityLog_Details(t *testing.T) {
	a := &model.ActivityLogModel{ID: "a1", Action: "approve", DocumentID: "d1"}
	require.NoError(t, a.Validate())
	assert.Nil(t, a.DetailsMap())

	require.NoError(t, a.SetDetails(map[string]interface{}{"sequence": 2, "comment": "ok"}))
	details := a.DetailsMap()
	assert.EqualValues(t, 2, details["sequence"])
	assert.Equal(t, "ok", details["comment"])

	require.NoError(t, a.SetDetails(nil))
	assert.Empty(t, a.Details)

	assert.Error(t, (&model.ActivityLogModel{ID: "a1", DocumentID: "d1"}).Validate())
}
