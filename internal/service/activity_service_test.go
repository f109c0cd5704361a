package service_test

import (
	"context"
	"testing"

	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/GharOffice/docu-flow-realty-hub/internal/integration"
	"github.com/GharOffice/docu-flow-realty-hub/internal/repository"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestActivityService_ListByDocument 测试通过活动处理器记录的文档活动
func TestActivityService_ListByDocument(t *testing.T) {
	db := setupTestDB(t)
	handler := integration.NewActivityHandler(db, config.ActivityConfig{Workers: 1, QueueSize: 8}, nil, nil)
	t.Cleanup(handler.Stop)

	store := repository.NewWorkflowStore(db)
	types := service.NewDocumentTypeService(db)
	documents := service.NewDocumentService(db, handler, nil, nil)
	approvals := service.NewApprovalService(db, workflow.NewExecutor(store, nil, handler, nil), workflow.NewAggregator(store))
	activity := service.NewActivityService(db)

	docType, err := types.Create(context.Background(), &service.CreateDocumentTypeRequest{Name: "Lease", RequiredApprovals: 2})
	require.NoError(t, err)
	doc, err := documents.Create(asUser("owner"), &service.CreateDocumentRequest{Title: "Lease", DocumentTypeID: docType.ID})
	require.NoError(t, err)

	_, err = approvals.Approve(asUser("alice"), doc.ID, doc.Steps[0].ID, nil)
	require.NoError(t, err)
	_, err = approvals.Reject(asUser("bob"), doc.ID, doc.Steps[1].ID, &service.DecisionRequest{Comment: "wrong tenant"})
	require.NoError(t, err)
	require.NoError(t, documents.Comment(asUser("owner"), doc.ID, "will fix"))

	logs, err := activity.ListByDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	require.Len(t, logs, 4)

	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	assert.ElementsMatch(t, []string{"create", "approve", "reject", "comment"}, actions)

	for _, l := range logs {
		if l.Action == "reject" {
			assert.Equal(t, "wrong tenant", l.Details["comment"])
			assert.Equal(t, "rejected", l.Details["document_status"])
			assert.EqualValues(t, 2, l.Details["sequence"])
			assert.Equal(t, doc.Steps[1].ID, l.StepID)
		}
	}

	byUser, err := activity.ListByUser(context.Background(), "owner")
	require.NoError(t, err)
	assert.Len(t, byUser, 2)

	recent, err := activity.Recent(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	_, err = activity.ListByDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, workflow.ErrDocumentNotFound)
}
