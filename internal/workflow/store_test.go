package workflow_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/workflow"
	"github.com/stretchr/testify/require"
)

// memStore 内存实现的 workflow.Store,可注入条件写入失败
type memStore struct {
	mu    sync.Mutex
	docs  map[string]*model.DocumentModel
	types map[string]*model.DocumentTypeModel
	steps map[string][]*model.ApprovalStepModel

	// casFailures 接下来若干次 CompareAndSwapStep 直接返回 false
	casFailures int
	casCalls    int
}

func newMemStore() *memStore {
	return &memStore{
		docs:  make(map[string]*model.DocumentModel),
		types: make(map[string]*model.DocumentTypeModel),
		steps: make(map[string][]*model.ApprovalStepModel),
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx workflow.Store) error) error {
	return fn(s)
}

func (s *memStore) GetDocument(ctx context.Context, id string, lock bool) (*model.DocumentModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, id)
	}
	cp := *doc
	return &cp, nil
}

func (s *memStore) GetDocumentType(ctx context.Context, id string) (*model.DocumentTypeModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.types[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", workflow.ErrDocumentTypeNotFound, id)
	}
	cp := *t
	return &cp, nil
}

func (s *memStore) ListSteps(ctx context.Context, documentID string) ([]*model.ApprovalStepModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ApprovalStepModel, 0, len(s.steps[documentID]))
	for _, st := range s.steps[documentID] {
		cp := *st
		out = append(out, &cp)
	}
	return workflow.SortSteps(out), nil
}

func (s *memStore) InsertSteps(ctx context.Context, steps []*model.ApprovalStepModel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range steps {
		for _, existing := range s.steps[st.DocumentID] {
			if existing.Sequence == st.Sequence {
				return workflow.ErrDuplicateSequence
			}
		}
		cp := *st
		s.steps[st.DocumentID] = append(s.steps[st.DocumentID], &cp)
	}
	return nil
}

func (s *memStore) CompareAndSwapStep(ctx context.Context, stepID string, expected model.StepStatus, d workflow.StepDecision) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.casCalls++
	if s.casFailures > 0 {
		s.casFailures--
		return false, nil
	}
	for _, steps := range s.steps {
		for _, st := range steps {
			if st.ID != stepID {
				continue
			}
			if st.Status != expected {
				return false, nil
			}
			st.Status = d.Status
			if st.ApproverID == nil && d.ApproverID != "" {
				approver := d.ApproverID
				st.ApproverID = &approver
			}
			st.Comment = d.Comment
			decidedAt := d.DecidedAt
			st.DecidedAt = &decidedAt
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) UpdateDocumentStatus(ctx context.Context, documentID string, status model.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[documentID]
	if !ok {
		return fmt.Errorf("%w: %s", workflow.ErrDocumentNotFound, documentID)
	}
	doc.Status = status
	return nil
}

// seed 创建一个文档类型和一个草稿文档,approvers 按位置预指派
func (s *memStore) seed(t *testing.T, docID string, required int, approvers ...string) {
	t.Helper()
	docType := &model.DocumentTypeModel{
		ID:                "type-" + docID,
		Name:              "Type " + docID,
		RequiredApprovals: required,
	}
	require.NoError(t, docType.SetApprovers(approvers))
	s.types[docType.ID] = docType
	s.docs[docID] = &model.DocumentModel{
		ID:             docID,
		Title:          "Document " + docID,
		DocumentTypeID: docType.ID,
		CreatedBy:      "owner",
		Status:         model.DocumentStatusDraft,
		CreatedAt:      time.Now(),
	}
}

func (s *memStore) stepAt(docID string, seq int) *model.ApprovalStepModel {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.steps[docID] {
		if st.Sequence == seq {
			cp := *st
			return &cp
		}
	}
	return nil
}

func (s *memStore) status(docID string) model.DocumentStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.docs[docID].Status
}

// recordingSink 记录收到的活动事件
type recordingSink struct {
	mu     sync.Mutex
	events []*workflow.ActivityEvent
	err    error
}

func (r *recordingSink) Record(ctx context.Context, evt *workflow.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return r.err
}

func (r *recordingSink) Events() []*workflow.ActivityEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*workflow.ActivityEvent(nil), r.events...)
}
