package cmd_test

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/GharOffice/docu-flow-realty-hub/cmd"
	"github.com/GharOffice/docu-flow-realty-hub/internal/auth"
	"github.com/GharOffice/docu-flow-realty-hub/internal/config"
	"github.com/GharOffice/docu-flow-realty-hub/internal/database"
	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
	"github.com/GharOffice/docu-flow-realty-hub/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestRenderSteps 测试步骤表格渲染
func TestRenderSteps(t *testing.T) {
	decided := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	steps := []*model.ApprovalStepModel{
		{ID: "step-b", DocumentID: "d1", Sequence: 2, Status: model.StepStatusPending},
		{ID: "step-a", DocumentID: "d1", Sequence: 1, Status: model.StepStatusApproved,
			ApproverID: strPtr("alice"), Comment: strPtr("inspection passed"), DecidedAt: &decided},
		{ID: "step-c", DocumentID: "d1", Sequence: 3, Status: model.StepStatusPending, ApproverID: strPtr("carol")},
	}

	out := cmd.RenderSteps(steps)
	assert.Contains(t, out, "step-a")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "inspection passed")
	assert.Contains(t, out, "2025-03-01 09:30")
	assert.Contains(t, out, "carol")
	assert.Contains(t, out, "*")

	// 按 sequence 排序输出
	assert.Less(t, bytes.Index([]byte(out), []byte("step-a")), bytes.Index([]byte(out), []byte("step-b")))
	assert.Less(t, bytes.Index([]byte(out), []byte("step-b")), bytes.Index([]byte(out), []byte("step-c")))
}

// TestRenderSteps_NoAvailable 测试已完成流程无标记
func TestRenderSteps_NoAvailable(t *testing.T) {
	decided := time.Now()
	out := cmd.RenderSteps([]*model.ApprovalStepModel{
		{ID: "only", DocumentID: "d1", Sequence: 1, Status: model.StepStatusRejected, DecidedAt: &decided, Comment: strPtr("no")},
	})
	assert.Contains(t, out, "rejected")
	assert.NotContains(t, out, "*")
}

// TestCommands_SeedAndInspect 测试迁移、种子导入和检查命令
func TestCommands_SeedAndInspect(t *testing.T) {
	t.Setenv("APP_ENV", "")
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "docu.db")
	configPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(fmt.Sprintf(`
database:
  driver: sqlite
  path: %s
  connect_retries: 1
log:
  level: error
`, dbPath)), 0o644))

	seedPath := filepath.Join(dir, "types.yaml")
	require.NoError(t, os.WriteFile(seedPath, []byte(`
document_types:
  - id: purchase
    name: Purchase Agreement
    required_approvals: 2
    sla_days: 5
    approver_ids: [alice]
`), 0o644))

	root := cmd.GetRootCmd()
	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetErr(&out)
		root.SetArgs(append(args, "--config", configPath))
		err := root.ExecuteContext(context.Background())
		return out.String(), err
	}

	_, err := run("migrate")
	require.NoError(t, err)
	_, err = run("seed", seedPath)
	require.NoError(t, err)
	// 重复导入跳过已存在类型
	_, err = run("seed", seedPath)
	require.NoError(t, err)

	db, err := database.Connect(config.DatabaseConfig{Driver: "sqlite", Path: dbPath})
	require.NoError(t, err)
	ctx := auth.WithUserID(context.Background(), "owner")
	doc, err := service.NewDocumentService(db, nil, nil, nil).Create(ctx, &service.CreateDocumentRequest{
		Title: "44 Oak Ave", DocumentTypeID: "purchase",
	})
	require.NoError(t, err)
	require.NoError(t, database.Close(db))

	out, err := run("inspect", doc.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "44 Oak Ave")
	assert.Contains(t, out, "[pending]")
	assert.Contains(t, out, "alice")
	assert.Contains(t, out, "sequence check: ok")
	assert.NotContains(t, out, "status drift")

	_, err = run("inspect", "no-such-doc")
	assert.Error(t, err)
}
