package workflow

import (
	"fmt"
	"sort"

	"github.com/GharOffice/docu-flow-realty-hub/internal/model"
)

// SortSteps 返回按 sequence 升序排列的步骤副本
func SortSteps(steps []*model.ApprovalStepModel) []*model.ApprovalStepModel {
	ordered := make([]*model.ApprovalStepModel, len(steps))
	copy(ordered, steps)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Sequence < ordered[j].Sequence
	})
	return ordered
}

// AvailableStep 返回当前可决策的步骤
// 可决策步骤是 sequence 最小的 pending 步骤,且其前一步不存在或已通过;
// 任一步骤被拒绝后整个流程停止,返回 nil
func AvailableStep(steps []*model.ApprovalStepModel) *model.ApprovalStepModel {
	bySequence := make(map[int]*model.ApprovalStepModel, len(steps))
	for _, s := range steps {
		if s.Status == model.StepStatusRejected {
			return nil
		}
		bySequence[s.Sequence] = s
	}

	for _, s := range SortSteps(steps) {
		if !s.IsPending() {
			continue
		}
		if s.Sequence == 1 {
			return s
		}
		prev, ok := bySequence[s.Sequence-1]
		if ok && prev.Status == model.StepStatusApproved {
			return s
		}
		return nil
	}
	return nil
}

// AvailableStepFor 返回 userID 可以处理的当前步骤
// 步骤未指派或指派给 userID 时返回,否则返回 nil
func AvailableStepFor(steps []*model.ApprovalStepModel, userID string) *model.ApprovalStepModel {
	step := AvailableStep(steps)
	if step == nil {
		return nil
	}
	if step.ApproverID != nil && *step.ApproverID != userID {
		return nil
	}
	return step
}

// ValidateSequence 校验一组步骤满足顺序审批约束
func ValidateSequence(steps []*model.ApprovalStepModel) error {
	ordered := SortSteps(steps)
	rejectedAt := 0
	for i, s := range ordered {
		if s.Sequence != i+1 {
			return fmt.Errorf("step sequence %d is not contiguous (expected %d)", s.Sequence, i+1)
		}
		if s.IsPending() != (s.DecidedAt == nil) {
			return fmt.Errorf("step %d decided_at does not match status %q", s.Sequence, s.Status)
		}
		if rejectedAt > 0 && !s.IsPending() {
			return fmt.Errorf("step %d was decided after step %d was rejected", s.Sequence, rejectedAt)
		}
		if s.Status == model.StepStatusRejected {
			rejectedAt = s.Sequence
		}
		if !s.IsPending() && i > 0 && ordered[i-1].Status != model.StepStatusApproved {
			return fmt.Errorf("step %d is %q but step %d is %q", s.Sequence, s.Status, i, ordered[i-1].Status)
		}
	}
	return nil
}
