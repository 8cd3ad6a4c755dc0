package service

import (
	"fmt"
	"lingo_backend/internal/config"
	"lingo_backend/internal/model"
	"sort"
	"time"
)

// GroupingStrategy 把原始作答记录重建为完整的作答会话
type GroupingStrategy func(attempts []model.QuestionAttempt, questionIDs []uint) []model.AttemptSession

// GroupingFor 根据配置选择策略，未知值按 batch 处理
func GroupingFor(name string) GroupingStrategy {
	if name == config.GroupingBucket {
		return GroupByBucket
	}
	return GroupByBatch
}

// BucketKey floor(submittedAt / 5min)
func BucketKey(t time.Time) int64 {
	width := int64(model.BucketWidth / time.Second)
	secs := t.Unix()
	key := secs / width
	if secs%width < 0 {
		key--
	}
	return key
}

func bucketGroup(t time.Time) string {
	return fmt.Sprintf("bucket:%d", BucketKey(t))
}

// GroupByBucket 旧系统的行为：同一个 5 分钟桶内的作答视为一次会话。
// 跨越桶边界的作答会被拆开并丢弃。
func GroupByBucket(attempts []model.QuestionAttempt, questionIDs []uint) []model.AttemptSession {
	return groupSessions(attempts, questionIDs, func(a model.QuestionAttempt) string {
		return bucketGroup(a.SubmittedAt)
	})
}

// GroupByBatch 按提交批次归并，没有批次 ID 的历史数据退回到时间桶
func GroupByBatch(attempts []model.QuestionAttempt, questionIDs []uint) []model.AttemptSession {
	return groupSessions(attempts, questionIDs, func(a model.QuestionAttempt) string {
		if a.SubmissionBatchID != "" {
			return "batch:" + a.SubmissionBatchID
		}
		return bucketGroup(a.SubmittedAt)
	})
}

func groupSessions(attempts []model.QuestionAttempt, questionIDs []uint, keyOf func(model.QuestionAttempt) string) []model.AttemptSession {
	wanted := make(map[uint]bool, len(questionIDs))
	for _, id := range questionIDs {
		wanted[id] = true
	}
	if len(wanted) == 0 {
		return nil
	}

	sorted := make([]model.QuestionAttempt, len(attempts))
	copy(sorted, attempts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SubmittedAt.Before(sorted[j].SubmittedAt)
	})

	var order []string
	groups := make(map[string]map[uint]model.QuestionAttempt)
	for _, a := range sorted {
		if !wanted[a.QuestionID] {
			continue
		}
		key := keyOf(a)
		g, ok := groups[key]
		if !ok {
			g = make(map[uint]model.QuestionAttempt)
			groups[key] = g
			order = append(order, key)
		}
		// 同一组内重复作答同一题时保留最后一次
		g[a.QuestionID] = a
	}

	sessions := make([]model.AttemptSession, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g) != len(wanted) {
			continue
		}

		picked := make([]model.QuestionAttempt, 0, len(g))
		for _, id := range questionIDs {
			if a, ok := g[id]; ok {
				picked = append(picked, a)
				delete(g, id)
			}
		}
		sessions = append(sessions, ScoreSession(key, picked, len(wanted)))
	}
	return sessions
}

// ScoreSession 计算一次完整会话的得分
func ScoreSession(key string, attempts []model.QuestionAttempt, totalQuestions int) model.AttemptSession {
	correct := 0
	var last time.Time
	for _, a := range attempts {
		if a.IsCorrect {
			correct++
		}
		if a.SubmittedAt.After(last) {
			last = a.SubmittedAt
		}
	}

	score := ScorePercent(correct, totalQuestions)
	return model.AttemptSession{
		Key:            key,
		Attempts:       attempts,
		TotalQuestions: totalQuestions,
		CorrectCount:   correct,
		ScorePercent:   score,
		Passed:         score >= model.PassThreshold,
		SubmittedAt:    last,
	}
}

// ScorePercent round(correct / total * 100)，四舍五入（half up）
func ScorePercent(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return (correct*200 + total) / (2 * total)
}

// FoldStatus 汇总所有有效会话；通过一次即永久通过
func FoldStatus(sessions []model.AttemptSession, hasQuestions bool) *model.MasteryStatus {
	status := &model.MasteryStatus{HasQuestions: hasQuestions}
	if !hasQuestions {
		return status
	}

	for _, s := range sessions {
		if s.ScorePercent > status.BestScore {
			status.BestScore = s.ScorePercent
		}
		status.HasPassed = status.HasPassed || s.Passed
		status.CompleteAttemptCount++
	}
	status.CanAttempt = !status.HasPassed
	return status
}
