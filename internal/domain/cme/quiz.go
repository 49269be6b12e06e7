package cme

import (
	"fmt"
	"math"
)

// QuestionResult is the marking of one answer.
type QuestionResult struct {
	Question    string `json:"question"`
	Given       int    `json:"given"`
	Answer      int    `json:"answer"`
	Correct     bool   `json:"correct"`
	Explanation string `json:"explanation"`
}

type QuizResult struct {
	ModuleID   string           `json:"module_id"`
	TopicID    string           `json:"topic_id"`
	Correct    int              `json:"correct"`
	Total      int              `json:"total"`
	Percentage float64          `json:"percentage"`
	Passed     bool             `json:"passed"`
	Questions  []QuestionResult `json:"questions"`
}

// GradeQuiz marks one answer per question. An answer of -1 means the question
// was skipped and counts as wrong.
func (l *Library) GradeQuiz(moduleID, topicID string, answers []int) (QuizResult, error) {
	t, err := l.GetTopic(moduleID, topicID)
	if err != nil {
		return QuizResult{}, err
	}
	if len(t.Quiz) == 0 {
		return QuizResult{}, fmt.Errorf("topic %s/%s has no quiz", moduleID, topicID)
	}
	if len(answers) != len(t.Quiz) {
		return QuizResult{}, fmt.Errorf("expected %d answers, got %d", len(t.Quiz), len(answers))
	}

	r := QuizResult{ModuleID: moduleID, TopicID: topicID, Total: len(t.Quiz)}
	for i, q := range t.Quiz {
		given := answers[i]
		if given < -1 || given >= len(q.Options) {
			return QuizResult{}, fmt.Errorf("answer %d: option %d out of range", i+1, given)
		}
		ok := given == q.Answer
		if ok {
			r.Correct++
		}
		r.Questions = append(r.Questions, QuestionResult{
			Question:    q.Question,
			Given:       given,
			Answer:      q.Answer,
			Correct:     ok,
			Explanation: q.Explanation,
		})
	}
	r.Percentage = math.Round(float64(r.Correct)/float64(r.Total)*1000) / 10
	r.Passed = r.Percentage >= PassMark
	return r, nil
}
