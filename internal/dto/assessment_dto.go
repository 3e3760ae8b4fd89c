package dto

import (
	"time"

	"github.com/advait122/ROADmap/internal/models"
)

// AssessmentQuestionResponse is a question as shown to the student, without its answer.
type AssessmentQuestionResponse struct {
	Index      int      `json:"index"`
	Topic      string   `json:"topic"`
	Difficulty string   `json:"difficulty"`
	Question   string   `json:"question"`
	Options    []string `json:"options"`
}

// AssessmentResponse describes an open skill test attempt.
type AssessmentResponse struct {
	AssessmentID uint                         `json:"assessment_id"`
	GoalSkillID  uint                         `json:"goal_skill_id"`
	SkillName    string                       `json:"skill_name"`
	AttemptNo    int                          `json:"attempt_no"`
	Questions    []AssessmentQuestionResponse `json:"questions"`
	StartedAt    time.Time                    `json:"started_at"`
	Deadline     time.Time                    `json:"deadline"`
}

// NewAssessmentResponse converts a stored attempt, dropping the answer key.
func NewAssessmentResponse(assessment models.SkillAssessment, skill models.GoalSkill, deadline time.Time) AssessmentResponse {
	questions := make([]AssessmentQuestionResponse, 0, len(assessment.Questions))
	for idx, question := range assessment.Questions {
		questions = append(questions, AssessmentQuestionResponse{
			Index:      idx,
			Topic:      question.Topic,
			Difficulty: question.Difficulty,
			Question:   question.Prompt,
			Options:    append([]string(nil), question.Options...),
		})
	}
	return AssessmentResponse{
		AssessmentID: assessment.ID,
		GoalSkillID:  assessment.GoalSkillID,
		SkillName:    skill.SkillName,
		AttemptNo:    assessment.AttemptNo,
		Questions:    questions,
		StartedAt:    assessment.CreatedAt,
		Deadline:     deadline,
	}
}

// AssessmentSubmitRequest carries the chosen option index per question, in question order.
type AssessmentSubmitRequest struct {
	Answers []int `json:"answers" validate:"required,min=1,max=50,dive,min=0,max=3"`
}

// AssessmentResultResponse describes a graded attempt and its effects.
type AssessmentResultResponse struct {
	AssessmentID         uint               `json:"assessment_id"`
	GoalSkillID          uint               `json:"goal_skill_id"`
	SkillName            string             `json:"skill_name"`
	AttemptNo            int                `json:"attempt_no"`
	ScorePercent         float64            `json:"score_percent"`
	Passed               bool               `json:"passed"`
	WeakTopics           []string           `json:"weak_topics"`
	StrongTopics         []string           `json:"strong_topics"`
	Feedback             string             `json:"feedback"`
	RevisionTasksCreated int                `json:"revision_tasks_created"`
	SkillStatus          string             `json:"skill_status"`
	NextSkill            *GoalSkillResponse `json:"next_skill,omitempty"`
	SubmittedAt          *time.Time         `json:"submitted_at"`
}

// NewAssessmentResultResponse converts a graded attempt.
func NewAssessmentResultResponse(assessment models.SkillAssessment, skill models.GoalSkill) AssessmentResultResponse {
	return AssessmentResultResponse{
		AssessmentID: assessment.ID,
		GoalSkillID:  assessment.GoalSkillID,
		SkillName:    skill.SkillName,
		AttemptNo:    assessment.AttemptNo,
		ScorePercent: assessment.ScorePercent,
		Passed:       assessment.Passed,
		WeakTopics:   nonNil(assessment.WeakTopics),
		StrongTopics: nonNil(assessment.StrongTopics),
		Feedback:     assessment.FeedbackText,
		SkillStatus:  skill.Status,
		SubmittedAt:  assessment.SubmittedAt,
	}
}
