package service

import "errors"

// ErrStudentNotFound is returned when the student record does not exist.
var ErrStudentNotFound = errors.New("student not found")

// ErrNoActiveGoal indicates the student has not set a career goal.
var ErrNoActiveGoal = errors.New("no active goal found for this student")

// ErrNoActivePlan indicates the active goal has no roadmap plan.
var ErrNoActivePlan = errors.New("no active roadmap plan found")

// ErrSkillNotFound is returned for goal skills outside the active goal.
var ErrSkillNotFound = errors.New("skill not found for current goal")

// ErrSkillLocked is returned when work targets a skill other than the active one.
var ErrSkillLocked = errors.New("skill is locked")

// ErrTaskNotFound is returned when the task is not part of the active plan.
var ErrTaskNotFound = errors.New("task not found for this student")

// ErrAllSkillsCompleted indicates every goal skill is already mastered.
var ErrAllSkillsCompleted = errors.New("all skills are already completed")

// ErrSkillNotReady is returned when a skill test is requested before the skill's tasks are done.
var ErrSkillNotReady = errors.New("skill is not ready for assessment")

// ErrNoKnownSkills is returned when onboarding lists no current skill.
var ErrNoKnownSkills = errors.New("add at least one current skill")

// ErrAssessmentNotFound is returned when the attempt does not belong to the student's active goal.
var ErrAssessmentNotFound = errors.New("skill test not found")

// ErrAssessmentExpired is returned when an attempt is submitted after its time limit.
var ErrAssessmentExpired = errors.New("skill test time limit exceeded, start a new attempt")

// ErrIncompleteAnswers is returned when a submission does not answer every question.
var ErrIncompleteAnswers = errors.New("answer every question before submitting")

// ErrNoRequiredSkills is returned when a company job lists no usable skill.
var ErrNoRequiredSkills = errors.New("add at least one required skill")

// ErrDeadlineInPast is returned when a job's application deadline is before today.
var ErrDeadlineInPast = errors.New("application deadline cannot be in the past")

// ErrCompanyJobNotFound is returned when the job does not exist or belongs to another company.
var ErrCompanyJobNotFound = errors.New("job not found for this company")

// ErrInviteNotFound is returned when the student was not invited to the job.
var ErrInviteNotFound = errors.New("no invitation found for this job")

// ErrInviteAnswered is returned when the student already responded to the invitation.
var ErrInviteAnswered = errors.New("you already responded to this invitation")

// ErrInviteExpired is returned when the job's application deadline has passed.
var ErrInviteExpired = errors.New("this job invitation has expired")
