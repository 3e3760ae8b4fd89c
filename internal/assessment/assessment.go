package assessment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/advait122/ROADmap/internal/models"
)

const (
	// Duration is the time a student has to submit an attempt.
	Duration = 30 * time.Minute
	// SubmitGrace absorbs network and clock skew at the deadline.
	SubmitGrace = 90 * time.Second
	// OptionCount is the number of choices offered per question.
	OptionCount = 4
)

// ErrAnswerCount is returned when a submission does not answer every question.
var ErrAnswerCount = errors.New("answer count does not match question count")

type template struct {
	topic      string
	difficulty string
	prompt     string
	// options[0] is the correct answer.
	options [OptionCount]string
}

var bank = []template{
	{"Purpose", "basic", "Which statement best describes the purpose of %s?", [OptionCount]string{
		"It is used to solve practical software problems using %s.",
		"It is mainly for non-technical tasks unrelated to software.",
		"It cannot be used in real projects.",
		"It is only useful for hardware manufacturing.",
	}},
	{"Core Concepts", "basic", "When starting %s, what should be learned first?", [OptionCount]string{
		"Core concepts and fundamentals.",
		"Only advanced edge cases.",
		"Interview answers without understanding.",
		"Tool shortcuts without concepts.",
	}},
	{"Workflow", "basic", "What is a strong learning workflow for %s?", [OptionCount]string{
		"Learn concept, see an example, then practice independently.",
		"Memorize solutions and skip practice.",
		"Watch random videos without continuity.",
		"Start with highly advanced topics only.",
	}},
	{"Validation", "basic", "How can a student validate progress in %s?", [OptionCount]string{
		"By solving tasks and explaining why the solution works.",
		"By only watching videos and avoiding exercises.",
		"By skipping revision and tests.",
		"By copying answers without checking logic.",
	}},
	{"Troubleshooting", "basic", "What should a student do when stuck on a %s problem?", [OptionCount]string{
		"Break the problem down, review basics, and retry with smaller steps.",
		"Ignore the problem and move to unrelated topics.",
		"Memorize one solution and never revisit.",
		"Stop practicing until the next test.",
	}},
	{"Practice Strategy", "basic", "What is the best long-term way to improve %s?", [OptionCount]string{
		"Consistent practice with increasing difficulty.",
		"One-time practice right before tests.",
		"Only reading theory once.",
		"Avoiding feedback and corrections.",
	}},
	{"Real-World Use", "basic", "How is %s most commonly used in career preparation?", [OptionCount]string{
		"Applying concepts in projects, assignments, and interviews.",
		"Keeping it separate from practical work.",
		"Using it only for non-technical communication.",
		"Avoiding it in problem-solving contexts.",
	}},
	{"Revision", "basic", "What is the role of revision in mastering %s?", [OptionCount]string{
		"It strengthens retention and fixes weak areas.",
		"It is unnecessary if one playlist was watched once.",
		"It reduces practical ability.",
		"It should replace all problem-solving.",
	}},
	{"Application Depth", "medium", "Which outcome best indicates medium-level understanding of %s?", [OptionCount]string{
		"You can adapt concepts to solve new but related problems.",
		"You can only repeat one memorized example.",
		"You avoid unfamiliar variations completely.",
		"You rely only on copied templates.",
	}},
	{"Improvement Planning", "medium", "After receiving weak-topic feedback in %s, what is the best next step?", [OptionCount]string{
		"Create a targeted revision plan and retest after practice.",
		"Skip weak topics and move to a different skill immediately.",
		"Retake the test without any revision.",
		"Stop using feedback in future learning.",
	}},
}

// Build renders the question bank for a skill and returns the questions with
// their answer key. Options rotate with the attempt number so the position of
// the correct answer differs between questions and between attempts.
func Build(skillName string, attempt int) ([]models.AssessmentQuestion, []int) {
	name := strings.TrimSpace(skillName)
	questions := make([]models.AssessmentQuestion, 0, len(bank))
	key := make([]int, 0, len(bank))

	for idx, item := range bank {
		shift := (idx + attempt) % OptionCount
		if shift < 0 {
			shift += OptionCount
		}
		options := make([]string, OptionCount)
		for pos := range options {
			options[pos] = render(item.options[(pos+shift)%OptionCount], name)
		}
		questions = append(questions, models.AssessmentQuestion{
			Topic:      item.topic,
			Difficulty: item.difficulty,
			Prompt:     render(item.prompt, name),
			Options:    options,
		})
		key = append(key, (OptionCount-shift)%OptionCount)
	}
	return questions, key
}

func render(text, skillName string) string {
	if strings.Contains(text, "%s") {
		return fmt.Sprintf(text, skillName)
	}
	return text
}

// TopicScore is the graded tally of one topic.
type TopicScore struct {
	Topic   string
	Correct int
	Total   int
}

// Result is a graded attempt.
type Result struct {
	Correct      int
	Total        int
	ScorePercent float64
	Passed       bool
	Topics       []TopicScore
	Weak         []string
	Strong       []string
}

// Grade scores answers against the stored key. Topics keep question order.
func Grade(questions []models.AssessmentQuestion, key, answers []int) (Result, error) {
	if len(answers) != len(key) {
		return Result{}, fmt.Errorf("%w: got %d, want %d", ErrAnswerCount, len(answers), len(key))
	}

	result := Result{Total: len(key)}
	index := make(map[string]int)
	for idx, expected := range key {
		topic := "General"
		if idx < len(questions) {
			if trimmed := strings.TrimSpace(questions[idx].Topic); trimmed != "" {
				topic = trimmed
			}
		}
		pos, ok := index[topic]
		if !ok {
			pos = len(result.Topics)
			index[topic] = pos
			result.Topics = append(result.Topics, TopicScore{Topic: topic})
		}
		result.Topics[pos].Total++
		if answers[idx] == expected {
			result.Topics[pos].Correct++
			result.Correct++
		}
	}

	if result.Total > 0 {
		result.ScorePercent = float64(result.Correct) / float64(result.Total) * 100
	}
	result.Passed = result.ScorePercent >= models.PassThresholdPercent
	result.Weak, result.Strong = Outcome(result.Topics)
	return result, nil
}

// Outcome splits topics into weak (<50%) and strong (>=80%) ones.
func Outcome(topics []TopicScore) ([]string, []string) {
	weak := make([]string, 0)
	strong := make([]string, 0)
	for _, topic := range topics {
		name := strings.TrimSpace(topic.Topic)
		if name == "" {
			name = "General"
		}
		total := max(topic.Total, 1)
		percent := float64(topic.Correct) / float64(total) * 100
		switch {
		case percent < models.WeakTopicPercent:
			weak = append(weak, name)
		case percent >= models.StrongTopicPercent:
			strong = append(strong, name)
		}
	}
	return weak, strong
}

// Feedback summarises a graded attempt for the student.
func Feedback(score float64, passed bool, weak, strong []string) string {
	weakText := "None"
	if len(weak) > 0 {
		weakText = strings.Join(weak, ", ")
	}
	strongText := "None"
	if len(strong) > 0 {
		strongText = strings.Join(strong, ", ")
	}
	status := "Failed"
	action := "Revision tasks added. Complete them and retake."
	if passed {
		status = "Passed"
		action = "Move to next skill."
	}
	return fmt.Sprintf("Score: %.1f%% (%s). Weak topics: %s. Strong topics: %s. %s", score, status, weakText, strongText, action)
}

// Deadline is when an attempt started at createdAt must be submitted.
func Deadline(createdAt time.Time) time.Time {
	return createdAt.Add(Duration)
}

// Expired reports whether an attempt can no longer be submitted at now.
func Expired(createdAt, now time.Time) bool {
	return now.After(Deadline(createdAt).Add(SubmitGrace))
}
