package matching

import (
	"fmt"
	"strings"
	"time"

	"github.com/advait122/ROADmap/internal/roadmap"
)

// Notification types emitted on eligibility transitions.
const (
	EventNewlyEligible = "newly_eligible"
	EventDeadlineAlert = "deadline_alert"
)

// DeadlineAlertDays is the window before a deadline in which alerts fire.
const DeadlineAlertDays = 10

// PreviousState is the cached classification of an opportunity before a refresh.
type PreviousState struct {
	Bucket      string
	EligibleNow bool
}

// Event is a notification produced by a state transition.
type Event struct {
	Type          string
	Title         string
	Body          string
	OpportunityID uint
}

// DetectTransitions compares freshly ranked matches with the cache loaded
// before it is replaced. Each event fires only when the relevant state changed,
// so repeated refreshes over unchanged inputs emit nothing.
func DetectTransitions(matches []Match, previous map[uint]PreviousState, today time.Time) []Event {
	today = roadmap.Day(today)
	events := make([]Event, 0)

	for _, match := range matches {
		prev, seen := previous[match.OpportunityID]

		if match.EligibleNow && (!seen || !prev.EligibleNow) {
			events = append(events, Event{
				Type:          EventNewlyEligible,
				Title:         "Newly Eligible Opportunity",
				Body:          fmt.Sprintf("You are now eligible for %s at %s.", match.Title, match.Company),
				OpportunityID: match.OpportunityID,
			})
		}

		if match.Deadline == nil {
			continue
		}
		daysLeft := roadmap.DaysBetween(today, *match.Deadline)
		if daysLeft < 0 || daysLeft > DeadlineAlertDays {
			continue
		}
		if match.Bucket != BucketEligibleNow && match.Bucket != BucketAlmostEligible {
			continue
		}
		if seen && prev.Bucket == match.Bucket {
			continue
		}
		events = append(events, Event{
			Type:  EventDeadlineAlert,
			Title: "Opportunity Deadline Soon",
			Body: fmt.Sprintf("%s (%s) closes in %d day(s). Status: %s.",
				match.Title, match.Company, daysLeft, strings.ReplaceAll(match.Bucket, "_", " ")),
			OpportunityID: match.OpportunityID,
		})
	}

	return events
}

// Snapshot turns a ranked list into the state the next refresh compares against.
func Snapshot(matches []Match) map[uint]PreviousState {
	out := make(map[uint]PreviousState, len(matches))
	for _, match := range matches {
		out[match.OpportunityID] = PreviousState{Bucket: match.Bucket, EligibleNow: match.EligibleNow}
	}
	return out
}
