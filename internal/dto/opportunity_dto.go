package dto

import (
	"time"

	"github.com/advait122/ROADmap/internal/matching"
	"github.com/advait122/ROADmap/internal/models"
)

// OpportunityCreateRequest ingests one posting into the catalog.
type OpportunityCreateRequest struct {
	Title    string   `json:"title" validate:"required,min=2,max=255"`
	Company  string   `json:"company" validate:"required,max=255"`
	Type     string   `json:"type" validate:"omitempty,oneof=job internship hackathon"`
	Deadline string   `json:"deadline" validate:"omitempty,datetime=2006-01-02"`
	Skills   []string `json:"skills" validate:"required,min=1,max=40,dive,required,max=128"`
	URL      string   `json:"url" validate:"omitempty,url,max=1024"`
	Source   string   `json:"source" validate:"omitempty,max=128"`
}

// OpportunityResponse describes a catalog entry.
type OpportunityResponse struct {
	ID             uint     `json:"id"`
	Title          string   `json:"title"`
	Company        string   `json:"company"`
	Type           string   `json:"type"`
	Deadline       string   `json:"deadline,omitempty"`
	RequiredSkills []string `json:"required_skills"`
	URL            string   `json:"url"`
	Source         string   `json:"source"`
}

// MatchResponse describes one classified opportunity.
type MatchResponse struct {
	OpportunityID       uint     `json:"opportunity_id"`
	Title               string   `json:"title"`
	Company             string   `json:"company"`
	Type                string   `json:"type"`
	URL                 string   `json:"url"`
	Deadline            string   `json:"deadline,omitempty"`
	Bucket              string   `json:"bucket"`
	MatchScore          float64  `json:"match_score"`
	RequiredSkillsCount int      `json:"required_skills_count"`
	MatchedSkillsCount  int      `json:"matched_skills_count"`
	MissingSkills       []string `json:"missing_skills"`
	NextSkills          []string `json:"next_skills"`
	EligibleNow         bool     `json:"eligible_now"`
}

// BucketedMatchesResponse groups matches per eligibility bucket.
type BucketedMatchesResponse struct {
	EligibleNow    []MatchResponse `json:"eligible_now"`
	AlmostEligible []MatchResponse `json:"almost_eligible"`
	ComingSoon     []MatchResponse `json:"coming_soon"`
	Total          int             `json:"total"`
}

// MatchRefreshResponse summarises a classifier run.
type MatchRefreshResponse struct {
	Matches              BucketedMatchesResponse `json:"matches"`
	Evaluated            int                     `json:"evaluated"`
	NotificationsCreated int                     `json:"notifications_created"`
}

// ForecastItemResponse is an opportunity predicted to unlock soon.
type ForecastItemResponse struct {
	MatchResponse
	PredictedEligibleDate string   `json:"predicted_eligible_date"`
	SkillsToUnlock        []string `json:"skills_to_unlock"`
}

// ForecastResponse lists predicted unlocks within the horizon.
type ForecastResponse struct {
	HorizonDays int                    `json:"horizon_days"`
	Items       []ForecastItemResponse `json:"items"`
}

// NewOpportunityResponse converts a catalog model.
func NewOpportunityResponse(opportunity models.Opportunity) OpportunityResponse {
	response := OpportunityResponse{
		ID:             opportunity.ID,
		Title:          opportunity.Title,
		Company:        opportunity.Company,
		Type:           opportunity.Type,
		RequiredSkills: opportunity.RequiredSkills(),
		URL:            opportunity.URL,
		Source:         opportunity.Source,
	}
	if opportunity.Deadline != nil {
		response.Deadline = FormatDate(*opportunity.Deadline)
	}
	return response
}

// NewMatchResponse converts a classifier match.
func NewMatchResponse(match matching.Match) MatchResponse {
	return MatchResponse{
		OpportunityID:       match.OpportunityID,
		Title:               match.Title,
		Company:             match.Company,
		Type:                match.Type,
		URL:                 match.URL,
		Deadline:            formatOptionalDate(match.Deadline),
		Bucket:              match.Bucket,
		MatchScore:          match.Score,
		RequiredSkillsCount: match.RequiredCount,
		MatchedSkillsCount:  match.MatchedCount,
		MissingSkills:       nonNil(match.MissingSkills),
		NextSkills:          nonNil(match.NextSkills),
		EligibleNow:         match.EligibleNow,
	}
}

// NewBucketedMatchesResponse groups classifier matches, keeping their order.
func NewBucketedMatchesResponse(matches []matching.Match) BucketedMatchesResponse {
	grouped := matching.GroupByBucket(matches)
	return BucketedMatchesResponse{
		EligibleNow:    convertMatches(grouped[matching.BucketEligibleNow]),
		AlmostEligible: convertMatches(grouped[matching.BucketAlmostEligible]),
		ComingSoon:     convertMatches(grouped[matching.BucketComingSoon]),
		Total:          len(matches),
	}
}

// NewForecastItemResponse converts a forecast item.
func NewForecastItemResponse(item matching.ForecastItem) ForecastItemResponse {
	return ForecastItemResponse{
		MatchResponse:         NewMatchResponse(item.Match),
		PredictedEligibleDate: FormatDate(item.PredictedEligibleDate),
		SkillsToUnlock:        nonNil(item.SkillsToUnlock),
	}
}

// NewForecastItemResponseSlice converts forecast items.
func NewForecastItemResponseSlice(items []matching.ForecastItem) []ForecastItemResponse {
	out := make([]ForecastItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, NewForecastItemResponse(item))
	}
	return out
}

func convertMatches(matches []matching.Match) []MatchResponse {
	out := make([]MatchResponse, 0, len(matches))
	for _, match := range matches {
		out = append(out, NewMatchResponse(match))
	}
	return out
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
