package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/advait122/ROADmap/internal/matching"
	"github.com/advait122/ROADmap/internal/models"
)

const recentOpportunityOrder = "CASE WHEN deadline IS NULL THEN 1 ELSE 0 END ASC, deadline ASC, id DESC"

// OpportunityRepository reads the externally populated opportunity catalog.
type OpportunityRepository interface {
	Create(ctx context.Context, opportunity *models.Opportunity) error
	ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error)
	ListByCompany(ctx context.Context, company string, limit int) ([]models.Opportunity, error)
}

// MatchRepository stores the per-goal classification cache.
type MatchRepository interface {
	LoadExisting(ctx context.Context, goalID uint) (map[uint]matching.PreviousState, error)
	ReplaceAll(ctx context.Context, goalID uint, matches []models.OpportunityMatch) error
	ListWithOpportunities(ctx context.Context, goalID uint) ([]models.OpportunityMatch, error)
}

type opportunityRepository struct {
	db *gorm.DB
}

// NewOpportunityRepository constructs a GORM-backed opportunity repository.
func NewOpportunityRepository(db *gorm.DB) OpportunityRepository {
	return &opportunityRepository{db: db}
}

func (r *opportunityRepository) Create(ctx context.Context, opportunity *models.Opportunity) error {
	return r.db.WithContext(ctx).Create(opportunity).Error
}

// ListRecent returns opportunities with the soonest deadlines first; undated
// postings come last, newest first.
func (r *opportunityRepository) ListRecent(ctx context.Context, limit int) ([]models.Opportunity, error) {
	if limit <= 0 {
		limit = 250
	}
	var opportunities []models.Opportunity
	if err := r.db.WithContext(ctx).
		Order(recentOpportunityOrder).
		Limit(limit).
		Find(&opportunities).Error; err != nil {
		return nil, err
	}
	return opportunities, nil
}

func (r *opportunityRepository) ListByCompany(ctx context.Context, company string, limit int) ([]models.Opportunity, error) {
	company = strings.ToLower(strings.TrimSpace(company))
	if company == "" {
		return []models.Opportunity{}, nil
	}
	if limit <= 0 {
		limit = 120
	}
	var opportunities []models.Opportunity
	if err := r.db.WithContext(ctx).
		Where("LOWER(company) = ?", company).
		Order(recentOpportunityOrder).
		Limit(limit).
		Find(&opportunities).Error; err != nil {
		return nil, err
	}
	return opportunities, nil
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository constructs a GORM-backed match cache.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) LoadExisting(ctx context.Context, goalID uint) (map[uint]matching.PreviousState, error) {
	var rows []models.OpportunityMatch
	if err := r.db.WithContext(ctx).
		Select("opportunity_id", "bucket", "eligible_now").
		Where("goal_id = ?", goalID).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[uint]matching.PreviousState, len(rows))
	for _, row := range rows {
		out[row.OpportunityID] = matching.PreviousState{Bucket: row.Bucket, EligibleNow: row.EligibleNow}
	}
	return out, nil
}

// ReplaceAll swaps the goal's cached matches inside one transaction, so
// readers see either the old set or the new one.
func (r *matchRepository) ReplaceAll(ctx context.Context, goalID uint, matches []models.OpportunityMatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("goal_id = ?", goalID).Delete(&models.OpportunityMatch{}).Error; err != nil {
			return err
		}
		if len(matches) == 0 {
			return nil
		}
		for i := range matches {
			matches[i].ID = 0
			matches[i].GoalID = goalID
		}
		return tx.Omit("Opportunity").CreateInBatches(&matches, 200).Error
	})
}

func (r *matchRepository) ListWithOpportunities(ctx context.Context, goalID uint) ([]models.OpportunityMatch, error) {
	var rows []models.OpportunityMatch
	if err := r.db.WithContext(ctx).
		Preload("Opportunity").
		Where("goal_id = ?", goalID).
		Order("CASE bucket WHEN 'eligible_now' THEN 0 WHEN 'almost_eligible' THEN 1 ELSE 2 END ASC, match_score DESC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
