package pools

import (
	"context"

	"github.com/joefazee/toto/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new pools repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) GetRound(ctx context.Context, roundID int64) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).Where("id = ?", roundID).First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) GetRoundForUpdate(ctx context.Context, roundID int64) (*models.Round, error) {
	var round models.Round
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", roundID).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *repository) UpdateRound(ctx context.Context, round *models.Round) error {
	if err := round.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(round).Error
}

func (r *repository) CreateMatchPool(ctx context.Context, pool *models.MatchPool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(pool).Error
}

func (r *repository) GetMatchPool(ctx context.Context, roundID int64, matchIndex int) (*models.MatchPool, error) {
	var pool models.MatchPool
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND match_index = ?", roundID, matchIndex).
		First(&pool).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

// GetMatchPoolForUpdate fetches one match pool under a row lock. Concurrent
// bets touching different matches do not serialize on each other.
func (r *repository) GetMatchPoolForUpdate(ctx context.Context, roundID int64, matchIndex int) (*models.MatchPool, error) {
	var pool models.MatchPool
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("round_id = ? AND match_index = ?", roundID, matchIndex).
		First(&pool).Error
	if err != nil {
		return nil, err
	}
	return &pool, nil
}

func (r *repository) GetRoundPools(ctx context.Context, roundID int64) ([]models.MatchPool, error) {
	var matchPools []models.MatchPool
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Order("match_index ASC").
		Find(&matchPools).Error
	return matchPools, err
}

func (r *repository) UpdateMatchPool(ctx context.Context, pool *models.MatchPool) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(pool).Error
}

func (r *repository) CreateRoundAccounting(ctx context.Context, accounting *models.RoundAccounting) error {
	if err := accounting.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(accounting).Error
}

func (r *repository) GetRoundAccounting(ctx context.Context, roundID int64) (*models.RoundAccounting, error) {
	var accounting models.RoundAccounting
	err := r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		First(&accounting).Error
	if err != nil {
		return nil, err
	}
	return &accounting, nil
}

func (r *repository) GetRoundAccountingForUpdate(ctx context.Context, roundID int64) (*models.RoundAccounting, error) {
	var accounting models.RoundAccounting
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("round_id = ?", roundID).
		First(&accounting).Error
	if err != nil {
		return nil, err
	}
	return &accounting, nil
}

func (r *repository) UpdateRoundAccounting(ctx context.Context, accounting *models.RoundAccounting) error {
	if err := accounting.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(accounting).Error
}
