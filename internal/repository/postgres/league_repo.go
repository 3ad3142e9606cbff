package postgres

import (
	"context"
	"errors"

	"github.com/cmpeavlerjr72/fantasy-golf/internal/domain"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type leagueRepository struct {
	db *gorm.DB
}

func NewLeagueRepository(db *gorm.DB) *leagueRepository {
	return &leagueRepository{db: db}
}

func (r *leagueRepository) Create(ctx context.Context, league *domain.League) error {
	return r.db.WithContext(ctx).Create(league).Error
}

func (r *leagueRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	var league domain.League
	err := r.db.WithContext(ctx).First(&league, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrLeagueNotFound
	}
	if err != nil {
		return nil, err
	}
	return &league, nil
}

func (r *leagueRepository) List(ctx context.Context) ([]*domain.League, error) {
	var leagues []*domain.League
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&leagues).Error
	if err != nil {
		return nil, err
	}
	return leagues, nil
}

func (r *leagueRepository) Update(ctx context.Context, league *domain.League) error {
	return r.db.WithContext(ctx).Save(league).Error
}

func (r *leagueRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&domain.League{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrLeagueNotFound
	}
	return nil
}
