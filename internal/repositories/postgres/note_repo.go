package postgres

import (
	"context"

	"github.com/yoockh/scribely/internal/models"
	"gorm.io/gorm"
)

type NoteRepository interface {
	Insert(ctx context.Context, n *models.Note) error
	ListByCategory(ctx context.Context, category string, limit int) ([]models.Note, error)
}

type noteRepo struct {
	db *gorm.DB
}

func NewNoteRepo(db *gorm.DB) NoteRepository {
	return &noteRepo{db: db}
}

func (r *noteRepo) Insert(ctx context.Context, n *models.Note) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *noteRepo) ListByCategory(ctx context.Context, category string, limit int) ([]models.Note, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []models.Note
	err := r.db.WithContext(ctx).
		Where("category = ?", category).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
