package services

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yoockh/scribely/internal/models"
	pgrepo "github.com/yoockh/scribely/internal/repositories/postgres"
	"github.com/yoockh/scribely/internal/utils"
)

const (
	DefaultNoteLimit = 50
	MaxNoteLimit     = 200
)

// NoteService reads the note index written by NoteWriter.
type NoteService interface {
	List(ctx context.Context, category string, limit int) ([]models.Note, error)
}

type noteService struct {
	repo pgrepo.NoteRepository
	log  *logrus.Logger
}

func NewNoteService(repo pgrepo.NoteRepository, log *logrus.Logger) NoteService {
	return &noteService{repo: repo, log: log}
}

// List returns the newest notes in category, "notes" when empty.
func (s *noteService) List(ctx context.Context, category string, limit int) ([]models.Note, error) {
	const op = "NoteService.List"

	if s.repo == nil {
		return nil, utils.E(utils.CodeUnavailable, op, "Note index is not available", nil)
	}
	if limit == 0 {
		limit = DefaultNoteLimit
	}
	if limit < 1 || limit > MaxNoteLimit {
		return nil, utils.E(utils.CodeInvalidArgument, op, "limit must be between 1 and 200", nil)
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = defaultCategory
	}

	notes, err := s.repo.ListByCategory(ctx, category, limit)
	if err != nil {
		s.log.WithError(err).WithField("category", category).Error("note index query failed")
		return nil, utils.E(utils.CodeInternal, op, "Failed to list notes", err)
	}
	if notes == nil {
		notes = []models.Note{}
	}
	return notes, nil
}
