package store

import (
	"context"

	"github.com/Alpharobocup/bot-all/internal/domain"
)

// Repo defines storage operations for scheduled messages and notes.
type Repo interface {
	CreateScheduled(ctx context.Context, chat string, fireTime domain.FireTime, text string) (int64, error)
	ListScheduled(ctx context.Context) ([]domain.ScheduledEntry, error)
	SetScheduledActive(ctx context.Context, id int64, active bool) error
	CreateNote(ctx context.Context, owner int64, content string) (int64, error)
	ListNotes(ctx context.Context, owner int64) ([]domain.Note, error)
	Close() error
}
