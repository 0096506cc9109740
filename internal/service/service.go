package service

import (
	"context"
	"time"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
)

// LetterStore is the persistence surface the services depend on; the Mongo
// repository is the production implementation.
type LetterStore interface {
	Insert(ctx context.Context, l *domain.Letter) error
	FindByID(ctx context.Context, id string) (*domain.Letter, error)
	MarkRead(ctx context.Context, id, readerID string, at time.Time) (bool, error)
	Claim(ctx context.Context, id string, claimant *domain.User) (bool, error)
	OpenLetters(ctx context.Context, actorID, organizationID string) ([]*domain.Letter, error)
	Received(ctx context.Context, actorID string, now time.Time) ([]*domain.Letter, error)
	Sent(ctx context.Context, actorID string) ([]*domain.Letter, error)
	CorrespondencePage(ctx context.Context, q repository.CorrespondenceQuery) ([]*domain.Letter, int64, error)
	Counterparts(ctx context.Context, actorID string) ([]string, error)
	UnreadCount(ctx context.Context, actorID, counterpartID string) (int64, error)
}

type ReportStore interface {
	CreatePending(ctx context.Context, report *domain.Report) (bool, error)
}

// UserDirectory reads profiles owned by the identity service.
type UserDirectory interface {
	Get(ctx context.Context, id string) (*domain.User, error)
	GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event string, v interface{})
}
