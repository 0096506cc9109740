package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/clock"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/events"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
)

// LetterService owns every letter state transition: creation, the
// read-triggered lifecycle step, and claiming of open letters.
type LetterService struct {
	letters LetterStore
	users   UserDirectory
	events  EventPublisher
	clock   clock.Clock
}

func NewLetterService(letters LetterStore, users UserDirectory, pub EventPublisher, clk clock.Clock) *LetterService {
	return &LetterService{letters: letters, users: users, events: pub, clock: clk}
}

type CreateLetterInput struct {
	Content        string
	ReceiverID     string
	IsOpenLetter   bool
	ParentLetterID string
}

func (s *LetterService) Create(ctx context.Context, actor domain.Actor, in CreateLetterInput) (*domain.Letter, error) {
	ve := &domain.ValidationError{}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		ve.Add("content", "content is required")
	} else if utf8.RuneCountInString(content) > domain.MaxContentLength {
		ve.Add("content", "content must be at most 1000 characters")
	}
	if !in.IsOpenLetter && in.ReceiverID == "" {
		ve.Add("receiver_id", "receiver is required for a direct letter")
	}
	if len(ve.Fields) > 0 {
		return nil, ve
	}

	sender, err := s.users.Get(ctx, actor.ID)
	if err != nil {
		return nil, domain.Wrap("resolve sender", err)
	}

	var receiver *domain.User
	if !in.IsOpenLetter {
		receiver, err = s.users.Get(ctx, in.ReceiverID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewValidationError("receiver_id", "receiver not found")
		}
		if err != nil {
			return nil, domain.Wrap("resolve receiver", err)
		}
	}

	if in.ParentLetterID != "" {
		if _, err := s.letters.FindByID(ctx, in.ParentLetterID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, domain.NewValidationError("parent_letter_id", "parent letter not found")
			}
			return nil, domain.Wrap("resolve parent letter", err)
		}
	}

	now := s.clock.Now()
	iso, long := domain.SentDateStrings(now)
	l := &domain.Letter{
		ID:             uuid.NewString(),
		SenderID:       sender.ID,
		SenderName:     sender.Name,
		SenderType:     sender.Type,
		OrganizationID: sender.OrganizationID,
		Content:        content,
		IsOpenLetter:   in.IsOpenLetter,
		ParentLetterID: in.ParentLetterID,
		Status:         domain.StatusSent,
		SentAt:         now,
		DeliveredAt:    now.Add(domain.DeliveryDelay),
		SentDateISO:    iso,
		SentDateLong:   long,
		CreatedAt:      now,
	}
	if receiver != nil {
		l.ReceiverID = receiver.ID
		l.ReceiverName = receiver.Name
	}

	if err := s.letters.Insert(ctx, l); err != nil {
		return nil, domain.Wrap("insert letter", err)
	}
	s.events.Publish(ctx, events.LetterSent, l)
	return l, nil
}

// Get fetches one letter for the sender or receiver. The receiver's first
// fetch after the delivery window sets read_at and promotes the status; the
// read_at null guard in the store makes later fetches no-ops.
func (s *LetterService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Letter, error) {
	l, err := s.letters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, &domain.NotFoundError{Resource: "letter"}
	}
	if err != nil {
		return nil, domain.Wrap("find letter", err)
	}
	if actor.ID != l.SenderID && actor.ID != l.ReceiverID {
		return nil, &domain.AuthorizationError{Reason: "Unauthorized"}
	}

	now := s.clock.Now()
	if l.Readable(actor.ID, now) {
		updated, err := s.letters.MarkRead(ctx, l.ID, actor.ID, now)
		if err != nil {
			return nil, domain.Wrap("mark read", err)
		}
		if updated {
			at := now
			l.ReadAt = &at
			l.Status = domain.StatusRead
			s.events.Publish(ctx, events.LetterRead, l)
		}
	}

	l.Status = l.EffectiveStatus(now)
	return l, nil
}

// Claim makes the actor the sole recipient of an open letter. Preconditions
// are checked in order so each failure mode is distinguishable; the final
// write is conditional on claimed_by still being unset, so a lost race
// surfaces as the same conflict as an already-claimed letter.
func (s *LetterService) Claim(ctx context.Context, actor domain.Actor, id string) error {
	l, err := s.letters.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.NotFoundError{Resource: "letter"}
	}
	if err != nil {
		return domain.Wrap("find letter", err)
	}
	// The open feed is scoped to the actor's organization; letters outside it
	// are not claimable and we do not reveal that they exist.
	if l.OrganizationID != actor.OrganizationID {
		return &domain.NotFoundError{Resource: "letter"}
	}
	if !l.IsOpenLetter {
		return &domain.InvalidStateError{Reason: "not an open letter"}
	}
	if l.ClaimedBy != "" {
		return &domain.ConflictError{Reason: "already claimed"}
	}
	if l.SenderID == actor.ID {
		return &domain.AuthorizationError{Reason: "cannot claim own letter"}
	}

	claimant, err := s.users.Get(ctx, actor.ID)
	if err != nil {
		return domain.Wrap("resolve claimant", err)
	}
	if claimant.Type == domain.UserTypeVolunteer && l.SenderType == domain.UserTypeVolunteer {
		return &domain.AuthorizationError{Reason: "volunteers cannot claim from other volunteers"}
	}

	ok, err := s.letters.Claim(ctx, id, claimant)
	if err != nil {
		return domain.Wrap("claim letter", err)
	}
	if !ok {
		return &domain.ConflictError{Reason: "already claimed"}
	}
	s.events.Publish(ctx, events.LetterClaimed, map[string]string{
		"letter_id":  id,
		"claimed_by": claimant.ID,
		"sender_id":  l.SenderID,
	})
	return nil
}
