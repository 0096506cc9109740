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

// ReportService records abuse complaints. Resolution belongs to the admin
// moderation service; rows leave here in status pending.
type ReportService struct {
	letters LetterStore
	reports ReportStore
	events  EventPublisher
	clock   clock.Clock
}

func NewReportService(letters LetterStore, reports ReportStore, pub EventPublisher, clk clock.Clock) *ReportService {
	return &ReportService{letters: letters, reports: reports, events: pub, clock: clk}
}

func (s *ReportService) Report(ctx context.Context, actor domain.Actor, letterID, reason string) error {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < domain.MinReportReasonLength {
		return domain.NewValidationError("reason", "reason must be at least 10 characters")
	} else if n > domain.MaxReportReasonLength {
		return domain.NewValidationError("reason", "reason must be at most 500 characters")
	}

	l, err := s.letters.FindByID(ctx, letterID)
	if errors.Is(err, repository.ErrNotFound) {
		return &domain.NotFoundError{Resource: "letter"}
	}
	if err != nil {
		return domain.Wrap("find letter", err)
	}
	if l.SenderID == actor.ID {
		return &domain.AuthorizationError{Reason: "cannot report own letter"}
	}

	report := &domain.Report{
		ID:               uuid.NewString(),
		ReporterID:       actor.ID,
		ReportedUserID:   l.SenderID,
		ReportedLetterID: l.ID,
		Reason:           reason,
		Status:           domain.ReportPending,
		CreatedAt:        s.clock.Now(),
	}
	created, err := s.reports.CreatePending(ctx, report)
	if err != nil {
		return domain.Wrap("create report", err)
	}
	if !created {
		return &domain.ConflictError{Reason: "already reported"}
	}
	s.events.Publish(ctx, events.LetterReported, report)
	return nil
}
