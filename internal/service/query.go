package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/clock"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
)

// QueryService serves the read-only views: the open-letter discovery feed,
// the inbox/outbox, correspondence transcripts, and the pen-pal roster.
type QueryService struct {
	letters LetterStore
	users   UserDirectory
	clock   clock.Clock
}

func NewQueryService(letters LetterStore, users UserDirectory, clk clock.Clock) *QueryService {
	return &QueryService{letters: letters, users: users, clock: clk}
}

// OpenFeed lists claimable open letters for the actor: resident-authored,
// unclaimed, not the actor's own, within the actor's organization.
func (s *QueryService) OpenFeed(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error) {
	letters, err := s.letters.OpenLetters(ctx, actor.ID, actor.OrganizationID)
	if err != nil {
		return nil, domain.Wrap("open letters", err)
	}
	return s.withEffectiveStatus(letters), nil
}

func (s *QueryService) Received(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error) {
	letters, err := s.letters.Received(ctx, actor.ID, s.clock.Now())
	if err != nil {
		return nil, domain.Wrap("received letters", err)
	}
	return s.withEffectiveStatus(letters), nil
}

func (s *QueryService) Sent(ctx context.Context, actor domain.Actor) ([]*domain.Letter, error) {
	letters, err := s.letters.Sent(ctx, actor.ID)
	if err != nil {
		return nil, domain.Wrap("sent letters", err)
	}
	return s.withEffectiveStatus(letters), nil
}

type CorrespondenceRequest struct {
	CounterpartID string
	Page          int
	PerPage       int
	Search        string
	Filter        string // all | me | them
	Sort          string // newest | oldest
}

type CorrespondencePage struct {
	Messages   []*domain.Letter `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

// Correspondence returns one page of the bidirectional transcript between
// the actor and a counterpart.
func (s *QueryService) Correspondence(ctx context.Context, actor domain.Actor, req CorrespondenceRequest) (*CorrespondencePage, error) {
	if _, err := s.users.Get(ctx, req.CounterpartID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, &domain.NotFoundError{Resource: "pen pal"}
		}
		return nil, domain.Wrap("resolve pen pal", err)
	}

	pr := normalizePage(req.Page, req.PerPage)
	letters, total, err := s.letters.CorrespondencePage(ctx, repository.CorrespondenceQuery{
		ActorID:       actor.ID,
		CounterpartID: req.CounterpartID,
		Search:        req.Search,
		Filter:        normalizeFilter(req.Filter),
		Sort:          normalizeSort(req.Sort),
		Offset:        pr.offset(),
		Limit:         int64(pr.perPage),
	})
	if err != nil {
		return nil, domain.Wrap("correspondence page", err)
	}

	return &CorrespondencePage{
		Messages:   s.withEffectiveStatus(letters),
		Pagination: pr.paginate(total),
	}, nil
}

type PenPal struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	HasMessages bool   `json:"has_messages"`
	UnreadCount int64  `json:"unread_count"`
}

type PenPalPage struct {
	PenPals    []PenPal   `json:"pen_pals"`
	Pagination Pagination `json:"pagination"`
}

type PenPalRequest struct {
	Page    int
	PerPage int
	Search  string
}

// PenPals lists everyone the actor has exchanged direct letters with, name
// ascending. Counterpart ids come from the letter store; names come from the
// directory, so filtering and ordering happen here rather than in a join.
func (s *QueryService) PenPals(ctx context.Context, actor domain.Actor, req PenPalRequest) (*PenPalPage, error) {
	ids, err := s.letters.Counterparts(ctx, actor.ID)
	if err != nil {
		return nil, domain.Wrap("counterparts", err)
	}
	users, err := s.users.GetMany(ctx, ids)
	if err != nil {
		return nil, domain.Wrap("resolve counterparts", err)
	}

	search := strings.ToLower(strings.TrimSpace(req.Search))
	entries := make([]PenPal, 0, len(users))
	for _, u := range users {
		if search != "" && !strings.Contains(strings.ToLower(u.Name), search) {
			continue
		}
		entries = append(entries, PenPal{ID: u.ID, Name: u.Name, HasMessages: true})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].ID < entries[j].ID
	})

	pr := normalizePage(req.Page, req.PerPage)
	total := int64(len(entries))
	start := pr.offset()
	if start > total {
		start = total
	}
	end := start + int64(pr.perPage)
	if end > total {
		end = total
	}
	page := entries[start:end]

	for i := range page {
		n, err := s.letters.UnreadCount(ctx, actor.ID, page[i].ID)
		if err != nil {
			return nil, domain.Wrap("unread count", err)
		}
		page[i].UnreadCount = n
	}

	return &PenPalPage{PenPals: page, Pagination: pr.paginate(total)}, nil
}

func (s *QueryService) withEffectiveStatus(letters []*domain.Letter) []*domain.Letter {
	now := s.clock.Now()
	for _, l := range letters {
		l.Status = l.EffectiveStatus(now)
	}
	return letters
}

func normalizeFilter(f string) string {
	switch f {
	case "me", "them":
		return f
	}
	return "all"
}

func normalizeSort(s string) string {
	if s == "oldest" {
		return s
	}
	return "newest"
}
