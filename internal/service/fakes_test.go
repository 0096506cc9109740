package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
)

// memLetters mirrors the Mongo repository's semantics in memory, including
// the conditional-write behavior of MarkRead and Claim.
type memLetters struct {
	mu      sync.Mutex
	letters map[string]*domain.Letter
}

func newMemLetters() *memLetters {
	return &memLetters{letters: map[string]*domain.Letter{}}
}

func (m *memLetters) put(l *domain.Letter) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *l
	m.letters[l.ID] = &cp
}

func (m *memLetters) Insert(_ context.Context, l *domain.Letter) error {
	m.put(l)
	return nil
}

func (m *memLetters) FindByID(_ context.Context, id string) (*domain.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.letters[id]
	if !ok || l.DeletedAt != nil {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (m *memLetters) MarkRead(_ context.Context, id, readerID string, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.letters[id]
	if !ok || l.DeletedAt != nil || l.ReceiverID != readerID || l.ReadAt != nil || at.Before(l.DeliveredAt) {
		return false, nil
	}
	if l.Status != domain.StatusSent && l.Status != domain.StatusDelivered {
		return false, nil
	}
	t := at
	l.ReadAt = &t
	l.Status = domain.StatusRead
	return true, nil
}

func (m *memLetters) Claim(_ context.Context, id string, claimant *domain.User) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.letters[id]
	if !ok || l.DeletedAt != nil || !l.IsOpenLetter || l.ClaimedBy != "" {
		return false, nil
	}
	l.ClaimedBy = claimant.ID
	l.ReceiverID = claimant.ID
	l.ReceiverName = claimant.Name
	return true, nil
}

func (m *memLetters) OpenLetters(_ context.Context, actorID, organizationID string) ([]*domain.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Letter{}
	for _, l := range m.letters {
		if !l.IsOpenLetter || l.DeletedAt != nil {
			continue
		}
		if l.Status != domain.StatusSent && l.Status != domain.StatusDelivered {
			continue
		}
		if l.SenderType != domain.UserTypeResident || l.ClaimedBy != "" {
			continue
		}
		if l.SenderID == actorID || l.OrganizationID != organizationID {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLetters(out, "newest")
	return out, nil
}

func (m *memLetters) Received(_ context.Context, actorID string, now time.Time) ([]*domain.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Letter{}
	for _, l := range m.letters {
		if l.ReceiverID != actorID || l.DeletedAt != nil || now.Before(l.DeliveredAt) {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLetters(out, "newest")
	return out, nil
}

func (m *memLetters) Sent(_ context.Context, actorID string) ([]*domain.Letter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*domain.Letter{}
	for _, l := range m.letters {
		if l.SenderID != actorID || l.DeletedAt != nil {
			continue
		}
		cp := *l
		out = append(out, &cp)
	}
	sortLetters(out, "newest")
	return out, nil
}

func (m *memLetters) CorrespondencePage(_ context.Context, q repository.CorrespondenceQuery) ([]*domain.Letter, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	matched := []*domain.Letter{}
	for _, l := range m.letters {
		if l.DeletedAt != nil || l.IsOpenLetter {
			continue
		}
		between := (l.SenderID == q.ActorID && l.ReceiverID == q.CounterpartID) ||
			(l.SenderID == q.CounterpartID && l.ReceiverID == q.ActorID)
		if !between {
			continue
		}
		switch q.Filter {
		case "me":
			if l.SenderID != q.ActorID {
				continue
			}
		case "them":
			if l.SenderID != q.CounterpartID {
				continue
			}
		}
		if !matchesSearch(l, q.Search) {
			continue
		}
		cp := *l
		matched = append(matched, &cp)
	}
	sortLetters(matched, q.Sort)
	total := int64(len(matched))

	start := q.Offset
	if start > total {
		start = total
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (m *memLetters) Counterparts(_ context.Context, actorID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]bool{}
	for _, l := range m.letters {
		if l.DeletedAt != nil || l.IsOpenLetter {
			continue
		}
		if l.SenderID == actorID && l.ReceiverID != actorID {
			seen[l.ReceiverID] = true
		}
		if l.ReceiverID == actorID && l.SenderID != actorID {
			seen[l.SenderID] = true
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memLetters) UnreadCount(_ context.Context, actorID, counterpartID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, l := range m.letters {
		if l.DeletedAt != nil || l.IsOpenLetter {
			continue
		}
		if l.SenderID == counterpartID && l.ReceiverID == actorID && l.ReadAt == nil {
			n++
		}
	}
	return n, nil
}

func matchesSearch(l *domain.Letter, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, target := range []string{l.Content, l.SenderName, l.ReceiverName, l.SentDateISO, l.SentDateLong} {
		if strings.Contains(strings.ToLower(target), term) {
			return true
		}
	}
	return false
}

func sortLetters(letters []*domain.Letter, order string) {
	asc := order == "oldest"
	sort.Slice(letters, func(i, j int) bool {
		a, b := letters[i], letters[j]
		if !a.SentAt.Equal(b.SentAt) {
			if asc {
				return a.SentAt.Before(b.SentAt)
			}
			return a.SentAt.After(b.SentAt)
		}
		if asc {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

type memReports struct {
	mu      sync.Mutex
	reports []*domain.Report
}

func (m *memReports) CreatePending(_ context.Context, r *domain.Report) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.reports {
		if existing.ReporterID == r.ReporterID &&
			existing.ReportedLetterID == r.ReportedLetterID &&
			existing.Status == domain.ReportPending {
			return false, nil
		}
	}
	cp := *r
	m.reports = append(m.reports, &cp)
	return true, nil
}

type memDirectory struct {
	users map[string]*domain.User
}

func newMemDirectory(users ...*domain.User) *memDirectory {
	d := &memDirectory{users: map[string]*domain.User{}}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *memDirectory) Get(_ context.Context, id string) (*domain.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (d *memDirectory) GetMany(_ context.Context, ids []string) (map[string]*domain.User, error) {
	out := map[string]*domain.User{}
	for _, id := range ids {
		if u, ok := d.users[id]; ok {
			cp := *u
			out[id] = &cp
		}
	}
	return out, nil
}

type recordedEvent struct {
	name    string
	payload interface{}
}

type memPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *memPublisher) Publish(_ context.Context, event string, v interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, payload: v})
}

func (p *memPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.name
	}
	return out
}
