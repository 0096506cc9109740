package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

func TestOpenFeedExclusions(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	eligible := f.send(t, resAlma, CreateLetterInput{Content: "Write to me", IsOpenLetter: true})
	own := f.send(t, resBert, CreateLetterInput{Content: "My own letter", IsOpenLetter: true})
	fromVolunteer := f.send(t, volCarol, CreateLetterInput{Content: "Volunteer letter", IsOpenLetter: true})
	claimed := f.send(t, resAlma, CreateLetterInput{Content: "Going fast", IsOpenLetter: true})
	require.NoError(t, f.cmd.Claim(ctx, actorFor(volDiego), claimed.ID))
	direct := f.send(t, resAlma, CreateLetterInput{Content: "Direct", ReceiverID: resBert.ID})

	feed, err := f.qry.OpenFeed(ctx, actorFor(resBert))
	require.NoError(t, err)

	ids := make([]string, len(feed))
	for i, l := range feed {
		ids[i] = l.ID
	}
	assert.Equal(t, []string{eligible.ID}, ids)
	assert.NotContains(t, ids, own.ID, "no self-visibility")
	assert.NotContains(t, ids, fromVolunteer.ID, "volunteer-authored letters never surface")
	assert.NotContains(t, ids, claimed.ID, "claimed letters leave the feed for everyone")
	assert.NotContains(t, ids, direct.ID)
}

func TestOpenFeedExcludesOtherOrganizations(t *testing.T) {
	f := newFixture()
	outsider := &domain.User{ID: "res-9", Name: "Zora Lane", Type: domain.UserTypeResident, OrganizationID: "org-2"}
	f.users.users[outsider.ID] = outsider
	f.send(t, outsider, CreateLetterInput{Content: "From elsewhere", IsOpenLetter: true})

	feed, err := f.qry.OpenFeed(context.Background(), actorFor(resBert))
	require.NoError(t, err)
	assert.Empty(t, feed)
}

func TestOpenFeedOrderAndEffectiveStatus(t *testing.T) {
	f := newFixture()
	first := f.send(t, resAlma, CreateLetterInput{Content: "First", IsOpenLetter: true})
	f.clk.Advance(time.Hour)
	second := f.send(t, resAlma, CreateLetterInput{Content: "Second", IsOpenLetter: true})

	f.clk.Advance(domain.DeliveryDelay - time.Minute)
	feed, err := f.qry.OpenFeed(context.Background(), actorFor(resBert))
	require.NoError(t, err)
	require.Len(t, feed, 2)
	assert.Equal(t, second.ID, feed[0].ID, "newest first")
	assert.Equal(t, first.ID, feed[1].ID)
	assert.Equal(t, domain.StatusDelivered, feed[1].Status, "elapsed window reported as delivered")
	assert.Equal(t, domain.StatusSent, feed[0].Status)
}

func TestReceivedExcludesLettersInTransit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	early := f.send(t, resAlma, CreateLetterInput{Content: "Early", ReceiverID: resBert.ID})
	f.clk.Advance(domain.DeliveryDelay)
	f.send(t, resAlma, CreateLetterInput{Content: "Late", ReceiverID: resBert.ID})

	inbox, err := f.qry.Received(ctx, actorFor(resBert))
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, early.ID, inbox[0].ID)
	assert.Equal(t, domain.StatusDelivered, inbox[0].Status)

	outbox, err := f.qry.Sent(ctx, actorFor(resAlma))
	require.NoError(t, err)
	assert.Len(t, outbox, 2, "outbox shows letters still in transit")
}

func seedCorrespondence(t *testing.T, f *fixture, n int) []*domain.Letter {
	t.Helper()
	out := make([]*domain.Letter, 0, n)
	for i := 0; i < n; i++ {
		sender, receiver := resAlma, resBert
		if i%2 == 1 {
			sender, receiver = resBert, resAlma
		}
		out = append(out, f.send(t, sender, CreateLetterInput{
			Content:    fmt.Sprintf("letter number %d", i+1),
			ReceiverID: receiver.ID,
		}))
		f.clk.Advance(time.Minute)
	}
	return out
}

func TestCorrespondencePagination(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seedCorrespondence(t, f, 15)

	page, err := f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Page: 1, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 10)
	assert.Equal(t, Pagination{CurrentPage: 1, LastPage: 2, PerPage: 10, Total: 15, HasMore: true}, page.Pagination)

	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Page: 2, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Len(t, page.Messages, 5)
	assert.False(t, page.Pagination.HasMore)

	// a page past the end is empty, not an error
	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Page: 9, PerPage: 10,
	})
	require.NoError(t, err)
	assert.Empty(t, page.Messages)
	assert.False(t, page.Pagination.HasMore)
	assert.Equal(t, int64(15), page.Pagination.Total)
}

func TestCorrespondenceSortAndFilter(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	letters := seedCorrespondence(t, f, 4)

	page, err := f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Sort: "oldest",
	})
	require.NoError(t, err)
	require.Len(t, page.Messages, 4)
	assert.Equal(t, letters[0].ID, page.Messages[0].ID)

	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Filter: "me",
	})
	require.NoError(t, err)
	for _, m := range page.Messages {
		assert.Equal(t, resAlma.ID, m.SenderID)
	}
	assert.Equal(t, int64(2), page.Pagination.Total)

	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Filter: "them",
	})
	require.NoError(t, err)
	for _, m := range page.Messages {
		assert.Equal(t, resBert.ID, m.SenderID)
	}
	assert.Equal(t, int64(2), page.Pagination.Total)
}

func TestCorrespondenceSearch(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	seedCorrespondence(t, f, 15)

	page, err := f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Search: "number 3",
	})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "letter number 3", page.Messages[0].Content)
	assert.Equal(t, int64(1), page.Pagination.Total, "count reflects matching rows only")

	// date search, both renderings
	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Search: "2026-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Pagination.Total)

	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Search: "march 1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Pagination.Total)

	// sender name search matches only that party's letters
	page, err = f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{
		CounterpartID: resBert.ID, Search: "alma",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(15), page.Pagination.Total, "names appear on both sides of every letter")
}

func TestCorrespondenceExcludesOpenLetters(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.send(t, resAlma, CreateLetterInput{Content: "Direct", ReceiverID: resBert.ID})
	open := f.send(t, resAlma, CreateLetterInput{Content: "Open", IsOpenLetter: true})
	require.NoError(t, f.cmd.Claim(ctx, actorFor(resBert), open.ID))

	page, err := f.qry.Correspondence(ctx, actorFor(resAlma), CorrespondenceRequest{CounterpartID: resBert.ID})
	require.NoError(t, err)
	require.Len(t, page.Messages, 1)
	assert.Equal(t, "Direct", page.Messages[0].Content)
}

func TestCorrespondenceUnknownCounterpart(t *testing.T) {
	f := newFixture()
	_, err := f.qry.Correspondence(context.Background(), actorFor(resAlma), CorrespondenceRequest{CounterpartID: "ghost"})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "pen pal not found", nf.Error())
}

func TestPenPalRoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.send(t, resAlma, CreateLetterInput{Content: "To Bert", ReceiverID: resBert.ID})
	f.send(t, volCarol, CreateLetterInput{Content: "To Alma one", ReceiverID: resAlma.ID})
	f.send(t, volCarol, CreateLetterInput{Content: "To Alma two", ReceiverID: resAlma.ID})
	f.send(t, resAlma, CreateLetterInput{Content: "Open", IsOpenLetter: true})

	page, err := f.qry.PenPals(ctx, actorFor(resAlma), PenPalRequest{})
	require.NoError(t, err)
	require.Len(t, page.PenPals, 2)

	// name ascending: Bert before Carol
	assert.Equal(t, resBert.ID, page.PenPals[0].ID)
	assert.Equal(t, volCarol.ID, page.PenPals[1].ID)
	assert.True(t, page.PenPals[0].HasMessages)
	assert.Equal(t, int64(0), page.PenPals[0].UnreadCount)
	assert.Equal(t, int64(2), page.PenPals[1].UnreadCount)
	assert.Equal(t, int64(2), page.Pagination.Total)
}

func TestPenPalRosterSearchAndUnreadDrop(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.send(t, resAlma, CreateLetterInput{Content: "To Bert", ReceiverID: resBert.ID})
	sent := f.send(t, volCarol, CreateLetterInput{Content: "To Alma", ReceiverID: resAlma.ID})

	page, err := f.qry.PenPals(ctx, actorFor(resAlma), PenPalRequest{Search: "carol"})
	require.NoError(t, err)
	require.Len(t, page.PenPals, 1)
	assert.Equal(t, volCarol.ID, page.PenPals[0].ID)
	assert.Equal(t, int64(1), page.PenPals[0].UnreadCount)

	// reading the letter clears the unread count
	f.clk.Advance(domain.DeliveryDelay)
	_, err = f.cmd.Get(ctx, actorFor(resAlma), sent.ID)
	require.NoError(t, err)

	page, err = f.qry.PenPals(ctx, actorFor(resAlma), PenPalRequest{Search: "carol"})
	require.NoError(t, err)
	require.Len(t, page.PenPals, 1)
	assert.Equal(t, int64(0), page.PenPals[0].UnreadCount)
}
