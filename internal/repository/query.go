package repository

import (
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

// CorrespondenceQuery selects a page of the bidirectional transcript between
// an actor and one counterpart.
type CorrespondenceQuery struct {
	ActorID       string
	CounterpartID string
	Search        string
	Filter        string // all | me | them
	Sort          string // newest | oldest
	Offset        int64
	Limit         int64
}

// The filter is assembled from small fragments so each clause can be tested
// on its own instead of composing one opaque query.

func notDeleted() bson.M {
	return bson.M{"deleted_at": nil}
}

func betweenUsers(a, b string) bson.M {
	return bson.M{"$or": []bson.M{
		{"sender_id": a, "receiver_id": b},
		{"sender_id": b, "receiver_id": a},
	}}
}

func senderClause(filter, actorID, counterpartID string) (bson.M, bool) {
	switch filter {
	case "me":
		return bson.M{"sender_id": actorID}, true
	case "them":
		return bson.M{"sender_id": counterpartID}, true
	}
	return nil, false
}

// searchClause matches a case-insensitive substring against content, both
// display names, and the two stored renderings of the sent date.
func searchClause(term string) (bson.M, bool) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, false
	}
	re := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	return bson.M{"$or": []bson.M{
		{"content": re},
		{"sender_name": re},
		{"receiver_name": re},
		{"sent_date_iso": re},
		{"sent_date_long": re},
	}}, true
}

func sortOrder(sort string) bson.D {
	dir := -1
	if sort == "oldest" {
		dir = 1
	}
	return bson.D{{Key: "sent_at", Value: dir}, {Key: "created_at", Value: dir}}
}

func correspondenceFilter(q CorrespondenceQuery) bson.M {
	and := []bson.M{
		notDeleted(),
		{"is_open_letter": false},
		betweenUsers(q.ActorID, q.CounterpartID),
	}
	if c, ok := senderClause(q.Filter, q.ActorID, q.CounterpartID); ok {
		and = append(and, c)
	}
	if c, ok := searchClause(q.Search); ok {
		and = append(and, c)
	}
	return bson.M{"$and": and}
}

func openLetterFilter(actorID, organizationID string) bson.M {
	return bson.M{
		"is_open_letter":  true,
		"status":          bson.M{"$in": []domain.LetterStatus{domain.StatusSent, domain.StatusDelivered}},
		"deleted_at":      nil,
		"sender_type":     domain.UserTypeResident,
		"claimed_by":      nil,
		"sender_id":       bson.M{"$ne": actorID},
		"organization_id": organizationID,
	}
}
