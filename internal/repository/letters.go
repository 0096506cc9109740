package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

type LetterRepository struct {
	coll *mongo.Collection
}

func NewLetterRepository(coll *mongo.Collection) *LetterRepository {
	for _, ix := range []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sender_id", Value: 1}, {Key: "receiver_id", Value: 1}, {Key: "sent_at", Value: -1}},
			Options: options.Index().SetName("correspondence_idx"),
		},
		{
			Keys:    bson.D{{Key: "is_open_letter", Value: 1}, {Key: "claimed_by", Value: 1}, {Key: "sent_at", Value: -1}},
			Options: options.Index().SetName("open_letters_idx"),
		},
		{
			Keys:    bson.D{{Key: "receiver_id", Value: 1}, {Key: "read_at", Value: 1}},
			Options: options.Index().SetName("unread_idx"),
		},
	} {
		_, _ = coll.Indexes().CreateOne(context.Background(), ix)
	}
	return &LetterRepository{coll: coll}
}

func (r *LetterRepository) Insert(ctx context.Context, l *domain.Letter) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	filter := bson.M{"_id": l.ID}
	update := bson.M{"$setOnInsert": l}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

// FindByID returns a letter by id, treating soft-deleted rows as absent.
func (r *LetterRepository) FindByID(ctx context.Context, id string) (*domain.Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var l domain.Letter
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "deleted_at": nil}).Decode(&l)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &l, nil
}

// MarkRead sets read_at on the receiver's first fetch after the delivery
// window. The read_at null check in the filter makes re-reads no-ops.
func (r *LetterRepository) MarkRead(ctx context.Context, id, readerID string, at time.Time) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	filter := bson.M{
		"_id":          id,
		"receiver_id":  readerID,
		"read_at":      nil,
		"deleted_at":   nil,
		"delivered_at": bson.M{"$lte": at},
		"status":       bson.M{"$in": []domain.LetterStatus{domain.StatusSent, domain.StatusDelivered}},
	}
	update := bson.M{"$set": bson.M{"read_at": at, "status": domain.StatusRead}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// Claim atomically assigns an unclaimed open letter to the claimant. The
// claimed_by null check lives in the filter, so of two concurrent claimants
// exactly one observes ModifiedCount == 1.
func (r *LetterRepository) Claim(ctx context.Context, id string, claimant *domain.User) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	filter := bson.M{
		"_id":            id,
		"is_open_letter": true,
		"claimed_by":     nil,
		"deleted_at":     nil,
	}
	update := bson.M{"$set": bson.M{
		"claimed_by":    claimant.ID,
		"receiver_id":   claimant.ID,
		"receiver_name": claimant.Name,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (r *LetterRepository) OpenLetters(ctx context.Context, actorID, organizationID string) ([]*domain.Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := options.Find().SetSort(sortOrder("newest"))
	cur, err := r.coll.Find(ctx, openLetterFilter(actorID, organizationID), opts)
	if err != nil {
		return nil, err
	}
	return decodeLetters(ctx, cur)
}

// Received lists delivered direct letters addressed to the actor, newest
// first. Letters still in transit stay out of the inbox.
func (r *LetterRepository) Received(ctx context.Context, actorID string, now time.Time) ([]*domain.Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{
		"receiver_id":  actorID,
		"deleted_at":   nil,
		"delivered_at": bson.M{"$lte": now},
	}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sortOrder("newest")))
	if err != nil {
		return nil, err
	}
	return decodeLetters(ctx, cur)
}

func (r *LetterRepository) Sent(ctx context.Context, actorID string) ([]*domain.Letter, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	filter := bson.M{"sender_id": actorID, "deleted_at": nil}
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(sortOrder("newest")))
	if err != nil {
		return nil, err
	}
	return decodeLetters(ctx, cur)
}

// CorrespondencePage returns one page of the transcript plus the total count
// of rows matching the same predicate.
func (r *LetterRepository) CorrespondencePage(ctx context.Context, q CorrespondenceQuery) ([]*domain.Letter, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := correspondenceFilter(q)
	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(sortOrder(q.Sort)).
		SetSkip(q.Offset).
		SetLimit(q.Limit)
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	letters, err := decodeLetters(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return letters, total, nil
}

// Counterparts returns the distinct ids the actor has exchanged direct
// letters with, in either direction.
func (r *LetterRepository) Counterparts(ctx context.Context, actorID string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"$and": []bson.M{
			notDeleted(),
			{"is_open_letter": false},
			{"$or": []bson.M{{"sender_id": actorID}, {"receiver_id": actorID}}},
		}}}},
		{{Key: "$project", Value: bson.M{"other": bson.M{"$cond": bson.A{
			bson.M{"$eq": bson.A{"$sender_id", actorID}},
			"$receiver_id",
			"$sender_id",
		}}}}},
		{{Key: "$match", Value: bson.M{"other": bson.M{"$ne": actorID}}}},
		{{Key: "$group", Value: bson.M{"_id": "$other"}}},
	}
	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	ids := []string{}
	for cur.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cur.Err()
}

// UnreadCount counts direct letters from counterpart to actor not yet read.
func (r *LetterRepository) UnreadCount(ctx context.Context, actorID, counterpartID string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return r.coll.CountDocuments(ctx, bson.M{
		"sender_id":      counterpartID,
		"receiver_id":    actorID,
		"is_open_letter": false,
		"deleted_at":     nil,
		"read_at":        nil,
	})
}

func decodeLetters(ctx context.Context, cur *mongo.Cursor) ([]*domain.Letter, error) {
	defer cur.Close(ctx)
	out := []*domain.Letter{}
	for cur.Next(ctx) {
		var l domain.Letter
		if err := cur.Decode(&l); err != nil {
			return nil, err
		}
		out = append(out, &l)
	}
	return out, cur.Err()
}
