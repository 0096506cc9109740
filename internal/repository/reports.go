package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
)

type ReportRepository struct {
	coll *mongo.Collection
}

// pendingReportIndex enforces at most one pending report per
// (reporter, letter). The partial filter keeps resolved history out of the
// uniqueness constraint; without the unique index two concurrent upserts can
// both insert.
func pendingReportIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "reporter_id", Value: 1}, {Key: "reported_letter_id", Value: 1}},
		Options: options.Index().
			SetName("pending_report_idx").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"status": domain.ReportPending}),
	}
}

func NewReportRepository(coll *mongo.Collection) *ReportRepository {
	_, _ = coll.Indexes().CreateOne(context.Background(), pendingReportIndex())
	return &ReportRepository{coll: coll}
}

// CreatePending inserts the report unless a pending one by the same reporter
// on the same letter already exists. The upsert races under concurrency, so
// the unique partial index is the real guard: the losing writer's insert
// collides on the index and is reported as not-created.
func (r *ReportRepository) CreatePending(ctx context.Context, report *domain.Report) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	filter := bson.M{
		"reporter_id":        report.ReporterID,
		"reported_letter_id": report.ReportedLetterID,
		"status":             domain.ReportPending,
	}
	// The filter's equality fields seed the inserted document; repeating them
	// in $setOnInsert is a path conflict in Mongo.
	update := bson.M{"$setOnInsert": bson.M{
		"_id":              report.ID,
		"reported_user_id": report.ReportedUserID,
		"reason":           report.Reason,
		"created_at":       report.CreatedAt,
	}}
	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return res.UpsertedCount == 1, nil
}
