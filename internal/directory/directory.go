package directory

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/domain"
	"github.com/calvinhuynh14/bridge-pen-pal-sub000/internal/repository"
)

const cacheTTL = 5 * time.Minute

// Directory reads user profiles owned by the identity service. Lookups go
// through a short-lived Redis cache; the cache is optional and misses fall
// through to the users collection.
type Directory struct {
	coll  *mongo.Collection
	cache *redis.Client
}

func New(coll *mongo.Collection, cache *redis.Client) *Directory {
	return &Directory{coll: coll, cache: cache}
}

func (d *Directory) Get(ctx context.Context, id string) (*domain.User, error) {
	if u := d.fromCache(ctx, id); u != nil {
		return u, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	var u domain.User
	if err := d.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	d.toCache(ctx, &u)
	return &u, nil
}

// GetMany resolves a set of ids in one query, skipping unknown ids.
func (d *Directory) GetMany(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(ids))
	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if u := d.fromCache(ctx, id); u != nil {
			out[id] = u
		} else {
			missing = append(missing, id)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cur, err := d.coll.Find(ctx, bson.M{"_id": bson.M{"$in": missing}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var u domain.User
		if err := cur.Decode(&u); err != nil {
			return nil, err
		}
		out[u.ID] = &u
		d.toCache(ctx, &u)
	}
	return out, cur.Err()
}

func (d *Directory) fromCache(ctx context.Context, id string) *domain.User {
	if d.cache == nil {
		return nil
	}
	b, err := d.cache.Get(ctx, cacheKey(id)).Bytes()
	if err != nil {
		return nil
	}
	var u domain.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil
	}
	return &u
}

func (d *Directory) toCache(ctx context.Context, u *domain.User) {
	if d.cache == nil {
		return
	}
	if b, err := json.Marshal(u); err == nil {
		d.cache.Set(ctx, cacheKey(u.ID), b, cacheTTL)
	}
}

func cacheKey(id string) string { return "user:" + id }
