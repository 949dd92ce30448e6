package activity

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ActivityMongo activities collection
type ActivityMongo struct {
	Coll *mongo.Collection
}

var _ ActivityRepository = &ActivityMongo{}

func NewActivityMongoRepository(Coll *mongo.Collection) *ActivityMongo {
	return &ActivityMongo{Coll}
}

// EnsureIndexes creates the owner/time indexes listing and range queries rely on
func (repo *ActivityMongo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "ts", Value: -1}}},
		{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "category", Value: 1}}},
	})
	return err
}

func (repo *ActivityMongo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]*ActivityModel, error) {
	cur, err := repo.Coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	result := make([]*ActivityModel, 0)
	if err := cur.All(ctx, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (repo *ActivityMongo) FindRecent(ctx context.Context, userID string, limit int) ([]*ActivityModel, error) {
	opts := options.Find().SetSort(bson.D{{Key: "ts", Value: -1}}).SetLimit(int64(limit))
	return repo.find(ctx, bson.M{"user_id": userID}, opts)
}

func (repo *ActivityMongo) FindInRange(ctx context.Context, userID string, start, end time.Time) ([]*ActivityModel, error) {
	filter, opts := rangeQuery(userID, start, end)
	return repo.find(ctx, filter, opts)
}

// rangeQuery both bounds inclusive, oldest first
func rangeQuery(userID string, start, end time.Time) (bson.M, *options.FindOptions) {
	return bson.M{
		"user_id": userID,
		"ts":      bson.M{"$gte": start.UTC(), "$lte": end.UTC()},
	}, options.Find().SetSort(bson.D{{Key: "ts", Value: 1}})
}

func (repo *ActivityMongo) FindByID(ctx context.Context, id string) (*ActivityModel, error) {
	item := new(ActivityModel)
	err := repo.Coll.FindOne(ctx, bson.M{"_id": id}).Decode(item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (repo *ActivityMongo) Save(ctx context.Context, a *ActivityModel) error {
	_, err := repo.Coll.InsertOne(ctx, a)
	return err
}

func (repo *ActivityMongo) Update(ctx context.Context, a *ActivityModel) error {
	_, err := repo.Coll.UpdateByID(ctx, a.ID, bson.M{"$set": bson.M{
		"name":       a.Name,
		"duration":   a.Duration,
		"category":   a.Category,
		"updated_at": a.UpdatedAt,
	}})
	return err
}

func (repo *ActivityMongo) Delete(ctx context.Context, id string) error {
	_, err := repo.Coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
