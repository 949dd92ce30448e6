package user

import (
	"context"
	"errors"

	"github.com/pot-code/focus-tracker/internal/infrastructure/driver"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserMongo users collection
type UserMongo struct {
	Coll *mongo.Collection
}

var _ UserRepository = &UserMongo{}

func NewUserMongoRepository(Coll *mongo.Collection) *UserMongo {
	return &UserMongo{Coll}
}

// EnsureIndexes unique email index backing ErrDuplicatedUser
func (repo *UserMongo) EnsureIndexes(ctx context.Context) error {
	_, err := repo.Coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (repo *UserMongo) findOne(ctx context.Context, filter bson.M) (*UserModel, error) {
	user := new(UserModel)
	err := repo.Coll.FindOne(ctx, filter).Decode(user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (repo *UserMongo) FindByEmail(ctx context.Context, email string) (*UserModel, error) {
	return repo.findOne(ctx, bson.M{"email": email})
}

func (repo *UserMongo) FindByID(ctx context.Context, id string) (*UserModel, error) {
	return repo.findOne(ctx, bson.M{"_id": id})
}

func (repo *UserMongo) SaveUser(ctx context.Context, post *UserModel) error {
	_, err := repo.Coll.InsertOne(ctx, post)
	if errors.Is(driver.TranslateMongoError(err), driver.ErrDuplicateKey) {
		return ErrDuplicatedUser
	}
	return err
}

func (repo *UserMongo) UpdateLogin(ctx context.Context, post *UserModel) error {
	_, err := repo.Coll.UpdateByID(ctx, post.ID, bson.M{"$set": bson.M{
		"login_retry":  post.LoginRetry,
		"last_attempt": post.LastAttempt,
	}})
	return err
}
