package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/isdelr/userdir-be/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UsersCollection is the collection user documents live in.
const UsersCollection = "users"

// userDocument is the BSON shape of a user record.
type userDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	Username       string             `bson:"username"`
	AccountNumber  string             `bson:"accountNumber"`
	EmailAddress   string             `bson:"emailAddress"`
	IdentityNumber string             `bson:"identityNumber"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func (d *userDocument) toModel() *models.User {
	return &models.User{
		ID:             d.ID.Hex(),
		Username:       d.Username,
		AccountNumber:  d.AccountNumber,
		EmailAddress:   d.EmailAddress,
		IdentityNumber: d.IdentityNumber,
		CreatedAt:      d.CreatedAt.UTC(),
		UpdatedAt:      d.UpdatedAt.UTC(),
	}
}

// MongoStore keeps user records in a MongoDB collection.
type MongoStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoStore creates a store over the users collection of db.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{coll: db.Collection(UsersCollection), now: timestamp}
}

// EnsureIndexes creates the unique indexes on the natural keys and email.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "accountNumber", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "emailAddress", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "identityNumber", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("failed to create user indexes: %w", err)
	}
	return nil
}

// Insert stores a new user document.
func (s *MongoStore) Insert(ctx context.Context, fields models.NewUserFields) (*models.User, error) {
	now := s.now()
	doc := userDocument{
		ID:             primitive.NewObjectID(),
		Username:       fields.Username,
		AccountNumber:  fields.AccountNumber,
		EmailAddress:   fields.EmailAddress,
		IdentityNumber: fields.IdentityNumber,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, wrapMongoErr("insert user", err)
	}
	return doc.toModel(), nil
}

// FindOne returns the user matching filter, or nil.
func (s *MongoStore) FindOne(ctx context.Context, filter models.Filter) (*models.User, error) {
	if filter.Field != models.FieldAccountNumber && filter.Field != models.FieldIdentityNumber {
		return nil, fmt.Errorf("unsupported filter field %q", filter.Field)
	}
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.M{filter.Field: filter.Value}).Decode(&doc)
	return decodeResult(&doc, err, "find user")
}

// UpdateByID applies patch to the user with the given id and returns the updated document.
func (s *MongoStore) UpdateByID(ctx context.Context, id string, patch models.UserPatch) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	set := bson.M{"updatedAt": s.now()}
	if patch.Username != nil {
		set["username"] = *patch.Username
	}
	if patch.AccountNumber != nil {
		set["accountNumber"] = *patch.AccountNumber
	}
	if patch.EmailAddress != nil {
		set["emailAddress"] = *patch.EmailAddress
	}
	if patch.IdentityNumber != nil {
		set["identityNumber"] = *patch.IdentityNumber
	}

	var doc userDocument
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err = s.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	return decodeResult(&doc, err, "update user")
}

// DeleteByID removes the user with the given id and returns the deleted document.
func (s *MongoStore) DeleteByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	var doc userDocument
	err = s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	return decodeResult(&doc, err, "delete user")
}

// Ping checks the server connection.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}

func decodeResult(doc *userDocument, err error, op string) (*models.User, error) {
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, wrapMongoErr(op, err)
	}
	return doc.toModel(), nil
}

func wrapMongoErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %s: %v", models.ErrValidation, op, err)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
