// Package mongo stores cards as documents in a MongoDB collection.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"gitlab.com/dirk.krummacker/businesscard-service/internal/model"
	"gitlab.com/dirk.krummacker/businesscard-service/internal/store"
)

// Collection is the name of the collection holding the cards.
const Collection = "businessCards"

// Store is a store.Store on top of a MongoDB collection.
type Store struct {
	coll *mongo.Collection
}

var _ store.Store = (*Store)(nil)

// Connect opens a client for uri and returns the database named in its path.
func Connect(ctx context.Context, uri string) (*mongo.Database, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid MongoDB URI: %w", err)
	}
	dbName := strings.TrimPrefix(parsed.Path, "/")
	if dbName == "" {
		return nil, errors.New("MongoDB URI names no database")
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("could not ping MongoDB: %w", err)
	}
	return client.Database(dbName), nil
}

// NewStore returns a store on the given collection.
func NewStore(coll *mongo.Collection) *Store {
	return &Store{coll: coll}
}

// NewID returns a random UUID.
func (s *Store) NewID() string {
	return uuid.NewString()
}

// Get returns the card with the given id.
func (s *Store) Get(ctx context.Context, id string) (model.Card, error) {
	var doc bson.M
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.Card{}, store.ErrNotFound
	}
	if err != nil {
		return model.Card{}, fmt.Errorf("could not find card %s: %w", id, err)
	}
	return fromDocument(doc), nil
}

// Put replaces the card document, inserting it when it does not exist.
func (s *Store) Put(ctx context.Context, card model.Card) error {
	doc := bson.M{}
	for key, value := range card.Fields() {
		doc[key] = value
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": card.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("could not store card %s: %w", card.ID, err)
	}
	return nil
}

// Delete removes the card with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("could not delete card %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// QueryByOwner returns the cards created by the given user.
func (s *Store) QueryByOwner(ctx context.Context, ownerID string) ([]model.Card, error) {
	opts := options.Find().SetSort(bson.D{{Key: model.KeyCreatedAt, Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{model.KeyUserID: ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("could not query cards of %s: %w", ownerID, err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("could not read cards of %s: %w", ownerID, err)
	}
	cards := make([]model.Card, 0, len(docs))
	for _, doc := range docs {
		cards = append(cards, fromDocument(doc))
	}
	return cards, nil
}

// fromDocument normalizes a raw document into a card.
func fromDocument(doc bson.M) model.Card {
	id, _ := doc["_id"].(string)
	return model.FromFields(id, doc)
}
