// Package mongo provides a KVStore backed by MongoDB, with one Mongo
// collection per namespace. Use it when the index must be shared between
// processes.
package mongo

import (
	"context"
	"fmt"
	"strings"

	"github.com/adammck/ixstore/pkg/api"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	kId  = "_id"
	kVal = "v"
)

type Store struct {
	db *mongo.Database
}

var _ api.KVStore = (*Store)(nil) // Type check: implements interface

func New(db *mongo.Database) *Store {
	return &Store{
		db: db,
	}
}

type doc struct {
	ID  string `bson:"_id"`
	Val []byte `bson:"v"`
}

func (s *Store) Get(ctx context.Context, collection, key string) ([]byte, bool, error) {
	var d doc

	err := s.coll(collection).FindOne(ctx, bson.M{kId: key}).Decode(&d)
	if err == mongo.ErrNoDocuments {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("FindOne: %w", err)
	}

	return d.Val, true, nil
}

func (s *Store) Put(ctx context.Context, collection, key string, value []byte) error {
	opts := options.Update().SetUpsert(true)
	_, err := s.coll(collection).UpdateOne(
		ctx,
		bson.M{kId: key},
		bson.M{"$set": bson.M{kVal: value}},
		opts,
	)
	if err != nil {
		return fmt.Errorf("UpdateOne: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) (bool, error) {
	res, err := s.coll(collection).DeleteOne(ctx, bson.M{kId: key})
	if err != nil {
		return false, fmt.Errorf("DeleteOne: %w", err)
	}

	return res.DeletedCount > 0, nil
}

func (s *Store) GetAll(ctx context.Context, collection string) (map[string][]byte, error) {
	cur, err := s.coll(collection).Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("Find: %w", err)
	}
	defer cur.Close(ctx)

	out := map[string][]byte{}
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("Decode: %w", err)
		}
		out[d.ID] = d.Val
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("Cursor: %w", err)
	}

	return out, nil
}

func (s *Store) coll(collection string) *mongo.Collection {
	return s.db.Collection(collName(collection))
}

// collName maps a namespace to a legal Mongo collection name. Namespaces use
// slashes (e.g. index_store/data), which Mongo rejects.
func collName(collection string) string {
	return strings.ReplaceAll(collection, "/", ".")
}
