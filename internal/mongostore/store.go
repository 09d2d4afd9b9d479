// Package mongostore implements docstore.Store on MongoDB.
package mongostore

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HerbHall/wakdex/internal/docstore"
)

// Compile-time interface guard.
var _ docstore.Loader = (*Store)(nil)

// Store reads documents from one MongoDB database. Each docstore collection
// maps to the MongoDB collection of the same name.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Store{client: client, db: client.Database(database)}, nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

// Close disconnects the client.
func (s *Store) Close() error {
	return s.client.Disconnect(context.Background())
}

// Count returns the number of documents in collection matching filter.
func (s *Store) Count(ctx context.Context, collection string, filter []docstore.Clause) (int, error) {
	f, err := buildFilter(filter)
	if err != nil {
		return 0, err
	}
	n, err := s.db.Collection(collection).CountDocuments(ctx, f)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return int(n), nil
}

// Find returns the documents described by q as relaxed extended JSON.
func (s *Store) Find(ctx context.Context, collection string, q docstore.Query) ([]docstore.Document, error) {
	f, err := buildFilter(q.Filter)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetProjection(buildProjection(q.Projection)).
		SetSort(buildSort(q.Sort)).
		SetSkip(int64(max(q.Skip, 0)))
	if q.Limit > 0 {
		opts.SetLimit(int64(q.Limit))
	}

	cur, err := s.db.Collection(collection).Find(ctx, f, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	docs := []docstore.Document{}
	for cur.Next(ctx) {
		b, err := bson.MarshalExtJSON(cur.Current, false, false)
		if err != nil {
			return nil, fmt.Errorf("encode %s document: %w", collection, err)
		}
		docs = append(docs, docstore.Document(b))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

// Replace deletes every document in collection and inserts docs. It is not
// atomic; it is meant for seeding.
func (s *Store) Replace(ctx context.Context, collection string, docs []docstore.Document) error {
	coll := s.db.Collection(collection)
	if _, err := coll.DeleteMany(ctx, bson.D{}); err != nil {
		return fmt.Errorf("clear %s: %w", collection, err)
	}
	if len(docs) == 0 {
		return nil
	}

	batch := make([]any, 0, len(docs))
	for i, d := range docs {
		var v bson.D
		if err := bson.UnmarshalExtJSON(d, false, &v); err != nil {
			return fmt.Errorf("decode %s[%d]: %w", collection, i, err)
		}
		batch = append(batch, v)
	}
	if _, err := coll.InsertMany(ctx, batch); err != nil {
		return fmt.Errorf("insert %s: %w", collection, err)
	}
	return nil
}

// buildFilter groups clauses by field so that bounds on the same path
// ({$gte, $lte}) end up in a single operator document.
func buildFilter(clauses []docstore.Clause) (bson.D, error) {
	filter := bson.D{}
	index := map[string]int{}
	for _, c := range clauses {
		op, err := operator(c)
		if err != nil {
			return nil, err
		}
		i, ok := index[c.Field]
		if !ok {
			index[c.Field] = len(filter)
			filter = append(filter, bson.E{Key: c.Field, Value: bson.D{op}})
			continue
		}
		ops := filter[i].Value.(bson.D)
		filter[i].Value = append(ops, op)
	}
	return filter, nil
}

func operator(c docstore.Clause) (bson.E, error) {
	switch c.Op {
	case docstore.Eq:
		return bson.E{Key: "$eq", Value: c.Value}, nil
	case docstore.Gte:
		return bson.E{Key: "$gte", Value: c.Value}, nil
	case docstore.Lte:
		return bson.E{Key: "$lte", Value: c.Value}, nil
	case docstore.In:
		vs, ok := c.Value.([]int)
		if !ok {
			return bson.E{}, fmt.Errorf("in on %s: want []int, got %T", c.Field, c.Value)
		}
		if vs == nil {
			vs = []int{}
		}
		return bson.E{Key: "$in", Value: vs}, nil
	case docstore.Contains:
		s, ok := c.Value.(string)
		if !ok {
			return bson.E{}, fmt.Errorf("contains on %s: want string, got %T", c.Field, c.Value)
		}
		return bson.E{Key: "$regex", Value: primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}}, nil
	default:
		return bson.E{}, fmt.Errorf("unsupported operator %s on %s", c.Op, c.Field)
	}
}

// buildProjection always excludes _id.
func buildProjection(paths []string) bson.D {
	p := bson.D{{Key: "_id", Value: 0}}
	for _, path := range paths {
		p = append(p, bson.E{Key: path, Value: 1})
	}
	return p
}

// buildSort appends _id so pages are stable when sort keys tie.
func buildSort(fields []docstore.SortField) bson.D {
	s := make(bson.D, 0, len(fields)+1)
	for _, f := range fields {
		dir := 1
		if f.Dir == docstore.Desc {
			dir = -1
		}
		s = append(s, bson.E{Key: f.Path, Value: dir})
	}
	return append(s, bson.E{Key: "_id", Value: 1})
}
