package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	mongodb "travelbook/pkg/db/mongo"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const namespaceNotFound = 26

type MongoStore struct {
	db           *mongo.Database
	txManager    mongodb.TransactionManager
	registry     *bsoncodec.Registry
	readTimeout  time.Duration
	writeTimeout time.Duration

	mu    sync.RWMutex
	known map[string]struct{}
}

type MongoOptions struct {
	Database     string
	Transactions bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewMongoStore(client *mongo.Client, opts MongoOptions) *MongoStore {
	return &MongoStore{
		db:           client.Database(opts.Database),
		txManager:    mongodb.NewTransactionManager(client, opts.Transactions),
		registry:     mongodb.NewRegistry(),
		readTimeout:  opts.ReadTimeout,
		writeTimeout: opts.WriteTimeout,
		known:        make(map[string]struct{}),
	}
}

// collection resolves table against the cached collection set, refreshing
// the cache once on a miss. Missing collections are never auto-created.
func (s *MongoStore) collection(ctx context.Context, table string) (*mongo.Collection, error) {
	s.mu.RLock()
	_, ok := s.known[table]
	s.mu.RUnlock()
	if ok {
		return s.db.Collection(table), nil
	}

	names, err := s.db.ListCollectionNames(ctx, bson.M{})
	if err != nil {
		return nil, Classify(table, err)
	}

	s.mu.Lock()
	for _, name := range names {
		s.known[name] = struct{}{}
	}
	_, ok = s.known[table]
	s.mu.Unlock()

	if !ok {
		return nil, newError(CodeRelationMissing, table, "collection does not exist", nil)
	}
	return s.db.Collection(table), nil
}

func (s *MongoStore) forget(table string) {
	s.mu.Lock()
	delete(s.known, table)
	s.mu.Unlock()
}

func (s *MongoStore) classify(table string, err error) error {
	classified := Classify(table, err)
	if IsCode(classified, CodeRelationMissing) {
		s.forget(table)
	}
	return classified
}

func (s *MongoStore) Select(ctx context.Context, table string, filter Filter, order []Order, rng Range, out any) error {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return err
	}

	opts := options.Find().SetSkip(rng.Offset)
	if rng.Limit > 0 {
		opts.SetLimit(int64(rng.Limit))
	}
	if len(order) > 0 {
		opts.SetSort(sortSpec(order))
	}

	cursor, err := coll.Find(ctx, bson.M(filter), opts)
	if err != nil {
		return s.classify(table, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, out); err != nil {
		return s.classify(table, fmt.Errorf("failed to decode rows: %w", err))
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, table string, filter Filter, out any) error {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return err
	}

	if err := coll.FindOne(ctx, bson.M(filter)).Decode(out); err != nil {
		return s.classify(table, err)
	}
	return nil
}

func (s *MongoStore) Count(ctx context.Context, table string, filter Filter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return 0, err
	}

	n, err := coll.CountDocuments(ctx, bson.M(filter))
	if err != nil {
		return 0, s.classify(table, err)
	}
	return n, nil
}

func (s *MongoStore) Insert(ctx context.Context, table string, rows ...any) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}

	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return nil, err
	}

	docs := make([]any, 0, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		doc, id, err := s.withID(row)
		if err != nil {
			return nil, newError(CodeUnknown, table, "failed to encode row", err)
		}
		docs = append(docs, doc)
		ids = append(ids, id)
	}

	if len(docs) == 1 {
		if _, err := coll.InsertOne(ctx, docs[0]); err != nil {
			return nil, s.classify(table, err)
		}
		return ids, nil
	}

	_, err = coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err == nil {
		return ids, nil
	}

	var bulkErr mongo.BulkWriteException
	if !errors.As(err, &bulkErr) {
		return nil, s.classify(table, err)
	}
	failed := make(map[int]struct{}, len(bulkErr.WriteErrors))
	for _, we := range bulkErr.WriteErrors {
		failed[we.Index] = struct{}{}
	}
	written := make([]string, 0, len(ids)-len(failed))
	for i, id := range ids {
		if _, bad := failed[i]; !bad {
			written = append(written, id)
		}
	}
	return written, s.classify(table, err)
}

// withID encodes row and assigns a UUID _id when the row has none.
func (s *MongoStore) withID(row any) (bson.D, string, error) {
	data, err := bson.MarshalWithRegistry(s.registry, row)
	if err != nil {
		return nil, "", err
	}
	var doc bson.D
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, "", err
	}
	for _, elem := range doc {
		if elem.Key == "_id" {
			if id, ok := elem.Value.(string); ok && id != "" {
				return doc, id, nil
			}
			if elem.Value != nil && elem.Value != "" {
				return doc, fmt.Sprint(elem.Value), nil
			}
		}
	}
	id := uuid.NewString()
	out := make(bson.D, 0, len(doc)+1)
	out = append(out, bson.E{Key: "_id", Value: id})
	for _, elem := range doc {
		if elem.Key != "_id" {
			out = append(out, elem)
		}
	}
	return out, id, nil
}

func (s *MongoStore) Update(ctx context.Context, table string, patch Patch, filter Filter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return 0, err
	}

	set, err := s.encodePatch(patch)
	if err != nil {
		return 0, newError(CodeUnknown, table, "failed to encode patch", err)
	}

	res, err := coll.UpdateMany(ctx, bson.M(filter), bson.M{"$set": set})
	if err != nil {
		return 0, s.classify(table, err)
	}
	return res.MatchedCount, nil
}

// encodePatch runs the patch through the registry so decimals become Decimal128.
func (s *MongoStore) encodePatch(patch Patch) (bson.D, error) {
	data, err := bson.MarshalWithRegistry(s.registry, bson.M(patch))
	if err != nil {
		return nil, err
	}
	var set bson.D
	if err := bson.Unmarshal(data, &set); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *MongoStore) Delete(ctx context.Context, table string, filter Filter) (int64, error) {
	ctx, cancel := mongodb.WithTimeout(ctx, s.writeTimeout)
	defer cancel()

	coll, err := s.collection(ctx, table)
	if err != nil {
		return 0, err
	}

	res, err := coll.DeleteMany(ctx, bson.M(filter))
	if err != nil {
		return 0, s.classify(table, err)
	}
	return res.DeletedCount, nil
}

func (s *MongoStore) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.txManager.ExecuteTransaction(ctx, fn)
}

func (s *MongoStore) Ping(ctx context.Context) error {
	ctx, cancel := mongodb.WithTimeout(ctx, s.readTimeout)
	defer cancel()
	if err := s.db.Client().Ping(ctx, nil); err != nil {
		return Classify("", err)
	}
	return nil
}

func sortSpec(order []Order) bson.D {
	spec := make(bson.D, 0, len(order))
	for _, o := range order {
		dir := 1
		if o.Desc {
			dir = -1
		}
		spec = append(spec, bson.E{Key: o.Field, Value: dir})
	}
	return spec
}

// Classify maps a driver error onto a store error code.
func Classify(table string, err error) error {
	if err == nil {
		return nil
	}

	var storeErr *Error
	if errors.As(err, &storeErr) {
		return storeErr
	}

	switch {
	case errors.Is(err, context.Canceled):
		return newError(CodeAborted, table, "operation aborted by caller", err)
	case errors.Is(err, mongo.ErrNoDocuments):
		return newError(CodeRowNotFound, table, "no matching row", err)
	case mongo.IsDuplicateKeyError(err):
		return newError(CodeDuplicateKey, table, "duplicate key", err)
	case hasServerCode(err, namespaceNotFound):
		return newError(CodeRelationMissing, table, "collection does not exist", err)
	case mongo.IsNetworkError(err), mongo.IsTimeout(err), errors.Is(err, context.DeadlineExceeded):
		return newError(CodeTransient, table, "store temporarily unreachable", err)
	default:
		return newError(CodeUnknown, table, "store operation failed", err)
	}
}

func hasServerCode(err error, code int) bool {
	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) {
		return serverErr.HasErrorCode(code)
	}
	return false
}
