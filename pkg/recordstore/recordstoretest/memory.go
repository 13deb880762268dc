// Package recordstoretest provides an in-memory recordstore.Store for tests.
package recordstoretest

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
	mongodb "travelbook/pkg/db/mongo"
	"travelbook/pkg/recordstore"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsoncodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type uniqueIndex struct {
	fields  []string
	partial bson.M
}

// Store keeps documents per table in insertion order. Only declared tables
// exist; anything else yields RELATION_MISSING.
type Store struct {
	// Fail, when set, is consulted before every operation. A non-nil result
	// is returned as the operation's error.
	Fail func(op, table string, filter recordstore.Filter) error

	mu       sync.Mutex
	registry *bsoncodec.Registry
	tables   map[string][]bson.M
	uniques  map[string][]uniqueIndex
	txCount  int
}

func New(tables ...string) *Store {
	s := &Store{
		registry: mongodb.NewRegistry(),
		tables:   make(map[string][]bson.M),
		uniques:  make(map[string][]uniqueIndex),
	}
	for _, t := range tables {
		s.tables[t] = nil
	}
	return s
}

// UniqueIndex mirrors a (partial) unique index.
func (s *Store) UniqueIndex(table string, fields []string, partial recordstore.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uniques[table] = append(s.uniques[table], uniqueIndex{fields: fields, partial: s.normalizeFilter(partial)})
}

// Transactions reports how many InTx calls ran.
func (s *Store) Transactions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txCount
}

// Rows returns a copy of the raw documents in table.
func (s *Store) Rows(table string) []bson.M {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]bson.M, len(s.tables[table]))
	for i, doc := range s.tables[table] {
		out[i] = copyDoc(doc)
	}
	return out
}

func (s *Store) check(op, table string, filter recordstore.Filter) error {
	if s.Fail != nil {
		if err := s.Fail(op, table, filter); err != nil {
			return recordstore.Classify(table, err)
		}
	}
	if _, ok := s.tables[table]; !ok {
		return recordstore.NewError(recordstore.CodeRelationMissing, table, "collection does not exist", nil)
	}
	return nil
}

func (s *Store) Select(ctx context.Context, table string, filter recordstore.Filter, order []recordstore.Order, rng recordstore.Range, out any) error {
	if err := ctx.Err(); err != nil {
		return recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("select", table, filter); err != nil {
		return err
	}

	matched := s.match(table, s.normalizeFilter(filter))
	sortDocs(matched, order)

	start := int(rng.Offset)
	if start > len(matched) {
		start = len(matched)
	}
	matched = matched[start:]
	if rng.Limit > 0 && rng.Limit < len(matched) {
		matched = matched[:rng.Limit]
	}

	return s.decodeAll(matched, out)
}

func (s *Store) FindOne(ctx context.Context, table string, filter recordstore.Filter, out any) error {
	if err := ctx.Err(); err != nil {
		return recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("find", table, filter); err != nil {
		return err
	}

	matched := s.match(table, s.normalizeFilter(filter))
	if len(matched) == 0 {
		return recordstore.NewError(recordstore.CodeRowNotFound, table, "no matching row", nil)
	}
	return s.decode(matched[0], out)
}

func (s *Store) Count(ctx context.Context, table string, filter recordstore.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("count", table, filter); err != nil {
		return 0, err
	}
	return int64(len(s.match(table, s.normalizeFilter(filter)))), nil
}

func (s *Store) Insert(ctx context.Context, table string, rows ...any) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("insert", table, nil); err != nil {
		return nil, err
	}

	var ids []string
	var firstErr error
	for _, row := range rows {
		doc, err := s.toDoc(row)
		if err != nil {
			return ids, recordstore.NewError(recordstore.CodeUnknown, table, "failed to encode row", err)
		}
		id, ok := doc["_id"]
		if !ok || id == nil || id == "" {
			doc["_id"] = uuid.NewString()
		}
		if err := s.violatesUnique(table, doc, -1); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		s.tables[table] = append(s.tables[table], doc)
		ids = append(ids, fmt.Sprint(doc["_id"]))
	}
	return ids, firstErr
}

func (s *Store) Update(ctx context.Context, table string, patch recordstore.Patch, filter recordstore.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("update", table, filter); err != nil {
		return 0, err
	}

	set, err := s.toDoc(bson.M(patch))
	if err != nil {
		return 0, recordstore.NewError(recordstore.CodeUnknown, table, "failed to encode patch", err)
	}

	norm := s.normalizeFilter(filter)
	var matched int64
	for i, doc := range s.tables[table] {
		if !matches(doc, norm) {
			continue
		}
		updated := copyDoc(doc)
		for k, v := range set {
			updated[k] = v
		}
		if err := s.violatesUnique(table, updated, i); err != nil {
			return matched, err
		}
		s.tables[table][i] = updated
		matched++
	}
	return matched, nil
}

func (s *Store) Delete(ctx context.Context, table string, filter recordstore.Filter) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, recordstore.Classify(table, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check("delete", table, filter); err != nil {
		return 0, err
	}

	norm := s.normalizeFilter(filter)
	kept := s.tables[table][:0:0]
	var deleted int64
	for _, doc := range s.tables[table] {
		if matches(doc, norm) {
			deleted++
			continue
		}
		kept = append(kept, doc)
	}
	s.tables[table] = kept
	return deleted, nil
}

// InTx restores every table to its prior state when fn fails.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	s.txCount++
	snapshot := make(map[string][]bson.M, len(s.tables))
	for name, docs := range s.tables {
		snapshot[name] = append([]bson.M(nil), docs...)
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.tables = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) match(table string, filter bson.M) []bson.M {
	var out []bson.M
	for _, doc := range s.tables[table] {
		if matches(doc, filter) {
			out = append(out, doc)
		}
	}
	return out
}

func (s *Store) violatesUnique(table string, doc bson.M, self int) error {
	for i, other := range s.tables[table] {
		if i != self && reflect.DeepEqual(other["_id"], doc["_id"]) {
			return recordstore.NewError(recordstore.CodeDuplicateKey, table, "duplicate key on _id", nil)
		}
	}
	for _, idx := range s.uniques[table] {
		if !matches(doc, idx.partial) {
			continue
		}
		for i, other := range s.tables[table] {
			if i == self || !matches(other, idx.partial) {
				continue
			}
			same := true
			for _, f := range idx.fields {
				if !reflect.DeepEqual(other[f], doc[f]) {
					same = false
					break
				}
			}
			if same {
				return recordstore.NewError(recordstore.CodeDuplicateKey, table,
					"duplicate key on "+strings.Join(idx.fields, ","), nil)
			}
		}
	}
	return nil
}

func (s *Store) toDoc(v any) (bson.M, error) {
	data, err := bson.MarshalWithRegistry(s.registry, v)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// normalizeFilter encodes filter values the same way stored values were.
func (s *Store) normalizeFilter(filter recordstore.Filter) bson.M {
	if len(filter) == 0 {
		return bson.M{}
	}
	doc, err := s.toDoc(bson.M(filter))
	if err != nil {
		return bson.M(filter)
	}
	return doc
}

func (s *Store) decode(doc bson.M, out any) error {
	data, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	return bson.UnmarshalWithRegistry(s.registry, data, out)
}

func (s *Store) decodeAll(docs []bson.M, out any) error {
	slice := reflect.ValueOf(out)
	if slice.Kind() != reflect.Pointer || slice.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("out must be a pointer to a slice, got %T", out)
	}
	elemType := slice.Elem().Type().Elem()
	result := reflect.MakeSlice(slice.Elem().Type(), 0, len(docs))
	for _, doc := range docs {
		var target reflect.Value
		if elemType.Kind() == reflect.Pointer {
			target = reflect.New(elemType.Elem())
		} else {
			target = reflect.New(elemType)
		}
		if err := s.decode(doc, target.Interface()); err != nil {
			return err
		}
		if elemType.Kind() == reflect.Pointer {
			result = reflect.Append(result, target)
		} else {
			result = reflect.Append(result, target.Elem())
		}
	}
	slice.Elem().Set(result)
	return nil
}

func matches(doc, filter bson.M) bool {
	for k, want := range filter {
		if !reflect.DeepEqual(doc[k], want) {
			return false
		}
	}
	return true
}

func sortDocs(docs []bson.M, order []recordstore.Order) {
	if len(order) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, o := range order {
			c := compare(docs[i][o.Field], docs[j][o.Field])
			if c == 0 {
				continue
			}
			if o.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}

func compare(a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case int32:
		if bv, ok := b.(int32); ok {
			return cmpOrdered(av, bv)
		}
	case int64:
		if bv, ok := b.(int64); ok {
			return cmpOrdered(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmpOrdered(av, bv)
		}
	case primitive.DateTime:
		if bv, ok := b.(primitive.DateTime); ok {
			return cmpOrdered(av, bv)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	return 0
}

func cmpOrdered[T int32 | int64 | float64 | primitive.DateTime](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func copyDoc(doc bson.M) bson.M {
	out := make(bson.M, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
