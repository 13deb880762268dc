//go:build integration

package recordstore_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
	migrations "travelbook/internal/migrations/mongo"
	mongodb "travelbook/pkg/db/mongo"
	"travelbook/pkg/logger"
	"travelbook/pkg/model"
	"travelbook/pkg/recordstore"
	"travelbook/pkg/status"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultMongoURI   = "mongodb://localhost:27017"
	connectionTimeout = 10 * time.Second
)

// mongoHelper owns a scratch database that is dropped when the test ends.
type mongoHelper struct {
	client *mongo.Client
	db     *mongo.Database
}

func newMongoHelper(t *testing.T) *mongoHelper {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = defaultMongoURI
	}
	dbName := os.Getenv("TEST_DB_NAME")
	if dbName == "" {
		dbName = "travelbook_it_" + time.Now().Format("150405")
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetRegistry(mongodb.NewRegistry()))
	if err != nil {
		t.Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Skipf("MongoDB not reachable at %s: %v", uri, err)
	}

	h := &mongoHelper{client: client, db: client.Database(dbName)}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
		defer cancel()
		if err := h.db.Drop(ctx); err != nil {
			t.Logf("warning: failed to drop test database: %v", err)
		}
		if err := client.Disconnect(ctx); err != nil {
			t.Logf("warning: failed to disconnect from MongoDB: %v", err)
		}
	})
	return h
}

func (h *mongoHelper) store() *recordstore.MongoStore {
	return recordstore.NewMongoStore(h.client, recordstore.MongoOptions{
		Database:     h.db.Name(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	})
}

func TestMongoStore_MissingCollection(t *testing.T) {
	h := newMongoHelper(t)
	store := h.store()

	var rows []model.TimeSlot
	err := store.Select(context.Background(), "TimeSlots", nil, nil, recordstore.Range{}, &rows)
	if !recordstore.IsCode(err, recordstore.CodeRelationMissing) {
		t.Fatalf("expected %s before migration, got %v", recordstore.CodeRelationMissing, err)
	}
}

func TestMongoStore_AfterMigration(t *testing.T) {
	h := newMongoHelper(t)
	ctx := context.Background()
	if err := migrations.RunMigration(ctx, h.db, logger.Discard()); err != nil {
		t.Fatalf("migration failed: %v", err)
	}
	store := h.store()
	now := time.Now().UTC().Truncate(time.Millisecond)

	t.Run("bulk insert keeps going past duplicates", func(t *testing.T) {
		slots := []any{
			model.TimeSlot{Date: "2025-07-01", Time: "09:00", Status: model.SlotOpen, CreatedAt: now, UpdatedAt: now},
			model.TimeSlot{Date: "2025-07-01", Time: "09:00", Status: model.SlotOpen, CreatedAt: now, UpdatedAt: now},
			model.TimeSlot{Date: "2025-07-01", Time: "09:30", Status: model.SlotOpen, CreatedAt: now, UpdatedAt: now},
		}
		ids, err := store.Insert(ctx, "TimeSlots", slots...)
		if !recordstore.IsDuplicateKey(err) {
			t.Fatalf("expected duplicate key, got %v", err)
		}
		if len(ids) != 2 {
			t.Fatalf("written ids = %v, want 2", ids)
		}

		n, err := store.Count(ctx, "TimeSlots", recordstore.Filter{"date": "2025-07-01"})
		if err != nil || n != 2 {
			t.Fatalf("count = %d, %v; want 2", n, err)
		}
	})

	t.Run("select orders and pages", func(t *testing.T) {
		var rows []model.TimeSlot
		err := store.Select(ctx, "TimeSlots", recordstore.Filter{"date": "2025-07-01"},
			[]recordstore.Order{{Field: "time", Desc: true}}, recordstore.Range{Limit: 1}, &rows)
		if err != nil {
			t.Fatalf("select failed: %v", err)
		}
		if len(rows) != 1 || rows[0].Time != "09:30" {
			t.Fatalf("rows = %+v, want the 09:30 slot", rows)
		}
	})

	t.Run("update and find", func(t *testing.T) {
		n, err := store.Update(ctx, "TimeSlots",
			recordstore.Patch{"status": model.SlotClosed, "updated_at": now},
			recordstore.Filter{"date": "2025-07-01", "time": "09:00"})
		if err != nil || n != 1 {
			t.Fatalf("update matched %d, %v; want 1", n, err)
		}

		var slot model.TimeSlot
		if err := store.FindOne(ctx, "TimeSlots", recordstore.Filter{"time": "09:00"}, &slot); err != nil {
			t.Fatalf("find failed: %v", err)
		}
		if slot.Status != model.SlotClosed {
			t.Errorf("status = %s, want closed", slot.Status)
		}
	})

	t.Run("find reports missing rows", func(t *testing.T) {
		var slot model.TimeSlot
		err := store.FindOne(ctx, "TimeSlots", recordstore.Filter{"time": "23:30"}, &slot)
		if !recordstore.IsNotFound(err) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("one confirmed booking per slot", func(t *testing.T) {
		booking := func(s status.Status) model.Booking {
			return model.Booking{
				Date: "2025-07-01", Time: "09:30", CustomerName: "Ayse Yilmaz", Phone: "+49 211 1234567",
				Status: s, CreatedAt: now, UpdatedAt: now,
			}
		}
		if _, err := store.Insert(ctx, "Bookings", booking(status.Confirmed)); err != nil {
			t.Fatalf("first booking failed: %v", err)
		}
		if _, err := store.Insert(ctx, "Bookings", booking(status.Confirmed)); !recordstore.IsDuplicateKey(err) {
			t.Fatalf("expected duplicate key for second confirmed booking, got %v", err)
		}
		if _, err := store.Insert(ctx, "Bookings", booking(status.Cancelled)); err != nil {
			t.Fatalf("cancelled booking should not collide: %v", err)
		}
	})

	t.Run("delete", func(t *testing.T) {
		n, err := store.Delete(ctx, "TimeSlots", recordstore.Filter{"date": "2025-07-01"})
		if err != nil || n != 2 {
			t.Fatalf("deleted %d, %v; want 2", n, err)
		}
	})

	t.Run("transaction callback error is returned", func(t *testing.T) {
		want := errors.New("stop")
		if err := store.InTx(ctx, func(context.Context) error { return want }); !errors.Is(err, want) {
			t.Fatalf("InTx error = %v, want %v", err, want)
		}
	})

	t.Run("ping", func(t *testing.T) {
		if err := store.Ping(ctx); err != nil {
			t.Fatalf("ping failed: %v", err)
		}
	})
}
