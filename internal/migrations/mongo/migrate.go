package mongo

import (
	"context"
	"fmt"
	"travelbook/internal/migrations/mongo/validators"
	"travelbook/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	TimeSlotsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().SetName("date_time_unique").SetUnique(true),
		},
	}

	// A slot holds at most one confirmed booking. Cancelled rows stay out of
	// the index so the slot can be booked again.
	BookingsIndexes = []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "date", Value: 1}, {Key: "time", Value: 1}},
			Options: options.Index().
				SetName("confirmed_slot_unique").
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "confirmed"}),
		},
		{Keys: bson.D{{Key: "date", Value: 1}, {Key: "created_at", Value: -1}}},
	}

	RequestsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	DeletedItemsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "original_table", Value: 1}, {Key: "deleted_at", Value: -1}}},
		{Keys: bson.D{{Key: "deleted_at", Value: -1}}},
	}

	InvoiceSettingsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "organization_id", Value: 1}},
			Options: options.Index().SetName("organization_unique").SetUnique(true),
		},
	}
)

type collection struct {
	Indexes   []mongo.IndexModel
	Validator bson.M
}

// Collections lists every collection the back office reads or writes.
func Collections() map[string]collection {
	return map[string]collection{
		"TimeSlots":       {Indexes: TimeSlotsIndexes, Validator: validators.TimeSlotValidator},
		"Bookings":        {Indexes: BookingsIndexes, Validator: validators.BookingValidator},
		"Requests":        {Indexes: RequestsIndexes, Validator: validators.RequestValidator},
		"DeletedItems":    {Indexes: DeletedItemsIndexes, Validator: validators.DeletedItemValidator},
		"InvoiceSettings": {Indexes: InvoiceSettingsIndexes, Validator: validators.InvoiceSettingsValidator},
	}
}

func RunMigration(ctx context.Context, db *mongo.Database, log *logger.Logger) error {
	log.Info("Running Mongo migrations", "database", db.Name())

	for name, def := range Collections() {
		if err := ensureCollection(ctx, db, name, def.Validator, log); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes, log); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	log.Info("All migrations applied successfully", "database", db.Name())
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if len(models) == 0 {
		return nil
	}
	names, err := db.Collection(name).Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "indexes", names)
	return nil
}
