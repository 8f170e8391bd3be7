package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mbodji/fueltrack/internal/domain/models"
	"github.com/mbodji/fueltrack/internal/repository"
)

// Store implements repository.Store on MongoDB. Each namespace maps to one
// collection keyed by the record's natural id.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection.
func NewStore(ctx context.Context, uri, dbName string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) coll(name string) *mongo.Collection {
	return s.client.Database(s.dbName).Collection(name)
}

func getByID[T any](ctx context.Context, coll *mongo.Collection, id string) (T, error) {
	var out T
	err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return out, repository.ErrNotFound
	}
	if err != nil {
		return out, fmt.Errorf("find %s/%s: %w", coll.Name(), id, err)
	}
	return out, nil
}

func putByID[T any](ctx context.Context, coll *mongo.Collection, id string, record T) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, record, opts); err != nil {
		return fmt.Errorf("upsert %s/%s: %w", coll.Name(), id, err)
	}
	return nil
}

func listAll[T any](ctx context.Context, coll *mongo.Collection) ([]T, error) {
	cursor, err := coll.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", coll.Name(), err)
	}
	var out []T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return out, nil
}

// GetSettings loads the singleton settings record.
func (s *Store) GetSettings(ctx context.Context) (models.Settings, error) {
	return getByID[models.Settings](ctx, s.coll(repository.NamespaceSettings), models.SettingsKey)
}

// PutSettings persists the singleton settings record.
func (s *Store) PutSettings(ctx context.Context, settings models.Settings) error {
	settings.ID = models.SettingsKey
	return putByID(ctx, s.coll(repository.NamespaceSettings), models.SettingsKey, settings)
}

func (s *Store) GetDailyLog(ctx context.Context, date string) (models.DailyLog, error) {
	return getByID[models.DailyLog](ctx, s.coll(repository.NamespaceDailyLogs), date)
}

func (s *Store) PutDailyLog(ctx context.Context, log models.DailyLog) error {
	return putByID(ctx, s.coll(repository.NamespaceDailyLogs), log.Date, log)
}

func (s *Store) ListDailyLogs(ctx context.Context) ([]models.DailyLog, error) {
	return listAll[models.DailyLog](ctx, s.coll(repository.NamespaceDailyLogs))
}

func (s *Store) GetCachedFood(ctx context.Context, normalizedInput string) (models.FoodCacheEntry, error) {
	return getByID[models.FoodCacheEntry](ctx, s.coll(repository.NamespaceFoodCache), normalizedInput)
}

func (s *Store) PutCachedFood(ctx context.Context, entry models.FoodCacheEntry) error {
	return putByID(ctx, s.coll(repository.NamespaceFoodCache), entry.NormalizedInput, entry)
}

func (s *Store) ListCachedFoods(ctx context.Context) ([]models.FoodCacheEntry, error) {
	return listAll[models.FoodCacheEntry](ctx, s.coll(repository.NamespaceFoodCache))
}

func (s *Store) GetHydration(ctx context.Context, date string) (models.HydrationLog, error) {
	return getByID[models.HydrationLog](ctx, s.coll(repository.NamespaceHydration), date)
}

func (s *Store) PutHydration(ctx context.Context, log models.HydrationLog) error {
	return putByID(ctx, s.coll(repository.NamespaceHydration), log.Date, log)
}

func (s *Store) ListHydration(ctx context.Context) ([]models.HydrationLog, error) {
	return listAll[models.HydrationLog](ctx, s.coll(repository.NamespaceHydration))
}

func (s *Store) GetUsage(ctx context.Context, date, provider string) (models.UsageRecord, error) {
	return getByID[models.UsageRecord](ctx, s.coll(repository.NamespaceAPIUsage), models.UsageKey(date, provider))
}

// IncrementUsage bumps the day's request counter with a single $inc upsert so
// concurrent callers cannot lose increments.
func (s *Store) IncrementUsage(ctx context.Context, date, provider string) error {
	filter := bson.M{"_id": models.UsageKey(date, provider)}
	update := bson.M{
		"$inc": bson.M{"requests": 1},
		"$setOnInsert": bson.M{
			"date":     date,
			"provider": provider,
		},
	}
	opts := options.Update().SetUpsert(true)
	if _, err := s.coll(repository.NamespaceAPIUsage).UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("increment usage %s/%s: %w", date, provider, err)
	}
	return nil
}

func (s *Store) ListUsage(ctx context.Context) ([]models.UsageRecord, error) {
	return listAll[models.UsageRecord](ctx, s.coll(repository.NamespaceAPIUsage))
}

// RestoreSnapshot replaces the contents of every namespace present in the
// snapshot inside one transaction. Namespaces absent from the snapshot are
// left untouched; on any failure the whole restore aborts.
func (s *Store) RestoreSnapshot(ctx context.Context, snap repository.Snapshot) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start restore session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		if snap.Settings != nil {
			// The settings id is not part of the backup wire format; re-key
			// on the way in so the singleton lookup keeps working.
			records := make([]models.Settings, len(snap.Settings))
			for i, st := range snap.Settings {
				st.ID = models.SettingsKey
				records[i] = st
			}
			if err := replaceAll(sc, s.coll(repository.NamespaceSettings), records); err != nil {
				return nil, err
			}
		}
		if snap.DailyLogs != nil {
			if err := replaceAll(sc, s.coll(repository.NamespaceDailyLogs), snap.DailyLogs); err != nil {
				return nil, err
			}
		}
		if snap.FoodCache != nil {
			if err := replaceAll(sc, s.coll(repository.NamespaceFoodCache), snap.FoodCache); err != nil {
				return nil, err
			}
		}
		if snap.Hydration != nil {
			if err := replaceAll(sc, s.coll(repository.NamespaceHydration), snap.Hydration); err != nil {
				return nil, err
			}
		}
		if snap.APIUsage != nil {
			if err := replaceAll(sc, s.coll(repository.NamespaceAPIUsage), snap.APIUsage); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("restore snapshot: %w", err)
	}
	return nil
}

func replaceAll[T any](ctx context.Context, coll *mongo.Collection, records []T) error {
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("clear %s: %w", coll.Name(), err)
	}
	if len(records) == 0 {
		return nil
	}
	docs := make([]interface{}, len(records))
	for i, r := range records {
		docs[i] = r
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("repopulate %s: %w", coll.Name(), err)
	}
	return nil
}
