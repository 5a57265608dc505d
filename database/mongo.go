package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "itineraries"

	mongoConnTimeout = 10 * time.Second
)

// MongoStore keeps itineraries as native BSON documents. Trip dates are
// written as BSON datetimes, so reads hand back primitive.DateTime values at
// any depth.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	s := &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(CollectionName),
	}
	_, err = s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: keyUserID, Value: 1}, {Key: keyCreatedAt, Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	log.Info().Str("database", database).Msg("✅ Successfully connected to MongoDB")
	return s, nil
}

func (s *MongoStore) Create(ctx context.Context, userID string, doc Document) (string, error) {
	now := primitive.NewDateTimeFromTime(time.Now())
	record := bson.M{}
	for k, v := range nativeDates(body(doc)) {
		record[k] = v
	}
	record[keyUserID] = userID
	record[keyCreatedAt] = now
	record[keyUpdatedAt] = now

	res, err := s.collection.InsertOne(ctx, record)
	if err != nil {
		return "", fmt.Errorf("failed to create itinerary: %w", err)
	}
	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}
	return oid.Hex(), nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	var raw bson.M
	err = s.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get itinerary: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) ListByUser(ctx context.Context, userID string) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: keyCreatedAt, Value: -1}})
	cursor, err := s.collection.Find(ctx, bson.M{keyUserID: userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query itineraries: %w", err)
	}
	defer cursor.Close(ctx)

	var raws []bson.M
	if err := cursor.All(ctx, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode itineraries: %w", err)
	}
	docs := make([]Document, 0, len(raws))
	for _, raw := range raws {
		docs = append(docs, fromBSON(raw))
	}
	return docs, nil
}

func (s *MongoStore) Update(ctx context.Context, id string, fields Document) (Document, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	set := bson.M{}
	for k, v := range nativeDates(body(fields)) {
		set[k] = v
	}
	set[keyUpdatedAt] = primitive.NewDateTimeFromTime(time.Now())

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var raw bson.M
	err = s.collection.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&raw)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update itinerary: %w", err)
	}
	return fromBSON(raw), nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidID, id)
	}

	res, err := s.collection.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// fromBSON swaps _id for a hex "id". Nested values keep their BSON types.
func fromBSON(raw bson.M) Document {
	doc := Document(raw)
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		doc[keyID] = oid.Hex()
	}
	delete(doc, "_id")
	return doc
}

// nativeDates rewrites the trip dates the record encodes as RFC 3339 text
// into BSON datetimes. Anything unparseable is stored as given.
func nativeDates(doc Document) Document {
	for _, k := range []string{"startDate", "endDate"} {
		if v, ok := doc[k]; ok {
			doc[k] = toDateTime(v)
		}
	}
	days, ok := doc["days"].([]any)
	if !ok {
		return doc
	}
	out := make([]any, len(days))
	for i, d := range days {
		day, ok := d.(map[string]any)
		if !ok {
			out[i] = d
			continue
		}
		copied := make(map[string]any, len(day))
		for k, v := range day {
			copied[k] = v
		}
		if v, ok := copied["date"]; ok {
			copied["date"] = toDateTime(v)
		}
		out[i] = copied
	}
	doc["days"] = out
	return doc
}

func toDateTime(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return v
	}
	return primitive.NewDateTimeFromTime(t)
}
