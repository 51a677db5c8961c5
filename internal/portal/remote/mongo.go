package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/x/mongo/driver/topology"

	"github.com/dmitrijs2005/communityhub/internal/common"
	"github.com/dmitrijs2005/communityhub/internal/logging"
	"github.com/dmitrijs2005/communityhub/internal/portal/models"
)

const (
	connectTimeout      = 10 * time.Second
	defaultPollInterval = 3 * time.Second

	// Mongo "Unauthorized" command error code.
	codeUnauthorized = 13
)

// MongoStore implements Store on a MongoDB database: one Mongo collection
// per portal collection, documents keyed by _id = record id. Subscriptions
// ride change streams; when the deployment does not support them (a
// standalone server), the store degrades to interval polling.
type MongoStore struct {
	client       *mongo.Client
	db           *mongo.Database
	log          logging.Logger
	pollInterval time.Duration
}

// NewMongoStore connects to uri and returns a store bound to database name.
func NewMongoStore(ctx context.Context, uri, name string, log logging.Logger) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to remote store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	return &MongoStore{
		client:       client,
		db:           client.Database(name),
		log:          log.With("component", "remote"),
		pollInterval: defaultPollInterval,
	}, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (models.Document, error) {
	var doc models.Document
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err != nil {
		return nil, mapError(err)
	}
	delete(doc, "_id")
	return doc, nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, doc models.Document) error {
	stored := doc.Clone()
	stored["_id"] = id
	stored["id"] = id

	opts := options.Replace().SetUpsert(true)
	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, stored, opts)
	return mapError(err)
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, patch models.Document) error {
	fields := patch.Clone()
	delete(fields, "_id")
	delete(fields, "id")

	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapError(err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: %s/%s", common.ErrNotFound, collection, id)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return mapError(err)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

type mongoSubscription struct {
	cancel context.CancelFunc
}

func (s *mongoSubscription) Unsubscribe() {
	s.cancel()
}

func (s *MongoStore) Subscribe(ctx context.Context, collection string, order models.Order, onSnapshot SnapshotFunc, onError ErrorFunc) (Subscription, error) {
	ctx, cancel := context.WithCancel(ctx)
	go s.serve(ctx, collection, order, onSnapshot, onError)
	return &mongoSubscription{cancel: cancel}, nil
}

func (s *MongoStore) serve(ctx context.Context, collection string, order models.Order, onSnapshot SnapshotFunc, onError ErrorFunc) {
	if !s.deliver(ctx, collection, order, onSnapshot, onError) {
		return
	}

	stream, err := s.db.Collection(collection).Watch(ctx, mongo.Pipeline{})
	if err != nil {
		mapped := mapError(err)
		if errors.Is(mapped, common.ErrPermissionDenied) {
			s.report(ctx, onError, mapped)
			return
		}
		// Change streams need a replica set; poll instead.
		s.log.Info(ctx, "change streams unavailable, polling", "collection", collection, "interval", s.pollInterval)
		s.pollLoop(ctx, collection, order, onSnapshot, onError)
		return
	}
	defer func() { _ = stream.Close(context.Background()) }()

	for stream.Next(ctx) {
		if !s.deliver(ctx, collection, order, onSnapshot, onError) {
			return
		}
	}
	if err := stream.Err(); err != nil && ctx.Err() == nil {
		s.report(ctx, onError, mapError(err))
	}
}

func (s *MongoStore) pollLoop(ctx context.Context, collection string, order models.Order, onSnapshot SnapshotFunc, onError ErrorFunc) {
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	var last []byte
	for {
		select {
		case <-ticker.C:
			docs, err := s.snapshot(ctx, collection, order)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				mapped := mapError(err)
				s.report(ctx, onError, mapped)
				if errors.Is(mapped, common.ErrPermissionDenied) {
					return
				}
				continue
			}
			raw, _ := json.Marshal(docs)
			if bytes.Equal(raw, last) {
				continue
			}
			last = raw
			if ctx.Err() != nil {
				return
			}
			onSnapshot(docs)
		case <-ctx.Done():
			return
		}
	}
}

// deliver reads a full snapshot and hands it to the callback. It returns
// false when the subscription should stop (cancelled, or rejected by the
// access policy).
func (s *MongoStore) deliver(ctx context.Context, collection string, order models.Order, onSnapshot SnapshotFunc, onError ErrorFunc) bool {
	docs, err := s.snapshot(ctx, collection, order)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		mapped := mapError(err)
		s.report(ctx, onError, mapped)
		return !errors.Is(mapped, common.ErrPermissionDenied)
	}
	if ctx.Err() != nil {
		return false
	}
	onSnapshot(docs)
	return true
}

// ReadAll returns the current full snapshot of a collection, sorted by
// order when configured.
func (s *MongoStore) ReadAll(ctx context.Context, collection string, order models.Order) ([]models.Document, error) {
	docs, err := s.snapshot(ctx, collection, order)
	if err != nil {
		return nil, mapError(err)
	}
	return docs, nil
}

func (s *MongoStore) snapshot(ctx context.Context, collection string, order models.Order) ([]models.Document, error) {
	opts := options.Find()
	if order.Field != "" {
		dir := 1
		if order.Descending {
			dir = -1
		}
		opts.SetSort(bson.D{{Key: order.Field, Value: dir}})
	}

	cur, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(context.Background()) }()

	docs := []models.Document{}
	for cur.Next(ctx) {
		var doc models.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		delete(doc, "_id")
		docs = append(docs, doc)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *MongoStore) report(ctx context.Context, onError ErrorFunc, err error) {
	if ctx.Err() != nil {
		return
	}
	onError(err)
}

// mapError normalizes driver errors to the sentinel taxonomy. Unauthorized
// command errors become ErrPermissionDenied; timeouts and server selection
// failures become ErrUnavailable; anything else passes through unchanged.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return common.ErrNotFound
	}

	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == codeUnauthorized {
		return fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
	}
	var writeErr mongo.WriteException
	if errors.As(err, &writeErr) {
		for _, we := range writeErr.WriteErrors {
			if we.Code == codeUnauthorized {
				return fmt.Errorf("%w: %v", common.ErrPermissionDenied, err)
			}
		}
	}

	if mongo.IsTimeout(err) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}
	var selErr topology.ServerSelectionError
	if errors.As(err, &selErr) {
		return fmt.Errorf("%w: %v", common.ErrUnavailable, err)
	}

	return err
}
