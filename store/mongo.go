package store

import (
	"context"
	"time"

	"bankline/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists messages in a single MongoDB collection and answers
// the thread views with aggregation pipelines.
type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) Append(ctx context.Context, msg *models.Message) (*models.Message, error) {
	stored := *msg
	stored.ID = primitive.NewObjectID()
	stored.Timestamp = time.Now().UTC()

	if err := stored.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.coll.InsertOne(ctx, stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *MongoStore) ListByThread(ctx context.Context, threadID string, offset, limit int64) ([]models.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})
	if offset > 0 {
		opts.SetSkip(offset)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := s.coll.Find(ctx, bson.M{"threadId": threadID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err := cursor.All(ctx, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

func (s *MongoStore) FirstInThread(ctx context.Context, threadID string) (*models.Message, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}})

	var msg models.Message
	err := s.coll.FindOne(ctx, bson.M{"threadId": threadID}, opts).Decode(&msg)
	if err == mongo.ErrNoDocuments {
		return nil, &models.NotFoundError{Resource: "thread", ID: threadID}
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// ListUserThreads groups every message the user sent or received by thread,
// keeps the chronologically last one per group and counts the unread
// messages addressed to the user's room.
func (s *MongoStore) ListUserThreads(ctx context.Context, userID string) ([]models.ThreadSummary, error) {
	room := models.UserRoom(userID).String()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "$or", Value: bson.A{
			bson.D{{Key: "senderId", Value: userID}},
			bson.D{{Key: "receiver", Value: room}},
		}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$threadId"},
			{Key: "lastMessage", Value: bson.D{{Key: "$last", Value: "$$ROOT"}}},
			{Key: "unreadCount", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$and", Value: bson.A{
					bson.D{{Key: "$eq", Value: bson.A{"$receiver", room}}},
					bson.D{{Key: "$eq", Value: bson.A{"$read", false}}},
				}}},
				1,
				0,
			}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.timestamp", Value: -1}}}},
	}

	return s.aggregateThreads(ctx, pipeline, false)
}

// ListAgentThreads returns every thread opened by a registered user, newest
// activity first. Unread counts all messages not yet read by the support
// side, matching the propeneer dashboard.
func (s *MongoStore) ListAgentThreads(ctx context.Context) ([]models.ThreadSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "senderKind", Value: string(models.SenderUser)}}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$threadId"},
			{Key: "lastMessage", Value: bson.D{{Key: "$last", Value: "$$ROOT"}}},
			{Key: "unreadCount", Value: bson.D{{Key: "$sum", Value: bson.D{{Key: "$cond", Value: bson.A{
				bson.D{{Key: "$eq", Value: bson.A{"$read", false}}},
				1,
				0,
			}}}}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.timestamp", Value: -1}}}},
	}

	return s.aggregateThreads(ctx, pipeline, false)
}

// ListAnonymousThreads returns one summary per visitor session that has
// messages. The anonymous view carries no unread count.
func (s *MongoStore) ListAnonymousThreads(ctx context.Context) ([]models.ThreadSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "sessionToken", Value: bson.D{{Key: "$exists", Value: true}, {Key: "$ne", Value: ""}}}}}},
		{{Key: "$sort", Value: bson.D{{Key: "timestamp", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sessionToken"},
			{Key: "lastMessage", Value: bson.D{{Key: "$last", Value: "$$ROOT"}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "lastMessage.timestamp", Value: -1}}}},
	}

	return s.aggregateThreads(ctx, pipeline, true)
}

func (s *MongoStore) aggregateThreads(ctx context.Context, pipeline mongo.Pipeline, anonymous bool) ([]models.ThreadSummary, error) {
	cursor, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var threads []models.ThreadSummary
	if err := cursor.All(ctx, &threads); err != nil {
		return nil, err
	}
	for i := range threads {
		threads[i].IsAnonymous = anonymous
	}
	return threads, nil
}

func (s *MongoStore) MarkRead(ctx context.Context, threadID string, receiver models.Room) (int64, error) {
	result, err := s.coll.UpdateMany(
		ctx,
		bson.M{
			"threadId": threadID,
			"receiver": receiver.String(),
			"read":     false,
		},
		bson.M{"$set": bson.M{"read": true}},
	)
	if err != nil {
		return 0, err
	}
	return result.ModifiedCount, nil
}
