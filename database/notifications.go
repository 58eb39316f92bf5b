package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"visage/models"
	"visage/services"
)

type NotificationStore struct {
	coll *mongo.Collection
}

func NewNotificationStore(db *mongo.Database) *NotificationStore {
	return &NotificationStore{coll: db.Collection(NotificationsCollection)}
}

func (s *NotificationStore) Create(ctx context.Context, n *models.Notification) error {
	_, err := s.coll.InsertOne(ctx, n)
	return translate(err)
}

type notificationRow struct {
	models.Notification `bson:",inline"`
	SenderAuthor        *models.Author `bson:"senderAuthor"`
}

// NotificationPipeline lists the newest notifications of recipient with the
// sender populated.
func NotificationPipeline(recipient primitive.ObjectID, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"recipient": recipient}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "sender"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "senderAuthor"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$senderAuthor"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}
}

func (s *NotificationStore) ListForRecipient(ctx context.Context, recipient primitive.ObjectID, limit int) ([]*models.Notification, error) {
	cur, err := s.coll.Aggregate(ctx, NotificationPipeline(recipient, limit))
	if err != nil {
		return nil, err
	}
	rows, err := decodeAll[notificationRow](ctx, cur)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Notification, len(rows))
	for i := range rows {
		n := rows[i].Notification
		n.Sender = rows[i].SenderAuthor
		if n.Sender == nil {
			n.Sender = &models.Author{ID: n.SenderID}
		}
		out[i] = &n
	}
	return out, nil
}

// MarkReadUpdate flags a notification read as of at.
func MarkReadUpdate(at time.Time) bson.M {
	return bson.M{"$set": bson.M{"read": true, "updatedAt": at}}
}

func (s *NotificationStore) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": id, "recipient": recipient},
		MarkReadUpdate(at))
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return services.ErrNotFound
	}
	return nil
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	res, err := s.coll.UpdateMany(ctx,
		bson.M{"recipient": recipient, "read": false},
		MarkReadUpdate(at))
	if err != nil {
		return 0, translate(err)
	}
	return res.ModifiedCount, nil
}
