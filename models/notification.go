package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type NotificationType string

const (
	NotifyFollow  NotificationType = "follow"
	NotifyLike    NotificationType = "like"
	NotifyComment NotificationType = "comment"
	NotifyMention NotificationType = "mention"
)

type Notification struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	RecipientID primitive.ObjectID  `bson:"recipient" json:"recipient"`
	SenderID    primitive.ObjectID  `bson:"sender" json:"-"`
	Type        NotificationType    `bson:"type" json:"type"`
	PostID      *primitive.ObjectID `bson:"post,omitempty" json:"post,omitempty"`
	StoryID     *primitive.ObjectID `bson:"story,omitempty" json:"story,omitempty"`
	CommentID   *primitive.ObjectID `bson:"comment,omitempty" json:"comment,omitempty"`
	Read        bool                `bson:"read" json:"read"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`

	Sender *Author `bson:"-" json:"sender"`
}
