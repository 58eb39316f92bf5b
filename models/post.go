package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaText  MediaType = "text"
)

type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID   `bson:"user" json:"-"`
	Caption   string               `bson:"caption" json:"caption"`
	MediaURL  string               `bson:"mediaUrl" json:"mediaUrl"`
	MediaType MediaType            `bson:"mediaType" json:"mediaType"`
	Location  string               `bson:"location" json:"location"`
	Hashtags  []string             `bson:"hashtags" json:"hashtags"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`

	// Only set on explore results.
	EngagementScore int `bson:"engagementScore,omitempty" json:"engagementScore,omitempty"`

	User *Author `bson:"-" json:"user"` // Populated in response only
}

// SetAuthor attaches a populated author, falling back to a bare id when the
// account no longer exists.
func (p *Post) SetAuthor(a *Author) {
	if a == nil {
		a = &Author{ID: p.UserID}
	}
	p.User = a
}
