package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type StoryType string

const (
	StoryEphemeral StoryType = "ephemeral"
	StoryPoetry    StoryType = "poetry"
	StoryThought   StoryType = "thought"
)

// EphemeralLifetime is how long an ephemeral story stays visible.
const EphemeralLifetime = 24 * time.Hour

// Valid reports whether t is one of the known story types.
func (t StoryType) Valid() bool {
	switch t {
	case StoryEphemeral, StoryPoetry, StoryThought:
		return true
	}
	return false
}

type Story struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID   `bson:"user" json:"-"`
	Content   string               `bson:"content" json:"content"`
	MediaURL  string               `bson:"mediaUrl,omitempty" json:"mediaUrl"`
	MediaType MediaType            `bson:"mediaType" json:"mediaType"`
	StoryType StoryType            `bson:"storyType" json:"storyType"`
	ExpireAt  *time.Time           `bson:"expireAt" json:"expireAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Comments  []primitive.ObjectID `bson:"comments" json:"comments"`
	Views     []primitive.ObjectID `bson:"views" json:"views"`
	Hashtags  []string             `bson:"hashtags" json:"hashtags"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`

	User *Author `bson:"-" json:"user"`
}

// Expired reports whether the story is past its expiry at now.
func (s *Story) Expired(now time.Time) bool {
	return s.ExpireAt != nil && !s.ExpireAt.After(now)
}

func (s *Story) SetAuthor(a *Author) {
	if a == nil {
		a = &Author{ID: s.UserID}
	}
	s.User = a
}
