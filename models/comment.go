package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ParentKind names the collection a comment hangs off.
type ParentKind string

const (
	ParentPost  ParentKind = "post"
	ParentStory ParentKind = "story"
)

type Comment struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	UserID    primitive.ObjectID   `bson:"user" json:"-"`
	PostID    *primitive.ObjectID  `bson:"post,omitempty" json:"post,omitempty"`
	StoryID   *primitive.ObjectID  `bson:"story,omitempty" json:"story,omitempty"`
	Text      string               `bson:"text" json:"text"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	Replies   []Reply              `bson:"replies" json:"replies"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time            `bson:"updatedAt" json:"updatedAt"`

	User *Author `bson:"-" json:"user"`
}

// Reply is embedded in a comment and cannot itself be replied to.
type Reply struct {
	UserID    primitive.ObjectID   `bson:"user" json:"-"`
	Text      string               `bson:"text" json:"text"`
	CreatedAt time.Time            `bson:"createdAt" json:"createdAt"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`

	User *Author `bson:"-" json:"user"`
}

// Parent returns the kind and id of the post or story c belongs to.
func (c *Comment) Parent() (ParentKind, primitive.ObjectID) {
	if c.PostID != nil {
		return ParentPost, *c.PostID
	}
	if c.StoryID != nil {
		return ParentStory, *c.StoryID
	}
	return "", primitive.NilObjectID
}

func (c *Comment) SetAuthor(a *Author) {
	if a == nil {
		a = &Author{ID: c.UserID}
	}
	c.User = a
}

// AuthorIDs returns the comment author followed by every reply author.
func (c *Comment) AuthorIDs() []primitive.ObjectID {
	ids := []primitive.ObjectID{c.UserID}
	for _, r := range c.Replies {
		ids = append(ids, r.UserID)
	}
	return ids
}

// Populate fills the comment and reply authors from a lookup table.
func (c *Comment) Populate(authors map[primitive.ObjectID]*Author) {
	c.SetAuthor(authors[c.UserID])
	for i := range c.Replies {
		r := &c.Replies[i]
		if a, ok := authors[r.UserID]; ok {
			r.User = a
		} else {
			r.User = &Author{ID: r.UserID}
		}
	}
}
