package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultProfilePicture is stored for accounts that never uploaded an avatar.
const DefaultProfilePicture = "https://upload.wikimedia.org/wikipedia/commons/8/89/Portrait_Placeholder.png"

type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	Username       string               `bson:"username" json:"username"`
	Email          string               `bson:"email" json:"email"`
	Password       string               `bson:"password" json:"-"`
	FullName       string               `bson:"fullName" json:"fullName"`
	Bio            string               `bson:"bio" json:"bio"`
	Website        string               `bson:"website" json:"website"`
	ProfilePicture string               `bson:"profilePicture" json:"profilePicture"`
	IsPrivate      bool                 `bson:"isPrivate" json:"isPrivate"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	CreatedAt      time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// IsFollowing reports whether u follows target.
func (u *User) IsFollowing(target primitive.ObjectID) bool {
	return ContainsID(u.Following, target)
}

// Author is the public slice of a user embedded in posts, stories and comments.
type Author struct {
	ID             primitive.ObjectID `bson:"_id" json:"_id"`
	Username       string             `bson:"username" json:"username"`
	ProfilePicture string             `bson:"profilePicture" json:"profilePicture"`
}

// AuthorOf returns the author view of u.
func AuthorOf(u *User) *Author {
	return &Author{ID: u.ID, Username: u.Username, ProfilePicture: u.ProfilePicture}
}

// ContainsID reports whether id is in ids.
func ContainsID(ids []primitive.ObjectID, id primitive.ObjectID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
