package database

import (
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// AbsentFilter matches document id only while member is not in field.
func AbsentFilter(id primitive.ObjectID, field string, member primitive.ObjectID) bson.M {
	return bson.M{"_id": id, field: bson.M{"$ne": member}}
}

// PresentFilter matches document id only while member is in field.
func PresentFilter(id primitive.ObjectID, field string, member primitive.ObjectID) bson.M {
	return bson.M{"_id": id, field: member}
}

// ActiveStoriesFilter matches stories by authors that never expire or
// expire after now.
func ActiveStoriesFilter(authors []primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"user": bson.M{"$in": authors},
		"$or": bson.A{
			bson.M{"expireAt": bson.M{"$gt": now}},
			bson.M{"expireAt": nil},
		},
	}
}

// SearchFilter matches users whose username or full name contains query,
// ignoring case. query is matched literally.
func SearchFilter(query string) bson.M {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
	return bson.M{"$or": bson.A{
		bson.M{"username": pattern},
		bson.M{"fullName": pattern},
	}}
}

// privateUserFields are never sent back through list queries.
var privateUserFields = bson.M{"password": 0}

// authorStages populates the author of each document into "author".
func authorStages() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: UsersCollection},
			{Key: "localField", Value: "user"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author"},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "author.password", Value: 0},
			{Key: "author.email", Value: 0},
			{Key: "author.followers", Value: 0},
			{Key: "author.following", Value: 0},
		}}},
	}
}

// ListPipeline matches, sorts newest first, limits (when limit > 0) and
// populates authors.
func ListPipeline(match bson.M, limit int) mongo.Pipeline {
	p := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	if limit > 0 {
		p = append(p, bson.D{{Key: "$limit", Value: limit}})
	}
	return append(p, authorStages()...)
}

// ExplorePipeline ranks posts by likes + 2*comments, newest first on ties.
func ExplorePipeline(limit int) mongo.Pipeline {
	size := func(field string) bson.M {
		return bson.M{"$size": bson.M{"$ifNull": bson.A{field, bson.A{}}}}
	}
	p := mongo.Pipeline{
		{{Key: "$addFields", Value: bson.M{
			"engagementScore": bson.M{"$add": bson.A{
				size("$likes"),
				bson.M{"$multiply": bson.A{2, size("$comments")}},
			}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "engagementScore", Value: -1}, {Key: "createdAt", Value: -1}}}},
		{{Key: "$limit", Value: limit}},
	}
	return append(p, authorStages()...)
}

// SuggestionPipeline samples up to limit accounts outside exclude.
func SuggestionPipeline(exclude []primitive.ObjectID, limit int) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$nin": exclude}}}},
		{{Key: "$sample", Value: bson.M{"size": limit}}},
		{{Key: "$project", Value: privateUserFields}},
	}
}
