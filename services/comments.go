package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/models"
)

type CommentService struct {
	comments CommentStore
	posts    CommentParentStore
	stories  CommentParentStore
	notifier Notifier
	log      *zap.Logger
	now      func() time.Time
}

func NewCommentService(comments CommentStore, posts, stories CommentParentStore, notifier Notifier, log *zap.Logger) *CommentService {
	return &CommentService{
		comments: comments,
		posts:    posts,
		stories:  stories,
		notifier: notifier,
		log:      log,
		now:      now,
	}
}

// Create inserts the comment and then appends its id to the parent. If the
// append fails the comment is removed again so no orphan is left behind.
func (s *CommentService) Create(ctx context.Context, actor primitive.ObjectID, kind models.ParentKind, parentID primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("Comment text is required")
	}
	parents, noun, err := s.parent(kind)
	if err != nil {
		return nil, err
	}
	parentAuthor, err := parents.AuthorOf(ctx, parentID)
	if err != nil {
		return nil, storeErr(err, noun+" not found", "find comment parent")
	}

	ts := s.now()
	comment := &models.Comment{
		ID:        primitive.NewObjectID(),
		UserID:    actor,
		Text:      text,
		Likes:     emptyIDs(),
		Replies:   []models.Reply{},
		CreatedAt: ts,
		UpdatedAt: ts,
	}
	pid := parentID
	if kind == models.ParentPost {
		comment.PostID = &pid
	} else {
		comment.StoryID = &pid
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, Internal("create comment", err)
	}
	if err := parents.AddComment(ctx, parentID, comment.ID); err != nil {
		if undoErr := s.comments.Delete(ctx, comment.ID); undoErr != nil {
			s.log.Error("orphan comment left behind, reconciler will repair",
				zap.String("comment", comment.ID.Hex()),
				zap.String("parent", parentID.Hex()),
				zap.Error(undoErr))
		}
		return nil, storeErr(err, noun+" not found", "append comment to parent")
	}

	notify(ctx, s.notifier, parentAuthor, actor, models.NotifyComment, func(n *models.Notification) {
		n.CommentID = &comment.ID
		if kind == models.ParentPost {
			n.PostID = &pid
		} else {
			n.StoryID = &pid
		}
	})
	return s.Get(ctx, comment.ID)
}

func (s *CommentService) Get(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	comment, err := s.comments.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "Comment not found", "find comment")
	}
	return comment, nil
}

func (s *CommentService) ForPost(ctx context.Context, postID primitive.ObjectID) ([]*models.Comment, error) {
	return s.forParent(ctx, models.ParentPost, postID)
}

func (s *CommentService) ForStory(ctx context.Context, storyID primitive.ObjectID) ([]*models.Comment, error) {
	return s.forParent(ctx, models.ParentStory, storyID)
}

func (s *CommentService) forParent(ctx context.Context, kind models.ParentKind, parentID primitive.ObjectID) ([]*models.Comment, error) {
	comments, err := s.comments.ListByParent(ctx, kind, parentID)
	if err != nil {
		return nil, Internal("list comments", err)
	}
	return comments, nil
}

// Delete pulls the comment id from its parent and then removes the comment.
// If the removal fails the id is put back on the parent.
func (s *CommentService) Delete(ctx context.Context, actor, id primitive.ObjectID) error {
	comment, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if comment.UserID != actor {
		return Forbidden("User not authorized")
	}

	kind, parentID := comment.Parent()
	parents, _, err := s.parent(kind)
	if err != nil {
		return Internal("comment without parent", err)
	}

	detached := true
	if err := parents.RemoveComment(ctx, parentID, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Internal("detach comment from parent", err)
		}
		// Parent already gone; nothing to detach from.
		detached = false
	}

	if err := s.comments.Delete(ctx, id); err != nil {
		if detached {
			if undoErr := parents.AddComment(ctx, parentID, id); undoErr != nil {
				s.log.Error("comment detached but not deleted, reconciler will repair",
					zap.String("comment", id.Hex()),
					zap.Error(undoErr))
			}
		}
		return storeErr(err, "Comment not found", "delete comment")
	}
	return nil
}

func (s *CommentService) Like(ctx context.Context, actor, id primitive.ObjectID) error {
	return toggleLike(ctx, s.comments, id, actor, true, "Comment")
}

func (s *CommentService) Unlike(ctx context.Context, actor, id primitive.ObjectID) error {
	return toggleLike(ctx, s.comments, id, actor, false, "Comment")
}

// Reply appends a reply to a top-level comment.
func (s *CommentService) Reply(ctx context.Context, actor, id primitive.ObjectID, text string) (*models.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("Reply text is required")
	}
	reply := models.Reply{
		UserID:    actor,
		Text:      text,
		CreatedAt: s.now(),
		Likes:     emptyIDs(),
	}
	if err := s.comments.AddReply(ctx, id, reply); err != nil {
		return nil, storeErr(err, "Comment not found", "add reply")
	}

	comment, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	notify(ctx, s.notifier, comment.UserID, actor, models.NotifyComment, func(n *models.Notification) {
		n.CommentID = &comment.ID
		n.PostID = comment.PostID
		n.StoryID = comment.StoryID
	})
	return comment, nil
}

func (s *CommentService) parent(kind models.ParentKind) (CommentParentStore, string, error) {
	switch kind {
	case models.ParentPost:
		return s.posts, "Post", nil
	case models.ParentStory:
		return s.stories, "Story", nil
	}
	return nil, "", Validation("Post ID or Story ID is required")
}
