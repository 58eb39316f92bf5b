package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/models"
)

// Reconciler repairs state that a partially failed multi-document write
// can leave behind.
//
// Follow edges: every account's following list is authoritative and the
// followers lists are repaired towards it one id at a time.
//
// Comment references: every comment is listed on its parent (when the
// parent still exists) and parents do not list comments that are gone.
type Reconciler struct {
	users    UserStore
	comments CommentStore
	posts    CommentParentStore
	stories  CommentParentStore
	log      *zap.Logger
}

type ReconcileReport struct {
	FollowersRepaired  int
	CommentsReattached int
	DanglingRemoved    int
}

func NewReconciler(users UserStore, comments CommentStore, posts, stories CommentParentStore, log *zap.Logger) *Reconciler {
	return &Reconciler{users: users, comments: comments, posts: posts, stories: stories, log: log}
}

func (r *Reconciler) Run(ctx context.Context) (ReconcileReport, error) {
	var report ReconcileReport

	fixed, err := r.reconcileFollows(ctx)
	if err != nil {
		return report, err
	}
	report.FollowersRepaired = fixed

	reattached, removed, err := r.reconcileComments(ctx)
	if err != nil {
		return report, err
	}
	report.CommentsReattached = reattached
	report.DanglingRemoved = removed

	r.log.Info("reconciliation finished",
		zap.Int("followers_repaired", report.FollowersRepaired),
		zap.Int("comments_reattached", report.CommentsReattached),
		zap.Int("dangling_removed", report.DanglingRemoved))
	return report, nil
}

// reconcileFollows works from a snapshot concurrent follows can outdate.
// Every repair is a single-id delta re-checked against the follower's
// current following list.
func (r *Reconciler) reconcileFollows(ctx context.Context) (int, error) {
	links, err := r.users.FollowLinks(ctx)
	if err != nil {
		return 0, err
	}
	want := expectedFollowers(links)

	fixed := 0
	for _, l := range links {
		missing, stale := followerDelta(l.Followers, want[l.UserID])
		changed := false
		for _, follower := range missing {
			if r.restoreFollower(ctx, l.UserID, follower) {
				changed = true
			}
		}
		for _, follower := range stale {
			if r.dropFollower(ctx, l.UserID, follower) {
				changed = true
			}
		}
		if changed {
			fixed++
		}
	}
	return fixed, nil
}

func (r *Reconciler) following(ctx context.Context, follower, target primitive.ObjectID) (bool, bool) {
	ok, err := r.users.IsFollowing(ctx, follower, target)
	if err != nil {
		r.log.Warn("check follow failed",
			zap.String("follower", follower.Hex()),
			zap.String("target", target.Hex()),
			zap.Error(err))
		return false, false
	}
	return ok, true
}

// restoreFollower adds follower to target when the follow still holds.
func (r *Reconciler) restoreFollower(ctx context.Context, target, follower primitive.ObjectID) bool {
	if ok, checked := r.following(ctx, follower, target); !checked || !ok {
		return false
	}
	if err := r.users.AddFollower(ctx, target, follower); err != nil {
		r.log.Warn("restore follower failed", zap.String("user", target.Hex()), zap.Error(err))
		return false
	}
	return true
}

// dropFollower removes follower from target when the follow no longer
// holds. A follow that lands between the check and the pull is put back.
func (r *Reconciler) dropFollower(ctx context.Context, target, follower primitive.ObjectID) bool {
	if ok, checked := r.following(ctx, follower, target); !checked || ok {
		return false
	}
	if err := r.users.RemoveFollower(ctx, target, follower); err != nil {
		r.log.Warn("drop follower failed", zap.String("user", target.Hex()), zap.Error(err))
		return false
	}
	if ok, _ := r.following(ctx, follower, target); ok {
		if err := r.users.AddFollower(ctx, target, follower); err != nil {
			r.log.Error("follower lost during repair",
				zap.String("user", target.Hex()),
				zap.String("follower", follower.Hex()),
				zap.Error(err))
		}
		return false
	}
	return true
}

// expectedFollowers inverts the following lists of existing accounts.
func expectedFollowers(links []FollowLinks) map[primitive.ObjectID][]primitive.ObjectID {
	exists := make(map[primitive.ObjectID]bool, len(links))
	for _, l := range links {
		exists[l.UserID] = true
	}
	want := make(map[primitive.ObjectID][]primitive.ObjectID, len(links))
	for _, l := range links {
		for _, target := range l.Following {
			if exists[target] && target != l.UserID && !models.ContainsID(want[target], l.UserID) {
				want[target] = append(want[target], l.UserID)
			}
		}
	}
	return want
}

// followerDelta lists the ids want has and current lacks, then the ids
// current has and want lacks.
func followerDelta(current, want []primitive.ObjectID) (missing, stale []primitive.ObjectID) {
	for _, id := range want {
		if !models.ContainsID(current, id) {
			missing = append(missing, id)
		}
	}
	for _, id := range current {
		if !models.ContainsID(want, id) && !models.ContainsID(stale, id) {
			stale = append(stale, id)
		}
	}
	return missing, stale
}

func (r *Reconciler) reconcileComments(ctx context.Context) (int, int, error) {
	refs, err := r.comments.Refs(ctx)
	if err != nil {
		return 0, 0, err
	}
	postLists, err := r.posts.CommentLists(ctx)
	if err != nil {
		return 0, 0, err
	}
	storyLists, err := r.stories.CommentLists(ctx)
	if err != nil {
		return 0, 0, err
	}

	alive := make(map[primitive.ObjectID]bool, len(refs))
	reattached := 0
	for _, ref := range refs {
		alive[ref.ID] = true

		store, lists := r.posts, postLists
		if ref.Kind == models.ParentStory {
			store, lists = r.stories, storyLists
		}
		list, ok := lists[ref.Parent]
		if !ok || models.ContainsID(list, ref.ID) {
			continue
		}
		if err := store.AddComment(ctx, ref.Parent, ref.ID); err != nil {
			r.log.Warn("reattach comment failed", zap.String("comment", ref.ID.Hex()), zap.Error(err))
			continue
		}
		// Deleted after the snapshot.
		if !r.commentExists(ctx, ref.ID) {
			if err := store.RemoveComment(ctx, ref.Parent, ref.ID); err != nil {
				r.log.Warn("undo reattach failed", zap.String("comment", ref.ID.Hex()), zap.Error(err))
			}
			continue
		}
		reattached++
	}

	removed := 0
	for _, p := range []struct {
		store CommentParentStore
		lists map[primitive.ObjectID][]primitive.ObjectID
	}{{r.posts, postLists}, {r.stories, storyLists}} {
		for parentID, list := range p.lists {
			for _, commentID := range list {
				if alive[commentID] || r.commentExists(ctx, commentID) {
					continue
				}
				if err := p.store.RemoveComment(ctx, parentID, commentID); err != nil {
					r.log.Warn("drop dangling comment failed", zap.String("comment", commentID.Hex()), zap.Error(err))
					continue
				}
				removed++
			}
		}
	}
	return reattached, removed, nil
}

// commentExists re-reads a comment the snapshot did not contain. Comments
// created after the snapshot are kept, and so is anything that cannot be
// checked.
func (r *Reconciler) commentExists(ctx context.Context, id primitive.ObjectID) bool {
	_, err := r.comments.FindByID(ctx, id)
	switch {
	case err == nil:
		return true
	case errors.Is(err, ErrNotFound):
		return false
	}
	r.log.Warn("check comment failed", zap.String("comment", id.Hex()), zap.Error(err))
	return true
}
