package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"visage/media"
	"visage/models"
)

// In-memory stores mirroring the single-document semantics of the Mongo
// implementations. Returned documents are copies.

var errInjected = errors.New("injected failure")

func cloneIDs(ids []primitive.ObjectID) []primitive.ObjectID {
	return append([]primitive.ObjectID{}, ids...)
}

func removeID(ids []primitive.ObjectID, id primitive.ObjectID) []primitive.ObjectID {
	out := ids[:0:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func addMember(set *[]primitive.ObjectID, id primitive.ObjectID) error {
	if models.ContainsID(*set, id) {
		return ErrAlreadyMember
	}
	*set = append(*set, id)
	return nil
}

func removeMember(set *[]primitive.ObjectID, id primitive.ObjectID) error {
	if !models.ContainsID(*set, id) {
		return ErrNotMember
	}
	*set = removeID(*set, id)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

// users

type fakeUsers struct {
	mu    sync.Mutex
	docs  map[primitive.ObjectID]*models.User
	order []primitive.ObjectID

	failAddFollower     error
	failRemoveFollower  error
	failRemoveFollowing error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{docs: map[primitive.ObjectID]*models.User{}}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Followers = cloneIDs(u.Followers)
	c.Following = cloneIDs(u.Following)
	return &c
}

func (f *fakeUsers) author(id primitive.ObjectID) *models.Author {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.docs[id]; ok {
		return models.AuthorOf(u)
	}
	return nil
}

func (f *fakeUsers) get(id primitive.ObjectID) *models.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return cloneUser(f.docs[id])
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.docs {
		if d.Email == u.Email || d.Username == u.Username {
			return ErrDuplicate
		}
	}
	f.docs[u.ID] = cloneUser(u)
	f.order = append(f.order, u.ID)
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneUser(u), nil
}

func (f *fakeUsers) findBy(match func(*models.User) bool) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range f.order {
		if u := f.docs[id]; match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.findBy(func(u *models.User) bool { return u.Email == email })
}

func (f *fakeUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.findBy(func(u *models.User) bool { return u.Username == username })
}

func (f *fakeUsers) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	_, err := f.findBy(func(u *models.User) bool { return u.Email == email || u.Username == username })
	return err == nil, nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.docs[u.ID]
	if !ok {
		return ErrNotFound
	}
	for id, d := range f.docs {
		if id != u.ID && (d.Email == u.Email || d.Username == u.Username) {
			return ErrDuplicate
		}
	}
	next := cloneUser(u)
	next.Followers, next.Following = cur.Followers, cur.Following
	f.docs[u.ID] = next
	return nil
}

func (f *fakeUsers) Search(ctx context.Context, query string) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q := strings.ToLower(query)
	var out []*models.User
	for _, id := range f.order {
		u := f.docs[id]
		if strings.Contains(strings.ToLower(u.Username), q) || strings.Contains(strings.ToLower(u.FullName), q) {
			out = append(out, cloneUser(u))
		}
	}
	return out, nil
}

func (f *fakeUsers) Suggested(ctx context.Context, exclude []primitive.ObjectID, limit int) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.User{}
	for _, id := range f.order {
		if models.ContainsID(exclude, id) {
			continue
		}
		if len(out) == limit {
			break
		}
		out = append(out, cloneUser(f.docs[id]))
	}
	return out, nil
}

func (f *fakeUsers) mutate(id primitive.ObjectID, fn func(u *models.User) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[id]
	if !ok {
		return ErrNotFound
	}
	return fn(u)
}

func (f *fakeUsers) AddFollowing(ctx context.Context, userID, target primitive.ObjectID) error {
	return f.mutate(userID, func(u *models.User) error { return addMember(&u.Following, target) })
}

func (f *fakeUsers) RemoveFollowing(ctx context.Context, userID, target primitive.ObjectID) error {
	if f.failRemoveFollowing != nil {
		return f.failRemoveFollowing
	}
	return f.mutate(userID, func(u *models.User) error { return removeMember(&u.Following, target) })
}

func (f *fakeUsers) AddFollower(ctx context.Context, userID, follower primitive.ObjectID) error {
	if f.failAddFollower != nil {
		return f.failAddFollower
	}
	return f.mutate(userID, func(u *models.User) error {
		_ = addMember(&u.Followers, follower)
		return nil
	})
}

func (f *fakeUsers) RemoveFollower(ctx context.Context, userID, follower primitive.ObjectID) error {
	if f.failRemoveFollower != nil {
		return f.failRemoveFollower
	}
	return f.mutate(userID, func(u *models.User) error {
		u.Followers = removeID(u.Followers, follower)
		return nil
	})
}

func (f *fakeUsers) FollowLinks(ctx context.Context) ([]FollowLinks, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []FollowLinks
	for _, id := range f.order {
		u := f.docs[id]
		out = append(out, FollowLinks{UserID: id, Followers: cloneIDs(u.Followers), Following: cloneIDs(u.Following)})
	}
	return out, nil
}

func (f *fakeUsers) IsFollowing(ctx context.Context, userID, target primitive.ObjectID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.docs[userID]
	return ok && models.ContainsID(u.Following, target), nil
}

// parents holds the bits posts and stories share.

type fakeParent struct {
	mu            sync.Mutex
	authors       map[primitive.ObjectID]primitive.ObjectID
	likes         map[primitive.ObjectID][]primitive.ObjectID
	comments      map[primitive.ObjectID][]primitive.ObjectID
	failAddComment error
}

func newFakeParent() fakeParent {
	return fakeParent{
		authors:  map[primitive.ObjectID]primitive.ObjectID{},
		likes:    map[primitive.ObjectID][]primitive.ObjectID{},
		comments: map[primitive.ObjectID][]primitive.ObjectID{},
	}
}

func (f *fakeParent) insert(id, author primitive.ObjectID) {
	f.authors[id] = author
	f.likes[id] = []primitive.ObjectID{}
	f.comments[id] = []primitive.ObjectID{}
}

func (f *fakeParent) drop(id primitive.ObjectID) bool {
	if _, ok := f.authors[id]; !ok {
		return false
	}
	delete(f.authors, id)
	delete(f.likes, id)
	delete(f.comments, id)
	return true
}

func (f *fakeParent) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.likes[id]
	if !ok {
		return ErrNotFound
	}
	err := addMember(&set, userID)
	f.likes[id] = set
	return err
}

func (f *fakeParent) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.likes[id]
	if !ok {
		return ErrNotFound
	}
	err := removeMember(&set, userID)
	f.likes[id] = set
	return err
}

func (f *fakeParent) AuthorOf(ctx context.Context, id primitive.ObjectID) (primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.authors[id]
	if !ok {
		return primitive.NilObjectID, ErrNotFound
	}
	return a, nil
}

func (f *fakeParent) AddComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAddComment != nil {
		return f.failAddComment
	}
	list, ok := f.comments[id]
	if !ok {
		return ErrNotFound
	}
	if !models.ContainsID(list, commentID) {
		f.comments[id] = append(list, commentID)
	}
	return nil
}

func (f *fakeParent) RemoveComment(ctx context.Context, id, commentID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	list, ok := f.comments[id]
	if !ok {
		return ErrNotFound
	}
	f.comments[id] = removeID(list, commentID)
	return nil
}

func (f *fakeParent) CommentLists(ctx context.Context) (map[primitive.ObjectID][]primitive.ObjectID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[primitive.ObjectID][]primitive.ObjectID, len(f.comments))
	for id, list := range f.comments {
		out[id] = cloneIDs(list)
	}
	return out, nil
}

// posts

type fakePosts struct {
	fakeParent
	docs  map[primitive.ObjectID]*models.Post
	users *fakeUsers
}

func newFakePosts(users *fakeUsers) *fakePosts {
	return &fakePosts{fakeParent: newFakeParent(), docs: map[primitive.ObjectID]*models.Post{}, users: users}
}

func (f *fakePosts) view(p *models.Post) *models.Post {
	c := *p
	c.Likes = cloneIDs(f.likes[p.ID])
	c.Comments = cloneIDs(f.comments[p.ID])
	c.Hashtags = append([]string{}, p.Hashtags...)
	c.SetAuthor(f.users.author(p.UserID))
	return &c
}

func (f *fakePosts) Create(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *p
	f.docs[p.ID] = &c
	f.insert(p.ID, p.UserID)
	return nil
}

func (f *fakePosts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.view(p), nil
}

func (f *fakePosts) list(match func(*models.Post) bool, limit int) []*models.Post {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Post{}
	for _, p := range f.docs {
		if match(p) {
			out = append(out, f.view(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakePosts) ListByAuthors(ctx context.Context, authors []primitive.ObjectID, limit int) ([]*models.Post, error) {
	return f.list(func(p *models.Post) bool { return models.ContainsID(authors, p.UserID) }, limit), nil
}

func (f *fakePosts) ListByHashtag(ctx context.Context, tag string) ([]*models.Post, error) {
	return f.list(func(p *models.Post) bool {
		for _, h := range p.Hashtags {
			if h == tag {
				return true
			}
		}
		return false
	}, 0), nil
}

// Explore returns posts in store order; ranking is the service's job here.
func (f *fakePosts) Explore(ctx context.Context, limit int) ([]*models.Post, error) {
	return f.list(func(*models.Post) bool { return true }, limit), nil
}

func (f *fakePosts) UpdateContent(ctx context.Context, p *models.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cur, ok := f.docs[p.ID]
	if !ok {
		return ErrNotFound
	}
	cur.Caption, cur.Location, cur.Hashtags, cur.UpdatedAt = p.Caption, p.Location, p.Hashtags, p.UpdatedAt
	return nil
}

func (f *fakePosts) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.drop(id) {
		return ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

// stories

type fakeStories struct {
	fakeParent
	docs  map[primitive.ObjectID]*models.Story
	views map[primitive.ObjectID][]primitive.ObjectID
	users *fakeUsers
}

func newFakeStories(users *fakeUsers) *fakeStories {
	return &fakeStories{
		fakeParent: newFakeParent(),
		docs:       map[primitive.ObjectID]*models.Story{},
		views:      map[primitive.ObjectID][]primitive.ObjectID{},
		users:      users,
	}
}

func (f *fakeStories) view(s *models.Story) *models.Story {
	c := *s
	c.Likes = cloneIDs(f.likes[s.ID])
	c.Comments = cloneIDs(f.comments[s.ID])
	c.Views = cloneIDs(f.views[s.ID])
	c.SetAuthor(f.users.author(s.UserID))
	return &c
}

func (f *fakeStories) Create(ctx context.Context, s *models.Story) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := *s
	f.docs[s.ID] = &c
	f.views[s.ID] = []primitive.ObjectID{}
	f.insert(s.ID, s.UserID)
	return nil
}

func (f *fakeStories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Story, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.view(s), nil
}

func (f *fakeStories) list(match func(*models.Story) bool, limit int) []*models.Story {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Story{}
	for _, s := range f.docs {
		if match(s) {
			out = append(out, f.view(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f *fakeStories) ListActive(ctx context.Context, authors []primitive.ObjectID, now time.Time) ([]*models.Story, error) {
	return f.list(func(s *models.Story) bool {
		return models.ContainsID(authors, s.UserID) && (s.ExpireAt == nil || s.ExpireAt.After(now))
	}, 0), nil
}

func (f *fakeStories) ListByType(ctx context.Context, storyType models.StoryType, limit int) ([]*models.Story, error) {
	return f.list(func(s *models.Story) bool { return s.StoryType == storyType }, limit), nil
}

func (f *fakeStories) AddView(ctx context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.views[id]
	if !ok {
		return ErrNotFound
	}
	err := addMember(&set, userID)
	f.views[id] = set
	return err
}

func (f *fakeStories) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.drop(id) {
		return ErrNotFound
	}
	delete(f.docs, id)
	delete(f.views, id)
	return nil
}

// comments

type fakeComments struct {
	mu         sync.Mutex
	docs       map[primitive.ObjectID]*models.Comment
	users      *fakeUsers
	failDelete error
}

func newFakeComments(users *fakeUsers) *fakeComments {
	return &fakeComments{docs: map[primitive.ObjectID]*models.Comment{}, users: users}
}

func (f *fakeComments) view(c *models.Comment) *models.Comment {
	out := *c
	out.Likes = cloneIDs(c.Likes)
	out.Replies = append([]models.Reply{}, c.Replies...)
	authors := map[primitive.ObjectID]*models.Author{}
	for _, id := range c.AuthorIDs() {
		if a := f.users.author(id); a != nil {
			authors[id] = a
		}
	}
	out.Populate(authors)
	return &out
}

func (f *fakeComments) Create(ctx context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *c
	f.docs[c.ID] = &cp
	return nil
}

func (f *fakeComments) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return f.view(c), nil
}

func (f *fakeComments) ListByParent(ctx context.Context, kind models.ParentKind, parentID primitive.ObjectID) ([]*models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Comment{}
	for _, c := range f.docs {
		if k, p := c.Parent(); k == kind && p == parentID {
			out = append(out, f.view(c))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeComments) AddReply(ctx context.Context, id primitive.ObjectID, r models.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return ErrNotFound
	}
	c.Replies = append(c.Replies, r)
	return nil
}

func (f *fakeComments) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete != nil {
		return f.failDelete
	}
	if _, ok := f.docs[id]; !ok {
		return ErrNotFound
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeComments) AddLike(ctx context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return ErrNotFound
	}
	return addMember(&c.Likes, userID)
}

func (f *fakeComments) RemoveLike(ctx context.Context, id, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.docs[id]
	if !ok {
		return ErrNotFound
	}
	return removeMember(&c.Likes, userID)
}

func (f *fakeComments) Refs(ctx context.Context) ([]CommentRef, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []CommentRef
	for id, c := range f.docs {
		kind, parent := c.Parent()
		out = append(out, CommentRef{ID: id, Kind: kind, Parent: parent})
	}
	return out, nil
}

// notifications

type fakeNotifications struct {
	mu        sync.Mutex
	docs      []*models.Notification
	failWrite error
}

func (f *fakeNotifications) byID(id primitive.ObjectID) *models.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.docs {
		if n.ID == id {
			cp := *n
			return &cp
		}
	}
	return nil
}

func (f *fakeNotifications) Create(ctx context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWrite != nil {
		return f.failWrite
	}
	cp := *n
	f.docs = append(f.docs, &cp)
	return nil
}

func (f *fakeNotifications) ListForRecipient(ctx context.Context, recipient primitive.ObjectID, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []*models.Notification{}
	for i := len(f.docs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.docs[i].RecipientID == recipient {
			cp := *f.docs[i]
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeNotifications) MarkRead(ctx context.Context, id, recipient primitive.ObjectID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.docs {
		if n.ID == id && n.RecipientID == recipient {
			n.Read = true
			n.UpdatedAt = at
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeNotifications) MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, d := range f.docs {
		if d.RecipientID == recipient && !d.Read {
			d.Read = true
			d.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

// collaborators

type fakeTokens struct{}

func (fakeTokens) Issue(userID string) (string, error) { return "token-" + userID, nil }

type fakeUploader struct {
	mu      sync.Mutex
	err     error
	typ     models.MediaType
	targets []media.Target
}

func (f *fakeUploader) Upload(ctx context.Context, src media.Source, target media.Target) (*media.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.targets = append(f.targets, target)
	typ := f.typ
	if typ == "" {
		typ = models.MediaImage
	}
	name := target.PublicID
	if name == "" {
		name = primitive.NewObjectID().Hex()
	}
	return &media.Result{URL: "https://cdn.test/" + target.Folder + "/" + name + ".jpg", Type: typ}, nil
}

type cleanupCall struct{ url, folder string }

type fakeCleaner struct {
	mu    sync.Mutex
	err   error
	calls []cleanupCall
}

func (f *fakeCleaner) Cleanup(ctx context.Context, mediaURL, folder string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cleanupCall{mediaURL, folder})
	return f.err
}

// harness wires every service over the fakes.

type harness struct {
	clock    *fakeClock
	users    *fakeUsers
	posts    *fakePosts
	stories  *fakeStories
	comments *fakeComments
	notes    *fakeNotifications
	uploader *fakeUploader
	cleaner  *fakeCleaner

	userSvc    *UserService
	postSvc    *PostService
	storySvc   *StoryService
	commentSvc *CommentService
	noteSvc    *NotificationService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	log := zap.NewNop()
	h := &harness{
		clock:    &fakeClock{t: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		users:    newFakeUsers(),
		notes:    &fakeNotifications{},
		uploader: &fakeUploader{},
		cleaner:  &fakeCleaner{},
	}
	h.posts = newFakePosts(h.users)
	h.stories = newFakeStories(h.users)
	h.comments = newFakeComments(h.users)

	h.noteSvc = NewNotificationService(h.notes, log)
	h.userSvc = NewUserService(h.users, fakeTokens{}, h.uploader, h.noteSvc, bcrypt.MinCost, log)
	h.postSvc = NewPostService(h.posts, h.users, h.uploader, h.cleaner, h.noteSvc, 10<<20, log)
	h.storySvc = NewStoryService(h.stories, h.users, h.uploader, h.cleaner, h.noteSvc, 10<<20, log)
	h.commentSvc = NewCommentService(h.comments, h.posts, h.stories, h.noteSvc, log)

	h.userSvc.now = h.clock.Now
	h.postSvc.now = h.clock.Now
	h.storySvc.now = h.clock.Now
	h.commentSvc.now = h.clock.Now
	h.noteSvc.now = h.clock.Now
	return h
}

func (h *harness) register(t *testing.T, username string) *models.User {
	t.Helper()
	sess, err := h.userSvc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@visage.test",
		Password: "secret123",
		FullName: strings.ToUpper(username[:1]) + username[1:],
	})
	require.NoError(t, err)
	return sess.User
}

func (h *harness) post(t *testing.T, author primitive.ObjectID, caption string) *models.Post {
	t.Helper()
	p, err := h.postSvc.Create(context.Background(), author, CreatePostInput{
		Caption: caption,
		Media:   media.Source{Data: "data:image/png;base64,AAAA"},
	})
	require.NoError(t, err)
	return p
}

func requireKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, KindOf(err), "unexpected error: %v", err)
}
