package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"visage/auth"
	"visage/media"
	"visage/models"
)

type RegisterInput struct {
	Username string `json:"username" validate:"required,min=3,max=30,excludesall= @#"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"fullName" validate:"required,max=100"`
}

// ProfileUpdate is a partial update; nil fields keep their stored value.
// Username, FullName and Email also keep their value when empty.
type ProfileUpdate struct {
	Username       *string `json:"username" validate:"omitempty,min=3,max=30,excludesall= @#"`
	FullName       *string `json:"fullName" validate:"omitempty,max=100"`
	Email          *string `json:"email" validate:"omitempty,email"`
	Bio            *string `json:"bio" validate:"omitempty,max=500"`
	Website        *string `json:"website" validate:"omitempty,max=200"`
	IsPrivate      *bool   `json:"isPrivate"`
	Password       *string `json:"password" validate:"omitempty,min=6"`
	ProfilePicture *string `json:"profilePicture"`
}

// Session is an account together with a freshly issued token.
type Session struct {
	User  *models.User
	Token string
}

type UserService struct {
	users      UserStore
	tokens     TokenIssuer
	uploader   MediaUploader
	notifier   Notifier
	bcryptCost int
	log        *zap.Logger
	now        func() time.Time
}

func NewUserService(users UserStore, tokens TokenIssuer, uploader MediaUploader, notifier Notifier, bcryptCost int, log *zap.Logger) *UserService {
	return &UserService{
		users:      users,
		tokens:     tokens,
		uploader:   uploader,
		notifier:   notifier,
		bcryptCost: bcryptCost,
		log:        log,
		now:        now,
	}
}

func (s *UserService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = normalizeEmail(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	if err := validateInput(in); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, in.Email, in.Username)
	if err != nil {
		return nil, Internal("check existing user", err)
	}
	if exists {
		return nil, Conflict("User already exists")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, Internal("hash password", err)
	}

	ts := s.now()
	user := &models.User{
		ID:             primitive.NewObjectID(),
		Username:       in.Username,
		Email:          in.Email,
		Password:       hash,
		FullName:       in.FullName,
		ProfilePicture: models.DefaultProfilePicture,
		Followers:      emptyIDs(),
		Following:      emptyIDs(),
		CreatedAt:      ts,
		UpdatedAt:      ts,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration.
		if errors.Is(err, ErrDuplicate) {
			return nil, Conflict("User already exists")
		}
		return nil, Internal("create user", err)
	}

	return s.session(user)
}

func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, ErrNotFound) {
		return nil, Unauthorized("Invalid email or password")
	}
	if err != nil {
		return nil, Internal("find user by email", err)
	}
	if !auth.CheckPassword(user.Password, password) {
		return nil, Unauthorized("Invalid email or password")
	}
	return s.session(user)
}

func (s *UserService) Profile(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found", "find user")
	}
	return user, nil
}

func (s *UserService) ByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, storeErr(err, "User not found", "find user by username")
	}
	return user, nil
}

func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, in ProfileUpdate) (*Session, error) {
	if err := validateInput(in); err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "User not found", "find user")
	}

	if v := trimmed(in.Username); v != "" {
		user.Username = v
	}
	if v := trimmed(in.FullName); v != "" {
		user.FullName = v
	}
	if v := trimmed(in.Email); v != "" {
		user.Email = normalizeEmail(v)
	}
	if in.Bio != nil {
		user.Bio = *in.Bio
	}
	if in.Website != nil {
		user.Website = strings.TrimSpace(*in.Website)
	}
	if in.IsPrivate != nil {
		user.IsPrivate = *in.IsPrivate
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, Internal("hash password", err)
		}
		user.Password = hash
	}
	if pic := trimmed(in.ProfilePicture); pic != "" && pic != user.ProfilePicture {
		res, err := upload(ctx, s.uploader, media.Source{Data: pic}, media.Target{
			Folder:         media.FolderProfilePictures,
			PublicID:       user.ID.Hex(),
			Transformation: media.AvatarTransformation,
		})
		if err != nil {
			return nil, err
		}
		user.ProfilePicture = res.URL
	}
	user.UpdatedAt = s.now()

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicate) {
			return nil, Conflict("Username or email already taken")
		}
		return nil, storeErr(err, "User not found", "update user")
	}
	return s.session(user)
}

// Follow records actor as a follower of target. The actor's following list
// is written first with a conditional update, which is what rejects
// duplicate follows. If the second write fails the first is undone.
func (s *UserService) Follow(ctx context.Context, actor, target primitive.ObjectID) error {
	if actor == target {
		return Validation("You cannot follow yourself")
	}
	if _, err := s.users.FindByID(ctx, target); err != nil {
		return storeErr(err, "User not found", "find follow target")
	}

	err := s.users.AddFollowing(ctx, actor, target)
	switch {
	case errors.Is(err, ErrAlreadyMember):
		return Conflict("You are already following this user")
	case err != nil:
		return storeErr(err, "User not found", "add following")
	}

	if err := s.users.AddFollower(ctx, target, actor); err != nil {
		if undoErr := s.users.RemoveFollowing(ctx, actor, target); undoErr != nil && !errors.Is(undoErr, ErrNotMember) {
			s.log.Error("follow left asymmetric, reconciler will repair",
				zap.String("actor", actor.Hex()),
				zap.String("target", target.Hex()),
				zap.Error(undoErr))
		}
		return Internal("add follower", err)
	}

	notify(ctx, s.notifier, target, actor, models.NotifyFollow, nil)
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, actor, target primitive.ObjectID) error {
	if actor == target {
		return Validation("You cannot unfollow yourself")
	}
	if _, err := s.users.FindByID(ctx, target); err != nil {
		return storeErr(err, "User not found", "find unfollow target")
	}

	err := s.users.RemoveFollowing(ctx, actor, target)
	switch {
	case errors.Is(err, ErrNotMember):
		return Conflict("You are not following this user")
	case err != nil:
		return storeErr(err, "User not found", "remove following")
	}

	if err := s.users.RemoveFollower(ctx, target, actor); err != nil {
		if undoErr := s.users.AddFollowing(ctx, actor, target); undoErr != nil && !errors.Is(undoErr, ErrAlreadyMember) {
			s.log.Error("unfollow left asymmetric, reconciler will repair",
				zap.String("actor", actor.Hex()),
				zap.String("target", target.Hex()),
				zap.Error(undoErr))
		}
		return Internal("remove follower", err)
	}
	return nil
}

func (s *UserService) Search(ctx context.Context, query string) ([]*models.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, Validation("Query parameter is required")
	}
	users, err := s.users.Search(ctx, query)
	if err != nil {
		return nil, Internal("search users", err)
	}
	return users, nil
}

// Suggested returns accounts the actor does not follow yet, in store order.
func (s *UserService) Suggested(ctx context.Context, actor primitive.ObjectID) ([]*models.User, error) {
	user, err := s.users.FindByID(ctx, actor)
	if err != nil {
		return nil, storeErr(err, "User not found", "find user")
	}
	exclude := append([]primitive.ObjectID{actor}, user.Following...)
	users, err := s.users.Suggested(ctx, exclude, SuggestionLimit)
	if err != nil {
		return nil, Internal("suggested users", err)
	}
	return users, nil
}

func (s *UserService) session(user *models.User) (*Session, error) {
	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, Internal("issue token", err)
	}
	return &Session{User: user, Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}
