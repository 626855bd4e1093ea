package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/domain"
	"github.com/aussiebroadwan/chirp/internal/auth/store"
	"github.com/aussiebroadwan/chirp/pkg/idx"
	"github.com/aussiebroadwan/chirp/pkg/slogx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"
)

// MaxMediaSize caps a single tweet attachment.
const MaxMediaSize = 10 << 20

// MediaUploader stores an attachment with the hosting provider and returns
// its public URL.
type MediaUploader interface {
	Upload(ctx context.Context, data []byte, filename, contentType string) (string, error)
}

// TweetInput is a new tweet as posted by the author.
type TweetInput struct {
	Content  string `json:"content" validate:"required,min=1,max=280"`
	File     []byte `json:"-"`
	Filename string `json:"-"`
}

// TweetService creates and lists tweets.
type TweetService struct {
	Store     store.Store
	Uploader  MediaUploader // nil disables attachments
	Validator *validator.Validate
	Now       func() time.Time

	validatorOnce sync.Once
}

// TweetView is a tweet together with its author's public profile.
type TweetView struct {
	Tweet  domain.Tweet
	Author domain.Profile
}

func (s *TweetService) validate(in any) error {
	s.validatorOnce.Do(func() {
		if s.Validator == nil {
			s.Validator = NewValidator(s.Now)
		}
	})
	return validateStruct(s.Validator, in)
}

// Create posts a tweet for authorID, uploading the attachment first when
// one is present.
func (s *TweetService) Create(ctx context.Context, authorID string, in TweetInput) (TweetView, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(in.Content) == "" {
		return TweetView{}, &ValidationError{Fields: map[string]string{"content": "is required"}}
	}
	if err := s.validate(in); err != nil {
		return TweetView{}, err
	}

	author, err := s.Store.Users().GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return TweetView{}, ErrUserNotFound
		}
		return TweetView{}, err
	}

	var media *domain.Media
	if len(in.File) > 0 {
		media, err = s.upload(ctx, in)
		if err != nil {
			return TweetView{}, err
		}
	}

	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	tweet := domain.Tweet{
		ID:        idx.NewAt(now).String(),
		AuthorID:  author.ID,
		Content:   in.Content,
		Media:     media,
		CreatedAt: now.UTC(),
	}
	if err := s.Store.Tweets().CreateTweet(ctx, tweet); err != nil {
		return TweetView{}, err
	}

	l.Info("tweet created", slog.String("tweet_id", tweet.ID), slog.Bool("media", media != nil))
	return TweetView{Tweet: tweet, Author: author.Profile()}, nil
}

func (s *TweetService) upload(ctx context.Context, in TweetInput) (*domain.Media, error) {
	if len(in.File) > MaxMediaSize {
		return nil, &ValidationError{Fields: map[string]string{"file": "must be at most 10MB"}}
	}

	mtype := mimetype.Detect(in.File)
	var kind string
	switch {
	case strings.HasPrefix(mtype.String(), "image/"):
		kind = "image"
	case strings.HasPrefix(mtype.String(), "video/"):
		kind = "video"
	default:
		return nil, &ValidationError{Fields: map[string]string{"file": "must be an image or video"}}
	}

	if s.Uploader == nil {
		return nil, ErrUpstreamUnavailable
	}

	url, err := s.Uploader.Upload(ctx, in.File, in.Filename, mtype.String())
	if err != nil {
		slogx.FromContext(ctx).Error("media upload failed", slog.Any("err", err))
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	return &domain.Media{URL: url, Type: kind}, nil
}

// ListByAuthor returns up to limit of the author's newest tweets.
func (s *TweetService) ListByAuthor(ctx context.Context, authorID string, limit int) ([]TweetView, error) {
	author, err := s.Store.Users().GetUserByID(ctx, authorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	tweets, err := s.Store.Tweets().ListTweetsByAuthor(ctx, authorID, limit)
	if err != nil {
		return nil, err
	}

	profile := author.Profile()
	out := make([]TweetView, 0, len(tweets))
	for _, t := range tweets {
		out = append(out, TweetView{Tweet: t, Author: profile})
	}
	return out, nil
}
