package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeUploader struct {
	calls int
	err   error
}

func (u *fakeUploader) Upload(_ context.Context, data []byte, filename, contentType string) (string, error) {
	u.calls++
	if u.err != nil {
		return "", u.err
	}
	return "https://media.example/tweets/" + filename, nil
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestTweetService_Create(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)
	authorID := sess.User.ID

	t.Run("text only", func(t *testing.T) {
		svc := &TweetService{Store: f.store, Now: f.clock.Now}

		view, err := svc.Create(ctx, authorID, TweetInput{Content: "hello world"})
		require.NoError(t, err)
		require.Equal(t, "hello world", view.Tweet.Content)
		require.Nil(t, view.Tweet.Media)
		require.Equal(t, "ada_l", view.Author.Username)

		got, err := f.store.Tweets().GetTweetByID(ctx, view.Tweet.ID)
		require.NoError(t, err)
		require.Equal(t, authorID, got.AuthorID)
	})

	t.Run("with image", func(t *testing.T) {
		up := &fakeUploader{}
		svc := &TweetService{Store: f.store, Uploader: up}

		view, err := svc.Create(ctx, authorID, TweetInput{Content: "pic", File: pngHeader, Filename: "cat.png"})
		require.NoError(t, err)
		require.Equal(t, 1, up.calls)
		require.NotNil(t, view.Tweet.Media)
		require.Equal(t, "image", view.Tweet.Media.Type)
		require.Equal(t, "https://media.example/tweets/cat.png", view.Tweet.Media.URL)
	})

	t.Run("content bounds", func(t *testing.T) {
		svc := &TweetService{Store: f.store}

		for _, content := range []string{"", "   ", strings.Repeat("a", 281)} {
			_, err := svc.Create(ctx, authorID, TweetInput{Content: content})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Fields, "content")
		}

		_, err := svc.Create(ctx, authorID, TweetInput{Content: strings.Repeat("a", 280)})
		require.NoError(t, err)
	})

	t.Run("non media file", func(t *testing.T) {
		up := &fakeUploader{}
		svc := &TweetService{Store: f.store, Uploader: up}

		_, err := svc.Create(ctx, authorID, TweetInput{Content: "doc", File: []byte("plain text"), Filename: "a.txt"})
		var verr *ValidationError
		require.ErrorAs(t, err, &verr)
		require.Zero(t, up.calls)
	})

	t.Run("no uploader configured", func(t *testing.T) {
		svc := &TweetService{Store: f.store}

		_, err := svc.Create(ctx, authorID, TweetInput{Content: "pic", File: pngHeader})
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("upload failure", func(t *testing.T) {
		svc := &TweetService{Store: f.store, Uploader: &fakeUploader{err: errors.New("provider down")}}

		_, err := svc.Create(ctx, authorID, TweetInput{Content: "pic", File: pngHeader})
		require.ErrorIs(t, err, ErrUpstreamUnavailable)
	})

	t.Run("unknown author", func(t *testing.T) {
		svc := &TweetService{Store: f.store}

		_, err := svc.Create(ctx, "missing", TweetInput{Content: "hi"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestTweetService_ListByAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Register(ctx, validRegistration())
	require.NoError(t, err)

	svc := &TweetService{Store: f.store}
	for _, c := range []string{"one", "two", "three"} {
		_, err := svc.Create(ctx, sess.User.ID, TweetInput{Content: c})
		require.NoError(t, err)
	}

	views, err := svc.ListByAuthor(ctx, sess.User.ID, 2)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, "three", views[0].Tweet.Content)
	require.Equal(t, sess.User.ID, views[0].Author.ID)
}

func TestAgeAt(t *testing.T) {
	t.Parallel()

	now := mustDate(t, "2026-06-15")
	tests := []struct {
		dob  string
		want int
	}{
		{"2013-06-15", 13},
		{"2013-06-16", 12},
		{"2013-07-01", 12},
		{"1990-01-01", 36},
	}
	for _, tt := range tests {
		t.Run(tt.dob, func(t *testing.T) {
			require.Equal(t, tt.want, AgeAt(mustDate(t, tt.dob), now))
		})
	}
}

func TestParseDateOfBirth(t *testing.T) {
	t.Parallel()

	d, err := ParseDateOfBirth("2000-02-29")
	require.NoError(t, err)
	require.Equal(t, 29, d.Day())

	d, err = ParseDateOfBirth("2000-02-29T10:00:00+10:00")
	require.NoError(t, err)
	require.Equal(t, 0, d.Hour())

	_, err = ParseDateOfBirth("29/02/2000")
	require.Error(t, err)
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDateOfBirth(s)
	require.NoError(t, err)
	return d
}
