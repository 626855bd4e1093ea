package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/aussiebroadwan/chirp/internal/auth/service"
	"github.com/aussiebroadwan/chirp/pkg/authsdk"
	"github.com/aussiebroadwan/chirp/pkg/httpx"
)

// TweetHandler serves /api/tweets. Both routes sit behind AuthGate.
type TweetHandler struct {
	Tweets *service.TweetService
}

// HandleCreate godoc
//
//	@Summary		Post a tweet
//	@Description	Creates a tweet for the authenticated user. An optional image or video attachment is sent to the
//	@Description	media host; when none is configured attachments fail with upstream_unavailable.
//	@Tags			Tweets
//	@Security		BearerAuth
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			content	formData	string					true	"Tweet text, 1-280 characters"
//	@Param			file	formData	file					false	"Image or video, at most 10MB"
//	@Success		201		{object}	authsdk.TweetResponse	"message, tweet"
//	@Failure		400		{object}	authsdk.ErrorResponse	"validation_error or invalid_request"
//	@Failure		401		{object}	authsdk.ErrorResponse	"no_token, token_expired or token_invalid"
//	@Failure		503		{object}	authsdk.ErrorResponse	"upstream_unavailable"
//	@Router			/api/tweets [post].
func (h *TweetHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrNoToken.WriteError(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxMediaSize+1<<20)
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			authsdk.ErrValidation.WithFields(map[string]string{"file": "must be at most 10MB"}).WriteError(w)
			return
		}
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	}
	defer r.MultipartForm.RemoveAll()

	in := service.TweetInput{Content: r.FormValue("content")}

	file, header, err := r.FormFile("file")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		authsdk.ErrInvalidRequest.WriteError(w)
		return
	default:
		defer file.Close()
		in.File, err = io.ReadAll(file)
		if err != nil {
			authsdk.ErrInvalidRequest.WriteError(w)
			return
		}
		in.Filename = header.Filename
	}

	view, err := h.Tweets.Create(r.Context(), id.UserID, in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, authsdk.TweetResponse{
		Message: "Tweet created successfully",
		Tweet:   toTweet(view),
	})
}

// HandleList godoc
//
//	@Summary		List my tweets
//	@Description	Returns the authenticated user's tweets, newest first.
//	@Tags			Tweets
//	@Security		BearerAuth
//	@Produce		json
//	@Param			limit	query		int							false	"Maximum number of tweets (default 50)"
//	@Success		200		{object}	authsdk.TweetListResponse	"tweets"
//	@Failure		401		{object}	authsdk.ErrorResponse		"no_token, token_expired or token_invalid"
//	@Router			/api/tweets [get].
func (h *TweetHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	id, ok := httpx.IdentityFromContext(r.Context())
	if !ok {
		authsdk.ErrNoToken.WriteError(w)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			authsdk.ErrValidation.WithFields(map[string]string{"limit": "must be a positive number"}).WriteError(w)
			return
		}
		limit = n
	}

	views, err := h.Tweets.ListByAuthor(r.Context(), id.UserID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	out := authsdk.TweetListResponse{Tweets: make([]authsdk.Tweet, 0, len(views))}
	for _, v := range views {
		out.Tweets = append(out.Tweets, toTweet(v))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func toTweet(v service.TweetView) authsdk.Tweet {
	t := authsdk.Tweet{
		ID:        v.Tweet.ID,
		Content:   v.Tweet.Content,
		Author:    toUserProfile(v.Author, false),
		CreatedAt: v.Tweet.CreatedAt,
	}
	if v.Tweet.Media != nil {
		t.Media = &authsdk.Media{URL: v.Tweet.Media.URL, Type: v.Tweet.Media.Type}
	}
	return t
}
