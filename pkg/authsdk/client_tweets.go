package authsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
)

// CreateTweet posts a tweet. file may be nil; when set it is uploaded as
// the attachment under filename.
func (c *Client) CreateTweet(
	ctx context.Context,
	accessToken, content string,
	file io.Reader,
	filename string,
) (*Tweet, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("content", content); err != nil {
		return nil, fmt.Errorf("failed to encode content: %w", err)
	}
	if file != nil {
		if filename == "" {
			filename = "upload"
		}
		part, err := mw.CreateFormFile("file", filename)
		if err != nil {
			return nil, fmt.Errorf("failed to encode file: %w", err)
		}
		if _, err := io.Copy(part, file); err != nil {
			return nil, fmt.Errorf("failed to encode file: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode form: %w", err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, PathTweets, &buf, accessToken, map[string]string{
		"Content-Type": mw.FormDataContentType(),
		"Accept":       "application/json",
	})
	if err != nil {
		return nil, err
	}

	var out TweetResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Tweet, nil
}

// ListTweets returns the caller's newest tweets.
func (c *Client) ListTweets(ctx context.Context, accessToken string, limit int) ([]Tweet, error) {
	path := PathTweets
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}

	var out TweetListResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, accessToken, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Tweets, nil
}
