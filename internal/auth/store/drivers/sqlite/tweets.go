package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/chirp/internal/auth/domain"
)

type tweetsRepo struct {
	db dbtx
}

const tweetColumns = `id, author_id, content, media_url, media_type, created_at`

func scanTweet(row interface{ Scan(dest ...any) error }) (domain.Tweet, error) {
	var (
		t         domain.Tweet
		mediaURL  sql.NullString
		mediaType sql.NullString
	)
	if err := row.Scan(&t.ID, &t.AuthorID, &t.Content, &mediaURL, &mediaType, &t.CreatedAt); err != nil {
		return domain.Tweet{}, mapNotFound(err)
	}
	if mediaURL.Valid && mediaURL.String != "" {
		t.Media = &domain.Media{URL: mediaURL.String, Type: mediaType.String}
	}
	t.CreatedAt = t.CreatedAt.UTC()
	return t, nil
}

func (r *tweetsRepo) CreateTweet(ctx context.Context, t domain.Tweet) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}

	var mediaURL, mediaType *string
	if t.Media != nil {
		mediaURL, mediaType = &t.Media.URL, &t.Media.Type
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO tweets (`+tweetColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID,
		t.AuthorID,
		t.Content,
		mapOptionalString(mediaURL),
		mapOptionalString(mediaType),
		dbTime(t.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *tweetsRepo) GetTweetByID(ctx context.Context, id string) (domain.Tweet, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+tweetColumns+` FROM tweets WHERE id = ?`, id)
	return scanTweet(row)
}

func (r *tweetsRepo) ListTweetsByAuthor(
	ctx context.Context,
	authorID string,
	limit int,
) ([]domain.Tweet, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+tweetColumns+`
		FROM tweets
		WHERE author_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`,
		authorID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Tweet
	for rows.Next() {
		t, err := scanTweet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
