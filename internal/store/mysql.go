package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/ochiba/soundshelf/internal/domain"
)

const duplicateKeyErrNo = 1062

const createTracksTable = `
CREATE TABLE IF NOT EXISTS tracks (
	id            VARCHAR(36)  NOT NULL PRIMARY KEY,
	platform      VARCHAR(16)  NOT NULL,
	spotify_type  VARCHAR(16)  NOT NULL DEFAULT 'track',
	url           TEXT         NOT NULL,
	embed_id      VARCHAR(64)  NOT NULL,
	title         VARCHAR(300) NOT NULL,
	artist        VARCHAR(300) NULL,
	thumbnail_url VARCHAR(2048) NULL,
	audio_url     VARCHAR(255) NULL,
	likes         INT          NOT NULL DEFAULT 0,
	created_at    DATETIME(6)  NOT NULL,
	UNIQUE KEY uq_tracks_embed_id (embed_id)
)`

const trackColumns = `id, platform, spotify_type, url, embed_id, title, artist, thumbnail_url, audio_url, likes, created_at`

// MySQLStore implements TrackStore on top of MySQL. The DSN must include
// parseTime=true so created_at scans into time.Time.
type MySQLStore struct {
	db *sql.DB
}

// NewMySQL opens a connection pool and verifies connectivity.
func NewMySQL(dsn string) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &MySQLStore{db: db}, nil
}

// NewMySQLFromDB wraps an existing connection, used by tests.
func NewMySQLFromDB(db *sql.DB) *MySQLStore {
	return &MySQLStore{db: db}
}

// Init creates the tracks table if it does not exist yet.
func (s *MySQLStore) Init(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createTracksTable); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *MySQLStore) Close() error {
	return s.db.Close()
}

func (s *MySQLStore) Create(ctx context.Context, track *domain.Track) error {
	query := `INSERT INTO tracks (` + trackColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		track.ID, track.Platform, track.SpotifyType, track.URL, track.EmbedID,
		track.Title, track.Artist, track.ThumbnailURL, track.AudioURL,
		track.Likes, track.CreatedAt,
	)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == duplicateKeyErrNo {
			return ErrDuplicateEmbed
		}
		return fmt.Errorf("failed to insert track: %w", err)
	}
	return nil
}

func (s *MySQLStore) GetByID(ctx context.Context, id string) (*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	return scanTrack(s.db.QueryRowContext(ctx, query, id))
}

func (s *MySQLStore) GetByEmbedID(ctx context.Context, embedID string) (*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE embed_id = ?`
	return scanTrack(s.db.QueryRowContext(ctx, query, embedID))
}

func (s *MySQLStore) List(ctx context.Context) ([]*domain.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	tracks := make([]*domain.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}
	return tracks, nil
}

func (s *MySQLStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return count, nil
}

func (s *MySQLStore) IncrementLikes(ctx context.Context, id string) (*domain.Track, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE tracks SET likes = likes + 1 WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to increment likes: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *MySQLStore) SetAudioURL(ctx context.Context, id, audioURL string) error {
	// The IS NULL guard keeps the field write-once even under concurrent
	// acquisition jobs for the same track.
	res, err := s.db.ExecContext(ctx,
		`UPDATE tracks SET audio_url = ? WHERE id = ? AND audio_url IS NULL`, audioURL, id)
	if err != nil {
		return fmt.Errorf("failed to set audio url: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		// Either the track does not exist or the URL was already set.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTrack(row rowScanner) (*domain.Track, error) {
	track := &domain.Track{}
	var artist, thumbnailURL, audioURL sql.NullString

	err := row.Scan(
		&track.ID, &track.Platform, &track.SpotifyType, &track.URL, &track.EmbedID,
		&track.Title, &artist, &thumbnailURL, &audioURL,
		&track.Likes, &track.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}

	if artist.Valid {
		track.Artist = &artist.String
	}
	if thumbnailURL.Valid {
		track.ThumbnailURL = &thumbnailURL.String
	}
	if audioURL.Valid {
		track.AudioURL = &audioURL.String
	}
	return track, nil
}
