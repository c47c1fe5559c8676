package storage

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/evpulse/pulse-bot/internal/models"
	apperrors "github.com/evpulse/pulse-bot/pkg/errors"
)

//go:embed migrations.sql
var migrations embed.FS

type DatabaseConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	UseInMemory bool
}

type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(config DatabaseConfig) (*PostgresStorage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		config.Host, config.Port, config.User, config.Password, config.DBName, config.SSLMode)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %w", err)
	}

	storage := &PostgresStorage{db: db}

	if err := storage.initializeSchema(); err != nil {
		return nil, fmt.Errorf("error initializing database schema: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) initializeSchema() error {
	migrationSQL, err := migrations.ReadFile("migrations.sql")
	if err != nil {
		return fmt.Errorf("error reading migrations file: %w", err)
	}

	_, err = s.db.Exec(string(migrationSQL))
	if err != nil {
		return fmt.Errorf("error executing migrations: %w", err)
	}

	return nil
}

func (s *PostgresStorage) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `
		SELECT id, real_name, role, tracked_channels, interests, followed_users,
		       message_count, last_active, muted, onboarding_completed, created_at, updated_at
		FROM users
		WHERE id = $1`

	user := &models.User{}
	var lastActive sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.RealName,
		&user.Role,
		pq.Array(&user.TrackedChannels),
		pq.Array(&user.Interests),
		pq.Array(&user.FollowedUsers),
		&user.MessageCount,
		&lastActive,
		&user.Muted,
		&user.OnboardingCompleted,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	if lastActive.Valid {
		user.LastActive = lastActive.Time
	}
	return user, nil
}

func (s *PostgresStorage) UpsertUser(ctx context.Context, id string, patch UserPatch) error {
	query := `
		INSERT INTO users (id, real_name, role, tracked_channels, interests, followed_users, muted, onboarding_completed)
		VALUES ($1,
		        COALESCE($2::text, ''),
		        COALESCE($3::text, ''),
		        COALESCE($4::text[], '{}'),
		        COALESCE($5::text[], '{}'),
		        COALESCE($6::text[], '{}'),
		        COALESCE($7::boolean, FALSE),
		        COALESCE($8::boolean, FALSE))
		ON CONFLICT (id) DO UPDATE SET
		        real_name            = COALESCE($2::text, users.real_name),
		        role                 = COALESCE($3::text, users.role),
		        tracked_channels     = COALESCE($4::text[], users.tracked_channels),
		        interests            = COALESCE($5::text[], users.interests),
		        followed_users       = COALESCE($6::text[], users.followed_users),
		        muted                = COALESCE($7::boolean, users.muted),
		        onboarding_completed = COALESCE($8::boolean, users.onboarding_completed),
		        updated_at           = NOW()`

	_, err := s.db.ExecContext(ctx, query, id,
		patch.RealName,
		patch.Role,
		nullableArray(patch.TrackedChannels),
		nullableArray(patch.Interests),
		nullableArray(patch.FollowedUsers),
		patch.Muted,
		patch.OnboardingCompleted,
	)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func (s *PostgresStorage) AddUserChannel(ctx context.Context, id, channel string) error {
	query := `
		UPDATE users
		SET tracked_channels = CASE
		        WHEN $2 = ANY(tracked_channels) THEN tracked_channels
		        ELSE array_append(tracked_channels, $2)
		    END,
		    updated_at = NOW()
		WHERE id = $1`

	return s.execOnUser(ctx, query, id, channel)
}

func (s *PostgresStorage) RemoveUserChannel(ctx context.Context, id, channel string) error {
	query := `
		UPDATE users
		SET tracked_channels = array_remove(tracked_channels, $2),
		    updated_at = NOW()
		WHERE id = $1`

	return s.execOnUser(ctx, query, id, channel)
}

func (s *PostgresStorage) RecordActivity(ctx context.Context, id string, at time.Time) error {
	query := `
		INSERT INTO users (id, message_count, last_active, created_at, updated_at)
		VALUES ($1, 1, $2, $2, $2)
		ON CONFLICT (id) DO UPDATE SET
		        message_count = users.message_count + 1,
		        last_active   = $2,
		        updated_at    = $2`

	_, err := s.db.ExecContext(ctx, query, id, at)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func (s *PostgresStorage) DeleteUser(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func (s *PostgresStorage) SaveMessage(ctx context.Context, msg *models.Message) error {
	files, err := json.Marshal(msg.Files)
	if err != nil {
		return fmt.Errorf("error encoding message files: %w", err)
	}

	query := `
		INSERT INTO messages (id, channel_id, user_id, recipient_id, text, ts, thread_ts,
		                      type, files, tags, is_pinned, channel_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err = s.db.ExecContext(ctx, query,
		msg.ID,
		msg.ChannelID,
		msg.UserID,
		msg.RecipientID,
		msg.Text,
		msg.Timestamp,
		msg.ThreadTS,
		msg.Type,
		files,
		pq.Array(msg.Tags),
		msg.Pinned,
		msg.ChannelKind,
		msg.CreatedAt,
	)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	return nil
}

func (s *PostgresStorage) MessagesByChannel(ctx context.Context, channelID string, since time.Time) ([]*models.Message, error) {
	query := `
		SELECT id, channel_id, user_id, recipient_id, text, ts, thread_ts,
		       type, files, tags, is_pinned, channel_type, created_at
		FROM messages
		WHERE channel_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	return s.queryMessages(ctx, query, channelID, since)
}

func (s *PostgresStorage) MessagesByUser(ctx context.Context, userID string, since time.Time) ([]*models.Message, error) {
	query := `
		SELECT id, channel_id, user_id, recipient_id, text, ts, thread_ts,
		       type, files, tags, is_pinned, channel_type, created_at
		FROM messages
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`

	return s.queryMessages(ctx, query, userID, since)
}

func (s *PostgresStorage) ReceivedDMs(ctx context.Context, recipientID string, since time.Time) ([]*models.Message, error) {
	query := `
		SELECT id, channel_id, user_id, recipient_id, text, ts, thread_ts,
		       type, files, tags, is_pinned, channel_type, created_at
		FROM messages
		WHERE recipient_id = $1 AND channel_type = 'im' AND created_at >= $2
		ORDER BY created_at DESC`

	return s.queryMessages(ctx, query, recipientID, since)
}

func (s *PostgresStorage) SetMessagePinned(ctx context.Context, channelID, timestamp string, pinned bool) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE messages SET is_pinned = $3 WHERE channel_id = $1 AND ts = $2`,
		channelID, timestamp, pinned)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) execOnUser(ctx context.Context, query, id, channel string) error {
	result, err := s.db.ExecContext(ctx, query, id, channel)
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.StoreUnavailable(err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStorage) queryMessages(ctx context.Context, query string, args ...any) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}
	defer rows.Close()

	var messages []*models.Message
	for rows.Next() {
		msg := &models.Message{}
		var files []byte
		err := rows.Scan(
			&msg.ID,
			&msg.ChannelID,
			&msg.UserID,
			&msg.RecipientID,
			&msg.Text,
			&msg.Timestamp,
			&msg.ThreadTS,
			&msg.Type,
			&files,
			pq.Array(&msg.Tags),
			&msg.Pinned,
			&msg.ChannelKind,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.StoreUnavailable(err)
		}
		if len(files) > 0 {
			if err := json.Unmarshal(files, &msg.Files); err != nil {
				return nil, fmt.Errorf("error decoding message files: %w", err)
			}
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.StoreUnavailable(err)
	}

	return messages, nil
}

// nullableArray maps a nil patch field to SQL NULL so COALESCE keeps the
// stored value.
func nullableArray(p *[]string) any {
	if p == nil {
		return nil
	}
	return pq.Array(*p)
}
