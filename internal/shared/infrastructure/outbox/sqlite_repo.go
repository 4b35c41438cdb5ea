package outbox

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	sharedPersistence "github.com/lektio/lektio/internal/shared/infrastructure/persistence"
)

// SQLiteRepository implements Repository using SQLite for local mode.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Save stores a new outbox message.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	query := `
		INSERT INTO outbox_messages (
			event_id, aggregate_type, aggregate_id, event_type, routing_key,
			payload, metadata, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	result, err := execer.ExecContext(ctx, query,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateID.String(),
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		string(msg.Metadata),
		msg.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// SaveBatch stores multiple outbox messages atomically.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if _, ok := sharedPersistence.SQLiteTxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	txCtx := sharedPersistence.WithSQLiteTx(ctx, tx, true)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUnpublished retrieves unpublished messages ordered by creation time.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	query := `
		SELECT id, event_id, aggregate_type, aggregate_id, event_type, routing_key,
		       payload, metadata, created_at, published_at, next_retry_at, retry_count,
		       last_error, dead_lettered_at, dead_letter_reason
		FROM outbox_messages
		WHERE published_at IS NULL
		  AND dead_lettered_at IS NULL
		  AND (next_retry_at IS NULL OR next_retry_at <= ?)
		ORDER BY created_at
		LIMIT ?
	`

	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	rows, err := execer.QueryContext(ctx, query, nowString(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := execer.ExecContext(ctx,
		`UPDATE outbox_messages SET published_at = ? WHERE id = ?`, nowString(), id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := execer.ExecContext(ctx, `
		UPDATE outbox_messages
		SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		WHERE id = ?
	`, errMsg, nextRetryAt.UTC().Format(time.RFC3339Nano), id)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	_, err := execer.ExecContext(ctx, `
		UPDATE outbox_messages
		SET dead_lettered_at = ?, dead_letter_reason = ?
		WHERE id = ?
	`, nowString(), reason, id)
	return err
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThanDays int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(time.RFC3339Nano)
	execer := sharedPersistence.SQLiteExec(ctx, r.db)
	result, err := execer.ExecContext(ctx, `
		DELETE FROM outbox_messages
		WHERE published_at IS NOT NULL AND published_at < ?
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func scanSQLiteMessage(rows *sql.Rows) (*Message, error) {
	var (
		msg                           Message
		eventID, aggregateID          string
		payload, metadata, createdAt  string
		publishedAt, nextRetryAt      sql.NullString
		lastErr, deadReason           sql.NullString
		deadLetteredAt                sql.NullString
	)

	err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.EventType,
		&msg.RoutingKey, &payload, &metadata, &createdAt, &publishedAt,
		&nextRetryAt, &msg.RetryCount, &lastErr, &deadLetteredAt, &deadReason,
	)
	if err != nil {
		return nil, err
	}

	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, err
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, err
	}
	msg.Payload = []byte(payload)
	msg.Metadata = []byte(metadata)
	if msg.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return nil, err
	}
	if msg.PublishedAt, err = parseNullTime(publishedAt); err != nil {
		return nil, err
	}
	if msg.NextRetryAt, err = parseNullTime(nextRetryAt); err != nil {
		return nil, err
	}
	if msg.DeadLetteredAt, err = parseNullTime(deadLetteredAt); err != nil {
		return nil, err
	}
	if lastErr.Valid {
		msg.LastError = &lastErr.String
	}
	if deadReason.Valid {
		msg.DeadLetterReason = &deadReason.String
	}
	return &msg, nil
}

func parseNullTime(v sql.NullString) (*time.Time, error) {
	if !v.Valid {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, v.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
