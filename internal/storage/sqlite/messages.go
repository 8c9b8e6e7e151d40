package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/secretsanta/internal/models"
)

// CreateMessage stores an anonymous message.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *models.AnonymousMessage) error {
	if msg.ID == "" {
		msg.ID = newID()
	}

	query := `
		INSERT INTO anonymous_messages (id, game_id, from_user_id, to_user_id, text, is_read, sent_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		msg.ID,
		msg.GameID,
		msg.FromUserID,
		msg.ToUserID,
		msg.Text,
		msg.IsRead,
		toMillis(msg.SentAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create message: %w", err)
	}
	return nil
}

// ListUnreadAndMarkRead returns the unread messages addressed to userID, newest first,
// and marks them read in the same transaction.
func (s *SQLiteStore) ListUnreadAndMarkRead(ctx context.Context, userID string) ([]models.AnonymousMessage, error) {
	var messages []models.AnonymousMessage

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT m.id, m.game_id, m.from_user_id, m.to_user_id, m.text, m.sent_at, g.name
			FROM anonymous_messages m
			JOIN games g ON g.id = m.game_id
			WHERE m.to_user_id = ? AND m.is_read = 0
			ORDER BY m.sent_at DESC, m.rowid DESC
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to query messages: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var msg models.AnonymousMessage
			var sentAt int64
			if err := rows.Scan(
				&msg.ID,
				&msg.GameID,
				&msg.FromUserID,
				&msg.ToUserID,
				&msg.Text,
				&sentAt,
				&msg.GameName,
			); err != nil {
				return fmt.Errorf("failed to scan message: %w", err)
			}
			msg.SentAt = fromMillis(sentAt)
			messages = append(messages, msg)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("error iterating messages: %w", err)
		}
		rows.Close()

		if len(messages) == 0 {
			return nil
		}

		// The immediate transaction holds the write lock, so the unread set cannot
		// change between the select and this update.
		_, err = tx.ExecContext(ctx,
			`UPDATE anonymous_messages SET is_read = 1 WHERE to_user_id = ? AND is_read = 0`,
			userID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark messages read: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range messages {
		messages[i].IsRead = true
	}
	return messages, nil
}
