package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/storage"
)

// MarkGiftSent records that userID sent their gift. Received and rating are left untouched.
func (s *SQLiteStore) MarkGiftSent(ctx context.Context, gameID, userID string, at time.Time) error {
	query := `
		INSERT INTO gift_confirmations (id, game_id, user_id, sent, sent_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(game_id, user_id) DO UPDATE SET sent = 1, sent_at = excluded.sent_at
	`
	if _, err := s.db.ExecContext(ctx, query, newID(), gameID, userID, toMillis(at)); err != nil {
		return fmt.Errorf("failed to mark gift sent: %w", err)
	}
	return nil
}

// MarkGiftReceived records that userID received their gift. Sent and rating are left untouched.
func (s *SQLiteStore) MarkGiftReceived(ctx context.Context, gameID, userID string, at time.Time) error {
	query := `
		INSERT INTO gift_confirmations (id, game_id, user_id, received, received_at)
		VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(game_id, user_id) DO UPDATE SET received = 1, received_at = excluded.received_at
	`
	if _, err := s.db.ExecContext(ctx, query, newID(), gameID, userID, toMillis(at)); err != nil {
		return fmt.Errorf("failed to mark gift received: %w", err)
	}
	return nil
}

// SetRating stores the rating and optional feedback on an existing confirmation.
func (s *SQLiteStore) SetRating(ctx context.Context, gameID, userID string, rating int, feedback *string) error {
	var fb sql.NullString
	if feedback != nil {
		fb = sql.NullString{String: *feedback, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE gift_confirmations
		SET rating = ?, feedback = ?
		WHERE game_id = ? AND user_id = ?
	`, rating, fb, gameID, userID)
	if err != nil {
		return fmt.Errorf("failed to set rating: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetGiftConfirmation retrieves userID's confirmation row in a game.
func (s *SQLiteStore) GetGiftConfirmation(ctx context.Context, gameID, userID string) (*models.GiftConfirmation, error) {
	gc := &models.GiftConfirmation{}
	var sentAt, receivedAt sql.NullInt64
	var rating sql.NullInt64
	var feedback sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, user_id, sent, received, sent_at, received_at, rating, feedback
		FROM gift_confirmations
		WHERE game_id = ? AND user_id = ?
	`, gameID, userID).Scan(
		&gc.ID,
		&gc.GameID,
		&gc.UserID,
		&gc.Sent,
		&gc.Received,
		&sentAt,
		&receivedAt,
		&rating,
		&feedback,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get gift confirmation: %w", err)
	}

	gc.SentAt = fromNullMillis(sentAt)
	gc.ReceivedAt = fromNullMillis(receivedAt)
	if rating.Valid {
		gc.Rating = int(rating.Int64)
	}
	if feedback.Valid {
		gc.Feedback = &feedback.String
	}
	return gc, nil
}

// ListGiftStatus reports sent/received for every participant in join order.
func (s *SQLiteStore) ListGiftStatus(ctx context.Context, gameID string) ([]models.GiftStatus, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.user_id, u.display_name, COALESCE(gc.sent, 0), COALESCE(gc.received, 0)
		FROM participants p
		JOIN users u ON u.id = p.user_id
		LEFT JOIN gift_confirmations gc ON gc.game_id = p.game_id AND gc.user_id = p.user_id
		WHERE p.game_id = ?
		ORDER BY p.joined_seq
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query gift status: %w", err)
	}
	defer rows.Close()

	var statuses []models.GiftStatus
	for rows.Next() {
		var st models.GiftStatus
		if err := rows.Scan(&st.UserID, &st.DisplayName, &st.Sent, &st.Received); err != nil {
			return nil, fmt.Errorf("failed to scan gift status: %w", err)
		}
		statuses = append(statuses, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating gift status: %w", err)
	}

	return statuses, nil
}
