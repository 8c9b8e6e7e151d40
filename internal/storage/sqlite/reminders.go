package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/secretsanta/internal/models"
)

// ListReminderCandidates returns participants of active games held on eventDate
// that have no sentinel for reminderType yet.
func (s *SQLiteStore) ListReminderCandidates(ctx context.Context, eventDate time.Time, reminderType models.ReminderType) ([]models.ReminderCandidate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, g.event_date, p.user_id,
		       COALESCE(us.language, ?), COALESCE(us.reminders_enabled, 1)
		FROM games g
		JOIN participants p ON p.game_id = g.id
		LEFT JOIN user_settings us ON us.user_id = p.user_id
		WHERE g.status = ? AND g.event_date = ?
		  AND NOT EXISTS (
		      SELECT 1 FROM reminders r
		      WHERE r.game_id = g.id AND r.user_id = p.user_id AND r.reminder_type = ?
		  )
		ORDER BY g.id, p.joined_seq
	`, string(models.LanguagePrimary), string(models.GameActive), formatDate(eventDate), string(reminderType))
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.ReminderCandidate
	for rows.Next() {
		var c models.ReminderCandidate
		var date, lang string
		if err := rows.Scan(&c.GameID, &c.GameName, &date, &c.UserID, &lang, &c.RemindersEnabled); err != nil {
			return nil, fmt.Errorf("failed to scan reminder candidate: %w", err)
		}
		c.EventDate, err = parseDate(date)
		if err != nil {
			return nil, err
		}
		c.Language = models.Language(lang)
		candidates = append(candidates, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminder candidates: %w", err)
	}

	return candidates, nil
}

// ClaimReminder inserts the sentinel unless one exists already.
func (s *SQLiteStore) ClaimReminder(ctx context.Context, record *models.ReminderRecord) (bool, error) {
	if record.ID == "" {
		record.ID = newID()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO reminders (id, game_id, user_id, reminder_type, sent, scheduled_at)
		VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(game_id, user_id, reminder_type) DO NOTHING
	`, record.ID, record.GameID, record.UserID, string(record.Type), toMillis(record.ScheduledAt))
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	record.Sent = false
	return affected == 1, nil
}

// MarkReminderSent records successful delivery for a claimed sentinel.
func (s *SQLiteStore) MarkReminderSent(ctx context.Context, gameID, userID string, reminderType models.ReminderType) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE reminders SET sent = 1
		WHERE game_id = ? AND user_id = ? AND reminder_type = ?
	`, gameID, userID, string(reminderType))
	if err != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", err)
	}
	return nil
}

// ListReminders returns every sentinel recorded for a game.
func (s *SQLiteStore) ListReminders(ctx context.Context, gameID string) ([]models.ReminderRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, game_id, user_id, reminder_type, sent, scheduled_at
		FROM reminders
		WHERE game_id = ?
		ORDER BY scheduled_at, user_id
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var records []models.ReminderRecord
	for rows.Next() {
		var r models.ReminderRecord
		var typ string
		var scheduledAt int64
		if err := rows.Scan(&r.ID, &r.GameID, &r.UserID, &typ, &r.Sent, &scheduledAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		r.Type = models.ReminderType(typ)
		r.ScheduledAt = fromMillis(scheduledAt)
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}

	return records, nil
}
