package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/mmynk/secretsanta/internal/storage"
)

// AssignAll persists a complete draw. The write only succeeds if no participant
// is assigned yet and the participant set still equals the keys of assignments.
func (s *SQLiteStore) AssignAll(ctx context.Context, gameID string, assignments map[string]string) error {
	if len(assignments) == 0 {
		return fmt.Errorf("empty assignment set for game %s: %w", gameID, storage.ErrConflict)
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT user_id, assigned_to IS NOT NULL
			FROM participants
			WHERE game_id = ?
		`, gameID)
		if err != nil {
			return fmt.Errorf("failed to query participants: %w", err)
		}

		seen := 0
		for rows.Next() {
			var userID string
			var assigned bool
			if err := rows.Scan(&userID, &assigned); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan participant: %w", err)
			}
			if assigned {
				rows.Close()
				return fmt.Errorf("game %s already drawn: %w", gameID, storage.ErrConflict)
			}
			if _, ok := assignments[userID]; !ok {
				rows.Close()
				return fmt.Errorf("participant %s joined after draw started: %w", userID, storage.ErrConflict)
			}
			seen++
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return fmt.Errorf("error iterating participants: %w", err)
		}
		rows.Close()

		if seen != len(assignments) {
			return fmt.Errorf("participant set changed for game %s: %w", gameID, storage.ErrConflict)
		}

		stmt, err := tx.PrepareContext(ctx, `
			UPDATE participants
			SET assigned_to = ?
			WHERE game_id = ? AND user_id = ? AND assigned_to IS NULL
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare assignment: %w", err)
		}
		defer stmt.Close()

		for giver, receiver := range assignments {
			result, err := stmt.ExecContext(ctx, receiver, gameID, giver)
			if err != nil {
				return fmt.Errorf("failed to assign %s: %w", giver, err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read rows affected: %w", err)
			}
			if affected != 1 {
				return fmt.Errorf("assignment for %s lost a race: %w", giver, storage.ErrConflict)
			}
		}

		return nil
	})
}

// ResetAssignments clears every assignment in the game.
func (s *SQLiteStore) ResetAssignments(ctx context.Context, gameID string) (int64, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE participants
		SET assigned_to = NULL
		WHERE game_id = ? AND assigned_to IS NOT NULL
	`, gameID)
	if err != nil {
		return 0, fmt.Errorf("failed to reset assignments: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected, nil
}
