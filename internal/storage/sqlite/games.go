package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/secretsanta/internal/models"
	"github.com/mmynk/secretsanta/internal/storage"
)

const gameColumns = `g.id, g.name, g.organizer_id, g.budget, g.event_date, g.status, g.created_at`

const summaryColumns = gameColumns + `,
	(SELECT COUNT(*) FROM participants pc WHERE pc.game_id = g.id),
	EXISTS (SELECT 1 FROM participants pd WHERE pd.game_id = g.id AND pd.assigned_to IS NOT NULL)`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(row rowScanner, extra ...any) (*models.Game, error) {
	game := &models.Game{}
	var eventDate, status string
	var createdAt int64
	dest := append([]any{
		&game.ID,
		&game.Name,
		&game.OrganizerID,
		&game.Budget,
		&eventDate,
		&status,
		&createdAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	date, err := parseDate(eventDate)
	if err != nil {
		return nil, err
	}
	game.EventDate = date
	game.Status = models.GameStatus(status)
	game.CreatedAt = fromMillis(createdAt)
	return game, nil
}

func scanSummary(row rowScanner) (models.GameSummary, error) {
	var summary models.GameSummary
	game, err := scanGame(row, &summary.ParticipantCount, &summary.Drawn)
	if err != nil {
		return models.GameSummary{}, err
	}
	summary.Game = *game
	return summary, nil
}

// insertParticipant appends a membership after the current last joiner.
func insertParticipant(ctx context.Context, tx *sql.Tx, p *models.Participant) error {
	if p.ID == "" {
		p.ID = newID()
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO participants (id, game_id, user_id, assigned_to, joined_seq)
		SELECT ?, ?, ?, NULL, COALESCE(MAX(joined_seq), 0) + 1
		FROM participants WHERE game_id = ?
	`, p.ID, p.GameID, p.UserID, p.GameID)
	if isUniqueViolation(err) {
		return storage.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert participant: %w", err)
	}
	p.AssignedTo = ""
	return nil
}

// CreateGame inserts a game and enrolls its organizer.
func (s *SQLiteStore) CreateGame(ctx context.Context, game *models.Game) error {
	if game.ID == "" {
		game.ID = newID()
	}
	if game.Status == "" {
		game.Status = models.GameActive
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO games (id, name, organizer_id, budget, event_date, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			game.ID,
			game.Name,
			game.OrganizerID,
			game.Budget,
			formatDate(game.EventDate),
			string(game.Status),
			toMillis(game.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("failed to insert game: %w", err)
		}

		return insertParticipant(ctx, tx, &models.Participant{
			GameID: game.ID,
			UserID: game.OrganizerID,
		})
	})
}

// GetGame retrieves a game by ID.
func (s *SQLiteStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games g WHERE g.id = ?`, gameID)
	game, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

// AddParticipant enrolls a user in a game.
func (s *SQLiteStore) AddParticipant(ctx context.Context, participant *models.Participant) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return insertParticipant(ctx, tx, participant)
	})
}

func scanParticipant(row rowScanner, extra ...any) (*models.Participant, error) {
	p := &models.Participant{}
	var assignedTo sql.NullString
	dest := append([]any{&p.ID, &p.GameID, &p.UserID, &assignedTo}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.AssignedTo = assignedTo.String
	return p, nil
}

// GetParticipant retrieves a user's membership in a game.
func (s *SQLiteStore) GetParticipant(ctx context.Context, gameID, userID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, user_id, assigned_to
		FROM participants
		WHERE game_id = ? AND user_id = ?
	`, gameID, userID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get participant: %w", err)
	}
	return p, nil
}

// ListParticipants returns a game's members with their profiles, in join order.
func (s *SQLiteStore) ListParticipants(ctx context.Context, gameID string) ([]models.ParticipantDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.game_id, p.user_id, p.assigned_to, u.display_name, u.wishes
		FROM participants p
		JOIN users u ON u.id = p.user_id
		WHERE p.game_id = ?
		ORDER BY p.joined_seq
	`, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query participants: %w", err)
	}
	defer rows.Close()

	var participants []models.ParticipantDetail
	for rows.Next() {
		var detail models.ParticipantDetail
		p, err := scanParticipant(rows, &detail.DisplayName, &detail.Wishes)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		detail.Participant = *p
		participants = append(participants, detail)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating participants: %w", err)
	}

	return participants, nil
}

// FindGiver returns the participant assigned to receiverID.
func (s *SQLiteStore) FindGiver(ctx context.Context, gameID, receiverID string) (*models.Participant, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, game_id, user_id, assigned_to
		FROM participants
		WHERE game_id = ? AND assigned_to = ?
	`, gameID, receiverID)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find giver: %w", err)
	}
	return p, nil
}

func (s *SQLiteStore) listSummaries(ctx context.Context, query string, args ...any) ([]models.GameSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var games []models.GameSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, summary)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}

	return games, nil
}

// ListJoinableGames returns active, undrawn games that userID has not joined.
func (s *SQLiteStore) ListJoinableGames(ctx context.Context, userID string) ([]models.GameSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM games g
		WHERE g.status = ?
		  AND EXISTS (SELECT 1 FROM participants p WHERE p.game_id = g.id)
		  AND NOT EXISTS (SELECT 1 FROM participants p WHERE p.game_id = g.id AND p.user_id = ?)
		  AND NOT EXISTS (SELECT 1 FROM participants p WHERE p.game_id = g.id AND p.assigned_to IS NOT NULL)
		ORDER BY g.event_date, g.created_at
	`
	return s.listSummaries(ctx, query, string(models.GameActive), userID)
}

// ListUserGames returns every game userID participates in.
func (s *SQLiteStore) ListUserGames(ctx context.Context, userID string) ([]models.GameSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM games g
		JOIN participants me ON me.game_id = g.id AND me.user_id = ?
		ORDER BY g.event_date, g.created_at
	`
	return s.listSummaries(ctx, query, userID)
}

// ListCounterpartGames returns games where userID gives to or receives from someone.
func (s *SQLiteStore) ListCounterpartGames(ctx context.Context, userID string) ([]models.CounterpartGame, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT g.id, g.name, 1
		FROM participants p
		JOIN games g ON g.id = p.game_id
		WHERE p.user_id = ? AND p.assigned_to IS NOT NULL
		UNION ALL
		SELECT g.id, g.name, 0
		FROM participants p
		JOIN games g ON g.id = p.game_id
		WHERE p.assigned_to = ?
		ORDER BY 2, 3 DESC
	`, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query counterpart games: %w", err)
	}
	defer rows.Close()

	var games []models.CounterpartGame
	for rows.Next() {
		var g models.CounterpartGame
		if err := rows.Scan(&g.GameID, &g.GameName, &g.IsGiver); err != nil {
			return nil, fmt.Errorf("failed to scan counterpart game: %w", err)
		}
		games = append(games, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating counterpart games: %w", err)
	}

	return games, nil
}
