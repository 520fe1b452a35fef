package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/itchan-dev/forum/shared/domain"
)

// ActivePosters counts approved non-event posts of active users in regular
// categories newer than since.
func (s *Storage) ActivePosters(ctx context.Context, since time.Time, limit int) ([]domain.RankedUser, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, COUNT(p.id) AS score
		FROM posts p
		JOIN users u ON u.id = p.poster_id
		JOIN categories c ON c.id = p.category_id
		WHERE u.is_active
		  AND c.special = ''
		  AND NOT p.is_event
		  AND NOT p.is_unapproved
		  AND p.posted_on > $1
		GROUP BY u.id, u.name
		ORDER BY score DESC, u.id
		LIMIT $2
	`, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query active posters: %w", err)
	}
	defer rows.Close()

	var users []domain.RankedUser
	for rows.Next() {
		var u domain.RankedUser
		if err := rows.Scan(&u.UserId, &u.Name, &u.Score); err != nil {
			return nil, fmt.Errorf("failed to scan active poster: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating active posters: %w", err)
	}
	return users, nil
}
