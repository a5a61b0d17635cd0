package postgres

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/servicehub-api/internal/domain"
)

// categoryIDsColumn aggregates a join table into one comma-separated text
// column so category sets load with the parent row.
const categoryIDsColumn = `COALESCE((
	SELECT string_agg(j.category_id::text, ',' ORDER BY j.category_id)
	FROM %s j WHERE j.%s = %s.id
), '')`

func categoryIDsSelect(joinTable, fkColumn, parentAlias string) string {
	return fmt.Sprintf(categoryIDsColumn, joinTable, fkColumn, parentAlias)
}

// parseIDList parses the output of categoryIDsSelect.
func parseIDList(raw string) ([]uuid.UUID, error) {
	if raw == "" {
		return []uuid.UUID{}, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uuid.UUID, 0, len(parts))
	for _, p := range parts {
		id, err := uuid.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid category id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// parseStars reads a NUMERIC(3,2) column selected as text.
func parseStars(raw string) (domain.Stars, error) {
	s, err := domain.ParseStars(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid stars value %q: %w", raw, err)
	}
	return s, nil
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
