package repository

import (
	"context"
	"fmt"
)

// ProblemRepository answers eligibility questions about catalog problems.
// Problem content itself is owned by the catalog CRUD endpoints.
type ProblemRepository struct {
	db DBTX
}

// NewProblemRepository creates a repository bound to a pool or an open
// transaction.
func NewProblemRepository(db DBTX) *ProblemRepository {
	return &ProblemRepository{db: db}
}

// IsReviewable reports whether the problem exists and carries at least one
// topic. Problems without a topic association cannot enter review rotation.
func (r *ProblemRepository) IsReviewable(ctx context.Context, problemID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1
			FROM problems p
			JOIN problem_topics t ON t.problem_id = p.id
			WHERE p.id = $1
		)
	`
	var ok bool
	if err := r.db.QueryRow(ctx, query, problemID).Scan(&ok); err != nil {
		return false, fmt.Errorf("is reviewable: %w", err)
	}
	return ok, nil
}
