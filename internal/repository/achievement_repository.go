package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/office-room-booking/internal/model"
)

// AchievementRepo reads badge definitions and records awards.  Awarding
// is idempotent (INSERT IGNORE over a unique pair), so the queue
// consumer can reprocess a delivery without double-awarding.
type AchievementRepo struct {
	db *sql.DB
}

// NewAchievementRepo returns an AchievementRepo bound to the given database.
func NewAchievementRepo(db *sql.DB) *AchievementRepo { return &AchievementRepo{db: db} }

// ListDefinitions returns every badge definition ordered by threshold.
func (r *AchievementRepo) ListDefinitions(ctx context.Context) ([]model.Achievement, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, name, description, threshold FROM achievements ORDER BY threshold`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Achievement, 0)
	for rows.Next() {
		var a model.Achievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Threshold); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AwardUpTo grants the employee every badge whose threshold the given
// bookings count has reached.  Already-held badges are skipped.  It
// returns the number of newly awarded badges.
func (r *AchievementRepo) AwardUpTo(ctx context.Context, employeeID uint64, bookings uint32) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT IGNORE INTO employee_achievements (employee_id, achievement_id)
		 SELECT ?, id FROM achievements WHERE threshold <= ?`,
		employeeID, bookings)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// ListForEmployee returns the badges an employee has earned, in the
// order they were awarded.
func (r *AchievementRepo) ListForEmployee(ctx context.Context, employeeID uint64) ([]model.EmployeeAchievement, error) {
	const q = `SELECT a.id, a.code, a.name, a.description, a.threshold, ea.awarded_at
	           FROM employee_achievements ea
	           JOIN achievements a ON a.id = ea.achievement_id
	           WHERE ea.employee_id = ?
	           ORDER BY ea.awarded_at`
	rows, err := r.db.QueryContext(ctx, q, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.EmployeeAchievement, 0)
	for rows.Next() {
		var a model.EmployeeAchievement
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Description, &a.Threshold, &a.AwardedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
