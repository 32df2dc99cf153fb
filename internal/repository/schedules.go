package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/model"
)

// ScheduleRecord 排班结果的持久化头记录
type ScheduleRecord struct {
	ID            uuid.UUID `json:"id"`
	OrgID         uuid.UUID `json:"org_id"`
	WeekStart     string    `json:"week_start"`
	Feasible      bool      `json:"feasible"`
	Score         int       `json:"score"`
	FairnessScore int       `json:"fairness_score"`
	CoverageRate  float64   `json:"coverage_rate"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ScheduleRepository 排班结果仓储
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班结果仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// SaveResult 持久化一次优化结果
// 头记录与扁平分配记录一并写入，由调用方置于同一事务中
func (r *ScheduleRepository) SaveResult(
	ctx context.Context,
	orgID uuid.UUID,
	result *model.OptimizedSchedule,
	catalog model.ShiftCatalog,
) (uuid.UUID, error) {
	scheduleID := uuid.New()

	headQuery := `
		INSERT INTO schedules (id, org_id, week_start, feasible, score, fairness_score, coverage_rate, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, headQuery,
		scheduleID, orgID, result.WeekStart,
		result.Validation.IsValid, result.Validation.Score,
		result.FairnessScore, result.Metrics.CoverageRate, time.Now(),
	)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入排班头记录失败")
	}

	assignQuery := `
		INSERT INTO schedule_assignments (id, schedule_id, employee_id, date, shift_id, shift_code, is_locked)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for _, a := range result.Assignments(catalog) {
		_, err := r.db.ExecContext(ctx, assignQuery,
			uuid.New(), scheduleID, a.EmployeeID, a.Date, a.ShiftID, a.ShiftCode, a.IsLocked,
		)
		if err != nil {
			return uuid.Nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入排班分配失败")
		}
	}
	return scheduleID, nil
}

// GetLatest 获取某机构最近一次排班头记录
func (r *ScheduleRepository) GetLatest(ctx context.Context, orgID uuid.UUID) (*ScheduleRecord, error) {
	query := `
		SELECT id, org_id, week_start, feasible, score, fairness_score, coverage_rate, generated_at
		FROM schedules
		WHERE org_id = $1
		ORDER BY generated_at DESC
		LIMIT 1
	`

	record := &ScheduleRecord{}
	err := r.db.QueryRowContext(ctx, query, orgID).Scan(
		&record.ID, &record.OrgID, &record.WeekStart,
		&record.Feasible, &record.Score, &record.FairnessScore,
		&record.CoverageRate, &record.GeneratedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("schedule", orgID.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班记录失败")
	}
	return record, nil
}

// GetAssignments 读取排班的扁平分配记录
func (r *ScheduleRepository) GetAssignments(ctx context.Context, scheduleID uuid.UUID) ([]model.Assignment, error) {
	query := `
		SELECT employee_id, date, shift_id, shift_code, is_locked
		FROM schedule_assignments
		WHERE schedule_id = $1
		ORDER BY date, employee_id
	`

	rows, err := r.db.QueryContext(ctx, query, scheduleID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询排班分配失败")
	}
	defer rows.Close()

	var assignments []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.EmployeeID, &a.Date, &a.ShiftID, &a.ShiftCode, &a.IsLocked); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描排班分配失败")
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历排班分配失败")
	}
	return assignments, nil
}
