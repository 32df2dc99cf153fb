package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/model"
)

// EmployeeRepository 员工仓储
type EmployeeRepository struct {
	db DB
}

// NewEmployeeRepository 创建员工仓储
func NewEmployeeRepository(db DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListByOrg 加载某机构的在职员工
// 偏好与可用性以 JSON 列存储，损坏的记录按无偏好处理
func (r *EmployeeRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*model.Employee, error) {
	query := `
		SELECT id, name, role, department_id, contract_type,
			max_hours_per_week, min_hours_per_week, skills, preferences, availability
		FROM employees
		WHERE org_id = $1 AND active = true
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询员工失败")
	}
	defer rows.Close()

	var employees []*model.Employee
	for rows.Next() {
		emp := &model.Employee{}
		var prefs, avail []byte
		if err := rows.Scan(
			&emp.ID, &emp.Name, &emp.Role, &emp.DepartmentID, &emp.ContractType,
			&emp.MaxHoursPerWeek, &emp.MinHoursPerWeek, pq.Array(&emp.Skills),
			&prefs, &avail,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描员工失败")
		}
		if len(prefs) > 0 {
			p := &model.EmployeePreferences{}
			if json.Unmarshal(prefs, p) == nil {
				emp.Preferences = p
			}
		}
		if len(avail) > 0 {
			a := &model.EmployeeAvailability{}
			if json.Unmarshal(avail, a) == nil {
				emp.Availability = a
			}
		}
		employees = append(employees, emp)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历员工失败")
	}
	return employees, nil
}

// ShiftRepository 班次目录仓储
type ShiftRepository struct {
	db DB
}

// NewShiftRepository 创建班次仓储
func NewShiftRepository(db DB) *ShiftRepository {
	return &ShiftRepository{db: db}
}

// ListByOrg 加载某机构的班次目录
func (r *ShiftRepository) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]*model.ShiftType, error) {
	query := `
		SELECT id, code, name, start_time, end_time, duration_hours,
			required_staff, min_staff, max_staff
		FROM shift_types
		WHERE org_id = $1
		ORDER BY start_time, code
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询班次失败")
	}
	defer rows.Close()

	var shifts []*model.ShiftType
	for rows.Next() {
		shift := &model.ShiftType{}
		if err := rows.Scan(
			&shift.ID, &shift.Code, &shift.Name, &shift.StartTime, &shift.EndTime,
			&shift.DurationHours, &shift.RequiredStaff, &shift.MinStaff, &shift.MaxStaff,
		); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描班次失败")
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历班次失败")
	}
	return shifts, nil
}
