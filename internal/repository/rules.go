package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	apperrors "github.com/yihuban/yihuban/pkg/errors"
	"github.com/yihuban/yihuban/pkg/model"
)

// ConstraintRuleRepository 约束规则仓储
// 规则按租户（机构）配置，引擎运行前加载为 ConstraintSet
type ConstraintRuleRepository struct {
	db DB
}

// NewConstraintRuleRepository 创建约束规则仓储
func NewConstraintRuleRepository(db DB) *ConstraintRuleRepository {
	return &ConstraintRuleRepository{db: db}
}

// GetActiveByOrg 加载某机构的启用规则集
// 机构未配置任何规则时回退到默认规则集
func (r *ConstraintRuleRepository) GetActiveByOrg(ctx context.Context, orgID uuid.UUID) (*model.ConstraintSet, error) {
	query := `
		SELECT id, kind, name, type, category, weight, active, severity
		FROM constraint_rules
		WHERE org_id = $1 AND active = true
		ORDER BY kind
	`

	rows, err := r.db.QueryContext(ctx, query, orgID)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询约束规则失败")
	}
	defer rows.Close()

	set := &model.ConstraintSet{}
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "扫描约束规则失败")
		}
		set.Rules = append(set.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "遍历约束规则失败")
	}

	if len(set.Rules) == 0 {
		return model.DefaultConstraintSet(), nil
	}
	return set, nil
}

// GetByID 按 ID 获取规则
func (r *ConstraintRuleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ConstraintRule, error) {
	query := `
		SELECT id, kind, name, type, category, weight, active, severity
		FROM constraint_rules
		WHERE id = $1
	`

	rule, err := scanRule(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("constraint_rule", id.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "查询约束规则失败")
	}
	return rule, nil
}

// Upsert 写入或更新规则
func (r *ConstraintRuleRepository) Upsert(ctx context.Context, orgID uuid.UUID, rule *model.ConstraintRule) error {
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}

	query := `
		INSERT INTO constraint_rules (id, org_id, kind, name, type, category, weight, active, severity)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name, type = EXCLUDED.type, category = EXCLUDED.category,
			weight = EXCLUDED.weight, active = EXCLUDED.active, severity = EXCLUDED.severity
	`

	_, err := r.db.ExecContext(ctx, query,
		rule.ID, orgID, rule.Kind, rule.Name, rule.Type,
		rule.Category, rule.Weight, rule.Active, rule.Severity,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeDatabaseError, "写入约束规则失败")
	}
	return nil
}

// scanRule 扫描单条规则
func scanRule(s Scanner) (*model.ConstraintRule, error) {
	rule := &model.ConstraintRule{}
	var category sql.NullString
	var weight sql.NullInt64

	if err := s.Scan(
		&rule.ID, &rule.Kind, &rule.Name, &rule.Type,
		&category, &weight, &rule.Active, &rule.Severity,
	); err != nil {
		return nil, err
	}
	rule.Category = category.String
	rule.Weight = int(weight.Int64)
	return rule, nil
}
