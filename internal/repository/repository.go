// Package repository 提供数据访问层
package repository

import (
	"context"
	"database/sql"
)

// DB 仓储使用的最小数据库接口
// *database.DB 与 *sql.Tx 均满足，事务与直连共用同一套仓储代码
type DB interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Scanner 行扫描接口，*sql.Row 与 *sql.Rows 共用扫描逻辑
type Scanner interface {
	Scan(dest ...interface{}) error
}
