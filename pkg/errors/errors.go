// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"
	CodeConflict     Code = "CONFLICT"
	CodeTimeout      Code = "TIMEOUT"

	// 排班引擎相关
	// 业务不可行不是错误码：不可行的排班以 IsValid=false 的正常结果返回
	CodeConstraintEvaluation Code = "CONSTRAINT_EVALUATION" // 内部不变式被破坏，属于缺陷
	CodeSolverFailure        Code = "SOLVER_FAILURE"        // 外部求解器崩溃或输出格式错误，结果缺失而非否定
	CodeSolverTimeout        Code = "SOLVER_TIMEOUT"        // 外部求解器超时

	// 基础设施相关
	CodeDatabaseError Code = "DATABASE_ERROR"
	CodeQueueError    Code = "QUEUE_ERROR"
	CodeCacheError    Code = "CACHE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{Code: code, Message: message, Cause: err}
}

// Is 检查错误是否为特定错误码
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// InvalidInput 创建输入无效错误
// 花名册/班次目录/日期范围不合法时在计算开始前快速失败
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}

// ConstraintEvaluation 创建约束评估内部错误
// 例如分配引用了未知班次代码；经过输入校验后不应出现
func ConstraintEvaluation(details string) *AppError {
	return New(CodeConstraintEvaluation, "约束评估内部错误").WithDetails(details)
}

// SolverFailure 创建外部求解器失败错误
// 与排班不可行严格区分：结果缺失应触发重试或回退到进程内优化器
func SolverFailure(solver string, cause error) *AppError {
	return Wrap(cause, CodeSolverFailure, fmt.Sprintf("外部求解器 '%s' 调用失败", solver))
}

// SolverTimeout 创建外部求解器超时错误
func SolverTimeout(solver string) *AppError {
	return New(CodeSolverTimeout, fmt.Sprintf("外部求解器 '%s' 超时", solver))
}

// NotFound 创建资源不存在错误
func NotFound(resource, id string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s '%s' 不存在", resource, id))
}
