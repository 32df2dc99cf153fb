// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ShiftType 班次类型定义
// 时长与起止时间是所有工时和休息时间计算的唯一依据，引擎不得按班次代码硬编码时长
type ShiftType struct {
	ID            uuid.UUID `json:"id" db:"id" validate:"required"`
	Code          string    `json:"code" db:"code" validate:"required"`
	Name          string    `json:"name" db:"name"`
	StartTime     string    `json:"start_time" db:"start_time" validate:"required"` // HH:MM
	EndTime       string    `json:"end_time" db:"end_time" validate:"required"`     // HH:MM
	DurationHours float64   `json:"duration_hours" db:"duration_hours" validate:"gt=0"`
	RequiredStaff int       `json:"required_staff" db:"required_staff"`
	MinStaff      int       `json:"min_staff" db:"min_staff"`
	MaxStaff      int       `json:"max_staff" db:"max_staff"`
}

// ParseMinute 解析 HH:MM 为当日分钟数
func ParseMinute(hhmm string) (int, error) {
	parts := strings.SplitN(hhmm, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("时间格式无效: %q", hhmm)
	}
	return h*60 + m, nil
}

// StartMinute 返回班次开始时间的当日分钟数
func (s *ShiftType) StartMinute() (int, error) {
	return ParseMinute(s.StartTime)
}

// EndMinute 返回班次结束时间的当日分钟数
func (s *ShiftType) EndMinute() (int, error) {
	return ParseMinute(s.EndTime)
}

// CrossesMidnight 检查班次是否跨午夜（结束时间不晚于开始时间）
func (s *ShiftType) CrossesMidnight() bool {
	start, err1 := s.StartMinute()
	end, err2 := s.EndMinute()
	if err1 != nil || err2 != nil {
		return false
	}
	return end <= start
}

// IsNight 检查是否为夜班
// 22 点后开始、6 点前结束或跨午夜的班次视为夜班
func (s *ShiftType) IsNight() bool {
	start, err1 := s.StartMinute()
	end, err2 := s.EndMinute()
	if err1 != nil || err2 != nil {
		return false
	}
	return start >= 22*60 || end <= 6*60 || end <= start
}

// ShiftCatalog 班次目录（按代码索引）
type ShiftCatalog map[string]*ShiftType

// NewShiftCatalog 从班次列表构建目录
func NewShiftCatalog(shifts []*ShiftType) ShiftCatalog {
	catalog := make(ShiftCatalog, len(shifts))
	for _, s := range shifts {
		catalog[s.Code] = s
	}
	return catalog
}

// Get 按代码查找班次
func (c ShiftCatalog) Get(code string) (*ShiftType, bool) {
	s, ok := c[code]
	return s, ok
}
