package service

import (
	"errors"
	"time"
)

// ErrMalformedDateTime 日期或时间格式非法
var ErrMalformedDateTime = errors.New("日期或时间格式非法")

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// parseReservationDate 解析 YYYY-MM-DD 格式日期（零点，UTC）
func parseReservationDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrMalformedDateTime
	}
	return t, nil
}

// parseClock 解析 HH:MM 格式时刻，返回当日分钟偏移
func parseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, ErrMalformedDateTime
	}
	return t.Hour()*60 + t.Minute(), nil
}

// combineDateTime 合并日期与 HH:MM 时刻
func combineDateTime(date time.Time, clock string) (time.Time, error) {
	minutes, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		minutes/60, minutes%60, 0, 0, date.Location()), nil
}

// intervalsOverlap 半开区间重叠判定: start < otherEnd && end > otherStart
func intervalsOverlap(start, end, otherStart, otherEnd int) bool {
	return start < otherEnd && end > otherStart
}

// intervalCovered 设备占用判定：新区间起点或终点落入已有区间，或完全包住已有区间
func intervalCovered(start, end, otherStart, otherEnd int) bool {
	if start >= otherStart && start < otherEnd {
		return true
	}
	if end > otherStart && end <= otherEnd {
		return true
	}
	if start <= otherStart && end >= otherEnd {
		return true
	}
	return false
}

// durationHours 区间小时数
func durationHours(start, end int) float64 {
	return float64(end-start) / 60.0
}
