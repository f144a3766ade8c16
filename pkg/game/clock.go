package game

import (
	"fmt"
	"strconv"
	"strings"
)

const minutesPerDay = 24 * 60

// Clock 游戏内时钟：第几天 + 当天分钟数（0~1439）
type Clock struct {
	Day     int
	Minutes int
}

// NewClock 创建时钟
func NewClock(day, hour, minute int) Clock {
	c := Clock{Day: day}
	c.Advance(hour*60 + minute)
	return c
}

// Advance 推进分钟数，跨过午夜时天数递增（负数不回退）
func (c *Clock) Advance(minutes int) {
	if minutes <= 0 {
		return
	}
	total := c.Minutes + minutes
	c.Day += total / minutesPerDay
	c.Minutes = total % minutesPerDay
}

// Hour 当前小时
func (c Clock) Hour() int {
	return c.Minutes / 60
}

// String 返回 "HH:MM"
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Minutes/60, c.Minutes%60)
}

// ParseClock 从存档中的 day 和 "HH:MM" 恢复时钟
func ParseClock(day int, hhmm string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(hhmm), ":")
	if len(parts) != 2 {
		return Clock{}, fmt.Errorf("invalid time %q", hhmm)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return Clock{}, fmt.Errorf("invalid hour in %q", hhmm)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid minute in %q", hhmm)
	}
	if day < 1 {
		day = 1
	}
	return Clock{Day: day, Minutes: h*60 + m}, nil
}
