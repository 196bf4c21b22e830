package util

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ttlPattern = regexp.MustCompile(`^(\d+)([smhd])$`)

// ParseTTL разбирает время жизни токена из конфигурации. Допустимые формы:
// целое число (миллисекунды) или строка вида "15m", "30d".
// Пустая строка означает значение по умолчанию
func ParseTTL(value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}

	if ms, err := strconv.ParseInt(value, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}

	match := ttlPattern.FindStringSubmatch(value)
	if match == nil {
		return 0, fmt.Errorf("некорректный формат TTL: %q", value)
	}

	amount, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("некорректный формат TTL: %q", value)
	}

	var unit time.Duration
	switch match[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}

	return time.Duration(amount) * unit, nil
}
