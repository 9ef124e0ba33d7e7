package opts

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// parseDuration accepts Go duration syntax ("1h30m") and the clock form
// "[-][d.]hh:mm[:ss[.fffffff]]".
func parseDuration(raw string) (time.Duration, error) {
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	return parseClockDuration(raw)
}

func parseClockDuration(raw string) (time.Duration, error) {
	text := strings.TrimSpace(raw)
	invalid := fmt.Errorf("invalid duration %q", raw)
	if text == "" {
		return 0, invalid
	}

	negative := false
	if text[0] == '-' {
		negative = true
		text = text[1:]
	}

	var days int64
	clock := text
	if dot := strings.IndexByte(text, '.'); dot >= 0 {
		if colon := strings.IndexByte(text, ':'); colon < 0 || dot < colon {
			n, err := strconv.ParseInt(text[:dot], 10, 64)
			if err != nil {
				return 0, invalid
			}
			days = n
			clock = text[dot+1:]
		}
	}

	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, invalid
	}
	hours, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || hours < 0 || hours > 23 {
		return 0, invalid
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, invalid
	}

	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || seconds < 0 || seconds >= 60 {
			return 0, invalid
		}
	}

	total := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	if negative {
		total = -total
	}
	return total, nil
}
