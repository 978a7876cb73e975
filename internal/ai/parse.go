package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	strictPattern  = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]+)?)\s*$`)
	numberRegex    = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)?`)
	unitRegex      = regexp.MustCompile(`^[ \t]*([a-zA-Z%/]+)`)
	ErrParseFailed = errors.New("parse_failed")
)

// ParseEstimate extracts the numeric value from model output. It first tries
// the strict single-number format, then falls back to the longest number
// found in the text (e.g. "around 850000 EGP").
func ParseEstimate(text string) (float64, error) {
	val, _, err := ParseEstimateWithUnit(text)
	return val, err
}

// ParseEstimateWithUnit returns the parsed value and trailing unit (if any).
func ParseEstimateWithUnit(text string) (float64, string, error) {
	// strict
	m := strictPattern.FindStringSubmatch(text)
	if len(m) >= 2 {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, "", fmt.Errorf("%w: %v", ErrParseFailed, err)
		}
		return v, "", nil
	}
	// fallback: longest number + optional unit
	matches := numberRegex.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return 0, "", fmt.Errorf("%w: no value found", ErrParseFailed)
	}
	bestIdx := matches[0]
	for _, m := range matches[1:] {
		if (m[1] - m[0]) > (bestIdx[1] - bestIdx[0]) {
			bestIdx = m
		}
	}
	valStr := text[bestIdx[0]:bestIdx[1]]
	v, err := strconv.ParseFloat(valStr, 64)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	unit := ""
	if post := text[bestIdx[1]:]; post != "" {
		if u := unitRegex.FindStringSubmatch(post); len(u) >= 2 {
			unit = strings.TrimSpace(u[1])
		}
	}
	return v, unit, nil
}
