// Package timetext renders the distance between two instants as a human
// sentence ("3 days ago", "in 2 minutes").
package timetext

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// tier is one elapsed-time bucket. A zero ceiling matches unconditionally
// and terminates the table.
type tier struct {
	ceiling int64
	text    string
}

var pastTiers = []tier{
	{ceiling: 60, text: "$seconds seconds ago"},
	{ceiling: 3600, text: "$minutes minutes ago"},
	{ceiling: 86400, text: "$hours hours ago"},
	{ceiling: 2629744, text: "$days days ago"},
	{ceiling: 31556926, text: "$months months ago"},
	{ceiling: 0, text: "$years years ago"},
}

var futureTiers = []tier{
	{ceiling: 60, text: "in $seconds seconds"},
	{ceiling: 3600, text: "in $minutes minutes"},
	{ceiling: 86400, text: "in $hours hours"},
	{ceiling: 2629744, text: "in $days days"},
	{ceiling: 31556926, text: "in $months months"},
	{ceiling: 0, text: "in $years years"},
}

type unit struct {
	seconds  int64
	name     string
	singular *regexp.Regexp
}

func newUnit(seconds int64, name string) unit {
	return unit{
		seconds:  seconds,
		name:     name,
		singular: regexp.MustCompile(`\b` + name + `\b`),
	}
}

// Unit sizes are fixed: a month is the mean Gregorian month and a year the
// mean tropical year, both in whole seconds.
var units = []unit{
	newUnit(31556926, "years"),
	newUnit(2629744, "months"),
	newUnit(86400, "days"),
	newUnit(3600, "hours"),
	newUnit(60, "minutes"),
	newUnit(1, "seconds"),
}

var placeholderPattern = regexp.MustCompile(`\$(\w+)`)

// Describe phrases the distance from at to reference. Instants before the
// reference render in the past tense, instants after it in the future tense.
func Describe(at, reference time.Time) string {
	elapsedSeconds := reference.Unix() - at.Unix()

	tiers := pastTiers
	if elapsedSeconds < 0 {
		tiers = futureTiers
		elapsedSeconds = -elapsedSeconds
	}

	selected := tiers[len(tiers)-1]
	for _, candidate := range tiers {
		if candidate.ceiling == 0 || elapsedSeconds <= candidate.ceiling {
			selected = candidate
			break
		}
	}

	remaining := elapsedSeconds
	breakdown := make(map[string]int64, len(units))
	for _, u := range units {
		count := remaining / u.seconds
		remaining -= count * u.seconds
		breakdown[u.name] = count
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(selected.text, func(match string) string {
		return strconv.FormatInt(breakdown[match[1:]], 10)
	})

	// Singularize only the unit the chosen tier actually names.
	for _, u := range units {
		if breakdown[u.name] != 1 {
			continue
		}
		rendered = u.singular.ReplaceAllStringFunc(rendered, func(word string) string {
			return strings.TrimSuffix(word, "s")
		})
	}

	return rendered
}

// DescribeSince phrases the distance from at to the current time.
func DescribeSince(at time.Time) string {
	return Describe(at, time.Now())
}
