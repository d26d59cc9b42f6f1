package dispatch

import (
	"regexp"
	"strings"
)

var (
	helloPattern    = regexp.MustCompile(`(?i)^(hello|hi|hey) (bot|awesome overlord)`)
	actionPattern   = regexp.MustCompile(`^\x01ACTION (.*)\x01$`)
	videoURLPattern = regexp.MustCompile(`(?i)^.*((youtu\.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?\s]*).*`)
)

// matchCommand builds a filter matching messages whose first whitespace
// separated token equals the verb, case-insensitively.
func matchCommand(verb string) func(string) bool {
	return func(text string) bool {
		fields := strings.Fields(text)
		return len(fields) > 0 && strings.EqualFold(fields[0], verb)
	}
}

// matchNowPlaying accepts exactly ".np" with no arguments.
func matchNowPlaying(text string) bool {
	return text == ".np"
}

// matchYouTube requires the verb plus exactly one argument.
func matchYouTube(text string) bool {
	fields := strings.Fields(text)
	return len(fields) == 2 && strings.EqualFold(fields[0], ".youtube")
}

// matchAdmin requires the verb plus at least one subcommand token.
func matchAdmin(text string) bool {
	fields := strings.Fields(text)
	return len(fields) > 1 && strings.EqualFold(fields[0], ".admin")
}

func matchHello(text string) bool {
	return helloPattern.MatchString(text)
}

func matchAction(text string) bool {
	return actionPattern.MatchString(text)
}

func matchVideoURL(text string) bool {
	match := videoURLPattern.FindStringSubmatch(text)
	return match != nil && match[7] != ""
}

// splitTrailing splits "<verb> <arg> <trailing text...>" on the first two
// spaces, preserving all spacing inside the trailing text.
func splitTrailing(text string) (arg, trailing string, ok bool) {
	first := strings.Index(text, " ")
	if first < 0 {
		return "", "", false
	}
	second := strings.Index(text[first+1:], " ")
	if second < 0 {
		return "", "", false
	}
	second += first + 1
	return text[first+1 : second], text[second+1:], true
}
