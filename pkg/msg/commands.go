package msg

import "strings"

const CommandPrefix = "/"

// MatchCommand reports whether msg is one of the command variants, ignoring
// arguments and a trailing @botname.
func MatchCommand(msg string, variants []string) bool {
	name, _ := ParseCommand(msg)
	if name == "" {
		return false
	}

	for _, v := range variants {
		if name == strings.ToLower(strings.TrimPrefix(v, CommandPrefix)) {
			return true
		}
	}

	return false
}

func IsCommand(msg string) bool {
	return strings.HasPrefix(strings.TrimSpace(msg), CommandPrefix)
}

// ParseCommand splits "/tz@rembot +05:00" into "tz" and "+05:00".
func ParseCommand(msg string) (name, args string) {
	msg = strings.TrimSpace(msg)
	if !IsCommand(msg) {
		return "", ""
	}

	head, rest, _ := strings.Cut(msg, " ")
	head = strings.TrimPrefix(head, CommandPrefix)
	if at := strings.IndexByte(head, '@'); at >= 0 {
		head = head[:at]
	}

	return strings.ToLower(head), strings.TrimSpace(rest)
}
