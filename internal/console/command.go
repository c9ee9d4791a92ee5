package console

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Command is one parsed input line.
type Command struct {
	Name string
	Args []string
	// Rest is everything after the command word, unsplit. Free-text
	// commands (check, history, name) use it.
	Rest string
}

var errUnclosedQuote = errors.New("console: unclosed quote")

// aliases maps alternative spellings to the canonical command name.
var aliases = map[string]string{
	"go":       "go",
	"open":     "go",
	"check":    "check",
	"analyze":  "check",
	"signup":   "signup",
	"sign-up":  "signup",
	"register": "signup",
	"login":    "login",
	"logout":   "logout",
	"history":  "history",
	"search":   "history",
	"clear":    "clear-history",
	"reset":    "reset-history",
	"name":     "name",
	"password": "password",
	"theme":    "theme",
	"font":     "font",
	"whoami":   "whoami",
	"status":   "status",
	"help":     "help",
	"?":        "help",
	"quit":     "quit",
	"exit":     "quit",
}

// Parse splits a line into a command. Arguments are separated by spaces;
// double quotes group words ("Ada Lovelace"). An empty line returns a
// zero Command and no error.
func Parse(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, nil
	}

	word, rest, _ := strings.Cut(line, " ")
	name, ok := aliases[strings.ToLower(word)]
	if !ok {
		return Command{}, fmt.Errorf("unknown command %q, type help", word)
	}

	rest = strings.TrimSpace(rest)
	args, err := split(rest)
	if err != nil {
		if !freeText[name] {
			return Command{}, err
		}
		// Free text may contain a lone quote (5'11"); only Rest is used.
		args = strings.Fields(rest)
	}
	return Command{Name: name, Args: args, Rest: rest}, nil
}

// freeText commands read Rest instead of Args.
var freeText = map[string]bool{
	"check":   true,
	"history": true,
	"name":    true,
}

func split(s string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	for _, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
			started = true
		case unicode.IsSpace(r) && !inQuote:
			if started {
				args = append(args, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errUnclosedQuote
	}
	if started {
		args = append(args, cur.String())
	}
	return args, nil
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
