package bot

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/edgard/purgebot/internal/duration"
)

// CommandKind distinguishes the purge command forms.
type CommandKind int

const (
	KindSearch CommandKind = iota // quoted text, optional mention, optional age
	KindAbort                     // cancel every operation in this channel
	KindLog                       // show the channel's recent purge history
)

// Command is a parsed operator command.
type Command struct {
	Kind CommandKind

	SearchText string
	AuthorID   string        // empty when no author filter was given
	MaxAge     time.Duration // zero when no age limit was given
	MaxAgeText string        // display form of the age limit
}

// User input errors, reported back verbatim before any operation is created.
var (
	ErrMissingSearchText = errors.New("search text must be given in double quotes")
	ErrEmptySearchText   = errors.New("search text must not be empty")
	ErrTooManyMentions   = errors.New("at most one author mention is allowed")
	ErrBadArgument       = errors.New("unrecognized argument")
)

var mentionPattern = regexp.MustCompile(`^<@!?(\d+)>$`)

// ParseCommand parses the text following the command prefix. Valid forms:
//
//	abort
//	log
//	"search text" [@user] [age]
//
// where age is a token accepted by duration.Parse. Mention and age may
// appear in either order after the quoted text.
func ParseCommand(input string) (*Command, error) {
	input = strings.TrimSpace(input)

	switch strings.ToLower(input) {
	case "abort":
		return &Command{Kind: KindAbort}, nil
	case "log":
		return &Command{Kind: KindLog}, nil
	}

	if !strings.HasPrefix(input, `"`) {
		return nil, ErrMissingSearchText
	}
	rest := input[1:]
	closing := strings.Index(rest, `"`)
	if closing < 0 {
		return nil, ErrMissingSearchText
	}
	text := rest[:closing]
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptySearchText
	}

	cmd := &Command{Kind: KindSearch, SearchText: text, MaxAgeText: duration.NoLimit}

	for _, token := range strings.Fields(rest[closing+1:]) {
		if m := mentionPattern.FindStringSubmatch(token); m != nil {
			if cmd.AuthorID != "" {
				return nil, ErrTooManyMentions
			}
			cmd.AuthorID = m[1]
			continue
		}
		if d, ok := duration.Parse(token); ok {
			if cmd.MaxAge != 0 {
				return nil, fmt.Errorf("%w: duplicate age token %q", ErrBadArgument, token)
			}
			cmd.MaxAge = d
			cmd.MaxAgeText = duration.Format(d)
			continue
		}
		return nil, fmt.Errorf("%w: %q", ErrBadArgument, token)
	}

	return cmd, nil
}
