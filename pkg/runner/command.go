package runner

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
)

// An external command as an argument vector.
type Command []string

// Split a command line such as `python3 -m pip install` into a [Command], honoring shell quoting.
func ParseCommand(line string) (Command, error) {
	args, err := shellquote.Split(line)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command '%s': %w", line, err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("empty command")
	}

	return Command(args), nil
}

// Get a copy of the command with `args` appended.
func (c Command) With(args ...string) Command {
	out := make(Command, 0, len(c)+len(args))
	out = append(out, c...)
	return append(out, args...)
}

// Get the command as a single shell-quoted script line.
func (c Command) Script() string {
	return shellquote.Join(c...)
}

// Get the printable representation of a [Command].
func (c Command) String() string {
	return strings.TrimSpace(c.Script())
}
