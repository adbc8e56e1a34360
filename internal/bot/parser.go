package bot

import "strings"

// CommandParser splits "/cmd arg arg" messages. Commands are
// case-sensitive and only the "/" prefix is recognized; a trailing
// "@botname" on the command (group-chat style) is stripped.
type CommandParser struct{}

func NewCommandParser() *CommandParser {
	return &CommandParser{}
}

// ParseCommand returns the command name without the slash, its arguments,
// and whether the text was a command at all.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", nil, false
	}

	parts := strings.Fields(text[1:])
	if len(parts) == 0 || parts[0] == "" {
		return "", nil, false
	}

	command := parts[0]
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	if command == "" {
		return "", nil, false
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}
	return command, args, true
}
