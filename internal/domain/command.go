package domain

// CommandType classifies what the operator wants to do.
type CommandType int

const (
	CommandInvalid CommandType = iota
	CommandExpedite
	CommandRecall
	CommandAdvance // mark a production order ready
	CommandGenerate
	CommandClear
	CommandHelp
	CommandExit // the "000" sentinel, intercepted before order logic
)

// String returns a human-readable command type.
func (c CommandType) String() string {
	switch c {
	case CommandExpedite:
		return "expedite"
	case CommandRecall:
		return "recall"
	case CommandAdvance:
		return "advance"
	case CommandGenerate:
		return "generate"
	case CommandClear:
		return "clear"
	case CommandHelp:
		return "help"
	case CommandExit:
		return "exit"
	default:
		return "invalid"
	}
}

// Command represents a parsed input-field action.
type Command struct {
	Type    CommandType
	Payload string // order number for expedite/recall/advance, count for generate
}
