// Package command turns expedition-field input into tagged commands.
// Parsing happens before any order logic runs: the exit sentinel and
// the recall prefix are resolved here, never inside order matching.
package command

import (
	"context"
	"regexp"
	"strings"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

// Compile-time interface check.
var _ domain.CommandParser = (*Parser)(nil)

// exitSentinel is intercepted at the input boundary and never reaches
// the board.
const exitSentinel = "000"

// Parser matches input-field text to commands using fixed patterns.
type Parser struct {
	log *logger.Logger
}

// NewParser creates the expedition-field parser.
func NewParser(log *logger.Logger) *Parser {
	return &Parser{log: log}
}

var (
	recallRe   = regexp.MustCompile(`^-\s*(\S+)$`)
	advanceRe  = regexp.MustCompile(`(?i)^(?:\+\s*|ready\s+)(\S+)$`)
	generateRe = regexp.MustCompile(`(?i)^gen(?:erate)?\s+(\d+)$`)
	clearRe    = regexp.MustCompile(`(?i)^clear$`)
	helpRe     = regexp.MustCompile(`(?i)^(help|h|\?)$`)
)

// Parse converts input into a command.
func (p *Parser) Parse(ctx context.Context, input string) (*domain.Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Command{Type: domain.CommandInvalid}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	if trimmed == exitSentinel {
		return &domain.Command{Type: domain.CommandExit}, nil
	}

	if m := recallRe.FindStringSubmatch(trimmed); m != nil {
		return &domain.Command{Type: domain.CommandRecall, Payload: m[1]}, nil
	}

	if m := advanceRe.FindStringSubmatch(trimmed); m != nil {
		return &domain.Command{Type: domain.CommandAdvance, Payload: m[1]}, nil
	}

	if m := generateRe.FindStringSubmatch(trimmed); m != nil {
		return &domain.Command{Type: domain.CommandGenerate, Payload: m[1]}, nil
	}

	if clearRe.MatchString(trimmed) {
		return &domain.Command{Type: domain.CommandClear}, nil
	}

	if helpRe.MatchString(trimmed) {
		return &domain.Command{Type: domain.CommandHelp}, nil
	}

	// Anything else with at least one digit is treated as an order
	// number to expedite; exact-vs-normalized matching is the board's
	// concern, not the parser's.
	if hasDigit(trimmed) {
		return &domain.Command{Type: domain.CommandExpedite, Payload: trimmed}, nil
	}

	p.log.Debug("no match, returning invalid command")
	return &domain.Command{Type: domain.CommandInvalid, Payload: trimmed}, nil
}

func hasDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
