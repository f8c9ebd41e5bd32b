package command

import (
	"context"
	"testing"

	"github.com/lfmorais/expede/internal/domain"
	"github.com/lfmorais/expede/internal/logger"
)

func TestParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.CommandType
		wantPayload string
	}{
		// Expedite — bare numbers, formatted numbers
		{"101", domain.CommandExpedite, "101"},
		{"IF-123", domain.CommandExpedite, "IF-123"},
		{"#450", domain.CommandExpedite, "#450"},
		{"  77  ", domain.CommandExpedite, "77"},

		// Recall — '-' prefix
		{"-101", domain.CommandRecall, "101"},
		{"- 55", domain.CommandRecall, "55"},
		{"-IF-9", domain.CommandRecall, "IF-9"},

		// Advance — '+' prefix or 'ready'
		{"+101", domain.CommandAdvance, "101"},
		{"+ 8", domain.CommandAdvance, "8"},
		{"ready 42", domain.CommandAdvance, "42"},
		{"READY 42", domain.CommandAdvance, "42"},

		// Exit sentinel — never an order number
		{"000", domain.CommandExit, ""},

		// Simulation / reset
		{"gen 10", domain.CommandGenerate, "10"},
		{"generate 3", domain.CommandGenerate, "3"},
		{"clear", domain.CommandClear, ""},

		// Help
		{"help", domain.CommandHelp, ""},
		{"?", domain.CommandHelp, ""},

		// Invalid
		{"", domain.CommandInvalid, ""},
		{"hello", domain.CommandInvalid, "hello"},
		{"gen", domain.CommandInvalid, "gen"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd.Type != tt.wantType {
				t.Fatalf("Parse(%q) type = %s, want %s", tt.input, cmd.Type, tt.wantType)
			}
			if cmd.Payload != tt.wantPayload {
				t.Fatalf("Parse(%q) payload = %q, want %q", tt.input, cmd.Payload, tt.wantPayload)
			}
		})
	}
}

func TestExitSentinelBeatsExpedite(t *testing.T) {
	// "000" is all digits but must never be parsed as an order number.
	log := logger.New(logger.LevelOff, nil)
	parser := NewParser(log)

	cmd, err := parser.Parse(context.Background(), "000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cmd.Type != domain.CommandExit {
		t.Fatalf("expected exit command, got %s", cmd.Type)
	}

	// "0000" is a regular number though.
	cmd, _ = parser.Parse(context.Background(), "0000")
	if cmd.Type != domain.CommandExpedite {
		t.Fatalf("expected expedite for 0000, got %s", cmd.Type)
	}
}
