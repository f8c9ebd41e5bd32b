package speech

import (
	"testing"

	"github.com/lfmorais/expede/internal/domain"
)

func TestBuildAnnouncement(t *testing.T) {
	tests := []struct {
		name  string
		order domain.Order
		cfg   Config
		want  string
	}{
		{
			"number only",
			domain.Order{Number: "101"},
			Config{Template: TemplateNumberOnly},
			"Order 101, ready.",
		},
		{
			"name ready",
			domain.Order{Number: "101", Nickname: "Ana"},
			Config{Template: TemplateNameReady},
			"Ana, your order is ready.",
		},
		{
			"name ready without nickname falls back",
			domain.Order{Number: "101"},
			Config{Template: TemplateNameReady},
			"Order 101, ready.",
		},
		{
			"order ready",
			domain.Order{Number: "101"},
			Config{Template: TemplateOrderReady},
			"Order 101 is ready for pickup.",
		},
		{
			"name and order",
			domain.Order{Number: "101", Nickname: "Ana"},
			Config{Template: TemplateNameOrderReady},
			"Ana, order 101 is ready.",
		},
		{
			"custom verbatim, no substitution",
			domain.Order{Number: "101", Nickname: "Ana"},
			Config{Template: TemplateCustom, CustomTemplate: "Pickup at counter {number}"},
			"Pickup at counter {number}",
		},
		{
			"custom empty falls back",
			domain.Order{Number: "101"},
			Config{Template: TemplateCustom},
			"Order 101, ready.",
		},
		{
			"platform prefix overrides template",
			domain.Order{Number: "IF-123"},
			Config{Template: TemplateNameReady},
			"iFood order 1 2 3 is ready.",
		},
		{
			"explicit platform overrides template",
			domain.Order{Number: "987", Platform: "Rappi", Nickname: "Ana"},
			Config{Template: TemplateNameOrderReady},
			"Rappi order 987 is ready.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildAnnouncement(tt.order, tt.cfg)
			if got != tt.want {
				t.Fatalf("BuildAnnouncement() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		number, platform, want string
	}{
		{"IF-123", "", "iFood"},
		{"RA-9", "", "Rappi"},
		{"IF123", "", ""}, // prefix must include the dash
		{"123", "", ""},
		{"123", "Uber Eats", "Uber Eats"},
	}

	for _, tt := range tests {
		got := detectPlatform(domain.Order{Number: tt.number, Platform: tt.platform})
		if got != tt.want {
			t.Fatalf("detectPlatform(%q, %q) = %q, want %q", tt.number, tt.platform, got, tt.want)
		}
	}
}
