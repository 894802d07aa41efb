package email

import (
	"strings"
	"testing"
)

func TestServiceIsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		expected bool
	}{
		{
			name:     "empty config",
			config:   Config{},
			expected: false,
		},
		{
			name: "missing host",
			config: Config{
				Port: "587",
				From: "studio@hearth.example",
			},
			expected: false,
		},
		{
			name: "missing port",
			config: Config{
				Host: "smtp.example.com",
				From: "studio@hearth.example",
			},
			expected: false,
		},
		{
			name: "missing from",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
			},
			expected: false,
		},
		{
			name: "fully configured",
			config: Config{
				Host: "smtp.example.com",
				Port: "587",
				From: "studio@hearth.example",
			},
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.config)
			if svc.IsConfigured() != tt.expected {
				t.Errorf("IsConfigured() = %v, want %v", svc.IsConfigured(), tt.expected)
			}
		})
	}
}

func TestRenderSubmissionTemplate(t *testing.T) {
	data := SubmissionData{
		AppName:      "Hearth",
		Title:        "Apartment in Vilnius",
		City:         "Vilnius",
		PropertyType: "apartment",
		TotalM2:      62,
		BudgetMin:    5000,
		BudgetMax:    15000,
		Warnings:     []string{"Premium furniture rarely fits this budget."},
	}

	html, err := renderTemplate(submissionEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "Apartment in Vilnius") {
		t.Error("template should contain the brief title")
	}
	if !strings.Contains(html, "62") {
		t.Error("template should contain the total area")
	}
	if !strings.Contains(html, "Premium furniture rarely fits this budget.") {
		t.Error("template should list acknowledged warnings")
	}
}

func TestRenderSubmissionTemplateWithoutWarnings(t *testing.T) {
	html, err := renderTemplate(submissionEmailTemplate, SubmissionData{
		AppName: "Hearth", Title: "House in Kaunas", PropertyType: "house", TotalM2: 140,
	})
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}
	if strings.Contains(html, "Acknowledged tensions") {
		t.Error("warnings block should be omitted when empty")
	}
}

func TestRenderPriceRevealTemplate(t *testing.T) {
	data := PriceRevealData{
		AppName:   "Hearth",
		SlotsLeft: 7,
	}

	html, err := renderTemplate(priceRevealEmailTemplate, data)
	if err != nil {
		t.Fatalf("renderTemplate failed: %v", err)
	}

	if !strings.Contains(html, "Hearth") {
		t.Error("template should contain app name")
	}
	if !strings.Contains(html, "490") {
		t.Error("template should contain the package price")
	}
	if !strings.Contains(html, "7") {
		t.Error("template should contain the remaining slot count")
	}
}

func TestSendSubmissionRequiresStudioInbox(t *testing.T) {
	svc := NewService(Config{Host: "smtp.example.com", Port: "587", From: "studio@hearth.example"})
	err := svc.SendSubmissionNotification(SubmissionData{Title: "x"})
	if err == nil || !strings.Contains(err.Error(), "studio inbox") {
		t.Fatalf("expected studio inbox error, got %v", err)
	}
}
