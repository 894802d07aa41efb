// Package email provides email sending capabilities via SMTP.
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
)

// Config holds SMTP configuration
type Config struct {
	Host        string
	Port        string
	Username    string
	Password    string
	From        string
	FromName    string
	StudioInbox string
}

// Service provides email sending
type Service struct {
	config Config
	server string
	auth   smtp.Auth
}

// NewService creates a new email service
func NewService(config Config) *Service {
	auth := smtp.PlainAuth("", config.Username, config.Password, config.Host)

	return &Service{
		config: config,
		server: config.Host + ":" + config.Port,
		auth:   auth,
	}
}

// IsConfigured returns true if email is configured
func (s *Service) IsConfigured() bool {
	return s.config.Host != "" && s.config.Port != "" && s.config.From != ""
}

// SendEmail sends a plain text email
func (s *Service) SendEmail(to []string, subject, body string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	msg := []byte(fmt.Sprintf(
		"To: %s\r\n"+
			"From: %s\r\n"+
			"Subject: %s\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		strings.Join(to, ", "),
		from,
		subject,
		body,
	))

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg)
}

// SendHTMLEmail sends an HTML email
func (s *Service) SendHTMLEmail(to []string, subject, htmlBody string) error {
	if !s.IsConfigured() {
		return fmt.Errorf("email not configured")
	}

	from := s.config.From
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.From)
	}

	// Simple multipart message
	boundary := "boundary-hearth"

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=\"%s\"\r\n", boundary)
	fmt.Fprintf(&msg, "\r\n")

	// Plain text part (fallback)
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/plain; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "Please view this email in an HTML-capable email client.\r\n")
	fmt.Fprintf(&msg, "\r\n")

	// HTML part
	fmt.Fprintf(&msg, "--%s\r\n", boundary)
	fmt.Fprintf(&msg, "Content-Type: text/html; charset=UTF-8\r\n")
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "%s\r\n", htmlBody)
	fmt.Fprintf(&msg, "\r\n")
	fmt.Fprintf(&msg, "--%s--\r\n", boundary)

	return smtp.SendMail(s.server, s.auth, s.config.From, to, msg.Bytes())
}

// SubmissionData holds data for the new-submission notification
type SubmissionData struct {
	AppName      string
	Title        string
	City         string
	PropertyType string
	TotalM2      float64
	BudgetMin    float64
	BudgetMax    float64
	Warnings     []string
}

type PriceRevealData struct {
	AppName   string
	SlotsLeft int64
}

// SendSubmissionNotification notifies the studio inbox about a new brief
func (s *Service) SendSubmissionNotification(data SubmissionData) error {
	if s.config.StudioInbox == "" {
		return fmt.Errorf("studio inbox not configured")
	}
	data.AppName = "Hearth"

	subject := fmt.Sprintf("New brief: %s", data.Title)
	html, err := renderTemplate(submissionEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render submission template: %w", err)
	}

	return s.SendHTMLEmail([]string{s.config.StudioInbox}, subject, html)
}

// SendPriceReveal sends the package pricing to a prospect who unlocked it
func (s *Service) SendPriceReveal(to string, slotsLeft int64) error {
	data := PriceRevealData{
		AppName:   "Hearth",
		SlotsLeft: slotsLeft,
	}

	subject := "Your Hearth concept pricing"
	html, err := renderTemplate(priceRevealEmailTemplate, data)
	if err != nil {
		return fmt.Errorf("render price reveal template: %w", err)
	}

	return s.SendHTMLEmail([]string{to}, subject, html)
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

const submissionEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>New brief submitted</title>
    <style>
        body { font-family: Georgia, serif; line-height: 1.6; color: #2b2b2b; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #2b2b2b; padding-bottom: 10px; margin-bottom: 20px; }
        table { border-collapse: collapse; width: 100%; margin: 20px 0; }
        th, td { border: 1px solid #ddd; padding: 8px 12px; text-align: left; }
        th { background: #f3efe9; }
        .warning { background: #fdf3e4; padding: 12px; border-left: 3px solid #c98a2d; margin: 8px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>New brief: {{.Title}}</h2>

    <table>
        <tr><th>Property</th><td>{{.PropertyType}}{{if .City}} in {{.City}}{{end}}</td></tr>
        <tr><th>Area</th><td>{{.TotalM2}} m&sup2;</td></tr>
        <tr><th>Budget</th><td>&euro;{{.BudgetMin}} &ndash; &euro;{{.BudgetMax}}</td></tr>
    </table>

    {{if .Warnings}}
    <p>Acknowledged tensions in this brief:</p>
    {{range .Warnings}}<div class="warning">{{.}}</div>{{end}}
    {{end}}

    <div class="footer">
        <p>Open the admin dashboard to review the full brief and export the PDF.</p>
    </div>
</body>
</html>`

const priceRevealEmailTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Your {{.AppName}} concept pricing</title>
    <style>
        body { font-family: Georgia, serif; line-height: 1.6; color: #2b2b2b; max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { border-bottom: 2px solid #2b2b2b; padding-bottom: 10px; margin-bottom: 20px; }
        .price { font-size: 28px; margin: 20px 0; }
        .slots { background: #fdf3e4; padding: 12px; border-radius: 4px; margin: 20px 0; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; }
    </style>
</head>
<body>
    <div class="header">
        <h1>{{.AppName}}</h1>
    </div>

    <h2>Thank you for your interest</h2>

    <p>Our concept package covers a full design direction for your home:
       style direction, palette, lighting plan and a per-room furniture
       layout, delivered as a single design brief.</p>

    <p class="price">From &euro;490 per project</p>

    {{if .SlotsLeft}}
    <div class="slots">
        <strong>{{.SlotsLeft}}</strong> intake slots left this month.
    </div>
    {{end}}

    <p>Start your intake on the site whenever you are ready. Your answers
       are saved automatically, so you can return at any point.</p>

    <div class="footer">
        <p>You received this email because you asked for our pricing. We will
           not email you again unless you start an intake.</p>
    </div>
</body>
</html>`
