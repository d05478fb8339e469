package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"
)

// IST is the timezone the business reads submissions in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// Inquiry is the visitor input a notification is rendered from.
type Inquiry struct {
	Name       string
	Email      string
	Phone      string
	Service    string
	SubService string
	Message    string
}

// Notification is a rendered inquiry email.
type Notification struct {
	Subject  string
	HTMLBody string
	TextBody string
}

// inquiryEmailData holds the data for inquiry notification emails
type inquiryEmailData struct {
	Name         string
	Email        string
	Phone        string
	Service      string
	SubService   string
	MessageLines []string
	Message      string
	SubmittedAt  string
	CompanyName  string
}

// inquiryHTMLTemplate is the HTML template for inquiry notifications.
// html/template escapes every interpolated value; message lines are joined with <br>.
const inquiryHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>New Contact Form Submission</title>
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f8f9fa; }
        .container { background-color: #ffffff; border-radius: 10px; padding: 30px; }
        .header { background: #228082; color: white; padding: 20px; border-radius: 8px; text-align: center; margin-bottom: 30px; }
        .field { margin-bottom: 20px; padding: 15px; background-color: #f8f9fa; border-radius: 8px; border-left: 4px solid #228082; }
        .field-label { font-weight: bold; color: #228082; margin-bottom: 5px; display: block; }
        .message-field { background-color: #fff; border: 2px solid #e9ecef; border-radius: 8px; padding: 20px; margin-top: 10px; }
        .timestamp { background-color: #e3f2fd; padding: 10px; border-radius: 5px; font-size: 12px; color: #1976d2; text-align: center; margin-top: 20px; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 2px solid #e9ecef; text-align: center; color: #6c757d; font-size: 14px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>New Contact Form Submission</h1>
            <p>{{.CompanyName}}</p>
        </div>
        <div class="field">
            <span class="field-label">Full Name:</span>
            <div class="field-value">{{.Name}}</div>
        </div>
        <div class="field">
            <span class="field-label">Email Address:</span>
            <div class="field-value"><a href="mailto:{{.Email}}">{{.Email}}</a></div>
        </div>
        <div class="field">
            <span class="field-label">Phone Number:</span>
            <div class="field-value"><a href="tel:{{.Phone}}">{{.Phone}}</a></div>
        </div>
        <div class="field">
            <span class="field-label">Service Interested In:</span>
            <div class="field-value">{{.Service}}</div>
        </div>
        {{- if .SubService}}
        <div class="field">
            <span class="field-label">Sub-Service:</span>
            <div class="field-value">{{.SubService}}</div>
        </div>
        {{- end}}
        <div class="field">
            <span class="field-label">Message:</span>
            <div class="message-field">{{range $i, $line := .MessageLines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</div>
        </div>
        <div class="timestamp">Submitted on: {{.SubmittedAt}} (IST)</div>
        <div class="footer">
            <p><strong>{{.CompanyName}}</strong></p>
            <p>To reply, answer this email or write to: {{.Email}}</p>
        </div>
    </div>
</body>
</html>`

const inquiryTextTemplate = `New Contact Form Submission from {{.CompanyName}} Website

Contact Details:
================
Name: {{.Name}}
Email: {{.Email}}
Phone: {{.Phone}}

Service Information:
===================
Main Service: {{.Service}}
Sub-Service: {{if .SubService}}{{.SubService}}{{else}}Not specified{{end}}

Message:
========
{{.Message}}

---
Submitted on: {{.SubmittedAt}} (IST)
`

// Renderer turns inquiries into notification emails.
type Renderer struct {
	companyName string
	html        *htmltemplate.Template
	text        *texttemplate.Template
}

// NewRenderer parses the notification templates once at startup.
func NewRenderer(companyName string) (*Renderer, error) {
	h, err := htmltemplate.New("inquiry_html").Parse(inquiryHTMLTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}
	t, err := texttemplate.New("inquiry_text").Parse(inquiryTextTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	return &Renderer{companyName: companyName, html: h, text: t}, nil
}

// Render builds the subject and both bodies for an inquiry submitted at the given time.
func (r *Renderer) Render(p Inquiry, submittedAt time.Time) (*Notification, error) {
	message := strings.ReplaceAll(p.Message, "\r\n", "\n")
	data := inquiryEmailData{
		Name:         p.Name,
		Email:        p.Email,
		Phone:        p.Phone,
		Service:      p.Service,
		SubService:   p.SubService,
		MessageLines: strings.Split(message, "\n"),
		Message:      message,
		SubmittedAt:  submittedAt.In(IST).Format("2 January 2006, 03:04:05 PM"),
		CompanyName:  r.companyName,
	}

	var htmlBody bytes.Buffer
	if err := r.html.Execute(&htmlBody, data); err != nil {
		return nil, fmt.Errorf("failed to execute html template: %w", err)
	}

	var textBody bytes.Buffer
	if err := r.text.Execute(&textBody, data); err != nil {
		return nil, fmt.Errorf("failed to execute text template: %w", err)
	}

	return &Notification{
		Subject:  fmt.Sprintf("New Contact Form Submission from %s", headerSafe(p.Name)),
		HTMLBody: htmlBody.String(),
		TextBody: textBody.String(),
	}, nil
}

// headerSafe strips line breaks so visitor input cannot inject extra mail headers.
func headerSafe(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
