package contact

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"mime"
	"mime/quotedprintable"
	"net"
	"net/mail"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// Format selects how the visitor's message is rendered into the email.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// sentLayout renders the submission time, e.g. "March 4, 2026, 9:05 am UTC".
const sentLayout = "January 2, 2006, 3:04 pm MST"

// Message is a composed notification email.
type Message struct {
	From    mail.Address
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Date    time.Time
	Mailer  string
}

// Bytes renders m as an RFC 5322 message with a quoted-printable HTML body.
func (m Message) Bytes() []byte {
	var b bytes.Buffer
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("MIME-Version", "1.0")
	header("Content-Type", "text/html; charset=UTF-8")
	header("Content-Transfer-Encoding", "quoted-printable")
	header("From", m.From.String())
	header("To", m.To)
	if m.ReplyTo != "" {
		header("Reply-To", m.ReplyTo)
	}
	header("Subject", mime.QEncoding.Encode("UTF-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	if m.Mailer != "" {
		header("X-Mailer", m.Mailer)
	}
	b.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&b)
	qp.Write([]byte(strings.ReplaceAll(m.HTML, "\n", "\r\n")))
	qp.Close()
	return b.Bytes()
}

// Composer turns validated fields into a Message.
type Composer struct {
	FromName string
	// FromDomain is the noreply sender domain. When empty the request host
	// is used.
	FromDomain string
	SiteName   string
	Format     Format
	Mailer     string

	md     goldmark.Markdown
	strict *bluemonday.Policy
	ugc    *bluemonday.Policy
}

// NewComposer returns a composer with the given sender identity.
func NewComposer(fromName, fromDomain, siteName string, format Format) *Composer {
	if format == "" {
		format = FormatText
	}
	return &Composer{
		FromName:   fromName,
		FromDomain: fromDomain,
		SiteName:   siteName,
		Format:     format,
		Mailer:     "nermi",
		md:         goldmark.New(),
		strict:     bluemonday.StrictPolicy(),
		ugc:        bluemonday.UGCPolicy(),
	}
}

type bodyData struct {
	Name     string
	Email    string
	Subject  string
	Sent     string
	Message  template.HTML
	SiteName string
}

// Compose builds the notification for f addressed to recipient. host is
// the request Host header, used for the sender domain when FromDomain is
// unset.
func (c *Composer) Compose(f Fields, recipient, host string, now time.Time) (Message, error) {
	body, err := c.renderMessage(f.Message)
	if err != nil {
		return Message{}, err
	}

	var buf bytes.Buffer
	err = bodyTemplate.Execute(&buf, bodyData{
		Name:     f.Name,
		Email:    f.Email,
		Subject:  f.Subject,
		Sent:     now.Format(sentLayout),
		Message:  body,
		SiteName: c.SiteName,
	})
	if err != nil {
		return Message{}, fmt.Errorf("rendering email body: %w", err)
	}

	return Message{
		From:    mail.Address{Name: c.headerText(c.FromName), Address: "noreply@" + c.senderDomain(host)},
		To:      recipient,
		ReplyTo: f.Email,
		Subject: fmt.Sprintf("[%s] Message from %s", c.headerText(f.Subject), c.headerText(f.Name)),
		HTML:    buf.String(),
		Date:    now,
		Mailer:  c.Mailer,
	}, nil
}

func (c *Composer) renderMessage(msg string) (template.HTML, error) {
	if c.Format == FormatMarkdown {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(msg), &buf); err != nil {
			return "", fmt.Errorf("rendering markdown: %w", err)
		}
		return template.HTML(c.ugc.SanitizeBytes(buf.Bytes())), nil
	}
	escaped := template.HTMLEscapeString(strings.ReplaceAll(msg, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br />\n")), nil
}

// headerText strips markup and line breaks so s is safe in a header.
func (c *Composer) headerText(s string) string {
	s = html.UnescapeString(c.strict.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func (c *Composer) senderDomain(host string) string {
	if c.FromDomain != "" {
		return c.FromDomain
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	if host == "" {
		return "localhost"
	}
	return host
}

var bodyTemplate = template.Must(template.New("email").Parse(`<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #007bff; color: white; padding: 20px; }
        .content { background-color: #f8f9fa; padding: 20px; margin: 20px 0; }
        .footer { background-color: #e7f3ff; padding: 15px; margin-top: 20px; }
        .label { font-weight: bold; color: #555; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h2>New Contact Form Submission</h2>
        </div>
        <div class="content">
            <p><span class="label">From:</span> {{.Name}}</p>
            <p><span class="label">Email:</span> <a href="mailto:{{.Email}}">{{.Email}}</a></p>
            <p><span class="label">Subject:</span> {{.Subject}}</p>
            <p><span class="label">Sent:</span> {{.Sent}}</p>
        </div>
        <div class="content">
            <p class="label">Message:</p>
            <div>{{.Message}}</div>
        </div>
        <div class="footer">
            <p><strong>Quick Reply:</strong> Simply hit 'Reply' to respond directly to {{.Name}} at {{.Email}}</p>
        </div>
        <div style="text-align: center; margin-top: 20px; padding-top: 20px; border-top: 1px solid #ddd;">
            <p style="color: #6c757d; font-size: 12px;">Sent from {{.SiteName}} website contact form</p>
        </div>
    </div>
</body>
</html>
`))
