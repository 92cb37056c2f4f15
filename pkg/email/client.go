package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"time"
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="margin:0;padding:0;font-family:Arial,sans-serif;background:#f9f9f9;">
  <div style="max-width:600px;margin:32px auto;background:#fff;border-radius:8px;padding:32px;">
    <h2 style="color:#2a7ae2;margin:0 0 24px;">{{.Title}}</h2>
    <div style="font-size:16px;color:#333;">{{.Body}}</div>
    {{if .Link}}<p style="text-align:center;margin:24px 0;"><a href="{{.Link}}" style="background:#2a7ae2;color:#fff;padding:10px 20px;border-radius:4px;text-decoration:none;">Open course</a></p>{{end}}
    <div style="margin-top:32px;text-align:center;color:#aaa;font-size:12px;">&copy; {{.Year}}</div>
  </div>
</body>
</html>`))

// Client sends transactional mail over SMTP.
type Client struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	frontendURL string
	send        func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewClient creates a new email client.
func NewClient(host, port, username, password, from, frontendURL string) *Client {
	return &Client{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		from:        from,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		send:        smtp.SendMail,
	}
}

// Message is one outgoing email.
type Message struct {
	To      string
	Subject string
	Title   string
	Body    string
	Link    string
}

// Send renders msg into the shared layout and delivers it.
func (c *Client) Send(msg Message) error {
	html, err := render(msg)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}

	var auth smtp.Auth
	if c.username != "" {
		auth = smtp.PlainAuth("", c.username, c.password, c.host)
	}
	addr := fmt.Sprintf("%s:%s", c.host, c.port)
	if err := c.send(addr, auth, c.from, []string{msg.To}, c.build(msg, html)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendNotification mails a generic learner notification.
func (c *Client) SendNotification(to, title, message string) error {
	return c.Send(Message{To: to, Subject: title, Title: title, Body: message})
}

// SendCourseCompleted congratulates a learner who finished every lesson of a course.
func (c *Client) SendCourseCompleted(to, learnerName, courseTitle, courseID string) error {
	name := learnerName
	if name == "" {
		name = "there"
	}
	return c.Send(Message{
		To:      to,
		Subject: fmt.Sprintf("You completed %s", courseTitle),
		Title:   "Course completed",
		Body:    fmt.Sprintf("Hi %s, you have completed every lesson of %s. Well done!", name, courseTitle),
		Link:    c.courseLink(courseID),
	})
}

func (c *Client) courseLink(courseID string) string {
	if c.frontendURL == "" || courseID == "" {
		return ""
	}
	return c.frontendURL + "/courses/" + courseID
}

func render(msg Message) (string, error) {
	var buf bytes.Buffer
	err := layout.Execute(&buf, map[string]interface{}{
		"Title": msg.Title,
		"Body":  msg.Body,
		"Link":  msg.Link,
		"Year":  time.Now().Year(),
	})
	return buf.String(), err
}

func (c *Client) build(msg Message, html string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", c.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n\r\n")

	b.WriteString("--boundary42\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(msg.Body + "\r\n")
	if msg.Link != "" {
		b.WriteString(msg.Link + "\r\n")
	}

	b.WriteString("--boundary42\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html + "\r\n")
	b.WriteString("--boundary42--\r\n")
	return []byte(b.String())
}
