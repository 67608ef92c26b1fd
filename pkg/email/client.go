package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"time"
)

// Client handles email sending operations over SMTP.
type Client struct {
	host     string
	port     string
	username string
	password string
	from     string
}

// NewClient creates a new email client.
func NewClient(host, port, username, password, from string) *Client {
	return &Client{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
	}
}

// Options represents a single outgoing email.
type Options struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Send sends an email with HTML content wrapped in the branded template.
func (c *Client) Send(opts Options) error {
	wrappedHTML := c.wrapHTMLTemplate(opts.HTML)
	message := c.buildMessage(opts.To, opts.Subject, wrappedHTML, opts.Text)

	auth := smtp.PlainAuth("", c.username, c.password, c.host)
	addr := fmt.Sprintf("%s:%s", c.host, c.port)

	if err := smtp.SendMail(addr, auth, c.from, []string{opts.To}, []byte(message)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendCourseEnrollment notifies a student about a successful enrollment.
func (c *Client) SendCourseEnrollment(to, studentName, courseName string) error {
	html := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>You have successfully been enrolled in the course <b>%s</b>.</p>
		<p>Head over to your dashboard to start learning.</p>
	`, template.HTMLEscapeString(studentName), template.HTMLEscapeString(courseName))

	return c.Send(Options{
		To:      to,
		Subject: fmt.Sprintf("Successfully Enrolled into %s", courseName),
		HTML:    html,
		Text:    fmt.Sprintf("Dear %s, you have been enrolled in %s.", studentName, courseName),
	})
}

// SendPaymentSuccess confirms a received payment. The amount is in major
// currency units.
func (c *Client) SendPaymentSuccess(to, studentName string, amount float64, orderID, paymentID string) error {
	html := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>We have received your payment of <b>&#8377;%.2f</b>.</p>
		<p>Order ID: %s<br>Payment ID: %s</p>
	`, template.HTMLEscapeString(studentName), amount,
		template.HTMLEscapeString(orderID), template.HTMLEscapeString(paymentID))

	return c.Send(Options{
		To:      to,
		Subject: "Payment Received",
		HTML:    html,
		Text:    fmt.Sprintf("Dear %s, we received your payment of %.2f (order %s, payment %s).", studentName, amount, orderID, paymentID),
	})
}

func (c *Client) wrapHTMLTemplate(content string) string {
	tmpl := `
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background: #f9f9f9;">
    <div style="padding: 32px;">
        <div style="max-width: 600px; margin: auto; background: #fff; border-radius: 8px; box-shadow: 0 2px 8px #eee; padding: 32px;">
            <div style="text-align: center; margin-bottom: 24px;">
                <h2 style="color: #ffd60a; margin: 0;">StudyHub</h2>
            </div>
            <div style="font-size: 16px; color: #333;">
                {{.Content}}
            </div>
            <div style="margin-top: 32px; text-align: center; color: #aaa; font-size: 12px;">
                &copy; {{.Year}} StudyHub. All rights reserved.
            </div>
        </div>
    </div>
</body>
</html>
`

	t := template.Must(template.New("email").Parse(tmpl))
	var buf bytes.Buffer
	data := map[string]interface{}{
		"Content": template.HTML(content),
		"Year":    time.Now().Year(),
	}

	if err := t.Execute(&buf, data); err != nil {
		return content
	}

	return buf.String()
}

func (c *Client) buildMessage(to, subject, html, text string) string {
	from := c.from
	if from == "" {
		from = "noreply@studyhub.example.com"
	}

	msg := fmt.Sprintf("From: %s\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n"
	msg += "\r\n"

	if text != "" {
		msg += "--boundary42\r\n"
		msg += "Content-Type: text/plain; charset=\"UTF-8\"\r\n"
		msg += "\r\n"
		msg += text + "\r\n"
	}

	msg += "--boundary42\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += "\r\n"
	msg += html + "\r\n"
	msg += "--boundary42--\r\n"

	return msg
}
