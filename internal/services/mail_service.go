package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// Mailer sends transactional email. Callers treat every send as best-effort.
type Mailer interface {
	SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error
	SendOTP(ctx context.Context, to, code string, ttl time.Duration) error
}

type BookingConfirmation struct {
	To          string
	UserName    string
	ServiceName string
	Date        time.Time
	TimeSlot    string
	Amount      string
	Currency    string
	BookingID   string
	PaymentID   string
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	UseSSL   bool // implicit TLS (465); STARTTLS otherwise
	AppName  string
}

type SMTPMailer struct {
	cfg     SMTPConfig
	htmlTpl *template.Template
	dialer  *net.Dialer
}

func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:     cfg,
		htmlTpl: template.Must(template.New("mail").Parse(mailHTMLTemplate)),
		dialer:  &net.Dialer{Timeout: 10 * time.Second},
	}
}

type mailData struct {
	AppName string
	Title   string
	Lines   []string
	Year    int
}

const mailHTMLTemplate = `<!doctype html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="font-family:-apple-system,Segoe UI,Roboto,Helvetica,Arial,sans-serif;background:#f8fafc;margin:0;padding:32px">
  <div style="max-width:560px;margin:0 auto;background:#fff;border-radius:12px;padding:32px">
    <div style="font-weight:700;color:#0f766e;text-transform:uppercase">{{.AppName}}</div>
    <h1 style="font-size:22px;color:#0f172a">{{.Title}}</h1>
    {{range .Lines}}<p style="color:#475569;line-height:1.6">{{.}}</p>{{end}}
    <p style="color:#94a3b8;font-size:12px">&copy; {{.Year}} {{.AppName}}</p>
  </div>
</body>
</html>`

func (m *SMTPMailer) SendBookingConfirmation(ctx context.Context, msg BookingConfirmation) error {
	subject := "Your booking is confirmed"
	lines := []string{
		fmt.Sprintf("Hi %s, your booking for %s is confirmed.", displayName(msg.UserName), msg.ServiceName),
		fmt.Sprintf("Date: %s, time: %s", msg.Date.Format("Mon, 02 Jan 2006"), msg.TimeSlot),
		fmt.Sprintf("Amount paid: %s %s (payment %s)", msg.Amount, msg.Currency, msg.PaymentID),
		"Booking reference: " + msg.BookingID,
	}
	return m.sendLines(ctx, msg.To, subject, lines)
}

func (m *SMTPMailer) SendOTP(ctx context.Context, to, code string, ttl time.Duration) error {
	lines := []string{
		"Your sign-in code is " + code + ".",
		fmt.Sprintf("It expires in %d minutes. If you did not request it, ignore this email.", int(ttl.Minutes())),
	}
	return m.sendLines(ctx, to, "Your sign-in code", lines)
}

func (m *SMTPMailer) sendLines(ctx context.Context, to, subject string, lines []string) error {
	data := mailData{AppName: m.cfg.AppName, Title: subject, Lines: lines, Year: time.Now().Year()}
	var html bytes.Buffer
	if err := m.htmlTpl.Execute(&html, data); err != nil {
		return fmt.Errorf("render mail: %w", err)
	}
	text := subject + "\n\n" + strings.Join(lines, "\n") + "\n"
	return m.send(ctx, to, subject, html.String(), text)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	boundary := fmt.Sprintf("alt_%d", time.Now().UnixNano())

	var msg bytes.Buffer
	write := func(format string, a ...any) { _, _ = fmt.Fprintf(&msg, format, a...) }
	write("From: %s\r\n", m.fromHeader())
	write("To: %s\r\n", to)
	write("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	write("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	write("MIME-Version: 1.0\r\n")
	write("Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)
	write("--%s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n%s\r\n", boundary, textBody)
	write("--%s\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s\r\n", boundary, htmlBody)
	write("--%s--\r\n", boundary)

	addr := net.JoinHostPort(m.cfg.Host, fmt.Sprint(m.cfg.Port))
	tlsCfg := &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12}

	var conn net.Conn
	var err error
	if m.cfg.UseSSL {
		conn, err = (&tls.Dialer{NetDialer: m.dialer, Config: tlsCfg}).DialContext(ctx, "tcp", addr)
	} else {
		conn, err = m.dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer c.Quit()

	if !m.cfg.UseSSL {
		if ok, _ := c.Extension("STARTTLS"); !ok {
			return fmt.Errorf("smtp server %s does not support STARTTLS", m.cfg.Host)
		}
		if err := c.StartTLS(tlsCfg); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(m.cfg.From); err != nil {
		return err
	}
	if err := c.Rcpt(to); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return err
	}
	return w.Close()
}

func (m *SMTPMailer) fromHeader() string {
	name := strings.TrimSpace(m.cfg.FromName)
	if name == "" {
		return m.cfg.From
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", name), m.cfg.From)
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}
	return name
}
