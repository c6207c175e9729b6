package notifier

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/emersion/go-message/mail"
)

// ErrMissingCredentials is returned before any connection is attempted when
// the sender or password is not configured.
var ErrMissingCredentials = errors.New("mail credentials missing")

// Mailer delivers HTML reports over SMTP with STARTTLS.
type Mailer struct {
	Host     string
	Port     int
	Sender   string
	Password string
	Receiver string
	FromName string
	Timeout  time.Duration
}

// Message is one outbound report mail.
type Message struct {
	Subject string
	HTML    string
	Text    string
	Chart   []byte // attached as breadth.png when present
}

// Configured reports whether sender and password are both set.
func (m *Mailer) Configured() bool {
	return m.Sender != "" && m.Password != ""
}

func (m *Mailer) recipient() string {
	if m.Receiver != "" {
		return m.Receiver
	}
	return m.Sender
}

// Compose builds the RFC 5322 message: a multipart/alternative text+HTML body,
// with the chart attached when present.
func (m *Mailer) Compose(msg Message, now time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(now)
	h.SetAddressList("From", []*mail.Address{{Name: m.FromName, Address: m.Sender}})
	h.SetAddressList("To", []*mail.Address{{Address: m.recipient()}})
	h.SetSubject(msg.Subject)
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generate message id: %w", err)
	}

	var buf bytes.Buffer
	mw, err := mail.CreateWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create mail writer: %w", err)
	}

	tw, err := mw.CreateInline()
	if err != nil {
		return nil, fmt.Errorf("create inline writer: %w", err)
	}
	if err := writeInline(tw, "text/plain", msg.Text); err != nil {
		return nil, err
	}
	if err := writeInline(tw, "text/html", msg.HTML); err != nil {
		return nil, err
	}
	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("close inline writer: %w", err)
	}

	if len(msg.Chart) > 0 {
		var ah mail.AttachmentHeader
		ah.SetContentType("image/png", nil)
		ah.SetFilename("breadth.png")
		w, err := mw.CreateAttachment(ah)
		if err != nil {
			return nil, fmt.Errorf("create attachment: %w", err)
		}
		if _, err := w.Write(msg.Chart); err != nil {
			return nil, fmt.Errorf("write attachment: %w", err)
		}
		if err := w.Close(); err != nil {
			return nil, fmt.Errorf("close attachment: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close mail writer: %w", err)
	}
	return buf.Bytes(), nil
}

func writeInline(tw *mail.InlineWriter, contentType, body string) error {
	var ih mail.InlineHeader
	ih.SetContentType(contentType, map[string]string{"charset": "utf-8"})
	w, err := tw.CreatePart(ih)
	if err != nil {
		return fmt.Errorf("create %s part: %w", contentType, err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return fmt.Errorf("write %s part: %w", contentType, err)
	}
	return w.Close()
}

// Send composes and delivers msg. It is attempted once.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Configured() {
		return ErrMissingCredentials
	}
	raw, err := m.Compose(msg, time.Now())
	if err != nil {
		return err
	}

	timeout := m.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))
	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connect to SMTP server: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(timeout))
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("create SMTP client: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("start TLS: %w", err)
		}
	}
	if err := client.Auth(smtp.PlainAuth("", m.Sender, m.Password, m.Host)); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}
	if err := client.Mail(m.Sender); err != nil {
		return fmt.Errorf("set mail from: %w", err)
	}
	if err := client.Rcpt(m.recipient()); err != nil {
		return fmt.Errorf("set mail recipient: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("start data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}
	return client.Quit()
}
