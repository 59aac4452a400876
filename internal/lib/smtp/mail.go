// Package smtp подключается к почтовому серверу и отправляет карточки взаимодействий.
package smtp

import (
	"fmt"
	"io"
	"strings"
)

// Client подмножество методов *smtp.Client, нужное для отправки письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface выдает подключенных клиентов.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}

// Message текстовое письмо в UTF-8.
type Message struct {
	To      []string
	Subject string
	Body    string
}

// Bytes собирает письмо с заголовками от имени from.
func (m Message) Bytes(from string) []byte {
	return []byte(strings.Join([]string{
		"From: " + from,
		"To: " + strings.Join(m.To, ", "),
		"Subject: " + m.Subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		m.Body,
	}, "\r\n"))
}

// Send проводит одну SMTP-сессию: MAIL, RCPT для каждого адресата, DATA, QUIT.
func Send(t TransportInterface, m Message) error {
	const op = "smtp.Send"
	if len(m.To) == 0 {
		return fmt.Errorf("%s: no recipients", op)
	}
	from := t.GetSMTPUser()
	payload := m.Bytes(from)

	client, err := t.Connect()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = client.Close()
	}()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("%s: mail from: %w", op, err)
	}
	for _, addr := range m.To {
		if err = client.Rcpt(addr); err != nil {
			return fmt.Errorf("%s: rcpt %s: %w", op, addr, err)
		}
	}
	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("%s: data: %w", op, err)
	}
	if _, err = wc.Write(payload); err != nil {
		_ = wc.Close()
		return fmt.Errorf("%s: write: %w", op, err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("%s: close data: %w", op, err)
	}
	if err = client.Quit(); err != nil {
		return fmt.Errorf("%s: quit: %w", op, err)
	}
	return nil
}
