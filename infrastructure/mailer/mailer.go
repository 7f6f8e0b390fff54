package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/tablostudio/tablo-api/domain/services"
	"github.com/tablostudio/tablo-api/pkg/config"
	"github.com/tablostudio/tablo-api/pkg/logger"
)

// NewMailer returns the SMTP mailer, or the log-only mailer when delivery is
// disabled (local development, tests).
func NewMailer(cfg config.MailConfig) services.Mailer {
	if !cfg.Enabled {
		return &LogMailer{}
	}
	return &SMTPMailer{cfg: cfg}
}

// SMTPMailer delivers restore links over plain SMTP.
type SMTPMailer struct {
	cfg config.MailConfig
}

func (m *SMTPMailer) SendRestoreLink(ctx context.Context, to, guestName, restoreURL string) error {
	body := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: Tablo munkamenet helyreallitasa\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n"+
			"Kedves %s!\r\n\r\n"+
			"Az alabbi linkkel tudod helyreallitani a tablo munkamenetedet. A link egyszer hasznalhato.\r\n\r\n%s\r\n",
		m.cfg.From, to, guestName, restoreURL,
	)

	addr := m.cfg.Host + ":" + m.cfg.Port
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(body)); err != nil {
		logger.MailError("restore_link_send_failed", "Failed to send restore link", err, map[string]interface{}{"to": to})
		return err
	}

	logger.Mail("restore_link_sent", "Restore link sent", map[string]interface{}{"to": to})
	return nil
}

// LogMailer writes the restore link to the mail log instead of sending it.
type LogMailer struct{}

func (m *LogMailer) SendRestoreLink(ctx context.Context, to, guestName, restoreURL string) error {
	logger.Mail("restore_link_logged", "Mail delivery disabled, restore link logged", map[string]interface{}{
		"to":          to,
		"guest_name":  guestName,
		"restore_url": restoreURL,
	})
	return nil
}
