// Farescope - Flight Search and Travel Analytics Backend
// Copyright 2026 Farescope Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/farescope/farescope

// Package mailer delivers email campaigns over SMTP. A failing
// recipient never aborts the batch; each outcome is recorded
// individually and the campaign counters reflect the final tally.
package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/farescope/farescope/internal/config"
	"github.com/farescope/farescope/internal/logging"
	"github.com/farescope/farescope/internal/models"
)

// CampaignStore is the subset of the database the mailer needs.
type CampaignStore interface {
	UpdateCampaignStatus(ctx context.Context, id, status string, sent, failed int) error
}

// Mailer sends campaigns through a configured SMTP relay.
type Mailer struct {
	cfg         *config.SMTPConfig
	store       CampaignStore
	dialTimeout time.Duration
}

// New builds a mailer. store may be nil, in which case campaign status
// updates are skipped (used in tests).
func New(cfg *config.SMTPConfig, store CampaignStore) *Mailer {
	return &Mailer{
		cfg:         cfg,
		store:       store,
		dialTimeout: 30 * time.Second,
	}
}

// SendCampaign delivers the campaign to every recipient and returns the
// per-recipient outcomes. The campaign row moves to "sending" before
// the first delivery attempt and to "sent" after the last, with the
// success and failure tallies persisted alongside.
func (m *Mailer) SendCampaign(ctx context.Context, campaign *models.EmailCampaign) ([]models.RecipientResult, error) {
	if m.store != nil {
		if err := m.store.UpdateCampaignStatus(ctx, campaign.ID, models.CampaignStatusSending, 0, 0); err != nil {
			return nil, fmt.Errorf("marking campaign sending: %w", err)
		}
	}

	results := make([]models.RecipientResult, 0, len(campaign.Recipients))
	sent, failed := 0, 0
	for _, recipient := range campaign.Recipients {
		result := models.RecipientResult{Recipient: recipient}
		if err := m.send(ctx, recipient, campaign.Subject, campaign.Body); err != nil {
			result.Error = err.Error()
			failed++
			logging.Warn().
				Str("campaign_id", campaign.ID).
				Str("recipient", recipient).
				Err(err).
				Msg("Campaign delivery failed for recipient")
		} else {
			result.Sent = true
			sent++
		}
		results = append(results, result)
	}

	if m.store != nil {
		if err := m.store.UpdateCampaignStatus(ctx, campaign.ID, models.CampaignStatusSent, sent, failed); err != nil {
			return results, fmt.Errorf("marking campaign sent: %w", err)
		}
	}

	logging.Info().
		Str("campaign_id", campaign.ID).
		Int("sent", sent).
		Int("failed", failed).
		Msg("Campaign send complete")
	return results, nil
}

// Send delivers a single message, used for transactional mail outside
// of campaigns.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	return m.send(ctx, to, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, body string) error {
	msg := m.buildMessage(to, subject, body)
	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)

	dialer := &net.Dialer{Timeout: m.dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server: %w", err)
	}
	defer func() { _ = conn.Close() }()

	client, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if m.cfg.StartTLS {
		tlsConfig := &tls.Config{
			ServerName: m.cfg.Host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConfig); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}

	if m.cfg.Username != "" && m.cfg.Password != "" {
		auth := smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(m.cfg.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}

	writer, err := client.Data()
	if err != nil {
		return fmt.Errorf("starting message body: %w", err)
	}
	if _, err := writer.Write([]byte(msg)); err != nil {
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("closing message body: %w", err)
	}

	// QUIT failure after DATA is accepted does not undo the send.
	_ = client.Quit()
	return nil
}

func (m *Mailer) buildMessage(to, subject, body string) string {
	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: Farescope <%s>\r\n", m.cfg.From))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", to))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	if strings.Contains(body, "<html") || strings.Contains(body, "<p>") {
		msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	} else {
		msg.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return msg.String()
}
