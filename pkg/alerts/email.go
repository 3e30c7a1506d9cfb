package alerts

import (
	"fmt"
	"net/smtp"
	"strings"

	"itemwatch/pkg/config"

	"github.com/jordan-wright/email"
)

// EmailNotifier sends HTML alerts over SMTP.
type EmailNotifier struct {
	cfg config.SMTPConfig
}

func NewEmailNotifier(cfg config.SMTPConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (n *EmailNotifier) SendPriceAlert(title, url string, current, previous, target, lowest float64) error {
	drop := previous - current
	percent := drop / previous * 100

	subject := fmt.Sprintf("Price Drop: %s", truncate(title, 50))

	var extra strings.Builder
	if target > 0 {
		fmt.Fprintf(&extra, "<p><strong>Your target price:</strong> ₹%.2f", target)
		if current <= target {
			extra.WriteString(" — REACHED!")
		}
		extra.WriteString("</p>")
	}
	if lowest > 0 {
		fmt.Fprintf(&extra, "<p><strong>All-time lowest:</strong> ₹%.2f</p>", lowest)
	}

	htmlBody := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #2e7d32;">Price Drop Alert!</h2>
	<div style="background: #f5f5f5; padding: 20px; border-radius: 8px;">
		<h3 style="margin-top: 0;">%s</h3>
		<p style="font-size: 24px; color: #2e7d32;">
			<strong>₹%.2f</strong>
			<span style="font-size: 16px; color: #666; text-decoration: line-through; margin-left: 10px;">₹%.2f</span>
		</p>
		<p style="color: #d32f2f;">↓ ₹%.2f (%.1f%% off)</p>
		%s
		<a href="%s" style="display: inline-block; background: #ff9800; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">View Product →</a>
	</div>
	<p style="color: #666; font-size: 12px;">Sent by itemwatch - your personal price tracker</p>
</body>
</html>`, title, current, previous, drop, percent, extra.String(), url)

	textBody := fmt.Sprintf(`Price Drop Alert!

%s

Current Price: ₹%.2f
Previous Price: ₹%.2f
Drop: ₹%.2f (%.1f%% off)

View: %s
`, title, current, previous, drop, percent, url)

	return n.send(subject, textBody, htmlBody)
}

func (n *EmailNotifier) SendBackInStockAlert(title, url string, price float64) error {
	subject := fmt.Sprintf("Back in Stock: %s", truncate(title, 50))

	htmlBody := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
	<h2 style="color: #1976d2;">Back in Stock!</h2>
	<div style="background: #f5f5f5; padding: 20px; border-radius: 8px;">
		<h3 style="margin-top: 0;">%s</h3>
		<p style="font-size: 24px; color: #1976d2;"><strong>₹%.2f</strong></p>
		<a href="%s" style="display: inline-block; background: #1976d2; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px;">Buy Now →</a>
	</div>
	<p style="color: #666; font-size: 12px;">Sent by itemwatch - your personal price tracker</p>
</body>
</html>`, title, price, url)

	textBody := fmt.Sprintf(`Back in Stock!

%s
Price: ₹%.2f

Buy Now: %s
`, title, price, url)

	return n.send(subject, textBody, htmlBody)
}

func (n *EmailNotifier) send(subject, textBody, htmlBody string) error {
	mail := email.NewEmail()
	mail.From = fmt.Sprintf("itemwatch <%s>", n.cfg.FromEmail)
	mail.To = []string{n.cfg.ToEmail}
	mail.Subject = subject
	mail.Text = []byte(textBody)
	mail.HTML = []byte(htmlBody)

	addr := fmt.Sprintf("%s:%d", n.cfg.Host, n.cfg.Port)
	err := mail.Send(addr, smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.Host))
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		// Local relays without auth are fine for a personal tracker.
		err = mail.Send(addr, nil)
	}
	return err
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
