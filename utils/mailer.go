package utils

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"gopkg.in/gomail.v2"

	"familyconnect/config"
)

var verificationTemplate = template.Must(template.New("verification").Parse(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Verification Code</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
        .otp-code { font-size: 24px; font-weight: bold; color: #3498db; margin: 20px 0; text-align: center; }
        .footer { margin-top: 30px; font-size: 12px; color: #7f8c8d; text-align: center; }
    </style>
</head>
<body>
    <h4>Hello {{.Name}},</h4>
    <p>Your verification code is:</p>
    <div class="otp-code">{{.OTP}}</div>
    <p>This code expires in 10 minutes. Please don't share it with anyone.</p>
    <div class="footer">
        <p>If you didn't request this code, you can safely ignore this email.</p>
        <p>© {{.Year}} Family Connect</p>
    </div>
</body>
</html>`))

// SendVerificationEmail delivers the registration OTP over SMTP.
func SendVerificationEmail(to, name, otp string) error {
	var body bytes.Buffer
	err := verificationTemplate.Execute(&body, map[string]interface{}{
		"Name": name,
		"OTP":  otp,
		"Year": time.Now().Year(),
	})
	if err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", config.AppConfig.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Family Connect - Verification Code")
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.SMTPUsername,
		config.AppConfig.SMTPPassword,
	)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}
