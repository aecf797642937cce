package services

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"log/slog"
	"strings"
	texttemplate "text/template"

	"expensetracker/internal/apperr"
)

// ResetNotifier delivers password reset links. Delivery is best effort: the
// result is reported, never returned as an error.
type ResetNotifier interface {
	SendPasswordResetLink(ctx context.Context, to string, name *string, link, locale string) bool
}

const (
	LocaleEnglish = "en"
	LocaleSpanish = "es"
)

// NormalizeLocale maps an Accept-Language value to a supported locale.
func NormalizeLocale(acceptLanguage string) string {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(acceptLanguage)), "es") {
		return LocaleSpanish
	}
	return LocaleEnglish
}

type resetCopy struct {
	Subject         string
	Title           string
	Greeting        string
	GreetingWithFmt string
	Message         string
	Button          string
	LinkNote        string
	Expiry          string
	Ignore          string
	Footer          string
}

var resetCopies = map[string]resetCopy{
	LocaleEnglish: {
		Subject:         "Reset Your Password - Expense Tracker",
		Title:           "Reset Your Password",
		Greeting:        "Hello,",
		GreetingWithFmt: "Hello %s,",
		Message:         "We received a request to reset the password for your Expense Tracker account. Use the button below to choose a new password.",
		Button:          "Reset Password",
		LinkNote:        "If the button does not work, paste this link into your browser:",
		Expiry:          "This link expires in 1 hour.",
		Ignore:          "If you did not ask for a password reset you can ignore this email. Your password stays the same.",
		Footer:          "Expense Tracker",
	},
	LocaleSpanish: {
		Subject:         "Restablecer Contraseña - Rastreador de Gastos",
		Title:           "Restablecer Tu Contraseña",
		Greeting:        "Hola,",
		GreetingWithFmt: "Hola %s,",
		Message:         "Recibimos una solicitud para restablecer la contraseña de tu cuenta de Rastreador de Gastos. Usa el botón de abajo para elegir una nueva contraseña.",
		Button:          "Restablecer Contraseña",
		LinkNote:        "Si el botón no funciona, pega este enlace en tu navegador:",
		Expiry:          "Este enlace expira en 1 hora.",
		Ignore:          "Si no solicitaste restablecer tu contraseña puedes ignorar este correo. Tu contraseña no cambia.",
		Footer:          "Rastreador de Gastos",
	},
}

type resetView struct {
	resetCopy
	Lang       string
	Salutation string
	Link       string
}

var resetHTML = htmltemplate.Must(htmltemplate.New("reset.html").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f8fafc; padding: 32px;">
  <div style="max-width: 480px; margin: 0 auto; background: #ffffff; border-radius: 12px; padding: 32px;">
    <h1 style="font-size: 22px; color: #1e293b;">{{.Title}}</h1>
    <p>{{.Salutation}}</p>
    <p>{{.Message}}</p>
    <p style="text-align: center;">
      <a href="{{.Link}}" style="display: inline-block; padding: 12px 28px; background: #10b981; color: #ffffff; text-decoration: none; border-radius: 8px;">{{.Button}}</a>
    </p>
    <p style="font-size: 13px; color: #64748b;">{{.LinkNote}}<br><a href="{{.Link}}">{{.Link}}</a></p>
    <p style="font-size: 13px; background: #fef3c7; padding: 12px; border-radius: 8px;">{{.Expiry}}</p>
    <p style="font-size: 13px; color: #64748b;">{{.Ignore}}</p>
    <p style="font-size: 12px; color: #94a3b8; text-align: center;">{{.Footer}}</p>
  </div>
</body>
</html>
`))

var resetText = texttemplate.Must(texttemplate.New("reset.txt").Parse(`{{.Title}}

{{.Salutation}}

{{.Message}}

{{.Button}}: {{.Link}}

{{.Expiry}}

{{.Ignore}}

---
{{.Footer}}
`))

// RenderResetEmail builds the localized reset message. Unknown locales fall
// back to English.
func RenderResetEmail(from, to string, name *string, link, locale string) (EmailMessage, error) {
	c, ok := resetCopies[locale]
	if !ok {
		locale = LocaleEnglish
		c = resetCopies[LocaleEnglish]
	}
	view := resetView{resetCopy: c, Lang: locale, Salutation: c.Greeting, Link: link}
	if name != nil && strings.TrimSpace(*name) != "" {
		view.Salutation = strings.Replace(c.GreetingWithFmt, "%s", strings.TrimSpace(*name), 1)
	}

	var htmlBuf, textBuf bytes.Buffer
	if err := resetHTML.Execute(&htmlBuf, view); err != nil {
		return EmailMessage{}, apperr.Internal(err, "render reset email html")
	}
	if err := resetText.Execute(&textBuf, view); err != nil {
		return EmailMessage{}, apperr.Internal(err, "render reset email text")
	}
	return EmailMessage{
		From:    from,
		To:      to,
		Subject: c.Subject,
		Text:    textBuf.String(),
		HTML:    htmlBuf.String(),
	}, nil
}

// EmailResetNotifier renders reset emails and hands them to an EmailSender.
type EmailResetNotifier struct {
	sender EmailSender
	from   string
	logger *slog.Logger
}

func NewEmailResetNotifier(sender EmailSender, from string, logger *slog.Logger) *EmailResetNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmailResetNotifier{sender: sender, from: from, logger: logger}
}

func (n *EmailResetNotifier) SendPasswordResetLink(ctx context.Context, to string, name *string, link, locale string) bool {
	msg, err := RenderResetEmail(n.from, to, name, link, locale)
	if err != nil {
		apperr.LogError(n.logger, "render password reset email", err)
		return false
	}
	if err := n.sender.Send(ctx, msg); err != nil {
		n.logger.ErrorContext(ctx, "send password reset email", "to", to, "error", err)
		return false
	}
	n.logger.InfoContext(ctx, "password reset email sent", "to", to, "locale", locale)
	return true
}
