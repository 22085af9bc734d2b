package utils

import (
	"algoritmia/config"
	"fmt"
	"net/smtp"
	"strings"
	"time"
)

// Generic Send Email
func SendEmail(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: Plataforma Algoritmia <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	err := smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
	if err != nil {
		fmt.Println("Error sending email:", err)
		return err
	}
	return nil
}

// HTML wrapper shared by every outgoing mail
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B4332; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B4332; line-height: 1.6; }
			.content h2 { color: #1B4332; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #40916C; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
			.info-box { background: #E8F5EE; padding: 15px; border-radius: 4px; border-left: 4px solid #40916C; margin: 20px 0; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>PLATAFORMA ALGORITMIA</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Plataforma Algoritmia. Todos los derechos reservados.
			</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// --- Triggers ---

// 1. Welcome / Signup
func SendWelcomeEmail(email, name string) {
	subject := "Bienvenido a Plataforma Algoritmia"
	body := fmt.Sprintf(`
		<p>Hola %s,</p>
		<p>Tu cuenta en <strong>Plataforma Algoritmia</strong> fue creada correctamente.</p>
		<p>Ya puedes ingresar y comenzar a practicar.</p>
	`, name)

	go SendEmail([]string{email}, subject, getEmailTemplate("Cuenta creada", body))
}

// 2. Reinforcement session assigned
func SendSessionAssignedEmail(email, name, tema, difficulty string, dueDate time.Time, link string) {
	subject := "Nueva sesión de refuerzo: " + tema
	body := fmt.Sprintf(`
		<p>Hola %s,</p>
		<p>Se te asignó una nueva sesión de refuerzo para el tema <strong>%s</strong> (dificultad: <strong>%s</strong>).</p>
		<div class="info-box">
			<strong>Fecha límite:</strong> %s
		</div>
		<p>Completa la sesión antes de la fecha límite para mejorar tu nivel.</p>
		<a href="%s" class="btn">Comenzar sesión</a>
	`, name, tema, difficulty, dueDate.Format("02/01/2006"), link)

	go SendEmail([]string{email}, subject, getEmailTemplate("Sesión de refuerzo asignada", body))
}
