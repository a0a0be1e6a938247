package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"

	"github.com/xavierca1/rede-consultoras/internal/entity"
)

//go:embed templates/*.html
var templatesFS embed.FS

var handoffTemplate = template.Must(template.ParseFS(templatesFS, "templates/lead_handoff.html"))

func NewEmailSender(host string, port int, user, password, from string) *EmailSender {
	if from == "" {
		from = user
	}
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
	}
}

func RenderLeadHandoff(promoterName string, d *entity.LeadDetails) (string, error) {
	c := d.Consultant
	data := LeadHandoffEmailData{
		PromoterName: promoterName,
		LeadID:       d.Lead.ID,
		Name:         c.Name,
		Phone:        c.Phone,
		Email:        c.Email,
		City:         c.Address.City,
		State:        c.Address.State,
		Street:       c.Address.Street,
		Number:       c.Address.Number,
		Complement:   c.Address.Complement,
		District:     c.Address.District,
		ZipCode:      c.Address.ZipCode,
		Notes:        d.Lead.Notes,
	}

	var body bytes.Buffer
	if err := handoffTemplate.Execute(&body, data); err != nil {
		return "", fmt.Errorf("erro ao processar template: %w", err)
	}
	return body.String(), nil
}

func (s *EmailSender) SendLeadHandoff(to, promoterName string, d *entity.LeadDetails) error {
	body, err := RenderLeadHandoff(promoterName, d)
	if err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("Nova consultora aprovada: %s", d.Consultant.Name))
	m.SetBody("text/html", body)

	dialer := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)
	if err := dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("erro ao enviar email SMTP: %w", err)
	}

	return nil
}
