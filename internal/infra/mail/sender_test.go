package mail_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xavierca1/rede-consultoras/internal/entity"
	"github.com/xavierca1/rede-consultoras/internal/infra/mail"
)

func leadDetails() *entity.LeadDetails {
	return &entity.LeadDetails{
		Lead: entity.Lead{ID: "lead-123", Notes: "Atende bairro <Centro>"},
		Consultant: entity.Consultant{
			Name:  "Ana Paula Souza",
			Phone: "11999999999",
			Email: "ana@example.com",
			Address: entity.Address{
				Street:   "Rua das Flores",
				Number:   "100",
				District: "Centro",
				City:     "São Paulo",
				State:    "SP",
				ZipCode:  "01310100",
			},
		},
	}
}

// TestRenderLeadHandoff - dados da consultora aparecem no corpo
func TestRenderLeadHandoff(t *testing.T) {
	body, err := mail.RenderLeadHandoff("Carla", leadDetails())
	require.NoError(t, err)

	assert.Contains(t, body, "Olá, Carla!")
	assert.Contains(t, body, "Ana Paula Souza")
	assert.Contains(t, body, "11999999999")
	assert.Contains(t, body, "São Paulo/SP")
	assert.Contains(t, body, "Rua das Flores, 100")
	assert.Contains(t, body, "lead-123")
	// html/template escapa o conteúdo digitado pelo admin
	assert.Contains(t, body, "&lt;Centro&gt;")
	assert.NotContains(t, body, "<Centro>")
}

// TestRenderLeadHandoffWithoutPromoterName - contato literal sem nome
func TestRenderLeadHandoffWithoutPromoterName(t *testing.T) {
	d := leadDetails()
	d.Lead.Notes = ""

	body, err := mail.RenderLeadHandoff("", d)
	require.NoError(t, err)
	assert.Contains(t, body, "Olá!")
	assert.NotContains(t, body, "Observações")
}

func TestNewEmailSenderDefaultsFrom(t *testing.T) {
	s := mail.NewEmailSender("smtp.example.com", 587, "bot@example.com", "secret", "")
	assert.Equal(t, "bot@example.com", s.From)
}
