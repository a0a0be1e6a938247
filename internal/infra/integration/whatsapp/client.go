package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL = "https://graph.facebook.com/v18.0"
	MinDigits      = 10
)

var (
	ErrNotConfigured = errors.New("whatsapp não configurado")
	ErrInvalidNumber = errors.New("número de destino inválido")
)

var nonDigit = regexp.MustCompile(`\D`)

type Client struct {
	http    *resty.Client
	phoneID string
	enabled bool
}

func NewClient(baseURL, accessToken, phoneID string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetAuthToken(accessToken).
			SetHeader("Content-Type", "application/json").
			SetTimeout(15 * time.Second),
		phoneID: phoneID,
		enabled: accessToken != "" && phoneID != "",
	}
}

// SendText manda uma mensagem de texto livre e devolve o id gerado pela API.
// Números com menos de 10 dígitos são recusados sem chamar a API.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	number := nonDigit.ReplaceAllString(to, "")
	if len(number) < MinDigits {
		return "", fmt.Errorf("%w: %q", ErrInvalidNumber, to)
	}
	if !c.enabled {
		log.Println("⚠️ WhatsApp: ACCESS_TOKEN ou PHONE_ID não configurados")
		return "", ErrNotConfigured
	}

	var (
		result SendMessageResponse
		apiErr ErrorEnvelope
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(textMessage{
			MessagingProduct: "whatsapp",
			RecipientType:    "individual",
			To:               number,
			Type:             "text",
			Text:             textBody{Body: body},
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post(fmt.Sprintf("/%s/messages", c.phoneID))
	if err != nil {
		log.Printf("❌ WhatsApp: Erro ao enviar mensagem: %v", err)
		return "", err
	}

	if resp.IsError() {
		if apiErr.Error != nil {
			log.Printf("❌ WhatsApp: Erro na API: %s (Code: %d)", apiErr.Error.Message, apiErr.Error.Code)
			return "", fmt.Errorf("whatsapp: %s", apiErr.Error.Message)
		}
		log.Printf("❌ WhatsApp: API retornou status %d: %s", resp.StatusCode(), resp.String())
		return "", fmt.Errorf("whatsapp api error: %d", resp.StatusCode())
	}

	if len(result.Messages) == 0 || result.Messages[0].ID == "" {
		return "", errors.New("whatsapp: resposta sem id de mensagem")
	}

	log.Printf("✅ WhatsApp: Mensagem enviada para %s", number)
	return result.Messages[0].ID, nil
}
