package usecase

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	MinPhoneDigits = 10
	MaxBodyLength  = 4096
)

var nonDigit = regexp.MustCompile(`\D`)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NormalizePhone remove tudo que não for dígito.
func NormalizePhone(phone string) string {
	return nonDigit.ReplaceAllString(phone, "")
}

func ValidateRegisterConsultantInput(input RegisterConsultantInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	} else if len(input.Name) < 3 {
		errors = append(errors, ValidationError{"name", "must have at least 3 characters"})
	} else if len(input.Name) > 200 {
		errors = append(errors, ValidationError{"name", "must not exceed 200 characters"})
	}

	if input.CPF == "" {
		errors = append(errors, ValidationError{"cpf", "is required"})
	} else if !isValidCPF(input.CPF) {
		errors = append(errors, ValidationError{"cpf", "is invalid"})
	}

	if strings.TrimSpace(input.Phone) == "" {
		errors = append(errors, ValidationError{"phone", "is required"})
	} else if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}

	if strings.TrimSpace(input.Email) != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	if strings.TrimSpace(input.City) == "" {
		errors = append(errors, ValidationError{"city", "is required"})
	}
	if strings.TrimSpace(input.Street) == "" {
		errors = append(errors, ValidationError{"street", "is required"})
	}
	if strings.TrimSpace(input.Number) == "" {
		errors = append(errors, ValidationError{"number", "is required"})
	}
	if strings.TrimSpace(input.State) == "" {
		errors = append(errors, ValidationError{"state", "is required"})
	}
	if !isValidZipCode(input.ZipCode) {
		errors = append(errors, ValidationError{"zip_code", "must be a valid zip code (XXXXX-XXX)"})
	}

	return errors
}

func ValidateApproveLeadInput(input ApproveLeadInput) []ValidationError {
	var errors []ValidationError

	if !isValidUUID(input.LeadID) {
		errors = append(errors, ValidationError{"lead_id", "must be a valid id"})
	}
	if strings.TrimSpace(input.PromoterID) == "" {
		errors = append(errors, ValidationError{"promoter_id", "is required"})
	} else if !isValidUUID(input.PromoterID) {
		errors = append(errors, ValidationError{"promoter_id", "must be a valid id"})
	}

	return errors
}

func ValidateRejectLeadInput(input RejectLeadInput) []ValidationError {
	var errors []ValidationError

	if !isValidUUID(input.LeadID) {
		errors = append(errors, ValidationError{"lead_id", "must be a valid id"})
	}
	if strings.TrimSpace(input.Reason) == "" {
		errors = append(errors, ValidationError{"reason", "is required"})
	}
	if input.DebtAmount < 0 {
		errors = append(errors, ValidationError{"debt_amount", "must not be negative"})
	}
	if input.ConsultationDate != "" && !isValidDate(input.ConsultationDate) {
		errors = append(errors, ValidationError{"consultation_date", "must be a valid date (YYYY-MM-DD)"})
	}

	return errors
}

func ValidateCreateCampaignInput(input CreateCampaignInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	if strings.TrimSpace(input.Template) == "" {
		errors = append(errors, ValidationError{"message_template", "is required"})
	} else if len(input.Template) > MaxBodyLength {
		errors = append(errors, ValidationError{"message_template", "is too long"})
	}

	return errors
}

func ValidateContactIDs(ids []string) []ValidationError {
	if len(ids) == 0 {
		return []ValidationError{{"contact_ids", "must not be empty"}}
	}

	var errors []ValidationError
	for i, id := range ids {
		if !isValidUUID(id) {
			errors = append(errors, ValidationError{fmt.Sprintf("contact_ids[%d]", i), "must be a valid id"})
		}
	}
	return errors
}

func ValidateSendSingleInput(input SendSingleInput) []ValidationError {
	var errors []ValidationError

	if len(NormalizePhone(input.To)) < MinPhoneDigits {
		errors = append(errors, ValidationError{"to", fmt.Sprintf("must have at least %d digits", MinPhoneDigits)})
	}
	if strings.TrimSpace(input.Body) == "" {
		errors = append(errors, ValidationError{"body", "is required"})
	} else if len(input.Body) > MaxBodyLength {
		errors = append(errors, ValidationError{"body", "is too long"})
	}
	if input.CampaignID != "" && !isValidUUID(input.CampaignID) {
		errors = append(errors, ValidationError{"campaign_id", "must be a valid id"})
	}

	return errors
}

func ValidateCreatePromoterInput(input CreatePromoterInput) []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(input.Name) == "" {
		errors = append(errors, ValidationError{"name", "is required"})
	}
	if !isValidPhoneNumber(input.Phone) {
		errors = append(errors, ValidationError{"phone", "must be a valid phone number"})
	}
	if strings.TrimSpace(input.Email) != "" {
		if _, err := mail.ParseAddress(input.Email); err != nil {
			errors = append(errors, ValidationError{"email", "is invalid"})
		}
	}

	return errors
}

func isValidUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isValidCPF(cpf string) bool {
	cleaned := nonDigit.ReplaceAllString(cpf, "")

	if len(cleaned) != 11 {
		return false
	}

	allEqual := true
	for i := 1; i < len(cleaned); i++ {
		if cleaned[i] != cleaned[0] {
			allEqual = false
			break
		}
	}
	if allEqual {
		return false
	}

	return cpfDigit(cleaned[:9], 10) == int(cleaned[9]-'0') &&
		cpfDigit(cleaned[:10], 11) == int(cleaned[10]-'0')
}

func cpfDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}

func isValidPhoneNumber(phone string) bool {
	cleaned := NormalizePhone(phone)
	return len(cleaned) >= MinPhoneDigits && len(cleaned) <= 13
}

func isValidZipCode(zipcode string) bool {
	return len(NormalizePhone(zipcode)) == 8
}

func isValidDate(dateStr string) bool {
	_, err := parseDate(dateStr)
	return err == nil
}

func parseDate(dateStr string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", dateStr); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, dateStr)
}
