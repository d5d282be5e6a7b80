package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

// Константы валидации
const (
	MinNameLength         = 2
	MaxNameLength         = 100
	MinPhoneLength        = 10
	MaxPhoneLength        = 20
	MaxMessageLength      = 2000
	MaxExternalLinkLength = 500
)

var phoneRegex = regexp.MustCompile(`^[0-9+()\-\s]+$`)

// Errors собирает ошибки по полям формы.
type Errors map[string][]string

// Add добавляет ошибку поля, nil игнорируется.
func (e Errors) Add(field string, err error) {
	if err != nil {
		e[field] = append(e[field], err.Error())
	}
}

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateName проверяет имя клиента.
func ValidateName(name string) error {
	if err := ValidateNonEmpty("имя", name); err != nil {
		return err
	}
	return ValidateLength("имя", strings.TrimSpace(name), MinNameLength, MaxNameLength)
}

// ValidatePhone допускает цифры, пробелы и символы + ( ) -.
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return fmt.Errorf("телефон обязателен")
	}
	if err := ValidateLength("телефон", phone, MinPhoneLength, MaxPhoneLength); err != nil {
		return err
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("телефон содержит недопустимые символы")
	}
	return nil
}

// ValidateServiceType проверяет код услуги.
func ValidateServiceType(serviceType string) error {
	if _, ok := models.ServiceTypeLabels[serviceType]; !ok {
		return fmt.Errorf("неизвестный тип услуги")
	}
	return nil
}

// ValidateServiceRequestStatus проверяет статус заявки.
func ValidateServiceRequestStatus(status string) error {
	if _, ok := models.ValidServiceRequestStatuses[status]; !ok {
		return fmt.Errorf("недопустимый статус")
	}
	return nil
}

// ValidateMessageContent проверяет необязательный текст сообщения.
func ValidateMessageContent(content *string) error {
	if content == nil {
		return nil
	}
	return ValidateLength("сообщение", strings.TrimSpace(*content), 0, MaxMessageLength)
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link *string) error {
	if link == nil || *link == "" {
		return nil
	}
	linkStr := strings.TrimSpace(*link)

	if err := ValidateLength("ссылка", linkStr, 0, MaxExternalLinkLength); err != nil {
		return err
	}

	parsedURL, err := url.Parse(linkStr)
	if err != nil {
		return fmt.Errorf("некорректный формат URL")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("ссылка должна начинаться с http:// или https://")
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("ссылка должна содержать доменное имя")
	}
	return nil
}
