package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"

	"gopkg.in/gomail.v2"

	"github.com/ignatzorin/mebel-backend/internal/models"
)

// Notifier сообщает менеджеру о новой заявке.
type Notifier interface {
	NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error
}

// MailConfig — параметры SMTP.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

// MailNotifier отправляет письма через SMTP.
type MailNotifier struct {
	cfg    MailConfig
	dialer *gomail.Dialer
}

func NewMailNotifier(cfg MailConfig) *MailNotifier {
	return &MailNotifier{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
	}
}

func (n *MailNotifier) NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := n.dialer.DialAndSend(buildServiceRequestMessage(n.cfg.From, n.cfg.To, req)); err != nil {
		return fmt.Errorf("mailer: не удалось отправить письмо: %w", err)
	}
	return nil
}

func buildServiceRequestMessage(from, to string, req *models.ServiceRequest) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Новая заявка: "+req.ServiceTypeLabel())

	var b strings.Builder
	b.WriteString("<h2>Новая заявка с сайта</h2><ul>")
	row := func(label, value string) {
		fmt.Fprintf(&b, "<li><b>%s:</b> %s</li>", label, html.EscapeString(value))
	}
	row("Услуга", req.ServiceTypeLabel())
	row("Имя", req.Name)
	row("Телефон", req.Phone)
	if req.Message != nil {
		row("Сообщение", *req.Message)
	}
	if req.SourceURL != nil {
		row("Страница", *req.SourceURL)
	}
	row("Создана", req.CreatedAt.Format("02.01.2006 15:04"))
	b.WriteString("</ul>")

	m.SetBody("text/html", b.String())
	return m
}

// MultiNotifier рассылает уведомление всем каналам; ошибки каналов объединяются.
type MultiNotifier []Notifier

func (m MultiNotifier) NotifyServiceRequest(ctx context.Context, req *models.ServiceRequest) error {
	var errs []error
	for _, n := range m {
		if err := n.NotifyServiceRequest(ctx, req); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
