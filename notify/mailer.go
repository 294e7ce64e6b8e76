package notify

import (
	"encoding/json"
	"fmt"

	"batiplan/domain"

	"github.com/caarlos0/env/v11"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"github.com/wneessen/go-mail"
)

// MailConfig is read from the environment of the mail worker process.
type MailConfig struct {
	SMTPHost     string   `env:"SMTP_HOST,required"`
	SMTPPort     int      `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername string   `env:"SMTP_USERNAME,required"`
	SMTPPassword string   `env:"SMTP_PASSWORD,required"`
	From         string   `env:"ALERT_MAIL_FROM,required"`
	Recipients   []string `env:"ALERT_MAIL_TO,required"`
}

func ParseMailConfigFromEnv() (MailConfig, error) {
	cfg := MailConfig{}
	err := env.Parse(&cfg)
	return cfg, err
}

// AlertMailer consumes the alert queue and mails critical alerts to the
// site managers. It runs as its own process, see cmd/mailworker.
type AlertMailer struct {
	cfg    MailConfig
	client *mail.Client
}

func NewAlertMailer(cfg MailConfig) (*AlertMailer, error) {
	client, err := mail.NewClient(cfg.SMTPHost,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.SMTPPort),
		mail.WithUsername(cfg.SMTPUsername),
		mail.WithPassword(cfg.SMTPPassword),
	)
	if err != nil {
		return nil, err
	}
	return &AlertMailer{cfg: cfg, client: client}, nil
}

// Run blocks consuming the alert queue until the channel is closed.
func (w *AlertMailer) Run(ch *amqp.Channel) error {
	if _, err := ch.QueueDeclare(AlertQueueName, true, false, false, false, nil); err != nil {
		return err
	}
	deliveries, err := ch.Consume(AlertQueueName, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for delivery := range deliveries {
		if err := w.handle(delivery.Body); err != nil {
			logrus.WithError(err).Error("failed to mail alert")
			_ = delivery.Nack(false, false)
			continue
		}
		_ = delivery.Ack(false)
	}
	return nil
}

func (w *AlertMailer) handle(body []byte) error {
	alert := domain.Alert{}
	if err := json.Unmarshal(body, &alert); err != nil {
		return err
	}
	if alert.Severity != domain.SeverityCritique {
		return nil
	}
	return w.SendAlertMail(&alert)
}

func (w *AlertMailer) SendAlertMail(alert *domain.Alert) error {
	m := mail.NewMsg()
	if err := m.From(w.cfg.From); err != nil {
		return err
	}
	if err := m.To(w.cfg.Recipients...); err != nil {
		return err
	}
	m.Subject(fmt.Sprintf("[BatiPlan] Alerte critique : %s", alert.Type))
	m.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Une alerte critique a été émise le %s.\n\nType : %s\n\n%s\n",
		alert.CreateTime.Format("02/01/2006 15:04"), alert.Type, alert.Message))
	return w.client.DialAndSend(m)
}
