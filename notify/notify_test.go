package notify

import (
	"os"
	"testing"

	"batiplan/domain"

	. "github.com/onsi/gomega"
)

func TestPublishAlertWithoutBroker(t *testing.T) {
	RegisterTestingT(t)

	t.Run("publishing is a no-op when no broker is configured", func(t *testing.T) {
		brokerMutex.Lock()
		activeBroker = nil
		brokerMutex.Unlock()

		Expect(PublishAlert(&domain.Alert{ID: 1, Severity: domain.SeverityCritique})).To(BeNil())
	})

	t.Run("bootstrap without AMQP_URL leaves publishing disabled", func(t *testing.T) {
		os.Unsetenv("AMQP_URL")
		Expect(Bootstrap()).To(BeNil())

		brokerMutex.Lock()
		broker := activeBroker
		brokerMutex.Unlock()
		Expect(broker).To(BeNil())
	})
}

func TestParseMailConfigFromEnv(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should fail when required settings are missing", func(t *testing.T) {
		os.Unsetenv("SMTP_HOST")
		_, err := ParseMailConfigFromEnv()
		Expect(err).ToNot(BeNil())
	})

	t.Run("should read the mail worker settings", func(t *testing.T) {
		os.Setenv("SMTP_HOST", "smtp.example.com")
		os.Setenv("SMTP_USERNAME", "batiplan")
		os.Setenv("SMTP_PASSWORD", "secret")
		os.Setenv("ALERT_MAIL_FROM", "alertes@example.com")
		os.Setenv("ALERT_MAIL_TO", "chef@example.com,conducteur@example.com")
		defer func() {
			for _, key := range []string{"SMTP_HOST", "SMTP_USERNAME", "SMTP_PASSWORD",
				"ALERT_MAIL_FROM", "ALERT_MAIL_TO", "SMTP_PORT"} {
				os.Unsetenv(key)
			}
		}()

		cfg, err := ParseMailConfigFromEnv()
		Expect(err).To(BeNil())
		Expect(cfg.SMTPHost).To(Equal("smtp.example.com"))
		Expect(cfg.SMTPPort).To(Equal(465))
		Expect(cfg.From).To(Equal("alertes@example.com"))
		Expect(cfg.Recipients).To(Equal([]string{"chef@example.com", "conducteur@example.com"}))
	})
}
