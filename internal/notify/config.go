package notify

import "github.com/maruko-pickup/api/internal/config"

// SenderFromConfig builds the SMTP sender from the mail and shop settings.
func SenderFromConfig(cfg *config.Config) *SMTPSender {
	return NewSMTPSender(SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}, Shop{
		Name:    cfg.ShopName,
		Phone:   cfg.ShopPhone,
		Address: cfg.ShopAddress,
		Hours:   cfg.ShopHours,
		Closed:  cfg.ShopClosed,
	})
}

// PolicyFromConfig is DefaultRetryPolicy with the configured attempt limit.
func PolicyFromConfig(cfg *config.Config) RetryPolicy {
	p := DefaultRetryPolicy
	p.MaxAttempts = cfg.NotifyMaxAttempts
	return p
}
