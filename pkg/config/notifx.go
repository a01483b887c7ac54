package config

// NotifxConfig configures the email transport used by the resume tool.
type NotifxConfig struct {
	Provider    string `envconfig:"PROVIDER" default:"console"`
	FromAddress string `envconfig:"FROM_ADDRESS" default:"noreply@example.com"`
	FromName    string `envconfig:"FROM_NAME" default:"Mosaic"`
	AWSRegion   string `envconfig:"AWS_REGION" default:"us-east-1"`
	SMTPHost    string `envconfig:"SMTP_HOST" default:"smtp.gmail.com"`
	SMTPPort    int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser    string `envconfig:"SMTP_USER"`
	SMTPPass    string `envconfig:"SMTP_PASS"`
}
