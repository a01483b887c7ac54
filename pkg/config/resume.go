package config

// ResumeConfig locates the resume attachment. Dir is the single base
// directory (or key prefix for s3) every lookup is resolved against.
type ResumeConfig struct {
	Storage        string `envconfig:"STORAGE" default:"local"`
	Dir            string `envconfig:"DIR" default:"./documents"`
	File           string `envconfig:"FILE" default:"resume.pdf"`
	AttachmentName string `envconfig:"ATTACHMENT_NAME" default:"Resume.pdf"`
	Owner          string `envconfig:"OWNER" default:"the candidate"`
	S3Bucket       string `envconfig:"S3_BUCKET"`
	AWSRegion      string `envconfig:"AWS_REGION" default:"us-east-1"`
}

// RedisConfig configures the optional knowledge index cache.
type RedisConfig struct {
	URL string `envconfig:"URL"`
}
