package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abraxas-365/mosaic/pkg/assistant"
	"github.com/Abraxas-365/mosaic/pkg/assistant/assistantopenai"
	"github.com/Abraxas-365/mosaic/pkg/assistant/assistanttest"
	"github.com/Abraxas-365/mosaic/pkg/chat"
	"github.com/Abraxas-365/mosaic/pkg/config"
	"github.com/Abraxas-365/mosaic/pkg/fsx"
	"github.com/Abraxas-365/mosaic/pkg/fsx/fsxlocal"
	"github.com/Abraxas-365/mosaic/pkg/fsx/fsxs3"
	"github.com/Abraxas-365/mosaic/pkg/knowledge"
	"github.com/Abraxas-365/mosaic/pkg/knowledge/knowledgeredis"
	"github.com/Abraxas-365/mosaic/pkg/logx"
	"github.com/Abraxas-365/mosaic/pkg/notifx"
	"github.com/Abraxas-365/mosaic/pkg/notifx/notifxconsole"
	"github.com/Abraxas-365/mosaic/pkg/notifx/notifxses"
	"github.com/Abraxas-365/mosaic/pkg/notifx/notifxsmtp"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/redis/go-redis/v9"
)

// Container holds shared infrastructure and the wired chat and knowledge
// modules.
type Container struct {
	Config *config.Config

	// Infrastructure
	Redis      *redis.Client
	FileSystem fsx.FileReader
	Mail       *notifx.Client
	Backend    assistant.Backend
	Documents  assistant.DocumentStore

	// Modules
	Relay            *chat.Relay
	ChatHandler      *chat.Handler
	Knowledge        *knowledge.Service
	KnowledgeHandler *knowledge.Handler
}

// NewContainer builds every dependency. On failure whatever was already
// opened is released before the error is returned.
func NewContainer(cfg *config.Config) (*Container, error) {
	logx.Info("🔧 Initializing application container...")

	c := &Container{Config: cfg}

	if err := c.initInfrastructure(); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initModules(); err != nil {
		c.Cleanup()
		return nil, err
	}

	logx.Info("✅ Application container initialized")
	return c, nil
}

// Ready reports the configuration error requests should fail with, if any.
func (c *Container) Ready() error {
	return c.Config.Assistant.Validate()
}

// ---------------------------------------------------------------------------
// Infrastructure
// ---------------------------------------------------------------------------

func (c *Container) initInfrastructure() error {
	logx.Info("🏗️ Initializing infrastructure...")

	for _, step := range []func() error{c.initAssistant, c.initRedis, c.initFileStorage, c.initMail} {
		if err := step(); err != nil {
			return err
		}
	}

	logx.Info("✅ Infrastructure initialized")
	return nil
}

func (c *Container) initAssistant() error {
	ac := c.Config.Assistant

	switch ac.Provider {
	case "scripted":
		c.Backend = assistanttest.NewDemo()
		c.Documents = assistanttest.NewDocuments()
		logx.Warn("  ⚠️ Scripted assistant in use, replies are canned")

	case "openai":
		if err := ac.Validate(); err != nil {
			// Requests are refused with this error until the environment is fixed.
			logx.WithError(err).Warn("  ⚠️ Assistant not configured")
		}
		if ac.APIKey == "" {
			return nil
		}
		provider, err := assistantopenai.NewProvider(assistantopenai.Config{
			APIKey:    ac.APIKey,
			BaseURL:   ac.BaseURL,
			IndexName: ac.IndexName,
		})
		if err != nil {
			return fmt.Errorf("failed to create OpenAI provider: %w", err)
		}
		c.Backend = provider
		c.Documents = provider
		logx.Infof("  ✅ OpenAI assistant configured (assistant: %s)", ac.AssistantID)

	default:
		return fmt.Errorf("unknown OPENAI_PROVIDER: %s (use 'openai' or 'scripted')", ac.Provider)
	}
	return nil
}

func (c *Container) initRedis() error {
	if c.Config.Redis.URL == "" {
		logx.Info("  ✅ Knowledge index cache: memory")
		return nil
	}

	opts, err := redis.ParseURL(c.Config.Redis.URL)
	if err != nil {
		return fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		logx.Warnf("Redis unreachable, falling back to memory cache: %v", err)
		_ = rdb.Close()
		return nil
	}
	c.Redis = rdb
	logx.Info("  ✅ Redis connected")
	return nil
}

func (c *Container) initFileStorage() error {
	rc := c.Config.Resume

	switch rc.Storage {
	case "s3":
		if rc.S3Bucket == "" {
			return errors.New("RESUME_S3_BUCKET is required when RESUME_STORAGE=s3")
		}
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(rc.AWSRegion))
		if err != nil {
			return fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		c.FileSystem = fsxs3.NewS3FileSystem(s3.NewFromConfig(cfg), rc.S3Bucket, rc.Dir)
		logx.Infof("  ✅ S3 document store configured (bucket: %s, region: %s)", rc.S3Bucket, rc.AWSRegion)

	case "local":
		localFS, err := fsxlocal.NewLocalFileSystem(rc.Dir)
		if err != nil {
			return fmt.Errorf("failed to initialize local document store: %w", err)
		}
		c.FileSystem = localFS
		logx.Infof("  ✅ Local document store configured (path: %s)", localFS.BasePath())

	default:
		return fmt.Errorf("unknown RESUME_STORAGE: %s (use 'local' or 's3')", rc.Storage)
	}
	return nil
}

func (c *Container) initMail() error {
	ec := c.Config.Email
	from := notifx.FormatAddress(ec.FromName, ec.FromAddress)

	var provider notifx.EmailSender
	switch ec.Provider {
	case "ses":
		cfg, err := awsConfig.LoadDefaultConfig(context.TODO(), awsConfig.WithRegion(ec.AWSRegion))
		if err != nil {
			return fmt.Errorf("unable to load AWS SDK config: %w", err)
		}
		provider = notifxses.NewSESProvider(ses.NewFromConfig(cfg), from)
		logx.Infof("  ✅ SES email configured (region: %s)", ec.AWSRegion)

	case "smtp":
		provider = notifxsmtp.NewSMTPProvider(notifxsmtp.Config{
			Host:     ec.SMTPHost,
			Port:     ec.SMTPPort,
			Username: ec.SMTPUser,
			Password: ec.SMTPPass,
			From:     from,
		})
		logx.Infof("  ✅ SMTP email configured (%s:%d)", ec.SMTPHost, ec.SMTPPort)

	case "console":
		provider = notifxconsole.NewConsoleProvider()
		logx.Info("  ✅ Console email configured (messages are logged, not sent)")

	default:
		return fmt.Errorf("unknown EMAIL_PROVIDER: %s (use 'console', 'ses' or 'smtp')", ec.Provider)
	}

	c.Mail = notifx.NewClient(provider, from)
	return nil
}

// ---------------------------------------------------------------------------
// Modules
// ---------------------------------------------------------------------------

func (c *Container) initModules() error {
	logx.Info("📦 Initializing modules...")

	rc := c.Config.Resume
	mailer, err := chat.NewResumeMailer(c.FileSystem, c.Mail, chat.ResumeConfig{
		File:           rc.File,
		AttachmentName: rc.AttachmentName,
		Owner:          rc.Owner,
		Sender:         fmt.Sprintf("%s (AI Assistant)", c.Config.Email.FromName),
	})
	if err != nil {
		return fmt.Errorf("failed to register resume templates: %w", err)
	}

	tools := chat.NewToolbox(chat.BookMeeting{}, chat.NewEmailResume(mailer))
	c.Relay = chat.NewRelay(c.Backend, tools, chat.RelayConfig{
		AssistantID:   c.Config.Assistant.AssistantID,
		MaxToolRounds: c.Config.Server.MaxToolRounds,
	})
	c.ChatHandler = chat.NewHandler(c.Relay, c.Config.Server.MaxDuration(), c.Ready)
	logx.Info("  ✅ Chat module ready")

	var cache knowledge.IndexCache = knowledge.NewMemoryCache()
	if c.Redis != nil {
		cache = knowledgeredis.NewRedisCache(c.Redis, 24*time.Hour)
	}
	c.Knowledge = knowledge.NewService(c.Documents, cache, c.Config.Assistant.AssistantID)
	c.KnowledgeHandler = knowledge.NewHandler(c.Knowledge, int64(c.Config.Server.UploadMaxBytes), c.Ready)
	logx.Info("  ✅ Knowledge module ready")
	return nil
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

func (c *Container) Cleanup() {
	logx.Info("🧹 Cleaning up resources...")

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logx.Errorf("Error closing Redis: %v", err)
		} else {
			logx.Info("  ✅ Redis connection closed")
		}
	}

	logx.Info("✅ Cleanup complete")
}
