package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"usernotify/internal/channel"
	"usernotify/internal/common"
	"usernotify/internal/config"
	"usernotify/internal/dbmysql"
	"usernotify/internal/engine"
	"usernotify/internal/httpapi"
	"usernotify/internal/logging"
	"usernotify/internal/registry"
	"usernotify/internal/render"
	"usernotify/internal/resolver"
)

// Application is the fully wired process.
type Application struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *gorm.DB
	Engine *engine.Engine
	Router *mux.Router
}

func ProvideLogger(cfg *config.Config) *slog.Logger {
	return logging.New(cfg.Logging)
}

// ProvideRegistry builds the immutable event catalog from the database
// rows. Every catalog row binds to the data-driven default renderer unless
// the composition root registers a richer one under the row's renderer
// name. A broken catalog fails startup.
func ProvideRegistry(ctx context.Context, cfg *config.Config, db *gorm.DB) (*registry.Registry, error) {
	defs, err := dbmysql.EventDefs(ctx, db)
	if err != nil {
		return nil, err
	}
	return BuildRegistry(defs)
}

// BuildRegistry assembles the registry from catalog rows.
func BuildRegistry(defs []dbmysql.EventDef) (*registry.Registry, error) {
	builder := registry.NewBuilder()

	renderers := map[string]common.Renderer{
		"default": render.DataRenderer{},
	}
	seenRenderers := make(map[string]bool)
	seenTypes := make(map[string]bool)

	for _, def := range defs {
		rendererName := def.RendererName
		if rendererName == "" {
			rendererName = "default"
		}
		if !seenRenderers[rendererName] {
			r, ok := renderers[rendererName]
			if !ok {
				return nil, fmt.Errorf("event %s.%s references unknown renderer %q", def.ObjectType, def.EventName, rendererName)
			}
			builder.AddRenderer(rendererName, r)
			seenRenderers[rendererName] = true
		}
		if !seenTypes[def.ObjectType] {
			builder.AddObjectType(registry.ObjectTypeDef{
				Name:      def.ObjectType,
				PackageID: def.PackageID,
				Provider:  render.RefProvider{},
			})
			seenTypes[def.ObjectType] = true
		}
		// The catalog row's own ID is what subscriptions, preferences and
		// stored notifications are keyed by; it must survive catalog gaps.
		builder.AddEvent(registry.EventDef{
			ID:             def.ID,
			ObjectType:     def.ObjectType,
			Name:           def.EventName,
			SupportedKinds: def.Kinds(),
			RendererName:   rendererName,
		})
	}

	return builder.Build()
}

// ProvideChannels assembles the delivery channels from config. The in-app
// and push kinds run on the log channel until real transports are plugged
// in; email is wired when SMTP is configured.
func ProvideChannels(cfg *config.Config, logger *slog.Logger) []common.Channel {
	channels := []common.Channel{
		channel.NewLog(common.KindInApp, logger),
		channel.NewLog(common.KindPush, logger),
	}
	if cfg.Email.Enabled && cfg.Email.SMTPHost != "" {
		// Addresses come from the firing payload; this service owns no
		// user directory.
		channels = append(channels, channel.NewEmail(newSMTPSender(cfg.Email), nil))
	}
	return channels
}

func ProvideEngine(
	cfg *config.Config,
	reg *registry.Registry,
	store common.Store,
	prefs common.PreferenceStore,
	logger *slog.Logger,
) *engine.Engine {
	return engine.New(
		reg,
		resolver.New(prefs),
		store,
		ProvideChannels(cfg, logger),
		common.Scope(cfg.Notification.Packages),
		engine.WithLogger(logger),
		engine.WithWorkers(cfg.Notification.Workers),
		engine.WithSendTimeout(time.Duration(cfg.Notification.SendTimeout)*time.Second),
		engine.WithCountCacheShards(cfg.Notification.CountCacheShards),
	)
}

func ProvideRouter(e *engine.Engine, cfg *config.Config, logger *slog.Logger) *mux.Router {
	handler := httpapi.NewHandler(e, logger)
	return httpapi.NewRouter(handler, []byte(cfg.Auth.JWTSecret))
}

// smtpSender implements channel.EmailSender over net/smtp.
type smtpSender struct {
	cfg config.EmailConfig
}

func newSMTPSender(cfg config.EmailConfig) *smtpSender {
	return &smtpSender{cfg: cfg}
}

func (s *smtpSender) SendEmail(to, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.FromName, s.cfg.FromEmail, to, subject, body)
	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}
