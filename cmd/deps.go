package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/seeg/onehcm/internal/ai"
	"github.com/seeg/onehcm/internal/ai/gemini"
	"github.com/seeg/onehcm/internal/diagnostics"
	"github.com/seeg/onehcm/internal/logger"
	"github.com/seeg/onehcm/internal/matching"
	"github.com/seeg/onehcm/internal/notify"
	"github.com/seeg/onehcm/internal/scoringapi"
	"github.com/seeg/onehcm/internal/secrets"
	"github.com/seeg/onehcm/internal/store"
)

// runtime bundles what every command needs: the config, a logger whose
// warnings feed the diagnostics recorder, and the recorder itself.
type runtime struct {
	config   *Config
	logger   *zap.Logger
	recorder *diagnostics.Recorder
}

func newRuntime() (*runtime, error) {
	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	recorder := diagnostics.NewRecorder(config.Diagnostics.Capacity)

	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"), zap.Hooks(recorder.Hook))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	l.Debug("starting", zap.String("app", app), zap.String("version", version))

	return &runtime{config: config, logger: l, recorder: recorder}, nil
}

func (r *runtime) close() {
	r.recorder.Flush(r.logger)
	_ = r.logger.Sync()
}

func (r *runtime) openStore(ctx context.Context) (*store.DB, error) {
	url, err := secrets.Load(secrets.Source{
		Name:  "database url",
		Value: r.config.Database.URL,
		File:  r.config.Database.URLFile,
		Env:   "DATABASE_URL",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set database.url-file or ONEHCM_DATABASE_URL)", err)
	}

	db, err := store.Connect(ctx, url)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("database connected")
	return db, nil
}

func (r *runtime) newMatcher(ctx context.Context, src matching.OfferSource) (*matching.Matcher, error) {
	m := matching.NewMatcher(r.config.Matcher.TTL, r.logger.Named("matcher"))
	if err := m.Refresh(ctx, src); err != nil {
		return nil, fmt.Errorf("loading job offers: %w", err)
	}
	return m, nil
}

func (r *runtime) newScoringClient() (*scoringapi.Client, error) {
	cfg := r.config.Scoring
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("scoring endpoint is not configured (set scoring.url or ONEHCM_SCORING_URL)")
	}

	apiKey, err := secrets.Optional(secrets.Source{
		Name:  "scoring api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   "AZURE_ML_API_KEY",
	})
	if err != nil {
		return nil, err
	}

	client := scoringapi.New(cfg.URL, apiKey, r.logger.Named("scoring"))
	if cfg.Timeout > 0 {
		client.Timeout = cfg.Timeout
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	if cfg.MaxLogLength > 0 {
		client.MaxLogLength = cfg.MaxLogLength
	}
	return client, nil
}

func (r *runtime) thresholds() scoringapi.Thresholds {
	return scoringapi.Thresholds{
		ThresholdPct:     r.config.Scoring.ThresholdPct,
		HoldThresholdPct: r.config.Scoring.HoldThresholdPct,
	}
}

// newNarrator returns nil without error when the ai section is disabled.
func (r *runtime) newNarrator(ctx context.Context) (ai.Narrator, error) {
	cfg := r.config.AI
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil || strings.TrimSpace(cfg.Gemini.Model) == "" {
		return nil, errors.New("gemini model is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or ONEHCM_AI_GEMINI_API_KEY_FILE)", err)
	}

	genLogger := r.logger.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries))

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, err
	}

	narrator := gemini.NewNarrator(generator, cfg.Gemini.MaxLogLength, r.logger)
	narrator.SetPromptOverrides(gemini.PromptOverrides{
		Focus:            cfg.Gemini.Focus,
		Tone:             cfg.Gemini.Tone,
		UserInstructions: cfg.Gemini.Instructions,
	})
	return narrator, nil
}

// newMailer wires SMTP first and Resend second; providers without
// credentials are left out.
func (r *runtime) newMailer() (*notify.Mailer, error) {
	cfg := r.config.Email

	var senders []notify.Sender

	if host := strings.TrimSpace(cfg.SMTP.Host); host != "" {
		password, err := secrets.Optional(secrets.Source{
			Name:  "smtp password",
			Value: cfg.SMTP.Password,
			File:  cfg.SMTP.PasswordFile,
			Env:   "SMTP_PASSWORD",
		})
		if err != nil {
			return nil, err
		}
		senders = append(senders, notify.NewSMTPSender(host, cfg.SMTP.Port, cfg.SMTP.Username, password))
	}

	resendKey, err := secrets.Optional(secrets.Source{
		Name:  "resend api key",
		Value: cfg.Resend.APIKey,
		File:  cfg.Resend.APIKeyFile,
		Env:   "RESEND_API_KEY",
	})
	if err != nil {
		return nil, err
	}
	if resendKey != "" {
		senders = append(senders, notify.NewResendSender(cfg.Resend.URL, resendKey))
	}

	return notify.NewMailer(cfg.From, r.logger.Named("mailer"), senders...)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
