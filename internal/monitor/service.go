package monitor

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/solidarios/api/internal/config"
	"github.com/solidarios/api/internal/inventory"
	"github.com/solidarios/api/internal/metrics"
)

const (
	jobLowStock = "low-stock"
	jobPurge    = "refresh-purge"
)

// StockSource lista entradas de estoque no nível de alerta.
type StockSource interface {
	LowStock(ctx context.Context) ([]inventory.Entry, error)
}

// TokenPurger remove refresh tokens vencidos ou revogados.
type TokenPurger interface {
	PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error)
}

// Service agenda os jobs de manutenção com cron.
type Service struct {
	stock    StockSource
	tokens   TokenPurger
	cfg      config.MonitoringConfig
	notifier Notifier
	logger   zerolog.Logger
	now      func() time.Time

	cron *cron.Cron

	mu       sync.Mutex
	lastSeen string
}

func NewService(stock StockSource, tokens TokenPurger, cfg config.MonitoringConfig, logger zerolog.Logger, notifier Notifier) *Service {
	return &Service{
		stock:    stock,
		tokens:   tokens,
		cfg:      cfg,
		notifier: notifier,
		logger:   logger.With().Str("component", "monitor").Logger(),
		now:      time.Now,
	}
}

// Start registra os jobs e inicia o agendador. A purga de tokens roda
// sempre; o alerta de estoque depende de INVENTORY_MONITOR_ENABLED.
func (s *Service) Start(ctx context.Context) error {
	if s.cron != nil {
		return nil
	}
	c := cron.New()

	purge := s.cfg.PurgeSchedule
	if purge == "" {
		purge = "@daily"
	}
	if _, err := c.AddFunc(purge, s.job(ctx, jobPurge, s.PurgeTokens)); err != nil {
		return fmt.Errorf("agenda %s: %w", jobPurge, err)
	}

	if s.cfg.Enabled {
		schedule := s.cfg.Schedule
		if schedule == "" {
			schedule = "@every 30m"
		}
		if _, err := c.AddFunc(schedule, s.job(ctx, jobLowStock, s.CheckLowStock)); err != nil {
			return fmt.Errorf("agenda %s: %w", jobLowStock, err)
		}
	}

	s.cron = c
	c.Start()
	s.logger.Info().Int("jobs", len(c.Entries())).Msg("monitor: agendador iniciado")
	return nil
}

// Stop aguarda jobs em execução até o fim do contexto.
func (s *Service) Stop(ctx context.Context) {
	if s.cron == nil {
		return
	}
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
	}
	s.logger.Info().Msg("monitor: agendador encerrado")
}

func (s *Service) job(ctx context.Context, name string, fn func(context.Context) error) func() {
	return func() {
		start := time.Now()
		err := fn(ctx)
		metrics.RecordJob(name, time.Since(start), err == nil)
		if err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("monitor: job falhou")
		}
	}
}

// CheckLowStock avisa quando o conjunto de itens em alerta muda.
func (s *Service) CheckLowStock(ctx context.Context) error {
	entries, err := s.stock.LowStock(ctx)
	if err != nil {
		return fmt.Errorf("listar estoque baixo: %w", err)
	}
	metrics.SetLowStock(len(entries))

	fingerprint := stockFingerprint(entries)
	s.mu.Lock()
	changed := fingerprint != s.lastSeen
	s.lastSeen = fingerprint
	s.mu.Unlock()

	if len(entries) == 0 || !changed {
		return nil
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		location := "sem local"
		if e.Location != nil && *e.Location != "" {
			location = *e.Location
		}
		alert := 0
		if e.AlertLevel != nil {
			alert = *e.AlertLevel
		}
		lines = append(lines, fmt.Sprintf("item %s: %d un. (alerta %d) em %s", e.ItemID, e.Quantity, alert, location))
	}

	s.logger.Warn().Int("entries", len(entries)).Msg("monitor: estoque baixo")

	if s.notifier == nil {
		return nil
	}
	severity := "warning"
	for _, e := range entries {
		if e.Quantity == 0 {
			severity = "critical"
			break
		}
	}
	msg := AlertMessage{
		Title:    "Estoque baixo",
		Text:     fmt.Sprintf("%d registro(s) de estoque no nível de alerta", len(entries)),
		Lines:    lines,
		Severity: severity,
	}
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.mu.Lock()
		s.lastSeen = ""
		s.mu.Unlock()
		return fmt.Errorf("notificar: %w", err)
	}
	return nil
}

// PurgeTokens apaga tokens vencidos ou revogados há mais de um dia.
func (s *Service) PurgeTokens(ctx context.Context) error {
	removed, err := s.tokens.PurgeRefreshTokens(ctx, s.now().Add(-24*time.Hour))
	if err != nil {
		return fmt.Errorf("purgar refresh tokens: %w", err)
	}
	s.logger.Info().Int64("removed", removed).Msg("monitor: refresh tokens purgados")
	return nil
}

func stockFingerprint(entries []inventory.Entry) string {
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		keys = append(keys, fmt.Sprintf("%s:%d", e.ID, e.Quantity))
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}
