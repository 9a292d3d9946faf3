package monitor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solidarios/api/internal/config"
	"github.com/solidarios/api/internal/inventory"
)

type stubStock struct {
	entries []inventory.Entry
	err     error
}

func (s *stubStock) LowStock(ctx context.Context) ([]inventory.Entry, error) {
	return s.entries, s.err
}

type stubPurger struct {
	before time.Time
	n      int64
}

func (s *stubPurger) PurgeRefreshTokens(ctx context.Context, before time.Time) (int64, error) {
	s.before = before
	return s.n, nil
}

type recordingNotifier struct {
	msgs []AlertMessage
	err  error
}

func (r *recordingNotifier) Notify(ctx context.Context, msg AlertMessage) error {
	r.msgs = append(r.msgs, msg)
	return r.err
}

func entry(qty, alert int) inventory.Entry {
	return inventory.Entry{ID: uuid.New(), ItemID: uuid.New(), Quantity: qty, AlertLevel: &alert}
}

func TestCheckLowStockNotifiesOnlyOnChange(t *testing.T) {
	stock := &stubStock{entries: []inventory.Entry{entry(1, 2)}}
	notifier := &recordingNotifier{}
	svc := NewService(stock, &stubPurger{}, config.MonitoringConfig{Enabled: true}, zerolog.Nop(), notifier)

	require.NoError(t, svc.CheckLowStock(context.Background()))
	require.NoError(t, svc.CheckLowStock(context.Background()))
	require.Len(t, notifier.msgs, 1)
	assert.Equal(t, "warning", notifier.msgs[0].Severity)
	assert.Len(t, notifier.msgs[0].Lines, 1)

	stock.entries = append(stock.entries, entry(0, 5))
	require.NoError(t, svc.CheckLowStock(context.Background()))
	require.Len(t, notifier.msgs, 2)
	assert.Equal(t, "critical", notifier.msgs[1].Severity)
}

func TestCheckLowStockRetriesAfterNotifyFailure(t *testing.T) {
	stock := &stubStock{entries: []inventory.Entry{entry(1, 2)}}
	notifier := &recordingNotifier{err: errors.New("offline")}
	svc := NewService(stock, &stubPurger{}, config.MonitoringConfig{}, zerolog.Nop(), notifier)

	require.Error(t, svc.CheckLowStock(context.Background()))
	notifier.err = nil
	require.NoError(t, svc.CheckLowStock(context.Background()))
	assert.Len(t, notifier.msgs, 2)
}

func TestCheckLowStockWithoutEntries(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewService(&stubStock{}, &stubPurger{}, config.MonitoringConfig{}, zerolog.Nop(), notifier)

	require.NoError(t, svc.CheckLowStock(context.Background()))
	assert.Empty(t, notifier.msgs)
}

func TestPurgeTokensUsesOneDayWindow(t *testing.T) {
	purger := &stubPurger{n: 4}
	svc := NewService(&stubStock{}, purger, config.MonitoringConfig{}, zerolog.Nop(), nil)
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	require.NoError(t, svc.PurgeTokens(context.Background()))
	assert.Equal(t, now.Add(-24*time.Hour), purger.before)
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	svc := NewService(&stubStock{}, &stubPurger{}, config.MonitoringConfig{Enabled: true, Schedule: "toda hora"}, zerolog.Nop(), nil)
	require.Error(t, svc.Start(context.Background()))

	ok := NewService(&stubStock{}, &stubPurger{}, config.MonitoringConfig{Enabled: true}, zerolog.Nop(), nil)
	require.NoError(t, ok.Start(context.Background()))
	assert.Len(t, ok.cron.Entries(), 2)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	ok.Stop(ctx)
}

func TestSlackNotifierPostsText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(context.Background(), AlertMessage{Title: "Estoque baixo", Text: "1 registro", Lines: []string{"item x"}, Severity: "critical"})
	require.NoError(t, err)
	assert.Equal(t, ":rotating_light: *Estoque baixo*\n1 registro\n• item x", got["text"])

	assert.Nil(t, NewSlackNotifier(""))
}
