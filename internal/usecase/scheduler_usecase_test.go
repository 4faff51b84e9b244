package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/avezhnov/scholarwatch/internal/domain"
	"github.com/avezhnov/scholarwatch/internal/infra/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeProcessor counts batches by watching the in-flight counter: a new
// batch begins whenever it rises from zero, which holds because the
// scheduler fully awaits each batch and hold keeps members overlapping.
type fakeProcessor struct {
	due      []domain.Alert
	hold     time.Duration
	panicFor string

	dueCalls int32
	inFlight int32
	maxSeen  int32
	batches  int32

	mu        sync.Mutex
	processed []string
}

func (p *fakeProcessor) DueAlerts(ctx context.Context) ([]domain.Alert, error) {
	atomic.AddInt32(&p.dueCalls, 1)
	return p.due, nil
}

func (p *fakeProcessor) Process(ctx context.Context, alert *domain.Alert) *domain.Notification {
	if current := atomic.AddInt32(&p.inFlight, 1); current == 1 {
		atomic.AddInt32(&p.batches, 1)
	} else {
		for {
			seen := atomic.LoadInt32(&p.maxSeen)
			if current <= seen || atomic.CompareAndSwapInt32(&p.maxSeen, seen, current) {
				break
			}
		}
	}
	defer atomic.AddInt32(&p.inFlight, -1)

	if p.hold > 0 {
		time.Sleep(p.hold)
	}
	if alert.ID == p.panicFor {
		panic("processor blew up")
	}

	p.mu.Lock()
	p.processed = append(p.processed, alert.ID)
	p.mu.Unlock()
	return nil
}

func makeAlerts(n int) []domain.Alert {
	alerts := make([]domain.Alert, 0, n)
	for i := 0; i < n; i++ {
		alerts = append(alerts, domain.Alert{ID: fmt.Sprintf("alert-%d", i), Status: domain.AlertStatusActive})
	}
	return alerts
}

func TestSchedulerBatching(t *testing.T) {
	processor := &fakeProcessor{due: makeAlerts(12), hold: 20 * time.Millisecond}
	scheduler := NewScheduler(processor, SchedulerOptions{
		BatchSize:  5,
		BatchPause: time.Millisecond,
	}, zap.NewNop())

	scheduler.RunNow(context.Background())

	assert.Len(t, processor.processed, 12)
	assert.LessOrEqual(t, atomic.LoadInt32(&processor.maxSeen), int32(5))
	assert.Equal(t, int32(3), atomic.LoadInt32(&processor.batches), "12 alerts at batch size 5 means 3 sequential batches")
}

func TestSchedulerSingleBatch(t *testing.T) {
	processor := &fakeProcessor{due: makeAlerts(3), hold: 10 * time.Millisecond}
	scheduler := NewScheduler(processor, SchedulerOptions{BatchSize: 5, BatchPause: time.Millisecond}, zap.NewNop())

	scheduler.RunNow(context.Background())

	assert.Len(t, processor.processed, 3)
	assert.Equal(t, int32(1), atomic.LoadInt32(&processor.batches))
}

func TestSchedulerSurvivesPanickingProcessor(t *testing.T) {
	processor := &fakeProcessor{due: makeAlerts(4), hold: 5 * time.Millisecond, panicFor: "alert-1"}
	scheduler := NewScheduler(processor, SchedulerOptions{BatchSize: 5, BatchPause: time.Millisecond}, zap.NewNop())

	scheduler.RunNow(context.Background())

	assert.Len(t, processor.processed, 3, "siblings of the panicking alert still complete")
	assert.NotContains(t, processor.processed, "alert-1")
}

func TestSchedulerStartStop(t *testing.T) {
	processor := &fakeProcessor{}
	scheduler := NewScheduler(processor, SchedulerOptions{CheckInterval: 5 * time.Millisecond}, zap.NewNop())

	ctx := context.Background()
	scheduler.Start(ctx)
	scheduler.Start(ctx) // no-op

	time.Sleep(30 * time.Millisecond)
	scheduler.Stop()
	scheduler.Stop() // no-op

	calls := atomic.LoadInt32(&processor.dueCalls)
	assert.GreaterOrEqual(t, calls, int32(2), "loop runs once at start and then on every tick")

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, calls, atomic.LoadInt32(&processor.dueCalls), "no cycles after stop")
}

func TestSchedulerRestart(t *testing.T) {
	processor := &fakeProcessor{}
	scheduler := NewScheduler(processor, SchedulerOptions{CheckInterval: time.Hour}, zap.NewNop())

	ctx := context.Background()
	scheduler.Start(ctx)
	scheduler.Stop()
	scheduler.Start(ctx)
	scheduler.Stop()

	assert.Equal(t, int32(2), atomic.LoadInt32(&processor.dueCalls))
}

// End-to-end: a past-due daily alert goes through one full cycle against the
// real service and in-memory store.
func TestSchedulerCycleEndToEnd(t *testing.T) {
	ctx := context.Background()
	service, alertRepo := newTestService(fixedMatches(someMatch("doc-1"), someMatch("doc-2")))
	alert := mustCreate(t, service, "owner-a", domain.FrequencyDaily)

	pastDue := time.Now().Add(-time.Hour)
	alert.NextRun = &pastDue
	require.NoError(t, alertRepo.Update(ctx, alert))

	scheduler := NewScheduler(service, SchedulerOptions{BatchSize: 5, BatchPause: time.Millisecond}, zap.NewNop())

	cycleStart := time.Now()
	scheduler.RunNow(ctx)
	cycleEnd := time.Now()

	stored, err := service.Get(ctx, alert.ID, "owner-a")
	require.NoError(t, err)
	require.NotNil(t, stored.LastRun)
	assert.False(t, stored.LastRun.Before(cycleStart))
	assert.False(t, stored.LastRun.After(cycleEnd))
	require.NotNil(t, stored.NextRun)
	assert.Equal(t, 24*time.Hour, stored.NextRun.Sub(*stored.LastRun))
	assert.Equal(t, 1, stored.NotificationCount)

	notifications, err := service.Notifications(ctx, "owner-a", 0)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Len(t, notifications[0].Matches, 2)
}

// End-to-end: a failing matcher for one owner must not disturb a sibling in
// the same batch.
func TestSchedulerBatchFailureIsolation(t *testing.T) {
	ctx := context.Background()
	matcher := matcherFunc(func(ctx context.Context, criteria domain.SearchCriteria, threshold float64, lookbackDays int) ([]domain.Match, error) {
		if strings.HasPrefix(criteria.Title, "Alpha") {
			return nil, errors.New("engine down")
		}
		return []domain.Match{someMatch("doc-1")}, nil
	})

	alertRepo, notifRepo := memstore.New()
	service := NewAlertService(alertRepo, notifRepo, matcher, zap.NewNop())

	abstract := "A sufficiently long research abstract."
	alphaAlert, err := service.Create(ctx, "owner-a", "Alpha research", abstract, 0.8, 30, domain.FrequencyDaily)
	require.NoError(t, err)
	betaAlert, err := service.Create(ctx, "owner-b", "Beta research", abstract, 0.8, 30, domain.FrequencyDaily)
	require.NoError(t, err)

	pastDue := time.Now().Add(-time.Hour)
	for _, alert := range []*domain.Alert{alphaAlert, betaAlert} {
		alert.NextRun = &pastDue
		require.NoError(t, alertRepo.Update(ctx, alert))
	}

	scheduler := NewScheduler(service, SchedulerOptions{BatchSize: 5, BatchPause: time.Millisecond}, zap.NewNop())
	scheduler.RunNow(ctx)

	alpha, err := service.Get(ctx, alphaAlert.ID, "owner-a")
	require.NoError(t, err)
	require.NotNil(t, alpha.LastRun)
	assert.Zero(t, alpha.NotificationCount)
	alphaNotifications, err := service.Notifications(ctx, "owner-a", 0)
	require.NoError(t, err)
	assert.Empty(t, alphaNotifications)

	beta, err := service.Get(ctx, betaAlert.ID, "owner-b")
	require.NoError(t, err)
	require.NotNil(t, beta.LastRun)
	assert.Equal(t, 1, beta.NotificationCount)
	betaNotifications, err := service.Notifications(ctx, "owner-b", 0)
	require.NoError(t, err)
	require.Len(t, betaNotifications, 1)
	assert.Len(t, betaNotifications[0].Matches, 1)
}
