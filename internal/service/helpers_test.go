package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vardast/ops-dashboard/internal/domain"
	"github.com/vardast/ops-dashboard/internal/events"
	"github.com/vardast/ops-dashboard/internal/locale"
	"github.com/vardast/ops-dashboard/internal/repository"
	"github.com/vardast/ops-dashboard/internal/store"
	apperrors "github.com/vardast/ops-dashboard/pkg/util/errorutil"
)

const (
	testSession = "s1"
	testToday   = "۱۴۰۵/۷/۲۵"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	started chan struct{}
	release chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, _ bool) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	reply, err := f.reply, f.err
	f.mu.Unlock()
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return reply, err
}

func (f *fakeGenerator) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type failingWriteTable[T domain.Record] struct {
	repository.Table[T]
	err error
}

func (f failingWriteTable[T]) Insert(context.Context, *T) error { return f.err }
func (f failingWriteTable[T]) Update(context.Context, *T) error { return f.err }

type fixture struct {
	gateway    *repository.Gateway
	dispatcher events.Dispatcher
	store      *store.Store
	ai         *fakeGenerator
	forms      *FormService
}

func fixedDates() *locale.DateFormatter {
	return locale.NewDateFormatter("fa-IR", func() time.Time {
		return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	})
}

// newFixture wires a memory gateway, a subscribed store and a form
// controller. seed runs against the gateway before the store is seeded.
func newFixture(t *testing.T, seed func(ctx context.Context, gw *repository.Gateway)) *fixture {
	t.Helper()
	ctx := context.Background()
	dispatcher := events.NewInMemoryDispatcher()
	gw := repository.NewMemoryGateway(dispatcher)
	if seed != nil {
		seed(ctx, gw)
	}
	st := store.New(gw, nil)
	t.Cleanup(st.Close)
	require.NoError(t, st.Seed(ctx))
	st.Subscribe(dispatcher)

	gen := &fakeGenerator{}
	forms := NewFormService(FormDependencies{Gateway: gw, Store: st, AI: gen, Dates: fixedDates()})
	return &fixture{gateway: gw, dispatcher: dispatcher, store: st, ai: gen, forms: forms}
}

func errCode(err error) string {
	if err == nil {
		return ""
	}
	var de *apperrors.DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return apperrors.ToDomainError(err).Code
}
