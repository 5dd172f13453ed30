package fetch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/deisishop/internal/catalog"
	"github.com/fjod/deisishop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog struct {
	m        sync.RWMutex
	products []domain.Product
	err      error
	calls    atomic.Int32
	gate     chan struct{}
}

func (m *mockCatalog) wait(ctx context.Context) error {
	if m.gate == nil {
		return nil
	}
	select {
	case <-m.gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *mockCatalog) ListProducts(ctx context.Context) ([]domain.Product, error) {
	m.calls.Add(1)
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return m.products, nil
}

func (m *mockCatalog) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	m.calls.Add(1)
	m.m.RLock()
	defer m.m.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, errors.New("404 Not Found")
}

func (m *mockCatalog) ListCategoryProducts(_ context.Context, category string) ([]domain.Product, error) {
	m.calls.Add(1)
	var out []domain.Product
	for _, p := range m.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockCatalog) ListCategories(context.Context) ([]string, error) {
	m.calls.Add(1)
	return []string{"Merch"}, nil
}

func (m *mockCatalog) setErr(err error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.err = err
}

var testProducts = []domain.Product{
	{ID: 1, Title: "Caneca", Price: 7.5, Category: "Merch"},
	{ID: 2, Title: "Livro", Price: 20, Category: "Livros"},
}

func TestResource_Success(t *testing.T) {
	mc := &mockCatalog{products: testProducts}
	res := Products(NewLoader(), mc)
	assert.Equal(t, StatusIdle, res.State().Status)

	st := res.Load(context.Background())
	require.Equal(t, StatusSuccess, st.Status)
	assert.Len(t, st.Data, 2)
	assert.Empty(t, st.Message())
}

func TestResource_ErrorThenRetry(t *testing.T) {
	mc := &mockCatalog{products: testProducts, err: errors.New("503 Service Unavailable")}
	res := Products(NewLoader(), mc)

	st := res.Load(context.Background())
	require.Equal(t, StatusError, st.Status)
	assert.Equal(t, "503 Service Unavailable", st.Message())
	assert.Nil(t, st.Data)

	mc.setErr(nil)
	st = res.Retry(context.Background())
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, int32(2), mc.calls.Load())
}

func TestResource_LoadingWhileInFlight(t *testing.T) {
	mc := &mockCatalog{products: testProducts, gate: make(chan struct{})}
	res := Products(NewLoader(), mc)

	done := make(chan State[[]domain.Product])
	go func() { done <- res.Load(context.Background()) }()

	require.Eventually(t, func() bool {
		return res.State().Status == StatusLoading
	}, time.Second, 5*time.Millisecond)

	close(mc.gate)
	st := <-done
	assert.Equal(t, StatusSuccess, st.Status)
}

func TestResource_ReloadKeepsPriorData(t *testing.T) {
	mc := &mockCatalog{products: testProducts}
	res := Products(NewLoader(), mc)
	res.Load(context.Background())

	mc.gate = make(chan struct{})
	done := make(chan struct{})
	go func() {
		res.Load(context.Background())
		close(done)
	}()

	require.Eventually(t, func() bool { return mc.calls.Load() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, StatusSuccess, res.State().Status)
	close(mc.gate)
	<-done
}

func TestLoader_DeduplicatesConcurrentLoads(t *testing.T) {
	mc := &mockCatalog{products: testProducts, gate: make(chan struct{})}
	loader := NewLoader()
	a := Products(loader, mc)
	b := Products(loader, mc)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() { defer wg.Done(); a.Load(context.Background()) }()
	require.Eventually(t, func() bool { return mc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
	go func() { defer wg.Done(); b.Load(context.Background()) }()
	require.Eventually(t, func() bool { return b.State().Status == StatusLoading }, time.Second, 5*time.Millisecond)
	// give b time to join the in-flight call
	time.Sleep(50 * time.Millisecond)

	close(mc.gate)
	wg.Wait()

	assert.Equal(t, int32(1), mc.calls.Load())
	assert.Equal(t, StatusSuccess, a.State().Status)
	assert.Equal(t, StatusSuccess, b.State().Status)
}

func TestLoader_CancelledCallerDoesNotFailOthers(t *testing.T) {
	mc := &mockCatalog{products: testProducts, gate: make(chan struct{})}
	loader := NewLoader()
	a := Products(loader, mc)
	b := Products(loader, mc)

	ctxA, cancelA := context.WithCancel(context.Background())
	doneA := make(chan State[[]domain.Product], 1)
	go func() { doneA <- a.Load(ctxA) }()
	require.Eventually(t, func() bool { return mc.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	doneB := make(chan State[[]domain.Product], 1)
	go func() { doneB <- b.Load(context.Background()) }()
	require.Eventually(t, func() bool { return b.State().Status == StatusLoading }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	cancelA()
	stA := <-doneA
	assert.Equal(t, StatusError, stA.Status)
	assert.ErrorIs(t, stA.Err, context.Canceled)

	close(mc.gate)
	stB := <-doneB
	require.Equal(t, StatusSuccess, stB.Status)
	assert.Len(t, stB.Data, 2)
	assert.Equal(t, int32(1), mc.calls.Load())
}

func TestLoader_SharedLoadHasItsOwnTimeout(t *testing.T) {
	mc := &mockCatalog{products: testProducts, gate: make(chan struct{})}
	defer close(mc.gate)
	res := Products(NewLoader(WithLoadTimeout(20*time.Millisecond)), mc)

	st := res.Load(context.Background())
	assert.Equal(t, StatusError, st.Status)
	assert.ErrorIs(t, st.Err, context.DeadlineExceeded)
}

func TestProduct_InvalidIDNeverCallsCatalog(t *testing.T) {
	mc := &mockCatalog{products: testProducts}
	res := Product(NewLoader(), mc, "abc")

	assert.Equal(t, StatusError, res.State().Status)
	st := res.Load(context.Background())
	assert.Equal(t, StatusError, st.Status)
	assert.ErrorIs(t, st.Err, catalog.ErrInvalidID)
	res.Retry(context.Background())
	assert.Equal(t, int32(0), mc.calls.Load())
}

func TestProduct_ValidID(t *testing.T) {
	mc := &mockCatalog{products: testProducts}
	st := Product(NewLoader(), mc, "2").Load(context.Background())
	require.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, "Livro", st.Data.Title)
}

func TestCategoryProductsAndCategories(t *testing.T) {
	mc := &mockCatalog{products: testProducts}
	loader := NewLoader()

	st := CategoryProducts(loader, mc, "Merch").Load(context.Background())
	require.Equal(t, StatusSuccess, st.Status)
	assert.Len(t, st.Data, 1)

	cats := Categories(loader, mc).Load(context.Background())
	assert.Equal(t, []string{"Merch"}, cats.Data)
}

func TestStatus_String(t *testing.T) {
	assert.Equal(t, "idle", StatusIdle.String())
	assert.Equal(t, "loading", StatusLoading.String())
	assert.Equal(t, "error", StatusError.String())
	assert.Equal(t, "success", StatusSuccess.String())
}
