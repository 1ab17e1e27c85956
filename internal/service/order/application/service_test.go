package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"

	"ordex/internal/service/order/domain"
	"ordex/internal/service/order/domain/port"
)

// stubRepo 是 OrderRepository 的内存实现，复刻条件更新语义。
type stubRepo struct {
	mu     sync.Mutex
	seq    uint64
	orders map[uint64]*domain.Order
}

func newStubRepo() *stubRepo {
	return &stubRepo{orders: make(map[uint64]*domain.Order)}
}

func clone(o *domain.Order) *domain.Order {
	c := *o
	if o.Price != nil {
		p := *o.Price
		c.Price = &p
	}
	return &c
}

func (r *stubRepo) Insert(ctx context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = r.seq
	r.orders[order.ID] = clone(order)
	return nil
}

func (r *stubRepo) FindByID(ctx context.Context, id uint64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return clone(o), nil
}

func (r *stubRepo) FindAll(ctx context.Context, stateFilter *domain.State) ([]*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Order
	for _, o := range r.orders {
		if stateFilter == nil || o.State == *stateFilter {
			out = append(out, clone(o))
		}
	}
	return out, nil
}

func (r *stubRepo) UpdateAmount(ctx context.Context, id uint64, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.State != domain.StateCreated {
		return domain.ErrNotModifiable
	}
	o.Amount = amount
	return nil
}

func (r *stubRepo) UpdateStateAndPrice(ctx context.Context, id uint64, from, to domain.State, price *float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.State != from {
		return domain.ErrInvalidTransition
	}
	o.State = to
	if price != nil {
		p := *price
		o.Price = &p
	}
	return nil
}

func (r *stubRepo) Delete(ctx context.Context, id uint64, current domain.State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.State != current {
		return domain.ErrNotDeletable
	}
	delete(r.orders, id)
	return nil
}

// stubConfirmation 记录调用次数并返回预设结果。
type stubConfirmation struct {
	result port.ConfirmationResult
	err    error
	calls  int
}

func (s *stubConfirmation) Confirm(ctx context.Context, isin string) (port.ConfirmationResult, error) {
	s.calls++
	return s.result, s.err
}

type recordingPublisher struct {
	events []*domain.LifecycleEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, event *domain.LifecycleEvent) error {
	p.events = append(p.events, event)
	return nil
}

func floatPtr(f float64) *float64 { return &f }

func newTestService(confirm *stubConfirmation) (*OrderApplicationService, *stubRepo, *recordingPublisher) {
	repo := newStubRepo()
	pub := &recordingPublisher{}
	svc := NewOrderApplicationService(repo, confirm, pub, otel.Tracer("test"))
	return svc, repo, pub
}

func mustCreate(t *testing.T, svc *OrderApplicationService) *OrderResponse {
	t.Helper()
	resp, err := svc.CreateOrder(context.Background(), &CreateOrderRequest{
		Name:   "alice",
		ISIN:   "DE000BASF111",
		Amount: 25,
	})
	require.NoError(t, err)
	return resp
}

// advanceTo 把订单推进到指定状态，路过门控转换时用传入的 stub。
func advanceTo(t *testing.T, svc *OrderApplicationService, id uint64, target domain.State) {
	t.Helper()
	path := []domain.State{domain.StateConfirmed, domain.StateExecuted, domain.StateSold}
	for _, s := range path {
		_, err := svc.RequestTransition(context.Background(), id, string(s))
		require.NoError(t, err)
		if s == target {
			return
		}
	}
	t.Fatalf("unreachable target state %s", target)
}

func TestCreateOrder(t *testing.T) {
	svc, repo, pub := newTestService(&stubConfirmation{})

	resp := mustCreate(t, svc)
	assert.Equal(t, "CREATED", resp.State)
	assert.Nil(t, resp.Price)
	assert.NotZero(t, resp.ID)

	stored, err := repo.FindByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, stored.State)
	assert.Nil(t, stored.Price)

	require.Len(t, pub.events, 1)
	assert.Equal(t, domain.EventOrderCreated, pub.events[0].Kind)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, _, _ := newTestService(&stubConfirmation{})

	tests := []struct {
		name string
		req  CreateOrderRequest
	}{
		{"missing name", CreateOrderRequest{ISIN: "DE000BASF111", Amount: 25}},
		{"missing isin", CreateOrderRequest{Name: "alice", Amount: 25}},
		{"non-positive amount", CreateOrderRequest{Name: "alice", ISIN: "DE000BASF111", Amount: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateOrder(context.Background(), &tt.req)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}

func TestRequestTransition_GatedSuccess(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	resp, err := svc.RequestTransition(context.Background(), created.ID, "CONFIRMED")
	require.NoError(t, err)
	assert.Equal(t, "CONFIRMED", resp.State)
	require.NotNil(t, resp.Price)
	assert.Equal(t, 101.5, *resp.Price)
	assert.Equal(t, 1, confirm.calls)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateConfirmed, stored.State)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 101.5, *stored.Price)
}

func TestRequestTransition_GatedNotConfirmed(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: false}}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	_, err := svc.RequestTransition(context.Background(), created.ID, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrConfirmationFailed)
	assert.Equal(t, 1, confirm.calls)

	// 未确认时不得有任何持久化副作用
	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, stored.State)
	assert.Nil(t, stored.Price)
}

func TestRequestTransition_GatedTransportError(t *testing.T) {
	confirm := &stubConfirmation{err: errors.New("connection refused")}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	_, err := svc.RequestTransition(context.Background(), created.ID, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrConfirmationFailed)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, stored.State)
	assert.Nil(t, stored.Price)
}

func TestRequestTransition_InvalidPairs(t *testing.T) {
	states := []domain.State{domain.StateCreated, domain.StateConfirmed, domain.StateExecuted, domain.StateSold}
	allowedNext := map[domain.State]domain.State{
		domain.StateCreated:   domain.StateConfirmed,
		domain.StateConfirmed: domain.StateExecuted,
		domain.StateExecuted:  domain.StateSold,
	}

	for _, from := range states {
		for _, to := range states {
			if allowedNext[from] == to {
				continue
			}
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
				svc, repo, _ := newTestService(confirm)
				created := mustCreate(t, svc)
				if from != domain.StateCreated {
					advanceTo(t, svc, created.ID, from)
				}
				confirmCallsBefore := confirm.calls
				before, err := repo.FindByID(context.Background(), created.ID)
				require.NoError(t, err)

				_, err = svc.RequestTransition(context.Background(), created.ID, string(to))
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)

				// 被拒绝的请求不触发外部调用，也不改动存储
				assert.Equal(t, confirmCallsBefore, confirm.calls)
				after, err := repo.FindByID(context.Background(), created.ID)
				require.NoError(t, err)
				assert.Equal(t, before, after)
			})
		}
	}
}

func TestRequestTransition_Idempotence(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, _, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	_, err := svc.RequestTransition(context.Background(), created.ID, "CONFIRMED")
	require.NoError(t, err)

	// 重复提交已应用的转换：状态已推进，确认服务不再被调用
	_, err = svc.RequestTransition(context.Background(), created.ID, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, 1, confirm.calls)
}

func TestRequestTransition_NonGatedLeavesPriceUntouched(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)
	advanceTo(t, svc, created.ID, domain.StateExecuted)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateExecuted, stored.State)
	require.NotNil(t, stored.Price)
	assert.Equal(t, 101.5, *stored.Price)
	assert.Equal(t, 1, confirm.calls)
}

func TestRequestTransition_UnknownTargetState(t *testing.T) {
	svc, _, _ := newTestService(&stubConfirmation{})
	created := mustCreate(t, svc)

	_, err := svc.RequestTransition(context.Background(), created.ID, "PENDING")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestRequestTransition_NotFound(t *testing.T) {
	svc, _, _ := newTestService(&stubConfirmation{})
	_, err := svc.RequestTransition(context.Background(), 404, "CONFIRMED")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateAmount(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	resp, err := svc.UpdateAmount(context.Background(), created.ID, 42)
	require.NoError(t, err)
	assert.Equal(t, 42.0, resp.Amount)

	_, err = svc.UpdateAmount(context.Background(), created.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	advanceTo(t, svc, created.ID, domain.StateConfirmed)
	_, err = svc.UpdateAmount(context.Background(), created.ID, 7)
	assert.ErrorIs(t, err, domain.ErrNotModifiable)

	stored, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, 42.0, stored.Amount)
}

func TestDeleteOrder(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}

	t.Run("created is deletable", func(t *testing.T) {
		svc, repo, _ := newTestService(confirm)
		created := mustCreate(t, svc)
		_, err := svc.DeleteOrder(context.Background(), created.ID)
		require.NoError(t, err)
		_, err = repo.FindByID(context.Background(), created.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("confirmed is deletable", func(t *testing.T) {
		svc, _, _ := newTestService(&stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}})
		created := mustCreate(t, svc)
		advanceTo(t, svc, created.ID, domain.StateConfirmed)
		_, err := svc.DeleteOrder(context.Background(), created.ID)
		require.NoError(t, err)
	})

	t.Run("executed is not deletable", func(t *testing.T) {
		svc, repo, _ := newTestService(&stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}})
		created := mustCreate(t, svc)
		advanceTo(t, svc, created.ID, domain.StateExecuted)
		_, err := svc.DeleteOrder(context.Background(), created.ID)
		assert.ErrorIs(t, err, domain.ErrNotDeletable)
		_, err = repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
	})
}

// 价格不变式：price 非空 当且仅当 状态在 CONFIRMED 及之后。
func TestPriceInvariantAcrossLifecycle(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, repo, _ := newTestService(confirm)
	created := mustCreate(t, svc)

	check := func() {
		stored, err := repo.FindByID(context.Background(), created.ID)
		require.NoError(t, err)
		priced := stored.Price != nil
		confirmedOrLater := stored.State != domain.StateCreated
		assert.Equal(t, confirmedOrLater, priced, "state=%s price=%v", stored.State, stored.Price)
	}

	check()
	for _, target := range []domain.State{domain.StateConfirmed, domain.StateExecuted, domain.StateSold} {
		_, err := svc.RequestTransition(context.Background(), created.ID, string(target))
		require.NoError(t, err)
		check()
	}
}

func TestListOrders(t *testing.T) {
	confirm := &stubConfirmation{result: port.ConfirmationResult{Confirmed: true, Price: floatPtr(101.5)}}
	svc, _, _ := newTestService(confirm)

	first := mustCreate(t, svc)
	mustCreate(t, svc)
	advanceTo(t, svc, first.ID, domain.StateConfirmed)

	all, err := svc.ListOrders(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	confirmed, err := svc.ListOrders(context.Background(), "CONFIRMED")
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, first.ID, confirmed[0].ID)

	_, err = svc.ListOrders(context.Background(), "bogus")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}
