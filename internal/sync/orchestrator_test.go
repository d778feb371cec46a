package sync

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sellerops/wbsync/internal/model"
)

type fakeTenantsRepo struct {
	tenants []model.Tenant
	err     error
}

func (f *fakeTenantsRepo) ListActive(context.Context) ([]model.Tenant, error) {
	return f.tenants, f.err
}

func (f *fakeTenantsRepo) FindByName(_ context.Context, name string) (model.Tenant, error) {
	for _, t := range f.tenants {
		if t.Name == name {
			return t, nil
		}
	}
	return model.Tenant{}, errors.New("not found")
}

func (f *fakeTenantsRepo) Upsert(context.Context, model.Tenant) error { return nil }

type fakePublisher struct {
	mu   sync.Mutex
	runs []TenantRun
}

func (f *fakePublisher) PublishJSON(_ context.Context, _ string, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runs = append(f.runs, v.(TenantRun))
	return nil
}

func threeTenants() *fakeTenantsRepo {
	return &fakeTenantsRepo{tenants: []model.Tenant{
		{ID: 1, Name: "t1", Token: "tok1"},
		{ID: 2, Name: "t2", Token: "tok2"},
		{ID: 3, Name: "t3", Token: "tok3"},
	}}
}

func TestRunForAllIsolatesTenantFailure(t *testing.T) {
	pub := &fakePublisher{}
	orch := NewOrchestrator(2, threeTenants(), nil, pub, zap.NewNop())

	task := Task{Kind: "stocks", Run: func(_ context.Context, tn model.Tenant) (Result, error) {
		if tn.ID == 2 {
			return Result{}, errors.New("credential revoked")
		}
		return Result{Rows: 10}, nil
	}}

	summary, err := orch.RunForAll(context.Background(), []Task{task})

	require.NoError(t, err)
	assert.Equal(t, 3, summary.Tenants)
	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"t2"}, summary.Failures)

	require.Len(t, pub.runs, 3)
	byTenant := map[string]TenantRun{}
	for _, r := range pub.runs {
		byTenant[r.Tenant] = r
	}
	assert.True(t, byTenant["t2"].Failed)
	assert.False(t, byTenant["t1"].Failed)
	assert.Equal(t, 10, byTenant["t3"].Outcomes[0].Rows)
}

func TestRunForAllSurvivesPanic(t *testing.T) {
	orch := NewOrchestrator(3, threeTenants(), nil, nil, zap.NewNop())

	task := Task{Kind: "orders", Run: func(_ context.Context, tn model.Tenant) (Result, error) {
		if tn.ID == 1 {
			panic("nil map write")
		}
		return Result{}, nil
	}}

	summary, err := orch.RunForAll(context.Background(), []Task{task})

	require.NoError(t, err)
	assert.Equal(t, 2, summary.OK)
	assert.Equal(t, []string{"t1"}, summary.Failures)
}

func TestRunForAllBoundsParallelism(t *testing.T) {
	repo := &fakeTenantsRepo{}
	for i := 1; i <= 12; i++ {
		repo.tenants = append(repo.tenants, model.Tenant{ID: int64(i), Name: fmt.Sprintf("t%d", i)})
	}
	orch := NewOrchestrator(3, repo, nil, nil, zap.NewNop())

	var current, peak atomic.Int32
	task := Task{Kind: "stocks", Run: func(context.Context, model.Tenant) (Result, error) {
		n := current.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		defer current.Add(-1)
		return Result{}, nil
	}}

	summary, err := orch.RunForAll(context.Background(), []Task{task})

	require.NoError(t, err)
	assert.Equal(t, 12, summary.OK)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunForAllRunsTasksInOrder(t *testing.T) {
	repo := &fakeTenantsRepo{tenants: []model.Tenant{{ID: 1, Name: "solo"}}}
	orch := NewOrchestrator(1, repo, nil, nil, zap.NewNop())

	var order []string
	mkTask := func(kind string, fail bool) Task {
		return Task{Kind: kind, Run: func(context.Context, model.Tenant) (Result, error) {
			order = append(order, kind)
			if fail {
				return Result{}, errors.New("nope")
			}
			return Result{}, nil
		}}
	}

	summary, err := orch.RunForAll(context.Background(),
		[]Task{mkTask("stocks", false), mkTask("orders", true), mkTask("cards", false)})

	require.NoError(t, err)
	assert.Equal(t, []string{"stocks", "orders", "cards"}, order,
		"a failed task does not stop the tenant's remaining tasks")
	assert.Equal(t, 1, summary.Failed)
}

func TestRunForAllListError(t *testing.T) {
	repo := &fakeTenantsRepo{err: errors.New("mysql down")}
	orch := NewOrchestrator(2, repo, nil, nil, zap.NewNop())

	_, err := orch.RunForAll(context.Background(), nil)
	require.Error(t, err)
}
