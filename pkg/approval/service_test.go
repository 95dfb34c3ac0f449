package approval

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/vendaflow/venda-cli/pkg/errors"
)

var testNow = time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

func newTestService() *Service {
	return NewService(NewMemoryRepository(), nil)
}

func pendingRequest(t *testing.T, svc *Service) *Request {
	t.Helper()
	req, err := svc.CreateRequest(context.Background(), &Request{
		CardID:          "card-1",
		CardTitle:       "Implantacao ERP",
		RequesterID:     "seller-1",
		RequesterName:   "Ana Souza",
		OriginalValue:   12000,
		DiscountPercent: 15,
		Reason:          "cliente estrategico",
	}, testNow)
	require.NoError(t, err)
	return req
}

func TestRequiresApproval(t *testing.T) {
	assert.False(t, RequiresApproval(5))
	assert.False(t, RequiresApproval(10))
	assert.True(t, RequiresApproval(10.1))
	assert.True(t, RequiresApproval(15))
}

func TestDiscountedValue(t *testing.T) {
	req := &Request{OriginalValue: 12000, DiscountPercent: 15}
	assert.InDelta(t, 10200, req.DiscountedValue(), 0.001)
}

func TestCreateRequest(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	assert.NotEmpty(t, req.ID)
	assert.Equal(t, StatusPending, req.Status)
	assert.Equal(t, testNow, req.CreatedAt)
	assert.Empty(t, req.ApproverID)
	assert.Nil(t, req.ResolvedAt)
}

func TestCreateRequestBelowThreshold(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateRequest(context.Background(), &Request{
		CardID:          "card-1",
		RequesterID:     "seller-1",
		OriginalValue:   12000,
		DiscountPercent: 10,
		Reason:          "cliente estrategico",
	}, testNow)
	assert.True(t, verrors.IsValidation(err))
}

func TestCreateRequestValidation(t *testing.T) {
	svc := newTestService()
	base := Request{
		CardID:          "card-1",
		RequesterID:     "seller-1",
		OriginalValue:   12000,
		DiscountPercent: 15,
		Reason:          "cliente estrategico",
	}

	tests := []struct {
		name   string
		mutate func(*Request)
	}{
		{"missing card", func(r *Request) { r.CardID = "" }},
		{"missing requester", func(r *Request) { r.RequesterID = "" }},
		{"zero value", func(r *Request) { r.OriginalValue = 0 }},
		{"discount above 100", func(r *Request) { r.DiscountPercent = 120 }},
		{"empty justification", func(r *Request) { r.Reason = "" }},
		{"blank justification", func(r *Request) { r.Reason = "   " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.CreateRequest(context.Background(), &req, testNow)
			assert.True(t, verrors.IsValidation(err))
		})
	}
}

func TestApprove(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	approved, err := svc.Approve(context.Background(), req.ID, "manager-1", "Carlos Lima", testNow.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, approved.Status)
	assert.Equal(t, "manager-1", approved.ApproverID)
	require.NotNil(t, approved.ResolvedAt)
	assert.Equal(t, testNow.Add(time.Hour), *approved.ResolvedAt)
	assert.InDelta(t, 10200, approved.DiscountedValue(), 0.001)
}

func TestReject(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	rejected, err := svc.Reject(context.Background(), req.ID, "manager-1", "Carlos Lima", testNow)
	require.NoError(t, err)
	assert.Equal(t, StatusRejected, rejected.Status)
}

func TestResolutionIsTerminal(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	_, err := svc.Approve(context.Background(), req.ID, "manager-1", "", testNow)
	require.NoError(t, err)

	// Neither a second approval nor a flip to rejected is possible.
	_, err = svc.Approve(context.Background(), req.ID, "manager-2", "", testNow)
	assert.True(t, verrors.IsAlreadyResolved(err))
	_, err = svc.Reject(context.Background(), req.ID, "manager-2", "", testNow)
	assert.True(t, verrors.IsAlreadyResolved(err))

	// The first resolution's fields are untouched by the failed attempts.
	stored, err := svc.requests.Get(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, stored.Status)
	assert.Equal(t, "manager-1", stored.ApproverID)
}

func TestResolveUnknownRequest(t *testing.T) {
	svc := newTestService()
	_, err := svc.Approve(context.Background(), "missing", "manager-1", "", testNow)
	assert.True(t, verrors.IsNotFound(err))
}

func TestResolveRequiresApprover(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	_, err := svc.Approve(context.Background(), req.ID, "", "", testNow)
	assert.True(t, verrors.IsValidation(err))
}

func TestConcurrentResolveSingleWinner(t *testing.T) {
	svc := newTestService()
	req := pendingRequest(t, svc)

	var wg sync.WaitGroup
	var mu sync.Mutex
	var wins, losses int

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = svc.Approve(context.Background(), req.ID, "manager-1", "", testNow)
			} else {
				_, err = svc.Reject(context.Background(), req.ID, "manager-2", "", testNow)
			}
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if verrors.IsAlreadyResolved(err) {
				losses++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Equal(t, 9, losses)
}

func TestPendingList(t *testing.T) {
	svc := newTestService()
	first := pendingRequest(t, svc)
	second, err := svc.CreateRequest(context.Background(), &Request{
		CardID:          "card-2",
		RequesterID:     "seller-2",
		OriginalValue:   8000,
		DiscountPercent: 20,
		Reason:          "concorrencia agressiva",
	}, testNow)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), first.ID, "manager-1", "", testNow)
	require.NoError(t, err)

	pending, err := svc.Pending(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, second.ID, pending[0].ID)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.List(context.Background(), Status("archived"))
	assert.True(t, verrors.IsValidation(err))
}
