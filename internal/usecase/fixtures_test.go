//go:build !integration

package usecase_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"edu-subscription-platform/internal/catalog"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/infra/adapters/payment"
	"edu-subscription-platform/internal/usecase"
)

const webhookSecret = "test-webhook-secret"

// billingHarness wires checkout and reconciliation over shared mocks.
type billingHarness struct {
	payments *MockPaymentRepo
	users    *MockUserRepo
	gateway  *payment.NoopPaymentGateway
	checkout usecase.CheckoutUseCase
	payment  usecase.PaymentUseCase
}

func newBillingHarness(t *testing.T, expiry usecase.ExpiryPolicy) *billingHarness {
	t.Helper()
	h := &billingHarness{
		payments: NewMockPaymentRepo(),
		users:    NewMockUserRepo(),
		gateway:  payment.NewNoopPaymentGateway(webhookSecret),
	}
	plans := catalog.Default()
	h.checkout = usecase.NewCheckoutUseCase(h.payments, plans, h.gateway, nil, 0, 0, newTestLogger())
	h.payment = usecase.NewPaymentUseCase(h.payments, h.users, NewMockTxManager(), plans, h.gateway, expiry, newTestLogger())
	return h
}

func (h *billingHarness) student(t *testing.T, id string) *model.User {
	t.Helper()
	u, err := model.NewUser(id, id+"@example.com", "Student "+id, model.RoleStudent)
	require.NoError(t, err)
	require.NoError(t, h.users.Save(context.Background(), nil, u))
	return u
}

func (h *billingHarness) startCheckout(t *testing.T, u *model.User, tier model.AgeTier, cycle model.BillingCycle) *usecase.CheckoutResult {
	t.Helper()
	res, err := h.checkout.StartCheckout(context.Background(), u, usecase.CheckoutRequest{
		Tier:       tier,
		Cycle:      cycle,
		SuccessURL: "https://app.test/ok",
		CancelURL:  "https://app.test/cancel",
	})
	require.NoError(t, err)
	return res
}
