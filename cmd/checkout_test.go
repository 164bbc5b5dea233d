// ABOUTME: Tests for the checkout commands
// ABOUTME: Covers the payment handoff, completion by URL or id, and cancel returns

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markalston/storefront-cli/internal/checkout"
)

func TestRunCheckoutStart_PrintsPaymentPage(t *testing.T) {
	srv := newShop(t)
	loginAs(t)
	srv.SeedCart(map[int64]int{7: 2})

	var buf bytes.Buffer
	code := runCheckoutStart(context.Background(), &buf, checkout.WriterNavigator{W: &buf})

	require.Equal(t, 0, code, buf.String())
	assert.Contains(t, buf.String(), srv.URL+"/pay/cs_test_1")
}

func TestRunCheckoutStart_JSON(t *testing.T) {
	srv := newShop(t)
	loginAs(t)
	srv.SeedCart(map[int64]int{7: 1})
	jsonOutput = true

	var buf bytes.Buffer
	require.Equal(t, 0, runCheckoutStart(context.Background(), &buf, nil))

	var out map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	assert.Equal(t, srv.URL+"/pay/cs_test_1", out["paymentUrl"])
}

func TestRunCheckoutStart_EmptyCart(t *testing.T) {
	srv := newShop(t)
	loginAs(t)

	var buf bytes.Buffer
	code := runCheckoutStart(context.Background(), &buf, checkout.WriterNavigator{W: &buf})

	assert.Equal(t, 1, code)
	assert.Zero(t, srv.Hits("POST /api/v1/payment/checkout/3"))
}

func TestRunCheckoutComplete_ByReturnURL(t *testing.T) {
	srv := newShop(t)
	loginAs(t)
	srv.SeedCart(map[int64]int{7: 2})

	var buf bytes.Buffer
	code := runCheckoutComplete(context.Background(), &buf,
		"http://localhost:5173/payment/success?session_id=cs_test_1")

	require.Equal(t, 0, code, buf.String())
	out := buf.String()
	assert.Contains(t, out, checkout.MsgPaymentComplete)
	assert.Contains(t, out, "Brass Lamp")
	assert.Contains(t, out, "Total paid: ₹1000.00")
	assert.True(t, srv.Cart().IsEmpty())
}

func TestRunCheckoutComplete_BySessionID(t *testing.T) {
	srv := newShop(t)
	loginAs(t)
	srv.SeedCart(map[int64]int{8: 1})
	jsonOutput = true

	var buf bytes.Buffer
	require.Equal(t, 0, runCheckoutComplete(context.Background(), &buf, "cs_test_9"))

	var out struct {
		Status      string `json:"status"`
		TotalAmount string `json:"totalAmount"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out), buf.String())
	assert.Equal(t, "paid", out.Status)
	assert.Equal(t, "1200", out.TotalAmount)
}

func TestRunCheckoutComplete_UnknownSession(t *testing.T) {
	newShop(t)
	loginAs(t)

	var buf bytes.Buffer
	code := runCheckoutComplete(context.Background(), &buf, "bogus")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), checkout.MsgVerifyFailed)
}

func TestRunCheckoutComplete_CancelURLNeverCallsAPI(t *testing.T) {
	srv := newShop(t)
	loginAs(t)
	srv.SeedCart(map[int64]int{7: 1})

	var buf bytes.Buffer
	code := runCheckoutComplete(context.Background(), &buf,
		"http://localhost:5173/payment/cancel?cancelled=true")

	assert.Equal(t, 1, code)
	assert.Contains(t, buf.String(), "Payment cancelled. Your cart has not been charged.")
	assert.Len(t, srv.Cart().Items, 1)
}

func TestRunCheckoutCancel(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"explicit cancel", "http://localhost:5173/payment/cancel?cancelled=true", checkout.ReasonCancelled},
		{"no query", "http://localhost:5173/payment/cancel", checkout.ReasonInterrupted},
		{"no url", "", checkout.ReasonInterrupted},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			assert.Equal(t, 1, runCheckoutCancel(&buf, tc.raw))
			assert.Contains(t, buf.String(), tc.want)
		})
	}
}
