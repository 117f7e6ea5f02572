//go:build integration

// Package integration contains end-to-end API flow tests that verify
// the complete booking journey through the ledger.
//
// These tests run against the real docker-compose infrastructure and
// test the full API flow without any direct database manipulation.
package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_BookingFlow walks the full happy path:
// 1. Create a customer wallet and an owner wallet
// 2. Top up the customer
// 3. Redeem a coupon against the booking total
// 4. Debit the discounted amount for the booking
// 5. Transfer the amount to the theater owner
// 6. Refund part of it on cancellation
// 7. Verify the ledger recorded every step
func TestE2E_BookingFlow(t *testing.T) {
	cleanupTables(t)

	const (
		customer = "e2e_customer"
		owner    = "e2e_owner"
	)

	// Step 1: Create wallets via API
	t.Log("Step 1: Creating wallets via API")
	resp, err := postJSON(formatURL("/api/wallets"), map[string]interface{}{
		"account_id":   customer,
		"account_kind": "customer",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = postJSON(formatURL("/api/wallets"), map[string]interface{}{
		"account_id":   owner,
		"account_kind": "owner",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// A second create for the same account must conflict
	resp, err = postJSON(formatURL("/api/wallets"), map[string]interface{}{
		"account_id":   customer,
		"account_kind": "customer",
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Step 2: Top up the customer
	t.Log("Step 2: Crediting the customer wallet")
	resp, err = postJSON(formatURL("/api/wallets/credit"), map[string]interface{}{
		"account_id":   customer,
		"account_kind": "customer",
		"amount":       2000,
		"description":  "initial top up",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var mutation struct {
		Wallet struct {
			Balance int64 `json:"balance"`
		} `json:"wallet"`
		Transaction struct {
			TransactionID string `json:"transaction_id"`
			Category      string `json:"category"`
		} `json:"transaction"`
	}
	require.NoError(t, readJSONResponse(resp, &mutation))
	assert.Equal(t, int64(2000), mutation.Wallet.Balance)
	assert.Equal(t, "topup", mutation.Transaction.Category)

	// Step 3: Create and redeem a coupon against a 1000 booking
	t.Log("Step 3: Redeeming a coupon")
	resp, err = postJSON(formatURL("/api/coupons"), map[string]interface{}{
		"code":             "E2E20",
		"name":             "Flow Test",
		"discount_percent": 20,
		"expires_at":       time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"theater_ids":      []string{"theater_001"},
		"max_usage_count":  1,
		"created_by":       owner,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp, err = postJSON(formatURL("/api/coupons/redeem"), map[string]interface{}{
		"code":         "E2E20",
		"theater_id":   "theater_001",
		"total_amount": 1000,
		"account_id":   customer,
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var redeemed struct {
		DiscountAmount int64 `json:"discount_amount"`
	}
	require.NoError(t, readJSONResponse(resp, &redeemed))
	assert.Equal(t, int64(200), redeemed.DiscountAmount)

	// Step 4: Debit the discounted total
	t.Log("Step 4: Debiting the booking amount")
	payable := int64(1000) - redeemed.DiscountAmount
	resp, err = postJSON(formatURL("/api/wallets/debit"), map[string]interface{}{
		"account_id":   customer,
		"account_kind": "customer",
		"amount":       payable,
		"description":  "booking payment",
		"reference_id": "booking_e2e",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, readJSONResponse(resp, &mutation))
	assert.Equal(t, int64(1200), mutation.Wallet.Balance)

	// Step 5: Transfer the amount to the owner
	t.Log("Step 5: Transferring to the owner")
	resp, err = postJSON(formatURL("/api/transfers"), map[string]interface{}{
		"from_account_id":   customer,
		"from_account_kind": "customer",
		"to_account_id":     owner,
		"to_account_kind":   "owner",
		"amount":            400,
		"reference_id":      "booking_e2e",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, int64(800), getBalanceFromDB(t, customer, "customer"))
	assert.Equal(t, int64(400), getBalanceFromDB(t, owner, "owner"))

	// Step 6: Refund 75 percent of the booking on cancellation
	t.Log("Step 6: Refunding on cancellation")
	resp, err = postJSON(formatURL("/api/wallets/refund"), map[string]interface{}{
		"account_id":        customer,
		"account_kind":      "customer",
		"original_amount":   800,
		"refund_percentage": 75,
		"reference_id":      "booking_e2e",
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var refund struct {
		RefundAmount    int64 `json:"refund_amount"`
		CancellationFee int64 `json:"cancellation_fee"`
		Wallet          struct {
			Balance int64 `json:"balance"`
		} `json:"wallet"`
	}
	require.NoError(t, readJSONResponse(resp, &refund))
	assert.Equal(t, int64(600), refund.RefundAmount)
	assert.Equal(t, int64(200), refund.CancellationFee)
	assert.Equal(t, int64(1400), refund.Wallet.Balance)

	// Step 7: The ledger saw every customer-side move
	t.Log("Step 7: Checking the ledger")
	resp, err = getJSON(formatURL("/api/transactions/" + customer + "?page=1&pageSize=20"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		Items []struct {
			Direction string `json:"direction"`
			Category  string `json:"category"`
			Amount    int64  `json:"amount"`
		} `json:"items"`
		Total int `json:"total"`
	}
	require.NoError(t, readJSONResponse(resp, &history))
	// topup credit, booking debit, transfer debit, refund credit
	assert.Equal(t, 4, history.Total)
	assert.Equal(t, "refund", history.Items[0].Category, "newest entry first")

	// Latest entry endpoint agrees
	resp, err = getJSON(formatURL("/api/transactions/" + customer + "/latest"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var latest struct {
		Category string `json:"category"`
		Amount   int64  `json:"amount"`
	}
	require.NoError(t, readJSONResponse(resp, &latest))
	assert.Equal(t, "refund", latest.Category)
	assert.Equal(t, int64(600), latest.Amount)
}

// TestE2E_BalanceEndpoint reads a balance over the API.
func TestE2E_BalanceEndpoint(t *testing.T) {
	cleanupTables(t)

	createTestWallet(t, "balance_check", "customer", 12345)

	resp, err := getJSON(formatURL("/api/wallets/customer/balance_check/balance"))
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var balance struct {
		AccountID string `json:"account_id"`
		Balance   int64  `json:"balance"`
		Currency  string `json:"currency"`
		Status    string `json:"status"`
	}
	require.NoError(t, readJSONResponse(resp, &balance))
	assert.Equal(t, "balance_check", balance.AccountID)
	assert.Equal(t, int64(12345), balance.Balance)
	assert.Equal(t, "INR", balance.Currency)
	assert.Equal(t, "active", balance.Status)

	// Unknown wallet answers 404
	resp, err = getJSON(formatURL("/api/wallets/customer/ghost/balance"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

// TestE2E_DebitInsufficient verifies an over-debit is rejected and leaves no
// ledger entry.
func TestE2E_DebitInsufficient(t *testing.T) {
	cleanupTables(t)

	createTestWallet(t, "broke_customer", "customer", 50)

	resp, err := postJSON(formatURL("/api/wallets/debit"), map[string]interface{}{
		"account_id":   "broke_customer",
		"account_kind": "customer",
		"amount":       100,
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, int64(50), getBalanceFromDB(t, "broke_customer", "customer"))
	assert.Equal(t, 0, countLedgerEntries(t, "broke_customer"))
}
