package banking

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *fixture) {
	f := newFixture(t)
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), f.svc)
	r := chi.NewRouter()
	r.Route("/rpc", h.MountRoutes)
	return r, f
}

func call(router http.Handler, method, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/rpc/"+method, strings.NewReader(body))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func TestReconciliationEndpoints(t *testing.T) {
	router, f := newTestRouter(t)

	rr := call(router, "CreateBankAccount", `{"organization_id":"`+f.org.String()+`","name":"Operating",
		"account_number":"ACC-1","currency":"USD","opening_balance":"1000.00"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var acc accountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &acc))

	txBody := `{"bank_account_id":"` + acc.ID + `","transaction_date":"2025-03-03","transaction_type":"withdrawal","amount":"153.00"}`
	rr = call(router, "CreateBankTransaction", txBody, "Idempotency-Key", "hdr-1")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var txn transactionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &txn))

	rr = call(router, "CreateBankTransaction", txBody, "Idempotency-Key", "hdr-1")
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = call(router, "CreateBankReconciliation", `{"bank_account_id":"`+acc.ID+`","reconciliation_date":"2025-03-31",
		"statement_balance":"1000.00","outstanding_deposits":"50.00","outstanding_checks":"200.00",
		"bank_charges":"5.00","interest_earned":"2.00"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var rec reconciliationResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	require.Equal(t, "847.00", rec.AdjustedBalance)
	require.Equal(t, "847.00", rec.BookBalance)
	require.Equal(t, "0.00", rec.Difference)

	rr = call(router, "MatchTransactions", `{"reconciliation_id":"`+rec.ID+`","matches":[{"transaction_id":"`+txn.ID+`","statement_item_index":0}]}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var match matchResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &match))
	require.Equal(t, []string{txn.ID}, match.Matched)
	require.Equal(t, "in_progress", match.Reconciliation.Status)

	rr = call(router, "DeleteBankTransaction", `{"id":"`+txn.ID+`"}`)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())

	rr = call(router, "CompleteReconciliation", `{"id":"`+rec.ID+`"}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	rr = call(router, "CompleteReconciliation", `{"id":"`+rec.ID+`"}`)
	require.Equal(t, http.StatusConflict, rr.Code, rr.Body.String())
}

func TestBankEndpointsRejectBadInput(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := call(router, "GetBankAccount", `{"id":"not-a-uuid"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(router, "CreateBankTransaction", `{"bank_account_id":"7b7d4c1e-9f55-4e0b-a3a6-3f0f1f0b5f11",
		"transaction_date":"2025-03-03","transaction_type":"refund","amount":"1.00"}`)
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = call(router, "GetCheque", `{"id":"7b7d4c1e-9f55-4e0b-a3a6-3f0f1f0b5f11"}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
}
