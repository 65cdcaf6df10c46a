package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/arkantrust/abassist/models"
	"github.com/arkantrust/abassist/reversal"
	"github.com/arkantrust/abassist/transactions"
	"github.com/arkantrust/abassist/views"
)

const reversalPath = "/tran-reversal"

func transactionURL(id string) string {
	return reversalPath + "/transaction/" + url.PathEscape(id)
}

// reversalHome handles GET /tran-reversal.
func (h *Handler) reversalHome(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, views.PageReversalHome, views.Context{
		"store_available": h.txns.Available(),
		"criteria":        models.SearchCriteria{},
	})
}

// search handles POST /tran-reversal/search.
func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, reversalPath, FlashError, "Invalid search request.")
		return
	}

	criteria := models.SearchCriteria{
		TxnID:           strings.TrimSpace(r.PostForm.Get("txn_id")),
		AccountNumber:   strings.TrimSpace(r.PostForm.Get("account_number")),
		ReferenceNumber: strings.TrimSpace(r.PostForm.Get("reference_number")),
		DateFrom:        strings.TrimSpace(r.PostForm.Get("date_from")),
		DateTo:          strings.TrimSpace(r.PostForm.Get("date_to")),
	}

	items, err := h.txns.Search(r.Context(), criteria)
	if errors.Is(err, transactions.ErrNoCriteria) {
		h.redirect(w, r, reversalPath, FlashWarning, "Please provide at least one search criterion.")
		return
	}

	h.render(w, r, http.StatusOK, views.PageReversalResults, views.Context{
		"transactions": items,
		"criteria":     criteria,
	})
}

// transaction handles GET /tran-reversal/transaction/{id}.
func (h *Handler) transaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	txn, err := h.txns.Get(r.Context(), id)
	if err != nil {
		h.redirect(w, r, reversalPath, FlashError, fmt.Sprintf("Transaction %s not found.", id))
		return
	}

	h.render(w, r, http.StatusOK, views.PageTransaction, views.Context{
		"txn":        txn,
		"reversible": txn.TxnStatus == models.StatusCompleted && txn.ReversalStatus != models.StatusCompleted,
	})
}

// initiateReversal handles POST /tran-reversal/initiate-reversal/{id}.
func (h *Handler) initiateReversal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	detail := transactionURL(id)

	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, detail, FlashError, "Invalid reversal request.")
		return
	}

	res, err := h.reversals.Initiate(r.Context(),
		id,
		r.PostForm.Get("reversal_reason"),
		r.PostForm.Get("reversal_notes"),
	)
	switch {
	case err == nil:
		h.redirect(w, r, detail, FlashSuccess,
			fmt.Sprintf("Reversal initiated successfully. Reversal ID: %s", res.ReversalID))
	case errors.Is(err, reversal.ErrReasonRequired):
		h.redirect(w, r, detail, FlashError, "Reversal reason is required.")
	case errors.Is(err, reversal.ErrNotFound):
		h.redirect(w, r, reversalPath, FlashError, fmt.Sprintf("Transaction %s not found.", id))
	case errors.Is(err, reversal.ErrAlreadyReversed):
		h.redirect(w, r, detail, FlashWarning, "Transaction has already been reversed.")
	case errors.Is(err, reversal.ErrNotCompleted):
		h.redirect(w, r, detail, FlashWarning, "Only completed transactions can be reversed.")
	default:
		loggerFrom(r.Context(), h.logger).Error("error initiating reversal", "txn_id", id, "error", err)
		h.redirect(w, r, detail, FlashError, fmt.Sprintf("Error initiating reversal: %v", err))
	}
}
