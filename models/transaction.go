package models

// Status values used by the external transaction store.
const (
	StatusCompleted = "COMPLETED"
	StatusPending   = "PENDING"
)

// Transaction is a row from the external transaction store.
//
// Every field is carried as a string: date columns are formatted as RFC 3339
// and NULL columns become "". The search query only fills the summary fields;
// the detail query fills all of them.
type Transaction struct {
	TxnID             string `json:"txnId"`
	TxnType           string `json:"txnType"`
	TxnAmount         string `json:"txnAmount"`
	TxnStatus         string `json:"txnStatus"`
	TxnDate           string `json:"txnDate"`
	AccountNumber     string `json:"accountNumber"`
	ReferenceNumber   string `json:"referenceNumber"`
	MerchantName      string `json:"merchantName"`
	MerchantID        string `json:"merchantId"`
	TerminalID        string `json:"terminalId"`
	AuthCode          string `json:"authCode"`
	ResponseCode      string `json:"responseCode"`
	ResponseMessage   string `json:"responseMessage"`
	CardNumberMasked  string `json:"cardNumberMasked"`
	ExpiryDate        string `json:"expiryDate"`
	CreatedDate       string `json:"createdDate"`
	UpdatedDate       string `json:"updatedDate"`
	ReversalStatus    string `json:"reversalStatus"`
	ReversalDate      string `json:"reversalDate"`
	ReversalReference string `json:"reversalReference"`
}

// SearchCriteria holds the optional filters of a transaction search. Empty
// fields are not part of the filter.
type SearchCriteria struct {
	TxnID           string `json:"txnId,omitempty"`
	AccountNumber   string `json:"accountNumber,omitempty"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
	DateFrom        string `json:"dateFrom,omitempty"` // YYYY-MM-DD
	DateTo          string `json:"dateTo,omitempty"`   // YYYY-MM-DD
}

// IsEmpty reports whether no criterion was supplied.
func (c SearchCriteria) IsEmpty() bool {
	return c.TxnID == "" && c.AccountNumber == "" && c.ReferenceNumber == "" &&
		c.DateFrom == "" && c.DateTo == ""
}

// ReversalResult is the outcome reported by the management interface when a
// reversal is initiated.
type ReversalResult struct {
	Success    bool   `json:"success"`
	ReversalID string `json:"reversalId"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}
