package osonkassa

// pageEnvelope is the envelope every paged POS endpoint wraps its results in.
type pageEnvelope[T any] struct {
	Page Page[T] `json:"page"`
}

// Page holds one page of a paged POS listing.
type Page[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"totalCount"`
	TotalPages int `json:"totalPages"`
}

// SortOrder is the POS API sort descriptor carried in paged request bodies.
type SortOrder struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type loginRequest struct {
	UserName string `json:"userName"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// RemainsRequest is the request body of /report/inventory/remains.
type RemainsRequest struct {
	ManufacturerIDs []string    `json:"manufacturerIds"`
	OnlyActiveItems bool        `json:"onlyActiveItems"`
	PageNumber      int         `json:"pageNumber"`
	PageSize        int         `json:"pageSize"`
	SearchText      string      `json:"searchText"`
	SortOrders      []SortOrder `json:"sortOrders"`
	Source          int         `json:"source"`
}

// SalesRequest is the request body of /pos/sales/get.
type SalesRequest struct {
	DateFrom      string      `json:"dateFrom"`
	DateTo        string      `json:"dateTo,omitempty"`
	DeletedFilter int         `json:"deletedFilter"`
	PageNumber    int         `json:"pageNumber"`
	PageSize      int         `json:"pageSize"`
	SearchText    string      `json:"searchText"`
	SortOrders    []SortOrder `json:"sortOrders"`
}

// SaleItemsRequest is the request body of /pos/sales/items/get.
type SaleItemsRequest struct {
	SaleID string `json:"saleId"`
}

// RemainsItem is one inventory row as the POS API returns it.
type RemainsItem struct {
	ID                string  `json:"id"`
	BranchID          string  `json:"branchId"`
	Branch            string  `json:"branch"`
	ProductID         string  `json:"productId"`
	BatchID           string  `json:"batchId"`
	Code              int     `json:"code"`
	Product           string  `json:"product"`
	Manufacturer      string  `json:"manufacturer"`
	Country           string  `json:"country"`
	InternationalName string  `json:"internationalName"`
	PharmGroup        string  `json:"pharmGroup"`
	Category          string  `json:"category"`
	Unit              string  `json:"unit"`
	PieceCount        int     `json:"pieceCount"`
	Barcode           string  `json:"barcode"`
	Quantity          float64 `json:"quantity"`
	Quantities        struct {
		Units  float64 `json:"units"`
		Pieces float64 `json:"pieces"`
	} `json:"quantities"`
	BookedQuantity   float64 `json:"bookedQuantity"`
	BookedQuantities struct {
		Units  float64 `json:"units"`
		Pieces float64 `json:"pieces"`
	} `json:"bookedQuantities"`
	BuyPrice         float64 `json:"buyPrice"`
	SalePrice        float64 `json:"salePrice"`
	VAT              float64 `json:"vat"`
	Markup           float64 `json:"markup"`
	BuyAmount        float64 `json:"buyAmount"`
	SaleAmount       float64 `json:"saleAmount"`
	Series           string  `json:"series"`
	ShelfLife        string  `json:"shelfLife"`
	Supplier         string  `json:"supplier"`
	SupplyDate       string  `json:"supplyDate"`
	Location         string  `json:"location"`
	StorageCondition string  `json:"storageCondition"`
}

// Key implements Keyed for page-level deduplication.
func (r RemainsItem) Key() string { return r.ID }

// SaleHeader is one transaction header as returned by /pos/sales/get.
type SaleHeader struct {
	ID                 string  `json:"id"`
	Branch             string  `json:"branch"`
	SaleType           int     `json:"saleType"`
	SaleTypeString     string  `json:"saleTypeString"`
	Number             int     `json:"number"`
	Date               string  `json:"date"`
	Status             int     `json:"status"`
	ShiftNumber        int     `json:"shiftNumber"`
	CustomerName       string  `json:"customerName"`
	HasFiscalReceipt   bool    `json:"hasFiscalReceipt"`
	Notes              string  `json:"notes"`
	ItemsCount         int     `json:"itemsCount"`
	BuyAmount          float64 `json:"buyAmount"`
	DiscountAmount     float64 `json:"discountAmount"`
	DiscountPercentage float64 `json:"discountPercentage"`
	SaleAmount         float64 `json:"saleAmount"`
	SoldAmount         float64 `json:"soldAmount"`
	VATAmount          float64 `json:"vatAmount"`
	PaymentCash        float64 `json:"paymentCash"`
	PaymentBankCard    float64 `json:"paymentBankCard"`
	PaymentCredit      float64 `json:"paymentCredit"`
	PaymentUzcard      float64 `json:"paymentUzcard"`
	PaymentHumo        float64 `json:"paymentHumo"`
	PaymentOnline      float64 `json:"paymentOnline"`
	PaymentPayme       float64 `json:"paymentPayme"`
	PaymentClick       float64 `json:"paymentClick"`
	PaymentUzum        float64 `json:"paymentUzum"`
	PaymentInsurance   float64 `json:"paymentInsuranceCompany"`
	CreatedBy          string  `json:"createdBy"`
	ModifiedAt         string  `json:"modifiedAt"`
	ModifiedBy         string  `json:"modifiedBy"`
	IsDeleted          bool    `json:"isDeleted"`
}

func (s SaleHeader) Key() string { return s.ID }

// SaleItemData is one line item as returned by /pos/sales/items/get.
type SaleItemData struct {
	ID             string  `json:"id"`
	ProductID      string  `json:"productId"`
	Product        string  `json:"product"`
	Unit           string  `json:"unit"`
	Series         string  `json:"series"`
	Quantity       float64 `json:"quantity"`
	Price          float64 `json:"price"`
	DiscountAmount float64 `json:"discountAmount"`
	Amount         float64 `json:"amount"`
}

func (i SaleItemData) Key() string { return i.ID }

// Valid reports whether the item carries the minimum identifying fields.
// Malformed items are dropped at the fetch boundary instead of being
// persisted half-formed.
func (i SaleItemData) Valid() bool {
	return i.ID != "" && i.Product != ""
}
