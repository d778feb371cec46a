package wbapi

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Client exposes typed calls for every operation in the registry. All calls
// run through the retrying executor and therefore through the shared
// per-credential rate limiter.
type Client struct {
	exec  *Executor
	specs *Specs
	log   *zap.Logger
}

func NewClient(exec *Executor, specs *Specs, log *zap.Logger) *Client {
	return &Client{exec: exec, specs: specs, log: log}
}

// ---- list endpoints ----

type StockItem struct {
	LastChangeDate  string `json:"lastChangeDate"`
	WarehouseName   string `json:"warehouseName"`
	SupplierArticle string `json:"supplierArticle"`
	NmID            int64  `json:"nmId"`
	Barcode         string `json:"barcode"`
	Quantity        int    `json:"quantity"`
	InWayToClient   int    `json:"inWayToClient"`
	InWayFromClient int    `json:"inWayFromClient"`
	QuantityFull    int    `json:"quantityFull"`
	Category        string `json:"category"`
	TechSize        string `json:"techSize"`
	IsSupply        bool   `json:"isSupply"`
	IsRealization   bool   `json:"isRealization"`
	SCCode          string `json:"SCCode"`
}

func (c *Client) Stocks(ctx context.Context, credential string, dateFrom time.Time) ([]StockItem, error) {
	var items []StockItem
	if err := c.getJSON(ctx, credential, c.specs.ListStocks(dateFrom), &items); err != nil {
		return nil, err
	}
	return items, nil
}

type OrderItem struct {
	Date            string  `json:"date"`
	LastChangeDate  string  `json:"lastChangeDate"`
	WarehouseName   string  `json:"warehouseName"`
	WarehouseType   string  `json:"warehouseType"`
	CountryName     string  `json:"countryName"`
	OblastOkrugName string  `json:"oblastOkrugName"`
	RegionName      string  `json:"regionName"`
	SupplierArticle string  `json:"supplierArticle"`
	NmID            int64   `json:"nmId"`
	Barcode         string  `json:"barcode"`
	Category        string  `json:"category"`
	Subject         string  `json:"subject"`
	Brand           string  `json:"brand"`
	TechSize        string  `json:"techSize"`
	IncomeID        int64   `json:"incomeID"`
	IsSupply        bool    `json:"isSupply"`
	IsRealization   bool    `json:"isRealization"`
	TotalPrice      float64 `json:"totalPrice"`
	DiscountPercent int     `json:"discountPercent"`
	Spp             float64 `json:"spp"`
	FinishedPrice   float64 `json:"finishedPrice"`
	PriceWithDisc   float64 `json:"priceWithDisc"`
	IsCancel        bool    `json:"isCancel"`
	CancelDate      string  `json:"cancelDate"`
	Sticker         string  `json:"sticker"`
	GNumber         string  `json:"gNumber"`
	Srid            string  `json:"srid"`
}

func (c *Client) Orders(ctx context.Context, credential string, dateFrom time.Time, flag int) ([]OrderItem, error) {
	var items []OrderItem
	if err := c.getJSON(ctx, credential, c.specs.ListOrders(dateFrom, flag), &items); err != nil {
		return nil, err
	}
	return items, nil
}

type IncomeItem struct {
	IncomeID        int64   `json:"incomeId"`
	Number          string  `json:"number"`
	Date            string  `json:"date"`
	LastChangeDate  string  `json:"lastChangeDate"`
	SupplierArticle string  `json:"supplierArticle"`
	TechSize        string  `json:"techSize"`
	Barcode         string  `json:"barcode"`
	Quantity        int     `json:"quantity"`
	TotalPrice      float64 `json:"totalPrice"`
	DateClose       string  `json:"dateClose"`
	WarehouseName   string  `json:"warehouseName"`
	NmID            int64   `json:"nmId"`
	Status          string  `json:"status"`
}

func (c *Client) Incomes(ctx context.Context, credential string, dateFrom time.Time) ([]IncomeItem, error) {
	var items []IncomeItem
	if err := c.getJSON(ctx, credential, c.specs.ListIncomes(dateFrom), &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ---- product cards (cursor-paginated) ----

type CardItem struct {
	NmID        int64  `json:"nmID"`
	ImtID       int64  `json:"imtID"`
	NmUUID      string `json:"nmUUID"`
	SubjectID   int64  `json:"subjectID"`
	SubjectName string `json:"subjectName"`
	VendorCode  string `json:"vendorCode"`
	Brand       string `json:"brand"`
	Title       string `json:"title"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type cardsResponse struct {
	Cards  []CardItem `json:"cards"`
	Cursor struct {
		UpdatedAt string `json:"updatedAt"`
		NmID      int64  `json:"nmID"`
		Total     int    `json:"total"`
	} `json:"cursor"`
}

// CardsPage fetches one page of the card list. The returned Page carries the
// provider cursor (updatedAt watermark + last nmID) for the next call.
func (c *Client) CardsPage(ctx context.Context, credential string, cur Cursor, pageSize int) (Page[CardItem], error) {
	var resp cardsResponse
	if err := c.getJSON(ctx, credential, c.specs.ListCards(cur, pageSize), &resp); err != nil {
		return Page[CardItem]{}, err
	}
	return Page[CardItem]{
		Items: resp.Cards,
		Next:  Cursor{UpdatedAt: resp.Cursor.UpdatedAt, LastID: resp.Cursor.NmID},
		Total: resp.Cursor.Total,
	}, nil
}

// ---- goods prices ----

type GoodsSize struct {
	SizeID          int64   `json:"sizeID"`
	Price           float64 `json:"price"`
	DiscountedPrice float64 `json:"discountedPrice"`
}

type GoodsItem struct {
	NmID              int64       `json:"nmID"`
	VendorCode        string      `json:"vendorCode"`
	Sizes             []GoodsSize `json:"sizes"`
	Discount          int         `json:"discount"`
	ClubDiscount      int         `json:"clubDiscount"`
	EditableSizePrice bool        `json:"editableSizePrice"`
}

type goodsResponse struct {
	Data struct {
		ListGoods []GoodsItem `json:"listGoods"`
	} `json:"data"`
}

func (c *Client) GoodsPrices(ctx context.Context, credential string, limit int) ([]GoodsItem, error) {
	var resp goodsResponse
	if err := c.getJSON(ctx, credential, c.specs.ListGoodsPrices(limit), &resp); err != nil {
		return nil, err
	}
	return resp.Data.ListGoods, nil
}

// ---- financial report ----

type FinRow struct {
	RrdID            int64   `json:"rrd_id"`
	RrDt             string  `json:"rr_dt"`
	NmID             int64   `json:"nm_id"`
	OrderDt          string  `json:"order_dt"`
	SaleDt           string  `json:"sale_dt"`
	ShkID            int64   `json:"shk_id"`
	TsName           string  `json:"ts_name"`
	SupplierOperName string  `json:"supplier_oper_name"`
	RetailPrice      float64 `json:"retail_price"`
	RetailAmount     float64 `json:"retail_amount"`
	PpvzForPay       float64 `json:"ppvz_for_pay"`
	DeliveryRub      float64 `json:"delivery_rub"`
	StorageFee       float64 `json:"storage_fee"`
	Deduction        float64 `json:"deduction"`
	Acceptance       float64 `json:"acceptance"`
}

// FinReportPage fetches one page of the realization report, keyed by the
// rrd_id watermark of the previous page (0 for the first).
func (c *Client) FinReportPage(ctx context.Context, credential string, from, to time.Time, rrdID int64) ([]FinRow, error) {
	var rows []FinRow
	if err := c.getJSON(ctx, credential, c.specs.FinReport(from, to, rrdID), &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

// ---- paid storage report ----

type storageCreateResponse struct {
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

// CreateStorageReport submits a paid-storage report job and returns the
// server-side tracking id.
func (c *Client) CreateStorageReport(ctx context.Context, credential string, from, to time.Time) (string, error) {
	var resp storageCreateResponse
	if err := c.getJSON(ctx, credential, c.specs.CreateStorageReport(from, to), &resp); err != nil {
		return "", err
	}
	if resp.Data.TaskID == "" {
		return "", fmt.Errorf("%s: empty taskId in acknowledgement", OpCreateStorageRpt)
	}
	return resp.Data.TaskID, nil
}

// FetchStorageReport downloads the paid-storage artifact. The body is raw:
// a JSON array when ready, a JSON object while generation is in progress.
func (c *Client) FetchStorageReport(ctx context.Context, credential, taskID string) (*Response, error) {
	return c.exec.Do(ctx, credential, c.specs.FetchStorageReport(taskID))
}

// ---- analytics reports ----

// GenerateAnalyticsReport submits a CSV analytics export under the
// caller-generated job id. Any 2xx acknowledgement means generation started.
func (c *Client) GenerateAnalyticsReport(ctx context.Context, credential, jobID, reportType string, from, to time.Time) error {
	_, err := c.exec.Do(ctx, credential, c.specs.GenerateAnalyticsReport(jobID, reportType, from, to))
	return err
}

// FetchAnalyticsReport downloads the generated artifact: ZIP bytes when
// ready, a JSON/text marker otherwise.
func (c *Client) FetchAnalyticsReport(ctx context.Context, credential, jobID string) (*Response, error) {
	return c.exec.Do(ctx, credential, c.specs.FetchAnalyticsReport(jobID))
}

// ---- adverts ----

type AdvertRef struct {
	AdvertID   int64  `json:"advertId"`
	ChangeTime string `json:"changeTime"`
}

type advertGroup struct {
	Type       int         `json:"type"`
	Status     int         `json:"status"`
	AdvertList []AdvertRef `json:"advert_list"`
}

type advertsResponse struct {
	Adverts []advertGroup `json:"adverts"`
}

// Advert is one campaign flattened out of the grouped list response.
type Advert struct {
	AdvertID   int64
	Status     int
	Type       int
	ChangeTime string
}

func (c *Client) Adverts(ctx context.Context, credential string) ([]Advert, error) {
	var resp advertsResponse
	if err := c.getJSON(ctx, credential, c.specs.ListAdverts(), &resp); err != nil {
		return nil, err
	}
	var out []Advert
	for _, g := range resp.Adverts {
		for _, ref := range g.AdvertList {
			out = append(out, Advert{
				AdvertID:   ref.AdvertID,
				Status:     g.Status,
				Type:       g.Type,
				ChangeTime: ref.ChangeTime,
			})
		}
	}
	return out, nil
}

type AdvertNmStat struct {
	NmID     int64   `json:"nmId"`
	Orders   int     `json:"orders"`
	Atbs     int     `json:"atbs"`
	Canceled int     `json:"canceled"`
	Clicks   int     `json:"clicks"`
	Cpc      float64 `json:"cpc"`
	Cr       float64 `json:"cr"`
	Ctr      float64 `json:"ctr"`
	Shks     int     `json:"shks"`
	Sum      float64 `json:"sum"`
	SumPrice float64 `json:"sum_price"`
	Views    int     `json:"views"`
}

type AdvertAppStat struct {
	AppType int            `json:"appType"`
	Nms     []AdvertNmStat `json:"nms"`
}

type AdvertDayStat struct {
	Date string          `json:"date"`
	Apps []AdvertAppStat `json:"apps"`
}

type AdvertStat struct {
	AdvertID int64           `json:"advertId"`
	Days     []AdvertDayStat `json:"days"`
}

func (c *Client) AdvertFullStats(ctx context.Context, credential string, ids []int64, from, to time.Time) ([]AdvertStat, error) {
	var stats []AdvertStat
	if err := c.getJSON(ctx, credential, c.specs.AdvertFullStats(ids, from, to), &stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ---- region sales ----

type RegionSaleRow struct {
	NmID                     int64   `json:"nmID"`
	CityName                 string  `json:"cityName"`
	CountryName              string  `json:"countryName"`
	FoName                   string  `json:"foName"`
	RegionName               string  `json:"regionName"`
	Article                  string  `json:"sa"`
	SaleInvoiceCostPrice     float64 `json:"saleInvoiceCostPrice"`
	SaleInvoiceCostPricePerc float64 `json:"saleInvoiceCostPricePerc"`
	SaleItemInvoiceQty       int     `json:"saleItemInvoiceQty"`
}

type regionSalesResponse struct {
	Report []RegionSaleRow `json:"report"`
}

func (c *Client) RegionSales(ctx context.Context, credential string, day time.Time) ([]RegionSaleRow, error) {
	var resp regionSalesResponse
	if err := c.getJSON(ctx, credential, c.specs.RegionSales(day), &resp); err != nil {
		return nil, err
	}
	return resp.Report, nil
}

// getJSON runs the spec and decodes the JSON body into out. A NotFound
// response leaves out untouched.
func (c *Client) getJSON(ctx context.Context, credential string, spec RequestSpec, out any) error {
	resp, err := c.exec.Do(ctx, credential, spec)
	if err != nil {
		return err
	}
	if resp.NotFound {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", spec.Op, err)
	}
	return nil
}
