package wbapi

import (
	"fmt"
	"net/url"
	"time"
)

// Operation names one seller-API endpoint. Every call site goes through the
// spec builder below instead of assembling URLs ad hoc.
type Operation string

const (
	OpListStocks        Operation = "list-stocks"
	OpListOrders        Operation = "list-orders"
	OpListIncomes       Operation = "list-incomes"
	OpListCards         Operation = "list-cards"
	OpListGoodsPrices   Operation = "list-goods-prices"
	OpFinReport         Operation = "fin-report"
	OpCreateStorageRpt  Operation = "create-storage-report"
	OpFetchStorageRpt   Operation = "fetch-storage-report"
	OpGenerateAnalytics Operation = "generate-analytics-report"
	OpFetchAnalytics    Operation = "fetch-analytics-report"
	OpListAdverts       Operation = "list-adverts"
	OpAdvertFullStats   Operation = "advert-full-stats"
	OpRegionSales       Operation = "region-sales"
)

// ResponseKind tells the executor how to treat the response body.
type ResponseKind int

const (
	KindJSON ResponseKind = iota
	KindBytes
)

// RequestSpec is one fully-described HTTP call: method, URL, parameters and
// how to read the answer. Specs are value objects; the executor never
// inspects the operation to decide anything endpoint-specific.
type RequestSpec struct {
	Op         Operation
	Method     string
	URL        string
	Query      url.Values
	Body       any // JSON-encoded when non-nil
	Kind       ResponseKind
	NotFoundOK bool // 404 means "absent", not an error
}

// Hosts groups the API host per endpoint family. Overridable for tests.
type Hosts struct {
	Statistics string
	Analytics  string
	Advert     string
	Content    string
	Prices     string
	Finance    string
}

func DefaultHosts() Hosts {
	return Hosts{
		Statistics: "https://statistics-api.wildberries.ru",
		Analytics:  "https://seller-analytics-api.wildberries.ru",
		Advert:     "https://advert-api.wildberries.ru",
		Content:    "https://content-api.wildberries.ru",
		Prices:     "https://discounts-prices-api.wildberries.ru",
		Finance:    "https://finance-api.wildberries.ru",
	}
}

// Specs builds RequestSpec values for every supported operation. It replaces
// the one giant type-switch the old pipeline grew around: adding an endpoint
// means adding a method here, nothing else changes.
type Specs struct {
	hosts Hosts
}

func NewSpecs(hosts Hosts) *Specs { return &Specs{hosts: hosts} }

const dateLayout = "2006-01-02"

func (s *Specs) ListStocks(dateFrom time.Time) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", dateFrom.Format(time.RFC3339))
	return RequestSpec{
		Op:     OpListStocks,
		Method: "GET",
		URL:    s.hosts.Statistics + "/api/v1/supplier/stocks",
		Query:  q,
	}
}

func (s *Specs) ListOrders(dateFrom time.Time, flag int) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", dateFrom.Format(time.RFC3339))
	q.Set("flag", fmt.Sprint(flag))
	return RequestSpec{
		Op:     OpListOrders,
		Method: "GET",
		URL:    s.hosts.Statistics + "/api/v1/supplier/orders",
		Query:  q,
	}
}

func (s *Specs) ListIncomes(dateFrom time.Time) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", dateFrom.Format(dateLayout))
	return RequestSpec{
		Op:     OpListIncomes,
		Method: "GET",
		URL:    s.hosts.Statistics + "/api/v1/supplier/incomes",
		Query:  q,
	}
}

// cardCursor mirrors the provider's cursor object for the card list endpoint.
type cardListBody struct {
	Settings cardListSettings `json:"settings"`
}

type cardListSettings struct {
	Cursor cardListCursor `json:"cursor"`
	Filter cardListFilter `json:"filter"`
}

type cardListCursor struct {
	Limit     int    `json:"limit"`
	UpdatedAt string `json:"updatedAt,omitempty"`
	NmID      int64  `json:"nmID,omitempty"`
}

type cardListFilter struct {
	WithPhoto int `json:"withPhoto"`
}

func (s *Specs) ListCards(cur Cursor, pageSize int) RequestSpec {
	return RequestSpec{
		Op:     OpListCards,
		Method: "POST",
		URL:    s.hosts.Content + "/content/v2/get/cards/list",
		Body: cardListBody{Settings: cardListSettings{
			Cursor: cardListCursor{Limit: pageSize, UpdatedAt: cur.UpdatedAt, NmID: cur.LastID},
			Filter: cardListFilter{WithPhoto: -1},
		}},
	}
}

func (s *Specs) ListGoodsPrices(limit int) RequestSpec {
	q := url.Values{}
	q.Set("limit", fmt.Sprint(limit))
	return RequestSpec{
		Op:     OpListGoodsPrices,
		Method: "GET",
		URL:    s.hosts.Prices + "/api/v2/list/goods/filter",
		Query:  q,
	}
}

func (s *Specs) FinReport(from, to time.Time, rrdID int64) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", from.Format(dateLayout))
	q.Set("dateTo", to.Format(dateLayout))
	q.Set("rrdid", fmt.Sprint(rrdID))
	return RequestSpec{
		Op:     OpFinReport,
		Method: "GET",
		URL:    s.hosts.Statistics + "/api/v5/supplier/reportDetailByPeriod",
		Query:  q,
	}
}

func (s *Specs) CreateStorageReport(from, to time.Time) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", from.Format(dateLayout))
	q.Set("dateTo", to.Format(dateLayout))
	return RequestSpec{
		Op:     OpCreateStorageRpt,
		Method: "GET",
		URL:    s.hosts.Analytics + "/api/v1/paid_storage",
		Query:  q,
	}
}

func (s *Specs) FetchStorageReport(taskID string) RequestSpec {
	return RequestSpec{
		Op:         OpFetchStorageRpt,
		Method:     "GET",
		URL:        s.hosts.Analytics + "/api/v1/paid_storage/tasks/" + url.PathEscape(taskID) + "/download",
		Kind:       KindBytes,
		NotFoundOK: true,
	}
}

// analyticsReportBody is the generation request for CSV analytics exports.
type analyticsReportBody struct {
	ID         string          `json:"id"`
	ReportType string          `json:"reportType"`
	UserName   string          `json:"userReportName"`
	Params     analyticsParams `json:"params"`
}

type analyticsParams struct {
	StartDate     string           `json:"startDate,omitempty"`
	EndDate       string           `json:"endDate,omitempty"`
	CurrentPeriod *analyticsPeriod `json:"currentPeriod,omitempty"`
	StockType     *string          `json:"stockType,omitempty"`
	SkipDeletedNm bool             `json:"skipDeletedNm"`
}

type analyticsPeriod struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Analytics report kinds accepted by GenerateAnalyticsReport.
const (
	ReportDetailHistory = "DETAIL_HISTORY_REPORT"
	ReportStockHistory  = "STOCK_HISTORY_REPORT_CSV"
)

func (s *Specs) GenerateAnalyticsReport(jobID, reportType string, from, to time.Time) RequestSpec {
	body := analyticsReportBody{
		ID:         jobID,
		ReportType: reportType,
		UserName:   jobID,
	}
	switch reportType {
	case ReportStockHistory:
		empty := ""
		body.Params = analyticsParams{
			CurrentPeriod: &analyticsPeriod{Start: from.Format(dateLayout), End: to.Format(dateLayout)},
			StockType:     &empty,
			SkipDeletedNm: true,
		}
	default:
		body.Params = analyticsParams{
			StartDate:     from.Format(dateLayout),
			EndDate:       to.Format(dateLayout),
			SkipDeletedNm: true,
		}
	}
	return RequestSpec{
		Op:     OpGenerateAnalytics,
		Method: "POST",
		URL:    s.hosts.Analytics + "/api/v2/nm-report/downloads",
		Body:   body,
	}
}

func (s *Specs) FetchAnalyticsReport(jobID string) RequestSpec {
	return RequestSpec{
		Op:         OpFetchAnalytics,
		Method:     "GET",
		URL:        s.hosts.Analytics + "/api/v2/nm-report/downloads/file/" + url.PathEscape(jobID),
		Kind:       KindBytes,
		NotFoundOK: true,
	}
}

func (s *Specs) ListAdverts() RequestSpec {
	return RequestSpec{
		Op:     OpListAdverts,
		Method: "GET",
		URL:    s.hosts.Advert + "/adv/v1/promotion/count",
	}
}

func (s *Specs) AdvertFullStats(ids []int64, from, to time.Time) RequestSpec {
	q := url.Values{}
	q.Set("ids", joinInt64(ids, ","))
	q.Set("beginDate", from.Format(dateLayout))
	q.Set("endDate", to.Format(dateLayout))
	return RequestSpec{
		Op:     OpAdvertFullStats,
		Method: "GET",
		URL:    s.hosts.Advert + "/adv/v3/fullstats",
		Query:  q,
	}
}

func (s *Specs) RegionSales(day time.Time) RequestSpec {
	q := url.Values{}
	q.Set("dateFrom", day.Format(dateLayout))
	q.Set("dateTo", day.Format(dateLayout))
	return RequestSpec{
		Op:     OpRegionSales,
		Method: "GET",
		URL:    s.hosts.Analytics + "/api/v1/analytics/region-sale",
		Query:  q,
	}
}

func joinInt64(ids []int64, sep string) string {
	out := ""
	for i, id := range ids {
		if i > 0 {
			out += sep
		}
		out += fmt.Sprint(id)
	}
	return out
}
