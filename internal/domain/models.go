// Package domain provides the market data models exchanged with the upstream API
// and served to the dashboard. JSON field names are the external contract.
package domain

// AssetType distinguishes the two asset universes
type AssetType string

const (
	AssetTypeStock  AssetType = "stock"
	AssetTypeCrypto AssetType = "crypto"
)

// Severity is an alert severity level. Upstream may send levels outside this set.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// SeverityOrder is the canonical order alerts are presented in
var SeverityOrder = []string{
	string(SeverityCritical),
	string(SeverityHigh),
	string(SeverityMedium),
	string(SeverityLow),
}

// NewsCategories lists the categories the news view offers as filters
var NewsCategories = []string{"macro", "technology", "crypto", "earnings", "regulatory", "market"}

// PricePoint is one sample of an asset's price history
type PricePoint struct {
	Timestamp string  `json:"timestamp"` // ISO-8601, kept verbatim
	Price     float64 `json:"price"`
}

// Asset is a stock or crypto asset with its recent price history (oldest first)
type Asset struct {
	Symbol        string       `json:"symbol"`
	Name          string       `json:"name"`
	AssetType     AssetType    `json:"assetType"`
	CurrentPrice  float64      `json:"currentPrice"`
	ChangePercent float64      `json:"changePercent"`
	ChangeAmount  float64      `json:"changeAmount"`
	Volume        float64      `json:"volume"`
	MarketCap     float64      `json:"marketCap"`
	PriceHistory  []PricePoint `json:"priceHistory"`
}

// Holding is a single portfolio position
type Holding struct {
	AssetID       string  `json:"assetId"` // matches Asset.Symbol
	Quantity      float64 `json:"quantity"`
	AvgBuyPrice   float64 `json:"avgBuyPrice"`
	Value         float64 `json:"value"`
	ChangePercent float64 `json:"changePercent"`
}

// Portfolio is a user's holdings snapshot
type Portfolio struct {
	UserID             string    `json:"userId"`
	TotalValue         float64   `json:"totalValue"`
	TotalChange        float64   `json:"totalChange"`
	TotalChangePercent float64   `json:"totalChangePercent"`
	Assets             []Holding `json:"assets"`
	Watchlist          []string  `json:"watchlist"`
}

// NewsItem is a market story
type NewsItem struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Category       string   `json:"category"`
	Source         string   `json:"source"`
	Timestamp      string   `json:"timestamp"`
	Summary        string   `json:"summary,omitempty"`
	AffectedAssets []string `json:"affectedAssets,omitempty"`
}

// Alert is a market alert
type Alert struct {
	ID        string   `json:"id"`
	Message   string   `json:"message"`
	Severity  Severity `json:"severity"`
	Timestamp string   `json:"timestamp"`
	Asset     string   `json:"asset,omitempty"`
	Impact    string   `json:"impact,omitempty"`
}

// TrendPoint is one timestamped total-portfolio-value sample
type TrendPoint struct {
	Timestamp string  `json:"timestamp"`
	Value     float64 `json:"value"`
}

// AllocationItem is one entry of the upstream allocation breakdown
type AllocationItem struct {
	AssetID    string  `json:"assetId"`
	Percentage float64 `json:"percentage"`
	Value      float64 `json:"value,omitempty"`
}

// Performer is a best or worst performing holding
type Performer struct {
	AssetID       string  `json:"assetId"`
	ChangePercent float64 `json:"changePercent"`
	CurrentPrice  float64 `json:"currentPrice"`
}

// Performance is the upstream portfolio performance payload
type Performance struct {
	AssetAllocation []AllocationItem `json:"assetAllocation"`
	BestPerformer   *Performer       `json:"bestPerformer,omitempty"`
	WorstPerformer  *Performer       `json:"worstPerformer,omitempty"`
}

// Event is an upcoming market event (earnings date, macro release)
type Event struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Date        string `json:"date"`
	Type        string `json:"type,omitempty"`
	Description string `json:"description,omitempty"`
}

// Insight is an upstream-generated market insight
type Insight struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Summary    string  `json:"summary,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
}
