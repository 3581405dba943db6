package domain

// Field names used by the view composer. They are the JSON names of the records.
const (
	FieldSymbol        = "symbol"
	FieldName          = "name"
	FieldAssetType     = "assetType"
	FieldCurrentPrice  = "currentPrice"
	FieldChangePercent = "changePercent"
	FieldChangeAmount  = "changeAmount"
	FieldVolume        = "volume"
	FieldMarketCap     = "marketCap"

	FieldID             = "id"
	FieldTitle          = "title"
	FieldCategory       = "category"
	FieldSource         = "source"
	FieldTimestamp      = "timestamp"
	FieldSummary        = "summary"
	FieldAffectedAssets = "affectedAssets"

	FieldMessage  = "message"
	FieldSeverity = "severity"
	FieldAsset    = "asset"
	FieldImpact   = "impact"

	FieldAssetID    = "assetId"
	FieldPercentage = "percentage"
	FieldValue      = "value"
	FieldQuantity   = "quantity"
)

// text reports a string field; empty strings count as absent.
func text(s string) (any, bool) {
	return s, s != ""
}

// Lookup returns the value of a named field
func (a Asset) Lookup(field string) (any, bool) {
	switch field {
	case FieldSymbol:
		return text(a.Symbol)
	case FieldName:
		return text(a.Name)
	case FieldAssetType:
		return text(string(a.AssetType))
	case FieldCurrentPrice:
		return a.CurrentPrice, true
	case FieldChangePercent:
		return a.ChangePercent, true
	case FieldChangeAmount:
		return a.ChangeAmount, true
	case FieldVolume:
		return a.Volume, true
	case FieldMarketCap:
		return a.MarketCap, true
	}
	return nil, false
}

// Lookup returns the value of a named field
func (n NewsItem) Lookup(field string) (any, bool) {
	switch field {
	case FieldID:
		return text(n.ID)
	case FieldTitle:
		return text(n.Title)
	case FieldCategory:
		return text(n.Category)
	case FieldSource:
		return text(n.Source)
	case FieldTimestamp:
		return text(n.Timestamp)
	case FieldSummary:
		return text(n.Summary)
	case FieldAffectedAssets:
		return n.AffectedAssets, len(n.AffectedAssets) > 0
	}
	return nil, false
}

// Lookup returns the value of a named field
func (a Alert) Lookup(field string) (any, bool) {
	switch field {
	case FieldID:
		return text(a.ID)
	case FieldMessage:
		return text(a.Message)
	case FieldSeverity:
		return text(string(a.Severity))
	case FieldTimestamp:
		return text(a.Timestamp)
	case FieldAsset:
		return text(a.Asset)
	case FieldImpact:
		return text(a.Impact)
	}
	return nil, false
}

// Lookup returns the value of a named field
func (h Holding) Lookup(field string) (any, bool) {
	switch field {
	case FieldAssetID, FieldSymbol:
		return text(h.AssetID)
	case FieldQuantity:
		return h.Quantity, true
	case FieldValue:
		return h.Value, true
	case FieldChangePercent:
		return h.ChangePercent, true
	}
	return nil, false
}

// Lookup returns the value of a named field
func (e Event) Lookup(field string) (any, bool) {
	switch field {
	case FieldID:
		return text(e.ID)
	case FieldTitle:
		return text(e.Title)
	case FieldTimestamp, "date":
		return text(e.Date)
	case "type":
		return text(e.Type)
	}
	return nil, false
}

// Lookup returns the value of a named field
func (a AllocationItem) Lookup(field string) (any, bool) {
	switch field {
	case FieldAssetID, FieldSymbol:
		return text(a.AssetID)
	case FieldPercentage:
		return a.Percentage, true
	case FieldValue:
		return a.Value, true
	}
	return nil, false
}
