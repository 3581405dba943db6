package portfolio

import (
	"strconv"

	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/utils"
)

// position is a holding joined with its asset's price history
type position struct {
	assetID  string
	quantity float64
	history  []domain.PricePoint
}

// resolvePositions joins holdings to assets by symbol, keeping holdings order.
// Holdings without a matching asset are returned separately.
func resolvePositions(holdings []domain.Holding, assets []domain.Asset) (resolved []position, unresolved []string) {
	bySymbol := make(map[string]*domain.Asset, len(assets))
	for i := range assets {
		if _, dup := bySymbol[assets[i].Symbol]; !dup {
			bySymbol[assets[i].Symbol] = &assets[i]
		}
	}

	for _, h := range holdings {
		asset, ok := bySymbol[h.AssetID]
		if !ok {
			unresolved = append(unresolved, h.AssetID)
			continue
		}
		resolved = append(resolved, position{
			assetID:  h.AssetID,
			quantity: h.Quantity,
			history:  asset.PriceHistory,
		})
	}
	return resolved, unresolved
}

// ComputeTrend reconstructs the portfolio value curve from per-asset price histories.
//
// Histories are aligned by index, not by timestamp. The curve is as long as the
// longest history among holdings that resolve to an asset. At each index the value
// is the sum of price x quantity over holdings that have a sample there, rounded
// to cents, stamped with the timestamp of the first such holding. Indices where
// nothing contributed a timestamp are skipped.
//
// A nil portfolio, no holdings or no assets yield an empty trend. Inputs are not modified.
func ComputeTrend(p *domain.Portfolio, assets []domain.Asset) []domain.TrendPoint {
	trend := make([]domain.TrendPoint, 0)
	if p == nil || len(p.Assets) == 0 || len(assets) == 0 {
		return trend
	}

	positions, _ := resolvePositions(p.Assets, assets)

	length := 0
	for _, pos := range positions {
		length = max(length, len(pos.history))
	}

	for i := 0; i < length; i++ {
		var total float64
		var timestamp string
		for _, pos := range positions {
			if i >= len(pos.history) {
				continue
			}
			sample := pos.history[i]
			total += sample.Price * pos.quantity
			if timestamp == "" {
				timestamp = sample.Timestamp
			}
		}
		if timestamp == "" {
			continue
		}
		trend = append(trend, domain.TrendPoint{
			Timestamp: timestamp,
			Value:     utils.Round2(total),
		})
	}
	return trend
}

// MisalignmentKind classifies a data-quality problem in the trend inputs
type MisalignmentKind string

const (
	// MisalignmentUnresolved means the holding has no matching asset
	MisalignmentUnresolved MisalignmentKind = "unresolved"
	// MisalignmentLength means the history is shorter or longer than the reference
	MisalignmentLength MisalignmentKind = "length"
	// MisalignmentTimestamp means the history disagrees with the reference at an index
	MisalignmentTimestamp MisalignmentKind = "timestamp"
)

// Misalignment describes one holding whose history does not line up with the reference
type Misalignment struct {
	AssetID  string           `json:"assetId"`
	Kind     MisalignmentKind `json:"kind"`
	Index    int              `json:"index,omitempty"`
	Expected string           `json:"expected,omitempty"`
	Actual   string           `json:"actual,omitempty"`
}

// CheckAlignment reports the holdings whose price histories would be mixed
// incorrectly by ComputeTrend. The reference is the longest resolvable history
// (first in holdings order on ties). For timestamp disagreements only the first
// differing index of each holding is reported. It does not affect ComputeTrend.
func CheckAlignment(p *domain.Portfolio, assets []domain.Asset) []Misalignment {
	issues := make([]Misalignment, 0)
	if p == nil || len(p.Assets) == 0 {
		return issues
	}

	positions, unresolved := resolvePositions(p.Assets, assets)
	for _, id := range unresolved {
		issues = append(issues, Misalignment{AssetID: id, Kind: MisalignmentUnresolved})
	}
	if len(positions) == 0 {
		return issues
	}

	ref := positions[0]
	for _, pos := range positions[1:] {
		if len(pos.history) > len(ref.history) {
			ref = pos
		}
	}

	for _, pos := range positions {
		if pos.assetID == ref.assetID {
			continue
		}
		if len(pos.history) != len(ref.history) {
			issues = append(issues, Misalignment{
				AssetID:  pos.assetID,
				Kind:     MisalignmentLength,
				Expected: strconv.Itoa(len(ref.history)),
				Actual:   strconv.Itoa(len(pos.history)),
			})
		}
		for i, sample := range pos.history {
			if want := ref.history[i].Timestamp; sample.Timestamp != want {
				issues = append(issues, Misalignment{
					AssetID:  pos.assetID,
					Kind:     MisalignmentTimestamp,
					Index:    i,
					Expected: want,
					Actual:   sample.Timestamp,
				})
				break
			}
		}
	}
	return issues
}
