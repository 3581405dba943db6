package portfolio

import (
	"github.com/aristath/marketpulse/internal/domain"
	"github.com/aristath/marketpulse/internal/utils"
)

// Palette is the colour cycle used for allocation slices
var Palette = []string{"#6366f1", "#8b5cf6", "#06b6d4", "#f59e0b", "#ef4444", "#22c55e"}

// AllocationSlice is one allocation entry with its chart colour.
// Colours follow the upstream order and survive re-sorting.
type AllocationSlice struct {
	domain.AllocationItem
	Color string `json:"color"`
}

// Allocation builds the allocation breakdown. The upstream breakdown in perf is
// used when present; otherwise it is derived from the holdings' values.
// Percentages are rounded to two decimals.
func Allocation(p *domain.Portfolio, perf *domain.Performance) []AllocationSlice {
	var items []domain.AllocationItem
	if perf != nil && len(perf.AssetAllocation) > 0 {
		items = perf.AssetAllocation
	} else {
		items = deriveAllocation(p)
	}

	out := make([]AllocationSlice, 0, len(items))
	for i, item := range items {
		item.Percentage = utils.Round2(item.Percentage)
		out = append(out, AllocationSlice{
			AllocationItem: item,
			Color:          Palette[i%len(Palette)],
		})
	}
	return out
}

func deriveAllocation(p *domain.Portfolio) []domain.AllocationItem {
	if p == nil {
		return nil
	}

	var total float64
	for _, h := range p.Assets {
		total += h.Value
	}
	if total <= 0 {
		return nil
	}

	items := make([]domain.AllocationItem, 0, len(p.Assets))
	for _, h := range p.Assets {
		items = append(items, domain.AllocationItem{
			AssetID:    h.AssetID,
			Percentage: h.Value / total * 100,
			Value:      h.Value,
		})
	}
	return items
}

// Performers returns the best and worst performing holdings. Upstream values in
// perf win; missing ones are derived from the holdings' change percent.
// Either result is nil when nothing is known.
func Performers(p *domain.Portfolio, perf *domain.Performance) (best, worst *domain.Performer) {
	if perf != nil {
		best, worst = perf.BestPerformer, perf.WorstPerformer
	}
	if (best != nil && worst != nil) || p == nil || len(p.Assets) == 0 {
		return best, worst
	}

	hi, lo := p.Assets[0], p.Assets[0]
	for _, h := range p.Assets[1:] {
		if h.ChangePercent > hi.ChangePercent {
			hi = h
		}
		if h.ChangePercent < lo.ChangePercent {
			lo = h
		}
	}

	if best == nil {
		best = performerOf(hi)
	}
	if worst == nil {
		worst = performerOf(lo)
	}
	return best, worst
}

func performerOf(h domain.Holding) *domain.Performer {
	perf := &domain.Performer{AssetID: h.AssetID, ChangePercent: h.ChangePercent}
	if h.Quantity != 0 {
		perf.CurrentPrice = utils.Round2(h.Value / h.Quantity)
	}
	return perf
}
