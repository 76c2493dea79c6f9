package payroll

import (
	"sort"

	"github.com/cmlabs-hris/creator-payroll-go/internal/domain/payroll"
	"github.com/shopspring/decimal"
)

// ComputeBonus applies a progressive slab table to a creator's GMV.
//
// The average commission rate (commission / GMV) is applied to the GMV that
// falls inside each slab and then scaled by the slab rate. Contributions are
// accumulated unrounded and the total is rounded once. Gaps and overlaps in the
// table are not repaired.
func ComputeBonus(totalGMV, totalCommission decimal.Decimal, slabs []payroll.CommissionSlab) decimal.Decimal {
	if !totalGMV.IsPositive() || len(slabs) == 0 {
		return decimal.Zero
	}

	sorted := make([]payroll.CommissionSlab, len(slabs))
	copy(sorted, slabs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Min.LessThan(sorted[j].Min)
	})

	total := decimal.Zero
	for _, slab := range sorted {
		gmvInSlab := decimal.Max(decimal.Zero, decimal.Min(totalGMV, slab.Max).Sub(slab.Min))
		if !gmvInSlab.IsPositive() {
			continue
		}
		// gmvInSlab * (commission / gmv) * rate, divided last to keep precision
		total = total.Add(gmvInSlab.Mul(totalCommission).Mul(slab.Rate).Div(totalGMV))
	}

	return total.Round(0)
}

// AverageCommissionRate is commission / GMV, or zero when there is no GMV.
func AverageCommissionRate(totalGMV, totalCommission decimal.Decimal) decimal.Decimal {
	if !totalGMV.IsPositive() {
		return decimal.Zero
	}
	return totalCommission.Div(totalGMV)
}

// bonusForCreator resolves the creator's slab table. No table, an unknown id or
// an empty table all yield a zero bonus.
func bonusForCreator(profile payroll.CreatorCompensationProfile, tables map[string]payroll.CommissionSlabTable, sales payroll.SalesSummary) decimal.Decimal {
	if profile.SlabTableID == nil || *profile.SlabTableID == "" {
		return decimal.Zero
	}
	table, ok := tables[*profile.SlabTableID]
	if !ok {
		return decimal.Zero
	}
	return ComputeBonus(sales.TotalGMV, sales.TotalCommission, table.Slabs)
}
