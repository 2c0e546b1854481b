package accounts

import "github.com/google/uuid"

// StandardChart returns the minimal chart an organization needs before the
// calculators can post: one account per well-known subtype plus the
// balance-sheet accounts assets and bank accounts point at.
func StandardChart(orgID uuid.UUID) []Account {
	rows := []struct {
		code    string
		name    string
		typ     Type
		subtype string
	}{
		{"1110", "Cash", TypeAsset, ""},
		{"1120", "Bank", TypeAsset, ""},
		{"1410", "Office Equipment", TypeAsset, ""},
		{"1420", "Vehicles", TypeAsset, ""},
		{"1490", "Accumulated Depreciation", TypeAsset, SubtypeAccumulatedDepreciation},
		{"2120", "Tax Payable", TypeLiability, SubtypeTaxPayable},
		{"3300", "Revaluation Reserve", TypeEquity, SubtypeRevaluationReserve},
		{"4300", "Gain on Disposal of Assets", TypeRevenue, SubtypeGainOnDisposal},
		{"5300", "Depreciation Expense", TypeExpense, SubtypeDepreciationExpense},
		{"5310", "Loss on Disposal of Assets", TypeExpense, SubtypeLossOnDisposal},
		{"5320", "Revaluation Loss", TypeExpense, SubtypeRevaluationLoss},
	}
	out := make([]Account, 0, len(rows))
	for _, r := range rows {
		out = append(out, Account{
			OrganizationID: orgID,
			Code:           r.code,
			Name:           r.name,
			Type:           r.typ,
			Subtype:        r.subtype,
			IsActive:       true,
		})
	}
	return out
}
