package accounts

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestStandardChartCoversEverySubtype(t *testing.T) {
	org := uuid.New()
	chart := StandardChart(org)

	codes := map[string]bool{}
	subtypes := map[string]Type{}
	for _, acc := range chart {
		require.NoError(t, acc.Validate())
		require.Equal(t, org, acc.OrganizationID)
		require.False(t, codes[acc.Code], "duplicate code %s", acc.Code)
		codes[acc.Code] = true
		if acc.Subtype != "" {
			subtypes[acc.Subtype] = acc.Type
		}
	}

	require.Equal(t, map[string]Type{
		SubtypeDepreciationExpense:     TypeExpense,
		SubtypeAccumulatedDepreciation: TypeAsset,
		SubtypeGainOnDisposal:          TypeRevenue,
		SubtypeLossOnDisposal:          TypeExpense,
		SubtypeRevaluationReserve:      TypeEquity,
		SubtypeRevaluationLoss:         TypeExpense,
		SubtypeTaxPayable:              TypeLiability,
	}, subtypes)
}
