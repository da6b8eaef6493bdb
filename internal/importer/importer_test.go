package importer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/smartcity/internal/importer"
)

func TestParser_Parse(t *testing.T) {
	type testCase struct {
		name    string
		input   string
		want    []importer.Entry
		wantErr string
	}

	tests := []testCase{
		{
			name: "LedgerExport",
			input: `id,created_at,transaction_budget,current_budget
1,2026-03-01T09:00:00.000,-5000,75000
2,2026-03-02T09:00:00.000,-5000,70000
`,
			want: []importer.Entry{{Line: 2, Delta: -5000}, {Line: 3, Delta: -5000}},
		},
		{
			name: "EuropeanWithPreamble",
			input: `Consulta de movimentos;31-01-2026
Conta;0000 - EUR

Data mov.;Descrição;Montante
30-01-2026;Asfalto;-1.234,56
09-01-2026;Reforço;50,00
Total;;
`,
			want: []importer.Entry{{Line: 5, Delta: -123456}, {Line: 6, Delta: 5000}},
		},
		{
			name: "DebitCredit",
			input: `Date;Debit;Credit
2026-01-05;120.50;
2026-01-06;;1,000.00
2026-01-07;;
`,
			want: []importer.Entry{{Line: 2, Delta: -12050}, {Line: 3, Delta: 100000}},
		},
		{
			name: "AmountColumnDifferentOrder",
			input: `AMOUNT,note
-10.00,paint
0,skipped
`,
			want: []importer.Entry{{Line: 2, Delta: -1000}},
		},
		{
			name:  "HeaderOnly",
			input: "transaction_budget\n",
			want:  []importer.Entry{},
		},
		{
			name:    "NoKnownColumns",
			input:   "foo,bar\n1,2\n",
			wantErr: "no ledger columns found",
		},
		{
			name:    "Empty",
			input:   "",
			wantErr: "no ledger columns found",
		},
		{
			name:    "GarbageAmount",
			input:   "transaction_budget\n12abc\n",
			wantErr: "row 2",
		},
		{
			name:    "FractionalMinorUnits",
			input:   "amount\n1.005\n",
			wantErr: "fractional minor units",
		},
		{
			name:    "MinorUnitsBeyondInt64",
			input:   "transaction_budget\n99999999999999999999\n",
			wantErr: "out of range",
		},
		{
			name:    "DecimalBeyondInt64",
			input:   "amount\n999999999999999999.99\n",
			wantErr: "out of range",
		},
		{
			name:    "CreditMagnitudeBeyondInt64",
			input:   "debit,credit\n,-92233720368547758.08\n",
			wantErr: "out of range",
		},
		{
			name:  "LargestAmount",
			input: "transaction_budget\n9223372036854775807\n",
			want:  []importer.Entry{{Line: 2, Delta: 9223372036854775807}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.NewParser().Parse(strings.NewReader(tt.input))

			if tt.wantErr != "" {
				require.Error(t, err)
				assert.ErrorContains(t, err, tt.wantErr)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
