package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{in: "-50", want: -5000},
		{in: "12.5", want: 1250},
		{in: " 1234,56 ", want: 123456},
		{in: "0.001", wantErr: true},
		{in: "0", wantErr: true},
		{in: "", wantErr: true},
		{in: "ten", wantErr: true},
		{in: "999999999999999999.99", wantErr: true},
		{in: "-92233720368547758.09", wantErr: true},
		{in: "92233720368547758.07", want: 9223372036854775807},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "-50.00", FormatAmount(-5000))
}
