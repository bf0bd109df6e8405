package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/country-cache-server/internal/service"
)

func TestParseSortOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value   string
		want    service.SortOrder
		wantErr bool
	}{
		{value: "", want: service.SortDefault},
		{value: "gdp_desc", want: service.SortGDPDesc},
		{value: "gdp_asc", want: service.SortGDPAsc},
		{value: "population_desc", want: service.SortPopulationDesc},
		{value: "population_asc", want: service.SortPopulationAsc},
		{value: "name_asc", want: service.SortNameAsc},
		{value: "name_desc", want: service.SortNameDesc},
		{value: "GDP_DESC", wantErr: true},
		{value: "area_desc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Parallel()

			got, err := service.ParseSortOrder(tt.value)
			if tt.wantErr {
				require.ErrorIs(t, err, service.ErrInvalidSort)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExcludesMissingGDP(t *testing.T) {
	t.Parallel()

	assert.True(t, service.SortGDPDesc.ExcludesMissingGDP())
	assert.True(t, service.SortGDPAsc.ExcludesMissingGDP())
	assert.False(t, service.SortPopulationDesc.ExcludesMissingGDP())
	assert.False(t, service.SortDefault.ExcludesMissingGDP())
}

func TestNewListCountriesOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		opts    []service.Option[service.ListCountriesOptions]
		check   func(t *testing.T, o *service.ListCountriesOptions)
		wantErr bool
	}{
		{
			name: "no options",
			check: func(t *testing.T, o *service.ListCountriesOptions) {
				t.Helper()
				assert.Nil(t, o.Region)
				assert.Nil(t, o.Currency)
				assert.Equal(t, service.SortDefault, o.Sort)
			},
		},
		{
			name: "filters are trimmed",
			opts: []service.Option[service.ListCountriesOptions]{
				service.WithRegion("  Africa "),
				service.WithCurrency("NGN\t"),
				service.WithSort("gdp_desc"),
			},
			check: func(t *testing.T, o *service.ListCountriesOptions) {
				t.Helper()
				require.NotNil(t, o.Region)
				require.NotNil(t, o.Currency)
				assert.Equal(t, "Africa", *o.Region)
				assert.Equal(t, "NGN", *o.Currency)
				assert.Equal(t, service.SortGDPDesc, o.Sort)
			},
		},
		{
			name:    "blank region",
			opts:    []service.Option[service.ListCountriesOptions]{service.WithRegion("  ")},
			wantErr: true,
		},
		{
			name:    "blank currency",
			opts:    []service.Option[service.ListCountriesOptions]{service.WithCurrency("")},
			wantErr: true,
		},
		{
			name:    "bad sort",
			opts:    []service.Option[service.ListCountriesOptions]{service.WithSort("area")},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o, err := service.NewListCountriesOptions(tt.opts...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}
