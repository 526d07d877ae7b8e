package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/internal/geo"
)

func shopAt(id string, lat, lon float64) domain.Product {
	return domain.Product{ID: id, ShopLatitude: lat, ShopLongitude: lon}
}

func ids(products []domain.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestRankByDistance_NoOriginReturnsPageUnchanged(t *testing.T) {
	page := []domain.Product{shopAt("a", 10, 10), shopAt("b", 0, 0)}

	got := rankByDistance(page, domain.ProductQuery{SortBy: domain.SortByNearest, MaxDistance: floatPtr(1)})

	assert.Equal(t, []string{"a", "b"}, ids(got))
	for _, p := range got {
		assert.Nil(t, p.Distance)
	}
}

func TestRankByDistance_NearestIsNonDecreasing(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}
	page := []domain.Product{
		shopAt("far", 0, 3),
		shopAt("here", 0, 0),
		shopAt("mid", 0, 2),
		shopAt("near", 0, 1),
	}

	got := rankByDistance(page, domain.ProductQuery{SortBy: domain.SortByNearest, Origin: &origin})

	require.Len(t, got, 4)
	assert.Equal(t, []string{"here", "near", "mid", "far"}, ids(got))
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, *got[i-1].Distance, *got[i].Distance)
	}
}

func TestRankByDistance_DistanceRoundedToTwoDecimals(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}

	got := rankByDistance([]domain.Product{shopAt("a", 0, 1)}, domain.ProductQuery{Origin: &origin})

	require.NotNil(t, got[0].Distance)
	assert.Equal(t, 111.19, *got[0].Distance)
}

func TestRankByDistance_TiesKeepStorageOrder(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}
	page := []domain.Product{
		shopAt("first", 0, 1),
		shopAt("second", 1, 0),
		shopAt("third", 0, -1),
	}

	got := rankByDistance(page, domain.ProductQuery{SortBy: domain.SortByNearest, Origin: &origin})

	assert.Equal(t, []string{"first", "second", "third"}, ids(got))
}

func TestRankByDistance_MaxDistanceIsInclusive(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}
	page := []domain.Product{
		shopAt("edge", 0, 1),
		shopAt("beyond", 0, 2),
	}

	got := rankByDistance(page, domain.ProductQuery{Origin: &origin, MaxDistance: floatPtr(111.19)})

	assert.Equal(t, []string{"edge"}, ids(got))
	for _, p := range got {
		assert.LessOrEqual(t, *p.Distance, 111.19)
	}
}

func TestRankByDistance_MaxDistanceZeroKeepsOnlyOrigin(t *testing.T) {
	origin := geo.Point{Latitude: 41, Longitude: 29}
	page := []domain.Product{shopAt("away", 41.5, 29), shopAt("here", 41, 29)}

	got := rankByDistance(page, domain.ProductQuery{Origin: &origin, MaxDistance: floatPtr(0)})

	assert.Equal(t, []string{"here"}, ids(got))
	assert.Equal(t, 0.0, *got[0].Distance)
}

func TestRankByDistance_OtherSortsReapplyStorageOrder(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}
	now := time.Now()

	cheap := shopAt("cheap", 0, 3)
	cheap.Price, cheap.Warranty, cheap.CreatedAt = 10, 6, now.Add(-2*time.Hour)
	pricey := shopAt("pricey", 0, 1)
	pricey.Price, pricey.Warranty, pricey.CreatedAt = 500, 24, now

	tests := []struct {
		sortBy string
		want   []string
	}{
		{domain.SortByPrice, []string{"cheap", "pricey"}},
		{domain.SortByWarranty, []string{"pricey", "cheap"}},
		{domain.SortByNewest, []string{"pricey", "cheap"}},
		{"", []string{"pricey", "cheap"}},
	}

	for _, tt := range tests {
		t.Run("sortBy="+tt.sortBy, func(t *testing.T) {
			page := []domain.Product{cheap, pricey}
			got := rankByDistance(page, domain.ProductQuery{SortBy: tt.sortBy, Origin: &origin})
			assert.Equal(t, tt.want, ids(got))
			for _, p := range got {
				assert.NotNil(t, p.Distance)
			}
		})
	}
}

func TestRankByDistance_DoesNotMutateInput(t *testing.T) {
	origin := geo.Point{Latitude: 0, Longitude: 0}
	page := []domain.Product{shopAt("b", 0, 2), shopAt("a", 0, 1)}

	_ = rankByDistance(page, domain.ProductQuery{SortBy: domain.SortByNearest, Origin: &origin})

	assert.Equal(t, []string{"b", "a"}, ids(page))
	assert.Nil(t, page[0].Distance)
}
