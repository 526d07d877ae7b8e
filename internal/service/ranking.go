package service

import (
	"sort"

	"github.com/utafrali/communityshop/internal/domain"
	"github.com/utafrali/communityshop/internal/geo"
)

// rankByDistance annotates a fetched page with distances from the query
// origin, drops products beyond MaxDistance and orders what remains. It
// only sees the current page, so a product on a later page that is nearer
// than everything here is not pulled forward. Without an origin the page
// is returned as stored.
func rankByDistance(products []domain.Product, q domain.ProductQuery) []domain.Product {
	if q.Origin == nil {
		return products
	}

	ranked := make([]domain.Product, 0, len(products))
	for _, p := range products {
		d := geo.Round2(geo.Distance(*q.Origin, geo.Point{
			Latitude:  p.ShopLatitude,
			Longitude: p.ShopLongitude,
		}))
		if q.MaxDistance != nil && d > *q.MaxDistance {
			continue
		}
		p.Distance = &d
		ranked = append(ranked, p)
	}

	if q.RanksByDistance() {
		sort.SliceStable(ranked, func(i, j int) bool {
			return *ranked[i].Distance < *ranked[j].Distance
		})
		return ranked
	}

	order := q.SortOrder()
	sort.SliceStable(ranked, func(i, j int) bool {
		return order.Less(&ranked[i], &ranked[j])
	})
	return ranked
}
