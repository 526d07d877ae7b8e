package domain

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/utafrali/communityshop/internal/geo"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
	"github.com/utafrali/communityshop/pkg/pagination"
)

// Accepted sortBy values.
const (
	SortByPrice    = "price"
	SortByWarranty = "warranty"
	SortByNewest   = "newest"
	SortByNearest  = "nearest"
)

// SortOrder is the storage ordering applied before pagination.
type SortOrder int

const (
	SortCreatedDesc SortOrder = iota
	SortPriceAsc
	SortWarrantyDesc
)

// ProductQuery holds the list filters. Nil or empty fields impose no constraint.
type ProductQuery struct {
	Category    string
	Brand       string
	Model       string
	Town        string
	MinPrice    *float64
	MaxPrice    *float64
	MinWarranty *int
	SortBy      string
	Origin      *geo.Point
	MaxDistance *float64
	pagination.Params
}

// ProductPage is the list response envelope.
type ProductPage struct {
	Products    []Product `json:"products"`
	TotalPages  int       `json:"totalPages"`
	CurrentPage int       `json:"currentPage"`
	Total       int       `json:"total"`
}

// ParseProductQuery reads list filters from query parameters. Malformed and
// out-of-range values are all reported together in one validation error.
// page and limit fall back to their defaults when malformed.
func ParseProductQuery(v url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Category: strings.TrimSpace(v.Get("category")),
		Brand:    strings.TrimSpace(v.Get("brand")),
		Model:    strings.TrimSpace(v.Get("model")),
		Town:     strings.TrimSpace(v.Get("town")),
		SortBy:   strings.TrimSpace(v.Get("sortBy")),
		Params:   pagination.FromValues(v),
	}
	fields := map[string]string{}

	q.MinPrice = parseFloat(v, "minPrice", fields)
	q.MaxPrice = parseFloat(v, "maxPrice", fields)
	q.MaxDistance = parseFloat(v, "maxDistance", fields)
	lat := parseFloat(v, "userLat", fields)
	lon := parseFloat(v, "userLon", fields)

	if raw := strings.TrimSpace(v.Get("minWarranty")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			fields["minWarranty"] = "must be an integer"
		} else {
			q.MinWarranty = &n
		}
	}

	switch {
	case lat != nil && lon != nil:
		q.Origin = &geo.Point{Latitude: *lat, Longitude: *lon}
	case lat != nil && fields["userLon"] == "":
		fields["userLon"] = "is required when userLat is supplied"
	case lon != nil && fields["userLat"] == "":
		fields["userLat"] = "is required when userLon is supplied"
	}

	q.validate(fields)
	if len(fields) > 0 {
		return ProductQuery{}, apperrors.ValidationFailed(fields)
	}
	return q, nil
}

func parseFloat(v url.Values, key string, fields map[string]string) *float64 {
	raw := strings.TrimSpace(v.Get(key))
	if raw == "" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		fields[key] = "must be a number"
		return nil
	}
	return &f
}

// Validate checks every filter and reports all violations at once.
func (q ProductQuery) Validate() error {
	fields := map[string]string{}
	q.validate(fields)
	if len(fields) > 0 {
		return apperrors.ValidationFailed(fields)
	}
	return nil
}

func (q ProductQuery) validate(fields map[string]string) {
	if q.Category != "" && !IsValidCategory(q.Category) {
		fields["category"] = "must be one of: " + strings.Join(ValidCategories(), " ")
	}
	switch q.SortBy {
	case "", SortByPrice, SortByWarranty, SortByNewest, SortByNearest:
	default:
		fields["sortBy"] = "must be one of: price warranty newest nearest"
	}
	if q.MinPrice != nil && *q.MinPrice < 0 {
		fields["minPrice"] = "must be greater than or equal to 0"
	}
	if q.MaxPrice != nil && *q.MaxPrice < 0 {
		fields["maxPrice"] = "must be greater than or equal to 0"
	}
	if q.MinPrice != nil && q.MaxPrice != nil && *q.MinPrice > *q.MaxPrice {
		if _, ok := fields["minPrice"]; !ok {
			fields["minPrice"] = "must be less than or equal to maxPrice"
		}
	}
	if q.MinWarranty != nil && *q.MinWarranty < 0 {
		fields["minWarranty"] = "must be greater than or equal to 0"
	}
	if q.Origin != nil {
		if !geo.ValidLatitude(q.Origin.Latitude) {
			fields["userLat"] = "must be a latitude between -90 and 90"
		}
		if !geo.ValidLongitude(q.Origin.Longitude) {
			fields["userLon"] = "must be a longitude between -180 and 180"
		}
	}
	if q.MaxDistance != nil {
		switch {
		case *q.MaxDistance < 0:
			fields["maxDistance"] = "must be greater than or equal to 0"
		case q.Origin == nil:
			if _, ok := fields["userLat"]; !ok {
				fields["maxDistance"] = "requires userLat and userLon"
			}
		}
	}
}

// SortOrder maps sortBy to the storage ordering. nearest is ranked after
// the page is fetched, so storage falls back to newest first.
func (q ProductQuery) SortOrder() SortOrder {
	switch q.SortBy {
	case SortByPrice:
		return SortPriceAsc
	case SortByWarranty:
		return SortWarrantyDesc
	default:
		return SortCreatedDesc
	}
}

// RanksByDistance reports whether the fetched page is re-sorted by distance.
func (q ProductQuery) RanksByDistance() bool {
	return q.SortBy == SortByNearest && q.Origin != nil
}

// Less orders a before b under o. Equal keys compare false so a stable sort
// keeps the storage order.
func (o SortOrder) Less(a, b *Product) bool {
	switch o {
	case SortPriceAsc:
		return a.Price < b.Price
	case SortWarrantyDesc:
		return a.Warranty > b.Warranty
	default:
		return a.CreatedAt.After(b.CreatedAt)
	}
}

// EscapeLike escapes the LIKE metacharacters in s so it matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
