package domain

import (
	"strings"
	"time"
)

// Product categories.
const (
	CategoryLaptop     = "laptop"
	CategorySmartphone = "smartphone"
	CategoryCamera     = "camera"
	CategoryTablet     = "tablet"
	CategoryOther      = "other"
)

// Product bounds enforced on create and update.
const (
	MaxPrice         = 100_000_000
	MaxWarrantyMonth = 120
	MaxImages        = 10
)

// Product is a community-listed item sold at a physical shop.
type Product struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"productId"`
	Category        string    `json:"category"`
	Brand           string    `json:"brand"`
	Model           string    `json:"model"`
	Name            string    `json:"name"`
	Price           float64   `json:"price"`
	Warranty        int       `json:"warranty"`
	CustomerService string    `json:"customerService"`
	AddedBy         string    `json:"addedBy"`
	Owner           *Owner    `json:"owner,omitempty"`
	ShopName        string    `json:"shopName"`
	ShopAddress     string    `json:"shopAddress"`
	ShopTown        string    `json:"shopTown"`
	ShopLatitude    float64   `json:"shopLatitude"`
	ShopLongitude   float64   `json:"shopLongitude"`
	Images          []string  `json:"images"`
	Reviews         []Review  `json:"reviews"`
	AverageRating   float64   `json:"averageRating"`
	ReviewCount     int       `json:"reviewCount"`
	Distance        *float64  `json:"distance,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// Owner is the public view of the user who listed a product.
type Owner struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// CreateProductInput carries the fields a caller supplies when listing a product.
type CreateProductInput struct {
	Category        string   `json:"category" validate:"required,oneof=laptop smartphone camera tablet other"`
	Brand           string   `json:"brand" validate:"required,max=100"`
	Model           string   `json:"model" validate:"required,max=100"`
	Name            string   `json:"name" validate:"required,max=200"`
	Price           float64  `json:"price" validate:"gt=0,max=100000000"`
	Warranty        int      `json:"warranty" validate:"gte=0,lte=120"`
	CustomerService string   `json:"customerService" validate:"max=1000"`
	ShopName        string   `json:"shopName" validate:"required,max=200"`
	ShopAddress     string   `json:"shopAddress" validate:"required,max=500"`
	ShopTown        string   `json:"shopTown" validate:"required,max=100"`
	ShopLatitude    *float64 `json:"shopLatitude" validate:"required,latitude"`
	ShopLongitude   *float64 `json:"shopLongitude" validate:"required,longitude"`
	Images          []string `json:"images" validate:"max=10,dive,required,url"`
}

// UpdateProductInput is a partial update; nil fields are left unchanged.
// Owner, identifiers, reviews and aggregates are not updatable.
type UpdateProductInput struct {
	Category        *string   `json:"category" validate:"omitempty,oneof=laptop smartphone camera tablet other"`
	Brand           *string   `json:"brand" validate:"omitempty,min=1,max=100"`
	Model           *string   `json:"model" validate:"omitempty,min=1,max=100"`
	Name            *string   `json:"name" validate:"omitempty,min=1,max=200"`
	Price           *float64  `json:"price" validate:"omitempty,gt=0,max=100000000"`
	Warranty        *int      `json:"warranty" validate:"omitempty,gte=0,lte=120"`
	CustomerService *string   `json:"customerService" validate:"omitempty,max=1000"`
	ShopName        *string   `json:"shopName" validate:"omitempty,min=1,max=200"`
	ShopAddress     *string   `json:"shopAddress" validate:"omitempty,min=1,max=500"`
	ShopTown        *string   `json:"shopTown" validate:"omitempty,min=1,max=100"`
	ShopLatitude    *float64  `json:"shopLatitude" validate:"omitempty,latitude"`
	ShopLongitude   *float64  `json:"shopLongitude" validate:"omitempty,longitude"`
	Images          *[]string `json:"images" validate:"omitempty,max=10,dive,required,url"`
}

// ValidCategories returns the set of product categories.
func ValidCategories() []string {
	return []string{CategoryLaptop, CategorySmartphone, CategoryCamera, CategoryTablet, CategoryOther}
}

// IsValidCategory checks whether c is a known product category.
func IsValidCategory(c string) bool {
	for _, v := range ValidCategories() {
		if v == c {
			return true
		}
	}
	return false
}

// Normalize trims surrounding whitespace from every text field.
func (in *CreateProductInput) Normalize() {
	for _, f := range []*string{
		&in.Category, &in.Brand, &in.Model, &in.Name, &in.CustomerService,
		&in.ShopName, &in.ShopAddress, &in.ShopTown,
	} {
		*f = strings.TrimSpace(*f)
	}
	for i := range in.Images {
		in.Images[i] = strings.TrimSpace(in.Images[i])
	}
}

// Normalize trims surrounding whitespace from every supplied text field.
func (in *UpdateProductInput) Normalize() {
	for _, f := range []*string{
		in.Category, in.Brand, in.Model, in.Name, in.CustomerService,
		in.ShopName, in.ShopAddress, in.ShopTown,
	} {
		if f != nil {
			*f = strings.TrimSpace(*f)
		}
	}
	if in.Images != nil {
		for i := range *in.Images {
			(*in.Images)[i] = strings.TrimSpace((*in.Images)[i])
		}
	}
}

// NewProduct builds a product owned by ownerID from a validated input.
func NewProduct(id, ownerID string, in CreateProductInput, now time.Time) *Product {
	images := in.Images
	if images == nil {
		images = []string{}
	}
	return &Product{
		ID:              id,
		ProductID:       id,
		Category:        in.Category,
		Brand:           in.Brand,
		Model:           in.Model,
		Name:            in.Name,
		Price:           in.Price,
		Warranty:        in.Warranty,
		CustomerService: in.CustomerService,
		AddedBy:         ownerID,
		ShopName:        in.ShopName,
		ShopAddress:     in.ShopAddress,
		ShopTown:        in.ShopTown,
		ShopLatitude:    *in.ShopLatitude,
		ShopLongitude:   *in.ShopLongitude,
		Images:          images,
		Reviews:         []Review{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// IsOwnedBy reports whether userID listed the product.
func (p *Product) IsOwnedBy(userID string) bool {
	return userID != "" && p.AddedBy == userID
}

// Apply copies the set fields of in onto the product and refreshes UpdatedAt.
func (p *Product) Apply(in UpdateProductInput, now time.Time) {
	if in.Category != nil {
		p.Category = *in.Category
	}
	if in.Brand != nil {
		p.Brand = *in.Brand
	}
	if in.Model != nil {
		p.Model = *in.Model
	}
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Warranty != nil {
		p.Warranty = *in.Warranty
	}
	if in.CustomerService != nil {
		p.CustomerService = *in.CustomerService
	}
	if in.ShopName != nil {
		p.ShopName = *in.ShopName
	}
	if in.ShopAddress != nil {
		p.ShopAddress = *in.ShopAddress
	}
	if in.ShopTown != nil {
		p.ShopTown = *in.ShopTown
	}
	if in.ShopLatitude != nil {
		p.ShopLatitude = *in.ShopLatitude
	}
	if in.ShopLongitude != nil {
		p.ShopLongitude = *in.ShopLongitude
	}
	if in.Images != nil {
		p.Images = append([]string{}, (*in.Images)...)
	}
	p.UpdatedAt = now
}
