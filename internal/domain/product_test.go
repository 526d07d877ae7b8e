package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func newTestProduct() *Product {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return NewProduct("p1", "owner-1", CreateProductInput{
		Category:      CategoryLaptop,
		Brand:         "Lenovo",
		Model:         "T14",
		Name:          "ThinkPad T14",
		Price:         1200,
		Warranty:      24,
		ShopName:      "Tech Corner",
		ShopAddress:   "1 Main St",
		ShopTown:      "Springfield",
		ShopLatitude:  ptr(41.0),
		ShopLongitude: ptr(29.0),
	}, now)
}

// ============================================================================
// Category Tests
// ============================================================================

func TestValidCategories_ContainsAll(t *testing.T) {
	expected := []string{CategoryLaptop, CategorySmartphone, CategoryCamera, CategoryTablet, CategoryOther}
	assert.ElementsMatch(t, expected, ValidCategories())
}

func TestIsValidCategory(t *testing.T) {
	assert.True(t, IsValidCategory("camera"))
	assert.False(t, IsValidCategory("Camera"))
	assert.False(t, IsValidCategory(""))
	assert.False(t, IsValidCategory("drone"))
}

// ============================================================================
// Product Lifecycle Tests
// ============================================================================

func TestNewProduct_ZeroedAggregates(t *testing.T) {
	p := newTestProduct()

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, p.ID, p.ProductID)
	assert.Equal(t, "owner-1", p.AddedBy)
	assert.Empty(t, p.Reviews)
	assert.NotNil(t, p.Images)
	assert.Zero(t, p.ReviewCount)
	assert.Zero(t, p.AverageRating)
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)
}

func TestProduct_IsOwnedBy(t *testing.T) {
	p := newTestProduct()
	assert.True(t, p.IsOwnedBy("owner-1"))
	assert.False(t, p.IsOwnedBy("someone-else"))
	assert.False(t, p.IsOwnedBy(""))
}

func TestProduct_Apply_PartialUpdate(t *testing.T) {
	p := newTestProduct()
	created := p.CreatedAt
	later := created.Add(time.Hour)

	p.Apply(UpdateProductInput{
		Price:  ptr(999.5),
		Images: &[]string{"https://img.example/1.png"},
	}, later)

	assert.Equal(t, 999.5, p.Price)
	assert.Equal(t, []string{"https://img.example/1.png"}, p.Images)
	assert.Equal(t, "ThinkPad T14", p.Name)
	assert.Equal(t, "owner-1", p.AddedBy)
	assert.Equal(t, created, p.CreatedAt)
	assert.Equal(t, later, p.UpdatedAt)
}

func TestCreateProductInput_Normalize(t *testing.T) {
	in := CreateProductInput{Brand: "  Canon ", ShopTown: "\tIzmir\n", Images: []string{" https://a.example/x.png "}}
	in.Normalize()
	assert.Equal(t, "Canon", in.Brand)
	assert.Equal(t, "Izmir", in.ShopTown)
	assert.Equal(t, "https://a.example/x.png", in.Images[0])
}
