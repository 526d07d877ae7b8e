// Package seed populates a running community shop API with demo users,
// products and reviews through its public endpoints.
package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/utafrali/communityshop/internal/domain"
	apperrors "github.com/utafrali/communityshop/pkg/errors"
)

// API is the subset of the REST API the seeder drives.
type API interface {
	Signup(ctx context.Context, in domain.SignupInput) (*domain.AuthResult, error)
	Login(ctx context.Context, in domain.LoginInput) (*domain.AuthResult, error)
	CreateProduct(ctx context.Context, token string, in domain.CreateProductInput) (*domain.Product, error)
	AddReview(ctx context.Context, token, productID string, in domain.AddReviewInput) (*domain.Product, error)
}

// Options controls how much data is generated.
type Options struct {
	Users             int
	ProductsPerUser   int
	ReviewsPerProduct int
	Password          string
	RandSeed          uint64
}

// Summary counts what a run created.
type Summary struct {
	Users    int
	Products int
	Reviews  int
	Skipped  int
}

type town struct {
	name      string
	latitude  float64
	longitude float64
}

var towns = []town{
	{"Kadikoy", 40.9909, 29.0303},
	{"Besiktas", 41.0422, 29.0083},
	{"Cankaya", 39.9179, 32.8627},
	{"Konak", 38.4189, 27.1287},
	{"Nilufer", 40.2130, 28.9870},
	{"Muratpasa", 36.8841, 30.7056},
}

var catalog = map[string][][2]string{
	domain.CategoryLaptop:     {{"Lenovo", "ThinkPad X1"}, {"Apple", "MacBook Air"}, {"Dell", "XPS 13"}},
	domain.CategorySmartphone: {{"Samsung", "Galaxy S24"}, {"Apple", "iPhone 15"}, {"Xiaomi", "Redmi Note 13"}},
	domain.CategoryCamera:     {{"Canon", "EOS R8"}, {"Sony", "Alpha 7 IV"}, {"Fujifilm", "X-T5"}},
	domain.CategoryTablet:     {{"Apple", "iPad Air"}, {"Samsung", "Galaxy Tab S9"}},
	domain.CategoryOther:      {{"Logitech", "MX Master 3S"}, {"Anker", "PowerCore 20000"}},
}

var categories = []string{
	domain.CategoryLaptop,
	domain.CategorySmartphone,
	domain.CategoryCamera,
	domain.CategoryTablet,
	domain.CategoryOther,
}

var comments = []string{
	"Exactly as described, the shop staff were helpful.",
	"Good price for the area but stock was limited.",
	"Works fine, although the warranty paperwork took a while.",
	"Would buy from this shop again.",
	"The listing price was already out of date when I visited.",
}

type member struct {
	token string
}

// Seeder generates demo data against an API.
type Seeder struct {
	api    API
	logger *slog.Logger
}

// NewSeeder creates a seeder.
func NewSeeder(api API, logger *slog.Logger) *Seeder {
	return &Seeder{api: api, logger: logger}
}

// Run creates users, their products and cross-reviews. Existing users are
// logged in instead of recreated and duplicate reviews are skipped, so
// repeated runs with the same seed converge instead of failing.
func (s *Seeder) Run(ctx context.Context, opts Options) (*Summary, error) {
	rng := rand.New(rand.NewPCG(opts.RandSeed, opts.RandSeed^0x9e3779b97f4a7c15))
	sum := &Summary{}

	members := make([]member, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		m, created, err := s.ensureUser(ctx, i, opts.Password, rng)
		if err != nil {
			return sum, err
		}
		if created {
			sum.Users++
		}
		members = append(members, m)
	}

	for ownerIdx, owner := range members {
		for j := 0; j < opts.ProductsPerUser; j++ {
			product, err := s.api.CreateProduct(ctx, owner.token, productInput(rng))
			if err != nil {
				return sum, fmt.Errorf("create product for user %d: %w", ownerIdx, err)
			}
			sum.Products++

			for _, reviewer := range pickReviewers(rng, len(members), ownerIdx, opts.ReviewsPerProduct) {
				_, err := s.api.AddReview(ctx, members[reviewer].token, product.ID, reviewInput(rng))
				switch {
				case errors.Is(err, apperrors.ErrDuplicateReview):
					sum.Skipped++
				case err != nil:
					return sum, fmt.Errorf("review product %s: %w", product.ID, err)
				default:
					sum.Reviews++
				}
			}
		}
	}

	s.logger.InfoContext(ctx, "seed completed",
		slog.Int("users", sum.Users),
		slog.Int("products", sum.Products),
		slog.Int("reviews", sum.Reviews),
		slog.Int("skipped", sum.Skipped),
	)
	return sum, nil
}

func (s *Seeder) ensureUser(ctx context.Context, i int, password string, rng *rand.Rand) (member, bool, error) {
	home := towns[i%len(towns)]
	in := domain.SignupInput{
		Username: fmt.Sprintf("shopper%03d", i+1),
		Email:    fmt.Sprintf("shopper%03d@example.com", i+1),
		Password: password,
		Location: &domain.Location{
			Latitude:  jitter(rng, home.latitude),
			Longitude: jitter(rng, home.longitude),
		},
	}

	res, err := s.api.Signup(ctx, in)
	if err == nil {
		return member{token: res.Token}, true, nil
	}
	if !errors.Is(err, apperrors.ErrAlreadyExists) {
		return member{}, false, fmt.Errorf("signup %s: %w", in.Username, err)
	}

	res, err = s.api.Login(ctx, domain.LoginInput{Email: in.Email, Password: password})
	if err != nil {
		return member{}, false, fmt.Errorf("login existing %s: %w", in.Username, err)
	}
	s.logger.DebugContext(ctx, "reusing existing seed user", slog.String("username", in.Username))
	return member{token: res.Token}, false, nil
}

func productInput(rng *rand.Rand) domain.CreateProductInput {
	category := categories[rng.IntN(len(categories))]
	models := catalog[category]
	pick := models[rng.IntN(len(models))]
	shop := towns[rng.IntN(len(towns))]
	lat, lon := jitter(rng, shop.latitude), jitter(rng, shop.longitude)

	return domain.CreateProductInput{
		Category:        category,
		Brand:           pick[0],
		Model:           pick[1],
		Name:            pick[0] + " " + pick[1],
		Price:           math.Round((50+rng.Float64()*2500)*100) / 100,
		Warranty:        []int{0, 6, 12, 24}[rng.IntN(4)],
		CustomerService: "Call the shop during opening hours.",
		ShopName:        fmt.Sprintf("%s Electronics", shop.name),
		ShopAddress:     fmt.Sprintf("%d Market Street", 1+rng.IntN(200)),
		ShopTown:        shop.name,
		ShopLatitude:    &lat,
		ShopLongitude:   &lon,
		Images:          []string{fmt.Sprintf("https://images.example.com/%s/%d.jpg", category, rng.IntN(1000))},
	}
}

func reviewInput(rng *rand.Rand) domain.AddReviewInput {
	in := domain.AddReviewInput{
		Rating:  float64(domain.MinRating + rng.IntN(domain.MaxRating)),
		Comment: comments[rng.IntN(len(comments))],
	}
	if rng.IntN(2) == 0 {
		service := float64(domain.MinRating + rng.IntN(domain.MaxRating))
		in.ServiceRating = &service
	}
	return in
}

// pickReviewers returns up to n distinct member indexes other than owner.
func pickReviewers(rng *rand.Rand, members, owner, n int) []int {
	candidates := make([]int, 0, members)
	for i := 0; i < members; i++ {
		if i != owner {
			candidates = append(candidates, i)
		}
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}

// jitter moves a coordinate by up to about two kilometres.
func jitter(rng *rand.Rand, v float64) float64 {
	return math.Round((v+(rng.Float64()-0.5)*0.04)*1e6) / 1e6
}
