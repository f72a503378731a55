package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

// Default admin accounts carry pre-hashed placeholder credentials; operators
// are expected to reset them.
var defaultAdmins = []domain.NewUser{
	{
		Username:  "admin",
		Email:     "admin@fruitfresh.com",
		Password:  "$2b$10$EpRnTzVlqHNP0.fUbXUwSOyuiXe/QLSUG6xNekdHgTGmrpHEfIoxm",
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
	},
	{
		Username:  "adminGmail",
		Email:     "admin@gmail.com",
		Password:  "$2b$10$dh/iZwZ3vTjqsD7LlvGx2eqAeAm3sJv0lHQJWI4Z8MeClxVn9ZONu",
		FirstName: "Admin",
		LastName:  "Gmail",
		Role:      domain.RoleAdmin,
	},
}

var demoCatalog = []domain.NewProduct{
	{
		Name:        "Organic Apples",
		Description: "Fresh, locally grown organic apples. Perfect for eating or baking.",
		Price:       399,
		Category:    "fruits",
		ImageURL:    "https://images.unsplash.com/photo-1570913149827-d2ac84ab3f9a?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "lb",
		Stock:       50,
	},
	{
		Name:        "Organic Carrots",
		Description: "Sweet and crunchy organic carrots freshly harvested from local farms.",
		Price:       249,
		Category:    "vegetables",
		ImageURL:    "https://images.unsplash.com/photo-1540420773420-3366772f4999?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "bunch",
		Stock:       40,
	},
	{
		Name:        "Organic Strawberries",
		Description: "Sweet and juicy organic strawberries. Perfect for desserts or snacking.",
		Price:       499,
		Category:    "fruits",
		ImageURL:    "https://images.unsplash.com/photo-1464965911861-746a04b4bca6?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "pint",
		Stock:       30,
	},
	{
		Name:        "Organic Spinach",
		Description: "Fresh organic spinach, rich in nutrients and perfect for salads or cooking.",
		Price:       349,
		Category:    "vegetables",
		ImageURL:    "https://images.unsplash.com/photo-1576045057995-568f588f82fb?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "bunch",
		Stock:       35,
	},
	{
		Name:        "Organic Tomatoes",
		Description: "Vine-ripened organic tomatoes, bursting with flavor and freshness.",
		Price:       399,
		Category:    "vegetables",
		ImageURL:    "https://pixabay.com/get/g4fc77db397e07a75e917b446f202ea846ee51018bc165e6924e54bf8c205371f152ec6fa41b0d8af842f6ef7a37b4583_1280.jpg",
		Unit:        "lb",
		Stock:       45,
	},
	{
		Name:        "Organic Avocados",
		Description: "Creamy, nutrient-rich organic avocados. Perfect for any meal or snack.",
		Price:       299,
		Category:    "fruits",
		ImageURL:    "https://pixabay.com/get/g68ebe6159455aff2dacbb2ad22d588574d7f6433ea98a227fc8b456000401b3b82ae336b8f7597726ceaf1a817eb0890a42a27cedb57f13e9a9c7d1a494aa2ed_1280.jpg",
		Unit:        "each",
		Stock:       38,
	},
	{
		Name:        "Organic Kale",
		Description: "Nutrient-dense organic kale, freshly harvested and ready for your healthy recipes.",
		Price:       299,
		Category:    "vegetables",
		ImageURL:    "https://images.unsplash.com/photo-1524179091875-bf99a9a6af57?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "bunch",
		Stock:       25,
	},
	{
		Name:        "Organic Blueberries",
		Description: "Sweet, plump organic blueberries packed with antioxidants.",
		Price:       599,
		Category:    "fruits",
		ImageURL:    "https://images.unsplash.com/photo-1498557850523-fd3d118b962e?ixlib=rb-4.0.3&auto=format&fit=crop&w=600&h=500",
		Unit:        "pint",
		Stock:       20,
	},
}

// Seed creates the default admins and the demo catalog when they are
// missing. Running it again is a no-op.
func Seed(ctx context.Context, store port.Storage, log zerolog.Logger) error {
	if err := seedAdmins(ctx, store, log); err != nil {
		return err
	}
	return seedCatalog(ctx, store, log)
}

// seedAdmins checks the username and the recovery email separately, so an
// existing account holding either identity suppresses that seed row.
func seedAdmins(ctx context.Context, store port.Store, log zerolog.Logger) error {
	for _, admin := range defaultAdmins {
		byName, err := store.GetUserByUsername(ctx, admin.Username)
		if err != nil {
			return fmt.Errorf("look up %s: %w", admin.Username, err)
		}
		byEmail, err := store.GetUserByEmail(ctx, admin.Email)
		if err != nil {
			return fmt.Errorf("look up %s: %w", admin.Email, err)
		}
		if byName != nil || byEmail != nil {
			continue
		}

		user, err := store.CreateUser(ctx, admin)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return fmt.Errorf("create admin %s: %w", admin.Username, err)
		}
		log.Info().Int64("user_id", user.ID).Str("username", user.Username).Msg("seeded admin account")
	}
	return nil
}

func seedCatalog(ctx context.Context, store port.Storage, log zerolog.Logger) error {
	var created int
	err := store.WithTx(ctx, func(tx port.Store) error {
		n, err := tx.CountProducts(ctx)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if n != 0 {
			return nil
		}

		for _, p := range demoCatalog {
			if _, err := tx.CreateProduct(ctx, p); err != nil {
				return fmt.Errorf("create product %s: %w", p.Name, err)
			}
			created++
		}
		return nil
	})
	if err != nil {
		return err
	}

	if created > 0 {
		log.Info().Int("products", created).Msg("seeded demo catalog")
	}
	return nil
}
