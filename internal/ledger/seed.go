package ledger

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/officeledger/internal/models"
)

// SeedPassword is the initial password of both seeded accounts.
const SeedPassword = "123456"

var (
	SeedCategories = []string{"Laptop", "Monitor", "Furniture", "Stationery", "Networking"}
	SeedLocations  = []string{"Gudang A", "Gudang B", "Lantai 2", "Ruang Meeting"}
)

// Seed builds the first-run state: an admin and a staff account, the lookup
// lists and two sample items.
func Seed(now time.Time, hasher Hasher) (models.State, error) {
	if hasher == nil {
		hasher = DefaultHasher
	}
	hash, err := hasher(SeedPassword)
	if err != nil {
		return models.State{}, fmt.Errorf("failed to hash seed password: %w", err)
	}
	now = now.UTC()

	return models.State{
		Users: []models.User{
			{
				ID:        NewID("usr"),
				Name:      "Administrator",
				Username:  "admin",
				Password:  hash,
				Role:      models.RoleAdmin,
				Email:     "admin@example.com",
				AvatarURL: DefaultAvatarURL,
				CreatedAt: now,
			},
			{
				ID:        NewID("usr"),
				Name:      "Staff A",
				Username:  "staff",
				Password:  hash,
				Role:      models.RoleUser,
				Email:     "staff@example.com",
				AvatarURL: DefaultAvatarURL,
				CreatedAt: now,
			},
		},
		Items: []models.Item{
			{
				ID:           NewID("itm"),
				Name:         "Laptop Lenovo ThinkPad X1",
				Code:         "ITM-0001",
				Category:     "Laptop",
				Location:     "Gudang A",
				Condition:    models.ConditionGood,
				Quantity:     10,
				Available:    8,
				Image:        DefaultItemImage,
				PurchaseDate: now.Format(time.DateOnly),
				Notes:        "Garansi 2 tahun",
				CreatedAt:    now,
				UpdatedAt:    now,
			},
			{
				ID:        NewID("itm"),
				Name:      `Monitor Dell 24"`,
				Code:      "ITM-0002",
				Category:  "Monitor",
				Location:  "Gudang B",
				Condition: models.ConditionGood,
				Quantity:  15,
				Available: 15,
				Image:     DefaultItemImage,
				CreatedAt: now,
				UpdatedAt: now,
			},
		},
		Loans:      []models.Loan{},
		Requests:   []models.Request{},
		Audits:     []models.Audit{},
		Categories: append([]string(nil), SeedCategories...),
		Locations:  append([]string(nil), SeedLocations...),
		Sequences:  map[string]int{"item": 2},
	}, nil
}
