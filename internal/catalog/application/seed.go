package application

import (
	"github.com/shopspring/decimal"

	"github.com/dmehra2102/storefront/internal/catalog/domain"
)

// SeedProducts is the starter catalogue loaded into an empty database.
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Premium Headphones", Description: "High-quality wireless headphones with noise cancellation", Category: "Electronics", Price: decimal.RequireFromString("199.99"), Stock: 15},
		{ID: 2, Name: "Running Shoes", Description: "Comfortable running shoes for everyday use", Category: "Footwear", Price: decimal.RequireFromString("89.99"), Stock: 25},
		{ID: 3, Name: "Smart Watch", Description: "Feature-rich smartwatch with health monitoring", Category: "Electronics", Price: decimal.RequireFromString("249.99"), Stock: 8},
		{ID: 4, Name: "Backpack", Description: "Durable backpack with laptop compartment", Category: "Accessories", Price: decimal.RequireFromString("59.99"), Stock: 30},
		{ID: 5, Name: "Water Bottle", Description: "Insulated water bottle keeps drinks cold for 24 hours", Category: "Accessories", Price: decimal.RequireFromString("24.99"), Stock: 50},
		{ID: 6, Name: "Desk Lamp", Description: "Adjustable LED desk lamp with multiple brightness settings", Category: "Home", Price: decimal.RequireFromString("39.99"), Stock: 20},
	}
}
