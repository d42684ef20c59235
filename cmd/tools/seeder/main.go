package main

import (
	"context"
	"log"
	"os"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	seedAdmin(ctx, pool)
	seedCatalog(ctx, pool)
	seedShipping(ctx, pool)
	seedPrinters(ctx, pool)
	seedContent(ctx, pool)
	seedSettings(ctx, pool)

	log.Println("Seeding completed successfully!")
}

func seedAdmin(ctx context.Context, pool *pgxpool.Pool) {
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme123"
	}
	hash, err := argon2id.CreateHash(password, argon2id.DefaultParams)
	if err != nil {
		log.Fatalf("Failed to hash admin password: %v", err)
	}

	log.Println("Seeding Admin...")
	_, err = pool.Exec(ctx, `
		INSERT INTO admins (email, name, password_hash)
		VALUES ('admin@keepsake.shop', 'Store Admin', $1)
		ON CONFLICT (email) DO NOTHING;
	`, hash)
	if err != nil {
		log.Printf("Failed to seed admin: %v", err)
	}
}

func seedCatalog(ctx context.Context, pool *pgxpool.Pool) {
	categories := []struct {
		Name string
		Slug string
	}{
		{"Mugs", "mugs"},
		{"Keychains", "keychains"},
		{"Apparel", "apparel"},
		{"Tote Bags", "tote-bags"},
		{"Frames", "frames"},
		{"Stationery", "stationery"},
	}

	log.Println("Seeding Categories...")
	catIDs := make(map[string]string)
	for _, c := range categories {
		var id string
		err := pool.QueryRow(ctx, `
			INSERT INTO categories (name, slug) VALUES ($1, $2)
			ON CONFLICT (slug) DO UPDATE SET name = EXCLUDED.name
			RETURNING id::text;
		`, c.Name, c.Slug).Scan(&id)
		if err != nil {
			log.Printf("Failed to upsert category %s: %v", c.Name, err)
			continue
		}
		catIDs[c.Slug] = id
	}

	products := []struct {
		Title          string
		Slug           string
		Category       string
		Price          int64
		Stock          int
		PrintAvailable bool
		PrintSurcharge int64
		Image          string
		Tiers          []struct {
			MinQty int
			Kind   string
			Value  int64
		}
	}{
		{
			Title: "Classic City Mug", Slug: "classic-city-mug", Category: "mugs",
			Price: 350000, Stock: 120, PrintAvailable: true, PrintSurcharge: 50000,
			Image: "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=800",
			Tiers: []struct {
				MinQty int
				Kind   string
				Value  int64
			}{
				{MinQty: 6, Kind: "percent", Value: 1000},
				{MinQty: 12, Kind: "percent", Value: 2000},
			},
		},
		{
			Title: "Landmark Keychain", Slug: "landmark-keychain", Category: "keychains",
			Price: 120000, Stock: 400, PrintAvailable: true, PrintSurcharge: 20000,
			Image: "https://images.unsplash.com/photo-1622560480605-d83c853bc5c3?w=800",
			Tiers: []struct {
				MinQty int
				Kind   string
				Value  int64
			}{
				{MinQty: 10, Kind: "amount", Value: 10000},
				{MinQty: 50, Kind: "amount", Value: 25000},
			},
		},
		{
			Title: "Heritage T-Shirt", Slug: "heritage-t-shirt", Category: "apparel",
			Price: 750000, Stock: 80, PrintAvailable: true, PrintSurcharge: 100000,
			Image: "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=800",
			Tiers: []struct {
				MinQty int
				Kind   string
				Value  int64
			}{
				{MinQty: 5, Kind: "percent", Value: 1500},
			},
		},
		{
			Title: "Market Tote Bag", Slug: "market-tote-bag", Category: "tote-bags",
			Price: 450000, Stock: 150, PrintAvailable: true, PrintSurcharge: 60000,
			Image: "https://images.unsplash.com/photo-1591561954557-26941169b49e?w=800",
		},
		{
			Title: "Skyline Photo Frame", Slug: "skyline-photo-frame", Category: "frames",
			Price: 980000, Stock: 45, PrintAvailable: false,
			Image: "https://images.unsplash.com/photo-1513519245088-0e12902e5a38?w=800",
		},
		{
			Title: "Souvenir Postcard Set", Slug: "souvenir-postcard-set", Category: "stationery",
			Price: 180000, Stock: 300, PrintAvailable: false,
			Image: "https://images.unsplash.com/photo-1528747045269-390fe33c19f2?w=800",
			Tiers: []struct {
				MinQty int
				Kind   string
				Value  int64
			}{
				{MinQty: 20, Kind: "percent", Value: 1000},
			},
		},
	}

	log.Println("Seeding Products...")
	for _, p := range products {
		catID, ok := catIDs[p.Category]
		if !ok {
			log.Printf("Missing category ID for %s", p.Category)
			continue
		}

		var prodID string
		err := pool.QueryRow(ctx, `
			INSERT INTO products (title, slug, description, category_id, price, stock,
				print_available, print_surcharge, image_url, active)
			VALUES ($1, $2, '', $3::uuid, $4, $5, $6, $7, $8, true)
			ON CONFLICT (slug) DO UPDATE SET
				price = EXCLUDED.price,
				stock = EXCLUDED.stock,
				category_id = EXCLUDED.category_id,
				print_available = EXCLUDED.print_available,
				print_surcharge = EXCLUDED.print_surcharge,
				image_url = EXCLUDED.image_url,
				updated_at = now()
			RETURNING id::text;
		`, p.Title, p.Slug, catID, p.Price, p.Stock, p.PrintAvailable, p.PrintSurcharge, p.Image).Scan(&prodID)
		if err != nil {
			log.Printf("Failed to seed product %s: %v", p.Title, err)
			continue
		}

		if _, err := pool.Exec(ctx, "DELETE FROM price_tiers WHERE product_id = $1::uuid", prodID); err != nil {
			log.Printf("Failed to reset tiers for %s: %v", p.Title, err)
			continue
		}
		for i, t := range p.Tiers {
			_, err := pool.Exec(ctx, `
				INSERT INTO price_tiers (product_id, min_qty, kind, value, sort_order)
				VALUES ($1::uuid, $2, $3, $4, $5);
			`, prodID, t.MinQty, t.Kind, t.Value, i)
			if err != nil {
				log.Printf("Failed to seed tier for %s: %v", p.Title, err)
			}
		}
	}
}

func seedShipping(ctx context.Context, pool *pgxpool.Pool) {
	states := map[string][]struct {
		Name string
		Fee  int64
	}{
		"Lagos": {
			{"Ikeja", 150000},
			{"Lekki", 200000},
			{"Surulere", 150000},
			{"Yaba", 120000},
		},
		"Abuja FCT": {
			{"Wuse", 250000},
			{"Garki", 250000},
			{"Maitama", 300000},
		},
		"Rivers": {
			{"Port Harcourt", 350000},
		},
		"Oyo": {
			{"Ibadan", 300000},
		},
	}

	log.Println("Seeding States & Locations...")
	for stateName, locations := range states {
		var stateID string
		err := pool.QueryRow(ctx, `
			INSERT INTO states (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING id::text;
		`, stateName).Scan(&stateID)
		if err != nil {
			log.Printf("Failed to upsert state %s: %v", stateName, err)
			continue
		}
		for _, loc := range locations {
			_, err := pool.Exec(ctx, `
				INSERT INTO locations (state_id, name, fee)
				SELECT $1::uuid, $2, $3
				WHERE NOT EXISTS (
					SELECT 1 FROM locations WHERE state_id = $1::uuid AND name = $2
				);
			`, stateID, loc.Name, loc.Fee)
			if err != nil {
				log.Printf("Failed to seed location %s: %v", loc.Name, err)
			}
		}
	}
}

func seedPrinters(ctx context.Context, pool *pgxpool.Pool) {
	printers := []struct {
		Name      string
		Contact   string
		Surcharge int64
	}{
		{"Ikeja Print Hub", "+234 801 111 2222", 50000},
		{"Island Custom Prints", "+234 802 333 4444", 80000},
	}

	log.Println("Seeding Printers...")
	for _, p := range printers {
		_, err := pool.Exec(ctx, `
			INSERT INTO printers (name, contact, surcharge, active)
			SELECT $1, $2, $3, true
			WHERE NOT EXISTS (SELECT 1 FROM printers WHERE name = $1);
		`, p.Name, p.Contact, p.Surcharge)
		if err != nil {
			log.Printf("Failed to seed printer %s: %v", p.Name, err)
		}
	}
}

func seedContent(ctx context.Context, pool *pgxpool.Pool) {
	faqs := []struct {
		Question string
		Answer   string
		Position int
	}{
		{"How long does custom printing take?", "Custom printed items ship within 3 to 5 business days after the order is confirmed.", 1},
		{"Do you deliver outside Lagos?", "Yes. Delivery fees depend on the selected state and location at checkout.", 2},
		{"Can I return a custom printed item?", "Custom printed items can only be returned when the print is defective or does not match the submitted text.", 3},
		{"Is there a bulk discount?", "Most products carry quantity tiers. The product page shows the discounted unit price as you raise the quantity.", 4},
	}

	log.Println("Seeding FAQs...")
	for _, f := range faqs {
		_, err := pool.Exec(ctx, `
			INSERT INTO faqs (question, answer, position)
			SELECT $1, $2, $3
			WHERE NOT EXISTS (SELECT 1 FROM faqs WHERE question = $1);
		`, f.Question, f.Answer, f.Position)
		if err != nil {
			log.Printf("Failed to seed FAQ: %v", err)
		}
	}

	slides := []struct {
		Title    string
		Subtitle string
		Image    string
		Link     string
		Position int
	}{
		{"Custom Mugs", "Your city, your mug", "https://images.unsplash.com/photo-1514228742587-6b1558fcca3d?w=1600", "/products/classic-city-mug", 1},
		{"Bulk Keychains", "Tier pricing from 10 pieces", "https://images.unsplash.com/photo-1622560480605-d83c853bc5c3?w=1600", "/products/landmark-keychain", 2},
	}

	log.Println("Seeding Carousel...")
	for _, s := range slides {
		_, err := pool.Exec(ctx, `
			INSERT INTO carousel_slides (title, subtitle, image_url, link_url, position, active)
			SELECT $1, $2, $3, $4, $5, true
			WHERE NOT EXISTS (SELECT 1 FROM carousel_slides WHERE title = $1);
		`, s.Title, s.Subtitle, s.Image, s.Link, s.Position)
		if err != nil {
			log.Printf("Failed to seed slide %s: %v", s.Title, err)
		}
	}
}

func seedSettings(ctx context.Context, pool *pgxpool.Pool) {
	settings := map[string]string{
		"free_shipping_threshold": "5000000",
		"store_whatsapp":          "+234 800 000 0000",
		"store_email":             "hello@keepsake.shop",
	}

	log.Println("Seeding Settings...")
	for key, value := range settings {
		_, err := pool.Exec(ctx, `
			INSERT INTO settings (key, value) VALUES ($1, $2)
			ON CONFLICT (key) DO NOTHING;
		`, key, value)
		if err != nil {
			log.Printf("Failed to seed setting %s: %v", key, err)
		}
	}
}
