package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/doorbell/internal/domain/entities"
	"github.com/johnquangdev/doorbell/internal/infrastructure/database"
	"github.com/johnquangdev/doorbell/pkg/config"
	pkgjwt "github.com/johnquangdev/doorbell/pkg/jwt"
)

// seedhosts creates development hosts with QR lookup keys and prints a
// long-lived access token for each, ready for the mobile app or curl.
func main() {
	tokenExpiry := flag.Duration("token-expiry", 0, "lifetime of the printed tokens (default JWT_ACCESS_EXPIRY)")
	flag.Parse()

	log.Println("🚀 Starting test hosts creation...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatalf("Refusing to seed test hosts in production")
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	jwtManager := pkgjwt.NewManager(cfg.JWT)
	expiry := *tokenExpiry
	if expiry <= 0 {
		expiry = jwtManager.GetAccessExpiry()
	}

	testHosts := []struct {
		Email  string
		Name   string
		QRCode string
	}{
		{Email: "alice@test.local", Name: "Alice", QRCode: "QR-ALICE-FRONT"},
		{Email: "bob@test.local", Name: "Bob", QRCode: "QR-BOB-GATE"},
		{Email: "charlie@test.local", Name: "Charlie", QRCode: "QR-CHARLIE-OFFICE"},
	}

	log.Println("🔑 Creating test hosts and tokens...")

	for i, h := range testHosts {
		code := h.QRCode
		user := &entities.User{
			ID:       uuid.New(),
			Email:    h.Email,
			Name:     h.Name,
			IsActive: true,
			QRCode:   &code,
		}

		// Re-running keeps the existing identity and refreshes the QR code
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "email"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "qr_code", "is_active", "updated_at"}),
		}).Create(user).Error
		if err != nil {
			log.Printf("❌ Failed to create host %s: %v", h.Email, err)
			continue
		}
		if err := db.Where("email = ?", h.Email).First(user).Error; err != nil {
			log.Printf("❌ Failed to reload host %s: %v", h.Email, err)
			continue
		}

		token, err := jwtManager.GenerateAccessTokenWithExpiry(user.Identity(), "host", expiry)
		if err != nil {
			log.Printf("❌ Failed to generate access token for %s: %v", h.Email, err)
			continue
		}

		fmt.Printf("═══════════════════════════════════════════════════════\n")
		fmt.Printf("🟢 Host %d: %s\n", i+1, h.Name)
		fmt.Printf("   Identity: %s\n", user.Identity())
		fmt.Printf("   QR code:  %s\n", code)
		fmt.Printf("\n🔐 Access Token (expiry: %v):\n%s\n", expiry, token)
	}
	fmt.Printf("═══════════════════════════════════════════════════════\n")

	log.Println("✅ Test hosts ready")
}
