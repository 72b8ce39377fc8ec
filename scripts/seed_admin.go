package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/thikana-bd/app-thikana/internal/config"
	"github.com/thikana-bd/app-thikana/internal/logging"
	"github.com/thikana-bd/app-thikana/internal/models"
	"github.com/thikana-bd/app-thikana/internal/services"
	"github.com/thikana-bd/app-thikana/internal/utils"
)

// Creates the initial admin account. Admins are never created through
// the public registration flow; they review tenant profiles and need
// credentials provisioned out of band.
func main() {
	fmt.Println("🌱 Seeding admin account...")

	nid := os.Getenv("ADMIN_NID")
	mobile := os.Getenv("ADMIN_MOBILE")
	name := os.Getenv("ADMIN_NAME")
	password := os.Getenv("ADMIN_PASSWORD")
	if nid == "" || mobile == "" || name == "" || password == "" {
		log.Fatal("ADMIN_NID, ADMIN_MOBILE, ADMIN_NAME and ADMIN_PASSWORD are required")
	}

	if err := utils.ValidateIDNumber(nid); err != nil {
		log.Fatalf("Invalid ADMIN_NID: %v", err)
	}
	if err := utils.ValidateBDMobile(mobile); err != nil {
		log.Fatalf("Invalid ADMIN_MOBILE: %v", err)
	}
	normalized := utils.NormalizePhoneForStorage(mobile)
	if err := utils.ValidatePasswordStrength(password); err != nil {
		log.Fatalf("ADMIN_PASSWORD too weak: %v", err)
	}

	// Load configuration
	if err := config.LoadConfig(); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logging
	if err := logging.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// Initialize MongoDB
	config.InitMongoDB()
	if config.MongoDB == nil {
		log.Fatal("Failed to initialize MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := services.NewMongoUserStore(config.MongoDB.Collection(config.AppConfig.UserCollection))

	if existing, err := store.FindByNID(ctx, nid); err == nil {
		fmt.Printf("⚠️  Account for NID %s already exists (role: %s). Do you want to keep it? (Y/n): ",
			nid, existing.Role)
		var response string
		_, err := fmt.Scanln(&response)
		if err != nil {
			fmt.Println("❌ Error reading input")
			return
		}
		if response != "n" && response != "N" {
			fmt.Println("❌ Seeding cancelled")
			return
		}
		log.Fatal("Remove the existing account manually before reseeding")
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	admin := &models.User{
		NIDNumber:          nid,
		FullNameBN:         name,
		FullNameEN:         name,
		MobileNumber:       normalized,
		PasswordHash:       hash,
		Role:               models.RoleAdmin,
		VerificationStatus: models.VerificationStatusVerified,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := store.Create(ctx, admin); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}

	fmt.Printf("✅ Admin account created: %s (%s)\n", name, admin.ID.Hex())
	fmt.Println("\n🎉 Seeding completed successfully!")
}
