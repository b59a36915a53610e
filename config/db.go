package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"hotel-addons/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// SeedDatabase ใส่ข้อมูลตั้งต้นเฉพาะตารางที่ยังว่าง
func SeedDatabase(db *gorm.DB) {
	// ---------------- Currencies ----------------
	var curCount int64
	db.Model(&models.Currency{}).Count(&curCount)
	if curCount == 0 {
		currencies := []models.Currency{
			{Code: "LKR", Name: "Sri Lankan Rupee", Symbol: "Rs"},
			{Code: "USD", Name: "US Dollar", Symbol: "$"},
			{Code: "EUR", Name: "Euro", Symbol: "€"},
			{Code: "THB", Name: "Thai Baht", Symbol: "฿"},
		}
		if err := db.Create(&currencies).Error; err != nil {
			log.Printf("warning: failed to seed currencies: %v", err)
		} else {
			log.Println("Currencies seeded")
		}
	}

	// ---------------- Taxes ----------------
	var taxCount int64
	db.Model(&models.TaxRate{}).Count(&taxCount)
	if taxCount == 0 {
		taxes := []models.TaxRate{
			{Name: "VAT", Rate: decimal.NewFromInt(12), Active: true},
			{Name: "Service charge", Rate: decimal.NewFromInt(10), Active: true},
		}
		if err := db.Create(&taxes).Error; err != nil {
			log.Printf("warning: failed to seed taxes: %v", err)
		} else {
			log.Println("Taxes seeded")
		}
	}

	// ---------------- RoomTypes ----------------
	var rtCount int64
	db.Model(&models.RoomType{}).Count(&rtCount)
	if rtCount == 0 {
		roomTypes := []models.RoomType{
			{TypeName: "Standard", MaxGuests: 2},
			{TypeName: "Deluxe", MaxGuests: 4},
		}
		db.Create(&roomTypes)
		log.Println("RoomTypes seeded")
	}

	// ---------------- Service catalog ----------------
	var itemCount int64
	db.Model(&models.ServiceItemMaster{}).Count(&itemCount)
	if itemCount > 0 {
		log.Println("Service catalog already seeded")
		return
	}

	var taxIDs []uint
	db.Model(&models.TaxRate{}).Order("id ASC").Pluck("id", &taxIDs)
	vatOnly := []uint{}
	if len(taxIDs) > 0 {
		vatOnly = taxIDs[:1]
	}

	now := time.Now()
	items := []models.ServiceItemMaster{
		{
			ServiceName: "Airport Transfer",
			Description: "One-way car transfer between the airport and the hotel",
			Category:    "Transport",
			UnitType:    "per trip",
			Pricing: []models.ServiceItemPrice{
				{Currency: "LKR", Amount: decimal.NewFromInt(3000)},
				{Currency: "USD", Amount: decimal.NewFromInt(10)},
			},
			TaxIDs:    models.EncodeTaxIDs(vatOnly),
			Status:    models.ServiceStatusActive,
			CreatedBy: "system",
			CreatedAt: now,
			UpdatedBy: "system",
			UpdatedAt: now,
		},
		{
			ServiceName: "Spa Treatment",
			Description: "60 minute massage",
			Category:    "Wellness",
			UnitType:    "per person",
			Pricing: []models.ServiceItemPrice{
				{Currency: "LKR", Amount: decimal.NewFromInt(8500)},
				{Currency: "USD", Amount: decimal.NewFromInt(28)},
				{Currency: "THB", Amount: decimal.NewFromInt(950)},
			},
			TaxIDs:    models.EncodeTaxIDs(taxIDs),
			Status:    models.ServiceStatusActive,
			CreatedBy: "system",
			CreatedAt: now,
			UpdatedBy: "system",
			UpdatedAt: now,
		},
	}
	if err := db.Create(&items).Error; err != nil {
		log.Printf("warning: failed to seed service catalog: %v", err)
		return
	}
	log.Println("Service catalog seeded")
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "Local")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// ResolveMySQLDSN: MYSQL_URL / DATABASE_URL ก่อน แล้วค่อย DB_* ทีละตัว
func ResolveMySQLDSN() (string, error) {
	raw := strings.TrimSpace(os.Getenv("MYSQL_URL"))
	if raw == "" {
		raw = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	}

	if raw != "" {
		if strings.HasPrefix(raw, "mysql://") {
			return mysqlDSNFromURL(raw)
		}
		return raw, nil
	}

	user := envOrDefault("DB_USER", "root")
	pass := os.Getenv("DB_PASS")
	host := envOrDefault("DB_HOST", "127.0.0.1")
	port := envOrDefault("DB_PORT", "3306")
	dbName := envOrDefault("DB_NAME", "hotel_addons")

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, pass, host, port, dbName,
	), nil
}

// Migrate creates every table the add-on service reads or writes,
// parents before children.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Currency{},
		&models.TaxRate{},
		&models.RoomType{},
		&models.Customer{},
		&models.Room{},
		&models.Booking{},
		&models.BookingRoom{},
		&models.ServiceItemMaster{},
		&models.ServiceItemPrice{},
		&models.ReservationServiceAddon{},
	)
}

func ConnectDatabase(seed bool) error {
	dsn, err := ResolveMySQLDSN()
	if err != nil {
		return err
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold: time.Second,
			LogLevel:      logger.Warn,
			Colorful:      true,
		},
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: newLogger})
	if err != nil {
		return err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	} else {
		log.Printf("info: cannot get raw sql.DB: %v", err)
	}

	DB = db

	if err := Migrate(DB); err != nil {
		return err
	}

	if seed {
		SeedDatabase(DB)
	}
	return nil
}
