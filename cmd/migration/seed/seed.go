package seed

import (
	"time"
	"topup/config"
	. "topup/internal/models"
	"topup/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const SEED_PASSWORD = "password"

func stringPtr(s string) *string {
	return &s
}

func Seed(db *gorm.DB, config config.Config, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	auth := services.NewAuthService(config, nil)
	hash, err := auth.HashPassword(SEED_PASSWORD)
	if err != nil {
		return log.Err("failed to hash seed password", err)
	}

	users := map[Role]*User{
		RoleAdmin:    {Email: "admin@topup.local", Name: "Admin", Role: RoleAdmin},
		RoleOwner:    {Email: "owner@topup.local", Name: "Anna", Role: RoleOwner},
		RoleOperator: {Email: "operator@topup.local", Name: "Olga", Role: RoleOperator},
		RoleViewer:   {Email: "viewer@topup.local", Name: "Viewer", Role: RoleViewer},
	}
	for role, user := range users {
		user.PasswordHash = hash
		var existing User
		if err := db.First(&existing, "email = ?", user.Email).Error; err == nil {
			log.Info("User already exists", "email", user.Email)
			users[role] = &existing
			continue
		}
		if err := db.Create(user).Error; err != nil {
			return log.Err("failed to create user", err, "email", user.Email)
		}
	}

	apartment := &Apartment{
		Name:    "Loft Navigli",
		Address: "Via Vigevano 12, Milano",
		City:    stringPtr("Milano"),
		OwnerID: users[RoleOwner].ID,
		Bedrooms: datatypes.JSONSlice[Bedroom]{
			{Beds: []Bed{{Type: BedQueen}}},
			{Beds: []Bed{{Type: BedSingle}, {Type: BedSingle}}},
		},
		Salon:                 datatypes.NewJSONType(Salon{HasSofaBed: true, SofaBedCapacity: 2}),
		HowToEnterDescription: stringPtr("Keys in the lockbox by the door, code 1234"),
	}
	if err := db.Create(apartment).Error; err != nil {
		return log.Err("failed to create apartment", err)
	}

	loc := config.Location()
	tomorrow := time.Now().In(loc).AddDate(0, 0, 1)
	start := time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 10, 0, 0, 0, loc)
	end := start.Add(3 * time.Hour)

	shift := NewShift(
		apartment.ID,
		users[RoleOperator].ID,
		users[RoleAdmin].ID,
		tomorrow,
		start,
		&end,
		loc,
	)
	shift.Notes = stringPtr("Seeded shift")
	if err := db.Create(shift).Error; err != nil {
		return log.Err("failed to create shift", err)
	}

	checkIn := start.AddDate(0, 0, 2)
	schedule := &CleaningSchedule{
		ApartmentID: apartment.ID,
		Year:        checkIn.Year(),
		Month:       int(checkIn.Month()),
		Bookings: datatypes.JSONSlice[Booking]{
			{CheckIn: checkIn, CheckOut: checkIn.AddDate(0, 0, 3), GuestCount: 2},
		},
	}
	if err := db.Create(schedule).Error; err != nil {
		return log.Err("failed to create cleaning schedule", err)
	}

	log.Info("Seed complete", "users", len(users), "password", SEED_PASSWORD)
	return nil
}
