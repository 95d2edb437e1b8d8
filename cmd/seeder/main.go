package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mauv0809/slot-matcher/internal/database"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
)

var universities = []string{"서울대", "연세대", "고려대", "성균관대", "한양대", "서강대"}
var departments = []string{"경영학과", "컴퓨터공학과", "경제학과", "심리학과", "디자인학과"}

// Simplified config loading for the script
func loadConfig() (dbName, primaryURL, authToken, migrations string) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}
	get := func(key, fallback string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return fallback
	}
	primaryURL = get("TURSO_PRIMARY_URL", "")
	authToken = get("TURSO_AUTH_TOKEN", "")
	if primaryURL != "" && authToken == "" {
		log.Fatalf("Error: TURSO_AUTH_TOKEN is required with TURSO_PRIMARY_URL.")
	}
	return get("DB_NAME", "slots.db"), primaryURL, authToken, get("MIGRATIONS_DIR", "migrations")
}

func members(n int) []team.Member {
	out := make([]team.Member, n)
	for i := range out {
		out[i] = team.Member{
			Age:        20 + rand.Intn(8),
			University: universities[rand.Intn(len(universities))],
			Department: departments[rand.Intn(len(departments))],
			Instagram:  "seed_" + uuid.NewString()[:8],
		}
	}
	return out
}

func seedTeam(ctx context.Context, store team.TeamStore, date, clock string, role team.Role, gender team.Gender, status team.Status, i int) (*team.Team, error) {
	t := &team.Team{
		Date:             date,
		Time:             clock,
		Role:             role,
		Gender:           gender,
		Phone:            fmt.Sprintf("010%08d", rand.Intn(100000000)),
		RepresentativeID: fmt.Sprintf("seed_%s_%d", clock[:2], i),
		Intro:            "시드 데이터 팀입니다.",
		IsVerified:       role == team.RoleHost || i%2 == 0,
		Status:           status,
		Members:          members(1 + rand.Intn(team.MaxMembers)),
	}
	for j := range t.Members {
		t.Members[j].Position = j + 1
	}
	if err := store.Create(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func main() {
	date := flag.String("date", "", "Date to seed, YYYY-MM-DD")
	guests := flag.Int("guests", 3, "Guests per open slot")
	flag.Parse()

	log.Info("Starting database seeder...")
	if err := slot.ValidateDate(*date); err != nil {
		log.Fatalf("Invalid -date: %s", err)
	}
	dbName, primaryURL, authToken, migrations := loadConfig()

	db, teardown, err := database.InitDB(dbName, primaryURL, authToken, migrations)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()
	ctx := context.Background()

	// Every other slot is opened and gets a host; 21:00 is left public.
	open := []string{"18:00", "19:00", "21:00"}
	_, err = slot.NewStore(db).Upsert(ctx, slot.DailyConfig{
		Date:          *date,
		OpenTimes:     open,
		MaxApplicants: *guests,
		SlotConfigs:   map[string]slot.SlotConfig{},
	})
	if err != nil {
		log.Fatalf("Failed to upsert daily config: %s", err)
	}
	log.Info("Opened slots", "date", *date, "times", open)

	store := team.New(db)
	for _, clock := range open {
		host, err := seedTeam(ctx, store, *date, clock, team.RoleHost, team.GenderMale, team.StatusHostRegistered, 0)
		if err != nil {
			log.Fatalf("Failed to insert host for %s: %s", clock, err)
		}
		if clock == "21:00" {
			if _, err := store.Update(ctx, host.ID, team.Update{IsPublicRoom: team.Set(true)}); err != nil {
				log.Fatalf("Failed to mark %s public: %s", clock, err)
			}
		}
		for i := 1; i <= *guests; i++ {
			if _, err := seedTeam(ctx, store, *date, clock, team.RoleGuest, team.GenderFemale, team.StatusMatchingRequested, i); err != nil {
				log.Fatalf("Failed to insert guest %d for %s: %s", i, clock, err)
			}
		}
		log.Info("Seeded slot", "date", *date, "time", clock, "host", host.ID, "guests", *guests)
	}
	log.Info("Successfully seeded slots.")
}
