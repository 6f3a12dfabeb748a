// Command seed fills a development database with providers, clients and a
// week of open slots, and prints a bearer token for each seeded user.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"mytutor/config"
	"mytutor/database"
	timeslotRepo "mytutor/database/repository/timeslot"
	userRepoPkg "mytutor/database/repository/user"
	"mytutor/models"
	"mytutor/services/directory"
	"mytutor/services/slot"
	"mytutor/utils"

	"go.mongodb.org/mongo-driver/bson"
)

// candidateWindows are session windows as minutes from midnight (UTC).
var candidateWindows = []struct{ Start, End int }{
	{Start: 480, End: 540},   // 8:00 - 9:00
	{Start: 600, End: 690},   // 10:00 - 11:30
	{Start: 840, End: 900},   // 14:00 - 15:00
	{Start: 1080, End: 1200}, // 18:00 - 20:00
}

var subjectPool = []string{"Matemáticas", "Física", "Química", "Programación", "Inglés", "Historia"}

func main() {
	config.LoadConfig()
	database.InitDB()
	defer database.Disconnect(context.Background())

	db := database.Database()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Clear existing data.
	for _, coll := range []string{"users", "slots"} {
		if _, err := db.Collection(coll).DeleteMany(ctx, bson.M{}); err != nil {
			log.Fatalf("Failed to clear %s collection: %v", coll, err)
		}
	}

	users := userRepoPkg.NewMongoUserRepo(db)
	slots := timeslotRepo.NewMongoTimeSlotRepo(db)
	engine := slot.NewSlotEngine(slots, users, directory.NewRepoDirectory(users), utils.SystemClock{})

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	const providerCount, clientCount = 5, 5

	for i := 1; i <= providerCount; i++ {
		subjects := make([]models.Subject, 0, 2)
		for _, idx := range rng.Perm(len(subjectPool))[:2] {
			subjects = append(subjects, models.Subject{Name: subjectPool[idx], Experience: rng.Intn(11)})
		}
		provider := &models.User{
			FirstName: "Tutor",
			LastName:  fmt.Sprintf("%d", i),
			Email:     fmt.Sprintf("tutor_%d@example.com", i),
			Role:      models.RoleProvider,
			Active:    true,
			Provider: &models.ProviderProfile{
				Active:        true,
				Bio:           "Seeded tutor",
				HourlyRate:    float64(10 + rng.Intn(30)),
				Subjects:      subjects,
				RatingAverage: models.DefaultRating,
				Reviews:       []models.Review{},
			},
		}
		if err := users.Create(ctx, provider); err != nil {
			log.Fatalf("Failed to insert provider: %v", err)
		}

		caller := models.Identity{UserID: provider.ID, Role: models.RoleProvider}
		created := 0
		today := time.Now().UTC().Truncate(24 * time.Hour)
		for day := 1; day <= 7; day++ {
			w := candidateWindows[rng.Intn(len(candidateWindows))]
			date := today.AddDate(0, 0, day)
			start := date.Add(time.Duration(w.Start) * time.Minute)
			end := date.Add(time.Duration(w.End) * time.Minute)
			if _, err := engine.CreateSlot(ctx, caller, start, end); err != nil {
				log.Printf("Skipping slot for %s: %v", provider.ID, err)
				continue
			}
			created++
		}
		printToken(provider, created)
	}

	for i := 1; i <= clientCount; i++ {
		client := &models.User{
			FirstName: "Student",
			LastName:  fmt.Sprintf("%d", i),
			Email:     fmt.Sprintf("student_%d@example.com", i),
			Role:      models.RoleClient,
			Active:    true,
		}
		if err := users.Create(ctx, client); err != nil {
			log.Fatalf("Failed to insert client: %v", err)
		}
		printToken(client, 0)
	}
}

func printToken(u *models.User, slots int) {
	token, err := utils.GenerateToken(u.ID, string(u.Role), 7*24*time.Hour)
	if err != nil {
		log.Fatalf("Failed to sign token for %s: %v", u.ID, err)
	}
	fmt.Printf("%-8s %-24s slots=%d\n  token=%s\n", u.Role, u.Email, slots, token)
}
