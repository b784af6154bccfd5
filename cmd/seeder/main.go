package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	ch "github.com/travis-scholtens/sladdle/internal/channel"
	"github.com/travis-scholtens/sladdle/internal/database"
	"github.com/travis-scholtens/sladdle/internal/docstore"
	"github.com/travis-scholtens/sladdle/internal/pubsub"
)

// Simplified config loading for the script
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "local.db",
		"MIGRATIONS_DIR": "migrations",
		"RATINGS_TOPIC":  string(pubsub.EventRatingSnapshotRefresh),
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	for _, key := range []string{"TURSO_PRIMARY_URL", "TURSO_AUTH_TOKEN", "GCP_PROJECT"} {
		config[key] = os.Getenv(key)
	}
	return config
}

var firstNames = []string{"Alice", "Bob", "Carol", "Dave", "Erin", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Oscar"}

func ratingFields(ratings map[string]*float64) map[string]any {
	fields := make(map[string]any, len(ratings))
	for name, rating := range ratings {
		fields[name] = rating
	}
	return fields
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to open database: %s", err)
	}
	defer teardown()

	docs := docstore.New(db)
	channels := ch.New(docs)

	// A demo channel bound to a seeded division, with a roster of rated
	// players and a name directory entry per player.
	const channelID = "C0SEEDER00"
	defn := ch.TeamDefinition{League: "cpta", Division: "d5", Team: "seeder-1"}
	if err := channels.SetTeam(channelID, defn); err != nil {
		log.Fatalf("Failed to bind demo channel: %s", err)
	}

	ids := make(map[string]any, len(firstNames))
	for i, name := range firstNames {
		ids[name] = fmt.Sprintf("U0SEED%04d", i)
	}
	if err := docs.Set("slack/names", map[string]any{"ids": ids}); err != nil {
		log.Fatalf("Failed to write name directory: %s", err)
	}

	// With a project configured, the ratings also go out through the rating
	// pipeline, so a subscribed server ingests the same snapshots.
	var publisher pubsub.PubSubClient
	if project := cfg["GCP_PROJECT"]; project != "" {
		publisher = pubsub.New(project)
		defer publisher.Close()
	}

	for team := 1; team <= 4; team++ {
		ratings := map[string]map[string]*float64{
			"pti":       {},
			"divtskill": {},
		}
		for _, name := range firstNames {
			pti := 30 + rand.Float64()*25
			skill := rand.Float64() * 20
			ratings["pti"][name] = &pti
			ratings["divtskill"][name] = &skill
		}
		teamID := fmt.Sprintf("seeder-%d", team)
		path := fmt.Sprintf("rankings/%s/divisions/%s/teams/%s", defn.League, defn.Division, teamID)
		err := docs.Set(path, map[string]any{
			"name":      fmt.Sprintf("Seeder %d", team),
			"pti":       ratingFields(ratings["pti"]),
			"divtskill": ratingFields(ratings["divtskill"]),
		})
		if err != nil {
			log.Fatalf("Failed to write team ratings: %s", err)
		}
		if publisher == nil {
			continue
		}
		for flavor, list := range ratings {
			err := publisher.SendMessage(cfg["RATINGS_TOPIC"], pubsub.RatingSnapshotRefresh{
				League:       defn.League,
				Division:     defn.Division,
				Team:         teamID,
				Flavor:       flavor,
				Ratings:      list,
				CapturedAtMs: time.Now().UnixMilli(),
			})
			if err != nil {
				log.Fatalf("Failed to publish rating snapshot: %s", err)
			}
		}
	}
	log.Info("Ensured demo channel and division exist.", "channel", channelID)

	const batchSize = 100 // Insert 100 documents at a time
	const numLineups = 10000

	log.Info("Preparing to insert dummy lineups...", "total", numLineups, "batch_size", batchSize)
	startTime := time.Now()

	tx, err := db.Begin()
	if err != nil {
		log.Fatalf("Failed to begin transaction: %s", err)
	}

	valueStrings := make([]string, 0, batchSize)
	valueArgs := make([]interface{}, 0, batchSize*3)

	for i := 0; i < numLineups; i++ {
		// Historical lineups spread over synthetic channels, so queries
		// against any one channel stay realistic.
		seededChannel := "C" + strings.ToUpper(uuid.NewString()[:10])
		playOn := time.Now().Add(-time.Duration(rand.Intn(365*24)) * time.Hour).Format("2006-01-02")

		courts := make(map[string][]string, 6)
		for c := 1; c <= 6; c++ {
			a := firstNames[rand.Intn(len(firstNames))]
			b := firstNames[rand.Intn(len(firstNames))]
			courts[fmt.Sprint(c)] = []string{a, b}
		}
		blob, _ := json.Marshal(map[string]any{
			"play_on_date": playOn,
			"courts":       courts,
			"opponent":     fmt.Sprintf("Seeder %d", 1+rand.Intn(4)),
			"home":         rand.Intn(2) == 0,
		})

		valueStrings = append(valueStrings, "(?, ?, ?, 1)")
		valueArgs = append(valueArgs,
			fmt.Sprintf("channels/%s/lineups/%s", seededChannel, playOn),
			fmt.Sprintf("channels/%s/lineups", seededChannel),
			string(blob),
		)

		if (i+1)%batchSize == 0 || (i+1) == numLineups {
			stmt := fmt.Sprintf(`
				INSERT OR IGNORE INTO documents (path, collection, data, version)
				VALUES %s;`, strings.Join(valueStrings, ","))

			_, err := tx.Exec(stmt, valueArgs...)
			if err != nil {
				tx.Rollback()
				log.Fatalf("Failed to execute batch insert: %s", err)
			}

			// Reset for the next batch
			valueStrings = make([]string, 0, batchSize)
			valueArgs = make([]interface{}, 0, batchSize*3)
			log.Info("Inserted batch", "completed", i+1, "total", numLineups)
		}
	}

	if err := tx.Commit(); err != nil {
		log.Fatalf("Failed to commit transaction: %s", err)
	}

	duration := time.Since(startTime)
	log.Info("Successfully inserted all dummy lineups.", "duration", duration)
}
