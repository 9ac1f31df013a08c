package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/lumora/learnhub-backend/internal/config"
	"github.com/lumora/learnhub-backend/internal/database"
	"github.com/lumora/learnhub-backend/internal/logger"
	"github.com/lumora/learnhub-backend/internal/model"
	"github.com/lumora/learnhub-backend/internal/repository"
)

// Seeds a demo catalogue: a few categories, one instructor account
// (password "password123") and a spread of courses, including a system
// course with no instructor and a tiny-capacity course for trying out
// the enrollment limits.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	categoryRepo := repository.NewCategoryRepository(pool)
	courseRepo := repository.NewCourseRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	fmt.Println("=== Seeding Demo Catalogue ===")

	categoryNames := []string{"Programming", "Mathematics", "Design", "Languages"}
	categoryIDs := make(map[string]int, len(categoryNames))
	for _, name := range categoryNames {
		var id int
		err := pool.QueryRow(ctx, "SELECT id FROM categories WHERE name = $1", name).Scan(&id)
		if err != nil {
			if err != pgx.ErrNoRows {
				log.Fatal().Err(err).Msg("Failed to check existing category")
			}
			category := &model.Category{Name: name}
			if err := categoryRepo.Create(ctx, category); err != nil {
				log.Fatal().Err(err).Str("category", name).Msg("Failed to create category")
			}
			id = category.ID
			fmt.Printf("Created category %q with ID: %d\n", name, id)
		} else {
			fmt.Printf("Found existing category %q with ID: %d\n", name, id)
		}
		categoryIDs[name] = id
	}

	// Demo instructor.
	instructorEmail := "instructor@learnhub.local"
	instructor, err := userRepo.GetByEmail(ctx, instructorEmail)
	if err != nil {
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing instructor")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte("password123"), cfg.BcryptCost)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to hash password")
		}
		instructor = model.NewInstructor("Demo Instructor", instructorEmail, string(hash), "M.Sc.", []string{"Computer Science"})
		if err := userRepo.Create(ctx, instructor); err != nil {
			log.Fatal().Err(err).Msg("Failed to create instructor")
		}
		fmt.Printf("Created instructor with ID: %d\n", instructor.ID)
	} else {
		fmt.Printf("Found existing instructor with ID: %d\n", instructor.ID)
	}

	capacity := func(n int) *int { return &n }
	categoryOf := func(name string) *int {
		id := categoryIDs[name]
		return &id
	}

	courses := []*model.Course{
		{
			Title:        "Go for Backend Engineers",
			Description:  "Build production HTTP services in Go.",
			CategoryID:   categoryOf("Programming"),
			InstructorID: &instructor.ID,
			Status:       model.CourseStatusActive,
			Capacity:     capacity(30),
		},
		{
			Title:        "Linear Algebra Fundamentals",
			Description:  "Vectors, matrices and the intuition behind them.",
			CategoryID:   categoryOf("Mathematics"),
			InstructorID: &instructor.ID,
			Status:       model.CourseStatusActive,
			Capacity:     capacity(50),
		},
		{
			Title:        "Typography Basics",
			Description:  "A two-seat workshop, good for testing full courses.",
			CategoryID:   categoryOf("Design"),
			InstructorID: &instructor.ID,
			Status:       model.CourseStatusActive,
			Capacity:     capacity(2),
		},
		{
			Title:        "Archived Latin Course",
			Description:  "Inactive course kept around for the retention sweep.",
			CategoryID:   categoryOf("Languages"),
			InstructorID: &instructor.ID,
			Status:       model.CourseStatusInactive,
		},
		{
			// System course: no instructor, never swept, unlimited seats.
			Title:       "Platform Onboarding",
			Description: "How to use LearnHub. Open to everyone.",
			Status:      model.CourseStatusActive,
		},
	}

	for _, course := range courses {
		var id int
		err := pool.QueryRow(ctx, "SELECT id FROM courses WHERE title = $1", course.Title).Scan(&id)
		if err == nil {
			fmt.Printf("Found existing course %q with ID: %d\n", course.Title, id)
			continue
		}
		if err != pgx.ErrNoRows {
			log.Fatal().Err(err).Msg("Failed to check existing course")
		}
		if err := courseRepo.Create(ctx, course); err != nil {
			log.Fatal().Err(err).Str("title", course.Title).Msg("Failed to create course")
		}
		fmt.Printf("Created course %q with ID: %d\n", course.Title, course.ID)
	}

	fmt.Println("Done.")
}
