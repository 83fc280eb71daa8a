// Command seed loads demo accounts and courses for local development and
// prints a bearer token for the demo student.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"edu-subscription-platform/internal/config"
	"edu-subscription-platform/internal/domain/model"
	"edu-subscription-platform/internal/domain/ports/repository"
	"edu-subscription-platform/internal/infra/api"
	pg "edu-subscription-platform/internal/infra/db/postgres"
	"edu-subscription-platform/internal/infra/logging"
	"edu-subscription-platform/internal/usecase"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.ApplySchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	userUC := usecase.NewUserUseCase(pg.NewUserRepo(pool), pg.NewTxManager(pool), logging.Nop())
	courses := pg.NewCourseRepo(pool)

	tier := model.AgeTierDevelopment
	student := &model.User{ID: "demo-student", Email: "student@example.com", FullName: "Demo Student",
		Role: model.RoleStudent, AgeGroup: &tier, CreatedAt: time.Now(), IsActive: true}
	teacher := &model.User{ID: "demo-teacher", Email: "teacher@example.com", FullName: "Demo Teacher",
		Role: model.RoleTeacher, CreatedAt: time.Now(), IsActive: true}
	for _, u := range []*model.User{student, teacher} {
		if err := userUC.Upsert(ctx, u); err != nil {
			log.Fatalf("seed user %s: %v", u.ID, err)
		}
	}

	seed := []struct {
		ID, Title string
		Level     model.LearningLevel
		Age       model.AgeTier
		Premium   bool
		Videos    int
	}{
		{"course-ai-basics", "What is AI?", model.LevelFoundation, model.AgeTierFoundation, false, 3},
		{"course-patterns", "Finding Patterns", model.LevelDevelopment, model.AgeTierDevelopment, false, 4},
		{"course-build-a-model", "Build Your First Model", model.LevelDevelopment, model.AgeTierDevelopment, true, 6},
		{"course-ai-ethics", "AI and Society", model.LevelMastery, model.AgeTierMastery, true, 5},
	}
	for _, s := range seed {
		c := &model.Course{
			ID:              s.ID,
			Title:           s.Title,
			LearningLevel:   s.Level,
			SkillAreas:      []model.SkillArea{model.SkillAILiteracy},
			AgeGroup:        s.Age,
			IsPremium:       s.Premium,
			IsPublished:     true,
			DifficultyLevel: 1,
			CreatedBy:       teacher.ID,
			CreatedAt:       time.Now(),
		}
		for i := 1; i <= s.Videos; i++ {
			c.Videos = append(c.Videos, model.Video{
				ID:              fmt.Sprintf("%s-v%d", s.ID, i),
				Title:           fmt.Sprintf("Lesson %d", i),
				StorageKey:      fmt.Sprintf("courses/%s/lesson-%d.mp4", s.ID, i),
				DurationSeconds: 300,
				Position:        i,
			})
		}
		if err := courses.Save(ctx, repository.NoTX, c); err != nil {
			log.Fatalf("seed course %s: %v", s.ID, err)
		}
		fmt.Printf("seeded: %s (premium=%t, videos=%d)\n", c.Title, c.IsPremium, len(c.Videos))
	}

	tok, err := api.NewAuthManager(cfg.Auth.JWTSecret, 24*time.Hour).Mint(student.ID, student.Role)
	if err != nil {
		log.Fatalf("mint token: %v", err)
	}
	fmt.Printf("student token (24h): %s\n", tok)
}
