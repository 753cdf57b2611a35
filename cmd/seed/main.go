package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"coursemarket/internal/auth"
	"coursemarket/internal/cache"
	"coursemarket/internal/config"
	"coursemarket/internal/db"
	apperr "coursemarket/internal/errors"
	"coursemarket/internal/logging"
	"coursemarket/internal/service"
)

const fetchTimeout = 30 * time.Second

// SeedCourse is one catalog entry in the seed document.
type SeedCourse struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Image       *string         `json:"image,omitempty"`
}

func main() {
	file := flag.String("file", "", "path to a JSON array of courses")
	url := flag.String("url", "", "URL serving a JSON array of courses")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting seed")

	email := os.Getenv("SEED_ADMIN_EMAIL")
	password := os.Getenv("SEED_ADMIN_PASSWORD")
	if email == "" || password == "" {
		log.Fatal("SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD must be set")
	}

	ctx := context.Background()
	store, err := db.Open(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Fatal("store init")
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.WithError(err).Warn("store close")
		}
	}()

	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	authService, err := service.NewAuthService(store.Admins, store.Users, auth.NewPasswordHasher(cfg.BcryptCost), jwtService, nil, nil, log)
	if err != nil {
		log.WithError(err).Fatal("auth service init")
	}
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	courseService := service.NewCourseService(store.Courses, cacheClient, nil, log)

	admin, err := ensureAdmin(ctx, authService, email, password)
	if err != nil {
		log.WithError(err).Fatal("seed admin")
	}
	log.WithField("admin_id", admin.ID).Info("seed admin ready")

	courses, err := loadCourses(*file, *url)
	if err != nil {
		log.WithError(err).Fatal("load courses")
	}
	if len(courses) == 0 {
		log.Info("no courses to seed")
		return
	}

	created, skipped := seedCourses(ctx, courseService, admin, courses, log)
	log.WithFields(logrus.Fields{
		"created": created,
		"skipped": skipped,
		"total":   len(courses),
	}).Info("seed completed")
}

// ensureAdmin signs the admin up, or logs in when the email is already taken.
func ensureAdmin(ctx context.Context, authService service.AuthService, email, password string) (auth.Identity, error) {
	profile, err := authService.Signup(ctx, auth.KindAdmin, service.SignupInput{
		Email:     email,
		Password:  password,
		Firstname: "Seed",
		Lastname:  "Admin",
	})
	if err == nil {
		return auth.Identity{ID: profile.ID, Kind: auth.KindAdmin}, nil
	}
	if !errors.Is(err, apperr.ErrEmailTaken) {
		return auth.Identity{}, err
	}

	session, err := authService.Login(ctx, auth.KindAdmin, email, password)
	if err != nil {
		return auth.Identity{}, err
	}
	return auth.Identity{ID: session.Profile.ID, Kind: auth.KindAdmin}, nil
}

// loadCourses reads the seed document from file or url. Neither yields nil.
func loadCourses(file, url string) ([]SeedCourse, error) {
	var r io.ReadCloser
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", file, err)
		}
		r = f
	case url != "":
		client := &http.Client{Timeout: fetchTimeout}
		resp, err := client.Get(url)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch courses: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("course source returned status code: %d", resp.StatusCode)
		}
		r = resp.Body
	default:
		return nil, nil
	}
	defer r.Close()
	return decodeCourses(r)
}

func decodeCourses(r io.Reader) ([]SeedCourse, error) {
	var courses []SeedCourse
	if err := json.NewDecoder(r).Decode(&courses); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return courses, nil
}

// seedCourses creates each course; invalid entries are logged and skipped.
func seedCourses(ctx context.Context, courseService service.CourseService, admin auth.Identity, courses []SeedCourse, log logrus.FieldLogger) (created, skipped int) {
	for i, c := range courses {
		course, err := courseService.CreateCourse(ctx, admin, service.CreateCourseInput{
			Title:       c.Title,
			Description: c.Description,
			Price:       c.Price,
			Image:       c.Image,
		})
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{"index": i, "title": c.Title}).Warn("skipping course")
			skipped++
			continue
		}
		log.WithFields(logrus.Fields{"course_id": course.ID, "title": course.Title}).Debug("course created")
		created++
	}
	return created, skipped
}
