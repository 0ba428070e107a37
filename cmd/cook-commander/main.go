package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/AkshayAD/Cook-Commander/internal/app"
	"github.com/AkshayAD/Cook-Commander/internal/archive"
	"github.com/AkshayAD/Cook-Commander/internal/config"
	"github.com/AkshayAD/Cook-Commander/internal/database"
	"github.com/AkshayAD/Cook-Commander/internal/draft"
	"github.com/AkshayAD/Cook-Commander/internal/generator"
	"github.com/AkshayAD/Cook-Commander/internal/grocery"
	"github.com/AkshayAD/Cook-Commander/internal/history"
	"github.com/AkshayAD/Cook-Commander/internal/learning"
	"github.com/AkshayAD/Cook-Commander/internal/llm"
	"github.com/AkshayAD/Cook-Commander/internal/localstore"
	"github.com/AkshayAD/Cook-Commander/internal/logger"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
	"github.com/AkshayAD/Cook-Commander/internal/notify"
	"github.com/AkshayAD/Cook-Commander/internal/profile"
	"github.com/AkshayAD/Cook-Commander/internal/repository"
	"github.com/AkshayAD/Cook-Commander/internal/schedule"
	"github.com/AkshayAD/Cook-Commander/internal/session"
	"github.com/AkshayAD/Cook-Commander/internal/settings"
)

func main() {
	ctx := context.Background()

	_ = godotenv.Load()

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	store, err := localstore.NewStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize local storage: %v", err)
	}

	var db *gorm.DB
	if cfg.RemoteConfigured() {
		db, err = database.NewPostgres(cfg.DatabaseURL, zlog)
		if err != nil {
			log.Fatalf("Failed to connect to remote store: %v", err)
		}
	}

	sess, err := session.FromToken(os.Getenv("ACCESS_TOKEN"), cfg.JWTSecret)
	if err != nil {
		log.Fatalf("Failed to verify access token: %v", err)
	}

	resolver := repository.NewResolver(cfg.RemoteConfigured())

	var notifier notify.Notifier = notify.NewNoop()
	var pub schedule.Publisher
	var redisNotifier *notify.RedisNotifier
	if cfg.RemoteConfigured() && cfg.RedisAddr != "" {
		redisNotifier, err = notify.NewRedis(cfg.RedisAddr, resolver, zlog)
		if err != nil {
			log.Fatalf("Failed to connect to redis: %v", err)
		}
		defer redisNotifier.Close()
		notifier = redisNotifier
		pub = redisNotifier
	}

	settingsRepo := settings.New(resolver, store, db)
	profileRepo := profile.New(resolver, store, db)
	draftRepo := draft.New(resolver, store, db)
	scheduleRepo := schedule.New(resolver, store, db, pub, zlog)
	groceryRepo := grocery.New(resolver, store, db)
	historyStore := history.New(resolver, scheduleRepo, db)
	if redisNotifier != nil {
		redisNotifier.BindSchedule(scheduleRepo)
	}

	archiver := archive.NewEngine(draftRepo, scheduleRepo, store, zlog)
	aggregator := learning.NewAggregator(scheduleRepo, zlog)

	// The generation key may live in config or in device-local settings.
	var planGen *generator.PlanGenerator
	if key := generationKey(ctx, cfg, settingsRepo, sess); key != "" {
		geminiClient, err := llm.NewGeminiClient(ctx, key)
		if err != nil {
			log.Fatalf("Failed to initialize Gemini client: %v", err)
		}
		if c, ok := geminiClient.(llm.Closer); ok {
			defer c.Close()
		}
		planGen = generator.NewPlanGenerator(geminiClient)
	}

	application := app.NewApp(
		zlog,
		settingsRepo,
		profileRepo,
		draftRepo,
		scheduleRepo,
		groceryRepo,
		historyStore,
		archiver,
		aggregator,
		notifier,
		planGen,
	)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := run(ctx, application, sess, os.Args[1], os.Args[2:]); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

func run(ctx context.Context, application *app.App, sess session.Session, cmd string, args []string) error {
	switch cmd {
	case "generate":
		return application.GenerateDraft(ctx, sess)

	case "draft":
		return application.ShowDraft(ctx, sess)

	case "archive":
		fs := flag.NewFlagSet("archive", flag.ExitOnError)
		start := fs.String("start", "", "ISO start date of the week (YYYY-MM-DD)")
		overwrite := fs.Bool("overwrite", false, "Replace days that already have meals")
		fs.Parse(args)
		return application.ArchiveDraft(ctx, sess, *start, *overwrite)

	case "revert":
		return application.RevertArchive(ctx, sess)

	case "schedule":
		return application.ShowSchedule(ctx, sess)

	case "summary":
		return application.ShowSummary(ctx, sess)

	case "rate":
		fs := flag.NewFlagSet("rate", flag.ExitOnError)
		date := fs.String("date", "", "ISO date of the meal")
		meal := fs.String("meal", "dinner", "Meal slot: breakfast, lunch or dinner")
		liked := fs.Bool("liked", true, "Whether the meal was liked")
		fs.Parse(args)
		rating := mealplan.RatingLiked
		if !*liked {
			rating = mealplan.RatingDisliked
		}
		return application.RateMeal(ctx, sess, *date, mealplan.MealType(*meal), rating)

	case "grocery-save":
		fs := flag.NewFlagSet("grocery-save", flag.ExitOnError)
		name := fs.String("name", "", "List name")
		items := fs.String("items", "", "Comma-separated items")
		dateRange := fs.String("range", "", "Covered date range, e.g. 2026-08-24..2026-08-30")
		fs.Parse(args)
		return application.SaveGroceryList(ctx, sess, *name, splitItems(*items), *dateRange)

	case "grocery-list":
		return application.ShowGroceryLists(ctx, sess)

	case "profiles":
		return application.ShowProfiles(ctx, sess)

	case "save-profile":
		fs := flag.NewFlagSet("save-profile", flag.ExitOnError)
		id := fs.String("id", "", "Profile ID (empty to create a new profile)")
		name := fs.String("name", "", "Profile name")
		prefsPath := fs.String("prefs", "", "Path to a JSON preferences file")
		fs.Parse(args)
		prefsJSON, err := os.ReadFile(*prefsPath)
		if err != nil {
			return fmt.Errorf("failed to read preferences file: %w", err)
		}
		return application.SaveProfile(ctx, sess, *id, *name, prefsJSON)

	case "delete-profile":
		fs := flag.NewFlagSet("delete-profile", flag.ExitOnError)
		id := fs.String("id", "", "Profile ID")
		fs.Parse(args)
		return application.DeleteProfile(ctx, sess, *id)

	case "grocery-delete":
		fs := flag.NewFlagSet("grocery-delete", flag.ExitOnError)
		id := fs.String("id", "", "Grocery list ID")
		fs.Parse(args)
		return application.DeleteGroceryList(ctx, sess, *id)

	case "use-profile":
		fs := flag.NewFlagSet("use-profile", flag.ExitOnError)
		id := fs.String("id", "", "Profile ID")
		fs.Parse(args)
		return application.UseProfile(ctx, sess, *id)

	case "set-api-key":
		fs := flag.NewFlagSet("set-api-key", flag.ExitOnError)
		key := fs.String("key", "", "Gemini API key (stored on this device only)")
		fs.Parse(args)
		return application.SetAPIKey(ctx, sess, *key)

	case "set-cook":
		fs := flag.NewFlagSet("set-cook", flag.ExitOnError)
		name := fs.String("name", "", "Cook's name")
		contact := fs.String("contact", "", "Cook's phone or email")
		fs.Parse(args)
		return application.SetCookContact(ctx, sess, *name, *contact)

	case "watch":
		watchCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return application.Watch(watchCtx, sess)

	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
		return nil
	}
}

// generationKey prefers the environment key, then the device-local one
// stored in settings. A lookup failure just means no generation.
func generationKey(ctx context.Context, cfg *config.Config, repo settings.Repository, sess session.Session) string {
	if cfg.GeminiAPIKey != "" {
		return cfg.GeminiAPIKey
	}
	s, err := repo.Get(ctx, sess)
	if err != nil {
		return ""
	}
	return s.APIKey
}

func splitItems(csv string) []string {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func printUsage() {
	fmt.Println("Usage: cook-commander <command> [arguments]")
	fmt.Println("\nCommands:")
	fmt.Println("  generate        Generate a weekly draft plan from the active profile")
	fmt.Println("  draft           Show the current draft plan")
	fmt.Println("  archive         Commit the draft to the calendar (-start, -overwrite)")
	fmt.Println("  revert          Undo the last archive")
	fmt.Println("  schedule        Show the meal calendar")
	fmt.Println("  summary         Show the learning summary")
	fmt.Println("  rate            Record meal feedback (-date, -meal, -liked)")
	fmt.Println("  grocery-save    Save a grocery list (-name, -items, -range)")
	fmt.Println("  grocery-list    Show saved grocery lists")
	fmt.Println("  profiles        List preference profiles")
	fmt.Println("  save-profile    Create or update a profile (-id, -name, -prefs file.json)")
	fmt.Println("  delete-profile  Remove a profile (-id)")
	fmt.Println("  grocery-delete  Remove a saved grocery list (-id)")
	fmt.Println("  use-profile     Select the active profile (-id)")
	fmt.Println("  set-api-key     Store the generation API key on this device (-key)")
	fmt.Println("  set-cook        Update the cook contact fields (-name, -contact)")
	fmt.Println("  watch           Follow remote schedule changes")
}
