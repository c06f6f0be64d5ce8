package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"adaptive-diet-engine/internal/config"
	"adaptive-diet-engine/internal/database"
	"adaptive-diet-engine/internal/dietplan"
	"adaptive-diet-engine/internal/kvstore"
	"adaptive-diet-engine/internal/store"
)

var (
	cfgFile string
	userID  string
)

var rootCmd = &cobra.Command{
	Use:   "diet-engine",
	Short: "Adaptive diet plan engine",
	Long:  `diet-engine turns a stored weekly meal plan and a history of logged meals into daily suggestions, confidence-scored plan adaptations, generated weekly plans and meal-prep checklists.`,
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default searches DIET_ENGINE_* env vars)")
	rootCmd.PersistentFlags().StringVar(&userID, "user", "", "user id to operate on")

	rootCmd.AddCommand(generateCmd, suggestCmd, adherenceCmd, analyzeCmd, applyCmd, prepCmd, seedCmd)
	viper.BindPFlags(rootCmd.PersistentFlags())
}

func initConfig() {
	viper.AutomaticEnv()
}

// withEngine builds the engine over the configured stores, runs fn, and
// tears everything down.
func withEngine(fn func(ctx context.Context, e *dietplan.Engine, repos *repositories) error) error {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	kv, err := kvstore.Open(kvstore.Options{Path: cfg.KVPath})
	if err != nil {
		return fmt.Errorf("failed to open key-value store: %w", err)
	}
	defer kv.Close()

	repos := &repositories{
		plans:    store.NewPlanRepository(db.SQL),
		logs:     store.NewMealLogRepository(db.SQL),
		profiles: store.NewProfileRepository(db.SQL),
	}
	engine := dietplan.NewEngine(repos.plans, repos.logs, repos.profiles, kv)

	return fn(context.Background(), engine, repos)
}

type repositories struct {
	plans    *store.PlanRepository
	logs     *store.MealLogRepository
	profiles *store.ProfileRepository
}

func requireUser() error {
	if userID == "" {
		return fmt.Errorf("--user is required")
	}
	return nil
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate and save a personalized weekly plan",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			plan, err := e.GeneratePlanForUser(ctx, userID)
			if err != nil {
				return err
			}
			rec, err := e.SaveGeneratedPlan(ctx, userID, plan)
			if err != nil {
				return err
			}
			log.Printf("Saved plan %s (%s - %s)", rec.ID,
				rec.StartDate.Format("2006-01-02"), rec.EndDate.Format("2006-01-02"))
			return printJSON(plan)
		})
	},
}

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Show today's remaining meal suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			suggestions, err := e.SuggestedMealsForToday(ctx, userID, time.Now())
			if err != nil {
				return err
			}
			return printJSON(suggestions)
		})
	},
}

var adherenceCmd = &cobra.Command{
	Use:   "adherence",
	Short: "Show today's calorie adherence percentage",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			pct, err := e.DailyAdherence(ctx, userID, time.Now())
			if err != nil {
				return err
			}
			fmt.Printf("%.1f%%\n", pct)
			return nil
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Run the weekly adaptive analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			suggestions, err := e.RunWeeklyAnalysis(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(suggestions)
		})
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply <suggestions.json>",
	Short: "Apply an adaptation suggestion from a JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read suggestion file: %w", err)
		}
		var suggestion dietplan.AdaptationSuggestion
		if err := json.Unmarshal(data, &suggestion); err != nil {
			return fmt.Errorf("failed to parse suggestion file: %w", err)
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			if err := e.ApplySuggestion(ctx, suggestion, userID); err != nil {
				return err
			}
			log.Printf("Applied suggestion %s (%s)", suggestion.ID, suggestion.Type)
			return nil
		})
	},
}

var prepCmd = &cobra.Command{
	Use:   "prep",
	Short: "Build the weekly meal-prep checklist",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, e *dietplan.Engine, _ *repositories) error {
			prep, err := e.BuildMealPrepPlan(ctx, userID)
			if err != nil {
				return err
			}
			return printJSON(prep)
		})
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert a demo profile and a week of logged meals",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireUser(); err != nil {
			return err
		}
		return withEngine(func(ctx context.Context, _ *dietplan.Engine, repos *repositories) error {
			profile := &store.UserProfile{
				UserID:        userID,
				CalorieTarget: 2000,
				ProteinTarget: 120,
				CarbsTarget:   220,
				FatsTarget:    60,
				Goal:          "lose",
				ActivityLevel: "moderate",
			}
			if err := repos.profiles.Upsert(ctx, profile); err != nil {
				return err
			}

			now := time.Now()
			for daysAgo := 0; daysAgo < 7; daysAgo++ {
				day := now.AddDate(0, 0, -daysAgo)
				for _, entry := range []struct {
					mealType string
					hour     int
					calories float64
				}{
					{"breakfast", 8, 420},
					{"lunch", 13, 650},
					{"dinner", 19, 580},
				} {
					consumed := time.Date(day.Year(), day.Month(), day.Day(),
						entry.hour, 15, 0, 0, day.Location())
					meal := &store.LoggedMeal{
						UserID:        userID,
						MealType:      entry.mealType,
						ConsumedAt:    consumed.UnixMilli(),
						TotalCalories: entry.calories,
					}
					if err := repos.logs.Insert(ctx, meal); err != nil {
						return err
					}
				}
			}
			log.Printf("Seeded profile and 21 logged meals for user %s", userID)
			return nil
		})
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
