// Package generator turns a dietary profile and an optional learning
// summary into a fresh weekly draft via the text-generation
// collaborator. It owns prompt construction and response parsing; the
// persistence core only supplies and consumes the value types.
package generator

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/AkshayAD/Cook-Commander/internal/llm"
	"github.com/AkshayAD/Cook-Commander/internal/mealplan"
)

//go:embed weekly_prompt.md
var weeklyPrompt string

var promptTemplate = template.Must(
	template.New("weekly_prompt").
		Funcs(template.FuncMap{"join": strings.Join}).
		Parse(weeklyPrompt),
)

type promptData struct {
	Prefs   mealplan.UserPreferences
	Summary *mealplan.MealLearningSummary
}

// PlanGenerator generates weekly draft plans.
type PlanGenerator struct {
	textGen llm.TextGenerator
}

// NewPlanGenerator creates a PlanGenerator.
func NewPlanGenerator(textGen llm.TextGenerator) *PlanGenerator {
	return &PlanGenerator{textGen: textGen}
}

// GenerateWeeklyPlan asks the model for a 7-day plan biased by the
// summary. The summary is optional; without it the plan is driven by
// preferences alone.
func (g *PlanGenerator) GenerateWeeklyPlan(ctx context.Context, prefs mealplan.UserPreferences, summary *mealplan.MealLearningSummary) (mealplan.WeeklyPlan, error) {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, promptData{Prefs: prefs.Normalized(), Summary: summary}); err != nil {
		return mealplan.WeeklyPlan{}, fmt.Errorf("failed to build prompt: %w", err)
	}

	response, err := g.textGen.GenerateContent(ctx, buf.String())
	if err != nil {
		return mealplan.WeeklyPlan{}, fmt.Errorf("failed to generate weekly plan: %w", err)
	}

	return parsePlan(response)
}

// parsePlan decodes the model response into a WeeklyPlan, tolerating a
// markdown code fence around the JSON.
func parsePlan(response string) (mealplan.WeeklyPlan, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var plan mealplan.WeeklyPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return mealplan.WeeklyPlan{}, fmt.Errorf("failed to parse weekly plan JSON: %w: %w", mealplan.ErrMalformedRecord, err)
	}
	if len(plan.Days) != mealplan.DaysPerWeek {
		return mealplan.WeeklyPlan{}, fmt.Errorf("expected %d days, got %d: %w",
			mealplan.DaysPerWeek, len(plan.Days), mealplan.ErrMalformedRecord)
	}
	return plan, nil
}
