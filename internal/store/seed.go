package store

import (
	"time"

	"github.com/example/techtracker/pkg/models"
)

// Seed returns the starter collection used when storage is empty or
// unreadable. Mirrors the default learning roadmap shipped with the app.
func Seed(now time.Time) []models.Technology {
	items := []models.Technology{
		{
			ID:          1,
			Title:       "React Components",
			Description: "Learn the basic React components and their lifecycle",
			Category:    "React Basics",
			Difficulty:  "beginner",
		},
		{
			ID:          2,
			Title:       "JSX Syntax",
			Description: "Master JSX syntax and how it differs from plain HTML",
			Category:    "React Basics",
			Difficulty:  "beginner",
		},
		{
			ID:          3,
			Title:       "useState Hook",
			Description: "Manage component state with the useState hook",
			Category:    "Hooks",
			Difficulty:  "intermediate",
		},
		{
			ID:          4,
			Title:       "useEffect Hook",
			Description: "Side effects and the component lifecycle",
			Category:    "Hooks",
			Difficulty:  "intermediate",
		},
		{
			ID:          5,
			Title:       "Props System",
			Description: "Pass data between components through props",
			Category:    "React Basics",
			Difficulty:  "beginner",
		},
		{
			ID:          6,
			Title:       "Conditional Rendering",
			Description: "Render components conditionally",
			Category:    "Advanced",
			Difficulty:  "intermediate",
		},
	}

	for i := range items {
		items[i].Status = models.StatusNotStarted
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}
	return items
}
