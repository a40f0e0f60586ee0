package task

import (
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
)

// SeedFunc builds the collection of a user who has no snapshot yet.
type SeedFunc func(userID string, now time.Time, newID func() string) []domain.Task

// SampleTasks is the default seed: five demo tasks with deadlines spread
// around now, one of them already completed.
func SampleTasks(userID string, now time.Time, newID func() string) []domain.Task {
	sample := []struct {
		title       string
		description string
		deadline    int
		created     int
		priority    domain.Priority
		completed   bool
	}{
		{"Complete project proposal", "Finish the proposal for the new client project", 2, 0, domain.PriorityHigh, false},
		{"Weekly team meeting", "Discuss project progress and next steps", 1, 0, domain.PriorityMedium, false},
		{"Update documentation", "Review and update the project documentation", -1, -3, domain.PriorityLow, true},
		{"Code review", "Review pull requests from the development team", 3, -1, domain.PriorityMedium, false},
		{"Prepare for presentation", "Create slides and rehearse for client presentation", 5, 0, domain.PriorityHigh, false},
	}

	tasks := make([]domain.Task, 0, len(sample))
	for _, s := range sample {
		tasks = append(tasks, domain.Task{
			ID:          newID(),
			Title:       s.title,
			Description: s.description,
			Completed:   s.completed,
			Deadline:    now.AddDate(0, 0, s.deadline),
			Priority:    s.priority,
			CreatedAt:   now.AddDate(0, 0, s.created),
			UserID:      userID,
		})
	}
	return tasks
}

// NoSeed starts every new user with an empty collection.
func NoSeed(string, time.Time, func() string) []domain.Task {
	return []domain.Task{}
}
