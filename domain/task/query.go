package task

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// StatusFilter selects tasks by completion state.
type StatusFilter string

const (
	StatusAll       StatusFilter = "all"
	StatusCompleted StatusFilter = "completed"
	StatusPending   StatusFilter = "pending"
)

// DateFilter selects tasks by where their deadline falls relative to today.
type DateFilter string

const (
	DateAll      DateFilter = "all"
	DateToday    DateFilter = "today"
	DateUpcoming DateFilter = "upcoming"
	DateOverdue  DateFilter = "overdue"
)

// AnyPriority is the priority filter value that matches every task.
const AnyPriority Priority = "all"

// Criteria combines the filters of a task list view. Zero values mean "all".
type Criteria struct {
	Priority Priority     `json:"priority,omitempty"`
	Status   StatusFilter `json:"status,omitempty"`
	Date     DateFilter   `json:"date,omitempty"`
}

// UnmarshalJSON decodes the priority without checking it, so unknown values
// reach view validation instead of failing the decode.
func (c *Criteria) UnmarshalJSON(data []byte) error {
	var raw struct {
		Priority string       `json:"priority"`
		Status   StatusFilter `json:"status"`
		Date     DateFilter   `json:"date"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Criteria{Priority: Priority(raw.Priority), Status: raw.Status, Date: raw.Date}
	return nil
}

// SortField is the key a task list is ordered by.
type SortField string

const (
	SortByDeadline SortField = "deadline"
	SortByPriority SortField = "priority"
	SortByTitle    SortField = "title"
)

// Direction is the sort order.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// Buckets is the dashboard partition of a task list.
type Buckets struct {
	Overdue   []Task `json:"overdue"`
	Today     []Task `json:"today"`
	Upcoming  []Task `json:"upcoming"`
	Completed []Task `json:"completed"`
}

// Summary holds aggregate counts over a task list.
type Summary struct {
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	Pending        int              `json:"pending"`
	CompletionRate int              `json:"completionRate"`
	ByPriority     map[Priority]int `json:"byPriority"`
}

// DayMarker flags a calendar day that has at least one deadline.
type DayMarker struct {
	Date            string `json:"date"`
	Count           int    `json:"count"`
	HasHighPriority bool   `json:"hasHighPriority"`
}

// MonthStats aggregates the tasks due within one calendar month.
type MonthStats struct {
	Total               int `json:"total"`
	Completed           int `json:"completed"`
	HighPriorityPending int `json:"highPriorityPending"`
}

// DateLayout is the calendar-day format used in markers and query strings.
const DateLayout = "2006-01-02"

// compareDay compares the calendar days of a and b in b's location.
func compareDay(a, b time.Time) int {
	loc := b.Location()
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.Date()
	return time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC).
		Compare(time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC))
}

// Filter returns the tasks matching every criterion, in input order.
func Filter(tasks []Task, c Criteria, now time.Time) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if c.Priority != "" && c.Priority != AnyPriority && t.Priority != c.Priority {
			continue
		}
		switch c.Status {
		case StatusCompleted:
			if !t.Completed {
				continue
			}
		case StatusPending:
			if t.Completed {
				continue
			}
		}
		day := compareDay(t.Deadline, now)
		switch c.Date {
		case DateToday:
			if day != 0 {
				continue
			}
		case DateUpcoming:
			if day <= 0 || t.Completed {
				continue
			}
		case DateOverdue:
			if day >= 0 || t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// Sort returns a stably ordered copy of tasks. Descending priority puts high
// first. Titles are ordered with English collation rules.
func Sort(tasks []Task, field SortField, dir Direction) []Task {
	out := slices.Clone(tasks)

	var cmp func(a, b Task) int
	switch field {
	case SortByPriority:
		cmp = func(a, b Task) int { return a.Priority.Rank() - b.Priority.Rank() }
	case SortByTitle:
		col := collate.New(language.English)
		cmp = func(a, b Task) int { return col.CompareString(a.Title, b.Title) }
	default:
		cmp = func(a, b Task) int { return a.Deadline.Compare(b.Deadline) }
	}
	if dir == Descending {
		asc := cmp
		cmp = func(a, b Task) int { return asc(b, a) }
	}

	slices.SortStableFunc(out, cmp)
	return out
}

// Bucketize partitions tasks for the dashboard. Completed tasks only appear in
// Completed; every pending task lands in exactly one of the date buckets.
func Bucketize(tasks []Task, now time.Time) Buckets {
	b := Buckets{
		Overdue:   []Task{},
		Today:     []Task{},
		Upcoming:  []Task{},
		Completed: []Task{},
	}
	for _, t := range tasks {
		if t.Completed {
			b.Completed = append(b.Completed, t)
			continue
		}
		switch day := compareDay(t.Deadline, now); {
		case day < 0:
			b.Overdue = append(b.Overdue, t)
		case day == 0:
			b.Today = append(b.Today, t)
		default:
			b.Upcoming = append(b.Upcoming, t)
		}
	}
	return b
}

// OnDate returns the tasks due on date's calendar day, in date's location.
func OnDate(tasks []Task, date time.Time) []Task {
	out := make([]Task, 0)
	for _, t := range tasks {
		if compareDay(t.Deadline, date) == 0 {
			out = append(out, t)
		}
	}
	return out
}

// SplitByStatus separates pending from completed tasks, keeping order.
func SplitByStatus(tasks []Task) (pending, completed []Task) {
	pending, completed = []Task{}, []Task{}
	for _, t := range tasks {
		if t.Completed {
			completed = append(completed, t)
		} else {
			pending = append(pending, t)
		}
	}
	return pending, completed
}

// Summarize counts tasks. The completion rate is a rounded percentage and is
// zero for an empty list.
func Summarize(tasks []Task) Summary {
	s := Summary{
		Total: len(tasks),
		ByPriority: map[Priority]int{
			PriorityHigh:   0,
			PriorityMedium: 0,
			PriorityLow:    0,
		},
	}
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		}
		if t.Priority.Valid() {
			s.ByPriority[t.Priority]++
		}
	}
	s.Pending = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = (s.Completed*100 + s.Total/2) / s.Total
	}
	return s
}

// inMonth reports whether t's deadline falls in the given month of loc.
func inMonth(t Task, year int, month time.Month, loc *time.Location) bool {
	y, m, _ := t.Deadline.In(loc).Date()
	return y == year && m == month
}

// MonthMarkers returns one marker per day of the month that has a deadline,
// ordered by day.
func MonthMarkers(tasks []Task, year int, month time.Month, loc *time.Location) []DayMarker {
	byDay := make(map[string]*DayMarker)
	for _, t := range tasks {
		if !inMonth(t, year, month, loc) {
			continue
		}
		key := t.Deadline.In(loc).Format(DateLayout)
		m, ok := byDay[key]
		if !ok {
			m = &DayMarker{Date: key}
			byDay[key] = m
		}
		m.Count++
		if t.Priority == PriorityHigh {
			m.HasHighPriority = true
		}
	}

	out := make([]DayMarker, 0, len(byDay))
	for _, m := range byDay {
		out = append(out, *m)
	}
	slices.SortFunc(out, func(a, b DayMarker) int { return strings.Compare(a.Date, b.Date) })
	return out
}

// SummarizeMonth aggregates the tasks due in the given month.
func SummarizeMonth(tasks []Task, year int, month time.Month, loc *time.Location) MonthStats {
	var s MonthStats
	for _, t := range tasks {
		if !inMonth(t, year, month, loc) {
			continue
		}
		s.Total++
		if t.Completed {
			s.Completed++
		} else if t.Priority == PriorityHigh {
			s.HighPriorityPending++
		}
	}
	return s
}
