package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/Sid-047/reminderApp/modules/task"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func (c *cli) listCmd() *cobra.Command {
	var priority, status, date, sortBy, order string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks with optional filters and ordering",
		Long: `List the tasks of the logged-in user.

Examples:
  taskctl list --status pending --date overdue
  taskctl list --priority high --sort deadline
  taskctl list --sort priority --order desc --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			criteria := domain.Criteria{
				Priority: domain.Priority(priority),
				Status:   domain.StatusFilter(status),
				Date:     domain.DateFilter(date),
			}
			if err := task.ValidateView(criteria, domain.SortField(sortBy), domain.Direction(order)); err != nil {
				return err
			}
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				now := time.Now()
				tasks := domain.Filter(s.Tasks(), criteria, now)
				if sortBy != "" {
					tasks = domain.Sort(tasks, domain.SortField(sortBy), domain.Direction(order))
				}
				if asJSON {
					return writeJSON(c.out, tasks)
				}
				writeTasks(c.out, tasks, now)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "low, medium, high or all")
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, completed or pending")
	cmd.Flags().StringVar(&date, "date", "all", "all, today, upcoming or overdue")
	cmd.Flags().StringVar(&sortBy, "sort", "", "deadline, priority or title")
	cmd.Flags().StringVar(&order, "order", "asc", "asc or desc")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func (c *cli) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show overdue, today, upcoming and completed tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, u, err := e.store(ctx)
				if err != nil {
					return err
				}
				now := time.Now()
				tasks := s.Tasks()
				b := domain.Bucketize(tasks, now)
				sum := domain.Summarize(tasks)

				fmt.Fprintf(c.out, "Welcome back, %s\n", u.Name)
				fmt.Fprintf(c.out, "%d tasks, %d pending, %d%% complete\n\n", sum.Total, sum.Pending, sum.CompletionRate)
				for _, section := range []struct {
					title string
					tasks []domain.Task
				}{
					{"Overdue", b.Overdue},
					{"Today", b.Today},
					{"Upcoming", b.Upcoming},
					{"Completed", b.Completed},
				} {
					fmt.Fprintf(c.out, "== %s (%d)\n", section.title, len(section.tasks))
					if len(section.tasks) > 0 {
						writeTasks(c.out, domain.Sort(section.tasks, domain.SortByDeadline, domain.Ascending), now)
					}
					fmt.Fprintln(c.out)
				}
				return nil
			})
		},
	}
}

func (c *cli) calendarCmd() *cobra.Command {
	var date, month string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Show one day's tasks, or the days of a month that have tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			now := time.Now()
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				if month != "" {
					m, err := time.ParseInLocation("2006-01", month, now.Location())
					if err != nil {
						return &domain.ValidationError{Field: "month", Reason: "must be YYYY-MM"}
					}
					writeMonth(c.out, s.Tasks(), m)
					return nil
				}

				day := now
				if date != "" {
					day, err = time.ParseInLocation(domain.DateLayout, date, now.Location())
					if err != nil {
						return &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
					}
				}
				pending, completed := domain.SplitByStatus(domain.OnDate(s.Tasks(), day))
				fmt.Fprintf(c.out, "%s\n\n== Pending (%d)\n", day.Format("Monday, January 2, 2006"), len(pending))
				writeTasks(c.out, pending, now)
				fmt.Fprintf(c.out, "\n== Completed (%d)\n", len(completed))
				writeTasks(c.out, completed, now)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day to show, YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&month, "month", "", "month overview, YYYY-MM")
	return cmd
}

func (c *cli) summaryCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show completion statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				sum := domain.Summarize(s.Tasks())
				if asJSON {
					return writeJSON(c.out, sum)
				}
				fmt.Fprintf(c.out, "Total:      %d\n", sum.Total)
				fmt.Fprintf(c.out, "Completed:  %d\n", sum.Completed)
				fmt.Fprintf(c.out, "Pending:    %d\n", sum.Pending)
				fmt.Fprintf(c.out, "Completion: %d%%\n", sum.CompletionRate)
				for _, p := range []domain.Priority{domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow} {
					fmt.Fprintf(c.out, "  %-7s %d\n", p, sum.ByPriority[p])
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func writeTasks(w io.Writer, tasks []domain.Task, now time.Time) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "No tasks")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tPRIORITY\tDEADLINE\tSTATE")
	for _, t := range tasks {
		state := "pending"
		switch {
		case t.Completed:
			state = "done"
		case t.IsOverdue(now):
			state = "overdue"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", shortID(t.ID), t.Title, t.Priority, t.Deadline.Local().Format(timeLayout), state)
	}
	tw.Flush()
}

func writeMonth(w io.Writer, tasks []domain.Task, month time.Time) {
	markers := domain.MonthMarkers(tasks, month.Year(), month.Month(), month.Location())
	stats := domain.SummarizeMonth(tasks, month.Year(), month.Month(), month.Location())

	fmt.Fprintf(w, "%s\n", month.Format("January 2006"))
	if len(markers) == 0 {
		fmt.Fprintln(w, "No tasks this month")
	}
	for _, m := range markers {
		flag := ""
		if m.HasHighPriority {
			flag = " !"
		}
		fmt.Fprintf(w, "  %s  %d task%s%s\n", m.Date, m.Count, plural(m.Count), flag)
	}
	fmt.Fprintf(w, "\n%d tasks, %d completed, %d high priority pending\n", stats.Total, stats.Completed, stats.HighPriorityPending)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// shortID keeps the first segment of a UUID. Commands accept it as a prefix.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
