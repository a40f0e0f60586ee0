package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	domain "github.com/Sid-047/reminderApp/domain/task"
	"github.com/spf13/cobra"
)

func (c *cli) addCmd() *cobra.Command {
	var description, deadline, priority string
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			due, err := parseDeadline(deadline, time.Now())
			if err != nil {
				return err
			}
			p, err := domain.ParsePriority(priority)
			if err != nil {
				return err
			}

			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				t, err := s.Add(ctx, domain.Input{
					Title:       args[0],
					Description: description,
					Deadline:    due,
					Priority:    p,
				})
				if err := c.mutationError(err); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Added %s\n", t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "description")
	cmd.Flags().StringVar(&deadline, "due", "", "deadline: YYYY-MM-DD, 'YYYY-MM-DD HH:MM' or RFC 3339 (required)")
	cmd.Flags().StringVarP(&priority, "priority", "p", string(domain.PriorityMedium), "low, medium or high")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func (c *cli) updateCmd() *cobra.Command {
	var title, description, deadline, priority string
	var completed bool
	cmd := &cobra.Command{
		Use:   "update [id]",
		Short: "Change fields of a task; only the given flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var patch domain.Patch
			flags := cmd.Flags()
			if flags.Changed("title") {
				patch.Title = &title
			}
			if flags.Changed("description") {
				patch.Description = &description
			}
			if flags.Changed("completed") {
				patch.Completed = &completed
			}
			if flags.Changed("due") {
				due, err := parseDeadline(deadline, time.Now())
				if err != nil {
					return err
				}
				patch.Deadline = &due
			}
			if flags.Changed("priority") {
				p, err := domain.ParsePriority(priority)
				if err != nil {
					return err
				}
				patch.Priority = &p
			}

			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				id, err := resolveID(s.Tasks(), args[0])
				if err != nil {
					return err
				}
				t, err := s.Update(ctx, id, patch)
				if err := c.mutationError(err); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Updated %s\n", t.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&description, "description", "d", "", "new description")
	cmd.Flags().StringVar(&deadline, "due", "", "new deadline")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", "new priority")
	cmd.Flags().BoolVar(&completed, "completed", false, "completion state")
	return cmd
}

func (c *cli) completeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete [id]",
		Short: "Mark a task as completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				id, err := resolveID(s.Tasks(), args[0])
				if err != nil {
					return err
				}
				t, err := s.Complete(ctx, id)
				if err := c.mutationError(err); err != nil {
					return err
				}
				fmt.Fprintf(c.out, "Completed %s\n", t.ID)
				return nil
			})
		},
	}
}

func (c *cli) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withEnv(cmd, func(ctx context.Context, e *env) error {
				s, _, err := e.store(ctx)
				if err != nil {
					return err
				}
				id := args[0]
				if resolved, err := resolveID(s.Tasks(), args[0]); err == nil {
					id = resolved
				}
				deleted, err := s.Delete(ctx, id)
				if err := c.mutationError(err); err != nil {
					return err
				}
				if !deleted {
					fmt.Fprintf(c.out, "No task %s\n", args[0])
					return nil
				}
				fmt.Fprintf(c.out, "Deleted %s\n", id)
				return nil
			})
		},
	}
}

// resolveID expands a unique ID prefix to the full ID.
func resolveID(tasks []domain.Task, prefix string) (string, error) {
	var match string
	for _, t := range tasks {
		if t.ID == prefix {
			return t.ID, nil
		}
		if strings.HasPrefix(t.ID, prefix) {
			if match != "" {
				return "", &domain.ValidationError{Field: "id", Reason: fmt.Sprintf("prefix %q is ambiguous", prefix)}
			}
			match = t.ID
		}
	}
	if match == "" {
		return "", &domain.NotFoundError{ID: prefix}
	}
	return match, nil
}

// mutationError reports a save failure as a warning, since the change was
// applied, and returns any other error.
func (c *cli) mutationError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrPersistence) {
		fmt.Fprintf(c.out, "Warning: change applied but not saved: %v\n", err)
		return nil
	}
	return err
}

// parseDeadline accepts a date (end of that day), a local date and time, or RFC 3339.
func parseDeadline(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return time.Time{}, &domain.ValidationError{Field: "deadline", Reason: "is required"}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.ParseInLocation("2006-01-02 15:04", s, now.Location()); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(domain.DateLayout, s, now.Location()); err == nil {
		return d.Add(23*time.Hour + 59*time.Minute), nil
	}
	return time.Time{}, &domain.ValidationError{Field: "deadline", Reason: fmt.Sprintf("cannot parse %q", s)}
}
