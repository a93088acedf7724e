/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/todostack/apiserver/config"
	"github.com/todostack/apiserver/internal/db"
	"github.com/todostack/apiserver/internal/services"
	"github.com/todostack/apiserver/internal/store"
	"github.com/todostack/apiserver/types"
)

// seedCmd represents the seed command. It provisions demo accounts and
// sample todos for local development. Rerunning it is safe: accounts that
// already exist are left alone.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed demo users and todos",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		dbConn, err := db.Open(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		userRepo := store.NewUserRepository(dbConn)
		todoRepo := store.NewTodoRepository(dbConn)
		authService := services.NewAuthService(userRepo)

		return seed(cmd.Context(), authService, userRepo, todoRepo)
	},
}

type demoUser struct {
	email    string
	name     string
	password string
	admin    bool
}

var demoUsers = []demoUser{
	{email: "admin@demo.com", name: "Admin User", password: "admin123", admin: true},
	{email: "user@demo.com", name: "Regular User", password: "user123"},
	{email: "alice@demo.com", name: "Alice Designer", password: "demo123"},
	{email: "bob@demo.com", name: "Bob Engineer", password: "demo123"},
}

type demoTodo struct {
	title       string
	description string
	priority    string
	completed   bool
	dueInDays   int
}

var demoTodos = []demoTodo{
	{title: "Complete project proposal", description: "Write and submit Q4 project proposal", priority: types.PriorityHigh, dueInDays: 14},
	{title: "Review pull requests", description: "Review pending PRs from team", priority: types.PriorityMedium},
	{title: "Update documentation", description: "Update API docs with new endpoints", priority: types.PriorityLow, completed: true},
	{title: "Team meeting prep", description: "Prepare slides for weekly sync", priority: types.PriorityMedium, dueInDays: 3},
	{title: "Write unit tests", description: "Add tests for new features", priority: types.PriorityHigh, dueInDays: 7},
}

func seed(ctx context.Context, authService *services.AuthService, userRepo *store.UserRepository, todoRepo *store.TodoRepository) error {
	for _, du := range demoUsers {
		user, err := authService.Register(ctx, du.email, du.name, du.password)
		if err != nil {
			if errors.Is(err, store.ErrConflict) {
				fmt.Printf("user %s already exists, skipping\n", du.email)
				continue
			}
			return fmt.Errorf("seed user %s: %w", du.email, err)
		}

		if du.admin {
			if err := userRepo.UpdateRole(ctx, user.ID, types.RoleAdmin); err != nil {
				return fmt.Errorf("promote %s: %w", du.email, err)
			}
			fmt.Printf("created admin %s\n", du.email)
			continue
		}
		fmt.Printf("created user %s\n", du.email)

		// Sample todos go to the first regular account only.
		if du.email != "user@demo.com" {
			continue
		}
		for _, dt := range demoTodos {
			todo := types.Todo{
				UserID:    user.ID,
				Title:     dt.title,
				Completed: dt.completed,
				Priority:  dt.priority,
			}
			if dt.description != "" {
				desc := dt.description
				todo.Description = &desc
			}
			if dt.dueInDays > 0 {
				due := time.Now().AddDate(0, 0, dt.dueInDays)
				todo.DueDate = &due
			}
			if _, err := todoRepo.Create(ctx, todo); err != nil {
				return fmt.Errorf("seed todo %q: %w", dt.title, err)
			}
		}
		fmt.Printf("created %d todos for %s\n", len(demoTodos), du.email)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
