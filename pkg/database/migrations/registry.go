package migrations

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
)

// Step is one named schema change applied after AutoMigrate.
type Step struct {
	Name string
	Run  func(ctx context.Context, db *gorm.DB) error
}

// Registry runs steps in the order they were added.
type Registry struct {
	steps []Step
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a step.
func (r *Registry) Add(name string, fn func(ctx context.Context, db *gorm.DB) error) *Registry {
	r.steps = append(r.steps, Step{Name: name, Run: fn})
	return r
}

// Steps returns the registered step names in order.
func (r *Registry) Steps() []string {
	names := make([]string, len(r.steps))
	for i, s := range r.steps {
		names[i] = s.Name
	}
	return names
}

// Run executes every step, stopping at the first failure.
func (r *Registry) Run(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	for _, step := range r.steps {
		log.Info("running migration", slog.String("name", step.Name))
		if err := step.Run(ctx, db.WithContext(ctx)); err != nil {
			return fmt.Errorf("migration %s failed: %w", step.Name, err)
		}
	}
	return nil
}

// Exec builds a step body from a single idempotent SQL statement.
func Exec(statement string) func(ctx context.Context, db *gorm.DB) error {
	return func(_ context.Context, db *gorm.DB) error {
		return db.Exec(statement).Error
	}
}
