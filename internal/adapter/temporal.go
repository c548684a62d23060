package adapter

import (
	"context"

	"go.temporal.io/sdk/activity"
)

// Activity exposes activity metadata to executor code
//
//go:generate mockgen -source=temporal.go -destination=../mocks/temporal.go -package=mocks -mock_names=Activity=MockActivity
type Activity interface {
	// Attempt returns the current attempt number, starting at 1. Outside an activity it returns 1.
	Attempt(ctx context.Context) int32
}

// RealActivity implements Activity using the activity package
type RealActivity struct{}

// NewActivity creates a new real activity implementation
func NewActivity() Activity {
	return &RealActivity{}
}

func (a *RealActivity) Attempt(ctx context.Context) int32 {
	if !activity.IsActivity(ctx) {
		return 1
	}
	return activity.GetInfo(ctx).Attempt
}
