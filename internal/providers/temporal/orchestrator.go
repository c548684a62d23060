package temporal

import (
	"context"
	"errors"

	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
)

// TemporalOrchestrator starts and cancels workflow executions
//
//go:generate mockgen -source=orchestrator.go -destination=../../mocks/temporal_orchestrator.go -package=mocks -mock_names=TemporalOrchestrator=MockTemporalOrchestrator
type TemporalOrchestrator interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
	CancelWorkflow(ctx context.Context, workflowID string, runID string) error
}

// NewOrchestrator wraps a Temporal client
func NewOrchestrator(c client.Client) TemporalOrchestrator {
	return &orchestrator{client: c}
}

type orchestrator struct {
	client client.Client
}

func (o *orchestrator) ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error) {
	return o.client.ExecuteWorkflow(ctx, options, workflow, args...)
}

func (o *orchestrator) CancelWorkflow(ctx context.Context, workflowID string, runID string) error {
	return o.client.CancelWorkflow(ctx, workflowID, runID)
}

// IsWorkflowNotFound reports whether err means the workflow execution does not exist or already closed
func IsWorkflowNotFound(err error) bool {
	var notFound *serviceerror.NotFound
	return errors.As(err, &notFound)
}

// IsWorkflowAlreadyStarted reports whether err means a workflow with the same id is running
func IsWorkflowAlreadyStarted(err error) bool {
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	return errors.As(err, &started)
}
