package workflows_test

import (
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/safient/safient-escrow/internal/logger"
	"github.com/safient/safient-escrow/internal/mocks"
	"github.com/safient/safient-escrow/internal/workflows"
)

const testTransferID = "01JG8XAMPLE1234567890123456"

// EscrowWorkflowTestSuite is the test suite for the release-on-expiry workflow
type EscrowWorkflowTestSuite struct {
	suite.Suite
	testsuite.WorkflowTestSuite

	env          *testsuite.TestWorkflowEnvironment
	ctrl         *gomock.Controller
	executor     *mocks.MockEscrowExecutor
	workerEscrow workflows.WorkerEscrow
	start        time.Time
}

func (s *EscrowWorkflowTestSuite) SetupTest() {
	_ = logger.Initialize(logger.Config{
		Debug: true,
	})

	s.env = s.NewTestWorkflowEnvironment()
	s.ctrl = gomock.NewController(s.T())
	s.executor = mocks.NewMockEscrowExecutor(s.ctrl)

	config := workflows.DefaultWorkerEscrowConfig()
	config.RetryInitialInterval = time.Second
	s.workerEscrow = workflows.NewWorkerEscrow(s.executor, config)

	s.start = time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	s.env.SetStartTime(s.start)
}

func (s *EscrowWorkflowTestSuite) TearDownTest() {
	s.env.AssertExpectations(s.T())
	s.ctrl.Finish()
}

func TestEscrowWorkflowTestSuite(t *testing.T) {
	suite.Run(t, new(EscrowWorkflowTestSuite))
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_ReleasesAfterTimer() {
	expiresAt := s.start.Add(30 * time.Minute)

	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Run(func(args mock.Arguments) {
			s.False(s.env.Now().Before(expiresAt), "activity ran before expiry")
		}).
		Return(&workflows.ReleaseOutcome{
			TransferID: testTransferID,
			Status:     "completed",
			TxHash:     "RELEASETX",
			Amount:     899_000,
		}, nil).Once()

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, expiresAt)

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_AlreadyExpired() {
	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Return(&workflows.ReleaseOutcome{TransferID: testTransferID, AlreadySettled: true}, nil).Once()

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, s.start.Add(-time.Hour))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_CancelledDuringTimer() {
	s.env.RegisterDelayedCallback(func() {
		s.env.CancelWorkflow()
	}, 10*time.Minute)

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, s.start.Add(30*time.Minute))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_RetriesTransientErrors() {
	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Return(nil, errors.New("algod unavailable")).Twice()
	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Return(&workflows.ReleaseOutcome{TransferID: testTransferID, Status: "completed"}, nil).Once()

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, s.start.Add(5*time.Minute))

	s.True(s.env.IsWorkflowCompleted())
	s.NoError(s.env.GetWorkflowError())
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_NonRetryable() {
	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Return(nil, temporal.NewNonRetryableApplicationError("Insufficient funds in escrow", "insufficient_funds", nil)).Once()

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, s.start.Add(5*time.Minute))

	s.True(s.env.IsWorkflowCompleted())
	err := s.env.GetWorkflowError()
	s.Error(err)

	var appErr *temporal.ApplicationError
	s.True(errors.As(err, &appErr))
	s.Equal("insufficient_funds", appErr.Type())
}

func (s *EscrowWorkflowTestSuite) TestReleaseOnExpiry_GivesUpAfterMaxAttempts() {
	s.env.OnActivity(s.executor.ReleaseTransfer, mock.Anything, testTransferID).
		Return(nil, errors.New("algod unavailable")).Times(5)

	s.env.ExecuteWorkflow(s.workerEscrow.ReleaseOnExpiry, testTransferID, s.start.Add(5*time.Minute))

	s.True(s.env.IsWorkflowCompleted())
	s.Error(s.env.GetWorkflowError())
}
