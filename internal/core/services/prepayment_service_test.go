package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portsrepo "github.com/settleforge/sle_backend/internal/core/ports/repositories"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/core/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock PrepaymentRepository ---

type MockPrepaymentRepository struct {
	mock.Mock
}

var _ portsrepo.PrepaymentRepositoryFacade = (*MockPrepaymentRepository)(nil)

func (m *MockPrepaymentRepository) FindPrepaymentByID(ctx context.Context, prepaymentID string) (*domain.PrepaymentRecord, error) {
	args := m.Called(ctx, prepaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PrepaymentRecord), args.Error(1)
}

func (m *MockPrepaymentRepository) ListPrepaymentsByCounterparty(ctx context.Context, counterpartyID string, kind domain.CounterpartyKind) ([]domain.PrepaymentRecord, error) {
	args := m.Called(ctx, counterpartyID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrepaymentRecord), args.Error(1)
}

func (m *MockPrepaymentRepository) FindUsagesByPrepaymentID(ctx context.Context, prepaymentID string) ([]domain.PrepaymentUsage, error) {
	args := m.Called(ctx, prepaymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PrepaymentUsage), args.Error(1)
}

func (m *MockPrepaymentRepository) SavePrepayment(ctx context.Context, tx pgx.Tx, record domain.PrepaymentRecord) error {
	args := m.Called(ctx, tx, record)
	return args.Error(0)
}

func (m *MockPrepaymentRepository) FindPrepaymentsByIDsForUpdate(ctx context.Context, tx pgx.Tx, prepaymentIDs []string) (map[string]domain.PrepaymentRecord, error) {
	args := m.Called(ctx, tx, prepaymentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PrepaymentRecord), args.Error(1)
}

func (m *MockPrepaymentRepository) ApplyDraw(ctx context.Context, tx pgx.Tx, usage domain.PrepaymentUsage, expectedVersion int64) error {
	args := m.Called(ctx, tx, usage, expectedVersion)
	return args.Error(0)
}

// --- Test Suite ---

type PrepaymentServiceTestSuite struct {
	suite.Suite
	mockRepo *MockPrepaymentRepository
	service  portssvc.PrepaymentSvcFacade

	userID string
	record domain.PrepaymentRecord
}

func (suite *PrepaymentServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockPrepaymentRepository)
	suite.service = services.NewPrepaymentService(suite.mockRepo)
	suite.userID = "user-1"
	suite.record = domain.PrepaymentRecord{
		PrepaymentID:     "prep-1",
		CounterpartyID:   "cp-001",
		CounterpartyKind: domain.CounterpartyCustomer,
		Amount:           decimal.NewFromInt(100),
		UsedAmount:       decimal.NewFromInt(40),
		Version:          2,
	}
}

// --- CreateAdvance ---

func (suite *PrepaymentServiceTestSuite) TestCreateAdvance_Success() {
	ctx := context.Background()

	var saved domain.PrepaymentRecord
	suite.mockRepo.On("SavePrepayment", ctx, mock.Anything, mock.AnythingOfType("domain.PrepaymentRecord")).
		Run(func(args mock.Arguments) { saved = args.Get(2).(domain.PrepaymentRecord) }).
		Return(nil).Once()

	record, err := suite.service.CreateAdvance(ctx, nil, "cp-001", domain.CounterpartyCustomer, decimal.NewFromFloat(25.504), "stl-1", suite.userID)

	suite.Require().NoError(err)
	suite.NotEmpty(record.PrepaymentID)
	suite.True(record.Amount.Equal(decimal.NewFromFloat(25.50))) // normalized to cents
	suite.True(record.UsedAmount.IsZero())
	suite.Equal("stl-1", record.OriginatingSettlementID)
	suite.EqualValues(1, record.Version)
	suite.Equal(record.PrepaymentID, saved.PrepaymentID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PrepaymentServiceTestSuite) TestCreateAdvance_NonPositiveRejected() {
	ctx := context.Background()

	_, err := suite.service.CreateAdvance(ctx, nil, "cp-001", domain.CounterpartyCustomer, decimal.Zero, "", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SavePrepayment", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PrepaymentServiceTestSuite) TestCreateAdvance_MissingCounterparty() {
	ctx := context.Background()

	_, err := suite.service.CreateAdvance(ctx, nil, "", domain.CounterpartyCustomer, decimal.NewFromInt(10), "", suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

// --- Draw ---

func (suite *PrepaymentServiceTestSuite) TestDraw_Success() {
	ctx := context.Background()
	date := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	var applied domain.PrepaymentUsage
	suite.mockRepo.On("ApplyDraw", ctx, mock.Anything, mock.AnythingOfType("domain.PrepaymentUsage"), suite.record.Version).
		Run(func(args mock.Arguments) { applied = args.Get(2).(domain.PrepaymentUsage) }).
		Return(nil).Once()

	usage, err := suite.service.Draw(ctx, nil, suite.record, decimal.NewFromInt(60), "stl-1", date, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("prep-1", usage.PrepaymentID)
	suite.Equal("stl-1", usage.SettlementID)
	suite.True(usage.Amount.Equal(decimal.NewFromInt(60)))
	suite.Equal(date, usage.UsageDate)
	suite.Equal(usage.UsageID, applied.UsageID)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *PrepaymentServiceTestSuite) TestDraw_ExceedsAvailable() {
	ctx := context.Background()

	// 60 available on the fixture record.
	_, err := suite.service.Draw(ctx, nil, suite.record, decimal.NewFromInt(61), "stl-1", time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInsufficientPrepayment)
	suite.mockRepo.AssertNotCalled(suite.T(), "ApplyDraw", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *PrepaymentServiceTestSuite) TestDraw_VersionConflictPropagates() {
	ctx := context.Background()

	suite.mockRepo.On("ApplyDraw", ctx, mock.Anything, mock.AnythingOfType("domain.PrepaymentUsage"), suite.record.Version).
		Return(apperrors.ErrVersionConflict).Once()

	_, err := suite.service.Draw(ctx, nil, suite.record, decimal.NewFromInt(10), "stl-1", time.Now(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrVersionConflict)
}

// --- GetBalance ---

func (suite *PrepaymentServiceTestSuite) TestGetBalance_Aggregates() {
	ctx := context.Background()
	records := []domain.PrepaymentRecord{
		suite.record, // 60 available
		{PrepaymentID: "prep-2", CounterpartyID: "cp-001", CounterpartyKind: domain.CounterpartyCustomer,
			Amount: decimal.NewFromInt(30), UsedAmount: decimal.NewFromInt(30)}, // exhausted
		{PrepaymentID: "prep-3", CounterpartyID: "cp-001", CounterpartyKind: domain.CounterpartyCustomer,
			Amount: decimal.NewFromFloat(10.25), UsedAmount: decimal.Zero},
	}

	suite.mockRepo.On("ListPrepaymentsByCounterparty", ctx, "cp-001", domain.CounterpartyCustomer).Return(records, nil).Once()

	resp, err := suite.service.GetBalance(ctx, "cp-001", domain.CounterpartyCustomer)

	suite.Require().NoError(err)
	suite.Equal("cp-001", resp.CounterpartyID)
	suite.True(resp.TotalAvailable.Equal(decimal.NewFromFloat(70.25)))
	suite.Require().Len(resp.Records, 3)
	suite.True(resp.Records[0].AvailableBalance.Equal(decimal.NewFromInt(60)))
	suite.True(resp.Records[1].AvailableBalance.IsZero())
}

func (suite *PrepaymentServiceTestSuite) TestGetBalance_Empty() {
	ctx := context.Background()

	suite.mockRepo.On("ListPrepaymentsByCounterparty", ctx, "cp-404", domain.CounterpartySupplier).Return([]domain.PrepaymentRecord{}, nil).Once()

	resp, err := suite.service.GetBalance(ctx, "cp-404", domain.CounterpartySupplier)

	suite.Require().NoError(err)
	suite.True(resp.TotalAvailable.IsZero())
	suite.Empty(resp.Records)
}

// --- ListUsages ---

func (suite *PrepaymentServiceTestSuite) TestListUsages_UnknownPrepayment() {
	ctx := context.Background()

	suite.mockRepo.On("FindPrepaymentByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.ListUsages(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.mockRepo.AssertNotCalled(suite.T(), "FindUsagesByPrepaymentID", mock.Anything, mock.Anything)
}

func (suite *PrepaymentServiceTestSuite) TestListUsages_Success() {
	ctx := context.Background()
	usages := []domain.PrepaymentUsage{
		{UsageID: "u-1", PrepaymentID: "prep-1", SettlementID: "stl-1", Amount: decimal.NewFromInt(40)},
	}

	suite.mockRepo.On("FindPrepaymentByID", ctx, "prep-1").Return(&suite.record, nil).Once()
	suite.mockRepo.On("FindUsagesByPrepaymentID", ctx, "prep-1").Return(usages, nil).Once()

	got, err := suite.service.ListUsages(ctx, "prep-1")

	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal("u-1", got[0].UsageID)
}

func TestPrepaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PrepaymentServiceTestSuite))
}
