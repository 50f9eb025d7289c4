package services_test

import (
	"context"
	"testing"

	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/core/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OutstandingServiceTestSuite struct {
	suite.Suite
	mockRepo *MockOutstandingRepository
	service  portssvc.OutstandingSvcFacade
}

func (suite *OutstandingServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockOutstandingRepository)
	suite.service = services.NewOutstandingService(suite.mockRepo)
}

func (suite *OutstandingServiceTestSuite) TestSeedLine_Success() {
	ctx := context.Background()
	req := dto.SeedOutstandingLineRequest{
		LineKind:         "ORDER",
		LineID:           "ord-1",
		CounterpartyID:   "cp-001",
		CounterpartyKind: "CUSTOMER",
		GrossAmount:      decimal.NewFromFloat(199.999),
	}

	var saved domain.OutstandingLine
	suite.mockRepo.On("SaveLine", ctx, mock.AnythingOfType("domain.OutstandingLine")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(domain.OutstandingLine) }).
		Return(nil).Once()

	line, err := suite.service.SeedLine(ctx, req, "user-1")

	suite.Require().NoError(err)
	suite.Equal(domain.OrderLine, line.Ref.Kind)
	suite.Equal("ord-1", line.Ref.ID)
	suite.True(line.GrossAmount.Equal(decimal.NewFromFloat(200.00))) // normalized to cents
	suite.True(line.PreviouslySettledAmount.IsZero())
	suite.EqualValues(1, line.Version)
	suite.Equal("user-1", saved.CreatedBy)
}

func (suite *OutstandingServiceTestSuite) TestSeedLine_NonPositiveRejected() {
	ctx := context.Background()
	req := dto.SeedOutstandingLineRequest{
		LineKind:         "RETURN",
		LineID:           "ret-1",
		CounterpartyID:   "cp-001",
		CounterpartyKind: "SUPPLIER",
		GrossAmount:      decimal.Zero,
	}

	_, err := suite.service.SeedLine(ctx, req, "user-1")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockRepo.AssertNotCalled(suite.T(), "SaveLine", mock.Anything, mock.Anything)
}

func (suite *OutstandingServiceTestSuite) TestGetLine_Success() {
	ctx := context.Background()
	ref := domain.LineRef{Kind: domain.OrderLine, ID: "ord-1"}
	found := map[domain.LineRef]domain.OutstandingLine{
		ref: {Ref: ref, CounterpartyID: "cp-001", GrossAmount: decimal.NewFromInt(100)},
	}

	suite.mockRepo.On("FindByRefs", ctx, []domain.LineRef{ref}).Return(found, nil).Once()

	line, err := suite.service.GetLine(ctx, ref)

	suite.Require().NoError(err)
	suite.Equal(ref, line.Ref)
}

func (suite *OutstandingServiceTestSuite) TestGetLine_NotFound() {
	ctx := context.Background()
	ref := domain.LineRef{Kind: domain.ReturnLine, ID: "missing"}

	suite.mockRepo.On("FindByRefs", ctx, []domain.LineRef{ref}).Return(map[domain.LineRef]domain.OutstandingLine{}, nil).Once()

	_, err := suite.service.GetLine(ctx, ref)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestOutstandingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OutstandingServiceTestSuite))
}
