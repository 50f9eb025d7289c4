package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/settleforge/sle_backend/internal/apperrors"
	"github.com/settleforge/sle_backend/internal/core/domain"
	portssvc "github.com/settleforge/sle_backend/internal/core/ports/services"
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/settleforge/sle_backend/internal/handlers"
	"github.com/settleforge/sle_backend/internal/middleware"
	"github.com/settleforge/sle_backend/internal/platform/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SettlementService ---

type MockSettlementService struct {
	mock.Mock
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

func (m *MockSettlementService) SubmitSettlement(ctx context.Context, req dto.CreateSettlementRequest, userID string) (*domain.SettlementDocument, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementDocument), args.Error(1)
}

func (m *MockSettlementService) GetSettlement(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementDocument), args.Error(1)
}

func (m *MockSettlementService) ListSettlements(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error) {
	args := m.Called(ctx, counterpartyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementDocument), args.Error(1)
}

// --- Test Suite ---

type SettlementHandlerTestSuite struct {
	suite.Suite
	router                *gin.Engine
	mockSettlementService *MockSettlementService

	actorID string
}

func (suite *SettlementHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.mockSettlementService = new(MockSettlementService)
	suite.actorID = "user-1"

	services := &portssvc.ServiceContainer{
		Settlement: suite.mockSettlementService,
	}
	handlers.RegisterRoutes(suite.router, &config.Config{}, services)
}

func (suite *SettlementHandlerTestSuite) serve(method, url string, body any, withActor bool) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		suite.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	if withActor {
		req.Header.Set(middleware.ActorHeader, suite.actorID)
	}
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *SettlementHandlerTestSuite) submitRequest() dto.CreateSettlementRequest {
	return dto.CreateSettlementRequest{
		Direction:        "RECEIVABLE",
		CounterpartyID:   "cp-001",
		CounterpartyKind: "CUSTOMER",
		SettlementDate:   time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC),
		TotalAmount:      decimal.NewFromInt(100),
		Targets: []dto.SettlementTargetRequest{
			{LineKind: "ORDER", LineID: "ord-1", RequestedAmount: decimal.NewFromInt(100)},
		},
		PaymentSplits: []dto.PaymentSplitRequest{
			{MethodID: "CASH", Amount: decimal.NewFromInt(100)},
		},
	}
}

// --- Test Cases ---

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_Success() {
	doc := &domain.SettlementDocument{
		SettlementID:     "stl-1",
		Direction:        domain.Receivable,
		CounterpartyID:   "cp-001",
		CounterpartyKind: domain.CounterpartyCustomer,
		TotalAmount:      decimal.NewFromInt(100),
		CollectedAmount:  decimal.NewFromInt(100),
		JournalEntryID:   "je-1",
	}
	suite.mockSettlementService.On("SubmitSettlement", mock.Anything, mock.AnythingOfType("dto.CreateSettlementRequest"), suite.actorID).Return(doc, nil).Once()

	w := suite.serve(http.MethodPost, "/api/v1/settlements", suite.submitRequest(), true)

	suite.Equal(http.StatusCreated, w.Code)
	var resp dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal("stl-1", resp.SettlementID)
	suite.Equal("je-1", resp.JournalEntryID)
	suite.mockSettlementService.AssertExpectations(suite.T())
}

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_MissingActorHeader() {
	w := suite.serve(http.MethodPost, "/api/v1/settlements", suite.submitRequest(), false)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSettlementService.AssertNotCalled(suite.T(), "SubmitSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_InvalidBody() {
	body := map[string]any{"direction": "SIDEWAYS"}

	w := suite.serve(http.MethodPost, "/api/v1/settlements", body, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSettlementService.AssertNotCalled(suite.T(), "SubmitSettlement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_OverAllocation() {
	suite.mockSettlementService.On("SubmitSettlement", mock.Anything, mock.AnythingOfType("dto.CreateSettlementRequest"), suite.actorID).
		Return(nil, apperrors.ErrOverAllocation).Once()

	w := suite.serve(http.MethodPost, "/api/v1/settlements", suite.submitRequest(), true)

	suite.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_VersionConflict() {
	suite.mockSettlementService.On("SubmitSettlement", mock.Anything, mock.AnythingOfType("dto.CreateSettlementRequest"), suite.actorID).
		Return(nil, apperrors.ErrVersionConflict).Once()

	w := suite.serve(http.MethodPost, "/api/v1/settlements", suite.submitRequest(), true)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestSubmitSettlement_UnknownLine() {
	suite.mockSettlementService.On("SubmitSettlement", mock.Anything, mock.AnythingOfType("dto.CreateSettlementRequest"), suite.actorID).
		Return(nil, apperrors.ErrNotFound).Once()

	w := suite.serve(http.MethodPost, "/api/v1/settlements", suite.submitRequest(), true)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestGetSettlement_NotFound() {
	suite.mockSettlementService.On("GetSettlement", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	w := suite.serve(http.MethodGet, "/api/v1/settlements/missing", nil, true)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *SettlementHandlerTestSuite) TestListSettlements_Success() {
	docs := []domain.SettlementDocument{
		{SettlementID: "stl-1", CounterpartyID: "cp-001", TotalAmount: decimal.NewFromInt(100)},
		{SettlementID: "stl-2", CounterpartyID: "cp-001", TotalAmount: decimal.NewFromInt(50)},
	}
	suite.mockSettlementService.On("ListSettlements", mock.Anything, "cp-001", 10).Return(docs, nil).Once()

	w := suite.serve(http.MethodGet, "/api/v1/settlements?counterpartyID=cp-001&limit=10", nil, true)

	suite.Equal(http.StatusOK, w.Code)
	var resp []dto.SettlementResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().Len(resp, 2)
	suite.Equal("stl-1", resp[0].SettlementID)
}

func (suite *SettlementHandlerTestSuite) TestListSettlements_MissingCounterparty() {
	w := suite.serve(http.MethodGet, "/api/v1/settlements", nil, true)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockSettlementService.AssertNotCalled(suite.T(), "ListSettlements", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SettlementHandlerTestSuite) TestListSettlements_BadLimit() {
	w := suite.serve(http.MethodGet, "/api/v1/settlements?counterpartyID=cp-001&limit=500", nil, true)

	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestSettlementHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementHandlerTestSuite))
}
