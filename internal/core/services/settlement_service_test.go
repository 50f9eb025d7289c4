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
	"github.com/settleforge/sle_backend/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SettlementRepository ---

type MockSettlementRepository struct {
	mock.Mock
}

var _ portsrepo.SettlementRepositoryFacade = (*MockSettlementRepository)(nil)

func (m *MockSettlementRepository) FindSettlementByID(ctx context.Context, settlementID string) (*domain.SettlementDocument, error) {
	args := m.Called(ctx, settlementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SettlementDocument), args.Error(1)
}

func (m *MockSettlementRepository) ListSettlementsByCounterparty(ctx context.Context, counterpartyID string, limit int) ([]domain.SettlementDocument, error) {
	args := m.Called(ctx, counterpartyID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SettlementDocument), args.Error(1)
}

func (m *MockSettlementRepository) SaveSettlement(ctx context.Context, tx pgx.Tx, doc domain.SettlementDocument, allocations []domain.LineAllocation, splits []domain.PaymentSplit) error {
	args := m.Called(ctx, tx, doc, allocations, splits)
	return args.Error(0)
}

func (m *MockSettlementRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	tx, _ := args.Get(0).(pgx.Tx)
	return tx, args.Error(1)
}

func (m *MockSettlementRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockSettlementRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock OutstandingLineRepository ---

type MockOutstandingRepository struct {
	mock.Mock
}

var _ portsrepo.OutstandingLineRepository = (*MockOutstandingRepository)(nil)

func (m *MockOutstandingRepository) FindByRefs(ctx context.Context, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error) {
	args := m.Called(ctx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.LineRef]domain.OutstandingLine), args.Error(1)
}

func (m *MockOutstandingRepository) FindByRefsForUpdate(ctx context.Context, tx pgx.Tx, refs []domain.LineRef) (map[domain.LineRef]domain.OutstandingLine, error) {
	args := m.Called(ctx, tx, refs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.LineRef]domain.OutstandingLine), args.Error(1)
}

func (m *MockOutstandingRepository) IncrementSettled(ctx context.Context, tx pgx.Tx, ref domain.LineRef, amount decimal.Decimal, expectedVersion int64, updatedBy string, updatedAt time.Time) error {
	args := m.Called(ctx, tx, ref, amount, expectedVersion, updatedBy, updatedAt)
	return args.Error(0)
}

func (m *MockOutstandingRepository) SaveLine(ctx context.Context, line domain.OutstandingLine) error {
	args := m.Called(ctx, line)
	return args.Error(0)
}

// --- Mock PostingService ---

type MockPostingService struct {
	mock.Mock
}

var _ portssvc.PostingSvcFacade = (*MockPostingService)(nil)

func (m *MockPostingService) GetEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) GetAccountBalance(ctx context.Context, accountID string) (*domain.AccountBalance, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccountBalance), args.Error(1)
}

func (m *MockPostingService) BuildEntry(ctx context.Context, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, input, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) BuildAndPost(ctx context.Context, tx pgx.Tx, input dto.BuildEntryInput, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, tx, input, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) Post(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) Cancel(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockPostingService) Reverse(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

// --- Test Suite ---

// The orchestrator runs against the real allocation engine and the real
// prepayment service; only storage and the posting engine are mocked.
type SettlementServiceTestSuite struct {
	suite.Suite
	mockSettlementRepo  *MockSettlementRepository
	mockOutstandingRepo *MockOutstandingRepository
	mockPrepaymentRepo  *MockPrepaymentRepository
	mockPostingSvc      *MockPostingService
	service             portssvc.SettlementSvcFacade

	userID         string
	counterpartyID string
	settlementDate time.Time
	refA, refB     domain.LineRef
	lines          map[domain.LineRef]domain.OutstandingLine
	postedEntry    *domain.JournalEntry
}

func (suite *SettlementServiceTestSuite) SetupTest() {
	suite.mockSettlementRepo = new(MockSettlementRepository)
	suite.mockOutstandingRepo = new(MockOutstandingRepository)
	suite.mockPrepaymentRepo = new(MockPrepaymentRepository)
	suite.mockPostingSvc = new(MockPostingService)

	cfg := services.EngineConfig{
		MaxSubmitRetries: 2,
		Accounts: services.AccountMap{
			ReceivableControl: "1131",
			PayableControl:    "2111",
			AllowanceExpense:  "6711",
			AllowanceIncome:   "7111",
			CustomerAdvances:  "2203",
			SupplierAdvances:  "1123",
			DefaultCash:       "1111",
			MethodAccounts:    map[string]string{"BANK_TRANSFER": "1112"},
		},
	}
	suite.service = services.NewSettlementService(
		suite.mockSettlementRepo,
		suite.mockOutstandingRepo,
		suite.mockPrepaymentRepo,
		services.NewAllocationService(),
		services.NewPrepaymentService(suite.mockPrepaymentRepo),
		suite.mockPostingSvc,
		cfg,
	)

	suite.userID = "user-1"
	suite.counterpartyID = "cp-001"
	suite.settlementDate = time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	suite.refA = domain.LineRef{Kind: domain.OrderLine, ID: "ord-a"}
	suite.refB = domain.LineRef{Kind: domain.OrderLine, ID: "ord-b"}
	suite.lines = map[domain.LineRef]domain.OutstandingLine{
		suite.refA: {
			Ref:              suite.refA,
			CounterpartyID:   suite.counterpartyID,
			CounterpartyKind: domain.CounterpartyCustomer,
			GrossAmount:      decimal.NewFromInt(100),
			Version:          1,
		},
		suite.refB: {
			Ref:                     suite.refB,
			CounterpartyID:          suite.counterpartyID,
			CounterpartyKind:        domain.CounterpartyCustomer,
			GrossAmount:             decimal.NewFromInt(200),
			PreviouslySettledAmount: decimal.NewFromInt(50),
			Version:                 3,
		},
	}
	suite.postedEntry = &domain.JournalEntry{EntryID: "je-1", Status: domain.Posted}
}

func (suite *SettlementServiceTestSuite) baseRequest() dto.CreateSettlementRequest {
	return dto.CreateSettlementRequest{
		Direction:        string(domain.Receivable),
		CounterpartyID:   suite.counterpartyID,
		CounterpartyKind: string(domain.CounterpartyCustomer),
		SettlementDate:   suite.settlementDate,
	}
}

// --- Test Cases ---

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_HappyPath() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(150)
	req.Targets = []dto.SettlementTargetRequest{
		// Caller puts ord-b first; the document must keep that order even
		// though locking happens in ascending id order.
		{LineKind: "ORDER", LineID: "ord-b", RequestedAmount: decimal.NewFromInt(120), AllowanceAmount: decimal.NewFromInt(10)},
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(30)},
	}
	req.PaymentSplits = []dto.PaymentSplitRequest{
		{MethodID: "BANK_TRANSFER", Amount: decimal.NewFromInt(150), ReferenceNumber: "TRX-42"},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	var lockedRefs []domain.LineRef
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, mock.AnythingOfType("[]domain.LineRef")).
		Run(func(args mock.Arguments) { lockedRefs = args.Get(2).([]domain.LineRef) }).
		Return(suite.lines, nil).Once()

	var entryInput dto.BuildEntryInput
	suite.mockPostingSvc.On("BuildAndPost", ctx, mock.Anything, mock.AnythingOfType("dto.BuildEntryInput"), suite.userID).
		Run(func(args mock.Arguments) { entryInput = args.Get(2).(dto.BuildEntryInput) }).
		Return(suite.postedEntry, nil).Once()

	var savedDoc domain.SettlementDocument
	var savedAllocations []domain.LineAllocation
	var savedSplits []domain.PaymentSplit
	suite.mockSettlementRepo.On("SaveSettlement", ctx, mock.Anything, mock.AnythingOfType("domain.SettlementDocument"), mock.AnythingOfType("[]domain.LineAllocation"), mock.AnythingOfType("[]domain.PaymentSplit")).
		Run(func(args mock.Arguments) {
			savedDoc = args.Get(2).(domain.SettlementDocument)
			savedAllocations = args.Get(3).([]domain.LineAllocation)
			savedSplits = args.Get(4).([]domain.PaymentSplit)
		}).
		Return(nil).Once()

	settledAmounts := map[domain.LineRef]decimal.Decimal{}
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refB, mock.Anything, int64(3), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { settledAmounts[suite.refB] = args.Get(3).(decimal.Decimal) }).
		Return(nil).Once()
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).
		Run(func(args mock.Arguments) { settledAmounts[suite.refA] = args.Get(3).(decimal.Decimal) }).
		Return(nil).Once()
	suite.mockSettlementRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(doc)
	suite.NotEmpty(doc.SettlementID)
	suite.Equal("je-1", doc.JournalEntryID)
	suite.True(doc.CollectedAmount.Equal(decimal.NewFromInt(150)))
	suite.True(doc.AllowanceAmount.Equal(decimal.NewFromInt(10)))
	suite.True(doc.TotalAmount.Equal(decimal.NewFromInt(160)))
	suite.True(doc.PrepaymentCreatedAmount.IsZero())

	// Locking happens in ascending ref order regardless of request order.
	suite.Require().Len(lockedRefs, 2)
	suite.Equal(suite.refA, lockedRefs[0])
	suite.Equal(suite.refB, lockedRefs[1])

	// The document preserves the caller's target order; the ordinal pins it
	// for reads as well.
	suite.Require().Len(savedAllocations, 2)
	suite.Equal(suite.refB, savedAllocations[0].Line)
	suite.Equal(suite.refA, savedAllocations[1].Line)
	suite.Equal(1, savedAllocations[0].LineNumber)
	suite.Equal(2, savedAllocations[1].LineNumber)
	suite.Equal(savedDoc.SettlementID, savedAllocations[0].SettlementID)
	suite.Require().Len(savedSplits, 1)
	suite.Equal("TRX-42", savedSplits[0].ReferenceNumber)

	// Journal lines: debit the bank account, debit the allowance expense,
	// credit AR control for everything settled onto the lines.
	suite.Equal(string(domain.EntryAuto), entryInput.Kind)
	suite.Equal("SETTLEMENT", entryInput.SourceKind)
	suite.Equal(savedDoc.SettlementID, entryInput.SourceID)
	suite.Require().Len(entryInput.Lines, 3)
	suite.Equal("1112", entryInput.Lines[0].AccountID)
	suite.Equal(string(domain.Debit), entryInput.Lines[0].Direction)
	suite.True(entryInput.Lines[0].Amount.Equal(decimal.NewFromInt(150)))
	suite.Equal("6711", entryInput.Lines[1].AccountID)
	suite.True(entryInput.Lines[1].Amount.Equal(decimal.NewFromInt(10)))
	suite.Equal("1131", entryInput.Lines[2].AccountID)
	suite.Equal(string(domain.Credit), entryInput.Lines[2].Direction)
	suite.True(entryInput.Lines[2].Amount.Equal(decimal.NewFromInt(160)))

	// Allowance counts toward what each line absorbed.
	suite.True(settledAmounts[suite.refB].Equal(decimal.NewFromInt(130)))
	suite.True(settledAmounts[suite.refA].Equal(decimal.NewFromInt(30)))

	suite.mockSettlementRepo.AssertExpectations(suite.T())
	suite.mockOutstandingRepo.AssertExpectations(suite.T())
	suite.mockPostingSvc.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_DrawAndOverflow() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(120)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(100)},
	}
	req.PaymentSplits = []dto.PaymentSplitRequest{
		{MethodID: "CASH", Amount: decimal.NewFromInt(70)},
	}
	req.PrepaymentDraws = []dto.PrepaymentDrawRequest{
		{PrepaymentID: "prep-1", Amount: decimal.NewFromInt(50)},
	}
	req.AllowPrepaymentOverflow = true

	lockedPreps := map[string]domain.PrepaymentRecord{
		"prep-1": {
			PrepaymentID:     "prep-1",
			CounterpartyID:   suite.counterpartyID,
			CounterpartyKind: domain.CounterpartyCustomer,
			Amount:           decimal.NewFromInt(80),
			UsedAmount:       decimal.NewFromInt(10),
			Version:          4,
		},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, []domain.LineRef{suite.refA}).Return(suite.lines, nil).Once()
	suite.mockPrepaymentRepo.On("FindPrepaymentsByIDsForUpdate", ctx, mock.Anything, []string{"prep-1"}).Return(lockedPreps, nil).Once()

	var entryInput dto.BuildEntryInput
	suite.mockPostingSvc.On("BuildAndPost", ctx, mock.Anything, mock.AnythingOfType("dto.BuildEntryInput"), suite.userID).
		Run(func(args mock.Arguments) { entryInput = args.Get(2).(dto.BuildEntryInput) }).
		Return(suite.postedEntry, nil).Once()
	suite.mockSettlementRepo.On("SaveSettlement", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()

	// The 20 unapplied become a new advance; the 50 drawn hit the old record.
	var savedAdvance domain.PrepaymentRecord
	suite.mockPrepaymentRepo.On("SavePrepayment", ctx, mock.Anything, mock.AnythingOfType("domain.PrepaymentRecord")).
		Run(func(args mock.Arguments) { savedAdvance = args.Get(2).(domain.PrepaymentRecord) }).
		Return(nil).Once()
	var appliedUsage domain.PrepaymentUsage
	suite.mockPrepaymentRepo.On("ApplyDraw", ctx, mock.Anything, mock.AnythingOfType("domain.PrepaymentUsage"), int64(4)).
		Run(func(args mock.Arguments) { appliedUsage = args.Get(2).(domain.PrepaymentUsage) }).
		Return(nil).Once()

	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSettlementRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(doc.PrepaymentAppliedAmount.Equal(decimal.NewFromInt(50)))
	suite.True(doc.PrepaymentCreatedAmount.Equal(decimal.NewFromInt(20)))

	suite.True(savedAdvance.Amount.Equal(decimal.NewFromInt(20)))
	suite.Equal(doc.SettlementID, savedAdvance.OriginatingSettlementID)
	suite.Equal("prep-1", appliedUsage.PrepaymentID)
	suite.True(appliedUsage.Amount.Equal(decimal.NewFromInt(50)))
	suite.Equal(doc.SettlementID, appliedUsage.SettlementID)

	// CASH has no method mapping and falls back to the default cash account.
	suite.Require().Len(entryInput.Lines, 4)
	suite.Equal("1111", entryInput.Lines[0].AccountID)
	suite.Equal("2203", entryInput.Lines[1].AccountID) // advance applied, debit
	suite.Equal(string(domain.Debit), entryInput.Lines[1].Direction)
	suite.Equal("1131", entryInput.Lines[2].AccountID)
	suite.Equal("2203", entryInput.Lines[3].AccountID) // advance received, credit
	suite.Equal(string(domain.Credit), entryInput.Lines[3].Direction)

	suite.mockPrepaymentRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_PayableMirror() {
	ctx := context.Background()
	supplierLine := domain.OutstandingLine{
		Ref:              suite.refA,
		CounterpartyID:   "sup-001",
		CounterpartyKind: domain.CounterpartySupplier,
		GrossAmount:      decimal.NewFromInt(100),
		Version:          1,
	}
	req := dto.CreateSettlementRequest{
		Direction:        string(domain.Payable),
		CounterpartyID:   "sup-001",
		CounterpartyKind: string(domain.CounterpartySupplier),
		SettlementDate:   suite.settlementDate,
		TotalAmount:      decimal.NewFromInt(95),
		Targets: []dto.SettlementTargetRequest{
			{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(95), AllowanceAmount: decimal.NewFromInt(5)},
		},
		PaymentSplits: []dto.PaymentSplitRequest{
			{MethodID: "BANK_TRANSFER", Amount: decimal.NewFromInt(95)},
		},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, []domain.LineRef{suite.refA}).
		Return(map[domain.LineRef]domain.OutstandingLine{suite.refA: supplierLine}, nil).Once()

	var entryInput dto.BuildEntryInput
	suite.mockPostingSvc.On("BuildAndPost", ctx, mock.Anything, mock.AnythingOfType("dto.BuildEntryInput"), suite.userID).
		Run(func(args mock.Arguments) { entryInput = args.Get(2).(dto.BuildEntryInput) }).
		Return(suite.postedEntry, nil).Once()
	suite.mockSettlementRepo.On("SaveSettlement", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).Return(nil).Once()
	suite.mockSettlementRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	_, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	// Payables debit AP control and credit the cash and allowance accounts.
	suite.Require().Len(entryInput.Lines, 3)
	suite.Equal("2111", entryInput.Lines[0].AccountID)
	suite.Equal(string(domain.Debit), entryInput.Lines[0].Direction)
	suite.True(entryInput.Lines[0].Amount.Equal(decimal.NewFromInt(100)))
	suite.Equal("1112", entryInput.Lines[1].AccountID)
	suite.Equal(string(domain.Credit), entryInput.Lines[1].Direction)
	suite.Equal("7111", entryInput.Lines[2].AccountID)
	suite.Equal(string(domain.Credit), entryInput.Lines[2].Direction)
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_DuplicateTargetRejected() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(100)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(50)},
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(50)},
	}

	_, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_DuplicateDrawRejected() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(100)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(100)},
	}
	req.PrepaymentDraws = []dto.PrepaymentDrawRequest{
		{PrepaymentID: "prep-1", Amount: decimal.NewFromInt(50)},
		{PrepaymentID: "prep-1", Amount: decimal.NewFromInt(50)},
	}

	_, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_AllocationFailureRollsBack() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(500)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(500)}, // only 100 open
	}
	req.PaymentSplits = []dto.PaymentSplitRequest{
		{MethodID: "CASH", Amount: decimal.NewFromInt(500)},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil).Once()
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil).Once()
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, []domain.LineRef{suite.refA}).Return(suite.lines, nil).Once()

	_, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrOverAllocation)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "SaveSettlement", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_RetriesOnVersionConflict() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(100)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(100)},
	}
	req.PaymentSplits = []dto.PaymentSplitRequest{
		{MethodID: "CASH", Amount: decimal.NewFromInt(100)},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil)
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, []domain.LineRef{suite.refA}).Return(suite.lines, nil)
	suite.mockPostingSvc.On("BuildAndPost", ctx, mock.Anything, mock.AnythingOfType("dto.BuildEntryInput"), suite.userID).Return(suite.postedEntry, nil)
	suite.mockSettlementRepo.On("SaveSettlement", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	// A concurrent settlement wins the first race; the retry succeeds.
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrVersionConflict).Once()
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).
		Return(nil).Once()
	suite.mockSettlementRepo.On("Commit", ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.Require().NotNil(doc)
	suite.mockSettlementRepo.AssertNumberOfCalls(suite.T(), "Begin", 2)
	suite.mockSettlementRepo.AssertNumberOfCalls(suite.T(), "Commit", 1)
}

func (suite *SettlementServiceTestSuite) TestSubmitSettlement_RetriesExhausted() {
	ctx := context.Background()
	req := suite.baseRequest()
	req.TotalAmount = decimal.NewFromInt(100)
	req.Targets = []dto.SettlementTargetRequest{
		{LineKind: "ORDER", LineID: "ord-a", RequestedAmount: decimal.NewFromInt(100)},
	}
	req.PaymentSplits = []dto.PaymentSplitRequest{
		{MethodID: "CASH", Amount: decimal.NewFromInt(100)},
	}

	suite.mockSettlementRepo.On("Begin", ctx).Return(nil, nil)
	suite.mockSettlementRepo.On("Rollback", ctx, mock.Anything).Return(nil)
	suite.mockOutstandingRepo.On("FindByRefsForUpdate", ctx, mock.Anything, []domain.LineRef{suite.refA}).Return(suite.lines, nil)
	suite.mockPostingSvc.On("BuildAndPost", ctx, mock.Anything, mock.AnythingOfType("dto.BuildEntryInput"), suite.userID).Return(suite.postedEntry, nil)
	suite.mockSettlementRepo.On("SaveSettlement", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	suite.mockOutstandingRepo.On("IncrementSettled", ctx, mock.Anything, suite.refA, mock.Anything, int64(1), suite.userID, mock.AnythingOfType("time.Time")).
		Return(apperrors.ErrVersionConflict)

	_, err := suite.service.SubmitSettlement(ctx, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrVersionConflict)
	// MaxSubmitRetries(2) plus the initial attempt.
	suite.mockSettlementRepo.AssertNumberOfCalls(suite.T(), "Begin", 3)
	suite.mockSettlementRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *SettlementServiceTestSuite) TestListSettlements_DefaultLimit() {
	ctx := context.Background()

	suite.mockSettlementRepo.On("ListSettlementsByCounterparty", ctx, suite.counterpartyID, 20).Return([]domain.SettlementDocument{}, nil).Once()

	_, err := suite.service.ListSettlements(ctx, suite.counterpartyID, 0)

	suite.Require().NoError(err)
	suite.mockSettlementRepo.AssertExpectations(suite.T())
}

func (suite *SettlementServiceTestSuite) TestGetSettlement_NotFound() {
	ctx := context.Background()

	suite.mockSettlementRepo.On("FindSettlementByID", ctx, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := suite.service.GetSettlement(ctx, "missing")

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSettlementServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SettlementServiceTestSuite))
}
