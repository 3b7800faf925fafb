package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finvisor/finvisor_app/internal/apperrors"
	"github.com/finvisor/finvisor_app/internal/core/domain"
	portssvc "github.com/finvisor/finvisor_app/internal/core/ports/services"
	"github.com/finvisor/finvisor_app/internal/dto"
	"github.com/finvisor/finvisor_app/internal/handlers"
	"github.com/finvisor/finvisor_app/internal/middleware"
	"github.com/finvisor/finvisor_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock ReceiptService ---
type MockReceiptService struct {
	mock.Mock
}

func (m *MockReceiptService) ListReceipts(ctx context.Context, firmID string, filter domain.ReceiptFilter) ([]domain.Receipt, error) {
	args := m.Called(ctx, firmID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Receipt), args.Error(1)
}
func (m *MockReceiptService) GetReceiptByID(ctx context.Context, firmID string, receiptID int64) (*domain.Receipt, error) {
	args := m.Called(ctx, firmID, receiptID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}
func (m *MockReceiptService) UpdateReceipt(ctx context.Context, firmID string, receiptID int64, req dto.UpdateReceiptRequest, updaterUserID string) (*domain.Receipt, error) {
	args := m.Called(ctx, firmID, receiptID, req, updaterUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}
func (m *MockReceiptService) ValidateReceipt(ctx context.Context, firmID string, receiptID int64, validatorUserID string) (*domain.Receipt, error) {
	args := m.Called(ctx, firmID, receiptID, validatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}
func (m *MockReceiptService) DeleteReceipt(ctx context.Context, firmID string, receiptID int64) error {
	args := m.Called(ctx, firmID, receiptID)
	return args.Error(0)
}
func (m *MockReceiptService) RegisterUpload(ctx context.Context, firmID string, req dto.UploadReceiptRequest, uploaderUserID string) (*domain.Receipt, error) {
	args := m.Called(ctx, firmID, req, uploaderUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Receipt), args.Error(1)
}

var _ portssvc.ReceiptSvcFacade = (*MockReceiptService)(nil)

// --- Mock ExportService ---
type MockExportService struct {
	mock.Mock
}

func (m *MockExportService) ExportReceipts(ctx context.Context, firmID string, req dto.ExportRequest) (*dto.ExportResponse, error) {
	args := m.Called(ctx, firmID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.ExportResponse), args.Error(1)
}
func (m *MockExportService) SendClientRelance(ctx context.Context, firmID, clientID, message string) error {
	args := m.Called(ctx, firmID, clientID, message)
	return args.Error(0)
}

var _ portssvc.ExportSvcFacade = (*MockExportService)(nil)

// --- Test Suite ---
type ReceiptHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockReceiptService *MockReceiptService
	mockExportService  *MockExportService
	jwtSecret          string
	firmID             string
	userID             string
}

func (suite *ReceiptHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.firmID = uuid.NewString()
	suite.userID = uuid.NewString()

	suite.router.Use(middleware.AuthMiddleware(suite.jwtSecret))

	suite.mockReceiptService = new(MockReceiptService)
	suite.mockExportService = new(MockExportService)

	v1 := suite.router.Group("/api/v1")
	handlers.RegisterReceiptRoutes(v1, suite.mockReceiptService, suite.mockExportService)
}

// newAuthedRequest builds a request carrying a firm-scoped bearer token.
func (suite *ReceiptHandlerTestSuite) newAuthedRequest(method, url string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, url, nil)
	}
	token, err := utils.GenerateJWT(suite.userID, suite.firmID, suite.jwtSecret, time.Hour, "finvisor-test")
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func (suite *ReceiptHandlerTestSuite) TestListReceipts_Success() {
	gross := decimal.NewFromFloat(120.50)
	vendor := "Cafe du Centre"
	expected := []domain.Receipt{
		{ID: 1, FirmID: suite.firmID, GrossAmount: &gross, Vendor: &vendor, Status: domain.ReceiptPending, CreatedAt: time.Now()},
		{ID: 2, FirmID: suite.firmID, Status: domain.ReceiptProcessed, CreatedAt: time.Now().Add(-time.Hour)},
	}

	suite.mockReceiptService.On("ListReceipts",
		mock.Anything,
		suite.firmID,
		mock.MatchedBy(func(f domain.ReceiptFilter) bool {
			return f.ClientID == domain.FilterAll && f.ProcessedBy == domain.FilterAll && f.Sort == domain.SortDesc
		}),
	).Return(expected, nil).Once()

	req := suite.newAuthedRequest(http.MethodGet, "/api/v1/receipts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var body dto.ListReceiptsResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	suite.Len(body.Receipts, 2)
	suite.Equal(int64(1), body.Receipts[0].ID)
	suite.mockReceiptService.AssertExpectations(suite.T())
}

func (suite *ReceiptHandlerTestSuite) TestListReceipts_Unauthenticated() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/receipts", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.mockReceiptService.AssertNotCalled(suite.T(), "ListReceipts")
}

func (suite *ReceiptHandlerTestSuite) TestGetReceipt_NotFound() {
	suite.mockReceiptService.On("GetReceiptByID", mock.Anything, suite.firmID, int64(42)).
		Return(nil, apperrors.ErrNotFound).Once()

	req := suite.newAuthedRequest(http.MethodGet, "/api/v1/receipts/42", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *ReceiptHandlerTestSuite) TestGetReceipt_InvalidID() {
	req := suite.newAuthedRequest(http.MethodGet, "/api/v1/receipts/abc", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.mockReceiptService.AssertNotCalled(suite.T(), "GetReceiptByID")
}

func (suite *ReceiptHandlerTestSuite) TestUploadReceipt_Created() {
	fileName := "2026-08-receipt.pdf"
	created := &domain.Receipt{ID: 7, FirmID: suite.firmID, DocumentRef: &fileName, Status: domain.ReceiptPending, CreatedAt: time.Now()}

	suite.mockReceiptService.On("RegisterUpload",
		mock.Anything,
		suite.firmID,
		mock.MatchedBy(func(r dto.UploadReceiptRequest) bool { return r.FileName == fileName }),
		suite.userID,
	).Return(created, nil).Once()

	body, _ := json.Marshal(dto.UploadReceiptRequest{FileName: fileName})
	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/receipts", body)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusCreated, w.Code)

	var resp dto.ReceiptResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Equal(int64(7), resp.ID)
	suite.Equal(string(domain.ReceiptPending), resp.Status)
	suite.Nil(resp.ReceiptNumber)
	suite.mockReceiptService.AssertExpectations(suite.T())
}

func (suite *ReceiptHandlerTestSuite) TestValidateReceipt_Success() {
	number := int64(1042)
	processed := &domain.Receipt{ID: 9, FirmID: suite.firmID, Status: domain.ReceiptProcessed, Number: &number, ProcessedBy: &suite.userID, CreatedAt: time.Now()}

	suite.mockReceiptService.On("ValidateReceipt", mock.Anything, suite.firmID, int64(9), suite.userID).
		Return(processed, nil).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/receipts/9/validate", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)

	var resp dto.ReceiptResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	suite.Require().NotNil(resp.ReceiptNumber)
	suite.Equal(number, *resp.ReceiptNumber)
	suite.mockReceiptService.AssertExpectations(suite.T())
}

func (suite *ReceiptHandlerTestSuite) TestValidateReceipt_NotPending() {
	suite.mockReceiptService.On("ValidateReceipt", mock.Anything, suite.firmID, int64(9), suite.userID).
		Return(nil, fmt.Errorf("receipt already processed: %w", apperrors.ErrValidation)).Once()

	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/receipts/9/validate", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *ReceiptHandlerTestSuite) TestExportReceipts_PDFBytes() {
	pdf := []byte("%PDF-1.7 fake")
	suite.mockExportService.On("ExportReceipts", mock.Anything, suite.firmID, mock.Anything).
		Return(&dto.ExportResponse{PDF: pdf}, nil).Once()

	body, _ := json.Marshal(dto.ExportRequest{Format: "pdf"})
	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/receipts/export", body)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/pdf", w.Header().Get("Content-Type"))
	suite.Equal(pdf, w.Body.Bytes())
}

func (suite *ReceiptHandlerTestSuite) TestExportReceipts_WebhookDown() {
	suite.mockExportService.On("ExportReceipts", mock.Anything, suite.firmID, mock.Anything).
		Return(nil, fmt.Errorf("export endpoint returned 500: %w", apperrors.ErrWebhook)).Once()

	body, _ := json.Marshal(dto.ExportRequest{Format: "sheet"})
	req := suite.newAuthedRequest(http.MethodPost, "/api/v1/receipts/export", body)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusBadGateway, w.Code)
}

func TestReceiptHandler(t *testing.T) {
	suite.Run(t, new(ReceiptHandlerTestSuite))
}
