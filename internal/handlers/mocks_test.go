package handlers

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"ustbills/internal/middleware"
	"ustbills/internal/models"
	"ustbills/internal/pagination"
	"ustbills/internal/services"
	"ustbills/internal/validator"
)

// --- mock services ---

var (
	_ services.UserServicer           = (*mockUserService)(nil)
	_ services.USTBillServicer        = (*mockUSTBillService)(nil)
	_ services.HoldingServicer        = (*mockHoldingService)(nil)
	_ services.PlatformConfigServicer = (*mockConfigService)(nil)
	_ services.MetricsServicer        = (*mockMetricsService)(nil)
	_ services.RateServicer           = (*mockRateService)(nil)
	_ services.BrokerServicer         = (*mockBrokerService)(nil)
	_ services.AdminServicer          = (*mockAdminService)(nil)
	_ services.AuditServicer          = (*mockAuditService)(nil)
)

type mockUserService struct {
	registerUserFn    func(identity string, input services.RegisterUserInput) (*models.User, error)
	getUserProfileFn  func(identity string) (*models.User, error)
	updateEmailFn     func(identity, email string) (*models.User, error)
	depositFundsFn    func(identity string, amount int64) (int64, error)
	withdrawFundsFn   func(identity string, amount int64) (int64, error)
	updateKYCStatusFn func(identity string, status models.KYCStatus) (*models.User, error)
	setUserActiveFn   func(identity string, active bool) (*models.User, error)
	isEligibleFn      func(identity string) (bool, error)
	transactionsFn    func(identity string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
}

func (m *mockUserService) RegisterUser(identity string, input services.RegisterUserInput) (*models.User, error) {
	if m.registerUserFn != nil {
		return m.registerUserFn(identity, input)
	}
	return &models.User{Identity: identity}, nil
}

func (m *mockUserService) GetUserProfile(identity string) (*models.User, error) {
	if m.getUserProfileFn != nil {
		return m.getUserProfileFn(identity)
	}
	return &models.User{Identity: identity}, nil
}

func (m *mockUserService) UpdateEmail(identity, email string) (*models.User, error) {
	if m.updateEmailFn != nil {
		return m.updateEmailFn(identity, email)
	}
	return &models.User{Identity: identity, Email: email}, nil
}

func (m *mockUserService) DepositFunds(identity string, amount int64) (int64, error) {
	if m.depositFundsFn != nil {
		return m.depositFundsFn(identity, amount)
	}
	return amount, nil
}

func (m *mockUserService) WithdrawFunds(identity string, amount int64) (int64, error) {
	if m.withdrawFundsFn != nil {
		return m.withdrawFundsFn(identity, amount)
	}
	return 0, nil
}

func (m *mockUserService) UpdateKYCStatus(identity string, status models.KYCStatus) (*models.User, error) {
	if m.updateKYCStatusFn != nil {
		return m.updateKYCStatusFn(identity, status)
	}
	return &models.User{Identity: identity, KYCStatus: status}, nil
}

func (m *mockUserService) SetUserActive(identity string, active bool) (*models.User, error) {
	if m.setUserActiveFn != nil {
		return m.setUserActiveFn(identity, active)
	}
	return &models.User{Identity: identity, IsActive: active}, nil
}

func (m *mockUserService) IsEligible(identity string) (bool, error) {
	if m.isEligibleFn != nil {
		return m.isEligibleFn(identity)
	}
	return true, nil
}

func (m *mockUserService) GetUserTransactions(identity string, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if m.transactionsFn != nil {
		return m.transactionsFn(identity, page)
	}
	p, perPage := page.Values()
	resp := pagination.NewPageResponse[models.Transaction](nil, p, perPage, 0)
	return &resp, nil
}

type mockUSTBillService struct {
	createFn       func(input services.CreateUSTBillInput) (*models.USTBill, error)
	getFn          func(id string) (*models.USTBill, error)
	activeFn       func() ([]models.USTBill, error)
	paginatedFn    func(page pagination.PageRequest, includeAll bool) (*pagination.PageResponse[models.USTBill], error)
	availabilityFn func(id string) (int64, error)
	costFn         func(id string, tokens int64) (int64, error)
	cancelFn       func(id string) (*models.USTBill, error)
	sweepFn        func() (*services.SweepResult, error)
}

func (m *mockUSTBillService) CreateUSTBill(input services.CreateUSTBillInput) (*models.USTBill, error) {
	if m.createFn != nil {
		return m.createFn(input)
	}
	return &models.USTBill{Base: models.Base{ID: "bill-1"}, CUSIP: input.CUSIP}, nil
}

func (m *mockUSTBillService) GetUSTBill(id string) (*models.USTBill, error) {
	if m.getFn != nil {
		return m.getFn(id)
	}
	return &models.USTBill{Base: models.Base{ID: id}}, nil
}

func (m *mockUSTBillService) GetActiveUSTBills() ([]models.USTBill, error) {
	if m.activeFn != nil {
		return m.activeFn()
	}
	return []models.USTBill{}, nil
}

func (m *mockUSTBillService) GetUSTBillsPaginated(page pagination.PageRequest, includeAll bool) (*pagination.PageResponse[models.USTBill], error) {
	if m.paginatedFn != nil {
		return m.paginatedFn(page, includeAll)
	}
	p, perPage := page.Values()
	resp := pagination.NewPageResponse[models.USTBill](nil, p, perPage, 0)
	return &resp, nil
}

func (m *mockUSTBillService) GetUSTBillAvailability(id string) (int64, error) {
	if m.availabilityFn != nil {
		return m.availabilityFn(id)
	}
	return 0, nil
}

func (m *mockUSTBillService) CalculatePurchaseCost(id string, tokens int64) (int64, error) {
	if m.costFn != nil {
		return m.costFn(id, tokens)
	}
	return 0, nil
}

func (m *mockUSTBillService) CancelUSTBill(id string) (*models.USTBill, error) {
	if m.cancelFn != nil {
		return m.cancelFn(id)
	}
	return &models.USTBill{Base: models.Base{ID: id}, Status: models.USTBillStatusCancelled}, nil
}

func (m *mockUSTBillService) UpdateMarketData() (*services.SweepResult, error) {
	if m.sweepFn != nil {
		return m.sweepFn()
	}
	return &services.SweepResult{}, nil
}

type mockHoldingService struct {
	buyFn           func(identity, ustbillID string, tokens int64, option models.YieldOption) (*models.Holding, error)
	userHoldingsFn  func(identity string) ([]models.Holding, error)
	getHoldingFn    func(id string) (*models.Holding, error)
	currentValueFn  func(id string) (int64, error)
	maturityValueFn func(id string) (int64, error)
	projectionFn    func(id string) (*services.YieldProjection, error)
}

func (m *mockHoldingService) BuyUSTBillTokens(identity, ustbillID string, tokens int64, option models.YieldOption) (*models.Holding, error) {
	if m.buyFn != nil {
		return m.buyFn(identity, ustbillID, tokens, option)
	}
	return &models.Holding{Base: models.Base{ID: "holding-1"}, UserIdentity: identity, USTBillID: ustbillID, TokensOwned: tokens}, nil
}

func (m *mockHoldingService) GetUserHoldings(identity string) ([]models.Holding, error) {
	if m.userHoldingsFn != nil {
		return m.userHoldingsFn(identity)
	}
	return []models.Holding{}, nil
}

func (m *mockHoldingService) GetHolding(id string) (*models.Holding, error) {
	if m.getHoldingFn != nil {
		return m.getHoldingFn(id)
	}
	return &models.Holding{Base: models.Base{ID: id}, UserIdentity: testIdentity}, nil
}

func (m *mockHoldingService) CalculateCurrentValue(id string) (int64, error) {
	if m.currentValueFn != nil {
		return m.currentValueFn(id)
	}
	return 0, nil
}

func (m *mockHoldingService) CalculateMaturityYield(id string) (int64, error) {
	if m.maturityValueFn != nil {
		return m.maturityValueFn(id)
	}
	return 0, nil
}

func (m *mockHoldingService) GetYieldProjection(id string) (*services.YieldProjection, error) {
	if m.projectionFn != nil {
		return m.projectionFn(id)
	}
	return &services.YieldProjection{HoldingID: id}, nil
}

type mockConfigService struct {
	cfg      models.PlatformConfig
	updateFn func(cfg models.PlatformConfig) (*models.PlatformConfig, error)
}

func (m *mockConfigService) GetPlatformConfig() (*models.PlatformConfig, error) {
	cfg := m.cfg
	return &cfg, nil
}

func (m *mockConfigService) UpdatePlatformConfig(cfg models.PlatformConfig) (*models.PlatformConfig, error) {
	if m.updateFn != nil {
		return m.updateFn(cfg)
	}
	m.cfg = cfg
	return &cfg, nil
}

func (m *mockConfigService) EnsureDefaults(models.PlatformConfig) error { return nil }

type mockMetricsService struct {
	metrics models.TradingMetrics
	stats   services.StorageStats
}

func (m *mockMetricsService) GetTradingMetrics() (*models.TradingMetrics, error) {
	metrics := m.metrics
	return &metrics, nil
}

func (m *mockMetricsService) GetStorageStats() (*services.StorageStats, error) {
	stats := m.stats
	return &stats, nil
}

type mockRateService struct {
	rates   []models.TreasuryRate
	fetchFn func(ctx context.Context) ([]models.TreasuryRate, error)
}

func (m *mockRateService) FetchTreasuryRates(ctx context.Context) ([]models.TreasuryRate, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx)
	}
	return m.rates, nil
}

func (m *mockRateService) GetTreasuryRates(context.Context) ([]models.TreasuryRate, error) {
	return m.rates, nil
}

type mockBrokerService struct {
	addFn   func(actor string, input services.BrokerPurchaseInput) (*models.BrokerPurchase, error)
	records []models.BrokerPurchase
}

func (m *mockBrokerService) AddBrokerPurchaseRecord(actor string, input services.BrokerPurchaseInput) (*models.BrokerPurchase, error) {
	if m.addFn != nil {
		return m.addFn(actor, input)
	}
	return &models.BrokerPurchase{Base: models.Base{ID: "bp-1"}, BrokerTxnID: input.BrokerTxnID, RecordedBy: actor}, nil
}

func (m *mockBrokerService) GetAllVerifiedBrokerPurchases() ([]models.BrokerPurchase, error) {
	return m.records, nil
}

type mockAdminService struct {
	admins  []string
	grantFn func(actor, identity string) (*models.AdminIdentity, error)
}

func (m *mockAdminService) IsAdmin(identity string) (bool, error) {
	for _, a := range m.admins {
		if a == identity {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAdminService) GrantAdmin(actor, identity string) (*models.AdminIdentity, error) {
	if m.grantFn != nil {
		return m.grantFn(actor, identity)
	}
	return &models.AdminIdentity{Identity: identity, GrantedBy: actor}, nil
}

func (m *mockAdminService) ListAdmins() ([]string, error) { return m.admins, nil }

type auditEntry struct {
	actor, action, resourceType, resourceID string
}

type mockAuditService struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (m *mockAuditService) Log(actor, action, resourceType, resourceID, _ string, _ map[string]interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, auditEntry{actor, action, resourceType, resourceID})
}

func (m *mockAuditService) actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.entries))
	for i, e := range m.entries {
		out[i] = e.action
	}
	return out
}

// --- test helpers ---

const testIdentity = "alice"

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func injectIdentity(identity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.IdentityKey, identity)
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}
