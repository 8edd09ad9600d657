package partner

import (
	"context"
	"time"

	"github.com/bizconsole/ledger/internal/domain/ledger"
	"github.com/bizconsole/ledger/internal/domain/partner"
	"github.com/bizconsole/ledger/internal/domain/shared"
	"github.com/bizconsole/ledger/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SupplierService provides application-level supplier operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository, logger *zap.Logger) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo, logger: logger}
}

// SupplierResponse represents a supplier in API responses
type SupplierResponse struct {
	ID             uuid.UUID `json:"id"`
	Code           string    `json:"code"`
	Name           string    `json:"name"`
	ContactName    string    `json:"contact_name,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Currency       string    `json:"currency"`
	SettlementType string    `json:"settlement_type"`
	SettlementDay  int       `json:"settlement_day,omitempty"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	Version        int       `json:"version"`
}

// CreateSupplierRequest registers a new supplier
type CreateSupplierRequest struct {
	Code           string `json:"code" binding:"required"`
	Name           string `json:"name" binding:"required"`
	ContactName    string `json:"contact_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email" binding:"omitempty,email"`
	Currency       string `json:"currency" binding:"required,ledger_currency"`
	SettlementType string `json:"settlement_type" binding:"required,settlement_type"`
	SettlementDay  int    `json:"settlement_day"`
	Notes          string `json:"notes"`
}

// UpdateSupplierRequest updates supplier contact details
type UpdateSupplierRequest struct {
	Name        string `json:"name" binding:"required"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Notes       string `json:"notes"`
}

// ChangeSettlementRequest changes the settlement terms for future bookings
type ChangeSettlementRequest struct {
	SettlementType string `json:"settlement_type" binding:"required,settlement_type"`
	SettlementDay  int    `json:"settlement_day"`
}

// SupplierListFilter defines filtering options for supplier list queries
type SupplierListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// CreateSupplier registers a new supplier
func (s *SupplierService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	if existing, err := s.supplierRepo.FindByCode(ctx, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "a supplier with this code already exists")
	}

	terms, err := ledger.NewSettlementTerms(ledger.SettlementType(req.SettlementType), req.SettlementDay)
	if err != nil {
		return nil, err
	}

	supplier, err := partner.NewSupplier(req.Code, req.Name, valueobject.Currency(req.Currency), terms)
	if err != nil {
		return nil, err
	}
	if req.ContactName != "" || req.Phone != "" || req.Email != "" || req.Notes != "" {
		if err := supplier.UpdateInfo(req.Name, req.ContactName, req.Phone, req.Email, req.Notes); err != nil {
			return nil, err
		}
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier created",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("code", supplier.Code),
	)

	return toSupplierResponse(supplier), nil
}

// GetSupplier returns one supplier by ID
func (s *SupplierService) GetSupplier(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// ListSuppliers lists suppliers with filtering
func (s *SupplierService) ListSuppliers(ctx context.Context, filter SupplierListFilter) (shared.Paginated[*SupplierResponse], error) {
	domainFilter := partner.SupplierFilter{Search: filter.Search}
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	domainFilter.Search = filter.Search
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if filter.Status != "" {
		status := partner.SupplierStatus(filter.Status)
		domainFilter.Status = &status
	}

	page, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return shared.Paginated[*SupplierResponse]{}, err
	}

	responses := make([]*SupplierResponse, len(page.Items))
	for i, supplier := range page.Items {
		responses[i] = toSupplierResponse(supplier)
	}
	return shared.NewPaginated(responses, page.Total, page.Page, page.PageSize), nil
}

// UpdateSupplier updates supplier contact details
func (s *SupplierService) UpdateSupplier(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.UpdateInfo(req.Name, req.ContactName, req.Phone, req.Email, req.Notes); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return toSupplierResponse(supplier), nil
}

// ChangeSettlement changes the settlement terms used for future bookings
func (s *SupplierService) ChangeSettlement(ctx context.Context, id uuid.UUID, req ChangeSettlementRequest) (*SupplierResponse, error) {
	terms, err := ledger.NewSettlementTerms(ledger.SettlementType(req.SettlementType), req.SettlementDay)
	if err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := supplier.ChangeSettlementTerms(terms); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}

	s.logger.Info("supplier settlement changed",
		zap.String("supplier_id", id.String()),
		zap.String("settlement_type", req.SettlementType),
		zap.Int("settlement_day", req.SettlementDay),
	)

	return toSupplierResponse(supplier), nil
}

// DeactivateSupplier marks a supplier inactive
func (s *SupplierService) DeactivateSupplier(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := supplier.Deactivate(); err != nil {
		return err
	}
	return s.supplierRepo.Save(ctx, supplier)
}

// ActivateSupplier marks a supplier active again
func (s *SupplierService) ActivateSupplier(ctx context.Context, id uuid.UUID) error {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := supplier.Activate(); err != nil {
		return err
	}
	return s.supplierRepo.Save(ctx, supplier)
}

func toSupplierResponse(s *partner.Supplier) *SupplierResponse {
	return &SupplierResponse{
		ID:             s.ID,
		Code:           s.Code,
		Name:           s.Name,
		ContactName:    s.ContactName,
		Phone:          s.Phone,
		Email:          s.Email,
		Currency:       s.Currency.String(),
		SettlementType: s.Settlement.Type.String(),
		SettlementDay:  s.Settlement.Day,
		Status:         string(s.Status),
		Notes:          s.Notes,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
		Version:        s.GetVersion(),
	}
}
