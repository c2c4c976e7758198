package crm

import (
	"context"
	"errors"

	auditapp "github.com/crm/backend/internal/application/audit"
	orderingapp "github.com/crm/backend/internal/application/ordering"
	"github.com/crm/backend/internal/domain/audit"
	"github.com/crm/backend/internal/domain/crm"
	"github.com/crm/backend/internal/domain/ordering"
	"github.com/crm/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuditEntityLead is the entity type audit entries use for leads
const AuditEntityLead = "Lead"

// ConversionService turns a validated lead into an order. The whole mutation
// runs in one serializable transaction: customer resolution, EM number
// allocation, order creation and the lead's flip to WON commit together or
// not at all.
type ConversionService struct {
	leadRepo       crm.LeadRepository
	orderRepo      ordering.OrderRepository
	scope          TransactionScope
	auditor        *auditapp.AuditService
	defaultCountry string
	logger         *zap.Logger
}

// NewConversionService creates a new conversion service. defaultCountry is
// used when neither the intake form nor the lead carries a country.
func NewConversionService(
	leadRepo crm.LeadRepository,
	orderRepo ordering.OrderRepository,
	scope TransactionScope,
	auditor *auditapp.AuditService,
	defaultCountry string,
	logger *zap.Logger,
) *ConversionService {
	if defaultCountry == "" {
		defaultCountry = "UAE"
	}
	return &ConversionService{
		leadRepo:       leadRepo,
		orderRepo:      orderRepo,
		scope:          scope,
		auditor:        auditor,
		defaultCountry: defaultCountry,
		logger:         logger,
	}
}

// ValidateLead runs the conversion rules against a lead without converting
// it. The rule set is the exact one ConvertLead enforces.
func (s *ConversionService) ValidateLead(ctx context.Context, leadID uuid.UUID) (*crm.ConversionCheck, error) {
	lead, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	check := crm.ValidateConversion(lead)
	return &check, nil
}

// ConvertLead converts a lead into an order.
//
// Validation happens on a snapshot before the transaction opens, so an
// unconvertible lead never consumes an EM number. Inside the transaction the
// lead is re-read and re-checked: if another request converted it in the
// meantime the check fails and the allocation rolls back with the rest.
func (s *ConversionService) ConvertLead(ctx context.Context, leadID uuid.UUID, req ConvertLeadRequest, actorID *uuid.UUID) (*orderingapp.OrderResponse, error) {
	snapshot, err := s.leadRepo.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	check := crm.ValidateConversion(snapshot)
	if !check.CanConvert {
		return nil, shared.NewDomainErrorWithDetails("VALIDATION_FAILED", "Lead cannot be converted", check.Errors)
	}
	statusBefore := snapshot.Status

	var orderID uuid.UUID
	var emNumber string
	txErr := s.scope.ExecuteSerializable(ctx, func(repos TransactionalRepositories) error {
		lead, err := repos.LeadRepo().FindByID(ctx, leadID)
		if err != nil {
			return err
		}
		if check := crm.ValidateConversion(lead); !check.CanConvert {
			return shared.NewDomainErrorWithDetails("VALIDATION_FAILED", "Lead cannot be converted", check.Errors)
		}

		customer, err := s.resolveCustomer(ctx, repos, lead)
		if err != nil {
			return err
		}

		country := lead.ShippingCountry()
		if country == "" {
			country = s.defaultCountry
		}

		emNumber, err = repos.SeriesRepo().AllocateNumber(ctx, country)
		if err != nil {
			return err
		}

		order, err := s.materializeOrder(lead, customer, emNumber, country, req)
		if err != nil {
			return err
		}
		if err := repos.OrderRepo().Save(ctx, order); err != nil {
			return err
		}
		orderID = order.ID

		if err := lead.MarkWon(customer.ID); err != nil {
			return err
		}
		return repos.LeadRepo().SaveWithLock(ctx, lead)
	})
	if txErr != nil {
		return nil, txErr
	}

	// The conversion is committed; audit entries are best-effort from here.
	s.auditor.Record(ctx, AuditEntityLead, leadID, audit.ActionConvertToOrder, actorID,
		map[string]interface{}{"status": string(statusBefore)},
		map[string]interface{}{"status": string(crm.LeadStatusWon), "order_id": orderID, "em_number": emNumber},
	)
	s.auditor.Record(ctx, orderingapp.AuditEntityOrder, orderID, audit.ActionCreate, actorID,
		nil,
		map[string]interface{}{"em_number": emNumber, "source_lead_id": leadID},
	)

	s.logger.Info("Lead converted to order",
		zap.String("lead_id", leadID.String()),
		zap.String("order_id", orderID.String()),
		zap.String("em_number", emNumber),
	)

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	resp := orderingapp.ToOrderResponse(order)
	return &resp, nil
}

// resolveCustomer finds or creates the customer the order belongs to.
// Precedence: the lead's existing link, then a phone-key match, then a fresh
// record built from the intake form.
func (s *ConversionService) resolveCustomer(ctx context.Context, repos TransactionalRepositories, lead *crm.Lead) (*crm.Customer, error) {
	if lead.CustomerID != nil {
		return repos.CustomerRepo().FindByID(ctx, *lead.CustomerID)
	}

	existing, err := repos.CustomerRepo().FindByPhoneKey(ctx, lead.PhoneKey)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	customer, err := crm.CustomerFromIntake(lead.PhoneKey, lead.IntakeForm)
	if err != nil {
		return nil, err
	}
	if err := repos.CustomerRepo().Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// materializeOrder builds the order aggregate from the lead snapshot.
// Product lines are copied verbatim; the price estimates are frozen into the
// order and never recomputed from the lead afterwards.
func (s *ConversionService) materializeOrder(lead *crm.Lead, customer *crm.Customer, emNumber, country string, req ConvertLeadRequest) (*ordering.Order, error) {
	order, err := ordering.NewOrder(emNumber, country, customer.ID)
	if err != nil {
		return nil, err
	}

	leadID := lead.ID
	order.SourceLeadID = &leadID
	order.SalesStaffID = lead.AssignedAgentID

	order.PaymentMethod = lead.PaymentMethod
	if req.PaymentMethod != "" {
		order.PaymentMethod = req.PaymentMethod
	}
	order.Notes = lead.Notes
	if req.Notes != "" {
		order.Notes = req.Notes
	}

	for i := range lead.Products {
		p := &lead.Products[i]
		item, err := ordering.NewOrderItem(order.ID, p.ProductCode, p.Quantity, p.PriceEstimate)
		if err != nil {
			return nil, err
		}
		order.AddItem(item)
	}

	order.SetValue(lead.EstimatedValue())
	return order, nil
}
