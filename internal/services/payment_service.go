// internal/services/payment_service.go
package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/snap"

	"github.com/nickopusan/caufi-backend/internal/config"
	"github.com/nickopusan/caufi-backend/internal/models"
)

// PaymentBridge turns an order snapshot into a provider transaction and
// returns the redirect token the client completes payment with.
type PaymentBridge interface {
	CreateTransaction(order *models.Order) (*PaymentResult, error)
}

type PaymentResult struct {
	OrderRef    string `json:"order_ref"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
	ExpiresAt   string `json:"expires_at"`
}

// PaymentService is the Midtrans Snap implementation of PaymentBridge.
type PaymentService struct {
	client snap.Client
	cfg    *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	env := midtrans.Sandbox
	if cfg.Midtrans.IsProduction {
		env = midtrans.Production
	}

	s := &PaymentService{cfg: cfg}
	s.client.New(cfg.Midtrans.ServerKey, env)
	return s
}

func (s *PaymentService) CreateTransaction(order *models.Order) (*PaymentResult, error) {
	// Provider-side reference: unique per payment attempt so a retried
	// pending order gets a fresh Snap transaction.
	orderRef := fmt.Sprintf("CAUFI-%d-%d", order.ID, time.Now().Unix())

	startTime := time.Now().In(jakartaTZ).Format("2006-01-02 15:04:05 -0700")
	req := &snap.Request{
		TransactionDetails: midtrans.TransactionDetails{
			OrderID:  orderRef,
			GrossAmt: int64(order.TotalAmount),
		},
		Items:           s.buildItemDetails(order),
		CustomerDetail:  s.buildCustomerDetails(order),
		EnabledPayments: s.enabledPayments(),
		CreditCard:      &snap.CreditCardDetails{Secure: true},
		Callbacks: &snap.Callbacks{
			Finish: fmt.Sprintf("%s/order/success?order_id=%d", s.cfg.Frontend.BaseURL, order.ID),
		},
		Expiry: &snap.ExpiryDetails{
			StartTime: startTime,
			Unit:      "day",
			Duration:  int64(s.cfg.Midtrans.ExpiryDays),
		},
	}

	resp, snapErr := s.client.CreateTransaction(req)
	if snapErr != nil {
		return nil, fmt.Errorf("snap transaction failed: %w", snapErr)
	}

	return &PaymentResult{
		OrderRef:    orderRef,
		Token:       resp.Token,
		RedirectURL: resp.RedirectURL,
		ExpiresAt:   startTime,
	}, nil
}

func (s *PaymentService) buildItemDetails(order *models.Order) *[]midtrans.ItemDetails {
	items := make([]midtrans.ItemDetails, 0, len(order.Items))
	for _, item := range order.Items {
		name := item.ProductName
		if name == "" {
			name = "Product"
		}
		// Truncate by rune so a multibyte name is never cut mid-character.
		if runes := []rune(name); len(runes) > 50 {
			name = string(runes[:50])
		}
		items = append(items, midtrans.ItemDetails{
			ID:           fmt.Sprintf("ITEM-%d-%d", item.VariantID, order.ID),
			Price:        int64(item.PriceAtPurchase),
			Qty:          int32(item.Quantity),
			Name:         name,
			Brand:        "Caufi",
			Category:     "Fashion",
			MerchantName: s.cfg.Midtrans.MerchantName,
		})
	}
	return &items
}

func (s *PaymentService) buildCustomerDetails(order *models.Order) *midtrans.CustomerDetails {
	firstName, lastName := splitName(order.User.Name)

	phone := order.User.PhoneNumber
	if phone == "" {
		phone = order.Address.Phone
	}
	phone = strings.NewReplacer("-", "", " ", "").Replace(phone)

	addressLine := order.Address.AddressLine1
	if order.Address.AddressLine2 != "" {
		addressLine += ", " + order.Address.AddressLine2
	}
	address := &midtrans.CustomerAddress{
		FName:       firstName,
		LName:       lastName,
		Address:     addressLine,
		City:        order.Address.City,
		Postcode:    order.Address.PostalCode,
		Phone:       phone,
		CountryCode: "IDN",
	}

	return &midtrans.CustomerDetails{
		FName:    firstName,
		LName:    lastName,
		Email:    order.User.Email,
		Phone:    phone,
		BillAddr: address,
		ShipAddr: address,
	}
}

func (s *PaymentService) enabledPayments() []snap.SnapPaymentType {
	payments := make([]snap.SnapPaymentType, 0, len(s.cfg.Midtrans.EnabledPayments))
	for _, p := range s.cfg.Midtrans.EnabledPayments {
		payments = append(payments, snap.SnapPaymentType(p))
	}
	return payments
}

func splitName(full string) (string, string) {
	parts := strings.SplitN(strings.TrimSpace(full), " ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

var jakartaTZ = time.FixedZone("WIB", 7*60*60)
