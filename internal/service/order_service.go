package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const whatsAppBaseURL = "https://wa.me/"

// orderService implements OrderService.
type orderService struct {
	cart   CartSource
	logger zerolog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(cart CartSource, logger zerolog.Logger) OrderService {
	return &orderService{
		cart:   cart,
		logger: logger.With().Str("service", "order").Logger(),
	}
}

// Preview builds the order and its message without clearing the cart.
func (s *orderService) Preview(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error) {
	return s.build(req)
}

// Checkout builds the order, hands it off as a deep link and clears the cart.
// No reply is awaited; the order is considered sent once the link exists.
func (s *orderService) Checkout(ctx context.Context, req model.CheckoutRequest) (*model.OrderReceipt, error) {
	receipt, err := s.build(req)
	if err != nil {
		return nil, err
	}

	s.cart.ClearCart()

	s.logger.Info().
		Int("item_count", len(receipt.Order.Items)).
		Str("total", receipt.Order.Total.StringFixed(2)).
		Msg("order handed off")

	return receipt, nil
}

func (s *orderService) build(req model.CheckoutRequest) (*model.OrderReceipt, error) {
	cfg := s.cart.StoreConfig()
	if cfg == nil {
		s.logger.Warn().Msg("checkout without store configuration")
		return nil, model.ErrStoreNotConfigured
	}

	items := s.cart.Cart()
	if len(items) == 0 {
		return nil, model.ErrEmptyCart
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	order := buildOrder(items, cfg.DeliveryFee, req)
	message := FormatOrderMessage(order)

	return &model.OrderReceipt{
		Order:   order,
		Message: message,
		Link:    WhatsAppLink(cfg.WhatsAppNumber, message),
	}, nil
}

func buildOrder(items []model.CartItem, deliveryFee decimal.Decimal, req model.CheckoutRequest) model.Order {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	return model.Order{
		Items:           items,
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		DeliveryAddress: strings.TrimSpace(req.DeliveryAddress),
		Notes:           strings.TrimSpace(req.Notes),
		Subtotal:        subtotal,
		DeliveryFee:     deliveryFee,
		Total:           subtotal.Add(deliveryFee),
	}
}

// FormatOrderMessage renders the plain-text order summary sent to the store.
func FormatOrderMessage(order model.Order) string {
	var b strings.Builder

	b.WriteString("🍔 *NOVO PEDIDO*\n\n")
	fmt.Fprintf(&b, "*Cliente:* %s\n", order.CustomerName)
	fmt.Fprintf(&b, "*Telefone:* %s\n", order.CustomerPhone)
	if order.DeliveryAddress != "" {
		fmt.Fprintf(&b, "*Endereço:* %s\n", order.DeliveryAddress)
	}

	b.WriteString("\n*Pedido:*\n")
	for _, item := range order.Items {
		fmt.Fprintf(&b, "%dx %s - %s", item.Quantity, item.Product.Name, model.FormatPrice(item.LineTotal()))
		if item.Notes != "" {
			fmt.Fprintf(&b, " (%s)", item.Notes)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "\n*Subtotal:* %s\n", model.FormatPrice(order.Subtotal))
	fmt.Fprintf(&b, "*Taxa de entrega:* %s\n", model.FormatPrice(order.DeliveryFee))
	fmt.Fprintf(&b, "*Total:* %s", model.FormatPrice(order.Total))

	if order.Notes != "" {
		fmt.Fprintf(&b, "\n\n*Observações:* %s", order.Notes)
	}

	return b.String()
}

// WhatsAppLink returns the wa.me deep link that opens a chat with number
// prefilled with text.
func WhatsAppLink(number, text string) string {
	return whatsAppBaseURL + number + "?text=" + encodeURIComponent(text)
}

// encodeURIComponent percent-encodes s leaving only A-Z a-z 0-9 - _ . ! ~ * ' ( ) as is.
func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	return strings.NewReplacer(
		"+", "%20",
		"%21", "!",
		"%27", "'",
		"%28", "(",
		"%29", ")",
		"%2A", "*",
	).Replace(escaped)
}
