package workflow

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"storefront/internal/apiclient"
	"storefront/internal/metrics"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/validation"

	log "github.com/sirupsen/logrus"
)

// OrderAPI is the part of the backend order resource the workflow needs.
type OrderAPI interface {
	Get(token string, id int) (*models.Order, error)
	Update(token string, id int, body interface{}) (*models.Order, error)
}

// EventPublisher receives order workflow events. A nil publisher is allowed.
type EventPublisher interface {
	PublishOrderEvent(event map[string]interface{}) error
}

// ReviewDisplay is the read-only review block of a delivered order.
type ReviewDisplay struct {
	Reviewed  bool   `json:"reviewed"`
	Rating    int    `json:"rating,omitempty"`
	Stars     string `json:"stars,omitempty"`
	Comment   string `json:"comment,omitempty"`
	EmptyText string `json:"emptyText,omitempty"`
}

// View is an order together with what the current user may do with it.
type View struct {
	Order   *models.Order  `json:"order"`
	Actions []Action       `json:"actions"`
	Review  *ReviewDisplay `json:"review,omitempty"`
}

// Result is returned by a successful action: the re-fetched order view and,
// for a verified payment, the customer notification.
type Result struct {
	View         *View         `json:"view"`
	Notification *Notification `json:"notification,omitempty"`
}

const noReviewText = "The customer has not reviewed this order yet."

type flightKey struct {
	orderID int
	action  Action
}

// Controller runs order actions against the backend.
type Controller struct {
	orders       OrderAPI
	publisher    EventPublisher
	deepLinkBase string

	mu       sync.Mutex
	inFlight map[flightKey]struct{}
}

// NewController creates a new Controller.
func NewController(orders OrderAPI, publisher EventPublisher, deepLinkBase string) *Controller {
	return &Controller{
		orders:       orders,
		publisher:    publisher,
		deepLinkBase: deepLinkBase,
		inFlight:     make(map[flightKey]struct{}),
	}
}

func (c *Controller) acquire(orderID int, action Action) (func(), error) {
	key := flightKey{orderID: orderID, action: action}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return nil, fmt.Errorf("%w: %s on order %d", ErrInFlight, action, orderID)
	}
	c.inFlight[key] = struct{}{}
	return func() {
		c.mu.Lock()
		delete(c.inFlight, key)
		c.mu.Unlock()
	}, nil
}

// View loads an order and the actions enabled for the session's role.
func (c *Controller) View(s *session.Session, id int) (*View, error) {
	order, err := c.orders.Get(s.AccessToken, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	return c.view(s, order), nil
}

func (c *Controller) view(s *session.Session, order *models.Order) *View {
	v := &View{Order: order, Actions: Actions(order.Status, RoleOf(s))}
	if order.Status == models.StatusDelivered {
		v.Review = reviewDisplay(order.Review)
	}
	return v
}

func reviewDisplay(r models.Review) *ReviewDisplay {
	if !r.IsReviewed {
		return &ReviewDisplay{EmptyText: noReviewText}
	}
	rating := r.Rating
	if rating < 1 {
		rating = 1
	} else if rating > 5 {
		rating = 5
	}
	return &ReviewDisplay{
		Reviewed: true,
		Rating:   rating,
		Stars:    strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating),
		Comment:  r.Comment,
	}
}

// ConfirmPayment moves a pending order to paid with the shipping address and the payment evidence.
func (c *Controller) ConfirmPayment(s *session.Session, id int, address string, evidence *models.Upload) (*Result, error) {
	address = strings.TrimSpace(address)
	errs := &validation.Errors{}
	if address == "" {
		errs.Add("address", "Address is required")
	}
	if evidence == nil || len(evidence.Content) == 0 {
		errs.Add("evidence", "Evidence is required")
	}
	if err := errs.Err(); err != nil {
		return nil, c.fail(ActionConfirmPayment, id, err)
	}
	evidence, err := imageUpload(KindEvidence, evidence)
	if err != nil {
		return nil, c.fail(ActionConfirmPayment, id, err)
	}

	return c.run(s, id, ActionConfirmPayment, func(order *models.Order, next models.OrderStatus) error {
		form := apiclient.NewForm().
			Set("address", address).
			Set("status", string(next)).
			File(KindEvidence, evidence)
		_, err := c.orders.Update(s.AccessToken, id, form)
		return err
	})
}

// VerifyPayment moves a paid order to on delivery, re-submitting the stored
// address and evidence, and prepares the customer notification.
func (c *Controller) VerifyPayment(s *session.Session, id int) (*Result, error) {
	res, err := c.run(s, id, ActionVerifyPayment, func(order *models.Order, next models.OrderStatus) error {
		if strings.TrimSpace(order.Address) == "" {
			return &validation.Errors{Fields: map[string]string{"address": "Address is required"}}
		}
		evidence, err := rebuild(KindEvidence, order.ID, order.Evidence)
		if err != nil {
			return err
		}
		form := apiclient.NewForm().
			Set("address", order.Address).
			Set("status", string(next)).
			File(KindEvidence, evidence)
		_, err = c.orders.Update(s.AccessToken, id, form)
		return err
	})
	if err != nil {
		return nil, err
	}

	res.Notification = paymentVerifiedNotice(c.deepLinkBase, res.View.Order)
	c.publish(map[string]interface{}{
		"event":      "order.verified",
		"orderId":    id,
		"status":     string(res.View.Order.Status),
		"verifiedBy": s.UserEmail,
		"notice":     res.Notification.Text,
		"at":         time.Now().UTC().Format(time.RFC3339),
	})
	return res, nil
}

// SendReceipt attaches the shipment receipt to an order on delivery. The status is left unchanged.
func (c *Controller) SendReceipt(s *session.Session, id int, receipt *models.Upload) (*Result, error) {
	if receipt == nil || len(receipt.Content) == 0 {
		err := &validation.Errors{Fields: map[string]string{"receipt": "Receipt is required"}}
		return nil, c.fail(ActionSendReceipt, id, err)
	}
	receipt, err := imageUpload(KindReceipt, receipt)
	if err != nil {
		return nil, c.fail(ActionSendReceipt, id, err)
	}

	return c.run(s, id, ActionSendReceipt, func(order *models.Order, _ models.OrderStatus) error {
		_, err := c.orders.Update(s.AccessToken, id, apiclient.NewForm().File(KindReceipt, receipt))
		return err
	})
}

// Download returns the stored evidence or receipt of an order as a file.
func (c *Controller) Download(s *session.Session, id int, kind string) (*models.Upload, error) {
	order, err := c.orders.Get(s.AccessToken, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", id, err)
	}
	switch kind {
	case KindEvidence:
		return rebuild(kind, id, order.Evidence)
	case KindReceipt:
		return rebuild(kind, id, order.Receipt)
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrNoAttachment, kind)
	}
}

// run guards, permits, submits and re-fetches one action.
func (c *Controller) run(s *session.Session, id int, action Action, submit func(order *models.Order, next models.OrderStatus) error) (*Result, error) {
	release, err := c.acquire(id, action)
	if err != nil {
		return nil, c.fail(action, id, err)
	}
	defer release()

	order, err := c.orders.Get(s.AccessToken, id)
	if err != nil {
		return nil, c.fail(action, id, fmt.Errorf("failed to load order %d: %w", id, err))
	}
	next, err := Permit(order.Status, RoleOf(s), action)
	if err != nil {
		return nil, c.fail(action, id, err)
	}
	if err := submit(order, next); err != nil {
		return nil, c.fail(action, id, err)
	}

	fresh, err := c.orders.Get(s.AccessToken, id)
	if err != nil {
		return nil, c.fail(action, id, fmt.Errorf("order %d updated but could not be reloaded: %w", id, err))
	}
	metrics.OrderTransitions.WithLabelValues(string(action), "ok").Inc()
	log.WithFields(log.Fields{"order": id, "action": action, "status": fresh.Status}).Info("order action completed")
	return &Result{View: c.view(s, fresh)}, nil
}

func (c *Controller) fail(action Action, id int, err error) error {
	outcome := "failed"
	if _, ok := validation.As(err); ok {
		outcome = "invalid"
	}
	metrics.OrderTransitions.WithLabelValues(string(action), outcome).Inc()
	log.Printf("Error running %s on order %d: %v", action, id, err)
	return err
}

func (c *Controller) publish(event map[string]interface{}) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.PublishOrderEvent(event); err != nil {
		log.Printf("Error publishing order event: %v", err)
	}
}
