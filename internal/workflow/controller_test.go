package workflow_test

import (
	"errors"
	"strings"
	"testing"

	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/validation"
	"storefront/internal/workflow"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

// MockOrderAPI is a mock implementation of workflow.OrderAPI
type MockOrderAPI struct {
	mock.Mock
}

func (m *MockOrderAPI) Get(token string, id int) (*models.Order, error) {
	args := m.Called(token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderAPI) Update(token string, id int, body interface{}) (*models.Order, error) {
	args := m.Called(token, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

// MockPublisher is a mock implementation of workflow.EventPublisher
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(event map[string]interface{}) error {
	return m.Called(event).Error(0)
}

var (
	customer = &session.Session{ID: "s-1", AccessToken: "tok-customer", UserName: "Budi", UserRoleName: "customer"}
	admin    = &session.Session{ID: "s-2", AccessToken: "tok-admin", UserName: "Siti", UserEmail: "siti@toko.id", UserRoleName: "admin"}
	anyForm  = mock.AnythingOfType("*apiclient.Form")
)

func order(status models.OrderStatus) *models.Order {
	return &models.Order{
		ID:          7,
		UserID:      3,
		User:        &models.User{ID: 3, Name: "Budi", Phone: "+62 812-3456"},
		Status:      status,
		Address:     "Jl. Merdeka 1",
		TotalAmount: decimal.NewFromInt(25000),
	}
}

func evidenceUpload() *models.Upload {
	return &models.Upload{Filename: "bukti.png", ContentType: "image/png", Content: pngBytes}
}

func TestConfirmPayment_ValidatesBeforeAnyCall(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	_, err := ctrl.ConfirmPayment(customer, 7, "   ", evidenceUpload())
	require.Error(t, err)
	ve, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Address is required", ve.Fields["address"])

	_, err = ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", nil)
	ve, ok = validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Evidence is required", ve.Fields["evidence"])

	_, err = ctrl.ConfirmPayment(customer, 7, "", &models.Upload{Filename: "empty.png"})
	ve, ok = validation.As(err)
	require.True(t, ok)
	assert.Len(t, ve.Fields, 2)

	_, err = ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", &models.Upload{Filename: "notes.txt", Content: []byte("not an image")})
	assert.ErrorIs(t, err, workflow.ErrMalformedUpload)

	orders.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_Success(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPending), nil).Once()
	orders.On("Update", "tok-customer", 7, anyForm).Return(order(models.StatusPaid), nil).Once()
	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPaid), nil).Once()

	res, err := ctrl.ConfirmPayment(customer, 7, " Jl. Merdeka 1 ", evidenceUpload())
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, res.View.Order.Status)
	assert.Empty(t, res.View.Actions)
	assert.Nil(t, res.Notification)
	orders.AssertExpectations(t)
}

func TestConfirmPayment_RejectedForWrongStatusOrRole(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPaid), nil).Once()
	_, err := ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", evidenceUpload())
	assert.ErrorIs(t, err, workflow.ErrTransitionNotAllowed)

	orders.On("Get", "tok-admin", 7).Return(order(models.StatusPending), nil).Once()
	_, err = ctrl.ConfirmPayment(admin, 7, "Jl. Merdeka 1", evidenceUpload())
	assert.ErrorIs(t, err, workflow.ErrTransitionNotAllowed)

	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmPayment_BackendFailureIsReturned(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPending), nil).Once()
	orders.On("Update", "tok-customer", 7, anyForm).Return(nil, errors.New("backend down")).Once()

	_, err := ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", evidenceUpload())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backend down")
	orders.AssertExpectations(t)
}

func TestConfirmPayment_InFlightGuard(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	entered := make(chan struct{})
	release := make(chan struct{})
	orders.On("Get", "tok-customer", 7).Run(func(mock.Arguments) {
		close(entered)
		<-release
	}).Return(order(models.StatusPending), nil).Once()
	orders.On("Update", "tok-customer", 7, anyForm).Return(order(models.StatusPaid), nil).Once()
	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPaid), nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", evidenceUpload())
		done <- err
	}()

	<-entered
	_, err := ctrl.ConfirmPayment(customer, 7, "Jl. Merdeka 1", evidenceUpload())
	assert.ErrorIs(t, err, workflow.ErrInFlight)

	close(release)
	require.NoError(t, <-done)
	orders.AssertExpectations(t)
}

func TestVerifyPayment(t *testing.T) {
	orders := new(MockOrderAPI)
	publisher := new(MockPublisher)
	ctrl := workflow.NewController(orders, publisher, "https://wa.me/")

	paid := order(models.StatusPaid)
	paid.Evidence = pngBytes
	orders.On("Get", "tok-admin", 7).Return(paid, nil).Once()
	orders.On("Update", "tok-admin", 7, anyForm).Return(order(models.StatusOnDelivery), nil).Once()
	orders.On("Get", "tok-admin", 7).Return(order(models.StatusOnDelivery), nil).Once()
	publisher.On("PublishOrderEvent", mock.MatchedBy(func(e map[string]interface{}) bool {
		return e["event"] == "order.verified" && e["orderId"] == 7 && e["verifiedBy"] == "siti@toko.id"
	})).Return(nil).Once()

	res, err := ctrl.VerifyPayment(admin, 7)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnDelivery, res.View.Order.Status)
	assert.Equal(t, []workflow.Action{workflow.ActionSendReceipt}, res.View.Actions)

	require.NotNil(t, res.Notification)
	assert.Equal(t, "628123456", res.Notification.Phone)
	assert.Contains(t, res.Notification.Text, "Budi")
	assert.Contains(t, res.Notification.Text, "#7")
	assert.Contains(t, res.Notification.Text, "25000")
	assert.True(t, strings.HasPrefix(res.Notification.Link, "https://wa.me/628123456?text=Hello+Budi"))

	orders.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestVerifyPayment_PublisherFailureDoesNotFailAction(t *testing.T) {
	orders := new(MockOrderAPI)
	publisher := new(MockPublisher)
	ctrl := workflow.NewController(orders, publisher, "")

	paid := order(models.StatusPaid)
	paid.Evidence = pngBytes
	orders.On("Get", "tok-admin", 7).Return(paid, nil).Once()
	orders.On("Update", "tok-admin", 7, anyForm).Return(order(models.StatusOnDelivery), nil).Once()
	orders.On("Get", "tok-admin", 7).Return(order(models.StatusOnDelivery), nil).Once()
	publisher.On("PublishOrderEvent", mock.Anything).Return(errors.New("broker unavailable")).Once()

	res, err := ctrl.VerifyPayment(admin, 7)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.Notification.Link, workflow.DefaultDeepLinkBase+"628123456?text="))
}

func TestVerifyPayment_RequiresStoredEvidence(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	orders.On("Get", "tok-admin", 7).Return(order(models.StatusPaid), nil).Once()
	_, err := ctrl.VerifyPayment(admin, 7)
	assert.ErrorIs(t, err, workflow.ErrNoAttachment)

	orders.On("Get", "tok-customer", 7).Return(order(models.StatusPaid), nil).Once()
	_, err = ctrl.VerifyPayment(customer, 7)
	assert.ErrorIs(t, err, workflow.ErrTransitionNotAllowed)

	orders.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestSendReceipt(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	_, err := ctrl.SendReceipt(admin, 7, nil)
	ve, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, "Receipt is required", ve.Fields["receipt"])
	orders.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)

	withReceipt := order(models.StatusOnDelivery)
	withReceipt.Receipt = pngBytes
	orders.On("Get", "tok-admin", 7).Return(order(models.StatusOnDelivery), nil).Once()
	orders.On("Update", "tok-admin", 7, anyForm).Return(withReceipt, nil).Once()
	orders.On("Get", "tok-admin", 7).Return(withReceipt, nil).Once()

	res, err := ctrl.SendReceipt(admin, 7, &models.Upload{Filename: "resi.png", Content: pngBytes})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOnDelivery, res.View.Order.Status)
	assert.True(t, res.View.Order.HasReceipt())
	orders.AssertExpectations(t)
}

func TestView_ReviewDisplay(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	reviewed := order(models.StatusDelivered)
	reviewed.Review = models.Review{Rating: 4, Comment: "Fast delivery", IsReviewed: true}
	orders.On("Get", "tok-admin", 7).Return(reviewed, nil).Once()

	v, err := ctrl.View(admin, 7)
	require.NoError(t, err)
	assert.Empty(t, v.Actions)
	require.NotNil(t, v.Review)
	assert.True(t, v.Review.Reviewed)
	assert.Equal(t, "★★★★☆", v.Review.Stars)
	assert.Equal(t, "Fast delivery", v.Review.Comment)

	orders.On("Get", "tok-customer", 8).Return(order(models.StatusDelivered), nil).Once()
	v, err = ctrl.View(customer, 8)
	require.NoError(t, err)
	require.NotNil(t, v.Review)
	assert.False(t, v.Review.Reviewed)
	assert.NotEmpty(t, v.Review.EmptyText)

	orders.On("Get", "tok-customer", 9).Return(order(models.StatusPending), nil).Once()
	v, err = ctrl.View(customer, 9)
	require.NoError(t, err)
	assert.Nil(t, v.Review)
	assert.Equal(t, []workflow.Action{workflow.ActionConfirmPayment}, v.Actions)
}

func TestDownload(t *testing.T) {
	orders := new(MockOrderAPI)
	ctrl := workflow.NewController(orders, nil, "")

	paid := order(models.StatusPaid)
	paid.Evidence = pngBytes
	orders.On("Get", "tok-admin", 7).Return(paid, nil)

	file, err := ctrl.Download(admin, 7, workflow.KindEvidence)
	require.NoError(t, err)
	assert.Equal(t, "image/png", file.ContentType)
	assert.Equal(t, "evidence-7.png", file.Filename)
	assert.Equal(t, pngBytes, file.Content)

	_, err = ctrl.Download(admin, 7, workflow.KindReceipt)
	assert.ErrorIs(t, err, workflow.ErrNoAttachment)

	_, err = ctrl.Download(admin, 7, "invoice")
	assert.ErrorIs(t, err, workflow.ErrNoAttachment)
}
