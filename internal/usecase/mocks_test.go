//go:build !integration

package usecase_test

import (
	"context"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog"

	"modena-payment-service/internal/domain"
	"modena-payment-service/internal/domain/model"
	"modena-payment-service/internal/domain/ports/adapter"
	"modena-payment-service/internal/domain/ports/repository"
	"modena-payment-service/internal/infra/i18n"
)

func newTestLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestTranslator(bucket string) *i18n.Translator {
	tr, err := i18n.NewTranslator(i18n.LocalesFS, bucket)
	if err != nil {
		panic(err)
	}
	return tr
}

// ---- Mock OrderRepository ----

// MockOrderRepo keeps orders in memory and reproduces the store's payment
// gates: MarkPaid succeeds only while the order still needs payment, and
// application metadata is write-once.
type MockOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]*model.Order
	Notes  map[int64][]string

	MarkPaidCalls int

	FindByIDFunc            func(ctx context.Context, id int64) (*model.Order, error)
	MarkPendingFunc         func(ctx context.Context, id int64, note string) error
	MarkPaidFunc            func(ctx context.Context, id int64, note string) (bool, error)
	SaveApplicationMetaFunc func(ctx context.Context, id int64, applicationID, methodLabel string) error
	AddOrderNoteFunc        func(ctx context.Context, id int64, note string) error
}

var _ repository.OrderRepository = (*MockOrderRepo)(nil)

func NewMockOrderRepo() *MockOrderRepo {
	return &MockOrderRepo{
		orders: make(map[int64]*model.Order),
		Notes:  make(map[int64][]string),
	}
}

func (m *MockOrderRepo) Seed(o *model.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
}

// Get returns the current in-memory state of an order.
func (m *MockOrderRepo) Get(id int64) *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	if o, ok := m.orders[id]; ok {
		cp := *o
		return &cp
	}
	return nil
}

func (m *MockOrderRepo) FindByID(ctx context.Context, id int64) (*model.Order, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *MockOrderRepo) MarkPending(ctx context.Context, id int64, note string) error {
	if m.MarkPendingFunc != nil {
		return m.MarkPendingFunc(ctx, id, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	o.Status = model.OrderStatusPending
	m.Notes[id] = append(m.Notes[id], note)
	return nil
}

func (m *MockOrderRepo) MarkPaid(ctx context.Context, id int64, note string) (bool, error) {
	m.mu.Lock()
	m.MarkPaidCalls++
	m.mu.Unlock()
	if m.MarkPaidFunc != nil {
		return m.MarkPaidFunc(ctx, id, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, domain.ErrOrderNotFound
	}
	if !o.NeedsPayment {
		return false, nil
	}
	o.NeedsPayment = false
	o.Status = model.OrderStatusProcessing
	m.Notes[id] = append(m.Notes[id], note)
	return true, nil
}

func (m *MockOrderRepo) SaveApplicationMeta(ctx context.Context, id int64, applicationID, methodLabel string) error {
	if m.SaveApplicationMetaFunc != nil {
		return m.SaveApplicationMetaFunc(ctx, id, applicationID, methodLabel)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if o.ApplicationID != "" && o.ApplicationID != applicationID {
		return domain.ErrMetadataConflict
	}
	o.ApplicationID = applicationID
	o.MethodLabel = methodLabel
	return nil
}

func (m *MockOrderRepo) AddOrderNote(ctx context.Context, id int64, note string) error {
	if m.AddOrderNoteFunc != nil {
		return m.AddOrderNoteFunc(ctx, id, note)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notes[id] = append(m.Notes[id], note)
	return nil
}

// ---- Mock CartRepository ----

type MockCartRepo struct {
	mu    sync.Mutex
	carts map[string][]repository.CartItem

	EmptyCalls int

	EmptyFunc func(ctx context.Context, session string) error
	AddFunc   func(ctx context.Context, session string, item repository.CartItem) error
}

var _ repository.CartRepository = (*MockCartRepo)(nil)

func NewMockCartRepo() *MockCartRepo {
	return &MockCartRepo{carts: make(map[string][]repository.CartItem)}
}

func (m *MockCartRepo) Empty(ctx context.Context, session string) error {
	m.mu.Lock()
	m.EmptyCalls++
	m.mu.Unlock()
	if m.EmptyFunc != nil {
		return m.EmptyFunc(ctx, session)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.carts, session)
	return nil
}

func (m *MockCartRepo) Add(ctx context.Context, session string, item repository.CartItem) error {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, session, item)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.carts[session] = append(m.carts[session], item)
	return nil
}

func (m *MockCartRepo) Items(ctx context.Context, session string) ([]repository.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]repository.CartItem(nil), m.carts[session]...), nil
}

// ---- Mock ProcessorClient ----

type MockProcessor struct {
	SubmitApplicationFunc func(ctx context.Context, endpoint model.Endpoint, req *model.ProcessorRequest) (*model.ApplicationResult, error)
	ApplicationStatusFunc func(ctx context.Context, applicationID string) (model.ApplicationStatus, error)
	ParseCallbackFunc     func(body []byte) (*model.ProcessorResponse, error)

	StatusCalls int
}

var _ adapter.ProcessorClient = (*MockProcessor)(nil)

func (m *MockProcessor) SubmitApplication(ctx context.Context, endpoint model.Endpoint, req *model.ProcessorRequest) (*model.ApplicationResult, error) {
	if m.SubmitApplicationFunc != nil {
		return m.SubmitApplicationFunc(ctx, endpoint, req)
	}
	return &model.ApplicationResult{ApplicationID: "APP-1", RedirectLocation: "https://processor.example/apply/APP-1"}, nil
}

func (m *MockProcessor) ApplicationStatus(ctx context.Context, applicationID string) (model.ApplicationStatus, error) {
	m.StatusCalls++
	if m.ApplicationStatusFunc != nil {
		return m.ApplicationStatusFunc(ctx, applicationID)
	}
	return model.ApplicationStatusSuccess, nil
}

func (m *MockProcessor) ParseCallback(body []byte) (*model.ProcessorResponse, error) {
	if m.ParseCallbackFunc != nil {
		return m.ParseCallbackFunc(body)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse callback body: %w", err)
	}
	return &model.ProcessorResponse{
		ApplicationID: values.Get("applicationId"),
		OrderID:       values.Get("orderId"),
	}, nil
}
