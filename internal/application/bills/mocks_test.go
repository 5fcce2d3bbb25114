package bills

import (
	"context"
	"errors"
	"sync"

	"github.com/garyjia/billed/internal/application/port"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/stretchr/testify/mock"
)

type mockBillStore struct {
	mock.Mock
}

func (m *mockBillStore) List(ctx context.Context) ([]entity.Bill, error) {
	args := m.Called(ctx)
	bills, _ := args.Get(0).([]entity.Bill)
	return bills, args.Error(1)
}

func (m *mockBillStore) Create(ctx context.Context, payload *entity.UploadPayload) (*entity.UploadRef, error) {
	args := m.Called(ctx, payload)
	ref, _ := args.Get(0).(*entity.UploadRef)
	return ref, args.Error(1)
}

func (m *mockBillStore) Update(ctx context.Context, bill *entity.Bill) error {
	return m.Called(ctx, bill).Error(0)
}

type mockGateway struct {
	store *mockBillStore
}

func (g mockGateway) Bills() port.BillStore {
	return g.store
}

type failingFormatter struct{}

func (failingFormatter) Date(string) (string, error) {
	return "", errors.New("Format Error")
}

func (failingFormatter) Status(status entity.Status) string {
	return status.Label()
}

type fakeButton struct {
	handler func()
}

func (b *fakeButton) OnClick(handler func()) {
	b.handler = handler
}

func (b *fakeButton) Click() {
	if b.handler != nil {
		b.handler()
	}
}

type fakeSurface struct {
	mu     sync.Mutex
	opened []string
	broken []bool
	closed int
}

func (s *fakeSurface) Open(fileURL string, broken bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.opened = append(s.opened, fileURL)
	s.broken = append(s.broken, broken)
}

func (s *fakeSurface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed++
}

type recordingNavigator struct {
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.routes = append(n.routes, route)
}
