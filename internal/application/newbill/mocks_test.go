package newbill

import (
	"context"
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

type fakeFileInput struct {
	value   string
	cleared int
}

func (f *fakeFileInput) Value() string { return f.value }

func (f *fakeFileInput) Clear() {
	f.value = ""
	f.cleared++
}

type fakeMessage struct {
	text    string
	visible bool
}

func (f *fakeMessage) Show(text string) {
	f.text = text
	f.visible = true
}

func (f *fakeMessage) Hide() {
	f.visible = false
}

type recordingNavigator struct {
	mu     sync.Mutex
	routes []string
}

func (n *recordingNavigator) Navigate(route string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.routes = append(n.routes, route)
}

func (n *recordingNavigator) Routes() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string{}, n.routes...)
}

func fileNamed(name string) any {
	return mock.MatchedBy(func(p *entity.UploadPayload) bool {
		return p.File.Name == name
	})
}
