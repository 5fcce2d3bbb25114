package newbill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/garyjia/billed/internal/application/session"
	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/garyjia/billed/internal/domain/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var filledForm = Form{
	Type:       "Transports",
	Name:       "Vol Paris Londres",
	Date:       "2022-02-15",
	Amount:     "348",
	VAT:        "70",
	Pct:        "20",
	Commentary: "séminaire billed",
}

// uploadProof runs a successful upload so the controller holds a complete attachment
func uploadProof(t *testing.T, c *Controller, store *mockBillStore) {
	t.Helper()
	store.On("Create", mock.Anything, fileNamed("test.jpg")).
		Return(&entity.UploadRef{Key: "47qAXb6fIm2zOKkLzMro", FileURL: "https://host/images/test.jpg"}, nil).Once()

	outcomes, err := c.ChangeFile(context.Background(), employeeSession(), entity.AttachmentFile{
		Name:    "test.jpg",
		Content: []byte("jpeg"),
	})
	require.NoError(t, err)
	require.NoError(t, (<-outcomes).Err)
}

func TestController_ChangeFile_RejectsInvalidExtension(t *testing.T) {
	store := &mockBillStore{}
	input := &fakeFileInput{value: "unvalid-test-file.txt"}
	msg := &fakeMessage{}
	c := NewController(mockGateway{store: store}, Handles{FileInput: input, ErrorMessage: msg}, zap.NewNop())

	outcomes, err := c.ChangeFile(context.Background(), employeeSession(), entity.AttachmentFile{Name: "unvalid-test-file.txt"})

	assert.Nil(t, outcomes)
	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "", input.Value())
	assert.Equal(t, entity.MsgInvalidExtension, msg.text)
	store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestController_ChangeFile_StoresFileName(t *testing.T) {
	store := &mockBillStore{}
	store.On("Create", mock.Anything, fileNamed("test-file.jpg")).
		Return(&entity.UploadRef{Key: "k1", FileURL: "https://host/images/test-file.jpg"}, nil).Once()
	c := NewController(mockGateway{store: store}, Handles{}, zap.NewNop())

	outcomes, err := c.ChangeFile(context.Background(), employeeSession(), entity.AttachmentFile{Name: "test-file.jpg"})
	require.NoError(t, err)
	<-outcomes

	assert.Equal(t, "test-file.jpg", c.Attachment().FileName)
}

func TestController_Submit_BlockedWithoutUpload(t *testing.T) {
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.NewNop())

	result := c.Submit(context.Background(), employeeSession(), filledForm)

	assert.Equal(t, workflow.StateBlocked, result.State)
	assert.Equal(t, []workflow.State{workflow.StateEditing, workflow.StateGating, workflow.StateBlocked}, result.Path)
	assert.ErrorIs(t, result.Reason, entity.ErrAttachmentMissing)
	assert.False(t, result.Navigated)
	assert.Nil(t, result.Persisted)
	assert.Nil(t, result.Bill)
	assert.Empty(t, nav.Routes())
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestController_Submit_BlockedWithoutSessionUser(t *testing.T) {
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.NewNop())
	uploadProof(t, c, store)

	result := c.Submit(context.Background(), session.NewMemoryStore(), filledForm)

	assert.Equal(t, workflow.StateBlocked, result.State)
	assert.ErrorIs(t, result.Reason, entity.ErrNoSessionUser)
	assert.Empty(t, nav.Routes())
	store.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestController_Submit_PersistsAndNavigates(t *testing.T) {
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.NewNop())
	uploadProof(t, c, store)

	var sent *entity.Bill
	store.On("Update", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*entity.Bill) }).
		Return(nil).Once()

	result := c.Submit(context.Background(), employeeSession(), filledForm)

	require.NoError(t, <-result.Persisted)
	assert.Equal(t, workflow.StateDone, result.State)
	assert.Equal(t, []workflow.State{workflow.StateEditing, workflow.StateGating, workflow.StateSubmitting, workflow.StateDone}, result.Path)
	assert.True(t, result.Navigated)
	assert.Equal(t, []string{entity.RouteBills}, nav.Routes())

	require.NotNil(t, sent)
	assert.Equal(t, &entity.Bill{
		ID:         "47qAXb6fIm2zOKkLzMro",
		Email:      "employee@test.tld",
		Type:       "Transports",
		Name:       "Vol Paris Londres",
		Amount:     348,
		Date:       "2022-02-15",
		VAT:        "70",
		Pct:        20,
		Commentary: "séminaire billed",
		FileURL:    entity.StringPtr("https://host/images/test.jpg"),
		FileName:   entity.StringPtr("test.jpg"),
		Status:     entity.StatusPending,
	}, sent)
	store.AssertExpectations(t)
}

func TestController_Submit_NavigatesEvenWhenUpdateFails(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.New(core))
	uploadProof(t, c, store)

	store.On("Update", mock.Anything, mock.Anything).Return(errors.New("Erreur 500")).Once()

	result := c.Submit(context.Background(), employeeSession(), filledForm)
	persistErr := <-result.Persisted

	assert.True(t, result.Navigated)
	assert.Equal(t, workflow.StateDone, result.State)
	assert.Equal(t, []string{entity.RouteBills}, nav.Routes())

	var submitErr *entity.SubmitError
	require.ErrorAs(t, persistErr, &submitErr)
	assert.EqualError(t, submitErr.Err, "Erreur 500")

	_, open := <-result.Persisted
	assert.False(t, open)
	assert.Equal(t, 1, logs.FilterMessage("Failed to update bill").Len())
}

func TestController_Submit_NavigatesBeforeUpdateSettles(t *testing.T) {
	release := make(chan time.Time)
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.NewNop())
	uploadProof(t, c, store)

	store.On("Update", mock.Anything, mock.Anything).WaitUntil(release).Return(nil).Once()

	result := c.Submit(context.Background(), employeeSession(), filledForm)

	assert.True(t, result.Navigated)
	assert.Equal(t, []string{entity.RouteBills}, nav.Routes())
	select {
	case <-result.Persisted:
		t.Fatal("update settled before it was released")
	default:
	}

	close(release)
	assert.NoError(t, <-result.Persisted)
}

func TestController_Submit_AfterPersistPolicy(t *testing.T) {
	store := &mockBillStore{}
	nav := &recordingNavigator{}
	c := NewController(mockGateway{store: store}, Handles{Navigator: nav}, zap.NewNop(),
		WithNavigationPolicy(NavigateAfterPersist))
	uploadProof(t, c, store)

	store.On("Update", mock.Anything, mock.Anything).Return(errors.New("Erreur 500")).Once()

	result := c.Submit(context.Background(), employeeSession(), filledForm)

	assert.Equal(t, NavigateAfterPersist, c.Policy())
	assert.False(t, result.Navigated)
	assert.Equal(t, workflow.StateFailed, result.State)
	assert.True(t, result.State.IsTerminal())
	assert.Equal(t, []workflow.State{workflow.StateEditing, workflow.StateGating, workflow.StateSubmitting, workflow.StateFailed}, result.Path)
	assert.Error(t, <-result.Persisted)
	assert.Empty(t, nav.Routes())
}

func TestController_Submit_WithoutNavigatorHandle(t *testing.T) {
	store := &mockBillStore{}
	c := NewController(mockGateway{store: store}, Handles{}, zap.NewNop())
	uploadProof(t, c, store)
	store.On("Update", mock.Anything, mock.Anything).Return(nil).Once()

	result := c.Submit(context.Background(), employeeSession(), filledForm)

	assert.NoError(t, <-result.Persisted)
	assert.Equal(t, workflow.StateDone, result.State)
	assert.False(t, result.Navigated)
}

func TestController_Submit_ReusesUploadBillID(t *testing.T) {
	store := &mockBillStore{}
	c := NewController(mockGateway{store: store}, Handles{}, zap.NewNop())
	uploadProof(t, c, store)
	store.On("Update", mock.Anything, mock.MatchedBy(func(b *entity.Bill) bool {
		return b.ID == "47qAXb6fIm2zOKkLzMro"
	})).Return(nil).Twice()

	first := c.Submit(context.Background(), employeeSession(), filledForm)
	second := c.Submit(context.Background(), employeeSession(), filledForm)

	assert.NoError(t, <-first.Persisted)
	assert.NoError(t, <-second.Persisted)
	assert.Equal(t, first.Bill.ID, second.Bill.ID)
	store.AssertNumberOfCalls(t, "Create", 1)
}

func TestParsePct(t *testing.T) {
	tests := []struct {
		raw  string
		want int
	}{
		{"20", 20},
		{"5.5", 5},
		{" 10 ", 10},
		{"", entity.DefaultPct},
		{"abc", entity.DefaultPct},
		{"0", entity.DefaultPct},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parsePct(tt.raw))
		})
	}
}

func TestController_ParseAmount(t *testing.T) {
	c := NewController(nil, Handles{}, zap.NewNop())

	assert.Equal(t, 111.0, c.parseAmount("111"))
	assert.Equal(t, 12.5, c.parseAmount("12,50"))
	assert.Equal(t, 0.0, c.parseAmount("douze"))
}
