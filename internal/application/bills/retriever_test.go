package bills

import (
	"context"
	"errors"
	"testing"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRetriever_GetBills(t *testing.T) {
	store := &mockBillStore{}
	store.On("List", mock.Anything).Return(Fixtures(), nil).Once()
	r := NewRetriever(mockGateway{store: store}, zap.NewNop())

	views, err := r.GetBills(context.Background())

	require.NoError(t, err)
	require.Len(t, views, len(Fixtures()))
	for i, bill := range Fixtures() {
		assert.Equal(t, bill.ID, views[i].Bill.ID, "backend order is preserved")
	}

	assert.Equal(t, "4 Avr. 04", views[0].Date)
	assert.Equal(t, "En attente", views[0].Status)
	assert.Equal(t, "Refused", views[1].Status)
	assert.Equal(t, "Accepté", views[2].Status)

	accepted := 0
	for _, v := range views {
		if v.Status == entity.LabelAccepted {
			accepted++
		}
	}
	assert.Equal(t, 1, accepted)
	store.AssertExpectations(t)
}

func TestRetriever_GetBills_Idempotent(t *testing.T) {
	store := &mockBillStore{}
	store.On("List", mock.Anything).Return(Fixtures(), nil).Twice()
	r := NewRetriever(mockGateway{store: store}, zap.NewNop())

	first, err := r.GetBills(context.Background())
	require.NoError(t, err)
	second, err := r.GetBills(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRetriever_GetBills_NoGateway(t *testing.T) {
	r := NewRetriever(nil, zap.NewNop())

	views, err := r.GetBills(context.Background())

	assert.NoError(t, err)
	assert.Nil(t, views)
}

func TestRetriever_GetBills_EmptyCollection(t *testing.T) {
	store := &mockBillStore{}
	store.On("List", mock.Anything).Return([]entity.Bill{}, nil).Once()
	r := NewRetriever(mockGateway{store: store}, zap.NewNop())

	views, err := r.GetBills(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
}

func TestRetriever_GetBills_ListError(t *testing.T) {
	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run(msg, func(t *testing.T) {
			store := &mockBillStore{}
			store.On("List", mock.Anything).Return(nil, errors.New(msg)).Once()
			r := NewRetriever(mockGateway{store: store}, zap.NewNop())

			views, err := r.GetBills(context.Background())

			assert.Nil(t, views)
			var listErr *entity.ListError
			require.ErrorAs(t, err, &listErr)
			assert.EqualError(t, err, msg)
		})
	}
}

func TestRetriever_GetBills_CorruptedRecords(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	store := &mockBillStore{}
	store.On("List", mock.Anything).Return(Fixtures(), nil).Once()
	r := NewRetriever(mockGateway{store: store}, zap.New(core), WithFormatter(failingFormatter{}))

	views, err := r.GetBills(context.Background())

	require.NoError(t, err)
	require.Len(t, views, len(Fixtures()))
	assert.Equal(t, len(Fixtures()), logs.FilterMessage("Corrupted bill data, showing raw value").Len())
	for i, bill := range Fixtures() {
		assert.Equal(t, bill.Date, views[i].Date)
		assert.Equal(t, bill.Status.Label(), views[i].Status)
	}
}

func TestRetriever_GetBills_OnlyFailingFieldFallsBack(t *testing.T) {
	store := &mockBillStore{}
	store.On("List", mock.Anything).Return([]entity.Bill{
		{ID: "ok", Date: "2022-08-15", Status: entity.StatusAccepted},
		{ID: "bad", Date: "not a date", Status: entity.StatusPending},
		{ID: "odd", Date: "2021-01-09", Status: "archived"},
	}, nil).Once()
	r := NewRetriever(mockGateway{store: store}, zap.NewNop())

	views, err := r.GetBills(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "15 Aoû. 22", views[0].Date)
	assert.Equal(t, "not a date", views[1].Date)
	assert.Equal(t, "En attente", views[1].Status)
	assert.Equal(t, "Inconnu", views[2].Status)
}
