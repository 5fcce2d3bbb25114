package bills

import (
	"testing"

	"github.com/garyjia/billed/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func viewsOf(bills []entity.Bill) []BillView {
	views := make([]BillView, len(bills))
	for i, b := range bills {
		views[i] = BillView{Bill: b, Date: b.Date, Status: b.Status.Label()}
	}
	return views
}

func TestSortNewestFirst(t *testing.T) {
	views := viewsOf([]entity.Bill{
		{ID: "oct", Date: "2023-10-01"},
		{ID: "dec", Date: "2023-12-01"},
		{ID: "broken", Date: "n/a"},
		{ID: "nov-a", Date: "2023-11-01"},
		{ID: "nov-b", Date: "2023-11-01"},
	})

	sorted := SortNewestFirst(views)

	ids := make([]string, len(sorted))
	for i, v := range sorted {
		ids[i] = v.Bill.ID
	}
	assert.Equal(t, []string{"dec", "nov-a", "nov-b", "oct", "broken"}, ids)
	assert.Equal(t, "oct", views[0].Bill.ID, "input is left untouched")
}

func TestPresenter_RowsNewestFirst(t *testing.T) {
	p := NewPresenter(viewsOf(Fixtures()), PresenterHandles{}, zap.NewNop())

	rows := p.Rows()
	require.Len(t, rows, 4)
	assert.Equal(t, 4, p.Len())
	for i := 0; i < len(rows)-1; i++ {
		assert.GreaterOrEqual(t, rows[i].Bill.Date, rows[i+1].Bill.Date)
	}
}

func TestPresenter_NewBillButton(t *testing.T) {
	button := &fakeButton{}
	nav := &recordingNavigator{}
	NewPresenter(nil, PresenterHandles{NewBillButton: button, Navigator: nav}, zap.NewNop())

	button.Click()

	assert.Equal(t, []string{entity.RouteNewBill}, nav.routes)
}

func TestPresenter_WithoutHandles(t *testing.T) {
	assert.NotPanics(t, func() {
		p := NewPresenter(viewsOf(Fixtures()), PresenterHandles{}, zap.NewNop())
		assert.False(t, p.NewBill())
		_, err := p.OpenPreview(0)
		assert.NoError(t, err)
		p.Dismiss()
	})
}

func TestPresenter_OpenPreview(t *testing.T) {
	surface := &fakeSurface{}
	p := NewPresenter(viewsOf(Fixtures()), PresenterHandles{Preview: surface}, zap.NewNop())

	byID := map[string]int{}
	for i, row := range p.Rows() {
		byID[row.Bill.ID] = i
	}

	t.Run("valid proof", func(t *testing.T) {
		preview, err := p.OpenPreview(byID["UIUZtnPQvnbFnB0ozvJh"])

		require.NoError(t, err)
		assert.False(t, preview.Broken)
		assert.Equal(t, *Fixtures()[2].FileURL, preview.FileURL)
		assert.Equal(t, preview, p.Current())
	})

	t.Run("null proof opens broken and the list stays intact", func(t *testing.T) {
		preview, err := p.OpenPreview(byID["BeKy5Mo4jkmdfPGYpTxZ"])

		require.NoError(t, err)
		assert.True(t, preview.Broken)
		assert.Empty(t, preview.FileURL)
		assert.Equal(t, 4, p.Len())

		p.Dismiss()
		assert.Nil(t, p.Current())
	})

	t.Run("out of range", func(t *testing.T) {
		_, err := p.OpenPreview(4)
		assert.Error(t, err)
	})

	assert.Equal(t, []bool{false, true}, surface.broken)
	assert.Equal(t, 1, surface.closed)
}

func TestPresenter_DismissWithoutPreview(t *testing.T) {
	surface := &fakeSurface{}
	p := NewPresenter(nil, PresenterHandles{Preview: surface}, zap.NewNop())

	p.Dismiss()

	assert.Zero(t, surface.closed)
}

func TestValidProofURL(t *testing.T) {
	tests := []struct {
		name string
		url  *string
		want bool
	}{
		{"nil", nil, false},
		{"empty", entity.StringPtr(""), false},
		{"https jpg with query", entity.StringPtr("https://host/images/test.jpg?alt=media"), true},
		{"encoded path", Fixtures()[0].FileURL, true},
		{"relative file path", entity.StringPtr("/files/abc/test.png"), true},
		{"pdf", entity.StringPtr("https://host/doc.pdf"), false},
		{"no host", entity.StringPtr("https:///test.jpg"), false},
		{"bare name", entity.StringPtr("null"), false},
		{"other scheme", entity.StringPtr("ftp://host/test.jpg"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidProofURL(tt.url))
		})
	}
}
