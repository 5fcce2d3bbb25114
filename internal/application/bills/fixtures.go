package bills

import "github.com/garyjia/billed/internal/domain/entity"

const fixtureStorage = "https://test.storage.tld/v0/b/billable-677b6.appspot.com/o/"

// Fixtures returns the reference bill set: one pending, one accepted and two
// refused bills, the second of which has no proof URL.
func Fixtures() []entity.Bill {
	return []entity.Bill{
		{
			ID:         "47qAXb6fIm2zOKkLzMro",
			Email:      "a@a",
			Type:       entity.TypeHotel,
			Name:       "encore",
			Amount:     400,
			Date:       "2004-04-04",
			VAT:        "80",
			Pct:        20,
			Commentary: "séminaire billed",
			FileURL:    entity.StringPtr(fixtureStorage + "justificatifs%2Fpreview-facture-free-201801-pdf-1.jpg?alt=media&token=c1640e12-a24b-4b11-ae52-529112e9602a"),
			FileName:   entity.StringPtr("preview-facture-free-201801-pdf-1.jpg"),
			Status:     entity.StatusPending,
		},
		{
			ID:         "BeKy5Mo4jkmdfPGYpTxZ",
			Email:      "a@a",
			Type:       entity.TypeTransports,
			Name:       "test1",
			Amount:     100,
			Date:       "2001-01-01",
			Pct:        20,
			Commentary: "plop",
			FileURL:    nil,
			FileName:   entity.StringPtr("1592770761.jpeg"),
			Status:     entity.StatusRefused,
		},
		{
			ID:       "UIUZtnPQvnbFnB0ozvJh",
			Email:    "a@a",
			Type:     entity.TypeServicesEnLigne,
			Name:     "test3",
			Amount:   300,
			Date:     "2003-03-03",
			VAT:      "60",
			Pct:      20,
			FileURL:  entity.StringPtr(fixtureStorage + "justificatifs%2Ffacture-client-php-exemple-1.jpg?alt=media&token=4df6ed2c-12c8-42a2-b013-346c1346f732"),
			FileName: entity.StringPtr("facture-client-php-exemple-1.jpg"),
			Status:   entity.StatusAccepted,
		},
		{
			ID:         "qcCK3SzECmaZAGRrHjaC",
			Email:      "a@a",
			Type:       entity.TypeRestaurants,
			Name:       "test2",
			Amount:     200,
			Date:       "2002-02-02",
			VAT:        "40",
			Pct:        20,
			Commentary: "test2",
			FileURL:    entity.StringPtr(fixtureStorage + "justificatifs%2Fpreview-facture-free-201801-pdf-1.jpg?alt=media&token=4df6ed2c-12c8-42a2-b013-346c1346f732"),
			FileName:   entity.StringPtr("preview-facture-free-201801-pdf-1.jpg"),
			Status:     entity.StatusRefused,
		},
	}
}
