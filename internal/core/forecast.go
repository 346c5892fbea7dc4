package core

import "time"

const (
	// SourceInvoice marks an estimate derived from the latest recurring invoice.
	SourceInvoice RevenueSource = "invoice"
	// SourceContract marks an estimate that fell back to the contract snapshot.
	SourceContract RevenueSource = "contract"
)

// RevenueSource records where a client's MRR estimate came from, so
// consumers can visually distinguish invoice-backed figures from
// contract-backed fallbacks.
type RevenueSource string

// ClientForecastRow is the per-client slice of the forecast. It is derived,
// ephemeral and recomputed on every run; JSON tags match the dashboard's
// wire names.
type ClientForecastRow struct {
	ClientID          string           `json:"clientId"`
	ClientName        string           `json:"clientName"`
	ContractName      string           `json:"contractName"`
	Billing           BillingFrequency `json:"billingFrequency"`
	LastInvoiceDate   *time.Time       `json:"lastInvoiceDate"`
	LastInvoiceAmount float64          `json:"lastInvoiceAmount"`
	Source            RevenueSource    `json:"source"`
	MRREstimate       float64          `json:"mrrEstimado"`
	PercentOfTotal    float64          `json:"percentOfTotal"`
	ForecastFY        float64          `json:"forecastFY"`
}

// ForecastData is the aggregate forecast consumed read-only by presentation.
type ForecastData struct {
	ForecastM1  float64 `json:"forecastM1"`
	ForecastM3  float64 `json:"forecastM3"`
	ForecastM6  float64 `json:"forecastM6"`
	ForecastM12 float64 `json:"forecastM12"`

	FiscalYear          int     `json:"fiscalYear"`
	MonthsRemainingFY   int     `json:"mesesRestantesFY"`
	InvoicedYTD         float64 `json:"facturadoYTD"`
	ForecastRemainingFY float64 `json:"forecastRestanteFY"`
	TotalEstimateFY     float64 `json:"totalEstimadoFY"`

	TotalMRR float64             `json:"totalMRR"`
	Clients  []ClientForecastRow `json:"clients"`
}
