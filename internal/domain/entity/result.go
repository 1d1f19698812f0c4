package entity

// Every tool result is a tagged union: Success plus a per-tool payload, or
// Success=false plus Error. Tools serialize these to JSON themselves; the
// chat UI and the orchestrator treat every outcome uniformly through the
// Success/Error pair and never see a raw exception from a tool.

// SQLField describes one column of a result set.
type SQLField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// SQLQueryResult is the sqlQuery tool payload. Results holds at most
// MaxSQLRows rows; when the query produced more, ResultsLimited is set and
// TotalRowCount carries the true count.
type SQLQueryResult struct {
	Success        bool                     `json:"success"`
	Query          string                   `json:"query"`
	Results        []map[string]interface{} `json:"results"`
	RowCount       int                      `json:"rowCount"`
	Fields         []SQLField               `json:"fields,omitempty"`
	ResultsLimited bool                     `json:"resultsLimited,omitempty"`
	TotalRowCount  int                      `json:"totalRowCount,omitempty"`
	Error          string                   `json:"error,omitempty"`
}

// MaxSQLRows bounds the rows returned to the model. Truncation happens after
// execution so TotalRowCount stays exact; the query text is never rewritten.
const MaxSQLRows = 20

type DeliveryItem struct {
	SKU         string `json:"sku,omitempty"`
	Description string `json:"description,omitempty"`
	Quantity    int    `json:"quantity,omitempty"`
}

type ProofOfDelivery struct {
	SignatureURL string   `json:"signatureUrl,omitempty"`
	Photos       []string `json:"photos,omitempty"`
}

type StatusEvent struct {
	Status string `json:"status"`
	At     string `json:"at,omitempty"`
}

// DeliveryResult is the trackDelivery tool payload, normalized from the
// tracking provider's job object.
type DeliveryResult struct {
	Success         bool             `json:"success"`
	DONumber        string           `json:"do_number,omitempty"`
	Status          string           `json:"status,omitempty"`
	TrackingNumber  string           `json:"tracking_number,omitempty"`
	ETA             string           `json:"eta,omitempty"`
	Recipient       string           `json:"recipient,omitempty"`
	DeliveryAddress string           `json:"deliveryAddress,omitempty"`
	Items           []DeliveryItem   `json:"items,omitempty"`
	ProofOfDelivery *ProofOfDelivery `json:"proof_of_delivery,omitempty"`
	StatusHistory   []StatusEvent    `json:"status_history,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// TrackedVehicle is one entry of a trackVehicle batch. Success here is
// per-vehicle; a batch-level failure is reported on VehicleBatchResult.
type TrackedVehicle struct {
	Success       bool    `json:"success"`
	Name          string  `json:"name"`
	Lat           float64 `json:"lat,omitempty"`
	Lng           float64 `json:"lng,omitempty"`
	Address       string  `json:"address,omitempty"`
	Battery       int     `json:"battery,omitempty"`
	Speed         float64 `json:"speed,omitempty"`
	MaxSpeed      float64 `json:"max_speed,omitempty"`
	AvgSpeed      float64 `json:"avg_speed,omitempty"`
	TrackedAt     string  `json:"tracked_at,omitempty"`
	Connection    string  `json:"connection,omitempty"`
	GoogleMapsURL string  `json:"googleMapsUrl,omitempty"`
	Error         string  `json:"error,omitempty"`
}

type VehicleBatchResult struct {
	Success bool             `json:"success"`
	Results []TrackedVehicle `json:"results,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type DriverDelivery struct {
	DONumber         string `json:"do_number"`
	Status           string `json:"status"`
	CompanyName      string `json:"company_name,omitempty"`
	Address          string `json:"address,omitempty"`
	Instructions     string `json:"instructions,omitempty"`
	ItemsCount       int    `json:"items_count"`
	Items            string `json:"items,omitempty"`
	VerificationCode int    `json:"verification_code,omitempty"`
}

type DriverDeliveriesResult struct {
	Success       bool             `json:"success"`
	DriverName    string           `json:"driver_name"`
	DeliveryCount int              `json:"delivery_count,omitempty"`
	Deliveries    []DriverDelivery `json:"deliveries,omitempty"`
	Error         string           `json:"error,omitempty"`
}
