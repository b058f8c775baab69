package domain

const (
	StatusOrderPlaced    = "orderPlaced"
	StatusPacking        = "Packing"
	StatusShipped        = "Shipped"
	StatusOutForDelivery = "Out for delivery"
	StatusDelivered      = "Delivered"
)

// Statuses is the fixed fulfillment lifecycle, in progression order. The
// dashboard offers no cancelled or error state.
var Statuses = []string{
	StatusOrderPlaced,
	StatusPacking,
	StatusShipped,
	StatusOutForDelivery,
	StatusDelivered,
}

type OrderItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Size     string `json:"size"`
}

type Address struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	PinCode   string `json:"pinCode"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Order is created by the storefront and never deleted from the dashboard;
// the only mutation issued here is a status transition.
type Order struct {
	ID            string      `json:"_id"`
	Items         []OrderItem `json:"items"`
	Address       Address     `json:"address"`
	Amount        float64     `json:"amount"`
	PaymentMethod string      `json:"paymentMethod"`
	Payment       bool        `json:"payment"`
	Date          int64       `json:"date"`
	Status        string      `json:"status"`
}

func ValidStatus(status string) bool {
	for _, s := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Progress is the visual rendering of a fulfillment status: the percentage
// the progress bar fills and its color tag.
type Progress struct {
	Percent int
	Color   string
}

// StatusProgress maps a status value to its progress bar rendering. Unknown
// values render as a full gray bar.
func StatusProgress(status string) Progress {
	switch status {
	case StatusOrderPlaced:
		return Progress{Percent: 20, Color: "blue"}
	case StatusPacking:
		return Progress{Percent: 40, Color: "yellow"}
	case StatusShipped:
		return Progress{Percent: 60, Color: "indigo"}
	case StatusOutForDelivery:
		return Progress{Percent: 80, Color: "purple"}
	case StatusDelivered:
		return Progress{Percent: 100, Color: "green"}
	default:
		return Progress{Percent: 100, Color: "gray"}
	}
}
