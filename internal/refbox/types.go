package refbox

import "fmt"

// Component and message type identifiers for OrderInfo.
const (
	OrderInfoComponentID uint16 = 2000
	OrderInfoMsgType     uint16 = 41
)

// Fixed values for order fields the refbox requires but ignores when an
// order is injected from outside.
const (
	FixedOrderID                  uint32 = 1337
	FixedDeliveryGate             uint32 = 1
	FixedDeliveryPeriodBegin      uint32 = 1
	FixedDeliveryPeriodEnd        uint32 = 2
	FixedQuantityRequested        uint32 = 1
	FixedQuantityDeliveredCyan    uint32 = 0
	FixedQuantityDeliveredMagenta uint32 = 0
	FixedCompetitive                     = false
)

// Complexity is the number of rings on the product (C0-C3).
type Complexity int32

const (
	C0 Complexity = 0
	C1 Complexity = 1
	C2 Complexity = 2
	C3 Complexity = 3
)

// ComplexityFromDigit maps a digit character '0'-'3' to a Complexity.
func ComplexityFromDigit(d byte) (Complexity, bool) {
	if d < '0' || d > '3' {
		return 0, false
	}
	return Complexity(d - '0'), true
}

// Rings returns the number of ring colors an order of this complexity carries.
func (c Complexity) Rings() int {
	return int(c)
}

func (c Complexity) String() string {
	if c.IsValid() {
		return fmt.Sprintf("C%d", int32(c))
	}
	return fmt.Sprintf("Complexity(%d)", int32(c))
}

func (c Complexity) IsValid() bool {
	return c >= C0 && c <= C3
}

// BaseColor is the color of the product base.
type BaseColor int32

const (
	BaseRed    BaseColor = 1
	BaseBlack  BaseColor = 2
	BaseSilver BaseColor = 3
)

func (b BaseColor) String() string {
	switch b {
	case BaseRed:
		return "BASE_RED"
	case BaseBlack:
		return "BASE_BLACK"
	case BaseSilver:
		return "BASE_SILVER"
	default:
		return fmt.Sprintf("BaseColor(%d)", int32(b))
	}
}

func (b BaseColor) IsValid() bool {
	return b >= BaseRed && b <= BaseSilver
}

// CapColor is the color of the product cap.
type CapColor int32

const (
	CapBlack CapColor = 1
	CapGrey  CapColor = 2
)

func (c CapColor) String() string {
	switch c {
	case CapBlack:
		return "CAP_BLACK"
	case CapGrey:
		return "CAP_GREY"
	default:
		return fmt.Sprintf("CapColor(%d)", int32(c))
	}
}

func (c CapColor) IsValid() bool {
	return c == CapBlack || c == CapGrey
}

// RingColor is the color of a single ring.
type RingColor int32

const (
	RingBlue   RingColor = 1
	RingGreen  RingColor = 2
	RingOrange RingColor = 3
	RingYellow RingColor = 4
)

func (r RingColor) String() string {
	switch r {
	case RingBlue:
		return "RING_BLUE"
	case RingGreen:
		return "RING_GREEN"
	case RingOrange:
		return "RING_ORANGE"
	case RingYellow:
		return "RING_YELLOW"
	default:
		return fmt.Sprintf("RingColor(%d)", int32(r))
	}
}

func (r RingColor) IsValid() bool {
	return r >= RingBlue && r <= RingYellow
}

// Order mirrors llsf_msgs.Order.
type Order struct {
	ID                       uint32
	Complexity               Complexity
	BaseColor                BaseColor
	RingColors               []RingColor
	CapColor                 CapColor
	QuantityRequested        uint32
	QuantityDeliveredCyan    uint32
	QuantityDeliveredMagenta uint32
	DeliveryPeriodBegin      uint32
	DeliveryPeriodEnd        uint32
	DeliveryGate             uint32
	Competitive              bool
}

// NewOrder returns an order of the given complexity with every color set to
// its fallback (silver base, grey cap, yellow rings) and the fixed fields
// populated.
func NewOrder(c Complexity) Order {
	rings := make([]RingColor, c.Rings())
	for i := range rings {
		rings[i] = RingYellow
	}

	return Order{
		ID:                       FixedOrderID,
		Complexity:               c,
		BaseColor:                BaseSilver,
		RingColors:               rings,
		CapColor:                 CapGrey,
		QuantityRequested:        FixedQuantityRequested,
		QuantityDeliveredCyan:    FixedQuantityDeliveredCyan,
		QuantityDeliveredMagenta: FixedQuantityDeliveredMagenta,
		DeliveryPeriodBegin:      FixedDeliveryPeriodBegin,
		DeliveryPeriodEnd:        FixedDeliveryPeriodEnd,
		DeliveryGate:             FixedDeliveryGate,
		Competitive:              FixedCompetitive,
	}
}

// OrderInfo mirrors llsf_msgs.OrderInfo.
type OrderInfo struct {
	Orders []Order
}

// ComponentID returns the protobuf_comm component id of OrderInfo.
func (OrderInfo) ComponentID() uint16 { return OrderInfoComponentID }

// MsgType returns the protobuf_comm message type of OrderInfo.
func (OrderInfo) MsgType() uint16 { return OrderInfoMsgType }
