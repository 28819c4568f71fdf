package refbox

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers from OrderInfo.proto.
const (
	fieldOrderID                  protowire.Number = 1
	fieldComplexity               protowire.Number = 2
	fieldBaseColor                protowire.Number = 3
	fieldRingColors               protowire.Number = 4
	fieldCapColor                 protowire.Number = 5
	fieldQuantityRequested        protowire.Number = 6
	fieldQuantityDeliveredCyan    protowire.Number = 7
	fieldQuantityDeliveredMagenta protowire.Number = 8
	fieldDeliveryPeriodBegin      protowire.Number = 9
	fieldDeliveryPeriodEnd        protowire.Number = 10
	fieldDeliveryGate             protowire.Number = 11
	fieldCompetitive              protowire.Number = 12

	fieldOrderInfoOrders protowire.Number = 1
)

// ErrMalformedMessage is returned when a payload is not a valid protobuf message.
var ErrMalformedMessage = errors.New("malformed protobuf message")

func appendUint(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	// Negative enum values are sign-extended to 64 bits on the wire.
	return appendUint(b, num, uint64(int64(v)))
}

// AppendProto appends the protobuf encoding of the order to b.
//
// Every required field is written, including zero values.
func (o *Order) AppendProto(b []byte) []byte {
	b = appendUint(b, fieldOrderID, uint64(o.ID))
	b = appendEnum(b, fieldComplexity, int32(o.Complexity))
	b = appendEnum(b, fieldBaseColor, int32(o.BaseColor))
	for _, rc := range o.RingColors {
		b = appendEnum(b, fieldRingColors, int32(rc))
	}
	b = appendEnum(b, fieldCapColor, int32(o.CapColor))
	b = appendUint(b, fieldQuantityRequested, uint64(o.QuantityRequested))
	b = appendUint(b, fieldQuantityDeliveredCyan, uint64(o.QuantityDeliveredCyan))
	b = appendUint(b, fieldQuantityDeliveredMagenta, uint64(o.QuantityDeliveredMagenta))
	b = appendUint(b, fieldDeliveryPeriodBegin, uint64(o.DeliveryPeriodBegin))
	b = appendUint(b, fieldDeliveryPeriodEnd, uint64(o.DeliveryPeriodEnd))
	b = appendUint(b, fieldDeliveryGate, uint64(o.DeliveryGate))
	b = appendUint(b, fieldCompetitive, protowire.EncodeBool(o.Competitive))
	return b
}

// Marshal returns the protobuf encoding of the order info.
func (oi *OrderInfo) Marshal() []byte {
	var b []byte
	for i := range oi.Orders {
		msg := oi.Orders[i].AppendProto(nil)
		b = protowire.AppendTag(b, fieldOrderInfoOrders, protowire.BytesType)
		b = protowire.AppendBytes(b, msg)
	}
	return b
}

// UnmarshalOrderInfo decodes a protobuf-encoded OrderInfo.
// Unknown fields are skipped.
func UnmarshalOrderInfo(data []byte) (OrderInfo, error) {
	var oi OrderInfo
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return OrderInfo{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
		}
		data = data[n:]

		if num == fieldOrderInfoOrders && typ == protowire.BytesType {
			msg, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return OrderInfo{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(m))
			}
			order, err := unmarshalOrder(msg)
			if err != nil {
				return OrderInfo{}, fmt.Errorf("order %d: %w", len(oi.Orders), err)
			}
			oi.Orders = append(oi.Orders, order)
			data = data[m:]
			continue
		}

		m := protowire.ConsumeFieldValue(num, typ, data)
		if m < 0 {
			return OrderInfo{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(m))
		}
		data = data[m:]
	}
	return oi, nil
}

func unmarshalOrder(data []byte) (Order, error) {
	var o Order
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return Order{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
		}
		data = data[n:]

		// ring_colors may arrive packed from newer encoders.
		if num == fieldRingColors && typ == protowire.BytesType {
			packed, m := protowire.ConsumeBytes(data)
			if m < 0 {
				return Order{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(m))
			}
			for len(packed) > 0 {
				v, k := protowire.ConsumeVarint(packed)
				if k < 0 {
					return Order{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(k))
				}
				o.RingColors = append(o.RingColors, RingColor(int32(v)))
				packed = packed[k:]
			}
			data = data[m:]
			continue
		}

		if typ != protowire.VarintType {
			m := protowire.ConsumeFieldValue(num, typ, data)
			if m < 0 {
				return Order{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(m))
			}
			data = data[m:]
			continue
		}

		v, m := protowire.ConsumeVarint(data)
		if m < 0 {
			return Order{}, fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(m))
		}
		data = data[m:]

		switch num {
		case fieldOrderID:
			o.ID = uint32(v)
		case fieldComplexity:
			o.Complexity = Complexity(int32(v))
		case fieldBaseColor:
			o.BaseColor = BaseColor(int32(v))
		case fieldRingColors:
			o.RingColors = append(o.RingColors, RingColor(int32(v)))
		case fieldCapColor:
			o.CapColor = CapColor(int32(v))
		case fieldQuantityRequested:
			o.QuantityRequested = uint32(v)
		case fieldQuantityDeliveredCyan:
			o.QuantityDeliveredCyan = uint32(v)
		case fieldQuantityDeliveredMagenta:
			o.QuantityDeliveredMagenta = uint32(v)
		case fieldDeliveryPeriodBegin:
			o.DeliveryPeriodBegin = uint32(v)
		case fieldDeliveryPeriodEnd:
			o.DeliveryPeriodEnd = uint32(v)
		case fieldDeliveryGate:
			o.DeliveryGate = uint32(v)
		case fieldCompetitive:
			o.Competitive = protowire.DecodeBool(v)
		}
	}
	return o, nil
}
