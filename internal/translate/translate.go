package translate

import (
	"fmt"
	"strings"

	"github.com/rickgao/refbox-bridge/internal/model"
	"github.com/rickgao/refbox-bridge/internal/refbox"
)

// Option name prefixes.
const (
	prefixBase = "base_"
	prefixCap  = "cap_"
	prefixRing = "ring_"
)

// Translator converts shop orders to refbox order info.
type Translator struct {
	// Strict rejects option values that do not name a known color instead
	// of falling back to the default color.
	Strict bool
}

// Translate converts an order with lenient color matching.
func Translate(order model.Order) (refbox.OrderInfo, error) {
	var t Translator
	return t.Translate(order)
}

// Translate converts every item of the order into a refbox order, preserving
// item order.
func (t Translator) Translate(order model.Order) (refbox.OrderInfo, error) {
	out := refbox.OrderInfo{
		Orders: make([]refbox.Order, 0, len(order.Items)),
	}

	for i, item := range order.Items {
		o, err := t.translateItem(i, item)
		if err != nil {
			return refbox.OrderInfo{}, err
		}
		out.Orders = append(out.Orders, o)
	}

	return out, nil
}

func (t Translator) translateItem(idx int, item model.Item) (refbox.Order, error) {
	if len(item.Model) < 2 {
		return refbox.Order{}, &TranslationError{
			Item: idx, Option: -1, Model: item.Model,
			Err: fmt.Errorf("%w: model code too short", ErrInvalidComplexity),
		}
	}

	complexity, ok := refbox.ComplexityFromDigit(item.Model[1])
	if !ok {
		return refbox.Order{}, &TranslationError{
			Item: idx, Option: -1, Model: item.Model,
			Err: fmt.Errorf("%w: %q", ErrInvalidComplexity, item.Model[1]),
		}
	}

	order := refbox.NewOrder(complexity)

	for j, opt := range item.Options {
		if err := t.applyOption(&order, opt.Normalized()); err != nil {
			return refbox.Order{}, &TranslationError{
				Item: idx, Option: j, Model: item.Model,
				Name: opt.Name, Value: opt.Value,
				Err: err,
			}
		}
	}

	return order, nil
}

// applyOption sets exactly one color field of order. opt must be lowercased.
func (t Translator) applyOption(order *refbox.Order, opt model.Option) error {
	switch {
	case strings.HasPrefix(opt.Name, prefixBase):
		c, ok := baseColor(opt.Value)
		if !ok && t.Strict {
			return fmt.Errorf("%w: base %q", ErrUnknownColor, opt.Value)
		}
		order.BaseColor = c

	case strings.HasPrefix(opt.Name, prefixCap):
		c, ok := capColor(opt.Value)
		if !ok && t.Strict {
			return fmt.Errorf("%w: cap %q", ErrUnknownColor, opt.Value)
		}
		order.CapColor = c

	case strings.HasPrefix(opt.Name, prefixRing):
		slot, err := ringSlot(opt.Name, len(order.RingColors))
		if err != nil {
			return err
		}
		c, ok := ringColor(opt.Value)
		if !ok && t.Strict {
			return fmt.Errorf("%w: ring %q", ErrUnknownColor, opt.Value)
		}
		order.RingColors[slot] = c
	}

	return nil
}

// ringSlot returns the 0-based ring slot of a ring option name. The index is
// the digit right after the prefix ("ring_2_bottom" -> 1), or the last
// character when no digit follows the prefix ("ring_top_2" -> 1).
func ringSlot(name string, rings int) (int, error) {
	digit, ok := ringDigit(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q has no ring number", ErrInvalidRingIndex, name)
	}

	slot := int(digit-'0') - 1
	if slot < 0 || slot >= rings {
		return 0, fmt.Errorf("%w: ring %d outside 1..%d", ErrInvalidRingIndex, slot+1, rings)
	}
	return slot, nil
}

func ringDigit(name string) (byte, bool) {
	if len(name) > len(prefixRing) && isDigit(name[len(prefixRing)]) {
		return name[len(prefixRing)], true
	}
	if last := name[len(name)-1]; isDigit(last) {
		return last, true
	}
	return 0, false
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func baseColor(v string) (refbox.BaseColor, bool) {
	switch v {
	case "red":
		return refbox.BaseRed, true
	case "black":
		return refbox.BaseBlack, true
	case "silver":
		return refbox.BaseSilver, true
	}
	return refbox.BaseSilver, false
}

func capColor(v string) (refbox.CapColor, bool) {
	switch v {
	case "black":
		return refbox.CapBlack, true
	case "grey", "gray":
		return refbox.CapGrey, true
	}
	return refbox.CapGrey, false
}

func ringColor(v string) (refbox.RingColor, bool) {
	switch v {
	case "blue":
		return refbox.RingBlue, true
	case "green":
		return refbox.RingGreen, true
	case "orange":
		return refbox.RingOrange, true
	case "yellow":
		return refbox.RingYellow, true
	}
	return refbox.RingYellow, false
}
