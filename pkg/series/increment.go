// Package series implements the series slot model and the deterministic
// series replication algorithm.
//
// A series value such as "A001" or "Row 7-08" is a prefix followed by a
// trailing run of decimal digits, the counter. Incrementing adds to the counter
// and re-renders it zero-padded to the width of the original digit run; the
// prefix, including interior spaces, is kept verbatim. Values without a
// trailing digit run never change.
//
// Tickets are laid out TicketsPerPage to a page. The ticket at page p, position
// t has the global index p*TicketsPerPage+t, and each slot's value there is its
// own starting series incremented by globalIndex*step. Slots never share a
// counter.
//
// Key Types:
//
// - Slot: one placeable series text object with per-letter styles
// - Editor: the slots of one editing session and the current selection
// - OutputPage / TicketOnPage: the expanded per-page values
//
// Main Functions:
//
// - Increment, EndValue, ParsePattern
// - Expand: expand slots into OutputPages
// - SlotHeightPt, MaxSlotSpacingPt: vertical layout of the repeated tickets
package series

import (
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var counterPattern = regexp.MustCompile(`^(.*?)(\d+)$`)

// Pattern is a series value split into its prefix and counter.
type Pattern struct {
	Prefix    string
	Digits    string // the trailing digit run, as written
	PadLength int    // len(Digits)
}

// ParsePattern splits value into prefix and trailing counter. It reports false
// when value has no trailing digits.
func ParsePattern(value string) (Pattern, bool) {
	m := counterPattern.FindStringSubmatch(value)
	if m == nil {
		return Pattern{}, false
	}
	return Pattern{Prefix: m[1], Digits: m[2], PadLength: len(m[2])}, true
}

// Start returns the counter as an unsigned integer. ok is false when the digit
// run does not fit in 64 bits.
func (p Pattern) Start() (n uint64, ok bool) {
	n, err := strconv.ParseUint(p.Digits, 10, 64)
	return n, err == nil
}

// Format renders counter with the pattern's prefix and padding.
func (p Pattern) Format(counter *big.Int) string {
	digits := counter.String()
	if pad := p.PadLength - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return p.Prefix + digits
}

// Increment adds n to the trailing counter of value. The counter is padded
// with zeros to its original width; wider results are not truncated. Values
// without trailing digits, and increments that would make the counter
// negative, return value unchanged.
func Increment(value string, n int) string {
	p, ok := ParsePattern(value)
	if !ok {
		return value
	}
	counter, _ := new(big.Int).SetString(p.Digits, 10)
	counter.Add(counter, big.NewInt(int64(n)))
	if counter.Sign() < 0 {
		return value
	}
	return p.Format(counter)
}

// EndValue returns the value of the last of totalTickets consecutive tickets
// starting at start with step 1.
func EndValue(start string, totalTickets int) string {
	return Increment(start, totalTickets-1)
}
