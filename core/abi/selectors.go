// Package abi describes the ledger's callable messages: their 4-byte
// selectors, argument layouts and the RLP codec used on the wire.
package abi

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Selector identifies a message. It is the first four bytes of call input.
type Selector [4]byte

// String renders the selector as 0x-prefixed hex.
func (s Selector) String() string {
	return "0x" + hex.EncodeToString(s[:])
}

// ParseSelector accepts 8 hex digits with an optional 0x prefix.
func ParseSelector(value string) (Selector, error) {
	var sel Selector
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(value), "0x"), "0X")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return sel, fmt.Errorf("selector %q: %w", value, err)
	}
	if len(raw) != len(sel) {
		return sel, fmt.Errorf("selector %q: want 4 bytes, got %d", value, len(raw))
	}
	copy(sel[:], raw)
	return sel, nil
}

var (
	SelMintAdToken      = Selector{0xA1, 0xA1, 0xA1, 0xA1}
	SelBurnAdToken      = Selector{0xA1, 0xA1, 0xA1, 0xA2}
	SelAdTokenBalance   = Selector{0xA1, 0xA1, 0xA1, 0xA3}
	SelDonateTokens     = Selector{0xA1, 0xA1, 0xA1, 0xA4}
	SelSubmitProof      = Selector{0xB2, 0xB2, 0xB2, 0xB1}
	SelGetProof         = Selector{0xB2, 0xB2, 0xB2, 0xB2}
	SelStake            = Selector{0xC3, 0xC3, 0xC3, 0xC1}
	SelGetStake         = Selector{0xC3, 0xC3, 0xC3, 0xC2}
	SelGetDonationCount = Selector{0xD4, 0xD4, 0xD4, 0xD1}
)

const (
	MsgMintAdToken      = "mint_ad_token"
	MsgBurnAdToken      = "burn_ad_token"
	MsgAdTokenBalance   = "get_ad_token_balance"
	MsgDonateTokens     = "donate_tokens"
	MsgSubmitProof      = "submit_proof"
	MsgGetProof         = "get_proof"
	MsgStake            = "stake"
	MsgGetStake         = "get_stake"
	MsgGetDonationCount = "get_donation_count"
)

// Message describes one callable entry point.
type Message struct {
	Name     string
	Selector Selector
	// Payable messages accept attached native value.
	Payable bool
	// Mutates is false for read-only queries; the host neither commits nor
	// advances the height for them.
	Mutates bool
}

var messages = []Message{
	{Name: MsgMintAdToken, Selector: SelMintAdToken, Mutates: true},
	{Name: MsgBurnAdToken, Selector: SelBurnAdToken, Mutates: true},
	{Name: MsgAdTokenBalance, Selector: SelAdTokenBalance},
	{Name: MsgDonateTokens, Selector: SelDonateTokens, Mutates: true},
	{Name: MsgSubmitProof, Selector: SelSubmitProof, Mutates: true},
	{Name: MsgGetProof, Selector: SelGetProof},
	{Name: MsgStake, Selector: SelStake, Payable: true, Mutates: true},
	{Name: MsgGetStake, Selector: SelGetStake},
	{Name: MsgGetDonationCount, Selector: SelGetDonationCount},
}

var (
	bySelector = make(map[Selector]Message, len(messages))
	byName     = make(map[string]Message, len(messages))
)

func init() {
	for _, msg := range messages {
		bySelector[msg.Selector] = msg
		byName[msg.Name] = msg
	}
}

// Lookup resolves a selector.
func Lookup(sel Selector) (Message, bool) {
	msg, ok := bySelector[sel]
	return msg, ok
}

// LookupName resolves a message by its snake_case name.
func LookupName(name string) (Message, bool) {
	msg, ok := byName[strings.TrimSpace(name)]
	return msg, ok
}

// Messages lists every message in declaration order.
func Messages() []Message {
	out := make([]Message, len(messages))
	copy(out, messages)
	return out
}

// Resolve accepts either a message name or a hex selector.
func Resolve(ref string) (Message, error) {
	if msg, ok := LookupName(ref); ok {
		return msg, nil
	}
	sel, err := ParseSelector(ref)
	if err != nil {
		return Message{}, fmt.Errorf("%w: %q is neither a message name nor a selector", ErrUnknownSelector, ref)
	}
	msg, ok := Lookup(sel)
	if !ok {
		return Message{}, fmt.Errorf("%w: %s", ErrUnknownSelector, sel)
	}
	return msg, nil
}
