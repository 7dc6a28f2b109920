// Package proof derives and parses the 32-byte content digests recorded in
// the proof registry.
package proof

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"lukechampine.com/blake3"
)

// HashContent returns the blake3-256 digest of content.
func HashContent(content []byte) common.Hash {
	return common.Hash(blake3.Sum256(content))
}

// HashReader streams r through blake3-256.
func HashReader(r io.Reader) (common.Hash, error) {
	hasher := blake3.New(common.HashLength, nil)
	if _, err := io.Copy(hasher, r); err != nil {
		return common.Hash{}, fmt.Errorf("proof: hash content: %w", err)
	}
	return common.BytesToHash(hasher.Sum(nil)), nil
}

// ParseHash decodes a 0x-prefixed 32-byte hex digest. Shorter or longer
// inputs are rejected rather than padded.
func ParseHash(value string) (common.Hash, error) {
	raw, err := hexutil.Decode(strings.TrimSpace(value))
	if err != nil {
		return common.Hash{}, fmt.Errorf("proof: parse hash %q: %w", value, err)
	}
	if len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("proof: hash must be %d bytes, got %d", common.HashLength, len(raw))
	}
	return common.BytesToHash(raw), nil
}
