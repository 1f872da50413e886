package common

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ErrInvalidAddress = errors.New("invalid address")

func IsSameHexAddress(a, b string) bool {
	return strings.ToLower(a) == strings.ToLower(b)
}

func ChecksumAddress(addr string) string {
	address := common.HexToAddress(addr)

	return address.Hex()
}

// IsEntityID reports whether s looks like a shard.realm.num entity id.
func IsEntityID(s string) bool {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return false
	}

	for _, p := range parts {
		if _, err := strconv.ParseUint(p, 10, 64); err != nil {
			return false
		}
	}

	return true
}

// EntityToAddress converts a shard.realm.num entity id to its long-zero EVM
// address: 4 bytes shard, 8 bytes realm, 8 bytes num, big endian.
func EntityToAddress(id string) (common.Address, error) {
	parts := strings.Split(id, ".")
	if len(parts) != 3 {
		return common.Address{}, fmt.Errorf("%w: %q is not an entity id", ErrInvalidAddress, id)
	}

	shard, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: shard of %q: %v", ErrInvalidAddress, id, err)
	}

	realm, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: realm of %q: %v", ErrInvalidAddress, id, err)
	}

	num, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: num of %q: %v", ErrInvalidAddress, id, err)
	}

	var addr common.Address
	binary.BigEndian.PutUint32(addr[0:4], uint32(shard))
	binary.BigEndian.PutUint64(addr[4:12], realm)
	binary.BigEndian.PutUint64(addr[12:20], num)

	return addr, nil
}

// ParseAddress accepts a 0x-prefixed hex address or an entity id.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)

	if IsEntityID(s) {
		return EntityToAddress(s)
	}

	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	return common.HexToAddress(s), nil
}
