// Package binary encodes cached node coordinates.
package binary

import (
	"github.com/gogo/protobuf/proto"
	"github.com/pkg/errors"
)

const COORD_FACTOR float64 = 11930464.7083 // ((2<<31)-1)/360.0

func CoordToInt(coord float64) uint32 {
	return uint32((coord + 180.0) * COORD_FACTOR)
}

func IntToCoord(coord uint32) float64 {
	return float64((float64(coord) / COORD_FACTOR) - 180.0)
}

// MarshalCoord encodes long/lat as two protobuf varints. The precision
// is about 1cm.
func MarshalCoord(long, lat float64) []byte {
	buf := make([]byte, 0, 10)
	buf = append(buf, proto.EncodeVarint(uint64(CoordToInt(long)))...)
	buf = append(buf, proto.EncodeVarint(uint64(CoordToInt(lat)))...)
	return buf
}

var varintErr = errors.New("unmarshal coord: missing data for varint or overflow")

func UnmarshalCoord(data []byte) (long, lat float64, err error) {
	l, n := proto.DecodeVarint(data)
	if n == 0 || l > 1<<32-1 {
		return 0, 0, varintErr
	}
	data = data[n:]
	la, n := proto.DecodeVarint(data)
	if n == 0 || la > 1<<32-1 {
		return 0, 0, varintErr
	}
	if len(data) != n {
		return 0, 0, errors.Errorf("unmarshal coord: %d trailing bytes", len(data)-n)
	}
	return IntToCoord(uint32(l)), IntToCoord(uint32(la)), nil
}
