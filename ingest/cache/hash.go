package cache

import (
	"strconv"

	"github.com/minio/highwayhash"
)

var key = []byte("0123456789ABCDEF0123456789ABCDEF")

// Hash creates a hash for the input data
func Hash(data []byte) (uint64, error) {
	h, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = h.Write(data)
	if err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// ContentKey hashes normalized text into a cache key. A zero hash falls back
// to the content length so the key is never empty.
func ContentKey(text string) string {
	h, err := Hash([]byte(text))
	if err != nil || h == 0 {
		return "len:" + strconv.Itoa(len(text))
	}
	return strconv.FormatUint(h, 10)
}
