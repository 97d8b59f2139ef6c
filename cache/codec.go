package cache

import (
	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"
)

// copyValue deep copies v by round tripping it through msgpack. Only exported
// struct fields survive the copy.
func copyValue[T any](v T) (T, error) {
	var out T
	buf, err := msgpack.Marshal(v)
	if err != nil {
		return out, errors.Wrap(err, "encode value")
	}
	if err := msgpack.Unmarshal(buf, &out); err != nil {
		return out, errors.Wrap(err, "decode value")
	}
	return out, nil
}
