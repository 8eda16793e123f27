package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// decodeBody reads a JSON object from the request body and calls fn for every
// top-level field. Unknown fields must be skipped by fn.
func decodeBody(r *http.Request, fn func(d *jx.Decoder, key string) error) error {
	data, err := io.ReadAll(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err != nil {
		return badRequest("read body", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return badRequest("empty body", nil)
	}

	d := jx.DecodeBytes(data)
	if err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		return fn(d, string(key))
	}); err != nil {
		return badRequest("invalid JSON body", err)
	}
	return nil
}

// decodeString decodes a JSON string, treating null as empty.
func decodeString(d *jx.Decoder) (string, error) {
	if d.Next() == jx.Null {
		return "", d.Null()
	}
	return d.Str()
}

// decodeStrings decodes the fields named in dst as strings and skips the rest.
func decodeStrings(r *http.Request, dst map[string]*string) error {
	return decodeBody(r, func(d *jx.Decoder, key string) error {
		p, ok := dst[key]
		if !ok {
			return d.Skip()
		}
		v, err := decodeString(d)
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		*p = v
		return nil
	})
}
