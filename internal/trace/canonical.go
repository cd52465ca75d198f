package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

// MarshalImage produces canonical JSON for an image: NFC-normalized
// IDs, sorted keys, no HTML escaping, bits as booleans, words as
// integers. Two equal images always serialize to the same bytes, which
// is what makes stored rows and golden traces diffable.
func MarshalImage(img image.Image) ([]byte, error) {
	ids := make([]string, 0, len(img))
	byNorm := make(map[string]ladder.Value, len(img))
	for id, v := range img {
		// Normalize at the serialization boundary so visually identical
		// IDs from different editors land on the same key.
		n := norm.NFC.String(id)
		if _, dup := byNorm[n]; dup {
			return nil, fmt.Errorf("image IDs %q collide after NFC normalization", n)
		}
		byNorm[n] = v
		ids = append(ids, n)
	}
	sort.Strings(ids)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range ids {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := marshalString(id)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", id, err)
		}
		buf.Write(key)
		buf.WriteByte(':')

		switch val := byNorm[id].(type) {
		case ladder.Bit:
			buf.WriteString(strconv.FormatBool(bool(val)))
		case ladder.Word:
			buf.WriteString(strconv.FormatInt(int64(val), 10))
		default:
			return nil, fmt.Errorf("image value for %q has unknown type %T", id, val)
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalImage decodes canonical image JSON back into an image.
// Booleans become bits, integers become words; anything else is
// rejected.
func UnmarshalImage(data []byte) (image.Image, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode image JSON: %w", err)
	}

	img := make(image.Image, len(raw))
	for id, v := range raw {
		switch val := v.(type) {
		case bool:
			img[id] = ladder.Bit(val)
		case json.Number:
			n, err := val.Int64()
			if err != nil {
				return nil, fmt.Errorf("image value for %q is not an integer: %s", id, val)
			}
			img[id] = ladder.Word(int32(n))
		default:
			return nil, fmt.Errorf("image value for %q has unsupported type %T", id, v)
		}
	}
	return img, nil
}

// marshalString encodes a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a newline; trim it.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
