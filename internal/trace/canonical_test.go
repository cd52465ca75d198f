package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfell/rungine/internal/image"
	"github.com/mfell/rungine/internal/ladder"
)

func TestMarshalImage_SortedAndStable(t *testing.T) {
	img := image.New()
	img.Set("zeta", ladder.Bit(true))
	img.Set("alpha", ladder.Word(-7))
	img.Set("mid", ladder.Bit(false))

	first, err := MarshalImage(img)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":-7,"mid":false,"zeta":true}`, string(first))

	// Same image, same bytes, every time.
	for i := 0; i < 10; i++ {
		again, err := MarshalImage(img)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestMarshalImage_NoHTMLEscaping(t *testing.T) {
	img := image.New()
	img.Set("a<b>&c", ladder.Bit(true))

	data, err := MarshalImage(img)
	require.NoError(t, err)
	assert.Equal(t, `{"a<b>&c":true}`, string(data))
}

func TestMarshalImage_NFCNormalizesIDs(t *testing.T) {
	// "é" as precomposed U+00E9 vs "e" + combining acute U+0301:
	// both serialize to the same key.
	img1 := image.New()
	img1.Set("caf\u00e9", ladder.Bit(true))

	img2 := image.New()
	img2.Set("cafe\u0301", ladder.Bit(true))

	d1, err := MarshalImage(img1)
	require.NoError(t, err)
	d2, err := MarshalImage(img2)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
}

func TestMarshalImage_RejectsNormalizationCollision(t *testing.T) {
	img := image.New()
	img.Set("caf\u00e9", ladder.Bit(true))
	img.Set("cafe\u0301", ladder.Bit(false))

	_, err := MarshalImage(img)
	assert.Error(t, err, "two IDs folding to one key would silently drop a value")
}

func TestImageJSON_RoundTrip(t *testing.T) {
	img := image.New()
	img.Set("out1", ladder.Bit(true))
	img.Set("t1.et", ladder.Word(42))
	img.Set("neg", ladder.Word(-1))

	data, err := MarshalImage(img)
	require.NoError(t, err)

	decoded, err := UnmarshalImage(data)
	require.NoError(t, err)
	assert.Equal(t, img, decoded)
}

func TestUnmarshalImage_RejectsNonInteger(t *testing.T) {
	_, err := UnmarshalImage([]byte(`{"a": 1.5}`))
	assert.Error(t, err)

	_, err = UnmarshalImage([]byte(`{"a": "str"}`))
	assert.Error(t, err)
}
