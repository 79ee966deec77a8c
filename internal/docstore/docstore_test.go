package docstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlibekovAA/notes/internal/common/constants"
	commonerrors "github.com/AlibekovAA/notes/internal/common/errors"
)

func TestServerTimestamp_JSONShape(t *testing.T) {
	raw, err := json.Marshal(Fields{"createdAt": ServerTimestamp()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"createdAt":{"$transform":"serverTimestamp"}}`, string(raw))
}

func TestPrepareFields_ResolvesTypedAndDecodedTransforms(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 123, time.UTC)

	var decoded Fields
	require.NoError(t, json.Unmarshal([]byte(`{"updatedAt":{"$transform":"serverTimestamp"},"title":"x"}`), &decoded))
	decoded["createdAt"] = ServerTimestamp()

	out, err := PrepareFields(decoded, now)
	require.NoError(t, err)

	assert.Equal(t, "2024-03-01T10:00:00.000000123Z", out["createdAt"])
	assert.Equal(t, out["createdAt"], out["updatedAt"])
	assert.Equal(t, "x", out["title"])
	_, stillTransform := decoded["updatedAt"].(map[string]any)
	assert.True(t, stillTransform, "input must not be modified")
}

func TestPrepareFields_Rejections(t *testing.T) {
	_, err := PrepareFields(Fields{"bad-name": 1}, time.Now())
	assert.ErrorIs(t, err, commonerrors.ErrInvalidDocumentPath)

	_, err = PrepareFields(Fields{"x": map[string]any{TransformKey: "increment"}}, time.Now())
	assert.ErrorIs(t, err, commonerrors.ErrInvalidPayload)

	tooMany := Fields{}
	for i := 0; i <= constants.MaxDocumentFields; i++ {
		tooMany["f"+string(rune('a'+i%26))+string(rune('a'+i/26))] = i
	}
	_, err = PrepareFields(tooMany, time.Now())
	assert.ErrorIs(t, err, commonerrors.ErrTooManyFields)
}

func TestPrepareFields_NestedMapIsNotTransform(t *testing.T) {
	out, err := PrepareFields(Fields{"meta": map[string]any{TransformKey: "serverTimestamp", "other": 1}}, time.Now())
	require.NoError(t, err)
	assert.IsType(t, map[string]any{}, out["meta"])
}

func TestTimeField(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)
	fields := Fields{"createdAt": FormatTime(ts), "broken": "yesterday", "n": 5}

	got := TimeField(fields, "createdAt")
	require.NotNil(t, got)
	assert.True(t, ts.Equal(*got))

	assert.Nil(t, TimeField(fields, "broken"))
	assert.Nil(t, TimeField(fields, "n"))
	assert.Nil(t, TimeField(fields, "missing"))
}

func TestValidatePath(t *testing.T) {
	testCases := []struct {
		collection string
		id         string
		ok         bool
	}{
		{"notes", "abc-123", true},
		{"profiles", "uid_1", true},
		{"", "x", false},
		{"1notes", "x", false},
		{"no tes", "x", false},
		{"notes", "", false},
		{"notes", "a/b", false},
	}

	for _, tc := range testCases {
		err := ValidatePath(tc.collection, tc.id)
		if tc.ok {
			assert.NoError(t, err, "%s/%s", tc.collection, tc.id)
		} else {
			assert.ErrorIs(t, err, commonerrors.ErrInvalidDocumentPath, "%s/%s", tc.collection, tc.id)
		}
	}
}
