package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"

	"github.com/mercadolab/workflow-engine/internal/model"
)

func protowireTestUIDOnly(uid uint64) []byte {
	var b []byte
	b = protowire.AppendTag(b, fieldUID, protowire.VarintType)
	b = protowire.AppendVarint(b, uid)
	return b
}

func TestEncodeDecodeLightTask_RoundTrip(t *testing.T) {
	onFailure := "notify-oncall"
	original := model.LightTask{UID: 42, Path: "/srv/workflows/deploy.sh", OnFailure: &onFailure}

	encoded := EncodeLightTask(original)
	decoded, err := DecodeLightTask(encoded)
	require.NoError(t, err)

	assert.Equal(t, original.UID, decoded.UID)
	assert.Equal(t, original.Path, decoded.Path)
	require.NotNil(t, decoded.OnFailure)
	assert.Equal(t, *original.OnFailure, *decoded.OnFailure)
}

func TestEncodeDecodeLightTask_NoOnFailure(t *testing.T) {
	original := model.LightTask{UID: 7, Path: "/srv/workflows/build.sh"}

	encoded := EncodeLightTask(original)
	decoded, err := DecodeLightTask(encoded)
	require.NoError(t, err)

	assert.Equal(t, original.UID, decoded.UID)
	assert.Equal(t, original.Path, decoded.Path)
	assert.Nil(t, decoded.OnFailure)
}

func TestEncodeLightTask_Deterministic(t *testing.T) {
	onFailure := "rollback"
	t1 := model.LightTask{UID: 1, Path: "/a/b.sh", OnFailure: &onFailure}
	t2 := model.LightTask{UID: 1, Path: "/a/b.sh", OnFailure: &onFailure}

	assert.Equal(t, EncodeLightTask(t1), EncodeLightTask(t2))
}

func TestDecodeLightTask_CorruptedEnvelope(t *testing.T) {
	_, err := DecodeLightTask([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff})
	assert.ErrorIs(t, err, ErrCorruptedEnvelope)
}

func TestDecodeLightTask_MissingRequiredField(t *testing.T) {
	// Only the uid field present; path is required and absent entirely.
	b := protowireTestUIDOnly(9)
	_, err := DecodeLightTask(b)
	assert.ErrorIs(t, err, ErrCorruptedEnvelope)
}
