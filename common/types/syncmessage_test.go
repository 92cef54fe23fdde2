package types_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clustermesh/statesync/codec"
	"github.com/clustermesh/statesync/common/types"
)

func TestSyncMessageCodec(t *testing.T) {
	id, err := types.RandomNodeID()
	require.NoError(t, err)
	msg := types.SyncMessage{
		Type:      types.Broadcast,
		Component: types.Scheduler,
		NodeID:    id,
		Version:   1 << 40,
		Payload:   []byte("opaque component payload"),
	}

	data, err := codec.Encode(&msg)
	require.NoError(t, err)

	var decoded types.SyncMessage
	require.NoError(t, codec.Decode(data, &decoded))
	require.Equal(t, msg, decoded)
}

func TestSyncMessagePayloadLimit(t *testing.T) {
	msg := types.SyncMessage{
		Payload: make([]byte, types.MaxPayloadSize+1),
	}
	_, err := codec.Encode(&msg)
	require.Error(t, err)
}
