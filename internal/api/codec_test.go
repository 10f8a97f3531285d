package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/types/known/emptypb"
)

func TestCodecRegistered(t *testing.T) {
	c := encoding.GetCodec(CodecName)
	require.NotNil(t, c)
	assert.Equal(t, "json", c.Name())
}

func TestCodec_StructRoundTrip(t *testing.T) {
	c := jsonCodec{}
	created := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	in := &Post{ID: "p1", UserID: "u1", Content: "hello", CreatedAt: created, LikedBy: []string{"u2"}, Likes: 1}

	data, err := c.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"likedBy":["u2"]`)
	assert.NotContains(t, string(data), "replyToId")

	var out Post
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, *in, out)
}

func TestCodec_ProtoMessage(t *testing.T) {
	c := jsonCodec{}

	data, err := c.Marshal(&emptypb.Empty{})
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))

	require.NoError(t, c.Unmarshal([]byte("{}"), &emptypb.Empty{}))
	assert.Error(t, c.Unmarshal([]byte(`{"x":1}`), &emptypb.Empty{}))
}
