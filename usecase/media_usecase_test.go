package usecase

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"
	"time"

	"socialflow/domain/dto"
	"socialflow/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaUsecase_Sign(t *testing.T) {
	u := &mediaUsecase{
		creds: CloudinaryCredentials{CloudName: "demo", APIKey: "key", APISecret: "secret"},
		now:   fixedClock(time.Unix(1700000000, 0)),
	}

	res, err := u.Sign(dto.SignatureRequest{
		Folder:  "posts",
		Tags:    []string{"a", "b"},
		Context: map[string]string{"caption": "hi", "alt": "x"},
	})
	require.NoError(t, err)

	sum := sha1.Sum([]byte("context=alt=x|caption=hi&folder=posts&tags=a,b&timestamp=1700000000secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Signature)
	assert.Equal(t, int64(1700000000), res.Timestamp)
	assert.Equal(t, "key", res.APIKey)
	assert.Equal(t, "demo", res.CloudName)
}

func TestMediaUsecase_SignTimestampOnly(t *testing.T) {
	u := &mediaUsecase{
		creds: CloudinaryCredentials{CloudName: "demo", APIKey: "key", APISecret: "s3"},
		now:   fixedClock(time.Unix(42, 0)),
	}

	res, err := u.Sign(dto.SignatureRequest{})
	require.NoError(t, err)
	sum := sha1.Sum([]byte("timestamp=42s3"))
	assert.Equal(t, hex.EncodeToString(sum[:]), res.Signature)
}

func TestMediaUsecase_NotConfigured(t *testing.T) {
	u := NewMediaUsecase(CloudinaryCredentials{CloudName: "demo"})

	_, err := u.Sign(dto.SignatureRequest{})
	assert.ErrorIs(t, err, model.ErrMediaNotConfigured)
}

func TestSignParams_SkipsReservedKeys(t *testing.T) {
	got := signParams(map[string]string{"timestamp": "1", "api_key": "k", "signature": "old"}, "x")
	sum := sha1.Sum([]byte("timestamp=1x"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}
