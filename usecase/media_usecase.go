package usecase

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"socialflow/domain/dto"
	"socialflow/domain/model"

	"github.com/google/go-querystring/query"
)

// CloudinaryCredentials are the account settings used to sign uploads.
type CloudinaryCredentials struct {
	CloudName string
	APIKey    string
	APISecret string
}

func (c CloudinaryCredentials) configured() bool {
	return c.CloudName != "" && c.APIKey != "" && c.APISecret != ""
}

type IMediaUsecase interface {
	Sign(req dto.SignatureRequest) (*dto.SignatureResponse, error)
}

type mediaUsecase struct {
	creds CloudinaryCredentials
	now   func() time.Time
}

func NewMediaUsecase(creds CloudinaryCredentials) IMediaUsecase {
	return &mediaUsecase{creds: creds, now: time.Now}
}

// Sign produces a signed-upload signature for the non-empty parameters of req.
func (u *mediaUsecase) Sign(req dto.SignatureRequest) (*dto.SignatureResponse, error) {
	if !u.creds.configured() {
		return nil, model.ErrMediaNotConfigured
	}
	timestamp := u.now().Unix()
	params, err := signableParams(req, timestamp)
	if err != nil {
		return nil, err
	}
	return &dto.SignatureResponse{
		Signature: signParams(params, u.creds.APISecret),
		Timestamp: timestamp,
		APIKey:    u.creds.APIKey,
		CloudName: u.creds.CloudName,
	}, nil
}

func signableParams(req dto.SignatureRequest, timestamp int64) (map[string]string, error) {
	values, err := query.Values(req)
	if err != nil {
		return nil, fmt.Errorf("encode signature params: %w", err)
	}
	params := make(map[string]string, len(values)+3)
	for k, v := range values {
		if len(v) == 0 || v[0] == "" {
			continue
		}
		params[k] = strings.Join(v, ",")
	}
	params["timestamp"] = strconv.FormatInt(timestamp, 10)
	if s := pipeJoin(req.Context); s != "" {
		params["context"] = s
	}
	if s := pipeJoin(req.Metadata); s != "" {
		params["metadata"] = s
	}
	return params, nil
}

// signParams sorts params by key, joins them as k=v&k=v, appends secret and
// returns the hex SHA-1 digest.
func signParams(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == "signature" || k == "api_key" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func pipeJoin(m map[string]string) string {
	if len(m) == 0 {
		return ""
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+m[k])
	}
	return strings.Join(parts, "|")
}
