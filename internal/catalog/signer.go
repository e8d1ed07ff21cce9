// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package catalog

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/taibuivan/yomira-harvester/internal/platform/constants"
	"github.com/taibuivan/yomira-harvester/pkg/uuid"
)

// signer adds the catalog's HMAC request signature headers.
type signer struct {
	apiKey string
	secret []byte
	now    func() time.Time
	nonce  func() string
}

func newSigner(apiKey, secret string) *signer {
	return &signer{
		apiKey: apiKey,
		secret: []byte(secret),
		now:    time.Now,
		nonce:  uuid.Random,
	}
}

// sign stamps request headers. path is relative to the base URL and includes the query.
func (s *signer) sign(header http.Header, method, path string) {
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	nonce := s.nonce()

	header.Set(constants.HeaderAPIKey, s.apiKey)
	header.Set(constants.HeaderTime, timestamp)
	header.Set(constants.HeaderNonce, nonce)
	header.Set(constants.HeaderSignature, s.signature(path, timestamp, nonce, method))
}

func (s *signer) signature(path, timestamp, nonce, method string) string {
	raw := strings.ToLower(path + timestamp + nonce + method + s.apiKey)

	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(raw))
	return hex.EncodeToString(mac.Sum(nil))
}
