package vssClient

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
)

// SigningScheme selects which of the two VSS authentication formats the
// client emits. The deployed server version determines which one it accepts,
// so this is fixed at construction, not per call.
type SigningScheme int

const (
	// SchemeLegacy embeds a unix-seconds timestamp in the signing string
	// and hex-encodes the digest: "Authorization: key:ts:hexdigest".
	SchemeLegacy SigningScheme = iota
	// SchemeDateHeader signs an HTTP Date header and base64-encodes the
	// digest: "Authorization: key:b64digest" plus a Date header.
	SchemeDateHeader
)

// signRequest builds a ready-to-send request for the given method and API
// path (e.g. "/device/abc"). No I/O happens here.
func (c *VssApiClient) signRequest(method string, path string, body []byte) (*http.Request, error) {
	req, err := http.NewRequest(method, c.baseUrl+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	contentType := ""
	if len(body) > 0 {
		contentType = "application/json"
		req.Header.Set("Content-Type", contentType)
	}

	apiPath := "/api" + path
	switch c.cfg.Scheme {
	case SchemeDateHeader:
		date := c.now().UTC().Format(http.TimeFormat)
		// newline-joined: method, content digest (unused, left empty),
		// content type, date, path.
		msg := strings.Join([]string{method, "", contentType, date, apiPath}, "\n")
		mac := hmac.New(sha256.New, []byte(c.cfg.Secret))
		mac.Write([]byte(msg))
		sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))
		req.Header.Set("Date", date)
		req.Header.Set("Authorization", c.cfg.Key+":"+sig)
	default:
		ts := strconv.FormatInt(c.now().Unix(), 10)
		msg := method + " " + apiPath + " " + ts
		mac := hmac.New(sha256.New, []byte(c.cfg.Secret))
		mac.Write([]byte(msg))
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("Authorization", c.cfg.Key+":"+ts+":"+sig)
	}
	return req, nil
}
