// Package testutil builds gin contexts for marketplace handler tests.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fachwerk-hq/fachwerk/internal/domain/identity"
	"github.com/fachwerk-hq/fachwerk/internal/shared/constants"
	"github.com/fachwerk-hq/fachwerk/internal/shared/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// NewTestContext encodes body as JSON when it is non-nil.
func NewTestContext(method, path string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic("testutil: unencodable body: " + err.Error())
		}
		payload = bytes.NewReader(raw)
	}
	return newContext(method, path, payload, body != nil)
}

// NewRawTestContext sends body verbatim, for malformed JSON cases.
func NewRawTestContext(method, path, body string) (*gin.Context, *httptest.ResponseRecorder) {
	return newContext(method, path, strings.NewReader(body), true)
}

func newContext(method, path string, body io.Reader, isJSON bool) (*gin.Context, *httptest.ResponseRecorder) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(method, path, body)
	if isJSON {
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, rec
}

// SetCallerContext stores the caller the way the auth middleware does.
func SetCallerContext(c *gin.Context, caller identity.Caller) {
	c.Set(constants.ContextKeyCaller, caller)
	c.Set(constants.ContextKeyUserID, caller.UserID())
	c.Request = c.Request.WithContext(identity.WithCaller(c.Request.Context(), caller))
}

func SetURLParam(c *gin.Context, key, value string) {
	c.Params = append(c.Params, gin.Param{Key: key, Value: value})
}

func SetQueryParams(c *gin.Context, params map[string]string) {
	q := c.Request.URL.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	c.Request.URL.RawQuery = url.Values(q).Encode()
}

// ParseResponse decodes the recorded envelope into target.
func ParseResponse(rec *httptest.ResponseRecorder, target any) error {
	return json.Unmarshal(rec.Body.Bytes(), target)
}

// APIResponse is the envelope as a client sees it, with Data left raw so each
// test decodes only the shape it asserts on.
type APIResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Message string          `json:"message,omitempty"`
	Error   *struct {
		Type    string `json:"type"`
		Reason  string `json:"reason,omitempty"`
		Message string `json:"message"`
		Details string `json:"details,omitempty"`
	} `json:"error,omitempty"`
}

// NewMockLogger discards everything.
func NewMockLogger() logger.Interface {
	return logger.NewNopLogger()
}
