package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/xiebiao/jpashop/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, handler gin.HandlerFunc) Response {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	handler(c)

	assert.Equal(t, http.StatusOK, w.Code, "业务错误也返回HTTP 200")
	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestSuccess(t *testing.T) {
	resp := serve(t, func(c *gin.Context) { Success(c, gin.H{"id": 1}) })

	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
	assert.Equal(t, map[string]interface{}{"id": float64(1)}, resp.Data)
}

func TestError(t *testing.T) {
	t.Run("业务错误原样返回", func(t *testing.T) {
		base := apperrors.New(apperrors.ErrCodeAggregateBroken, "订单引用的会员不存在")
		resp := serve(t, func(c *gin.Context) { Error(c, apperrors.Detail(base, "订单%d引用的会员%d不存在", 1, 2)) })

		assert.Equal(t, apperrors.ErrCodeAggregateBroken, resp.Code)
		assert.Equal(t, "订单1引用的会员2不存在", resp.Message)
		assert.Nil(t, resp.Data)
	})

	t.Run("普通错误不泄露内部信息", func(t *testing.T) {
		resp := serve(t, func(c *gin.Context) { Error(c, errors.New("dial tcp 10.0.0.1:3306: refused")) })

		assert.Equal(t, apperrors.ErrCodeInternal, resp.Code)
		assert.NotContains(t, resp.Message, "10.0.0.1")
	})
}
