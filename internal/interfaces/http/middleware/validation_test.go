package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/erp/ledger/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movementInput struct {
	MaterialID string          `json:"material_id" binding:"required,uuid"`
	Qty        decimal.Decimal `json:"qty" binding:"required,gt=0"`
	Notes      string          `json:"notes" binding:"max=5"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/test", func(c *gin.Context) {
		var req movementInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"qty": req.Qty.String()})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func detailMessages(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.False(t, resp.Success)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	out := make(map[string]string, len(resp.Error.Details))
	for _, d := range resp.Error.Details {
		out[d.Field] = d.Message
	}
	return out
}

func TestSetupValidator_Idempotent(t *testing.T) {
	assert.NotPanics(t, func() {
		SetupValidator()
		SetupValidator()
	})
}

func TestValidation_ReportsJSONFieldNames(t *testing.T) {
	w := postJSON(validationRouter(), `{"material_id": "nope", "qty": "5", "notes": "far too long"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	details := detailMessages(t, w)
	assert.Equal(t, "Invalid UUID format", details["material_id"])
	assert.Equal(t, "Must be at most 5 characters", details["notes"])
	assert.NotContains(t, details, "qty")
}

func TestValidation_DecimalQuantities(t *testing.T) {
	router := validationRouter()
	id := "8a0b7f8e-2f84-4a53-9a77-5f0b8a3f8f10"

	t.Run("missing quantity is required", func(t *testing.T) {
		w := postJSON(router, `{"material_id": "`+id+`"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "This field is required", detailMessages(t, w)["qty"])
	})

	t.Run("negative quantity fails gt", func(t *testing.T) {
		w := postJSON(router, `{"material_id": "`+id+`", "qty": "-2.5"}`)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Must be greater than 0", detailMessages(t, w)["qty"])
	})

	t.Run("fractional quantity passes", func(t *testing.T) {
		w := postJSON(router, `{"material_id": "`+id+`", "qty": "0.25"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"0.25"`)
	})
}

func TestValidation_MalformedJSONHasNoDetails(t *testing.T) {
	w := postJSON(validationRouter(), `{"material_id": `)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, detailMessages(t, w))
}
