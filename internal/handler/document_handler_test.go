package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"feldbeleg/internal/domain"
	"feldbeleg/internal/handler"
	"feldbeleg/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func putJSON(t *testing.T, path string, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, err = http.NewRequest(http.MethodPut, path, bytes.NewReader(data))
	require.NoError(t, err)
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func TestDocumentHandler_Update_Success(t *testing.T) {
	mockSvc := new(MockDocumentService)
	h := handler.NewDocumentHandler(mockSvc)

	docID := uuid.New()
	expenseType := domain.InvoiceTypeExpense
	updated := &domain.Document{ID: docID, InvoiceType: expenseType}

	mockSvc.On("Update", mock.Anything, docID, mock.MatchedBy(func(in *service.UpdateDocumentInput) bool {
		return in.InvoiceType != nil && *in.InvoiceType == expenseType &&
			in.InvoiceInfo["name"] == "Schmidt Maria"
	})).Return(updated, nil)

	w, c := putJSON(t, "/api/v1/documents/"+docID.String(), map[string]any{
		"invoice_type": "expense",
		"invoice_info": map[string]any{"name": "Schmidt Maria"},
	})
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Update_InvalidID(t *testing.T) {
	h := handler.NewDocumentHandler(new(MockDocumentService))

	w, c := putJSON(t, "/api/v1/documents/not-a-uuid", map[string]any{})
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDocumentHandler_Update_UnknownInvoiceType(t *testing.T) {
	mockSvc := new(MockDocumentService)
	h := handler.NewDocumentHandler(mockSvc)

	docID := uuid.New()
	mockSvc.On("Update", mock.Anything, docID, mock.Anything).
		Return(nil, domain.ErrUnknownInvoiceType)

	w, c := putJSON(t, "/api/v1/documents/"+docID.String(), map[string]any{
		"invoice_type": "payslip",
	})
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp handler.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestDocumentHandler_Update_NotFound(t *testing.T) {
	mockSvc := new(MockDocumentService)
	h := handler.NewDocumentHandler(mockSvc)

	docID := uuid.New()
	mockSvc.On("Update", mock.Anything, docID, mock.Anything).
		Return(nil, domain.ErrNotFound)

	w, c := putJSON(t, "/api/v1/documents/"+docID.String(), map[string]any{
		"invoice_info": map[string]any{"name": "x"},
	})
	c.Params = gin.Params{{Key: "id", Value: docID.String()}}

	h.Update(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
