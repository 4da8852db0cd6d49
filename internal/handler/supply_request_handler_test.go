package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"buildsite/internal/model"
	"buildsite/internal/service"
	"buildsite/pkg/apperror"
	"buildsite/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSupplyRequestService struct {
	mock.Mock
}

func (m *mockSupplyRequestService) Create(_ context.Context, requesterID uuid.UUID, req service.CreateSupplyRequestDTO) ([]service.SupplyRequestResponse, error) {
	args := m.Called(requesterID, req)
	return args.Get(0).([]service.SupplyRequestResponse), args.Error(1)
}

func (m *mockSupplyRequestService) List(_ context.Context, companyID uuid.UUID, filter service.SupplyRequestFilterDTO) ([]service.SupplyRequestResponse, int64, error) {
	args := m.Called(companyID, filter)
	return args.Get(0).([]service.SupplyRequestResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockSupplyRequestService) Approve(_ context.Context, requestID uuid.UUID, transferQuantity float64, approverID uuid.UUID) (service.SupplyRequestResponse, error) {
	args := m.Called(requestID, transferQuantity, approverID)
	return args.Get(0).(service.SupplyRequestResponse), args.Error(1)
}

func (m *mockSupplyRequestService) Reject(_ context.Context, requestID uuid.UUID, reason string, approverID uuid.UUID) (service.SupplyRequestResponse, error) {
	args := m.Called(requestID, reason, approverID)
	return args.Get(0).(service.SupplyRequestResponse), args.Error(1)
}

const testSecret = "handler-test-secret"

func signToken(t *testing.T, userID uuid.UUID, role string, companyID uuid.UUID) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":        userID.String(),
		"role":       role,
		"company_id": companyID.String(),
		"exp":        time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func newRequestRouter(t *testing.T, svc service.SupplyRequestService) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", testSecret)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewSupplyRequestHandler(svc).RegisterRoutes(router.Group(""))
	return router
}

func decodeEnvelope(t *testing.T, body *bytes.Buffer) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(body.Bytes(), &env))
	return env
}

func TestApproveConflictEnvelope(t *testing.T) {
	svc := new(mockSupplyRequestService)
	router := newRequestRouter(t, svc)

	requestID := uuid.New()
	approverID := uuid.New()
	svc.On("Approve", requestID, 5.0, approverID).
		Return(service.SupplyRequestResponse{}, apperror.Conflict("Request already handled"))

	body := bytes.NewBufferString(`{"transfer_quantity": 5}`)
	req := httptest.NewRequest(http.MethodPut, "/api/supply-requests/"+requestID.String()+"/approve", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, approverID, model.RoleCompanyOwner, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	env := decodeEnvelope(t, w.Body)
	assert.False(t, env.Success)
	assert.Contains(t, env.Error, "already handled")
	svc.AssertExpectations(t)
}

func TestApproveSuccessEnvelope(t *testing.T) {
	svc := new(mockSupplyRequestService)
	router := newRequestRouter(t, svc)

	requestID := uuid.New()
	approverID := uuid.New()
	svc.On("Approve", requestID, 20.0, approverID).
		Return(service.SupplyRequestResponse{ID: requestID, Status: model.RequestApproved, TransferredQuantity: 20}, nil)

	body := bytes.NewBufferString(`{"transfer_quantity": 20}`)
	req := httptest.NewRequest(http.MethodPut, "/api/supply-requests/"+requestID.String()+"/approve", body)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, approverID, model.RoleAdmin, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	env := decodeEnvelope(t, w.Body)
	assert.True(t, env.Success)
	assert.Equal(t, "Supply request approved", env.Message)
}

func TestApproveRequiresToken(t *testing.T) {
	router := newRequestRouter(t, new(mockSupplyRequestService))

	req := httptest.NewRequest(http.MethodPut, "/api/supply-requests/"+uuid.NewString()+"/approve",
		bytes.NewBufferString(`{"transfer_quantity": 5}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	env := decodeEnvelope(t, w.Body)
	assert.False(t, env.Success)
}

func TestApproveForbiddenForSupervisor(t *testing.T) {
	router := newRequestRouter(t, new(mockSupplyRequestService))

	req := httptest.NewRequest(http.MethodPut, "/api/supply-requests/"+uuid.NewString()+"/approve",
		bytes.NewBufferString(`{"transfer_quantity": 5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), model.RoleSupervisor, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestApproveRejectsMalformedID(t *testing.T) {
	router := newRequestRouter(t, new(mockSupplyRequestService))

	req := httptest.NewRequest(http.MethodPut, "/api/supply-requests/not-a-uuid/approve",
		bytes.NewBufferString(`{"transfer_quantity": 5}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), model.RoleAdmin, uuid.New()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env := decodeEnvelope(t, w.Body)
	assert.False(t, env.Success)
}
