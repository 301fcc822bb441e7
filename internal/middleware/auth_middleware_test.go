package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/studentrecords/internal/app/models"
	"github.com/yigit/studentrecords/internal/app/models/dto"
	"github.com/yigit/studentrecords/internal/pkg/auth"
)

func newProtectedRouter(jwtService *auth.JWTService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", NewAuthMiddleware(jwtService).JWTAuth(), func(c *gin.Context) {
		id := ActorID(c)
		c.JSON(http.StatusOK, gin.H{"id": *id, "username": c.GetString(UsernameKey)})
	})
	return r
}

func TestJWTAuth(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "k", AccessTokenExp: time.Hour, TokenIssuer: "studentrecords"})
	token, _, err := jwtService.GenerateAccessToken(&models.Operator{ID: 12, Username: "clerk"})
	require.NoError(t, err)
	r := newProtectedRouter(jwtService)

	tests := []struct {
		name   string
		header string
		query  string
		status int
		code   dto.ErrorCode
	}{
		{"missing", "", "", http.StatusUnauthorized, dto.ErrorCodeUnauthorized},
		{"bearer", "Bearer " + token, "", http.StatusOK, ""},
		{"raw token", token, "", http.StatusOK, ""},
		{"query token", "", "?token=" + token, http.StatusOK, ""},
		{"garbage", "Bearer nope", "", http.StatusUnauthorized, dto.ErrorCodeInvalidToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				var body struct {
					ID       int64  `json:"id"`
					Username string `json:"username"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.Equal(t, int64(12), body.ID)
				assert.Equal(t, "clerk", body.Username)
				return
			}
			var body dto.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.code, body.Error.Code)
		})
	}
}

func TestActorIDWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Nil(t, ActorID(c))

	c.Set(OperatorIDKey, int64(0))
	assert.Nil(t, ActorID(c))
}
