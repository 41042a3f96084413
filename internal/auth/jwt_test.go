package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func testTokens() TokenService {
	return TokenService{
		Secret:   []byte("test-secret"),
		Issuer:   "clapclient-test",
		Duration: time.Hour,
	}
}

func TestTokenService_SignParseRoundTrip(t *testing.T) {
	ts := testTokens()
	u := &User{ID: "u1", Username: "alex", Email: "alex@example.com"}

	token, exp, err := ts.Sign(u)
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := ts.Parse(token)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alex" {
		t.Fatalf("claims = %#v", claims)
	}
}

func TestTokenService_RejectsWrongSecret(t *testing.T) {
	token, _, err := testTokens().Sign(&User{ID: "u1"})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	other := TokenService{Secret: []byte("different"), Issuer: "x", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected parse failure with wrong secret")
	}
}

func TestTokenService_RejectsWrongIssuer(t *testing.T) {
	token, _, err := testTokens().Sign(&User{ID: "u1"})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}

	other := TokenService{Secret: []byte("test-secret"), Issuer: "someone-else", Duration: time.Hour}
	if _, err := other.Parse(token); err == nil {
		t.Fatal("expected parse failure for a foreign issuer")
	}
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ts := testTokens()

	router := gin.New()
	router.GET("/protected", AuthMiddleware(ts), func(c *gin.Context) {
		claims := MustGetClaims(c)
		c.JSON(http.StatusOK, gin.H{"user": claims.UserID})
	})

	// No token.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	// Valid token.
	token, _, err := ts.Sign(&User{ID: "u1", Username: "alex"})
	if err != nil {
		t.Fatalf("Sign returned error: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d, want 200 (%s)", w.Code, w.Body.String())
	}
}
