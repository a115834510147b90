// Copyright (c) 2026 CoPla. All rights reserved.

package bluesky

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/copla/copla/pkg/uuid"
)

// # DPoP Keys

// dpopKey is the ES256 key a session's tokens are bound to.
type dpopKey struct {
	private *ecdsa.PrivateKey
	public  jose.JSONWebKey
}

func newDPoPKey() (*dpopKey, error) {
	private, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("dpop_key_generate_failed: %w", err)
	}
	return wrapKey(private), nil
}

func wrapKey(private *ecdsa.PrivateKey) *dpopKey {
	return &dpopKey{
		private: private,
		public:  jose.JSONWebKey{Key: &private.PublicKey, Algorithm: string(jose.ES256), Use: "sig"},
	}
}

// parseDPoPKey reads a private JWK produced by encode.
func parseDPoPKey(encoded string) (*dpopKey, error) {
	var jwk jose.JSONWebKey
	if err := jwk.UnmarshalJSON([]byte(encoded)); err != nil {
		return nil, fmt.Errorf("dpop_key_parse_failed: %w", err)
	}
	private, ok := jwk.Key.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errors.New("dpop_key_parse_failed: not an ECDSA private key")
	}
	return wrapKey(private), nil
}

func (k *dpopKey) encode() (string, error) {
	raw, err := jose.JSONWebKey{Key: k.private, Algorithm: string(jose.ES256), Use: "sig"}.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("dpop_key_encode_failed: %w", err)
	}
	return string(raw), nil
}

// proof signs a DPoP proof for one request. accessToken adds the ath claim.
func (k *dpopKey) proof(method, target, nonce, accessToken string) (string, error) {
	htu, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("dpop_proof_failed: %w", err)
	}
	htu.RawQuery, htu.Fragment = "", ""

	claims := jwt.MapClaims{
		"jti": uuid.New(),
		"htm": method,
		"htu": htu.String(),
		"iat": time.Now().Unix(),
	}
	if nonce != "" {
		claims["nonce"] = nonce
	}
	if accessToken != "" {
		sum := sha256.Sum256([]byte(accessToken))
		claims["ath"] = base64.RawURLEncoding.EncodeToString(sum[:])
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["typ"] = "dpop+jwt"
	token.Header["jwk"] = k.public

	signed, err := token.SignedString(k.private)
	if err != nil {
		return "", fmt.Errorf("dpop_proof_failed: %w", err)
	}
	return signed, nil
}

// # Nonces

// nonceCache remembers the latest DPoP-Nonce per host.
type nonceCache struct {
	mu     sync.Mutex
	byHost map[string]string
}

func newNonceCache() *nonceCache {
	return &nonceCache{byHost: make(map[string]string)}
}

func (c *nonceCache) get(host string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.byHost[host]
}

func (c *nonceCache) put(host, nonce string) {
	if nonce == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byHost[host] = nonce
}

// # Rate Limiting

// hostLimiter keeps one token bucket per host.
type hostLimiter struct {
	mu    sync.Mutex
	limit rate.Limit
	burst int
	hosts map[string]*rate.Limiter
}

func newHostLimiter(perSecond float64, burst int) *hostLimiter {
	return &hostLimiter{limit: rate.Limit(perSecond), burst: burst, hosts: make(map[string]*rate.Limiter)}
}

func (h *hostLimiter) forHost(host string) *rate.Limiter {
	h.mu.Lock()
	defer h.mu.Unlock()

	limiter, ok := h.hosts[host]
	if !ok {
		limiter = rate.NewLimiter(h.limit, h.burst)
		h.hosts[host] = limiter
	}
	return limiter
}

// limitedTransport waits for the host's bucket before each request.
type limitedTransport struct {
	base    http.RoundTripper
	limiter *hostLimiter
}

func (t *limitedTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	if err := t.limiter.forHost(request.URL.Host).Wait(request.Context()); err != nil {
		return nil, err
	}
	return t.base.RoundTrip(request)
}

// # Transport

// dpopTransport attaches DPoP proofs and retries once when the server asks
// for a fresh nonce. With a token source it also sends the bound access token.
type dpopTransport struct {
	base   http.RoundTripper
	key    *dpopKey
	nonces *nonceCache
	tokens oauth2.TokenSource
}

func (t *dpopTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	accessToken := ""
	if t.tokens != nil {
		token, err := t.tokens.Token()
		if err != nil {
			return nil, err
		}
		accessToken = token.AccessToken
	}

	response, err := t.send(request, request.Body, accessToken)
	if err != nil {
		return nil, err
	}

	retry, err := t.nonceRequired(response)
	if err != nil || !retry {
		return response, err
	}

	var body io.ReadCloser
	if request.Body != nil && request.Body != http.NoBody {
		if request.GetBody == nil {
			return response, nil
		}
		if body, err = request.GetBody(); err != nil {
			return response, nil
		}
	}

	_ = response.Body.Close()
	return t.send(request, body, accessToken)
}

func (t *dpopTransport) send(original *http.Request, body io.ReadCloser, accessToken string) (*http.Response, error) {
	request := original.Clone(original.Context())
	request.Body = body

	proof, err := t.key.proof(request.Method, request.URL.String(), t.nonces.get(request.URL.Host), accessToken)
	if err != nil {
		return nil, err
	}
	request.Header.Set("DPoP", proof)
	if accessToken != "" {
		request.Header.Set("Authorization", "DPoP "+accessToken)
	}

	response, err := t.base.RoundTrip(request)
	if err != nil {
		return nil, err
	}
	t.nonces.put(request.URL.Host, response.Header.Get("DPoP-Nonce"))
	return response, nil
}

// nonceRequired detects use_dpop_nonce on both authorization (400 body) and
// resource (401 WWW-Authenticate) servers. It leaves the body readable.
func (t *dpopTransport) nonceRequired(response *http.Response) (bool, error) {
	switch response.StatusCode {
	case http.StatusUnauthorized:
		return strings.Contains(response.Header.Get("WWW-Authenticate"), "use_dpop_nonce"), nil
	case http.StatusBadRequest:
		raw, err := io.ReadAll(io.LimitReader(response.Body, 64<<10))
		_ = response.Body.Close()
		response.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return false, err
		}
		var failure xrpcError
		_ = json.Unmarshal(raw, &failure)
		return failure.Error == "use_dpop_nonce", nil
	default:
		return false, nil
	}
}
