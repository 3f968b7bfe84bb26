package netsuite

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vinoteca-hk/cellar-sync/pkg/config"
)

// Signer capacidad opaca de firma: dada una URL y un método HTTP devuelve el
// valor del header Authorization listo para transporte. El resto del sistema
// no conoce el algoritmo.
type Signer interface {
	Sign(method, rawURL string) (string, error)
}

// Verificación en tiempo de compilación.
var _ Signer = (*TBASigner)(nil)

// TBASigner firma peticiones con Token-Based Authentication del ERP remoto
// (OAuth 1.0 con HMAC-SHA256 y realm = cuenta).
type TBASigner struct {
	account        string
	consumerKey    string
	consumerSecret string
	tokenKey       string
	tokenSecret    string

	now   func() time.Time
	nonce func() string
}

// NewTBASigner construye el firmador desde la configuración.
func NewTBASigner(cfg config.NetSuiteConfig) *TBASigner {
	return &TBASigner{
		account:        cfg.AccountID,
		consumerKey:    cfg.ConsumerKey,
		consumerSecret: cfg.ConsumerSecret,
		tokenKey:       cfg.TokenKey,
		tokenSecret:    cfg.TokenSecret,
		now:            time.Now,
		nonce:          randomNonce,
	}
}

// Sign genera el header Authorization OAuth1 para la petición.
func (s *TBASigner) Sign(method, rawURL string) (string, error) {
	if s.consumerKey == "" || s.tokenKey == "" {
		return "", fmt.Errorf("firmador: credenciales incompletas")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("firmador: URL inválida: %w", err)
	}

	oauth := map[string]string{
		"oauth_consumer_key":     s.consumerKey,
		"oauth_token":            s.tokenKey,
		"oauth_signature_method": "HMAC-SHA256",
		"oauth_timestamp":        strconv.FormatInt(s.now().Unix(), 10),
		"oauth_nonce":            s.nonce(),
		"oauth_version":          "1.0",
	}

	// Normalización: parámetros de query + oauth, codificados y ordenados.
	var pairs []string
	for k, vs := range u.Query() {
		for _, v := range vs {
			pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
		}
	}
	for k, v := range oauth {
		pairs = append(pairs, percentEncode(k)+"="+percentEncode(v))
	}
	sort.Strings(pairs)

	baseURL := u.Scheme + "://" + strings.ToLower(u.Host) + u.EscapedPath()
	base := strings.ToUpper(method) + "&" + percentEncode(baseURL) + "&" + percentEncode(strings.Join(pairs, "&"))
	key := percentEncode(s.consumerSecret) + "&" + percentEncode(s.tokenSecret)

	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(base))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	var b strings.Builder
	b.WriteString(`OAuth realm="` + s.account + `"`)
	for _, k := range []string{"oauth_consumer_key", "oauth_token", "oauth_signature_method", "oauth_timestamp", "oauth_nonce", "oauth_version"} {
		b.WriteString(`, ` + k + `="` + percentEncode(oauth[k]) + `"`)
	}
	b.WriteString(`, oauth_signature="` + percentEncode(signature) + `"`)
	return b.String(), nil
}

// percentEncode codificación RFC 3986 estricta (la de OAuth1, no la de formularios).
func percentEncode(s string) string {
	enc := url.QueryEscape(s)
	enc = strings.ReplaceAll(enc, "+", "%20")
	enc = strings.ReplaceAll(enc, "%7E", "~")
	return enc
}

func randomNonce() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// rand.Read no falla en la práctica; el timestamp evita colisión total.
		return strconv.FormatInt(time.Now().UnixNano(), 36)
	}
	return hex.EncodeToString(buf)
}
