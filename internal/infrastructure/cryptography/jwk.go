package cryptography

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"

	cryptoDomain "github.com/MGTheTrain/crypto-dispatch/internal/domain/crypto"
)

// jsonWebKey is the RFC 7517 representation of a key.
type jsonWebKey struct {
	Kty    string   `json:"kty"`
	Alg    string   `json:"alg,omitempty"`
	KeyOps []string `json:"key_ops,omitempty"`
	Ext    *bool    `json:"ext,omitempty"`

	K string `json:"k,omitempty"`

	N  string `json:"n,omitempty"`
	E  string `json:"e,omitempty"`
	D  string `json:"d,omitempty"`
	P  string `json:"p,omitempty"`
	Q  string `json:"q,omitempty"`
	DP string `json:"dp,omitempty"`
	DQ string `json:"dq,omitempty"`
	QI string `json:"qi,omitempty"`

	Crv string `json:"crv,omitempty"`
	X   string `json:"x,omitempty"`
	Y   string `json:"y,omitempty"`
}

const (
	ktyOctet = "oct"
	ktyRSA   = "RSA"
	ktyEC    = "EC"
	ktyOKP   = "OKP"
)

// jwkAlg is what a JWK "alg" value says about a key.
type jwkAlg struct {
	kty  string
	id   cryptoDomain.AlgorithmID
	hash cryptoDomain.AlgorithmID
	bits int
}

var jwkAlgorithms = func() map[string]jwkAlg {
	algs := map[string]jwkAlg{
		"RSA-OAEP":     {ktyRSA, cryptoDomain.RSAOAEP, cryptoDomain.SHA1, 0},
		"RSA-OAEP-256": {ktyRSA, cryptoDomain.RSAOAEP, cryptoDomain.SHA256, 0},
		"RSA-OAEP-384": {ktyRSA, cryptoDomain.RSAOAEP, cryptoDomain.SHA384, 0},
		"RSA-OAEP-512": {ktyRSA, cryptoDomain.RSAOAEP, cryptoDomain.SHA512, 0},
		"EdDSA":        {ktyOKP, cryptoDomain.Ed25519, "", 0},
		"Ed25519":      {ktyOKP, cryptoDomain.Ed25519, "", 0},
	}

	hashSuffixes := map[string]cryptoDomain.AlgorithmID{
		"1":   cryptoDomain.SHA1,
		"256": cryptoDomain.SHA256,
		"384": cryptoDomain.SHA384,
		"512": cryptoDomain.SHA512,
	}
	for suffix, hash := range hashSuffixes {
		algs["HS"+suffix] = jwkAlg{ktyOctet, cryptoDomain.HMAC, hash, 0}
		algs["RS"+suffix] = jwkAlg{ktyRSA, cryptoDomain.RSASSAPKCS1v15, hash, 0}
		algs["PS"+suffix] = jwkAlg{ktyRSA, cryptoDomain.RSAPSS, hash, 0}
	}

	aesModes := map[string]cryptoDomain.AlgorithmID{
		"CBC": cryptoDomain.AESCBC,
		"GCM": cryptoDomain.AESGCM,
		"CTR": cryptoDomain.AESCTR,
		"KW":  cryptoDomain.AESKW,
	}
	for mode, id := range aesModes {
		for _, bits := range []int{128, 192, 256} {
			algs[fmt.Sprintf("A%d%s", bits, mode)] = jwkAlg{ktyOctet, id, "", bits}
		}
	}
	return algs
}()

var ecdsaJWKAlgs = map[string]string{
	cryptoDomain.CurveP256: "ES256",
	cryptoDomain.CurveP384: "ES384",
	cryptoDomain.CurveP521: "ES512",
}

func parseJWK(data []byte) (*parsedKey, error) {
	var jwk jsonWebKey
	if err := json.Unmarshal(data, &jwk); err != nil {
		return nil, fmt.Errorf("%w: invalid JWK: %v", cryptoDomain.ErrMalformedKeyData, err)
	}

	var (
		parsed *parsedKey
		err    error
	)
	switch jwk.Kty {
	case ktyOctet:
		parsed, err = jwk.secretKey()
	case ktyRSA:
		parsed, err = jwk.rsaKey()
	case ktyEC:
		parsed, err = jwk.ecKey()
	case ktyOKP:
		parsed, err = jwk.okpKey()
	default:
		return nil, fmt.Errorf("%w: JWK key type %q", cryptoDomain.ErrUnsupportedAlgorithm, jwk.Kty)
	}
	if err != nil {
		return nil, err
	}

	if jwk.Alg != "" {
		hint, err := jwk.algorithmHint(parsed)
		if err != nil {
			return nil, err
		}
		parsed.hint = hint
	}
	if len(jwk.KeyOps) > 0 {
		ops, err := cryptoDomain.ParseUsages(jwk.KeyOps)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid key_ops: %v", cryptoDomain.ErrMalformedKeyData, err)
		}
		parsed.keyOps = &ops
	}
	parsed.notExtractable = jwk.Ext != nil && !*jwk.Ext
	return parsed, nil
}

// algorithmHint resolves the "alg" member against the decoded material.
func (jwk *jsonWebKey) algorithmHint(parsed *parsedKey) (*cryptoDomain.Algorithm, error) {
	alg, ok := jwkAlgorithms[jwk.Alg]
	if !ok {
		if curve, found := ecdsaCurveFor(jwk.Alg); found {
			if curve != jwk.Crv {
				return nil, fmt.Errorf("%w: %s does not use curve %s", cryptoDomain.ErrMalformedKeyData, jwk.Alg, jwk.Crv)
			}
			return parsed.hint, nil
		}
		return nil, fmt.Errorf("%w: JWK alg %q", cryptoDomain.ErrUnsupportedAlgorithm, jwk.Alg)
	}
	if alg.kty != jwk.Kty {
		return nil, fmt.Errorf("%w: alg %s does not fit key type %s", cryptoDomain.ErrMalformedKeyData, jwk.Alg, jwk.Kty)
	}

	switch alg.id.Family() {
	case cryptoDomain.FamilyHMAC:
		return cryptoDomain.NewAlgorithm(alg.id, &cryptoDomain.HMACParams{Hash: alg.hash})
	case cryptoDomain.FamilyRSA:
		return cryptoDomain.NewAlgorithm(alg.id, &cryptoDomain.RSAHashedImportParams{Hash: alg.hash})
	case cryptoDomain.FamilySymmetric:
		if parsed.material.Bits() != alg.bits {
			return nil, fmt.Errorf("%w: %s needs a %d bit key", cryptoDomain.ErrMalformedKeyData, jwk.Alg, alg.bits)
		}
		return cryptoDomain.NewAlgorithm(alg.id, &cryptoDomain.AESKeyGenParams{Length: alg.bits})
	default:
		return cryptoDomain.NewAlgorithm(alg.id, nil)
	}
}

func ecdsaCurveFor(alg string) (string, bool) {
	for curve, name := range ecdsaJWKAlgs {
		if name == alg {
			return curve, true
		}
	}
	return "", false
}

func (jwk *jsonWebKey) secretKey() (*parsedKey, error) {
	k, err := decodeJWKField("k", jwk.K)
	if err != nil {
		return nil, err
	}
	return &parsedKey{keyType: cryptoDomain.KeyTypeSecret, material: secretMaterial(k)}, nil
}

func (jwk *jsonWebKey) rsaKey() (*parsedKey, error) {
	n, err := decodeJWKInt("n", jwk.N)
	if err != nil {
		return nil, err
	}
	e, err := decodeJWKInt("e", jwk.E)
	if err != nil {
		return nil, err
	}
	if !e.IsInt64() || e.Int64() > 1<<31-1 {
		return nil, fmt.Errorf("%w: RSA exponent too large", cryptoDomain.ErrMalformedKeyData)
	}
	public := rsa.PublicKey{N: n, E: int(e.Int64())}

	if jwk.D == "" {
		return &parsedKey{keyType: cryptoDomain.KeyTypePublic, material: rsaPublicMaterial{key: &public}}, nil
	}

	d, err := decodeJWKInt("d", jwk.D)
	if err != nil {
		return nil, err
	}
	p, err := decodeJWKInt("p", jwk.P)
	if err != nil {
		return nil, err
	}
	q, err := decodeJWKInt("q", jwk.Q)
	if err != nil {
		return nil, err
	}

	private := &rsa.PrivateKey{PublicKey: public, D: d, Primes: []*big.Int{p, q}}
	if err := private.Validate(); err != nil {
		return nil, fmt.Errorf("%w: invalid RSA private key: %v", cryptoDomain.ErrMalformedKeyData, err)
	}
	private.Precompute()
	return &parsedKey{keyType: cryptoDomain.KeyTypePrivate, material: rsaPrivateMaterial{key: private}}, nil
}

func (jwk *jsonWebKey) ecKey() (*parsedKey, error) {
	curve, err := curveByName(jwk.Crv)
	if err != nil {
		return nil, fmt.Errorf("%w: JWK curve %q", cryptoDomain.ErrMalformedKeyData, jwk.Crv)
	}
	size := curveByteSize(curve)

	x, err := decodeJWKCoordinate("x", jwk.X, size)
	if err != nil {
		return nil, err
	}
	y, err := decodeJWKCoordinate("y", jwk.Y, size)
	if err != nil {
		return nil, err
	}
	public := ecdsa.PublicKey{Curve: curve, X: x, Y: y}
	ecdhPublic, err := public.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid EC point: %v", cryptoDomain.ErrMalformedKeyData, err)
	}

	hint := ecdsaAlgorithm(curve)
	if jwk.D == "" {
		return &parsedKey{keyType: cryptoDomain.KeyTypePublic, material: ecdsaPublicMaterial{key: &public}, hint: hint}, nil
	}

	d, err := decodeJWKCoordinate("d", jwk.D, size)
	if err != nil {
		return nil, err
	}
	private := &ecdsa.PrivateKey{PublicKey: public, D: d}
	ecdhPrivate, err := private.ECDH()
	if err != nil {
		return nil, fmt.Errorf("%w: invalid EC private scalar: %v", cryptoDomain.ErrMalformedKeyData, err)
	}
	if !ecdhPrivate.PublicKey().Equal(ecdhPublic) {
		return nil, fmt.Errorf("%w: EC private scalar does not match the public point", cryptoDomain.ErrMalformedKeyData)
	}
	return &parsedKey{keyType: cryptoDomain.KeyTypePrivate, material: ecdsaPrivateMaterial{key: private}, hint: hint}, nil
}

func (jwk *jsonWebKey) okpKey() (*parsedKey, error) {
	if jwk.Crv != "Ed25519" {
		return nil, fmt.Errorf("%w: OKP curve %q", cryptoDomain.ErrUnsupportedAlgorithm, jwk.Crv)
	}
	x, err := decodeJWKField("x", jwk.X)
	if err != nil {
		return nil, err
	}
	if len(x) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: Ed25519 public keys are %d bytes", cryptoDomain.ErrMalformedKeyData, ed25519.PublicKeySize)
	}

	hint := cryptoDomain.MustAlgorithm(cryptoDomain.Ed25519, nil)
	if jwk.D == "" {
		return &parsedKey{keyType: cryptoDomain.KeyTypePublic, material: ed25519PublicMaterial{key: x}, hint: hint}, nil
	}

	seed, err := decodeJWKField("d", jwk.D)
	if err != nil {
		return nil, err
	}
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("%w: Ed25519 private keys are %d bytes", cryptoDomain.ErrMalformedKeyData, ed25519.SeedSize)
	}
	private := ed25519.NewKeyFromSeed(seed)
	if !bytes.Equal(private.Public().(ed25519.PublicKey), x) {
		return nil, fmt.Errorf("%w: Ed25519 private key does not match the public key", cryptoDomain.ErrMalformedKeyData)
	}
	return &parsedKey{keyType: cryptoDomain.KeyTypePrivate, material: ed25519PrivateMaterial{key: private}, hint: hint}, nil
}

func decodeJWKField(name, value string) ([]byte, error) {
	if value == "" {
		return nil, fmt.Errorf("%w: JWK member %q is missing", cryptoDomain.ErrMalformedKeyData, name)
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: JWK member %q: %v", cryptoDomain.ErrMalformedKeyData, name, err)
	}
	return decoded, nil
}

func decodeJWKInt(name, value string) (*big.Int, error) {
	decoded, err := decodeJWKField(name, value)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(decoded), nil
}

func decodeJWKCoordinate(name, value string, size int) (*big.Int, error) {
	decoded, err := decodeJWKField(name, value)
	if err != nil {
		return nil, err
	}
	if len(decoded) != size {
		return nil, fmt.Errorf("%w: JWK member %q must be %d bytes", cryptoDomain.ErrMalformedKeyData, name, size)
	}
	return new(big.Int).SetBytes(decoded), nil
}

func encodeJWKInt(v *big.Int) string {
	return base64.RawURLEncoding.EncodeToString(v.Bytes())
}

func encodeJWKCoordinate(v *big.Int, size int) string {
	return base64.RawURLEncoding.EncodeToString(v.FillBytes(make([]byte, size)))
}

func marshalJWK(key *cryptoDomain.Key) ([]byte, error) {
	ext := key.Extractable()
	jwk := jsonWebKey{
		Alg:    jwkAlgName(key),
		KeyOps: key.Usages().Names(),
		Ext:    &ext,
	}

	switch m := key.Material().(type) {
	case secretMaterial:
		jwk.Kty = ktyOctet
		jwk.K = base64.RawURLEncoding.EncodeToString(m)
	case rsaPublicMaterial:
		jwk.Kty = ktyRSA
		jwk.N = encodeJWKInt(m.key.N)
		jwk.E = encodeJWKInt(big.NewInt(int64(m.key.E)))
	case rsaPrivateMaterial:
		k := m.key
		if len(k.Primes) != 2 {
			return nil, fmt.Errorf("%w: multi-prime RSA keys have no JWK form", cryptoDomain.ErrUnsupportedFormat)
		}
		k.Precompute()
		jwk.Kty = ktyRSA
		jwk.N = encodeJWKInt(k.N)
		jwk.E = encodeJWKInt(big.NewInt(int64(k.E)))
		jwk.D = encodeJWKInt(k.D)
		jwk.P = encodeJWKInt(k.Primes[0])
		jwk.Q = encodeJWKInt(k.Primes[1])
		jwk.DP = encodeJWKInt(k.Precomputed.Dp)
		jwk.DQ = encodeJWKInt(k.Precomputed.Dq)
		jwk.QI = encodeJWKInt(k.Precomputed.Qinv)
	case ecdsaPublicMaterial:
		fillECPublic(&jwk, m.key)
	case ecdsaPrivateMaterial:
		fillECPublic(&jwk, &m.key.PublicKey)
		jwk.D = encodeJWKCoordinate(m.key.D, curveByteSize(m.key.Curve))
	case ed25519PublicMaterial:
		jwk.Kty = ktyOKP
		jwk.Crv = "Ed25519"
		jwk.X = base64.RawURLEncoding.EncodeToString(m.key)
	case ed25519PrivateMaterial:
		jwk.Kty = ktyOKP
		jwk.Crv = "Ed25519"
		jwk.X = base64.RawURLEncoding.EncodeToString(m.key.Public().(ed25519.PublicKey))
		jwk.D = base64.RawURLEncoding.EncodeToString(m.key.Seed())
	default:
		return nil, fmt.Errorf("%w: key material %T has no JWK form", cryptoDomain.ErrUnsupportedFormat, m)
	}

	encoded, err := json.Marshal(jwk)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JWK: %w", err)
	}
	return encoded, nil
}

func fillECPublic(jwk *jsonWebKey, key *ecdsa.PublicKey) {
	size := curveByteSize(key.Curve)
	jwk.Kty = ktyEC
	jwk.Crv = curveName(key.Curve)
	jwk.X = encodeJWKCoordinate(key.X, size)
	jwk.Y = encodeJWKCoordinate(key.Y, size)
}

// jwkAlgName returns the JWK "alg" for key, or "" when JWA defines none.
func jwkAlgName(key *cryptoDomain.Key) string {
	alg := key.Algorithm()
	switch alg.ID() {
	case cryptoDomain.ECDSA:
		if m, ok := key.Material().(ecdsaPublicMaterial); ok {
			return ecdsaJWKAlgs[curveName(m.key.Curve)]
		}
		if m, ok := key.Material().(ecdsaPrivateMaterial); ok {
			return ecdsaJWKAlgs[curveName(m.key.Curve)]
		}
		return ""
	case cryptoDomain.Ed25519:
		return "EdDSA"
	}

	hash, _ := algorithmHash(alg)
	bits := 0
	if alg.Family() == cryptoDomain.FamilySymmetric {
		bits = key.Material().Bits()
	}
	want := jwkAlg{id: alg.ID(), hash: hash, bits: bits}
	for name, candidate := range jwkAlgorithms {
		candidate.kty = ""
		if candidate == want {
			return name
		}
	}
	return ""
}
