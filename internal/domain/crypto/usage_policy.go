package crypto

const (
	cipherUsages    = UsageEncrypt | UsageDecrypt | UsageWrapKey | UsageUnwrapKey
	signatureUsages = UsageSign | UsageVerify
)

// AllowedUsages returns every usage a key of the given algorithm may carry.
// Digest algorithms have no keys and therefore no usages.
func AllowedUsages(id AlgorithmID) UsageMask {
	switch id {
	case AESCBC, AESGCM, AESCTR, ChaCha20Poly1305, RSAOAEP:
		return cipherUsages
	case AESKW:
		return UsageWrapKey | UsageUnwrapKey
	case HMAC, RSASSAPKCS1v15, RSAPSS, ECDSA, Ed25519:
		return signatureUsages
	default:
		return 0
	}
}

// PublicUsages returns the usages legal on the public half of a key pair.
func PublicUsages(id AlgorithmID) UsageMask {
	switch id {
	case RSAOAEP:
		return UsageEncrypt | UsageWrapKey
	case RSASSAPKCS1v15, RSAPSS, ECDSA, Ed25519:
		return UsageVerify
	default:
		return 0
	}
}

// PrivateUsages returns the usages legal on the private half of a key pair.
func PrivateUsages(id AlgorithmID) UsageMask {
	switch id {
	case RSAOAEP:
		return UsageDecrypt | UsageUnwrapKey
	case RSASSAPKCS1v15, RSAPSS, ECDSA, Ed25519:
		return UsageSign
	default:
		return 0
	}
}

// UsagesFor returns the usages legal on a key of the given type.
func UsagesFor(id AlgorithmID, keyType KeyType) UsageMask {
	switch keyType {
	case KeyTypePublic:
		return PublicUsages(id)
	case KeyTypePrivate:
		return PrivateUsages(id)
	default:
		return AllowedUsages(id)
	}
}

// RequiredUsage returns the usage a key must allow for op under algorithm id.
func RequiredUsage(op Operation, id AlgorithmID) UsageMask {
	switch op {
	case OpEncrypt:
		if id == AESKW {
			return UsageWrapKey
		}
		return UsageEncrypt
	case OpDecrypt:
		if id == AESKW {
			return UsageUnwrapKey
		}
		return UsageDecrypt
	case OpSign:
		return UsageSign
	case OpVerify:
		return UsageVerify
	default:
		return 0
	}
}
