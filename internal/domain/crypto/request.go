package crypto

// Operation names one of the dispatcher verbs.
type Operation string

// Dispatcher verbs
const (
	OpEncrypt     Operation = "encrypt"
	OpDecrypt     Operation = "decrypt"
	OpDigest      Operation = "digest"
	OpGenerateKey Operation = "generateKey"
	OpImportKey   Operation = "importKey"
	OpSign        Operation = "sign"
	OpVerify      Operation = "verify"
)

// Operations lists every verb.
var Operations = []Operation{OpEncrypt, OpDecrypt, OpDigest, OpGenerateKey, OpImportKey, OpSign, OpVerify}

// Known reports whether op is one of the dispatcher verbs.
func (op Operation) Known() bool {
	for _, known := range Operations {
		if op == known {
			return true
		}
	}
	return false
}

// ResultKind returns the success shape the verb completes with.
func (op Operation) ResultKind() ResultKind {
	switch op {
	case OpGenerateKey, OpImportKey:
		return ResultKey
	case OpVerify:
		return ResultBoolean
	default:
		return ResultBuffer
	}
}

// Request bundles the inputs of one dispatcher call. Fields that do not
// apply to Operation are ignored.
type Request struct {
	Operation   Operation
	Algorithm   *Algorithm
	Key         *Key
	Data        []byte
	Signature   []byte
	Format      KeyFormat
	KeyData     []byte
	Extractable bool
	Usages      UsageMask
}
