// Package cryptoalg defines the per-family processors behind the dispatch backend:
// symmetric ciphers, digests, MACs and the RSA, ECDSA and Ed25519 signature schemes.
package cryptoalg
