// Package crypto defines the cryptographic dispatch domain: algorithm descriptors,
// key handles and usage masks, the four-way operation result with its sink and
// future, the backend contract and the error taxonomy shared by every layer.
package crypto
