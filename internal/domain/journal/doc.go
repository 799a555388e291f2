// Package journal defines the audit trail of completed dispatcher requests.
// A record captures which verb ran with which algorithm, the shape of its
// outcome and how long it took. Key material and data never enter a record.
package journal
