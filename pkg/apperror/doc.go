// Package apperror defines the failure taxonomy shared by the stock ledger,
// approval workflow, sales and reversal processors. Handlers translate a Kind
// into a response status; services never guess a default success.
package apperror
