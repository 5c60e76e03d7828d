// Package kinesiscount provides the double-entry ledger model used to import
// Kinesis account statements: exact Money amounts, costed postings,
// transactions with balance checking, and a Journal that keeps transactions in
// statement order.
//
// The model is deliberately small. It knows how to:
//   - Build account names from configured roots (JoinAccount) and validate
//     them against the usual ledger naming rules.
//   - Weigh postings (units, or units at cost) and check that a transaction
//     balances within a tolerance inferred from the written digits.
//   - Encode a Journal as Beancount directives or as JSONL.
//
// Statement parsing and classification live in the importer package, the
// authenticated market data client in the kinesis package, and the `kcs`
// command line in cmd.
package kinesiscount
