// Package sources fetches the upstream datasets a refresh run reconciles.
//
// Two providers are involved: a country registry returning the full country
// list, and one or more exchange-rate services returning USD-based rates.
// Every payload is validated against an embedded JSON Schema before it is
// decoded, so malformed upstream data fails at the fetch boundary.
//
// The rates fetcher walks an ordered chain of providers and, when all of them
// fail, answers with a static fallback table unless that fallback is disabled.
package sources
