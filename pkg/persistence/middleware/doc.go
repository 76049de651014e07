// Package middleware provides StateStore decorators that shape what a run records.
package middleware
