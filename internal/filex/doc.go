// Package filex holds small filesystem helpers.
package filex
